package report

import "context"

type Inventory struct {
	src       InventorySource
	threshold float64
}

func NewInventory(src InventorySource, lowStockThreshold float64) *Inventory {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Inventory{src: src, threshold: lowStockThreshold}
}

func (g *Inventory) Name() string { return NameInventory }

func (g *Inventory) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period

	low, err := g.src.LowStock(ctx, req.CompanyID, g.threshold, 10)
	if err != nil {
		return nil, err
	}
	valued, err := g.src.TopStockValue(ctx, req.CompanyID, 5)
	if err != nil {
		return nil, err
	}
	since := p.To.AddDate(0, 0, -30)
	moves, err := g.src.RecentMoves(ctx, req.CompanyID, since, 5)
	if err != nil {
		return nil, err
	}

	if len(low) == 0 && len(valued) == 0 && len(moves) == 0 {
		return NoData("Inventory Status:", "inventory", p), nil
	}

	var l lines
	l.add("Low Stock Items (below %.0f units):", g.threshold)
	if len(low) == 0 {
		l.add("- None")
	}
	for _, it := range low {
		l.add("- %s: %.0f %s", it.Name, it.Qty, it.Uom)
	}
	l.blank()
	l.add("Top Products by Stock Value:")
	for i, it := range valued {
		l.add("%d. %s: %.0f %s, value %s", i+1, it.Name, it.Qty, it.Uom, money(it.Value))
	}
	l.blank()
	l.add("Recent Stock Movements (since %s):", since.Format("2006-01-02"))
	if len(moves) == 0 {
		l.add("- None")
	}
	for _, m := range moves {
		l.add("- %s: %s %.0f units (%s -> %s)", m.Date.Format("2006-01-02"), m.Product, m.Qty, m.From, m.To)
	}

	return &Section{
		Title:   "Inventory Status:",
		Body:    l.String(),
		Metrics: map[string]float64{MetricLowStock: float64(len(low))},
	}, nil
}
