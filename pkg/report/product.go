package report

import "context"

type Product struct {
	src SalesSource
}

func NewProduct(src SalesSource) *Product { return &Product{src: src} }

func (g *Product) Name() string { return NameProduct }

func (g *Product) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Product Performance", p)

	rows, err := g.src.ProductSales(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return NoData(title, "product", p), nil
	}

	var revenue, cost float64
	for _, r := range rows {
		revenue += r.Revenue
		cost += r.Cost
	}

	top := rows
	if len(top) > 5 {
		top = top[:5]
	}

	var l lines
	l.add("- Products Sold: %d", len(rows))
	l.add("- Total Revenue: %s", money(revenue))
	l.add("- Overall Margin: %.2f%%", pct(revenue-cost, revenue))
	l.blank()
	l.add("Top Products by Revenue:")
	for i, r := range top {
		l.add("%d. %s: %.0f units, %s (margin %.2f%%)", i+1, r.Name, r.Qty, money(r.Revenue), r.MarginPct())
	}

	if len(rows) > 5 {
		start := len(rows) - 5
		if start < 5 {
			start = 5
		}
		l.blank()
		l.add("Lowest Products by Revenue:")
		n := 1
		for i := len(rows) - 1; i >= start; i-- {
			r := rows[i]
			l.add("%d. %s: %.0f units, %s (margin %.2f%%)", n, r.Name, r.Qty, money(r.Revenue), r.MarginPct())
			n++
		}
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			"products_sold": float64(len(rows)),
			"margin_pct":    pct(revenue-cost, revenue),
		},
	}, nil
}
