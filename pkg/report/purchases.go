package report

import "context"

type Purchases struct {
	src PurchaseSource
}

func NewPurchases(src PurchaseSource) *Purchases { return &Purchases{src: src} }

func (g *Purchases) Name() string { return NamePurchases }

func (g *Purchases) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Purchase Data", p)

	summary, err := g.src.PurchaseSummary(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if summary.Orders == 0 {
		return NoData(title, "purchase", p), nil
	}
	vendors, err := g.src.TopVendors(ctx, req.CompanyID, p.From, p.To, 5)
	if err != nil {
		return nil, err
	}

	var l lines
	l.add("- Purchase Orders: %d", summary.Orders)
	l.add("- Total Amount: %s", money(summary.Revenue))
	l.add("- Average per Order: %s", money(ratio(summary.Revenue, summary.Orders)))
	l.blank()
	l.add("Top Vendors:")
	for i, v := range vendors {
		l.add("%d. %s: %d orders, %s", i+1, v.Name, v.Count, money(v.Amount))
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			"purchase_orders": float64(summary.Orders),
			"purchase_amount": summary.Revenue,
		},
	}, nil
}
