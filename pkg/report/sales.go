package report

import "context"

type Sales struct {
	src SalesSource
}

func NewSales(src SalesSource) *Sales { return &Sales{src: src} }

func (g *Sales) Name() string { return NameSales }

func (g *Sales) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Sales Data", p)

	summary, err := g.src.SalesSummary(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if summary.Orders == 0 {
		return NoData(title, "sales", p), nil
	}

	customers, err := g.src.TopCustomers(ctx, req.CompanyID, p.From, p.To, 5)
	if err != nil {
		return nil, err
	}
	products, err := g.src.ProductSales(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if len(products) > 5 {
		products = products[:5]
	}

	aov := ratio(summary.Revenue, summary.Orders)

	var l lines
	l.add("- Period: %s", p.Label)
	l.add("- Total Orders: %d", summary.Orders)
	l.add("- Total Revenue: %s", money(summary.Revenue))
	l.add("- Average Order Value: %s", money(aov))
	l.blank()
	l.add("Top Customers:")
	for i, c := range customers {
		l.add("%d. %s: %d orders, %s", i+1, c.Name, c.Count, money(c.Amount))
	}
	l.blank()
	l.add("Top Products:")
	for i, pr := range products {
		l.add("%d. %s: %.0f units, %s", i+1, pr.Name, pr.Qty, money(pr.Revenue))
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricOrders:  float64(summary.Orders),
			MetricRevenue: summary.Revenue,
			"aov":         aov,
		},
	}, nil
}
