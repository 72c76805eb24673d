package report

import "context"

type Customer struct {
	src CustomerSource
}

func NewCustomer(src CustomerSource) *Customer { return &Customer{src: src} }

func (g *Customer) Name() string { return NameCustomer }

func (g *Customer) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Customer Overview", p)

	act, err := g.src.CustomerActivity(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if act.Active == 0 {
		return NoData(title, "customer", p), nil
	}

	var l lines
	l.add("- Active Customers: %d", act.Active)
	l.add("- New Customers: %d (%.2f%%)", act.New, pct(float64(act.New), float64(act.Active)))
	l.add("- Returning Customers: %d (%.2f%%)", act.Returning, pct(float64(act.Returning), float64(act.Active)))

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricActiveCustomers: float64(act.Active),
			"new_customers":       float64(act.New),
			"returning_customers": float64(act.Returning),
		},
	}, nil
}

type CustomerBehavior struct {
	src CustomerSource
}

func NewCustomerBehavior(src CustomerSource) *CustomerBehavior {
	return &CustomerBehavior{src: src}
}

func (g *CustomerBehavior) Name() string { return NameCustomerBehavior }

func (g *CustomerBehavior) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Customer Behavior", p)

	rows, err := g.src.CustomerVisits(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return NoData(title, "customer behavior", p), nil
	}

	var visits, repeat int
	var spend, gapSum float64
	for _, r := range rows {
		visits += r.Visits
		spend += r.Spend
		if r.Visits > 1 {
			repeat++
			gapSum += r.AvgDaysBetween
		}
	}

	var l lines
	l.add("- Customers with Visits: %d", len(rows))
	l.add("- Total Visits: %d", visits)
	l.add("- Average Visits per Customer: %.2f", ratio(float64(visits), len(rows)))
	l.add("- Average Spend per Visit: %s", money(ratio(spend, visits)))
	l.add("- Repeat Customers: %d (%.2f%%)", repeat, pct(float64(repeat), float64(len(rows))))
	if repeat > 0 {
		l.add("- Average Days Between Visits: %.1f", gapSum/float64(repeat))
	}

	shown := 0
	for _, r := range rows {
		if r.Visits < 2 || shown == 5 {
			continue
		}
		if shown == 0 {
			l.blank()
			l.add("Top Repeat Customers:")
		}
		shown++
		l.add("%d. %s: %d visits, %s, every %.1f days", shown, r.Name, r.Visits, money(r.Spend), r.AvgDaysBetween)
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricRepeatCustomers: float64(repeat),
			"visits":              float64(visits),
		},
	}, nil
}
