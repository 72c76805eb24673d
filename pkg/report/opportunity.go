package report

import (
	"context"
	"sort"

	"jarvis-ai-be/pkg/assistant/period"
)

const dormantDays = 90

// Opportunity looks for growing products, customers worth winning back and
// best sellers about to run out.
type Opportunity struct {
	sales     SalesSource
	customers CustomerSource
	inventory InventorySource
	threshold float64
}

func NewOpportunity(sales SalesSource, customers CustomerSource, inventory InventorySource, lowStockThreshold float64) *Opportunity {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Opportunity{sales: sales, customers: customers, inventory: inventory, threshold: lowStockThreshold}
}

func (g *Opportunity) Name() string { return NameOpportunity }

type productGrowth struct {
	name      string
	cur, prev float64
}

func (g *Opportunity) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	prev := period.Previous(p)
	title := header("Business Opportunities", p)

	cur, err := g.sales.ProductSales(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	before, err := g.sales.ProductSales(ctx, req.CompanyID, prev.From, prev.To)
	if err != nil {
		return nil, err
	}
	dormant, err := g.customers.DormantCustomers(ctx, req.CompanyID, p.To, dormantDays, 5)
	if err != nil {
		return nil, err
	}

	prevByName := make(map[string]float64, len(before))
	for _, b := range before {
		prevByName[b.Name] = b.Revenue
	}
	var growing []productGrowth
	for _, c := range cur {
		if c.Revenue > prevByName[c.Name] {
			growing = append(growing, productGrowth{name: c.Name, cur: c.Revenue, prev: prevByName[c.Name]})
		}
	}
	sort.SliceStable(growing, func(i, j int) bool {
		return growing[i].cur-growing[i].prev > growing[j].cur-growing[j].prev
	})
	if len(growing) > 5 {
		growing = growing[:5]
	}

	var atRisk []string
	stockQty := map[string]float64{}
	if len(cur) > 0 {
		top := cur
		if len(top) > 5 {
			top = top[:5]
		}
		names := make([]string, len(top))
		for i, t := range top {
			names[i] = t.Name
		}
		stockQty, err = g.inventory.StockByProduct(ctx, req.CompanyID, names)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if q, ok := stockQty[n]; ok && q < g.threshold {
				atRisk = append(atRisk, n)
			}
		}
	}

	if len(growing) == 0 && len(dormant) == 0 && len(atRisk) == 0 {
		return NoData(title, "opportunity", p), nil
	}

	var l lines
	l.add("Growing Products (vs %s to %s):", prev.FromString(), prev.ToString())
	if len(growing) == 0 {
		l.add("- None")
	}
	for i, pg := range growing {
		l.add("%d. %s: %s (previous %s, %+.2f%%)", i+1, pg.name, money(pg.cur), money(pg.prev), growth(pg.cur, pg.prev))
	}
	l.blank()
	l.add("Dormant Customers (no order in %d days):", dormantDays)
	if len(dormant) == 0 {
		l.add("- None")
	}
	for i, d := range dormant {
		l.add("%d. %s: lifetime %s over %d orders, last order %s", i+1, d.Name, money(d.Amount), d.Count, d.Last.Format("2006-01-02"))
	}
	if len(atRisk) > 0 {
		l.blank()
		l.add("Best Sellers Running Low:")
		for _, n := range atRisk {
			l.add("- %s: %.0f left", n, stockQty[n])
		}
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			"growing_products":     float64(len(growing)),
			MetricDormantCustomers: float64(len(dormant)),
			"best_sellers_low":     float64(len(atRisk)),
		},
	}, nil
}
