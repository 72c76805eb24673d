package report

import (
	"context"

	"jarvis-ai-be/pkg/assistant/period"
)

// Finance compares the requested period with period.Previous.
type Finance struct {
	src FinanceSource
}

func NewFinance(src FinanceSource) *Finance { return &Finance{src: src} }

func (g *Finance) Name() string { return NameFinance }

func (g *Finance) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	prev := period.Previous(p)
	title := header("Financial Summary", p)

	cur, err := g.src.FinanceTotals(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if cur.Invoices == 0 && cur.Bills == 0 && cur.Payments == 0 {
		return NoData(title, "finance", p), nil
	}
	before, err := g.src.FinanceTotals(ctx, req.CompanyID, prev.From, prev.To)
	if err != nil {
		return nil, err
	}
	overdue, err := g.src.OverdueInvoices(ctx, req.CompanyID, p.To, 5)
	if err != nil {
		return nil, err
	}

	profit := cur.Revenue - cur.Expense
	prevProfit := before.Revenue - before.Expense
	revGrowth := growth(cur.Revenue, before.Revenue)
	expGrowth := growth(cur.Expense, before.Expense)
	profitGrowth := growth(profit, prevProfit)

	var l lines
	l.add("- Comparison Period: %s to %s", prev.FromString(), prev.ToString())
	l.add("- Revenue (invoiced): %s (previous %s, %+.2f%%)", money(cur.Revenue), money(before.Revenue), revGrowth)
	l.add("- Expenses (billed): %s (previous %s, %+.2f%%)", money(cur.Expense), money(before.Expense), expGrowth)
	l.add("- Profit: %s (previous %s, %+.2f%%)", money(profit), money(prevProfit), profitGrowth)
	l.add("- Invoices: %d, Bills: %d", cur.Invoices, cur.Bills)
	l.add("- Payments: %d (received %s, paid %s)", cur.Payments, money(cur.PaymentsIn), money(cur.PaymentsOut))
	l.blank()
	l.add("Analysis:")
	for _, c := range FinanceCommentary(revGrowth, expGrowth, profit) {
		l.add("- %s", c)
	}
	if len(overdue) > 0 {
		l.blank()
		l.add("Overdue Invoices:")
		for i, inv := range overdue {
			l.add("%d. %s - %s: %s (due %s)", i+1, inv.Number, inv.Partner, money(inv.Amount), inv.DueDate.Format("2006-01-02"))
		}
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricRevenue:        cur.Revenue,
			MetricExpense:        cur.Expense,
			MetricProfit:         profit,
			MetricRevenueGrowth:  revGrowth,
			"expense_growth_pct": expGrowth,
			"profit_growth_pct":  profitGrowth,
			"overdue_invoices":   float64(len(overdue)),
		},
	}, nil
}

// FinanceCommentary applies the +-5% narrative thresholds.
func FinanceCommentary(revenueGrowth, expenseGrowth, profit float64) []string {
	var out []string
	switch {
	case revenueGrowth > 5:
		out = append(out, "Revenue shows significant growth compared to the previous period.")
	case revenueGrowth < -5:
		out = append(out, "Revenue shows a significant decline compared to the previous period.")
	default:
		out = append(out, "Revenue is stable compared to the previous period.")
	}
	if expenseGrowth > 5 && expenseGrowth > revenueGrowth {
		out = append(out, "Expenses are growing faster than revenue; review cost drivers.")
	}
	if profit < 0 {
		out = append(out, "The period closed at a loss.")
	}
	return out
}
