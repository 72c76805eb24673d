package report

import (
	"context"

	"jarvis-ai-be/pkg/assistant/period"
)

// Summary is the executive summary opening the comprehensive report.
type Summary struct {
	sales   SalesSource
	service ServiceSource
	hr      HRSource
}

func NewSummary(sales SalesSource, service ServiceSource, hr HRSource) *Summary {
	return &Summary{sales: sales, service: service, hr: hr}
}

func (g *Summary) Name() string { return NameSummary }

func (g *Summary) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	prev := period.Previous(p)

	stats, err := g.service.LeadTimeStats(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	cur, err := g.sales.SalesSummary(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	before, err := g.sales.SalesSummary(ctx, req.CompanyID, prev.From, prev.To)
	if err != nil {
		return nil, err
	}
	depts, err := g.hr.AttendanceByDepartment(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	active, err := g.hr.CountActiveEmployees(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	var attendances int
	for _, d := range depts {
		attendances += d.Attendances
	}
	attendanceRate := pct(float64(attendances), float64(active*period.WorkingDays(p.From, p.To)))
	revGrowth := growth(cur.Revenue, before.Revenue)

	var l lines
	l.add("- Order Selesai: %d", stats.Orders)
	l.add("- Total Pendapatan: %s", money(stats.Revenue))
	l.add("- Penjualan Terkonfirmasi: %s (%+.2f%% dibanding %s s/d %s)", money(cur.Revenue), revGrowth, prev.FromString(), prev.ToString())
	l.add("- Rata-rata Lead Time: %.2f jam", stats.AvgLeadTime)
	l.add("- Rata-rata Rating Pelanggan: %.1f/5", stats.AvgRating)
	l.add("- Tingkat Kehadiran Karyawan: %.2f%%", attendanceRate)

	return &Section{
		Title: headerID("Ringkasan Eksekutif", p),
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricOrdersCompleted: float64(stats.Orders),
			MetricTotalRevenue:    stats.Revenue,
			MetricRevenueGrowth:   revGrowth,
			MetricAvgLeadTime:     stats.AvgLeadTime,
			MetricAvgRating:       stats.AvgRating,
			MetricRatings:         float64(stats.Ratings),
			MetricAttendanceRate:  attendanceRate,
			MetricActiveEmployees: float64(active),
		},
	}, nil
}
