package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"jarvis-ai-be/pkg/assistant/classifier"
)

// Staff sort orders.
const (
	SortByOrders     = "orders"
	SortByEfficiency = "efficiency"
)

type staffFetch func(ctx context.Context, companyID int64, from, to time.Time) ([]StaffPerformance, error)

// staffReport renders mechanic and advisor performance the same way.
type staffReport struct {
	name     string
	gate     string
	title    string
	label    string
	showRev  bool
	fetch    staffFetch
	classify *classifier.Classifier
}

func NewMechanicPerformance(src ServiceSource, cls *classifier.Classifier) Generator {
	return &staffReport{
		name:     NameMechanic,
		gate:     classifier.GateMechanic,
		title:    "Data Kinerja Mekanik",
		label:    "Mekanik",
		fetch:    src.MechanicPerformance,
		classify: cls,
	}
}

func NewAdvisorPerformance(src ServiceSource, cls *classifier.Classifier) Generator {
	return &staffReport{
		name:     NameAdvisor,
		gate:     classifier.GateAdvisor,
		title:    "Data Kinerja Service Advisor",
		label:    "Service Advisor",
		showRev:  true,
		fetch:    src.AdvisorPerformance,
		classify: cls,
	}
}

func (g *staffReport) Name() string { return g.name }

// Applies gates the report on the staff keyword in the message.
func (g *staffReport) Applies(message string) bool {
	return g.classify.Gate(g.gate, message)
}

func (g *staffReport) Variant(message string) string {
	return sortOrder(message)
}

func sortOrder(message string) string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "efisiensi") || strings.Contains(lower, "efficien") {
		return SortByEfficiency
	}
	return SortByOrders
}

// SortStaff orders by volume or efficiency, name breaking ties.
func SortStaff(rows []StaffPerformance, by string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if by == SortByEfficiency && a.Efficiency != b.Efficiency {
			return a.Efficiency > b.Efficiency
		}
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		return a.Name < b.Name
	})
}

func (g *staffReport) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := headerID(g.title, p)

	rows, err := g.fetch(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return NoData(title, strings.ToLower(g.label)+" performance", p), nil
	}
	SortStaff(rows, sortOrder(req.Message))

	var orders, ratings int
	var ratingSum, effSum float64
	for _, r := range rows {
		orders += r.Orders
		ratings += r.Ratings
		ratingSum += r.AvgRating * float64(r.Ratings)
		effSum += r.Efficiency * float64(r.Orders)
	}

	var l lines
	l.add("Total order dengan %s: %d", strings.ToLower(g.label), orders)
	l.blank()
	for _, r := range rows {
		l.add("%s: %s", g.label, r.Name)
		l.add("- Total Order: %d", r.Orders)
		if g.showRev {
			l.add("- Pendapatan: %s", money(r.Revenue))
		}
		l.add("- Rata-rata Lead Time: %.2f jam", r.AvgLeadTime)
		l.add("- Persentase On-Time: %.2f%%", r.OnTimeRate)
		l.add("- Efisiensi Rata-rata: %.2f%%", r.Efficiency)
		if r.Ratings > 0 {
			l.add("- Rating Pelanggan: %.1f/5 (dari %d penilaian)", r.AvgRating, r.Ratings)
		}
		l.blank()
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricOrders:        float64(orders),
			MetricAvgRating:     ratio(ratingSum, ratings),
			MetricRatings:       float64(ratings),
			MetricAvgEfficiency: ratio(effSum, orders),
		},
	}, nil
}

// LeadTime is the service lead-time analysis. It runs when the message asks
// about durations, or when a service question names no staff role.
type LeadTime struct {
	src      ServiceSource
	classify *classifier.Classifier
}

func NewLeadTime(src ServiceSource, cls *classifier.Classifier) *LeadTime {
	return &LeadTime{src: src, classify: cls}
}

func (g *LeadTime) Name() string { return NameLeadTime }

func (g *LeadTime) Applies(message string) bool {
	if g.classify.Gate(classifier.GateLeadTime, message) {
		return true
	}
	return !g.classify.Gate(classifier.GateMechanic, message) && !g.classify.Gate(classifier.GateAdvisor, message)
}

func (g *LeadTime) Variant(message string) string {
	if g.classify.Gate(classifier.GateDetail, message) {
		return "detail"
	}
	return ""
}

func (g *LeadTime) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := headerID("Analisis Lead Time Servis", p)

	stats, err := g.src.LeadTimeStats(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if stats.Orders == 0 {
		return NoData(title, "service", p), nil
	}
	cats, err := g.src.LeadTimeByCategory(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}

	var l lines
	l.add("- Total Order: %d", stats.Orders)
	l.add("- Rata-rata Lead Time: %.2f jam", stats.AvgLeadTime)
	l.add("- Persentase On-Time: %.2f%%", stats.OnTimeRate)
	l.blank()

	l.add("Lead Time berdasarkan Kategori Servis:")
	detail := g.Variant(req.Message) == "detail"
	for _, c := range rollupCategories(cats) {
		l.add("- %s: %.2f jam (dari %d order)", c.name, c.avg, c.orders)
		if detail {
			for _, s := range c.subs {
				l.add("  * %s: %.2f jam (dari %d order)", s.Subcategory, s.AvgLeadTime, s.Orders)
			}
		}
	}
	l.blank()

	l.add("Analisis Waktu Tunggu:")
	l.add("- Rata-rata Tunggu Konfirmasi: %.2f jam", stats.AvgWaitConfirmation)
	l.add("- Rata-rata Tunggu Part 1: %.2f jam", stats.AvgWaitPart1)
	l.add("- Rata-rata Tunggu Part 2: %.2f jam", stats.AvgWaitPart2)
	l.add("- Rata-rata Tunggu Sublet: %.2f jam", stats.AvgWaitSublet)
	if stats.AvgEfficiency > 0 {
		l.blank()
		l.add("Rata-rata Efisiensi Waktu Servis: %.2f%%", stats.AvgEfficiency)
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricOrders:        float64(stats.Orders),
			MetricAvgLeadTime:   stats.AvgLeadTime,
			MetricOnTimeRate:    stats.OnTimeRate,
			MetricAvgEfficiency: stats.AvgEfficiency,
		},
	}, nil
}

type categoryRollup struct {
	name   string
	orders int
	avg    float64
	subs   []CategoryLeadTime
}

// rollupCategories folds subcategory rows into their category, keeping first-seen order.
func rollupCategories(rows []CategoryLeadTime) []categoryRollup {
	var out []categoryRollup
	index := make(map[string]int)
	for _, r := range rows {
		name := r.Category
		if name == "" {
			name = "Tidak Terklasifikasi"
		}
		if r.Subcategory == "" {
			r.Subcategory = "Tidak Terklasifikasi"
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, categoryRollup{name: name})
		}
		c := &out[i]
		total := c.avg*float64(c.orders) + r.AvgLeadTime*float64(r.Orders)
		c.orders += r.Orders
		c.avg = ratio(total, c.orders)
		c.subs = append(c.subs, r)
	}
	return out
}
