package report

import (
	"context"
	"fmt"
	"strings"
)

type comprehensivePart struct {
	title string
	names []string
}

// comprehensiveParts covers every registered generator except the
// comprehensive report itself. Summary stays first so its metrics win the merge.
var comprehensiveParts = []comprehensivePart{
	{"RINGKASAN EKSEKUTIF", []string{NameSummary, NameBasic}},
	{"PERFORMA SALES", []string{NameSales, NameProduct}},
	{"KEUANGAN & PEMBELIAN", []string{NameFinance, NamePurchases}},
	{"PERSEDIAAN", []string{NameInventory}},
	{"PERFORMA SERVICE", []string{NameLeadTime, NameBooking, NameRecommendation, NameWorkflow}},
	{"KINERJA KARYAWAN", []string{NameAttendance}},
	{"METRIK KUALITAS", []string{NameAdvisor, NameMechanic}},
	{"ANALISIS PELANGGAN", []string{NameCustomer, NameCustomerBehavior}},
	{"SEGMENTASI PELANGGAN", []string{NameRFM}},
	{"PELUANG BISNIS", []string{NameOpportunity}},
	{"PREDIKSI PENJUALAN", []string{NamePrediction}},
}

// Comprehensive stitches several generators into one numbered report and
// closes with rule-based insights over their metrics.
type Comprehensive struct {
	registry *Registry
}

func NewComprehensive(registry *Registry) *Comprehensive {
	return &Comprehensive{registry: registry}
}

func (g *Comprehensive) Name() string { return NameComprehensive }

func (g *Comprehensive) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period

	var names []string
	for _, part := range comprehensiveParts {
		names = append(names, part.names...)
	}
	results := g.registry.Collect(ctx, names, req)
	byName := make(map[string]Result, len(results))
	metrics := make(map[string]float64)
	for _, res := range results {
		byName[res.Name] = res
		for k, v := range res.Section.metrics() {
			if _, ok := metrics[k]; !ok {
				metrics[k] = v
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "LAPORAN KOMPREHENSIF BISNIS (%s hingga %s)\n", p.FromString(), p.ToString())
	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")

	n := 0
	for _, part := range comprehensiveParts {
		n++
		fmt.Fprintf(&sb, "\n%d. %s\n", n, part.title)
		for _, name := range part.names {
			if body := strings.TrimSpace(byName[name].Section.String()); body != "" {
				sb.WriteString(body)
				sb.WriteString("\n")
			}
		}
	}

	n++
	fmt.Fprintf(&sb, "\n%d. REKOMENDASI & INSIGHT\n", n)
	for i, insight := range Insights(metrics) {
		fmt.Fprintf(&sb, "%d) %s\n", i+1, insight)
	}

	return &Section{
		Body:    strings.TrimRight(sb.String(), "\n"),
		Metrics: metrics,
	}, nil
}

func (s *Section) metrics() map[string]float64 {
	if s == nil {
		return nil
	}
	return s.Metrics
}

// Insights applies the threshold rules to merged report metrics.
func Insights(m map[string]float64) []string {
	var out []string

	if m[MetricActiveEmployees] > 0 && m[MetricAttendanceRate] < 90 {
		out = append(out, fmt.Sprintf("Tingkat kehadiran karyawan %.2f%% berada di bawah target 90%%. Perkuat disiplin kehadiran dan evaluasi jadwal kerja.", m[MetricAttendanceRate]))
	}
	if m[MetricRatings] > 0 && m[MetricAvgRating] < 4 {
		out = append(out, fmt.Sprintf("Rating pelanggan rata-rata %.1f/5 di bawah 4. Tingkatkan kualitas layanan dan komunikasi service advisor.", m[MetricAvgRating]))
	}
	if m[MetricLatePct] > LateThreshold {
		out = append(out, fmt.Sprintf("Keterlambatan karyawan mencapai %.2f%%. Terapkan program ketepatan waktu dan pantau absensi harian.", m[MetricLatePct]))
	}
	switch g := m[MetricRevenueGrowth]; {
	case g > 5:
		out = append(out, fmt.Sprintf("Penjualan tumbuh %.2f%% dibanding periode sebelumnya. Pertahankan momentum dengan menambah kapasitas layanan.", g))
	case g < -5:
		out = append(out, fmt.Sprintf("Penjualan turun %.2f%% dibanding periode sebelumnya. Tinjau strategi promosi dan retensi pelanggan.", -g))
	}
	if m[MetricAtRisk] > 0 {
		out = append(out, fmt.Sprintf("Ada %.0f pelanggan berisiko hilang. Jalankan kampanye win-back dengan pengingat servis dan penawaran khusus.", m[MetricAtRisk]))
	}
	out = append(out,
		"Kembangkan program loyalitas untuk pelanggan dengan frekuensi kunjungan tinggi.",
		"Optimalkan penjadwalan mekanik berdasarkan beban kerja dan waktu tunggu part.",
	)
	return out
}
