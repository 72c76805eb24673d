package report

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/assistant/period"
)

// fakeSource is an in-memory ERP read model. err, when set, is returned by
// every method.
type fakeSource struct {
	err error

	company   *Company
	users     int
	customers int

	sales        SalesSummary
	prevSales    SalesSummary
	topCustomers []Ranked
	products     []ProductSales
	prevProducts []ProductSales
	monthly      []MonthlyPoint

	lowStock   []StockItem
	stockValue []StockItem
	moves      []StockMove
	onHand     map[string]float64

	finance     FinanceTotals
	prevFinance FinanceTotals
	overdue     []Invoice

	purchases SalesSummary
	vendors   []Ranked

	departments []DepartmentAttendance
	late        []EmployeeLateness
	active      int

	mechanics   []StaffPerformance
	advisors    []StaffPerformance
	leadTime    LeadTimeStats
	categories  []CategoryLeadTime
	recs        RecommendationStats
	recsByStaff []RecommendationStats

	bookingStates     []Bucket
	bookingCategories []Bucket

	activity CustomerActivity
	visits   []CustomerVisits
	dormant  []Ranked
	rfm      []RFMScore

	calls map[string]int
}

var _ Source = (*fakeSource)(nil)

// testPeriod is June 2025, whose previous window is May 2025.
func testPeriod() period.Range {
	return period.Range{
		From:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Label: "June 2025",
	}
}

func testRequest(message string) Request {
	return Request{Message: message, CompanyID: 1, Period: testPeriod()}
}

func (f *fakeSource) hit(name string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

// isPrevious reports whether from falls before the test period.
func isPrevious(from time.Time) bool {
	return from.Before(testPeriod().From)
}

func (f *fakeSource) Company(ctx context.Context, companyID int64) (*Company, error) {
	f.hit("Company")
	return f.company, f.err
}

func (f *fakeSource) CountUsers(ctx context.Context, companyID int64) (int, error) {
	return f.users, f.err
}

func (f *fakeSource) CountCustomers(ctx context.Context, companyID int64) (int, error) {
	return f.customers, f.err
}

func (f *fakeSource) SalesSummary(ctx context.Context, companyID int64, from, to time.Time) (SalesSummary, error) {
	f.hit("SalesSummary")
	if isPrevious(from) {
		return f.prevSales, f.err
	}
	return f.sales, f.err
}

func (f *fakeSource) TopCustomers(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]Ranked, error) {
	return f.topCustomers, f.err
}

func (f *fakeSource) ProductSales(ctx context.Context, companyID int64, from, to time.Time) ([]ProductSales, error) {
	if isPrevious(from) {
		return f.prevProducts, f.err
	}
	return f.products, f.err
}

func (f *fakeSource) MonthlySales(ctx context.Context, companyID int64, from, to time.Time) ([]MonthlyPoint, error) {
	return f.monthly, f.err
}

func (f *fakeSource) LowStock(ctx context.Context, companyID int64, threshold float64, limit int) ([]StockItem, error) {
	return f.lowStock, f.err
}

func (f *fakeSource) TopStockValue(ctx context.Context, companyID int64, limit int) ([]StockItem, error) {
	return f.stockValue, f.err
}

func (f *fakeSource) RecentMoves(ctx context.Context, companyID int64, since time.Time, limit int) ([]StockMove, error) {
	return f.moves, f.err
}

func (f *fakeSource) StockByProduct(ctx context.Context, companyID int64, names []string) (map[string]float64, error) {
	return f.onHand, f.err
}

func (f *fakeSource) FinanceTotals(ctx context.Context, companyID int64, from, to time.Time) (FinanceTotals, error) {
	if isPrevious(from) {
		return f.prevFinance, f.err
	}
	return f.finance, f.err
}

func (f *fakeSource) OverdueInvoices(ctx context.Context, companyID int64, asOf time.Time, limit int) ([]Invoice, error) {
	return f.overdue, f.err
}

func (f *fakeSource) PurchaseSummary(ctx context.Context, companyID int64, from, to time.Time) (SalesSummary, error) {
	return f.purchases, f.err
}

func (f *fakeSource) TopVendors(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]Ranked, error) {
	return f.vendors, f.err
}

func (f *fakeSource) AttendanceByDepartment(ctx context.Context, companyID int64, from, to time.Time) ([]DepartmentAttendance, error) {
	return f.departments, f.err
}

func (f *fakeSource) LateEmployees(ctx context.Context, companyID int64, from, to time.Time) ([]EmployeeLateness, error) {
	return f.late, f.err
}

func (f *fakeSource) CountActiveEmployees(ctx context.Context, companyID int64) (int, error) {
	return f.active, f.err
}

func (f *fakeSource) MechanicPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]StaffPerformance, error) {
	f.hit("MechanicPerformance")
	return f.mechanics, f.err
}

func (f *fakeSource) AdvisorPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]StaffPerformance, error) {
	f.hit("AdvisorPerformance")
	return f.advisors, f.err
}

func (f *fakeSource) LeadTimeStats(ctx context.Context, companyID int64, from, to time.Time) (LeadTimeStats, error) {
	f.hit("LeadTimeStats")
	return f.leadTime, f.err
}

func (f *fakeSource) LeadTimeByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]CategoryLeadTime, error) {
	return f.categories, f.err
}

func (f *fakeSource) Recommendations(ctx context.Context, companyID int64, from, to time.Time) (RecommendationStats, error) {
	return f.recs, f.err
}

func (f *fakeSource) RecommendationsByAdvisor(ctx context.Context, companyID int64, from, to time.Time) ([]RecommendationStats, error) {
	return f.recsByStaff, f.err
}

func (f *fakeSource) BookingsByState(ctx context.Context, companyID int64, from, to time.Time) ([]Bucket, error) {
	return f.bookingStates, f.err
}

func (f *fakeSource) BookingsByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]Bucket, error) {
	return f.bookingCategories, f.err
}

func (f *fakeSource) CustomerActivity(ctx context.Context, companyID int64, from, to time.Time) (CustomerActivity, error) {
	return f.activity, f.err
}

func (f *fakeSource) CustomerVisits(ctx context.Context, companyID int64, from, to time.Time) ([]CustomerVisits, error) {
	return f.visits, f.err
}

func (f *fakeSource) DormantCustomers(ctx context.Context, companyID int64, asOf time.Time, days, limit int) ([]Ranked, error) {
	return f.dormant, f.err
}

func (f *fakeSource) RFMScores(ctx context.Context, companyID int64, asOf time.Time) ([]RFMScore, error) {
	return f.rfm, f.err
}
