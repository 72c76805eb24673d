package report

import (
	"context"
	"time"
)

// Source is the ERP read model. Each generator depends only on the slice it reads.
type Source interface {
	CompanySource
	SalesSource
	InventorySource
	FinanceSource
	PurchaseSource
	HRSource
	ServiceSource
	BookingSource
	CustomerSource
}

type Company struct {
	Name    string
	Website string
	Email   string
	Phone   string
	Street  string
	City    string
}

type CompanySource interface {
	Company(ctx context.Context, companyID int64) (*Company, error)
	CountUsers(ctx context.Context, companyID int64) (int, error)
	CountCustomers(ctx context.Context, companyID int64) (int, error)
}

// Ranked is a named aggregate such as a customer or vendor total.
type Ranked struct {
	Name   string
	Count  int
	Amount float64
	Last   time.Time
}

type SalesSummary struct {
	Orders  int
	Revenue float64
}

type ProductSales struct {
	Name    string
	Qty     float64
	Revenue float64
	Cost    float64
}

func (p ProductSales) MarginPct() float64 {
	return pct(p.Revenue-p.Cost, p.Revenue)
}

// MonthlyPoint is one calendar month of confirmed sales.
type MonthlyPoint struct {
	Month   time.Time
	Revenue float64
	Orders  int
}

type SalesSource interface {
	SalesSummary(ctx context.Context, companyID int64, from, to time.Time) (SalesSummary, error)
	TopCustomers(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]Ranked, error)
	// ProductSales is ordered by revenue, highest first.
	ProductSales(ctx context.Context, companyID int64, from, to time.Time) ([]ProductSales, error)
	MonthlySales(ctx context.Context, companyID int64, from, to time.Time) ([]MonthlyPoint, error)
}

type StockItem struct {
	Name  string
	Qty   float64
	Uom   string
	Value float64
}

type StockMove struct {
	Date    time.Time
	Product string
	Qty     float64
	From    string
	To      string
}

type InventorySource interface {
	LowStock(ctx context.Context, companyID int64, threshold float64, limit int) ([]StockItem, error)
	TopStockValue(ctx context.Context, companyID int64, limit int) ([]StockItem, error)
	RecentMoves(ctx context.Context, companyID int64, since time.Time, limit int) ([]StockMove, error)
	// StockByProduct returns on-hand quantities keyed by product name.
	StockByProduct(ctx context.Context, companyID int64, names []string) (map[string]float64, error)
}

type FinanceTotals struct {
	Invoices    int
	Revenue     float64
	Bills       int
	Expense     float64
	Payments    int
	PaymentsIn  float64
	PaymentsOut float64
}

type Invoice struct {
	Number  string
	Partner string
	DueDate time.Time
	Amount  float64
}

type FinanceSource interface {
	FinanceTotals(ctx context.Context, companyID int64, from, to time.Time) (FinanceTotals, error)
	OverdueInvoices(ctx context.Context, companyID int64, asOf time.Time, limit int) ([]Invoice, error)
}

type PurchaseSource interface {
	PurchaseSummary(ctx context.Context, companyID int64, from, to time.Time) (SalesSummary, error)
	TopVendors(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]Ranked, error)
}

type DepartmentAttendance struct {
	Department  string
	Employees   int
	Attendances int
	Late        int
}

type EmployeeLateness struct {
	Name        string
	Department  string
	Attendances int
	Late        int
}

type HRSource interface {
	AttendanceByDepartment(ctx context.Context, companyID int64, from, to time.Time) ([]DepartmentAttendance, error)
	// LateEmployees is ordered by late arrivals, most first.
	LateEmployees(ctx context.Context, companyID int64, from, to time.Time) ([]EmployeeLateness, error)
	CountActiveEmployees(ctx context.Context, companyID int64) (int, error)
}

// StaffPerformance aggregates completed orders for one mechanic or advisor.
// Lead times are in hours, rates in percent.
type StaffPerformance struct {
	Name        string
	Orders      int
	Revenue     float64
	AvgLeadTime float64
	OnTimeRate  float64
	Efficiency  float64
	AvgRating   float64
	Ratings     int
}

type LeadTimeStats struct {
	Orders              int
	Revenue             float64
	AvgLeadTime         float64
	AvgWaitConfirmation float64
	AvgWaitPart1        float64
	AvgWaitPart2        float64
	AvgWaitSublet       float64
	OnTimeRate          float64
	AvgEfficiency       float64
	AvgRating           float64
	Ratings             int
}

type CategoryLeadTime struct {
	Category    string
	Subcategory string
	Orders      int
	AvgLeadTime float64
}

type RecommendationStats struct {
	Name     string
	Orders   int
	Total    int
	Realized int
}

func (r RecommendationStats) Rate() float64 {
	return pct(float64(r.Realized), float64(r.Total))
}

type ServiceSource interface {
	MechanicPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]StaffPerformance, error)
	AdvisorPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]StaffPerformance, error)
	LeadTimeStats(ctx context.Context, companyID int64, from, to time.Time) (LeadTimeStats, error)
	LeadTimeByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]CategoryLeadTime, error)
	Recommendations(ctx context.Context, companyID int64, from, to time.Time) (RecommendationStats, error)
	RecommendationsByAdvisor(ctx context.Context, companyID int64, from, to time.Time) ([]RecommendationStats, error)
}

// Bucket is a labelled count.
type Bucket struct {
	Key   string
	Count int
}

type BookingSource interface {
	BookingsByState(ctx context.Context, companyID int64, from, to time.Time) ([]Bucket, error)
	BookingsByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]Bucket, error)
}

type CustomerActivity struct {
	Active    int
	New       int
	Returning int
}

// CustomerVisits summarises one customer's orders in a window.
type CustomerVisits struct {
	Name           string
	Visits         int
	Spend          float64
	AvgDaysBetween float64
}

// RFMScore holds raw values and NTILE(5) scores, 5 being best.
type RFMScore struct {
	Name        string
	RecencyDays int
	Frequency   int
	Monetary    float64
	R           int
	F           int
	M           int
}

type CustomerSource interface {
	CustomerActivity(ctx context.Context, companyID int64, from, to time.Time) (CustomerActivity, error)
	// CustomerVisits is ordered by visits, most first.
	CustomerVisits(ctx context.Context, companyID int64, from, to time.Time) ([]CustomerVisits, error)
	// DormantCustomers lists customers whose last order is older than days, by lifetime value.
	DormantCustomers(ctx context.Context, companyID int64, asOf time.Time, days, limit int) ([]Ranked, error)
	RFMScores(ctx context.Context, companyID int64, asOf time.Time) ([]RFMScore, error)
}
