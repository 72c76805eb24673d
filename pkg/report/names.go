package report

// Generator names. They appear in cache keys and in "Error: <name>: ..." lines.
const (
	NameBasic            = "basic"
	NameSales            = "sales"
	NameInventory        = "inventory"
	NameFinance          = "finance"
	NameAttendance       = "attendance"
	NamePurchases        = "purchases"
	NameMechanic         = "mechanic_performance"
	NameAdvisor          = "advisor_performance"
	NameLeadTime         = "lead_time"
	NameProduct          = "product"
	NameBooking          = "booking"
	NameRecommendation   = "recommendation"
	NamePrediction       = "prediction"
	NameCustomerBehavior = "customer_behavior"
	NameCustomer         = "customer"
	NameOpportunity      = "business_opportunity"
	NameWorkflow         = "workflow_efficiency"
	NameRFM              = "rfm"
	NameSummary          = "summary"
	NameComprehensive    = "comprehensive"
)

// Metric keys shared between generators and the comprehensive insights.
const (
	MetricOrders           = "orders"
	MetricRevenue          = "revenue"
	MetricRevenueGrowth    = "revenue_growth_pct"
	MetricAttendanceRate   = "attendance_rate"
	MetricActiveEmployees  = "active_employees"
	MetricLatePct          = "late_pct"
	MetricAvgRating        = "avg_rating"
	MetricRatings          = "ratings"
	MetricAvgLeadTime      = "avg_lead_time"
	MetricAvgEfficiency    = "avg_efficiency"
	MetricOnTimeRate       = "on_time_rate"
	MetricAtRisk           = "at_risk"
	MetricChampions        = "champions"
	MetricGrowthRate       = "growth_rate_pct"
	MetricLowStock         = "low_stock_count"
	MetricOrdersCompleted  = "orders_completed"
	MetricTotalRevenue     = "total_revenue"
	MetricExpense          = "expense"
	MetricProfit           = "profit"
	MetricConversionRate   = "conversion_rate"
	MetricRealizationRate  = "realization_rate"
	MetricRepeatCustomers  = "repeat_customers"
	MetricBottleneckWait   = "bottleneck_wait"
	MetricCustomersScored  = "customers_scored"
	MetricForecastNext     = "forecast_next"
	MetricActiveCustomers  = "active_customers"
	MetricDormantCustomers = "dormant_customers"
)
