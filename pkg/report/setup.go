package report

import (
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/pkg/assistant/classifier"
)

type Options struct {
	LowStockThreshold float64
	ForecastMonths    int
}

// NewDefaultRegistry wires every generator to the classifier categories. The
// summary and comprehensive reports are only reachable by name.
func NewDefaultRegistry(src Source, cls *classifier.Classifier, opts Options, cache Cache, ttl time.Duration, logger logger.ILogger) *Registry {
	r := NewRegistry(logger)
	wrap := func(g Generator) Generator { return Cached(g, cache, ttl, logger) }

	var (
		basic          = wrap(NewBasic(src))
		sales          = wrap(NewSales(src))
		inventory      = wrap(NewInventory(src, opts.LowStockThreshold))
		finance        = wrap(NewFinance(src))
		attendance     = wrap(NewAttendance(src))
		purchases      = wrap(NewPurchases(src))
		mechanic       = wrap(NewMechanicPerformance(src, cls))
		advisor        = wrap(NewAdvisorPerformance(src, cls))
		leadTime       = wrap(NewLeadTime(src, cls))
		product        = wrap(NewProduct(src))
		booking        = wrap(NewBooking(src))
		recommendation = wrap(NewRecommendation(src))
		prediction     = wrap(NewPrediction(src, opts.ForecastMonths))
		behavior       = wrap(NewCustomerBehavior(src))
		customer       = wrap(NewCustomer(src))
		opportunity    = wrap(NewOpportunity(src, src, src, opts.LowStockThreshold))
		workflow       = wrap(NewWorkflow(src))
		rfm            = wrap(NewRFM(src))
	)

	r.Register(classifier.CategoryBasic, basic)
	r.Register("sales", sales)
	r.Register("inventory", inventory)
	r.Register("finance", finance)
	r.Register("employees", attendance, mechanic, advisor)
	r.Register("purchases", purchases)
	r.Register("service", mechanic, advisor, leadTime)
	r.Register("product", product)
	r.Register("booking", booking)
	r.Register("recommendation", recommendation)
	r.Register("prediction", prediction)
	r.Register("customer_behavior", behavior)
	r.Register("customer", customer)
	r.Register("business_opportunity", opportunity)
	r.Register("workflow_efficiency", workflow)
	r.Register("rfm_analysis", rfm)

	r.Add(wrap(NewSummary(src, src, src)), NewComprehensive(r))
	return r
}
