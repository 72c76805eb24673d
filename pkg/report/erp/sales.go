package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

// confirmedSales restricts sale_order to confirmed orders of one company in a window.
const confirmedSales = `so.company_id = ? AND so.state IN ('sale', 'done') AND so.date_order >= ? AND so.date_order < ?`

func (s *Source) SalesSummary(ctx context.Context, companyID int64, from, to time.Time) (report.SalesSummary, error) {
	start, end := bounds(from, to)
	var out report.SalesSummary
	err := s.raw(ctx, `
		SELECT COUNT(*) AS orders, COALESCE(SUM(so.amount_total), 0) AS revenue
		FROM sale_order so
		WHERE `+confirmedSales, companyID, start, end).Scan(&out).Error
	return out, err
}

func (s *Source) TopCustomers(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]report.Ranked, error) {
	start, end := bounds(from, to)
	var rows []report.Ranked
	err := s.raw(ctx, `
		SELECT p.name, COUNT(so.id) AS count, COALESCE(SUM(so.amount_total), 0) AS amount, MAX(so.date_order) AS last
		FROM sale_order so
		JOIN res_partner p ON p.id = so.partner_id
		WHERE `+confirmedSales+`
		GROUP BY p.id, p.name
		ORDER BY amount DESC
		LIMIT ?
	`, companyID, start, end, limit).Scan(&rows).Error
	return rows, err
}

func (s *Source) ProductSales(ctx context.Context, companyID int64, from, to time.Time) ([]report.ProductSales, error) {
	start, end := bounds(from, to)
	var rows []report.ProductSales
	err := s.raw(ctx, `
		SELECT pp.name,
		       COALESCE(SUM(l.product_uom_qty), 0) AS qty,
		       COALESCE(SUM(l.price_subtotal), 0) AS revenue,
		       COALESCE(SUM(l.product_uom_qty * pp.standard_price), 0) AS cost
		FROM sale_order_line l
		JOIN sale_order so ON so.id = l.order_id
		JOIN product_product pp ON pp.id = l.product_id
		WHERE `+confirmedSales+`
		GROUP BY pp.id, pp.name
		ORDER BY revenue DESC
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) MonthlySales(ctx context.Context, companyID int64, from, to time.Time) ([]report.MonthlyPoint, error) {
	start, end := bounds(from, to)
	var rows []report.MonthlyPoint
	err := s.raw(ctx, `
		SELECT date_trunc('month', so.date_order) AS month,
		       COALESCE(SUM(so.amount_total), 0) AS revenue,
		       COUNT(*) AS orders
		FROM sale_order so
		WHERE `+confirmedSales+`
		GROUP BY 1
		ORDER BY 1
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) PurchaseSummary(ctx context.Context, companyID int64, from, to time.Time) (report.SalesSummary, error) {
	start, end := bounds(from, to)
	var out report.SalesSummary
	err := s.raw(ctx, `
		SELECT COUNT(*) AS orders, COALESCE(SUM(amount_total), 0) AS revenue
		FROM purchase_order
		WHERE company_id = ? AND state IN ('purchase', 'done') AND date_order >= ? AND date_order < ?
	`, companyID, start, end).Scan(&out).Error
	return out, err
}

func (s *Source) TopVendors(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]report.Ranked, error) {
	start, end := bounds(from, to)
	var rows []report.Ranked
	err := s.raw(ctx, `
		SELECT p.name, COUNT(po.id) AS count, COALESCE(SUM(po.amount_total), 0) AS amount, MAX(po.date_order) AS last
		FROM purchase_order po
		JOIN res_partner p ON p.id = po.partner_id
		WHERE po.company_id = ? AND po.state IN ('purchase', 'done') AND po.date_order >= ? AND po.date_order < ?
		GROUP BY p.id, p.name
		ORDER BY amount DESC
		LIMIT ?
	`, companyID, start, end, limit).Scan(&rows).Error
	return rows, err
}
