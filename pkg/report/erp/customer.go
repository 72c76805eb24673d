package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

func (s *Source) CustomerActivity(ctx context.Context, companyID int64, from, to time.Time) (report.CustomerActivity, error) {
	start, end := bounds(from, to)
	var out report.CustomerActivity
	err := s.raw(ctx, `
		WITH firsts AS (
			SELECT partner_id, MIN(date_order) AS first_order
			FROM sale_order
			WHERE company_id = ? AND state IN ('sale', 'done')
			GROUP BY partner_id
		), active AS (
			SELECT DISTINCT so.partner_id
			FROM sale_order so
			WHERE `+confirmedSales+`
		)
		SELECT COUNT(*) AS active,
		       COUNT(*) FILTER (WHERE f.first_order >= ?) AS new
		FROM active a
		JOIN firsts f ON f.partner_id = a.partner_id
	`, companyID, companyID, start, end, start).Scan(&out).Error
	if err != nil {
		return out, err
	}
	out.Returning = out.Active - out.New
	return out, nil
}

func (s *Source) CustomerVisits(ctx context.Context, companyID int64, from, to time.Time) ([]report.CustomerVisits, error) {
	start, end := bounds(from, to)
	var rows []report.CustomerVisits
	err := s.raw(ctx, `
		SELECT p.name,
		       COUNT(so.id) AS visits,
		       COALESCE(SUM(so.amount_total), 0) AS spend,
		       COALESCE(EXTRACT(EPOCH FROM MAX(so.date_order) - MIN(so.date_order)) / 86400 / NULLIF(COUNT(so.id) - 1, 0), 0) AS avg_days_between
		FROM sale_order so
		JOIN res_partner p ON p.id = so.partner_id
		WHERE `+confirmedSales+`
		GROUP BY p.id, p.name
		ORDER BY visits DESC, spend DESC
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) DormantCustomers(ctx context.Context, companyID int64, asOf time.Time, days, limit int) ([]report.Ranked, error) {
	cutoff := asOf.AddDate(0, 0, -days)
	var rows []report.Ranked
	err := s.raw(ctx, `
		SELECT p.name, COUNT(so.id) AS count, COALESCE(SUM(so.amount_total), 0) AS amount, MAX(so.date_order) AS last
		FROM sale_order so
		JOIN res_partner p ON p.id = so.partner_id
		WHERE so.company_id = ? AND so.state IN ('sale', 'done')
		GROUP BY p.id, p.name
		HAVING MAX(so.date_order) < ?
		ORDER BY amount DESC
		LIMIT ?
	`, companyID, cutoff, limit).Scan(&rows).Error
	return rows, err
}

// RFMScores ranks every customer with orders up to asOf into quintiles in one
// pass. Recency is ordered descending so the most recent buyers score 5.
func (s *Source) RFMScores(ctx context.Context, companyID int64, asOf time.Time) ([]report.RFMScore, error) {
	_, end := bounds(asOf, asOf)
	var rows []report.RFMScore
	err := s.raw(ctx, `
		WITH base AS (
			SELECT p.name,
			       (CAST(? AS date) - MAX(so.date_order)::date) AS recency_days,
			       COUNT(so.id) AS frequency,
			       COALESCE(SUM(so.amount_total), 0) AS monetary
			FROM sale_order so
			JOIN res_partner p ON p.id = so.partner_id
			WHERE so.company_id = ? AND so.state IN ('sale', 'done') AND so.date_order < ?
			GROUP BY p.id, p.name
		)
		SELECT name, recency_days, frequency, monetary,
		       NTILE(5) OVER (ORDER BY recency_days DESC) AS r,
		       NTILE(5) OVER (ORDER BY frequency ASC) AS f,
		       NTILE(5) OVER (ORDER BY monetary ASC) AS m
		FROM base
		ORDER BY monetary DESC
	`, asOf, companyID, end).Scan(&rows).Error
	return rows, err
}
