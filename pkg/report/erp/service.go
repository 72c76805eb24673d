package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

// customer_rating is a selection stored as text ('1'..'5').
const ratingExpr = `CAST(NULLIF(so.customer_rating::text, '') AS numeric)`

const staffColumns = `
	COUNT(DISTINCT so.id) AS orders,
	COALESCE(SUM(so.amount_total), 0) AS revenue,
	COALESCE(AVG(so.lead_time_servis), 0) AS avg_lead_time,
	COALESCE(AVG(CASE WHEN so.is_on_time THEN 100.0 ELSE 0 END), 0) AS on_time_rate,
	COALESCE(AVG(so.service_time_efficiency), 0) AS efficiency,
	COALESCE(AVG(` + ratingExpr + `), 0) AS avg_rating,
	COUNT(` + ratingExpr + `) AS ratings`

// Mechanic work is dated by the controller's completion stamp, advisor work by date_completed.
func (s *Source) MechanicPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]report.StaffPerformance, error) {
	start, end := bounds(from, to)
	var rows []report.StaffPerformance
	err := s.raw(ctx, `
		SELECT m.name,`+staffColumns+`
		FROM sale_order so
		JOIN sale_order_mechanic_rel r ON r.sale_order_id = so.id
		JOIN pitcar_mechanic_new m ON m.id = r.mechanic_id
		WHERE so.company_id = ? AND so.controller_selesai >= ? AND so.controller_selesai < ?
		GROUP BY m.id, m.name
		ORDER BY orders DESC, m.name
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) AdvisorPerformance(ctx context.Context, companyID int64, from, to time.Time) ([]report.StaffPerformance, error) {
	start, end := bounds(from, to)
	var rows []report.StaffPerformance
	err := s.raw(ctx, `
		SELECT a.name,`+staffColumns+`
		FROM sale_order so
		JOIN sale_order_service_advisor_rel r ON r.sale_order_id = so.id
		JOIN pitcar_service_advisor a ON a.id = r.advisor_id
		WHERE so.company_id = ? AND so.date_completed >= ? AND so.date_completed < ?
		GROUP BY a.id, a.name
		ORDER BY orders DESC, a.name
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

const completedOrders = `so.company_id = ? AND so.date_completed >= ? AND so.date_completed < ?`

type leadTimeRow struct {
	Orders              int     `gorm:"column:orders"`
	Revenue             float64 `gorm:"column:revenue"`
	AvgLeadTime         float64 `gorm:"column:avg_lead_time"`
	AvgWaitConfirmation float64 `gorm:"column:avg_wait_confirmation"`
	AvgWaitPart1        float64 `gorm:"column:avg_wait_part1"`
	AvgWaitPart2        float64 `gorm:"column:avg_wait_part2"`
	AvgWaitSublet       float64 `gorm:"column:avg_wait_sublet"`
	OnTimeRate          float64 `gorm:"column:on_time_rate"`
	AvgEfficiency       float64 `gorm:"column:avg_efficiency"`
	AvgRating           float64 `gorm:"column:avg_rating"`
	Ratings             int     `gorm:"column:ratings"`
}

func (s *Source) LeadTimeStats(ctx context.Context, companyID int64, from, to time.Time) (report.LeadTimeStats, error) {
	start, end := bounds(from, to)
	var r leadTimeRow
	err := s.raw(ctx, `
		SELECT COUNT(*) AS orders,
		       COALESCE(SUM(so.amount_total), 0) AS revenue,
		       COALESCE(AVG(so.lead_time_servis), 0) AS avg_lead_time,
		       COALESCE(AVG(so.lead_time_tunggu_konfirmasi), 0) AS avg_wait_confirmation,
		       COALESCE(AVG(so.lead_time_tunggu_part1), 0) AS avg_wait_part1,
		       COALESCE(AVG(so.lead_time_tunggu_part2), 0) AS avg_wait_part2,
		       COALESCE(AVG(so.lead_time_tunggu_sublet), 0) AS avg_wait_sublet,
		       COALESCE(AVG(CASE WHEN so.is_on_time THEN 100.0 ELSE 0 END), 0) AS on_time_rate,
		       COALESCE(AVG(so.service_time_efficiency), 0) AS avg_efficiency,
		       COALESCE(AVG(`+ratingExpr+`), 0) AS avg_rating,
		       COUNT(`+ratingExpr+`) AS ratings
		FROM sale_order so
		WHERE `+completedOrders, companyID, start, end).Scan(&r).Error
	if err != nil {
		return report.LeadTimeStats{}, err
	}
	return report.LeadTimeStats(r), nil
}

func (s *Source) LeadTimeByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]report.CategoryLeadTime, error) {
	start, end := bounds(from, to)
	var rows []report.CategoryLeadTime
	err := s.raw(ctx, `
		SELECT COALESCE(so.service_category, '') AS category,
		       COALESCE(so.service_subcategory, '') AS subcategory,
		       COUNT(*) AS orders,
		       COALESCE(AVG(so.lead_time_servis), 0) AS avg_lead_time
		FROM sale_order so
		WHERE `+completedOrders+`
		GROUP BY 1, 2
		ORDER BY 1, 2
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

const recommendationColumns = `
	COUNT(*) FILTER (WHERE so.total_recommendations > 0) AS orders,
	COALESCE(SUM(so.total_recommendations), 0) AS total,
	COALESCE(SUM(so.realized_recommendations), 0) AS realized`

func (s *Source) Recommendations(ctx context.Context, companyID int64, from, to time.Time) (report.RecommendationStats, error) {
	start, end := bounds(from, to)
	var out report.RecommendationStats
	err := s.raw(ctx, `SELECT `+recommendationColumns+` FROM sale_order so WHERE `+completedOrders,
		companyID, start, end).Scan(&out).Error
	return out, err
}

func (s *Source) RecommendationsByAdvisor(ctx context.Context, companyID int64, from, to time.Time) ([]report.RecommendationStats, error) {
	start, end := bounds(from, to)
	var rows []report.RecommendationStats
	err := s.raw(ctx, `
		SELECT a.name,`+recommendationColumns+`
		FROM sale_order so
		JOIN sale_order_service_advisor_rel r ON r.sale_order_id = so.id
		JOIN pitcar_service_advisor a ON a.id = r.advisor_id
		WHERE `+completedOrders+`
		GROUP BY a.id, a.name
		HAVING COALESCE(SUM(so.total_recommendations), 0) > 0
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) BookingsByState(ctx context.Context, companyID int64, from, to time.Time) ([]report.Bucket, error) {
	return s.bookingBuckets(ctx, "state", companyID, from, to)
}

func (s *Source) BookingsByCategory(ctx context.Context, companyID int64, from, to time.Time) ([]report.Bucket, error) {
	return s.bookingBuckets(ctx, "service_category", companyID, from, to)
}

// column is one of two fixed identifiers, never user input.
func (s *Source) bookingBuckets(ctx context.Context, column string, companyID int64, from, to time.Time) ([]report.Bucket, error) {
	var rows []report.Bucket
	err := s.raw(ctx, `
		SELECT COALESCE(`+column+`, '') AS key, COUNT(*) AS count
		FROM pitcar_service_booking
		WHERE company_id = ? AND booking_date BETWEEN ? AND ?
		GROUP BY 1
		ORDER BY count DESC, key
	`, companyID, from, to).Scan(&rows).Error
	if missingRelation(err) {
		// Booking module not installed on this ERP.
		return nil, nil
	}
	return rows, err
}
