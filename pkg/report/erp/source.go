// Package erp reads the workshop ERP's PostgreSQL tables with raw SQL.
package erp

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"jarvis-ai-be/pkg/report"
)

// Source implements report.Source. All period bounds are inclusive dates; the
// queries compare against [from, to+1day).
type Source struct {
	db *gorm.DB
}

var _ report.Source = (*Source)(nil)

func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

func (s *Source) raw(ctx context.Context, sql string, values ...interface{}) *gorm.DB {
	return s.db.WithContext(ctx).Raw(sql, values...)
}

// bounds turns inclusive dates into a half-open timestamp range.
func bounds(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	return start, end
}

// missingRelation reports whether err is postgres undefined_table, raised when
// an optional ERP addon is not installed.
func missingRelation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

func (s *Source) count(ctx context.Context, sql string, values ...interface{}) (int, error) {
	var n int64
	if err := s.raw(ctx, sql, values...).Scan(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Source) Company(ctx context.Context, companyID int64) (*report.Company, error) {
	var c report.Company
	res := s.raw(ctx, `
		SELECT name,
		       COALESCE(website, '') AS website,
		       COALESCE(email, '')   AS email,
		       COALESCE(phone, '')   AS phone,
		       COALESCE(street, '')  AS street,
		       COALESCE(city, '')    AS city
		FROM res_company
		WHERE id = ?
	`, companyID).Scan(&c)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &c, nil
}

func (s *Source) CountUsers(ctx context.Context, companyID int64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM res_users WHERE company_id = ? AND active`, companyID)
}

func (s *Source) CountCustomers(ctx context.Context, companyID int64) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*) FROM res_partner
		WHERE customer_rank > 0 AND (company_id = ? OR company_id IS NULL)
	`, companyID)
}
