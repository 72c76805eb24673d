package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

func (s *Source) FinanceTotals(ctx context.Context, companyID int64, from, to time.Time) (report.FinanceTotals, error) {
	var out report.FinanceTotals
	err := s.raw(ctx, `
		SELECT COUNT(*) FILTER (WHERE move_type = 'out_invoice') AS invoices,
		       COALESCE(SUM(amount_total) FILTER (WHERE move_type = 'out_invoice'), 0) AS revenue,
		       COUNT(*) FILTER (WHERE move_type = 'in_invoice') AS bills,
		       COALESCE(SUM(amount_total) FILTER (WHERE move_type = 'in_invoice'), 0) AS expense
		FROM account_move
		WHERE company_id = ? AND state = 'posted' AND invoice_date BETWEEN ? AND ?
	`, companyID, from, to).Scan(&out).Error
	if err != nil {
		return out, err
	}

	var pay struct {
		Payments    int
		PaymentsIn  float64
		PaymentsOut float64
	}
	err = s.raw(ctx, `
		SELECT COUNT(*) AS payments,
		       COALESCE(SUM(amount) FILTER (WHERE partner_type = 'customer'), 0) AS payments_in,
		       COALESCE(SUM(amount) FILTER (WHERE partner_type = 'supplier'), 0) AS payments_out
		FROM account_payment
		WHERE company_id = ? AND state = 'posted' AND date BETWEEN ? AND ?
	`, companyID, from, to).Scan(&pay).Error
	if err != nil {
		return out, err
	}
	out.Payments = pay.Payments
	out.PaymentsIn = pay.PaymentsIn
	out.PaymentsOut = pay.PaymentsOut
	return out, nil
}

func (s *Source) OverdueInvoices(ctx context.Context, companyID int64, asOf time.Time, limit int) ([]report.Invoice, error) {
	var rows []report.Invoice
	err := s.raw(ctx, `
		SELECT am.name AS number, COALESCE(p.name, '') AS partner, am.invoice_date_due AS due_date, am.amount_total AS amount
		FROM account_move am
		LEFT JOIN res_partner p ON p.id = am.partner_id
		WHERE am.company_id = ? AND am.move_type = 'out_invoice' AND am.state = 'posted'
		  AND am.payment_state NOT IN ('paid', 'in_payment', 'reversed')
		  AND am.invoice_date_due < ?
		ORDER BY am.amount_total DESC
		LIMIT ?
	`, companyID, asOf, limit).Scan(&rows).Error
	return rows, err
}
