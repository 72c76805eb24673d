package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

const companyProducts = `(company_id = ? OR company_id IS NULL)`

func (s *Source) LowStock(ctx context.Context, companyID int64, threshold float64, limit int) ([]report.StockItem, error) {
	var rows []report.StockItem
	err := s.raw(ctx, `
		SELECT name, qty_available AS qty, COALESCE(uom_name, '') AS uom, qty_available * standard_price AS value
		FROM product_product
		WHERE `+companyProducts+` AND qty_available < ?
		ORDER BY qty_available ASC, name
		LIMIT ?
	`, companyID, threshold, limit).Scan(&rows).Error
	return rows, err
}

func (s *Source) TopStockValue(ctx context.Context, companyID int64, limit int) ([]report.StockItem, error) {
	var rows []report.StockItem
	err := s.raw(ctx, `
		SELECT name, qty_available AS qty, COALESCE(uom_name, '') AS uom, qty_available * standard_price AS value
		FROM product_product
		WHERE `+companyProducts+` AND qty_available > 0
		ORDER BY value DESC
		LIMIT ?
	`, companyID, limit).Scan(&rows).Error
	return rows, err
}

type stockMoveRow struct {
	Date         time.Time `gorm:"column:date"`
	Product      string    `gorm:"column:product"`
	Qty          float64   `gorm:"column:qty"`
	FromLocation string    `gorm:"column:from_location"`
	ToLocation   string    `gorm:"column:to_location"`
}

func (s *Source) RecentMoves(ctx context.Context, companyID int64, since time.Time, limit int) ([]report.StockMove, error) {
	var rows []stockMoveRow
	err := s.raw(ctx, `
		SELECT sm.date, pp.name AS product, sm.product_uom_qty AS qty,
		       COALESCE(sm.location_name, '') AS from_location,
		       COALESCE(sm.location_dest_name, '') AS to_location
		FROM stock_move sm
		JOIN product_product pp ON pp.id = sm.product_id
		WHERE sm.company_id = ? AND sm.state = 'done' AND sm.date >= ?
		ORDER BY sm.date DESC
		LIMIT ?
	`, companyID, since, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.StockMove, len(rows))
	for i, r := range rows {
		out[i] = report.StockMove{Date: r.Date, Product: r.Product, Qty: r.Qty, From: r.FromLocation, To: r.ToLocation}
	}
	return out, nil
}

func (s *Source) StockByProduct(ctx context.Context, companyID int64, names []string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	if len(names) == 0 {
		return out, nil
	}
	var rows []struct {
		Name string
		Qty  float64
	}
	err := s.raw(ctx, `
		SELECT name, COALESCE(SUM(qty_available), 0) AS qty
		FROM product_product
		WHERE `+companyProducts+` AND name IN ?
		GROUP BY name
	`, companyID, names).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.Name] = r.Qty
	}
	return out, nil
}
