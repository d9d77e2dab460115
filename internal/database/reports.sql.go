package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDailySales = `
SELECT date_trunc('day', created_at)::date AS day,
       COUNT(*) AS order_count,
       COALESCE(SUM(subtotal), 0) AS subtotal,
       COALESCE(SUM(tax_amount), 0) AS tax_collected,
       COALESCE(SUM(total_amount), 0) AS total_sales
FROM orders
WHERE outlet_id = $1 AND status = 'COMPLETED'
  AND created_at >= $2 AND created_at < $3
GROUP BY 1
ORDER BY 1
`

type GetDailySalesParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetDailySalesRow struct {
	Day          time.Time
	OrderCount   int64
	Subtotal     pgtype.Numeric
	TaxCollected pgtype.Numeric
	TotalSales   pgtype.Numeric
}

func (q *Queries) GetDailySales(ctx context.Context, arg GetDailySalesParams) ([]GetDailySalesRow, error) {
	rows, err := q.db.Query(ctx, getDailySales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetDailySalesRow
	for rows.Next() {
		var r GetDailySalesRow
		if err := rows.Scan(&r.Day, &r.OrderCount, &r.Subtotal, &r.TaxCollected, &r.TotalSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getItemSales = `
SELECT oi.item_id, oi.name,
       SUM(oi.quantity) AS quantity_sold,
       COALESCE(SUM(oi.subtotal), 0) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.outlet_id = $1 AND o.status = 'COMPLETED'
  AND o.created_at >= $2 AND o.created_at < $3
GROUP BY oi.item_id, oi.name
ORDER BY quantity_sold DESC
`

type GetItemSalesParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetItemSalesRow struct {
	ItemID       uuid.UUID
	Name         string
	QuantitySold int64
	Revenue      pgtype.Numeric
}

func (q *Queries) GetItemSales(ctx context.Context, arg GetItemSalesParams) ([]GetItemSalesRow, error) {
	rows, err := q.db.Query(ctx, getItemSales, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetItemSalesRow
	for rows.Next() {
		var r GetItemSalesRow
		if err := rows.Scan(&r.ItemID, &r.Name, &r.QuantitySold, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getPaymentSummary = `
SELECT payment_method,
       COUNT(*) AS order_count,
       COALESCE(SUM(total_amount), 0) AS total_amount
FROM orders
WHERE outlet_id = $1 AND status = 'COMPLETED' AND payment_method IS NOT NULL
  AND created_at >= $2 AND created_at < $3
GROUP BY payment_method
ORDER BY payment_method
`

type GetPaymentSummaryParams struct {
	OutletID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type GetPaymentSummaryRow struct {
	PaymentMethod string
	OrderCount    int64
	TotalAmount   pgtype.Numeric
}

func (q *Queries) GetPaymentSummary(ctx context.Context, arg GetPaymentSummaryParams) ([]GetPaymentSummaryRow, error) {
	rows, err := q.db.Query(ctx, getPaymentSummary, arg.OutletID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetPaymentSummaryRow
	for rows.Next() {
		var r GetPaymentSummaryRow
		if err := rows.Scan(&r.PaymentMethod, &r.OrderCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getOutletComparison = `
SELECT o.id, o.name,
       COUNT(ord.id) AS order_count,
       COALESCE(SUM(ord.total_amount), 0) AS total_sales
FROM outlets o
LEFT JOIN orders ord ON ord.outlet_id = o.id
  AND ord.status = 'COMPLETED'
  AND ord.created_at >= $1 AND ord.created_at < $2
GROUP BY o.id, o.name
ORDER BY total_sales DESC
`

type GetOutletComparisonParams struct {
	StartDate time.Time
	EndDate   time.Time
}

type GetOutletComparisonRow struct {
	OutletID   uuid.UUID
	OutletName string
	OrderCount int64
	TotalSales pgtype.Numeric
}

func (q *Queries) GetOutletComparison(ctx context.Context, arg GetOutletComparisonParams) ([]GetOutletComparisonRow, error) {
	rows, err := q.db.Query(ctx, getOutletComparison, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetOutletComparisonRow
	for rows.Next() {
		var r GetOutletComparisonRow
		if err := rows.Scan(&r.OutletID, &r.OutletName, &r.OrderCount, &r.TotalSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
