package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, outlet_id, table_id, order_number, order_type, status,
	subtotal, tax_amount, total_amount, payment_method, cancellation_reason,
	notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OutletID, &o.TableID, &o.OrderNumber, &o.OrderType, &o.Status,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount, &o.PaymentMethod, &o.CancellationReason,
		&o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const getNextOrderNumber = `
SELECT COALESCE(MAX(SUBSTRING(order_number FROM 5)::int), 0) + 1
FROM orders
WHERE outlet_id = $1
`

// GetNextOrderNumber returns the next sequential order number for the
// outlet. Racy by itself; callers rely on the unique constraint plus a
// retry loop.
func (q *Queries) GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber, outletID).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (
	outlet_id, table_id, order_number, order_type, status,
	subtotal, tax_amount, total_amount, notes, created_by
) VALUES ($1, $2, $3, $4, 'NEW', $5, $6, $7, $8, $9)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OutletID    uuid.UUID
	TableID     pgtype.UUID
	OrderNumber string
	OrderType   OrderType
	Subtotal    pgtype.Numeric
	TaxAmount   pgtype.Numeric
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
	CreatedBy   uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.OutletID, arg.TableID, arg.OrderNumber, arg.OrderType,
		arg.Subtotal, arg.TaxAmount, arg.TotalAmount, arg.Notes, arg.CreatedBy,
	))
}

const createOrderItem = `
INSERT INTO order_items (order_id, item_id, name, quantity, unit_price, subtotal, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, item_id, name, quantity, unit_price, subtotal, notes, created_at
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ItemID    uuid.UUID
	Name      string
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
	Notes     pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var i OrderItem
	err := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ItemID, arg.Name, arg.Quantity, arg.UnitPrice, arg.Subtotal, arg.Notes,
	).Scan(&i.ID, &i.OrderID, &i.ItemID, &i.Name, &i.Quantity, &i.UnitPrice, &i.Subtotal, &i.Notes, &i.CreatedAt)
	return i, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND outlet_id = $2
`

type GetOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.OutletID))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE outlet_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR order_type = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	OutletID  uuid.UUID
	Status    pgtype.Text
	OrderType pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.OutletID, arg.Status, arg.OrderType, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, item_id, name, quantity, unit_price, subtotal, notes, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ItemID, &i.Name, &i.Quantity,
			&i.UnitPrice, &i.Subtotal, &i.Notes, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2
  AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
	Status   OrderStatus
}

// UpdateOrderStatus moves an order to a non-terminal or terminal status
// in one conditional write. Returns pgx.ErrNoRows when the order is
// missing or already finalized, closing the check-then-act race.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.OutletID, arg.Status))
}

const cancelOrder = `
UPDATE orders
SET status = 'CANCELLED', cancellation_reason = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2
  AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
	Reason   string
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.OutletID, arg.Reason))
}

const completeOrder = `
UPDATE orders
SET status = 'COMPLETED', updated_at = now()
WHERE id = $1 AND outlet_id = $2
  AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

type CompleteOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) CompleteOrder(ctx context.Context, arg CompleteOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, completeOrder, arg.ID, arg.OutletID))
}

const completeOrderWithBill = `
UPDATE orders
SET status = 'COMPLETED', payment_method = $3, tax_amount = $4, total_amount = $5, updated_at = now()
WHERE id = $1 AND outlet_id = $2
  AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

type CompleteOrderWithBillParams struct {
	ID            uuid.UUID
	OutletID      uuid.UUID
	PaymentMethod PaymentMethod
	TaxAmount     pgtype.Numeric
	TotalAmount   pgtype.Numeric
}

// CompleteOrderWithBill finalizes tax, total and payment method together
// with the COMPLETED transition so two concurrent bill requests cannot
// both succeed.
func (q *Queries) CompleteOrderWithBill(ctx context.Context, arg CompleteOrderWithBillParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, completeOrderWithBill,
		arg.ID, arg.OutletID, arg.PaymentMethod, arg.TaxAmount, arg.TotalAmount))
}
