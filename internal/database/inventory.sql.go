package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryColumns = `id, outlet_id, item_id, stock, low_stock_threshold, updated_at`

func scanInventory(row pgx.Row) (Inventory, error) {
	var inv Inventory
	err := row.Scan(&inv.ID, &inv.OutletID, &inv.ItemID, &inv.Stock, &inv.LowStockThreshold, &inv.UpdatedAt)
	return inv, err
}

const getInventoryItem = `
SELECT ` + inventoryColumns + `
FROM inventory
WHERE outlet_id = $1 AND item_id = $2
`

type GetInventoryItemParams struct {
	OutletID uuid.UUID
	ItemID   uuid.UUID
}

func (q *Queries) GetInventoryItem(ctx context.Context, arg GetInventoryItemParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, getInventoryItem, arg.OutletID, arg.ItemID))
}

const getInventoryItemForUpdate = `
SELECT ` + inventoryColumns + `
FROM inventory
WHERE outlet_id = $1 AND item_id = $2
FOR UPDATE
`

// GetInventoryItemForUpdate locks the (outlet, item) row so concurrent
// adjustments serialize. Must run inside a transaction.
func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, arg GetInventoryItemParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, getInventoryItemForUpdate, arg.OutletID, arg.ItemID))
}

const createInventoryItem = `
INSERT INTO inventory (outlet_id, item_id, stock, low_stock_threshold)
VALUES ($1, $2, $3, $4)
RETURNING ` + inventoryColumns

type CreateInventoryItemParams struct {
	OutletID          uuid.UUID
	ItemID            uuid.UUID
	Stock             pgtype.Numeric
	LowStockThreshold pgtype.Numeric
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, createInventoryItem,
		arg.OutletID, arg.ItemID, arg.Stock, arg.LowStockThreshold))
}

const updateInventoryStock = `
UPDATE inventory
SET stock = $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type UpdateInventoryStockParams struct {
	ID    uuid.UUID
	Stock pgtype.Numeric
}

func (q *Queries) UpdateInventoryStock(ctx context.Context, arg UpdateInventoryStockParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, updateInventoryStock, arg.ID, arg.Stock))
}

const updateInventoryThreshold = `
UPDATE inventory
SET low_stock_threshold = $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type UpdateInventoryThresholdParams struct {
	ID                uuid.UUID
	LowStockThreshold pgtype.Numeric
}

func (q *Queries) UpdateInventoryThreshold(ctx context.Context, arg UpdateInventoryThresholdParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, updateInventoryThreshold, arg.ID, arg.LowStockThreshold))
}

const createInventoryLog = `
INSERT INTO inventory_logs (outlet_id, item_id, change, reason, actor_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, outlet_id, item_id, change, reason, actor_id, created_at
`

type CreateInventoryLogParams struct {
	OutletID uuid.UUID
	ItemID   uuid.UUID
	Change   pgtype.Numeric
	Reason   string
	ActorID  uuid.UUID
}

func (q *Queries) CreateInventoryLog(ctx context.Context, arg CreateInventoryLogParams) (InventoryLog, error) {
	var l InventoryLog
	err := q.db.QueryRow(ctx, createInventoryLog,
		arg.OutletID, arg.ItemID, arg.Change, arg.Reason, arg.ActorID,
	).Scan(&l.ID, &l.OutletID, &l.ItemID, &l.Change, &l.Reason, &l.ActorID, &l.CreatedAt)
	return l, err
}

const listInventoryByOutlet = `
SELECT i.id, i.outlet_id, i.item_id, m.name, i.stock, i.low_stock_threshold,
       (i.stock <= i.low_stock_threshold) AS low_stock, i.updated_at
FROM inventory i
JOIN menu_items m ON m.id = i.item_id
WHERE i.outlet_id = $1
ORDER BY m.name
`

type ListInventoryByOutletRow struct {
	ID                uuid.UUID
	OutletID          uuid.UUID
	ItemID            uuid.UUID
	ItemName          string
	Stock             pgtype.Numeric
	LowStockThreshold pgtype.Numeric
	LowStock          bool
	UpdatedAt         time.Time
}

func (q *Queries) ListInventoryByOutlet(ctx context.Context, outletID uuid.UUID) ([]ListInventoryByOutletRow, error) {
	rows, err := q.db.Query(ctx, listInventoryByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListInventoryByOutletRow
	for rows.Next() {
		var r ListInventoryByOutletRow
		if err := rows.Scan(&r.ID, &r.OutletID, &r.ItemID, &r.ItemName, &r.Stock,
			&r.LowStockThreshold, &r.LowStock, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listLowStockItems = `
SELECT i.id, i.outlet_id, i.item_id, m.name, i.stock, i.low_stock_threshold,
       true AS low_stock, i.updated_at
FROM inventory i
JOIN menu_items m ON m.id = i.item_id
WHERE i.outlet_id = $1 AND i.stock <= i.low_stock_threshold
ORDER BY m.name
`

func (q *Queries) ListLowStockItems(ctx context.Context, outletID uuid.UUID) ([]ListInventoryByOutletRow, error) {
	rows, err := q.db.Query(ctx, listLowStockItems, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListInventoryByOutletRow
	for rows.Next() {
		var r ListInventoryByOutletRow
		if err := rows.Scan(&r.ID, &r.OutletID, &r.ItemID, &r.ItemName, &r.Stock,
			&r.LowStockThreshold, &r.LowStock, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listInventoryLogs = `
SELECT id, outlet_id, item_id, change, reason, actor_id, created_at
FROM inventory_logs
WHERE outlet_id = $1
  AND ($2::uuid IS NULL OR item_id = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListInventoryLogsParams struct {
	OutletID uuid.UUID
	ItemID   pgtype.UUID
	Limit    int32
	Offset   int32
}

func (q *Queries) ListInventoryLogs(ctx context.Context, arg ListInventoryLogsParams) ([]InventoryLog, error) {
	rows, err := q.db.Query(ctx, listInventoryLogs, arg.OutletID, arg.ItemID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []InventoryLog
	for rows.Next() {
		var l InventoryLog
		if err := rows.Scan(&l.ID, &l.OutletID, &l.ItemID, &l.Change, &l.Reason, &l.ActorID, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
