package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, outlet_id, name, capacity, status, created_at, updated_at`

func scanTable(row pgx.Row) (Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.OutletID, &t.Name, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTable = `
INSERT INTO tables (outlet_id, name, capacity, status)
VALUES ($1, $2, $3, 'EMPTY')
RETURNING ` + tableColumns

type CreateTableParams struct {
	OutletID uuid.UUID
	Name     string
	Capacity int32
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, createTable, arg.OutletID, arg.Name, arg.Capacity))
}

const getTable = `
SELECT ` + tableColumns + `
FROM tables
WHERE id = $1 AND outlet_id = $2
`

type GetTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, arg.ID, arg.OutletID))
}

const listTablesByOutlet = `
SELECT ` + tableColumns + `
FROM tables
WHERE outlet_id = $1
ORDER BY name
`

func (q *Queries) ListTablesByOutlet(ctx context.Context, outletID uuid.UUID) ([]Table, error) {
	rows, err := q.db.Query(ctx, listTablesByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

const updateTable = `
UPDATE tables
SET name = $3, capacity = $4, status = $5, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING ` + tableColumns

type UpdateTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
	Name     string
	Capacity int32
	Status   TableStatus
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, updateTable, arg.ID, arg.OutletID, arg.Name, arg.Capacity, arg.Status))
}

const deleteTable = `
DELETE FROM tables
WHERE id = $1 AND outlet_id = $2
RETURNING id
`

type DeleteTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) DeleteTable(ctx context.Context, arg DeleteTableParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteTable, arg.ID, arg.OutletID).Scan(&id)
	return id, err
}

const occupyTable = `
UPDATE tables
SET status = 'OCCUPIED', updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING ` + tableColumns

type OccupyTableParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, occupyTable, arg.ID, arg.OutletID))
}

const releaseTable = `
UPDATE tables
SET status = 'EMPTY', updated_at = now()
WHERE id = $1
RETURNING ` + tableColumns

// ReleaseTable frees a table for new seating once its order reaches a
// terminal state.
func (q *Queries) ReleaseTable(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, releaseTable, id))
}

const reconcileTableStatuses = `
UPDATE tables t
SET status = 'EMPTY', updated_at = now()
WHERE t.outlet_id = $1
  AND t.status = 'OCCUPIED'
  AND NOT EXISTS (
	SELECT 1 FROM orders o
	WHERE o.table_id = t.id
	  AND o.order_type = 'DINE_IN'
	  AND o.status IN ('NEW', 'PREPARING', 'READY', 'SERVED')
  )
`

// ReconcileTableStatuses corrects OCCUPIED tables that have no active
// dine-in order back to EMPTY. Table status is denormalized from order
// state; this is the self-healing path for missed release writes.
// Idempotent: a second run right after the first touches zero rows.
func (q *Queries) ReconcileTableStatuses(ctx context.Context, outletID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, reconcileTableStatuses, outletID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
