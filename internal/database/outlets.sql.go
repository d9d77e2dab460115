package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const outletColumns = `id, name, address, created_at, updated_at`

func scanOutlet(row pgx.Row) (Outlet, error) {
	var o Outlet
	err := row.Scan(&o.ID, &o.Name, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOutlet = `
INSERT INTO outlets (name, address)
VALUES ($1, $2)
RETURNING ` + outletColumns

type CreateOutletParams struct {
	Name    string
	Address pgtype.Text
}

func (q *Queries) CreateOutlet(ctx context.Context, arg CreateOutletParams) (Outlet, error) {
	return scanOutlet(q.db.QueryRow(ctx, createOutlet, arg.Name, arg.Address))
}

const getOutlet = `
SELECT ` + outletColumns + `
FROM outlets
WHERE id = $1
`

func (q *Queries) GetOutlet(ctx context.Context, id uuid.UUID) (Outlet, error) {
	return scanOutlet(q.db.QueryRow(ctx, getOutlet, id))
}

const listOutlets = `
SELECT ` + outletColumns + `
FROM outlets
ORDER BY name
`

func (q *Queries) ListOutlets(ctx context.Context) ([]Outlet, error) {
	rows, err := q.db.Query(ctx, listOutlets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outlets []Outlet
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, err
		}
		outlets = append(outlets, o)
	}
	return outlets, rows.Err()
}

const updateOutlet = `
UPDATE outlets
SET name = $2, address = $3, updated_at = now()
WHERE id = $1
RETURNING ` + outletColumns

type UpdateOutletParams struct {
	ID      uuid.UUID
	Name    string
	Address pgtype.Text
}

func (q *Queries) UpdateOutlet(ctx context.Context, arg UpdateOutletParams) (Outlet, error) {
	return scanOutlet(q.db.QueryRow(ctx, updateOutlet, arg.ID, arg.Name, arg.Address))
}

const deleteOutlet = `
DELETE FROM outlets
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteOutlet(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteOutlet, id).Scan(&out)
	return out, err
}
