package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, outlet_id, name, description, price, category,
	is_available, image_url, is_active, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.OutletID, &m.Name, &m.Description, &m.Price, &m.Category,
		&m.IsAvailable, &m.ImageURL, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const createMenuItem = `
INSERT INTO menu_items (outlet_id, name, description, price, category, is_available, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	OutletID    uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImageURL    pgtype.Text
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.OutletID, arg.Name, arg.Description, arg.Price, arg.Category, arg.IsAvailable, arg.ImageURL))
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND outlet_id = $2 AND is_active
`

type GetMenuItemParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.OutletID))
}

const listMenuItemsByOutlet = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE outlet_id = $1 AND is_active
  AND ($2::text IS NULL OR category = $2)
ORDER BY category NULLS LAST, name
`

type ListMenuItemsByOutletParams struct {
	OutletID uuid.UUID
	Category pgtype.Text
}

func (q *Queries) ListMenuItemsByOutlet(ctx context.Context, arg ListMenuItemsByOutletParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByOutlet, arg.OutletID, arg.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateMenuItem = `
UPDATE menu_items
SET name = $3, description = $4, price = $5, category = $6,
    is_available = $7, image_url = $8, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	OutletID    uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImageURL    pgtype.Text
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.OutletID, arg.Name, arg.Description, arg.Price, arg.Category,
		arg.IsAvailable, arg.ImageURL))
}

const softDeleteMenuItem = `
UPDATE menu_items
SET is_active = false, is_available = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active
RETURNING id
`

type SoftDeleteMenuItemParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

// SoftDeleteMenuItem deactivates the item instead of deleting the row;
// historical order items keep their FK reference.
func (q *Queries) SoftDeleteMenuItem(ctx context.Context, arg SoftDeleteMenuItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteMenuItem, arg.ID, arg.OutletID).Scan(&id)
	return id, err
}

const getMenuItemForOrder = `
SELECT id, name, price, is_available
FROM menu_items
WHERE id = $1 AND outlet_id = $2 AND is_active
`

type GetMenuItemForOrderParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

type GetMenuItemForOrderRow struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	IsAvailable bool
}

func (q *Queries) GetMenuItemForOrder(ctx context.Context, arg GetMenuItemForOrderParams) (GetMenuItemForOrderRow, error) {
	var r GetMenuItemForOrderRow
	err := q.db.QueryRow(ctx, getMenuItemForOrder, arg.ID, arg.OutletID).
		Scan(&r.ID, &r.Name, &r.Price, &r.IsAvailable)
	return r, err
}
