package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roleColumns = `id, name, permissions, is_system, created_at, updated_at`

func scanRole(row pgx.Row) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.Name, &r.Permissions, &r.IsSystem, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const createRole = `
INSERT INTO roles (name, permissions)
VALUES ($1, $2)
RETURNING ` + roleColumns

type CreateRoleParams struct {
	Name        string
	Permissions []byte
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, createRole, arg.Name, arg.Permissions))
}

const getRole = `
SELECT ` + roleColumns + `
FROM roles
WHERE id = $1
`

func (q *Queries) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, getRole, id))
}

const listRoles = `
SELECT ` + roleColumns + `
FROM roles
ORDER BY name
`

func (q *Queries) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := q.db.Query(ctx, listRoles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

const updateRole = `
UPDATE roles
SET name = $2, permissions = $3, updated_at = now()
WHERE id = $1 AND NOT is_system
RETURNING ` + roleColumns

type UpdateRoleParams struct {
	ID          uuid.UUID
	Name        string
	Permissions []byte
}

// UpdateRole refuses to touch system roles; callers get pgx.ErrNoRows.
func (q *Queries) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, updateRole, arg.ID, arg.Name, arg.Permissions))
}

const deleteRole = `
DELETE FROM roles
WHERE id = $1 AND NOT is_system
RETURNING id
`

func (q *Queries) DeleteRole(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteRole, id).Scan(&out)
	return out, err
}
