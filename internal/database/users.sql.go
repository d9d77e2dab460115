package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userWithRoleColumns = `u.id, u.outlet_id, u.role_id, u.full_name, u.email,
	u.hashed_password, u.pin, u.is_active, u.created_at, u.updated_at,
	r.name, r.permissions`

// UserWithRole is a user joined with its role name and permission map,
// the shape auth and user listings need.
type UserWithRole struct {
	User
	RoleName    string
	Permissions []byte
}

func scanUserWithRole(row pgx.Row) (UserWithRole, error) {
	var u UserWithRole
	err := row.Scan(&u.ID, &u.OutletID, &u.RoleID, &u.FullName, &u.Email,
		&u.HashedPassword, &u.Pin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&u.RoleName, &u.Permissions)
	return u, err
}

const getUserByEmail = `
SELECT ` + userWithRoleColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.email = $1 AND u.is_active
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (UserWithRole, error) {
	return scanUserWithRole(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `
SELECT ` + userWithRoleColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.id = $1 AND u.is_active
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (UserWithRole, error) {
	return scanUserWithRole(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByOutletAndPin = `
SELECT ` + userWithRoleColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.outlet_id = $1 AND u.pin = $2 AND u.is_active
`

type GetUserByOutletAndPinParams struct {
	OutletID uuid.UUID
	Pin      pgtype.Text
}

func (q *Queries) GetUserByOutletAndPin(ctx context.Context, arg GetUserByOutletAndPinParams) (UserWithRole, error) {
	return scanUserWithRole(q.db.QueryRow(ctx, getUserByOutletAndPin, arg.OutletID, arg.Pin))
}

const createUser = `
INSERT INTO users (outlet_id, role_id, full_name, email, hashed_password, pin)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, outlet_id, role_id, full_name, email, hashed_password, pin, is_active, created_at, updated_at
`

type CreateUserParams struct {
	OutletID       uuid.UUID
	RoleID         uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Pin            pgtype.Text
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser,
		arg.OutletID, arg.RoleID, arg.FullName, arg.Email, arg.HashedPassword, arg.Pin,
	).Scan(&u.ID, &u.OutletID, &u.RoleID, &u.FullName, &u.Email,
		&u.HashedPassword, &u.Pin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const listUsersByOutlet = `
SELECT ` + userWithRoleColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.outlet_id = $1 AND u.is_active
ORDER BY u.full_name
`

func (q *Queries) ListUsersByOutlet(ctx context.Context, outletID uuid.UUID) ([]UserWithRole, error) {
	rows, err := q.db.Query(ctx, listUsersByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserWithRole
	for rows.Next() {
		u, err := scanUserWithRole(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUser = `
UPDATE users
SET full_name = $3, role_id = $4, pin = $5, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active
RETURNING id, outlet_id, role_id, full_name, email, hashed_password, pin, is_active, created_at, updated_at
`

type UpdateUserParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
	FullName string
	RoleID   uuid.UUID
	Pin      pgtype.Text
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, updateUser,
		arg.ID, arg.OutletID, arg.FullName, arg.RoleID, arg.Pin,
	).Scan(&u.ID, &u.OutletID, &u.RoleID, &u.FullName, &u.Email,
		&u.HashedPassword, &u.Pin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const deactivateUser = `
UPDATE users
SET is_active = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active
RETURNING id
`

type DeactivateUserParams struct {
	ID       uuid.UUID
	OutletID uuid.UUID
}

func (q *Queries) DeactivateUser(ctx context.Context, arg DeactivateUserParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deactivateUser, arg.ID, arg.OutletID).Scan(&id)
	return id, err
}
