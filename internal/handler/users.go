package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhaba-pos/api/internal/database"
)

// UserStore is the slice of database.Queries the user handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.UserWithRole, error)
	ListUsersByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.UserWithRole, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	DeactivateUser(ctx context.Context, arg database.DeactivateUserParams) (uuid.UUID, error)
	GetRole(ctx context.Context, id uuid.UUID) (database.Role, error)
}

type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	OutletID  uuid.UUID `json:"outlet_id"`
	RoleID    uuid.UUID `json:"role_id"`
	Role      string    `json:"role,omitempty"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	HasPin    bool      `json:"has_pin"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	users, err := h.store.ListUsersByOutlet(r.Context(), oid)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]staffResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, staffResponse{
			ID:        u.ID,
			OutletID:  u.OutletID,
			RoleID:    u.RoleID,
			Role:      u.RoleName,
			FullName:  u.FullName,
			Email:     u.Email,
			HasPin:    u.Pin.Valid,
			CreatedAt: u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": resp})
}

type createUserRequest struct {
	RoleID   uuid.UUID `json:"role_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Pin      string    `json:"pin"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.RoleID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "full_name, email, password and role_id are required")
		return
	}

	if _, err := h.store.GetRole(r.Context(), req.RoleID); err != nil {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serviceError(w, err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		OutletID:       oid,
		RoleID:         req.RoleID,
		FullName:       req.FullName,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Pin:            textOrNull(req.Pin),
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, staffResponse{
		ID:        user.ID,
		OutletID:  user.OutletID,
		RoleID:    user.RoleID,
		FullName:  user.FullName,
		Email:     user.Email,
		HasPin:    user.Pin.Valid,
		CreatedAt: user.CreatedAt,
	})
}

type updateUserRequest struct {
	RoleID   uuid.UUID `json:"role_id"`
	FullName string    `json:"full_name"`
	Pin      *string   `json:"pin"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if current.OutletID != oid {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	params := database.UpdateUserParams{
		ID:       id,
		OutletID: oid,
		FullName: current.FullName,
		RoleID:   current.RoleID,
		Pin:      current.Pin,
	}
	if req.FullName != "" {
		params.FullName = req.FullName
	}
	if req.RoleID != uuid.Nil {
		if _, err := h.store.GetRole(r.Context(), req.RoleID); err != nil {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}
		params.RoleID = req.RoleID
	}
	if req.Pin != nil {
		params.Pin = textOrNull(*req.Pin)
	}

	user, err := h.store.UpdateUser(r.Context(), params)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, staffResponse{
		ID:        user.ID,
		OutletID:  user.OutletID,
		RoleID:    user.RoleID,
		FullName:  user.FullName,
		Email:     user.Email,
		HasPin:    user.Pin.Valid,
		CreatedAt: user.CreatedAt,
	})
}

// Delete deactivates the account; rows stay for order history.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if _, err := h.store.DeactivateUser(r.Context(), database.DeactivateUserParams{ID: id, OutletID: oid}); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
