package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dhaba-pos/api/internal/auth"
	"github.com/dhaba-pos/api/internal/database"
)

// RoleStore is the slice of database.Queries the role handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type RoleStore interface {
	CreateRole(ctx context.Context, arg database.CreateRoleParams) (database.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (database.Role, error)
	ListRoles(ctx context.Context) ([]database.Role, error)
	UpdateRole(ctx context.Context, arg database.UpdateRoleParams) (database.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type RoleHandler struct {
	store RoleStore
}

func NewRoleHandler(store RoleStore) *RoleHandler {
	return &RoleHandler{store: store}
}

type roleResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Permissions auth.Permissions `json:"permissions"`
	IsSystem    bool             `json:"is_system"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func newRoleResponse(r database.Role) roleResponse {
	var perms auth.Permissions
	if len(r.Permissions) > 0 {
		_ = json.Unmarshal(r.Permissions, &perms)
	}
	return roleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: perms,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type roleRequest struct {
	Name        string           `json:"name"`
	Permissions auth.Permissions `json:"permissions"`
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, newRoleResponse(role))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"roles": resp})
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	perms, err := json.Marshal(req.Permissions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid permissions")
		return
	}

	role, err := h.store.CreateRole(r.Context(), database.CreateRoleParams{Name: req.Name, Permissions: perms})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRoleResponse(role))
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if current.IsSystem {
		writeError(w, http.StatusConflict, "system roles cannot be modified")
		return
	}

	name := current.Name
	if req.Name != "" {
		name = req.Name
	}
	perms := current.Permissions
	if req.Permissions != nil {
		perms, err = json.Marshal(req.Permissions)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid permissions")
			return
		}
	}

	role, err := h.store.UpdateRole(r.Context(), database.UpdateRoleParams{ID: id, Name: name, Permissions: perms})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoleResponse(role))
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	current, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if current.IsSystem {
		writeError(w, http.StatusConflict, "system roles cannot be deleted")
		return
	}

	if _, err := h.store.DeleteRole(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
