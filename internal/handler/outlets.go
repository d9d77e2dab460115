package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dhaba-pos/api/internal/database"
)

// OutletStore is the slice of database.Queries the outlet handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type OutletStore interface {
	CreateOutlet(ctx context.Context, arg database.CreateOutletParams) (database.Outlet, error)
	GetOutlet(ctx context.Context, id uuid.UUID) (database.Outlet, error)
	ListOutlets(ctx context.Context) ([]database.Outlet, error)
	UpdateOutlet(ctx context.Context, arg database.UpdateOutletParams) (database.Outlet, error)
	DeleteOutlet(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type OutletHandler struct {
	store OutletStore
}

func NewOutletHandler(store OutletStore) *OutletHandler {
	return &OutletHandler{store: store}
}

type outletResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newOutletResponse(o database.Outlet) outletResponse {
	return outletResponse{
		ID:        o.ID,
		Name:      o.Name,
		Address:   textPtr(o.Address),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type outletRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *OutletHandler) List(w http.ResponseWriter, r *http.Request) {
	outlets, err := h.store.ListOutlets(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]outletResponse, 0, len(outlets))
	for _, o := range outlets {
		resp = append(resp, newOutletResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"outlets": resp})
}

func (h *OutletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req outletRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	outlet, err := h.store.CreateOutlet(r.Context(), database.CreateOutletParams{
		Name:    req.Name,
		Address: textOrNull(req.Address),
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOutletResponse(outlet))
}

func (h *OutletHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	var req outletRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetOutlet(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	name := current.Name
	if req.Name != "" {
		name = req.Name
	}
	address := current.Address
	if req.Address != "" {
		address = textOrNull(req.Address)
	}

	outlet, err := h.store.UpdateOutlet(r.Context(), database.UpdateOutletParams{ID: id, Name: name, Address: address})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutletResponse(outlet))
}

func (h *OutletHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	if _, err := h.store.DeleteOutlet(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
