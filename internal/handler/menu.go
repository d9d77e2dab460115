package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
)

// MenuStore is the slice of database.Queries the menu handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ListMenuItemsByOutlet(ctx context.Context, arg database.ListMenuItemsByOutletParams) ([]database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error)
}

type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OutletID    uuid.UUID `json:"outlet_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       string    `json:"price"`
	Category    *string   `json:"category,omitempty"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		OutletID:    m.OutletID,
		Name:        m.Name,
		Description: textPtr(m.Description),
		Price:       numericToString(m.Price),
		Category:    textPtr(m.Category),
		IsAvailable: m.IsAvailable,
		ImageURL:    textPtr(m.ImageURL),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
	ImageURL    string `json:"image_url"`
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	items, err := h.store.ListMenuItemsByOutlet(r.Context(), database.ListMenuItemsByOutletParams{
		OutletID: oid,
		Category: textOrNull(r.URL.Query().Get("category")),
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		resp = append(resp, newMenuItemResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": resp})
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	var req menuItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		OutletID:    oid,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       decimalToNumeric(price),
		Category:    textOrNull(req.Category),
		IsAvailable: available,
		ImageURL:    textOrNull(req.ImageURL),
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMenuItemResponse(item))
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	var req menuItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, OutletID: oid})
	if err != nil {
		serviceError(w, err)
		return
	}

	params := database.UpdateMenuItemParams{
		ID:          id,
		OutletID:    oid,
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
		Category:    current.Category,
		IsAvailable: current.IsAvailable,
		ImageURL:    current.ImageURL,
	}
	if req.Name != "" {
		params.Name = req.Name
	}
	if req.Description != "" {
		params.Description = textOrNull(req.Description)
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
		params.Price = decimalToNumeric(price)
	}
	if req.Category != "" {
		params.Category = textOrNull(req.Category)
	}
	if req.IsAvailable != nil {
		params.IsAvailable = *req.IsAvailable
	}
	if req.ImageURL != "" {
		params.ImageURL = textOrNull(req.ImageURL)
	}

	item, err := h.store.UpdateMenuItem(r.Context(), params)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMenuItemResponse(item))
}

// Delete deactivates the item. Order items reference menu rows by FK,
// so rows are never physically removed.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	if _, err := h.store.SoftDeleteMenuItem(r.Context(), database.SoftDeleteMenuItemParams{ID: id, OutletID: oid}); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
