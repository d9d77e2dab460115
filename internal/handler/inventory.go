package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/middleware"
	"github.com/dhaba-pos/api/internal/service"
)

// InventoryStore is the read side of the inventory endpoints; writes go
// through the inventory service.
type InventoryStore interface {
	ListInventoryByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error)
	ListLowStockItems(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error)
	ListInventoryLogs(ctx context.Context, arg database.ListInventoryLogsParams) ([]database.InventoryLog, error)
}

type InventoryHandler struct {
	store InventoryStore
	svc   *service.InventoryService
}

func NewInventoryHandler(store InventoryStore, svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{store: store, svc: svc}
}

type inventoryResponse struct {
	ID                uuid.UUID `json:"id"`
	ItemID            uuid.UUID `json:"item_id"`
	ItemName          string    `json:"item_name,omitempty"`
	Stock             string    `json:"stock"`
	LowStockThreshold string    `json:"low_stock_threshold"`
	LowStock          bool      `json:"low_stock"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newInventoryRowResponse(r database.ListInventoryByOutletRow) inventoryResponse {
	return inventoryResponse{
		ID:                r.ID,
		ItemID:            r.ItemID,
		ItemName:          r.ItemName,
		Stock:             numericToString(r.Stock),
		LowStockThreshold: numericToString(r.LowStockThreshold),
		LowStock:          r.LowStock,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.store.ListInventoryByOutlet)
}

// Alerts lists only the items at or below their low-stock threshold.
func (h *InventoryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.store.ListLowStockItems)
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request, query func(context.Context, uuid.UUID) ([]database.ListInventoryByOutletRow, error)) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	rows, err := query(r.Context(), oid)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]inventoryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, newInventoryRowResponse(row))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"inventory": resp})
}

type adjustStockRequest struct {
	ItemID            uuid.UUID `json:"item_id"`
	Change            string    `json:"change"`
	Reason            string    `json:"reason"`
	LowStockThreshold *string   `json:"low_stock_threshold"`
}

// Adjust applies a signed stock delta. The first adjustment for an item
// creates its inventory record; the resulting stock must stay at or
// above zero.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())

	var req adjustStockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	change, err := decimal.NewFromString(req.Change)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid change")
		return
	}

	in := service.AdjustStockInput{
		OutletID: oid,
		ItemID:   req.ItemID,
		Change:   change,
		Reason:   req.Reason,
		ActorID:  claims.UserID,
	}
	if req.LowStockThreshold != nil {
		threshold, err := decimal.NewFromString(*req.LowStockThreshold)
		if err != nil || threshold.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid low_stock_threshold")
			return
		}
		in.Threshold = &threshold
	}

	inv, err := h.svc.Adjust(r.Context(), in)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, inventoryResponse{
		ID:                inv.ID,
		ItemID:            inv.ItemID,
		Stock:             numericToString(inv.Stock),
		LowStockThreshold: numericToString(inv.LowStockThreshold),
		UpdatedAt:         inv.UpdatedAt,
	})
}

type inventoryLogResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Change    string    `json:"change"`
	Reason    string    `json:"reason"`
	ActorID   uuid.UUID `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *InventoryHandler) Logs(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	params := database.ListInventoryLogsParams{OutletID: oid, Limit: 50}
	q := r.URL.Query()
	if v := q.Get("item_id"); v != "" {
		itemID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		params.ItemID = pgtype.UUID{Bytes: itemID, Valid: true}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		params.Limit = int32(n)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		params.Offset = int32(n)
	}

	logs, err := h.store.ListInventoryLogs(r.Context(), params)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]inventoryLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, inventoryLogResponse{
			ID:        l.ID,
			ItemID:    l.ItemID,
			Change:    numericToString(l.Change),
			Reason:    l.Reason,
			ActorID:   l.ActorID,
			CreatedAt: l.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": resp})
}
