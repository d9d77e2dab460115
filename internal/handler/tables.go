package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/ws"
)

// TableStore is the slice of database.Queries the table handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	ListTablesByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Table, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, arg database.DeleteTableParams) (uuid.UUID, error)
	ReconcileTableStatuses(ctx context.Context, outletID uuid.UUID) (int64, error)
}

type TableHandler struct {
	store TableStore
	hub   Broadcaster
}

func NewTableHandler(store TableStore, hub Broadcaster) *TableHandler {
	return &TableHandler{store: store, hub: hub}
}

type tableResponse struct {
	ID        uuid.UUID `json:"id"`
	OutletID  uuid.UUID `json:"outlet_id"`
	Name      string    `json:"name"`
	Capacity  int32     `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTableResponse(t database.Table) tableResponse {
	return tableResponse{
		ID:        t.ID,
		OutletID:  t.OutletID,
		Name:      t.Name,
		Capacity:  t.Capacity,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type tableRequest struct {
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
	Status   string `json:"status"`
}

// List reconciles stale OCCUPIED tables before reading, so the floor
// view never shows a table as taken when its order is long finished.
// The correction is persisted, not just applied to the response.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	reconciled, err := h.store.ReconcileTableStatuses(r.Context(), oid)
	if err != nil {
		serviceError(w, err)
		return
	}

	tables, err := h.store.ListTablesByOutlet(r.Context(), oid)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		resp = append(resp, newTableResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tables":     resp,
		"reconciled": reconciled,
	})
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	var req tableRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Capacity < 1 {
		writeError(w, http.StatusBadRequest, "capacity must be positive")
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		OutletID: oid,
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTableResponse(table))
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	var req tableRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.store.GetTable(r.Context(), database.GetTableParams{ID: id, OutletID: oid})
	if err != nil {
		serviceError(w, err)
		return
	}

	params := database.UpdateTableParams{
		ID:       id,
		OutletID: oid,
		Name:     current.Name,
		Capacity: current.Capacity,
		Status:   current.Status,
	}
	if req.Name != "" {
		params.Name = req.Name
	}
	if req.Capacity > 0 {
		params.Capacity = req.Capacity
	}
	if req.Status != "" {
		switch database.TableStatus(req.Status) {
		case database.TableStatusEMPTY, database.TableStatusOCCUPIED, database.TableStatusBILLED:
			params.Status = database.TableStatus(req.Status)
		default:
			writeError(w, http.StatusBadRequest, "invalid table status")
			return
		}
	}

	table, err := h.store.UpdateTable(r.Context(), params)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := newTableResponse(table)
	if h.hub != nil {
		h.hub.Broadcast(oid, ws.EventTableUpdated, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), database.DeleteTableParams{ID: id, OutletID: oid}); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
