package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/middleware"
	"github.com/dhaba-pos/api/internal/service"
	"github.com/dhaba-pos/api/internal/ws"
)

// OrderStore is the slice of database.Queries the order handler reads
// from directly. Writes go through the order service.
type OrderStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

type OrderHandler struct {
	store OrderStore
	svc   *service.OrderService
	hub   Broadcaster
}

func NewOrderHandler(store OrderStore, svc *service.OrderService, hub Broadcaster) *OrderHandler {
	return &OrderHandler{store: store, svc: svc, hub: hub}
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Subtotal  string    `json:"subtotal"`
	Notes     *string   `json:"notes,omitempty"`
}

type orderResponse struct {
	ID                 uuid.UUID            `json:"id"`
	OutletID           uuid.UUID            `json:"outlet_id"`
	TableID            *uuid.UUID           `json:"table_id,omitempty"`
	OrderNumber        string               `json:"order_number"`
	OrderType          string               `json:"order_type"`
	Status             string               `json:"status"`
	Subtotal           string               `json:"subtotal"`
	TaxAmount          string               `json:"tax_amount"`
	TotalAmount        string               `json:"total_amount"`
	PaymentMethod      *string              `json:"payment_method,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	Notes              *string              `json:"notes,omitempty"`
	Items              []orderItemResponse  `json:"items,omitempty"`
	SideEffects        []service.SideEffect `json:"side_effects,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func newOrderResponse(o database.Order, items []database.OrderItem, effects []service.SideEffect) orderResponse {
	resp := orderResponse{
		ID:                 o.ID,
		OutletID:           o.OutletID,
		TableID:            uuidPtr(o.TableID),
		OrderNumber:        o.OrderNumber,
		OrderType:          string(o.OrderType),
		Status:             string(o.Status),
		Subtotal:           numericToString(o.Subtotal),
		TaxAmount:          numericToString(o.TaxAmount),
		TotalAmount:        numericToString(o.TotalAmount),
		PaymentMethod:      textPtr(o.PaymentMethod),
		CancellationReason: textPtr(o.CancellationReason),
		Notes:              textPtr(o.Notes),
		SideEffects:        effects,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        item.ID,
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: numericToString(item.UnitPrice),
			Subtotal:  numericToString(item.Subtotal),
			Notes:     textPtr(item.Notes),
		})
	}
	return resp
}

func (h *OrderHandler) notify(outletID uuid.UUID, eventType string, payload interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(outletID, eventType, payload)
	}
}

// notifyTableReleases mirrors successful table_release side effects to
// websocket clients so floor views refresh.
func (h *OrderHandler) notifyTableReleases(o database.Order, effects []service.SideEffect) {
	for _, e := range effects {
		if e.Name == "table_release" && e.Status == service.SideEffectOK && o.TableID.Valid {
			h.notify(o.OutletID, ws.EventTableUpdated, map[string]interface{}{
				"table_id": uuid.UUID(o.TableID.Bytes),
				"status":   string(database.TableStatusEMPTY),
			})
		}
	}
}

type createOrderRequest struct {
	OrderType string     `json:"order_type"`
	TableID   *uuid.UUID `json:"table_id"`
	Notes     string     `json:"notes"`
	Items     []struct {
		ItemID   uuid.UUID `json:"item_id"`
		Quantity int32     `json:"quantity"`
		Notes    string    `json:"notes"`
	} `json:"items"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())

	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.CreateOrderInput{
		OutletID:  oid,
		OrderType: database.OrderType(req.OrderType),
		Notes:     req.Notes,
		CreatedBy: claims.UserID,
	}
	if req.TableID != nil {
		in.TableID = *req.TableID
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItemInput{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		})
	}

	result, err := h.svc.Create(r.Context(), in)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := newOrderResponse(result.Order, result.Items, result.SideEffects)
	h.notify(oid, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	q := r.URL.Query()
	params := database.ListOrdersParams{
		OutletID:  oid,
		Status:    textOrNull(q.Get("status")),
		OrderType: textOrNull(q.Get("type")),
		Limit:     50,
	}
	if v := q.Get("start_date"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: ts, Valid: true}
	}
	if v := q.Get("end_date"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date")
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: ts, Valid: true}
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

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o, nil, nil))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": resp})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: id, OutletID: oid})
	if err != nil {
		serviceError(w, err)
		return
	}
	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order, items, nil))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.transition(w, r, database.OrderStatus(req.Status), req.Reason)
}

// Complete force-completes an order, e.g. for takeaway counters that
// skip the kitchen flow.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, database.OrderStatusCOMPLETED, "")
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.transition(w, r, database.OrderStatusCANCELLED, req.Reason)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, status database.OrderStatus, reason string) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())

	result, err := h.svc.Transition(r.Context(), service.TransitionInput{
		OutletID: oid,
		OrderID:  id,
		Status:   status,
		Reason:   reason,
		ActorID:  claims.UserID,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := newOrderResponse(result.Order, nil, result.SideEffects)
	event := ws.EventOrderUpdated
	if result.Order.Status == database.OrderStatusCANCELLED {
		event = ws.EventOrderCancelled
	}
	h.notify(oid, event, resp)
	h.notifyTableReleases(result.Order, result.SideEffects)

	writeJSON(w, http.StatusOK, resp)
}
