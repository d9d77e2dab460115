package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/middleware"
	"github.com/dhaba-pos/api/internal/service"
	"github.com/dhaba-pos/api/internal/ws"
)

type BillingHandler struct {
	svc            *service.OrderService
	hub            Broadcaster
	defaultTaxRate decimal.Decimal
}

func NewBillingHandler(svc *service.OrderService, hub Broadcaster, defaultTaxRate decimal.Decimal) *BillingHandler {
	return &BillingHandler{svc: svc, hub: hub, defaultTaxRate: defaultTaxRate}
}

type billResponse struct {
	orderResponse
}

func newBillResponse(b *service.Bill) billResponse {
	return billResponse{newOrderResponse(b.Order, b.Items, b.SideEffects)}
}

type generateBillRequest struct {
	OrderID       uuid.UUID `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	TaxRate       *float64  `json:"tax_rate"`
}

// Generate finalizes the order: computes tax on the subtotal, stores
// the payment method and completes the order. A second call for the
// same order gets 409.
func (h *BillingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())

	var req generateBillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	rate := h.defaultTaxRate
	if req.TaxRate != nil {
		rate = decimal.NewFromFloat(*req.TaxRate)
	}

	bill, err := h.svc.GenerateBill(r.Context(), service.GenerateBillInput{
		OutletID:      oid,
		OrderID:       req.OrderID,
		PaymentMethod: database.PaymentMethod(req.PaymentMethod),
		TaxRate:       rate,
		ActorID:       claims.UserID,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := newBillResponse(bill)
	if h.hub != nil {
		h.hub.Broadcast(oid, ws.EventOrderUpdated, resp)
		for _, e := range bill.SideEffects {
			if e.Name == "table_release" && e.Status == service.SideEffectOK && bill.Order.TableID.Valid {
				h.hub.Broadcast(oid, ws.EventTableUpdated, map[string]interface{}{
					"table_id": uuid.UUID(bill.Order.TableID.Bytes),
					"status":   string(database.TableStatusEMPTY),
				})
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns the bill view for a completed order; anything else is a
// conflict.
func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	orderID, err := uuidParam(r, "orderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	bill, err := h.svc.GetBill(r.Context(), oid, orderID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillResponse(bill))
}

// Reprint returns the same bill view through a POST, matching the
// printer workflow on the terminal.
func (h *BillingHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}

	var req struct {
		OrderID uuid.UUID `json:"order_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	bill, err := h.svc.GetBill(r.Context(), oid, req.OrderID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillResponse(bill))
}
