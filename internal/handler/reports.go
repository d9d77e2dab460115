package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dhaba-pos/api/internal/database"
)

// ReportStore is the slice of database.Queries the report handler uses.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error)
	GetItemSales(ctx context.Context, arg database.GetItemSalesParams) ([]database.GetItemSalesRow, error)
	GetPaymentSummary(ctx context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error)
	GetOutletComparison(ctx context.Context, arg database.GetOutletComparisonParams) ([]database.GetOutletComparisonRow, error)
}

type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

const reportDateLayout = "2006-01-02"

// dateRange parses start_date/end_date query params (end inclusive),
// defaulting to the last 30 days.
func dateRange(r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now()
	start := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	end := now

	q := r.URL.Query()
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(reportDateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		start = t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(reportDateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, true
}

func (h *ReportHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), database.GetDailySalesParams{
		OutletID:  oid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	type day struct {
		Day          string `json:"day"`
		OrderCount   int64  `json:"order_count"`
		Subtotal     string `json:"subtotal"`
		TaxCollected string `json:"tax_collected"`
		TotalSales   string `json:"total_sales"`
	}
	resp := make([]day, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, day{
			Day:          row.Day.Format(reportDateLayout),
			OrderCount:   row.OrderCount,
			Subtotal:     numericToString(row.Subtotal),
			TaxCollected: numericToString(row.TaxCollected),
			TotalSales:   numericToString(row.TotalSales),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"daily_sales": resp})
}

func (h *ReportHandler) ItemSales(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	rows, err := h.store.GetItemSales(r.Context(), database.GetItemSalesParams{
		OutletID:  oid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	type item struct {
		ItemID       uuid.UUID `json:"item_id"`
		Name         string    `json:"name"`
		QuantitySold int64     `json:"quantity_sold"`
		Revenue      string    `json:"revenue"`
	}
	resp := make([]item, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, item{
			ItemID:       row.ItemID,
			Name:         row.Name,
			QuantitySold: row.QuantitySold,
			Revenue:      numericToString(row.Revenue),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item_sales": resp})
}

func (h *ReportHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	oid, err := outletID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return
	}
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	rows, err := h.store.GetPaymentSummary(r.Context(), database.GetPaymentSummaryParams{
		OutletID:  oid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	type method struct {
		PaymentMethod string `json:"payment_method"`
		OrderCount    int64  `json:"order_count"`
		TotalAmount   string `json:"total_amount"`
	}
	resp := make([]method, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, method{
			PaymentMethod: row.PaymentMethod,
			OrderCount:    row.OrderCount,
			TotalAmount:   numericToString(row.TotalAmount),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_summary": resp})
}

// OutletComparison is the only cross-outlet report; it is mounted on
// the admin route group.
func (h *ReportHandler) OutletComparison(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	rows, err := h.store.GetOutletComparison(r.Context(), database.GetOutletComparisonParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	type outlet struct {
		OutletID   uuid.UUID `json:"outlet_id"`
		OutletName string    `json:"outlet_name"`
		OrderCount int64     `json:"order_count"`
		TotalSales string    `json:"total_sales"`
	}
	resp := make([]outlet, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, outlet{
			OutletID:   row.OutletID,
			OutletName: row.OutletName,
			OrderCount: row.OrderCount,
			TotalSales: numericToString(row.TotalSales),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"outlet_comparison": resp})
}
