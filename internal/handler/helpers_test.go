package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/auth"
	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/enum"
	"github.com/dhaba-pos/api/internal/middleware"
)

const testSecret = "test-secret"

func fullPerms() auth.Permissions {
	perms := auth.Permissions{}
	for _, m := range []string{enum.ModuleMenu, enum.ModuleTables, enum.ModuleOrders, enum.ModuleBilling, enum.ModuleInventory, enum.ModuleReports, enum.ModuleUsers} {
		perms[m] = auth.ModuleActions{View: true, Create: true, Edit: true, Delete: true}
	}
	return perms
}

func newToken(t *testing.T, userID, outletID uuid.UUID, role string, perms auth.Permissions) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, outletID, role, perms)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// mountOutletRoutes wires the handler under test behind the real auth
// middleware, the way the production router does.
func mountOutletRoutes(register func(r chi.Router)) http.Handler {
	root := chi.NewRouter()
	root.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		r.Route("/outlets/{oid}", func(r chi.Router) {
			r.Use(middleware.RequireOutlet)
			register(r)
		})
	})
	return root
}

func doAuthRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func textValid(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func mustNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

// mockTx satisfies pgx.Tx through embedding; only lifecycle methods are
// used by the services under test.
type mockTx struct {
	pgx.Tx
}

func (t *mockTx) Commit(ctx context.Context) error   { return nil }
func (t *mockTx) Rollback(ctx context.Context) error { return nil }

type mockDB struct{}

func (d *mockDB) Begin(ctx context.Context) (pgx.Tx, error) { return &mockTx{}, nil }
func (d *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *mockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}
func (d *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

type fakeHub struct {
	events []string
}

func (f *fakeHub) Broadcast(outletID uuid.UUID, eventType string, payload interface{}) {
	f.events = append(f.events, eventType)
}

// mockOrderStore satisfies both the handler's read interface and the
// order service's store; methods without an fn return pgx.ErrNoRows.
type mockOrderStore struct {
	getNextOrderNumberFn    func(ctx context.Context, outletID uuid.UUID) (int32, error)
	createOrderFn           func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn       func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderFn              func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	listOrdersFn            func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listOrderItemsByOrderFn func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	updateOrderStatusFn     func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	cancelOrderFn           func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	completeOrderFn         func(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	completeOrderWithBillFn func(ctx context.Context, arg database.CompleteOrderWithBillParams) (database.Order, error)
	getMenuItemForOrderFn   func(ctx context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error)
	getTableFn              func(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	occupyTableFn           func(ctx context.Context, arg database.OccupyTableParams) (database.Table, error)
	releaseTableFn          func(ctx context.Context, id uuid.UUID) (database.Table, error)
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	if m.getNextOrderNumberFn != nil {
		return m.getNextOrderNumberFn(ctx, outletID)
	}
	return 0, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if m.createOrderItemFn != nil {
		return m.createOrderItemFn(ctx, arg)
	}
	return database.OrderItem{}, pgx.ErrNoRows
}

func (m *mockOrderStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return nil, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if m.updateOrderStatusFn != nil {
		return m.updateOrderStatusFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
	if m.cancelOrderFn != nil {
		return m.cancelOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
	if m.completeOrderFn != nil {
		return m.completeOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CompleteOrderWithBill(ctx context.Context, arg database.CompleteOrderWithBillParams) (database.Order, error) {
	if m.completeOrderWithBillFn != nil {
		return m.completeOrderWithBillFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) GetMenuItemForOrder(ctx context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error) {
	if m.getMenuItemForOrderFn != nil {
		return m.getMenuItemForOrderFn(ctx, arg)
	}
	return database.GetMenuItemForOrderRow{}, pgx.ErrNoRows
}

func (m *mockOrderStore) GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error) {
	if m.getTableFn != nil {
		return m.getTableFn(ctx, arg)
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockOrderStore) OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
	if m.occupyTableFn != nil {
		return m.occupyTableFn(ctx, arg)
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ReleaseTable(ctx context.Context, id uuid.UUID) (database.Table, error) {
	if m.releaseTableFn != nil {
		return m.releaseTableFn(ctx, id)
	}
	return database.Table{}, pgx.ErrNoRows
}

type mockTableStore struct {
	createTableFn            func(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	getTableFn               func(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	listTablesByOutletFn     func(ctx context.Context, outletID uuid.UUID) ([]database.Table, error)
	updateTableFn            func(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	deleteTableFn            func(ctx context.Context, arg database.DeleteTableParams) (uuid.UUID, error)
	reconcileTableStatusesFn func(ctx context.Context, outletID uuid.UUID) (int64, error)
}

func (m *mockTableStore) CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error) {
	if m.createTableFn != nil {
		return m.createTableFn(ctx, arg)
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockTableStore) GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error) {
	if m.getTableFn != nil {
		return m.getTableFn(ctx, arg)
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockTableStore) ListTablesByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Table, error) {
	if m.listTablesByOutletFn != nil {
		return m.listTablesByOutletFn(ctx, outletID)
	}
	return nil, nil
}

func (m *mockTableStore) UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error) {
	if m.updateTableFn != nil {
		return m.updateTableFn(ctx, arg)
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockTableStore) DeleteTable(ctx context.Context, arg database.DeleteTableParams) (uuid.UUID, error) {
	if m.deleteTableFn != nil {
		return m.deleteTableFn(ctx, arg)
	}
	return uuid.Nil, pgx.ErrNoRows
}

func (m *mockTableStore) ReconcileTableStatuses(ctx context.Context, outletID uuid.UUID) (int64, error) {
	if m.reconcileTableStatusesFn != nil {
		return m.reconcileTableStatusesFn(ctx, outletID)
	}
	return 0, nil
}

// mockInventoryStore satisfies both the handler's read interface and
// the inventory service's store.
type mockInventoryStore struct {
	getInventoryItemFn          func(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	getInventoryItemForUpdateFn func(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	createInventoryItemFn       func(ctx context.Context, arg database.CreateInventoryItemParams) (database.Inventory, error)
	updateInventoryStockFn      func(ctx context.Context, arg database.UpdateInventoryStockParams) (database.Inventory, error)
	updateInventoryThresholdFn  func(ctx context.Context, arg database.UpdateInventoryThresholdParams) (database.Inventory, error)
	createInventoryLogFn        func(ctx context.Context, arg database.CreateInventoryLogParams) (database.InventoryLog, error)
	listInventoryByOutletFn     func(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error)
	listLowStockItemsFn         func(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error)
	listInventoryLogsFn         func(ctx context.Context, arg database.ListInventoryLogsParams) ([]database.InventoryLog, error)
}

func (m *mockInventoryStore) GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error) {
	if m.getInventoryItemFn != nil {
		return m.getInventoryItemFn(ctx, arg)
	}
	return database.Inventory{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) GetInventoryItemForUpdate(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error) {
	if m.getInventoryItemForUpdateFn != nil {
		return m.getInventoryItemForUpdateFn(ctx, arg)
	}
	return database.Inventory{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.Inventory, error) {
	if m.createInventoryItemFn != nil {
		return m.createInventoryItemFn(ctx, arg)
	}
	return database.Inventory{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) UpdateInventoryStock(ctx context.Context, arg database.UpdateInventoryStockParams) (database.Inventory, error) {
	if m.updateInventoryStockFn != nil {
		return m.updateInventoryStockFn(ctx, arg)
	}
	return database.Inventory{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) UpdateInventoryThreshold(ctx context.Context, arg database.UpdateInventoryThresholdParams) (database.Inventory, error) {
	if m.updateInventoryThresholdFn != nil {
		return m.updateInventoryThresholdFn(ctx, arg)
	}
	return database.Inventory{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) CreateInventoryLog(ctx context.Context, arg database.CreateInventoryLogParams) (database.InventoryLog, error) {
	if m.createInventoryLogFn != nil {
		return m.createInventoryLogFn(ctx, arg)
	}
	return database.InventoryLog{}, pgx.ErrNoRows
}

func (m *mockInventoryStore) ListInventoryByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error) {
	if m.listInventoryByOutletFn != nil {
		return m.listInventoryByOutletFn(ctx, outletID)
	}
	return nil, nil
}

func (m *mockInventoryStore) ListLowStockItems(ctx context.Context, outletID uuid.UUID) ([]database.ListInventoryByOutletRow, error) {
	if m.listLowStockItemsFn != nil {
		return m.listLowStockItemsFn(ctx, outletID)
	}
	return nil, nil
}

func (m *mockInventoryStore) ListInventoryLogs(ctx context.Context, arg database.ListInventoryLogsParams) ([]database.InventoryLog, error) {
	if m.listInventoryLogsFn != nil {
		return m.listInventoryLogsFn(ctx, arg)
	}
	return nil, nil
}
