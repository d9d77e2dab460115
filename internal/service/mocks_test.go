package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dhaba-pos/api/internal/database"
)

// mockTx satisfies pgx.Tx through embedding; only the lifecycle methods
// matter to the services under test.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *mockTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type mockDB struct {
	beginErr error
	txs      []*mockTx
}

func (d *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	tx := &mockTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *mockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (d *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

// mockOrderStore returns pgx.ErrNoRows for any method without an fn.
type mockOrderStore struct {
	getNextOrderNumberFn    func(ctx context.Context, outletID uuid.UUID) (int32, error)
	createOrderFn           func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn       func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderFn              func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
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

// mockInventoryStore returns pgx.ErrNoRows for any method without an fn.
type mockInventoryStore struct {
	getInventoryItemFn          func(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	getInventoryItemForUpdateFn func(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	createInventoryItemFn       func(ctx context.Context, arg database.CreateInventoryItemParams) (database.Inventory, error)
	updateInventoryStockFn      func(ctx context.Context, arg database.UpdateInventoryStockParams) (database.Inventory, error)
	updateInventoryThresholdFn  func(ctx context.Context, arg database.UpdateInventoryThresholdParams) (database.Inventory, error)
	createInventoryLogFn        func(ctx context.Context, arg database.CreateInventoryLogParams) (database.InventoryLog, error)
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
