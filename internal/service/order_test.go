package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
)

type fakeDeducter struct {
	effects []SideEffect
	calls   int
	items   []database.OrderItem
}

func (f *fakeDeducter) DeductForOrder(ctx context.Context, outletID uuid.UUID, orderNumber string, actorID uuid.UUID, items []database.OrderItem) []SideEffect {
	f.calls++
	f.items = items
	return f.effects
}

func newOrderService(db *mockDB, store OrderStore, deducter InventoryDeducter) *OrderService {
	return NewOrderService(db, deducter, func(database.DBTX) OrderStore { return store })
}

func TestCreateOrderSnapshotsMenuPrices(t *testing.T) {
	outletID := uuid.New()
	tableID := uuid.New()
	itemID := uuid.New()
	userID := uuid.New()

	var createdOrder database.CreateOrderParams
	var createdItems []database.CreateOrderItemParams
	occupied := false

	store := &mockOrderStore{
		getTableFn: func(_ context.Context, arg database.GetTableParams) (database.Table, error) {
			return database.Table{ID: arg.ID, OutletID: arg.OutletID, Status: database.TableStatusEMPTY}, nil
		},
		getMenuItemForOrderFn: func(_ context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error) {
			return database.GetMenuItemForOrderRow{
				ID:          arg.ID,
				Name:        "Butter Chicken",
				Price:       decimalToNumeric(decimal.RequireFromString("200.00")),
				IsAvailable: true,
			}, nil
		},
		getNextOrderNumberFn: func(context.Context, uuid.UUID) (int32, error) {
			return 1, nil
		},
		createOrderFn: func(_ context.Context, arg database.CreateOrderParams) (database.Order, error) {
			createdOrder = arg
			return database.Order{ID: uuid.New(), OutletID: arg.OutletID, OrderNumber: arg.OrderNumber, Status: database.OrderStatusNEW}, nil
		},
		createOrderItemFn: func(_ context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			createdItems = append(createdItems, arg)
			return database.OrderItem{ID: uuid.New(), ItemID: arg.ItemID, Name: arg.Name, Quantity: arg.Quantity}, nil
		},
		occupyTableFn: func(_ context.Context, arg database.OccupyTableParams) (database.Table, error) {
			occupied = true
			return database.Table{ID: arg.ID, Status: database.TableStatusOCCUPIED}, nil
		},
	}

	db := &mockDB{}
	svc := newOrderService(db, store, nil)

	result, err := svc.Create(context.Background(), CreateOrderInput{
		OutletID:  outletID,
		OrderType: database.OrderTypeDINEIN,
		TableID:   tableID,
		Items:     []CreateOrderItemInput{{ItemID: itemID, Quantity: 2}},
		CreatedBy: userID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if createdOrder.OrderNumber != "DHB-001" {
		t.Errorf("order number: got %q, want %q", createdOrder.OrderNumber, "DHB-001")
	}
	if got := numericToDecimal(createdOrder.Subtotal).String(); got != "400" {
		t.Errorf("subtotal: got %s, want 400", got)
	}
	if len(createdItems) != 1 {
		t.Fatalf("created items: got %d, want 1", len(createdItems))
	}
	if createdItems[0].Name != "Butter Chicken" {
		t.Errorf("item name: got %q, want %q", createdItems[0].Name, "Butter Chicken")
	}
	if got := numericToDecimal(createdItems[0].UnitPrice).String(); got != "200" {
		t.Errorf("unit price: got %s, want 200", got)
	}
	if !occupied {
		t.Error("table was not occupied")
	}
	if len(result.Items) != 1 {
		t.Errorf("result items: got %d, want 1", len(result.Items))
	}
	if len(db.txs) != 1 || !db.txs[0].committed {
		t.Error("transaction was not committed")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newOrderService(&mockDB{}, &mockOrderStore{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderInput{OutletID: uuid.New(), OrderType: database.OrderTypeTAKEAWAY})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("empty order: got %v, want ErrEmptyOrder", err)
	}

	_, err = svc.Create(ctx, CreateOrderInput{
		OutletID:  uuid.New(),
		OrderType: database.OrderTypeTAKEAWAY,
		Items:     []CreateOrderItemInput{{ItemID: uuid.New(), Quantity: 0}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v, want ErrInvalidQuantity", err)
	}

	_, err = svc.Create(ctx, CreateOrderInput{
		OutletID:  uuid.New(),
		OrderType: database.OrderTypeDINEIN,
		Items:     []CreateOrderItemInput{{ItemID: uuid.New(), Quantity: 1}},
	})
	if !errors.Is(err, ErrTableRequired) {
		t.Errorf("dine-in without table: got %v, want ErrTableRequired", err)
	}

	_, err = svc.Create(ctx, CreateOrderInput{
		OutletID:  uuid.New(),
		OrderType: "DELIVERY",
		Items:     []CreateOrderItemInput{{ItemID: uuid.New(), Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidOrderType) {
		t.Errorf("bad order type: got %v, want ErrInvalidOrderType", err)
	}
}

func TestCreateOrderUnavailableItem(t *testing.T) {
	db := &mockDB{}
	store := &mockOrderStore{
		getMenuItemForOrderFn: func(_ context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error) {
			return database.GetMenuItemForOrderRow{ID: arg.ID, Name: "Lassi", IsAvailable: false}, nil
		},
	}
	svc := newOrderService(db, store, nil)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		OutletID:  uuid.New(),
		OrderType: database.OrderTypeTAKEAWAY,
		Items:     []CreateOrderItemInput{{ItemID: uuid.New(), Quantity: 1}},
	})
	if !errors.Is(err, ErrMenuItemUnavailable) {
		t.Fatalf("got %v, want ErrMenuItemUnavailable", err)
	}
	if len(db.txs) != 1 || !db.txs[0].rolledBack {
		t.Error("transaction was not rolled back")
	}
}

func TestCreateOrderRetriesOnNumberCollision(t *testing.T) {
	attempts := 0
	store := &mockOrderStore{
		getMenuItemForOrderFn: func(_ context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error) {
			return database.GetMenuItemForOrderRow{
				ID:          arg.ID,
				Name:        "Masala Dosa",
				Price:       decimalToNumeric(decimal.RequireFromString("120.00")),
				IsAvailable: true,
			}, nil
		},
		getNextOrderNumberFn: func(context.Context, uuid.UUID) (int32, error) {
			return int32(7 + attempts), nil
		},
		createOrderFn: func(_ context.Context, arg database.CreateOrderParams) (database.Order, error) {
			attempts++
			if attempts == 1 {
				return database.Order{}, &pgconn.PgError{Code: "23505", ConstraintName: orderNumberConstraint}
			}
			return database.Order{ID: uuid.New(), OrderNumber: arg.OrderNumber}, nil
		},
		createOrderItemFn: func(_ context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{ItemID: arg.ItemID}, nil
		},
	}
	svc := newOrderService(&mockDB{}, store, nil)

	result, err := svc.Create(context.Background(), CreateOrderInput{
		OutletID:  uuid.New(),
		OrderType: database.OrderTypeTAKEAWAY,
		Items:     []CreateOrderItemInput{{ItemID: uuid.New(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts: got %d, want 2", attempts)
	}
	if result.Order.OrderNumber != "DHB-008" {
		t.Errorf("order number: got %q, want %q", result.Order.OrderNumber, "DHB-008")
	}
}

func TestTransitionCancelledRequiresReason(t *testing.T) {
	svc := newOrderService(&mockDB{}, &mockOrderStore{}, nil)

	_, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  uuid.New(),
		Status:   database.OrderStatusCANCELLED,
		Reason:   "   ",
	})
	if !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("got %v, want ErrReasonRequired", err)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc := newOrderService(&mockDB{}, &mockOrderStore{}, nil)

	_, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  uuid.New(),
		Status:   "DELIVERED",
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("got %v, want ErrInvalidStatus", err)
	}
}

func TestTransitionFinalizedOrderConflicts(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{ID: arg.ID, Status: database.OrderStatusCOMPLETED}, nil
		},
	}
	svc := newOrderService(&mockDB{}, store, nil)

	_, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  uuid.New(),
		Status:   database.OrderStatusPREPARING,
	})
	if !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("got %v, want ErrOrderFinalized", err)
	}
}

func TestTransitionMissingOrderNotFound(t *testing.T) {
	svc := newOrderService(&mockDB{}, &mockOrderStore{}, nil)

	_, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  uuid.New(),
		Status:   database.OrderStatusPREPARING,
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestTransitionCompleteRunsSideEffects(t *testing.T) {
	tableID := uuid.New()
	orderID := uuid.New()
	released := false

	store := &mockOrderStore{
		completeOrderFn: func(_ context.Context, arg database.CompleteOrderParams) (database.Order, error) {
			return database.Order{
				ID:          arg.ID,
				OutletID:    arg.OutletID,
				OrderNumber: "DHB-042",
				OrderType:   database.OrderTypeDINEIN,
				TableID:     pgtype.UUID{Bytes: tableID, Valid: true},
				Status:      database.OrderStatusCOMPLETED,
			}, nil
		},
		releaseTableFn: func(_ context.Context, id uuid.UUID) (database.Table, error) {
			if id != tableID {
				t.Errorf("released table: got %s, want %s", id, tableID)
			}
			released = true
			return database.Table{ID: id, Status: database.TableStatusEMPTY}, nil
		},
		listOrderItemsByOrderFn: func(_ context.Context, id uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{{OrderID: id, Name: "Chai", Quantity: 3}}, nil
		},
	}
	deducter := &fakeDeducter{effects: []SideEffect{{Name: "inventory_deduction", Status: SideEffectOK, Detail: "Chai"}}}
	svc := newOrderService(&mockDB{}, store, deducter)

	result, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  orderID,
		Status:   database.OrderStatusCOMPLETED,
		ActorID:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if !released {
		t.Error("table was not released")
	}
	if deducter.calls != 1 {
		t.Errorf("deducter calls: got %d, want 1", deducter.calls)
	}
	if len(result.SideEffects) != 2 {
		t.Fatalf("side effects: got %d, want 2", len(result.SideEffects))
	}
	if result.SideEffects[0].Name != "table_release" || result.SideEffects[0].Status != SideEffectOK {
		t.Errorf("unexpected first side effect: %+v", result.SideEffects[0])
	}
}

func TestTransitionCancelSkipsDeduction(t *testing.T) {
	store := &mockOrderStore{
		cancelOrderFn: func(_ context.Context, arg database.CancelOrderParams) (database.Order, error) {
			return database.Order{
				ID:        arg.ID,
				OrderType: database.OrderTypeTAKEAWAY,
				Status:    database.OrderStatusCANCELLED,
			}, nil
		},
	}
	deducter := &fakeDeducter{}
	svc := newOrderService(&mockDB{}, store, deducter)

	result, err := svc.Transition(context.Background(), TransitionInput{
		OutletID: uuid.New(),
		OrderID:  uuid.New(),
		Status:   database.OrderStatusCANCELLED,
		Reason:   "customer left",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if deducter.calls != 0 {
		t.Errorf("deducter calls: got %d, want 0", deducter.calls)
	}
	if len(result.SideEffects) != 0 {
		t.Errorf("side effects: got %d, want 0", len(result.SideEffects))
	}
}

func TestGenerateBillComputesTax(t *testing.T) {
	orderID := uuid.New()
	var billed database.CompleteOrderWithBillParams

	store := &mockOrderStore{
		getOrderFn: func(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{
				ID:       arg.ID,
				OutletID: arg.OutletID,
				Status:   database.OrderStatusSERVED,
				Subtotal: decimalToNumeric(decimal.RequireFromString("400.00")),
			}, nil
		},
		completeOrderWithBillFn: func(_ context.Context, arg database.CompleteOrderWithBillParams) (database.Order, error) {
			billed = arg
			return database.Order{
				ID:          arg.ID,
				OrderNumber: "DHB-009",
				OrderType:   database.OrderTypeTAKEAWAY,
				Status:      database.OrderStatusCOMPLETED,
				TaxAmount:   arg.TaxAmount,
				TotalAmount: arg.TotalAmount,
			}, nil
		},
	}
	svc := newOrderService(&mockDB{}, store, nil)

	bill, err := svc.GenerateBill(context.Background(), GenerateBillInput{
		OutletID:      uuid.New(),
		OrderID:       orderID,
		PaymentMethod: database.PaymentMethodUPI,
		TaxRate:       decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("GenerateBill: %v", err)
	}
	if got := numericToDecimal(billed.TaxAmount).String(); got != "20" {
		t.Errorf("tax: got %s, want 20", got)
	}
	if got := numericToDecimal(billed.TotalAmount).String(); got != "420" {
		t.Errorf("total: got %s, want 420", got)
	}
	if bill.Order.Status != database.OrderStatusCOMPLETED {
		t.Errorf("status: got %s, want COMPLETED", bill.Order.Status)
	}
}

func TestGenerateBillTwiceConflicts(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{ID: arg.ID, Status: database.OrderStatusCOMPLETED}, nil
		},
	}
	svc := newOrderService(&mockDB{}, store, nil)

	_, err := svc.GenerateBill(context.Background(), GenerateBillInput{
		OutletID:      uuid.New(),
		OrderID:       uuid.New(),
		PaymentMethod: database.PaymentMethodCASH,
		TaxRate:       decimal.RequireFromString("0.05"),
	})
	if !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("got %v, want ErrOrderFinalized", err)
	}
}

func TestGenerateBillValidation(t *testing.T) {
	svc := newOrderService(&mockDB{}, &mockOrderStore{}, nil)
	ctx := context.Background()

	_, err := svc.GenerateBill(ctx, GenerateBillInput{
		OutletID:      uuid.New(),
		OrderID:       uuid.New(),
		PaymentMethod: "CHEQUE",
		TaxRate:       decimal.RequireFromString("0.05"),
	})
	if !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("bad payment: got %v, want ErrInvalidPayment", err)
	}

	_, err = svc.GenerateBill(ctx, GenerateBillInput{
		OutletID:      uuid.New(),
		OrderID:       uuid.New(),
		PaymentMethod: database.PaymentMethodCASH,
		TaxRate:       decimal.RequireFromString("1.5"),
	})
	if !errors.Is(err, ErrInvalidTaxRate) {
		t.Errorf("bad rate: got %v, want ErrInvalidTaxRate", err)
	}
}

func TestGetBillRequiresCompletedOrder(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{ID: arg.ID, Status: database.OrderStatusSERVED}, nil
		},
	}
	svc := newOrderService(&mockDB{}, store, nil)

	_, err := svc.GetBill(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrOrderNotBilled) {
		t.Fatalf("got %v, want ErrOrderNotBilled", err)
	}
}
