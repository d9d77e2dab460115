package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
)

const (
	orderNumberFormat     = "DHB-%03d"
	orderNumberConstraint = "orders_outlet_id_order_number_key"
	maxOrderNumberRetries = 3
)

// OrderStore is the slice of database.Queries the order service uses.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	CompleteOrderWithBill(ctx context.Context, arg database.CompleteOrderWithBillParams) (database.Order, error)
	GetMenuItemForOrder(ctx context.Context, arg database.GetMenuItemForOrderParams) (database.GetMenuItemForOrderRow, error)
	GetTable(ctx context.Context, arg database.GetTableParams) (database.Table, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error)
	ReleaseTable(ctx context.Context, id uuid.UUID) (database.Table, error)
}

type NewOrderStore func(db database.DBTX) OrderStore

// InventoryDeducter runs stock deduction for a completed order and
// reports per-item outcomes. Implemented by *InventoryService.
type InventoryDeducter interface {
	DeductForOrder(ctx context.Context, outletID uuid.UUID, orderNumber string, actorID uuid.UUID, items []database.OrderItem) []SideEffect
}

type OrderService struct {
	db        DB
	inventory InventoryDeducter
	newStore  NewOrderStore
}

func NewOrderService(db DB, inventory InventoryDeducter, newStore NewOrderStore) *OrderService {
	if newStore == nil {
		newStore = func(db database.DBTX) OrderStore { return database.New(db) }
	}
	return &OrderService{db: db, inventory: inventory, newStore: newStore}
}

type CreateOrderItemInput struct {
	ItemID   uuid.UUID
	Quantity int32
	Notes    string
}

type CreateOrderInput struct {
	OutletID  uuid.UUID
	OrderType database.OrderType
	TableID   uuid.UUID
	Notes     string
	Items     []CreateOrderItemInput
	CreatedBy uuid.UUID
}

// OrderResult is an order plus its line items and any secondary write
// outcomes produced by the operation.
type OrderResult struct {
	Order       database.Order
	Items       []database.OrderItem
	SideEffects []SideEffect
}

// Create places a new order. Item names and prices are copied from the
// menu at this moment; later menu edits never change the order. The
// whole write runs in one transaction, retried when two concurrent
// orders race for the same order number.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	switch in.OrderType {
	case database.OrderTypeDINEIN, database.OrderTypeTAKEAWAY:
	default:
		return nil, ErrInvalidOrderType
	}
	if in.OrderType == database.OrderTypeDINEIN && in.TableID == uuid.Nil {
		return nil, ErrTableRequired
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOnce(ctx, in)
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, orderNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *OrderService) createOnce(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	tableID := pgtype.UUID{}
	if in.OrderType == database.OrderTypeDINEIN {
		if _, err := store.GetTable(ctx, database.GetTableParams{ID: in.TableID, OutletID: in.OutletID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTableNotFound
			}
			return nil, err
		}
		tableID = pgtype.UUID{Bytes: in.TableID, Valid: true}
	}

	subtotal := decimal.Zero
	type pricedItem struct {
		in        CreateOrderItemInput
		name      string
		unitPrice decimal.Decimal
		subtotal  decimal.Decimal
	}
	priced := make([]pricedItem, 0, len(in.Items))
	for _, item := range in.Items {
		row, err := store.GetMenuItemForOrder(ctx, database.GetMenuItemForOrderParams{ID: item.ItemID, OutletID: in.OutletID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, item.ItemID)
			}
			return nil, err
		}
		if !row.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemUnavailable, row.Name)
		}
		unitPrice := numericToDecimal(row.Price)
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(lineSubtotal)
		priced = append(priced, pricedItem{in: item, name: row.Name, unitPrice: unitPrice, subtotal: lineSubtotal})
	}

	next, err := store.GetNextOrderNumber(ctx, in.OutletID)
	if err != nil {
		return nil, err
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OutletID:    in.OutletID,
		TableID:     tableID,
		OrderNumber: fmt.Sprintf(orderNumberFormat, next),
		OrderType:   in.OrderType,
		Subtotal:    decimalToNumeric(subtotal),
		TaxAmount:   decimalToNumeric(decimal.Zero),
		TotalAmount: decimalToNumeric(subtotal),
		Notes:       textOrNull(in.Notes),
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	items := make([]database.OrderItem, 0, len(priced))
	for _, p := range priced {
		created, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			ItemID:    p.in.ItemID,
			Name:      p.name,
			Quantity:  p.in.Quantity,
			UnitPrice: decimalToNumeric(p.unitPrice),
			Subtotal:  decimalToNumeric(p.subtotal),
			Notes:     textOrNull(p.in.Notes),
		})
		if err != nil {
			return nil, err
		}
		items = append(items, created)
	}

	if in.OrderType == database.OrderTypeDINEIN {
		if _, err := store.OccupyTable(ctx, database.OccupyTableParams{ID: in.TableID, OutletID: in.OutletID}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, Items: items}, nil
}

type TransitionInput struct {
	OutletID uuid.UUID
	OrderID  uuid.UUID
	Status   database.OrderStatus
	Reason   string
	ActorID  uuid.UUID
}

// Transition moves an order to a new status with a single conditional
// write; finalized orders are never touched. Reaching COMPLETED or
// CANCELLED also releases the table and, on completion, deducts stock;
// those outcomes come back as side effects rather than failing the
// transition.
func (s *OrderService) Transition(ctx context.Context, in TransitionInput) (*OrderResult, error) {
	switch in.Status {
	case database.OrderStatusNEW, database.OrderStatusPREPARING, database.OrderStatusREADY,
		database.OrderStatusSERVED, database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED:
	default:
		return nil, ErrInvalidStatus
	}

	store := s.newStore(s.db)

	var (
		order database.Order
		err   error
	)
	switch in.Status {
	case database.OrderStatusCANCELLED:
		if strings.TrimSpace(in.Reason) == "" {
			return nil, ErrReasonRequired
		}
		order, err = store.CancelOrder(ctx, database.CancelOrderParams{ID: in.OrderID, OutletID: in.OutletID, Reason: in.Reason})
	case database.OrderStatusCOMPLETED:
		order, err = store.CompleteOrder(ctx, database.CompleteOrderParams{ID: in.OrderID, OutletID: in.OutletID})
	default:
		order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: in.OrderID, OutletID: in.OutletID, Status: in.Status})
	}
	if err != nil {
		return nil, s.resolveWriteMiss(ctx, store, in.OutletID, in.OrderID, err)
	}

	result := &OrderResult{Order: order}
	if order.Status == database.OrderStatusCOMPLETED || order.Status == database.OrderStatusCANCELLED {
		result.SideEffects = s.finalize(ctx, store, order, in.ActorID)
	}
	return result, nil
}

type GenerateBillInput struct {
	OutletID      uuid.UUID
	OrderID       uuid.UUID
	PaymentMethod database.PaymentMethod
	TaxRate       decimal.Decimal
	ActorID       uuid.UUID
}

// Bill is a completed order with its items, ready for printing.
type Bill struct {
	Order       database.Order
	Items       []database.OrderItem
	SideEffects []SideEffect
}

// GenerateBill computes tax on the order subtotal, records the payment
// method and completes the order in one conditional write. Generating a
// bill twice is a conflict: the second request sees the finalized order.
func (s *OrderService) GenerateBill(ctx context.Context, in GenerateBillInput) (*Bill, error) {
	switch in.PaymentMethod {
	case database.PaymentMethodCASH, database.PaymentMethodUPI, database.PaymentMethodCARD:
	default:
		return nil, ErrInvalidPayment
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidTaxRate
	}

	store := s.newStore(s.db)

	current, err := store.GetOrder(ctx, database.GetOrderParams{ID: in.OrderID, OutletID: in.OutletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if isFinalized(current.Status) {
		return nil, ErrOrderFinalized
	}

	subtotal := numericToDecimal(current.Subtotal)
	tax := subtotal.Mul(in.TaxRate).Round(2)
	total := subtotal.Add(tax)

	order, err := store.CompleteOrderWithBill(ctx, database.CompleteOrderWithBillParams{
		ID:            in.OrderID,
		OutletID:      in.OutletID,
		PaymentMethod: in.PaymentMethod,
		TaxAmount:     decimalToNumeric(tax),
		TotalAmount:   decimalToNumeric(total),
	})
	if err != nil {
		return nil, s.resolveWriteMiss(ctx, store, in.OutletID, in.OrderID, err)
	}

	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &Bill{Order: order, Items: items, SideEffects: s.finalize(ctx, store, order, in.ActorID)}, nil
}

// GetBill returns the bill for reprinting. Only completed orders have
// one.
func (s *OrderService) GetBill(ctx context.Context, outletID, orderID uuid.UUID) (*Bill, error) {
	store := s.newStore(s.db)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != database.OrderStatusCOMPLETED {
		return nil, ErrOrderNotBilled
	}

	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &Bill{Order: order, Items: items}, nil
}

// resolveWriteMiss turns pgx.ErrNoRows from a conditional order update
// into the right domain error: the order either does not exist or was
// already finalized by a concurrent request.
func (s *OrderService) resolveWriteMiss(ctx context.Context, store OrderStore, outletID, orderID uuid.UUID, err error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, getErr := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, OutletID: outletID}); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return getErr
	}
	return ErrOrderFinalized
}

func (s *OrderService) finalize(ctx context.Context, store OrderStore, order database.Order, actorID uuid.UUID) []SideEffect {
	var effects []SideEffect

	if order.OrderType == database.OrderTypeDINEIN && order.TableID.Valid {
		if _, err := store.ReleaseTable(ctx, uuid.UUID(order.TableID.Bytes)); err != nil {
			log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("release table")
			effects = append(effects, SideEffect{Name: "table_release", Status: SideEffectFailed, Detail: err.Error()})
		} else {
			effects = append(effects, SideEffect{Name: "table_release", Status: SideEffectOK})
		}
	}

	if order.Status == database.OrderStatusCOMPLETED && s.inventory != nil {
		items, err := store.ListOrderItemsByOrder(ctx, order.ID)
		if err != nil {
			log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("load items for deduction")
			effects = append(effects, SideEffect{Name: "inventory_deduction", Status: SideEffectFailed, Detail: err.Error()})
			return effects
		}
		effects = append(effects, s.inventory.DeductForOrder(ctx, order.OutletID, order.OrderNumber, actorID, items)...)
	}
	return effects
}

func isFinalized(status database.OrderStatus) bool {
	return status == database.OrderStatusCOMPLETED || status == database.OrderStatusCANCELLED
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
