package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusNEW       OrderStatus = "NEW"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusREADY     OrderStatus = "READY"
	OrderStatusSERVED    OrderStatus = "SERVED"
	OrderStatusCOMPLETED OrderStatus = "COMPLETED"
	OrderStatusCANCELLED OrderStatus = "CANCELLED"
)

type OrderType string

const (
	OrderTypeDINEIN   OrderType = "DINE_IN"
	OrderTypeTAKEAWAY OrderType = "TAKEAWAY"
)

type TableStatus string

const (
	TableStatusEMPTY    TableStatus = "EMPTY"
	TableStatusOCCUPIED TableStatus = "OCCUPIED"
	TableStatusBILLED   TableStatus = "BILLED"
)

type PaymentMethod string

const (
	PaymentMethodCASH PaymentMethod = "CASH"
	PaymentMethodUPI  PaymentMethod = "UPI"
	PaymentMethodCARD PaymentMethod = "CARD"
)

type Outlet struct {
	ID        uuid.UUID
	Name      string
	Address   pgtype.Text
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role struct {
	ID          uuid.UUID
	Name        string
	Permissions []byte // JSONB: module -> {view, create, edit, delete}
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID             uuid.UUID
	OutletID       uuid.UUID
	RoleID         uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Pin            pgtype.Text
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	OutletID    uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImageURL    pgtype.Text
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Table struct {
	ID        uuid.UUID
	OutletID  uuid.UUID
	Name      string
	Capacity  int32
	Status    TableStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID                 uuid.UUID
	OutletID           uuid.UUID
	TableID            pgtype.UUID
	OrderNumber        string
	OrderType          OrderType
	Status             OrderStatus
	Subtotal           pgtype.Numeric
	TaxAmount          pgtype.Numeric
	TotalAmount        pgtype.Numeric
	PaymentMethod      pgtype.Text
	CancellationReason pgtype.Text
	Notes              pgtype.Text
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrderItem freezes the menu item's name and price at order-creation
// time; later menu edits never alter historical orders.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ItemID    uuid.UUID
	Name      string
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
	Notes     pgtype.Text
	CreatedAt time.Time
}

type Inventory struct {
	ID                uuid.UUID
	OutletID          uuid.UUID
	ItemID            uuid.UUID
	Stock             pgtype.Numeric
	LowStockThreshold pgtype.Numeric
	UpdatedAt         time.Time
}

// InventoryLog rows are append-only; stock is never mutated without one.
type InventoryLog struct {
	ID        uuid.UUID
	OutletID  uuid.UUID
	ItemID    uuid.UUID
	Change    pgtype.Numeric
	Reason    string
	ActorID   uuid.UUID
	CreatedAt time.Time
}
