package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/enum"
)

// InventoryStore is the slice of database.Queries the inventory service
// uses. Satisfied by *database.Queries; narrow interface for testability.
type InventoryStore interface {
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	GetInventoryItemForUpdate(ctx context.Context, arg database.GetInventoryItemParams) (database.Inventory, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.Inventory, error)
	UpdateInventoryStock(ctx context.Context, arg database.UpdateInventoryStockParams) (database.Inventory, error)
	UpdateInventoryThreshold(ctx context.Context, arg database.UpdateInventoryThresholdParams) (database.Inventory, error)
	CreateInventoryLog(ctx context.Context, arg database.CreateInventoryLogParams) (database.InventoryLog, error)
}

type NewInventoryStore func(db database.DBTX) InventoryStore

type InventoryService struct {
	db       DB
	newStore NewInventoryStore
}

func NewInventoryService(db DB, newStore NewInventoryStore) *InventoryService {
	if newStore == nil {
		newStore = func(db database.DBTX) InventoryStore { return database.New(db) }
	}
	return &InventoryService{db: db, newStore: newStore}
}

// DeductForOrder reduces stock for every line item of a completed
// order. Each item runs in its own transaction so one bad item never
// blocks the rest. Items without an inventory row are skipped; stock
// never goes below zero, but the log records the full ordered quantity.
func (s *InventoryService) DeductForOrder(ctx context.Context, outletID uuid.UUID, orderNumber string, actorID uuid.UUID, items []database.OrderItem) []SideEffect {
	effects := make([]SideEffect, 0, len(items))
	for _, item := range items {
		effects = append(effects, s.deductOne(ctx, outletID, orderNumber, actorID, item))
	}
	return effects
}

func (s *InventoryService) deductOne(ctx context.Context, outletID uuid.UUID, orderNumber string, actorID uuid.UUID, item database.OrderItem) SideEffect {
	effect := SideEffect{Name: "inventory_deduction", Detail: item.Name}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		effect.Status = SideEffectFailed
		effect.Detail = fmt.Sprintf("%s: %v", item.Name, err)
		return effect
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	inv, err := store.GetInventoryItemForUpdate(ctx, database.GetInventoryItemParams{OutletID: outletID, ItemID: item.ItemID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			effect.Status = SideEffectSkipped
			effect.Detail = item.Name + ": no stock tracking"
			return effect
		}
		effect.Status = SideEffectFailed
		effect.Detail = fmt.Sprintf("%s: %v", item.Name, err)
		return effect
	}

	quantity := decimal.NewFromInt32(item.Quantity)
	newStock := numericToDecimal(inv.Stock).Sub(quantity)
	if newStock.IsNegative() {
		log.Warn().
			Str("item", item.Name).
			Str("order_number", orderNumber).
			Str("stock", numericToDecimal(inv.Stock).String()).
			Str("ordered", quantity.String()).
			Msg("stock clamped to zero")
		newStock = decimal.Zero
	}

	if _, err := store.UpdateInventoryStock(ctx, database.UpdateInventoryStockParams{ID: inv.ID, Stock: decimalToNumeric(newStock)}); err != nil {
		effect.Status = SideEffectFailed
		effect.Detail = fmt.Sprintf("%s: %v", item.Name, err)
		return effect
	}

	if _, err := store.CreateInventoryLog(ctx, database.CreateInventoryLogParams{
		OutletID: outletID,
		ItemID:   item.ItemID,
		Change:   decimalToNumeric(quantity.Neg()),
		Reason:   fmt.Sprintf("Order %s completed", orderNumber),
		ActorID:  actorID,
	}); err != nil {
		effect.Status = SideEffectFailed
		effect.Detail = fmt.Sprintf("%s: %v", item.Name, err)
		return effect
	}

	if err := tx.Commit(ctx); err != nil {
		effect.Status = SideEffectFailed
		effect.Detail = fmt.Sprintf("%s: %v", item.Name, err)
		return effect
	}

	effect.Status = SideEffectOK
	return effect
}

type AdjustStockInput struct {
	OutletID  uuid.UUID
	ItemID    uuid.UUID
	Change    decimal.Decimal
	Reason    string
	Threshold *decimal.Decimal
	ActorID   uuid.UUID
}

// Adjust applies a manual stock change and writes the matching log row
// in one transaction. The first adjustment for an item creates its
// inventory record. Manual adjustments never drive stock negative.
func (s *InventoryService) Adjust(ctx context.Context, in AdjustStockInput) (database.Inventory, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.Inventory{}, err
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	inv, err := store.GetInventoryItemForUpdate(ctx, database.GetInventoryItemParams{OutletID: in.OutletID, ItemID: in.ItemID})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.Inventory{}, err
		}
		inv, err = s.createInitial(ctx, store, in)
		if err != nil {
			return database.Inventory{}, err
		}
		return inv, tx.Commit(ctx)
	}

	newStock := numericToDecimal(inv.Stock).Add(in.Change)
	if newStock.IsNegative() {
		return database.Inventory{}, ErrStockNegative
	}

	inv, err = store.UpdateInventoryStock(ctx, database.UpdateInventoryStockParams{ID: inv.ID, Stock: decimalToNumeric(newStock)})
	if err != nil {
		return database.Inventory{}, err
	}

	if in.Threshold != nil {
		inv, err = store.UpdateInventoryThreshold(ctx, database.UpdateInventoryThresholdParams{ID: inv.ID, LowStockThreshold: decimalToNumeric(*in.Threshold)})
		if err != nil {
			return database.Inventory{}, err
		}
	}

	reason := in.Reason
	if reason == "" {
		reason = enum.ReasonManualAdjustment
	}
	if _, err := store.CreateInventoryLog(ctx, database.CreateInventoryLogParams{
		OutletID: in.OutletID,
		ItemID:   in.ItemID,
		Change:   decimalToNumeric(in.Change),
		Reason:   reason,
		ActorID:  in.ActorID,
	}); err != nil {
		return database.Inventory{}, err
	}

	return inv, tx.Commit(ctx)
}

func (s *InventoryService) createInitial(ctx context.Context, store InventoryStore, in AdjustStockInput) (database.Inventory, error) {
	if in.Change.IsNegative() {
		return database.Inventory{}, ErrStockNegative
	}

	threshold := decimal.Zero
	if in.Threshold != nil {
		threshold = *in.Threshold
	}

	inv, err := store.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
		OutletID:          in.OutletID,
		ItemID:            in.ItemID,
		Stock:             decimalToNumeric(in.Change),
		LowStockThreshold: decimalToNumeric(threshold),
	})
	if err != nil {
		return database.Inventory{}, err
	}

	reason := in.Reason
	if reason == "" {
		reason = enum.ReasonInitialStock
	}
	if _, err := store.CreateInventoryLog(ctx, database.CreateInventoryLogParams{
		OutletID: in.OutletID,
		ItemID:   in.ItemID,
		Change:   decimalToNumeric(in.Change),
		Reason:   reason,
		ActorID:  in.ActorID,
	}); err != nil {
		return database.Inventory{}, err
	}
	return inv, nil
}
