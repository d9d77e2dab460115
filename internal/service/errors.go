package service

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderFinalized      = errors.New("order already completed or cancelled")
	ErrOrderNotBilled      = errors.New("order has no bill yet")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidOrderType    = errors.New("invalid order type")
	ErrInvalidQuantity     = errors.New("item quantity must be positive")
	ErrReasonRequired      = errors.New("cancellation reason is required")
	ErrTableRequired       = errors.New("dine-in orders require a table")
	ErrTableNotFound       = errors.New("table not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidTaxRate      = errors.New("tax rate must be between 0 and 1")
	ErrStockNegative       = errors.New("stock cannot go below zero")
	ErrInventoryNotFound   = errors.New("no inventory record for item")
)
