package enum

// Permission modules (keys of a role permission map).

const (
	ModuleMenu      = "menu"
	ModuleTables    = "tables"
	ModuleOrders    = "orders"
	ModuleBilling   = "billing"
	ModuleInventory = "inventory"
	ModuleReports   = "reports"
	ModuleUsers     = "users"
)

// Permission actions.

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Role names. The roles table is editable; ADMIN is special-cased in middleware.

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
	RoleKitchen = "KITCHEN"
)

// Inventory log reasons. Free text column; these are the canonical labels.

const (
	ReasonInitialStock     = "Initial stock"
	ReasonManualAdjustment = "Manual adjustment"
)
