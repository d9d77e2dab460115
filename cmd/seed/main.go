package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhaba-pos/api/internal/auth"
	"github.com/dhaba-pos/api/internal/config"
	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/enum"
)

func fullAccess(modules ...string) auth.Permissions {
	perms := auth.Permissions{}
	for _, m := range modules {
		perms[m] = auth.ModuleActions{View: true, Create: true, Edit: true, Delete: true}
	}
	return perms
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	q := database.New(pool)

	existing, err := q.ListRoles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("check roles")
	}
	if len(existing) > 0 {
		log.Info().Msg("database already seeded")
		return
	}

	// Roles. ADMIN bypasses permission checks in middleware, so its map
	// stays empty.
	cashierPerms := auth.Permissions{
		enum.ModuleMenu:    {View: true},
		enum.ModuleTables:  {View: true, Edit: true},
		enum.ModuleOrders:  {View: true, Create: true, Edit: true, Delete: true},
		enum.ModuleBilling: {View: true, Create: true},
	}
	kitchenPerms := auth.Permissions{
		enum.ModuleOrders: {View: true, Edit: true},
	}
	rolePerms := map[string]auth.Permissions{
		enum.RoleAdmin:   {},
		enum.RoleManager: fullAccess(enum.ModuleMenu, enum.ModuleTables, enum.ModuleOrders, enum.ModuleBilling, enum.ModuleInventory, enum.ModuleReports, enum.ModuleUsers),
		enum.RoleCashier: cashierPerms,
		enum.RoleKitchen: kitchenPerms,
	}

	roles := map[string]database.Role{}
	for _, name := range []string{enum.RoleAdmin, enum.RoleManager, enum.RoleCashier, enum.RoleKitchen} {
		perms, err := json.Marshal(rolePerms[name])
		if err != nil {
			log.Fatal().Err(err).Msg("marshal permissions")
		}
		role, err := q.CreateRole(ctx, database.CreateRoleParams{Name: name, Permissions: perms})
		if err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("create role")
		}
		roles[name] = role
	}

	// ADMIN must survive role management; the query layer refuses to
	// touch system roles.
	if _, err := pool.Exec(ctx, `UPDATE roles SET is_system = true WHERE name = $1`, enum.RoleAdmin); err != nil {
		log.Fatal().Err(err).Msg("mark admin role as system")
	}

	outlet, err := q.CreateOutlet(ctx, database.CreateOutletParams{
		Name:    "Dhaba Junction",
		Address: pgtype.Text{String: "12 MG Road, Bengaluru", Valid: true},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create outlet")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	admin, err := q.CreateUser(ctx, database.CreateUserParams{
		OutletID:       outlet.ID,
		RoleID:         roles[enum.RoleAdmin].ID,
		FullName:       "Admin",
		Email:          "admin@dhaba.local",
		HashedPassword: string(hashed),
		Pin:            pgtype.Text{String: "0000", Valid: true},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create admin user")
	}

	menu := []struct {
		name, price, category string
		stock                 string
	}{
		{"Butter Chicken", "320.00", "Mains", "40"},
		{"Paneer Tikka", "260.00", "Starters", "30"},
		{"Dal Makhani", "220.00", "Mains", "50"},
		{"Masala Dosa", "120.00", "South Indian", "60"},
		{"Chai", "30.00", "Beverages", "200"},
		{"Gulab Jamun", "90.00", "Desserts", "45"},
	}
	for _, m := range menu {
		item, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
			OutletID:    outlet.ID,
			Name:        m.name,
			Price:       mustNumeric(m.price),
			Category:    pgtype.Text{String: m.category, Valid: true},
			IsAvailable: true,
		})
		if err != nil {
			log.Fatal().Err(err).Str("item", m.name).Msg("create menu item")
		}
		if _, err := q.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
			OutletID:          outlet.ID,
			ItemID:            item.ID,
			Stock:             mustNumeric(m.stock),
			LowStockThreshold: mustNumeric("10"),
		}); err != nil {
			log.Fatal().Err(err).Str("item", m.name).Msg("create inventory")
		}
		if _, err := q.CreateInventoryLog(ctx, database.CreateInventoryLogParams{
			OutletID: outlet.ID,
			ItemID:   item.ID,
			Change:   mustNumeric(m.stock),
			Reason:   enum.ReasonInitialStock,
			ActorID:  admin.ID,
		}); err != nil {
			log.Fatal().Err(err).Str("item", m.name).Msg("create inventory log")
		}
	}

	for i := 1; i <= 8; i++ {
		if _, err := q.CreateTable(ctx, database.CreateTableParams{
			OutletID: outlet.ID,
			Name:     fmt.Sprintf("T%d", i),
			Capacity: 4,
		}); err != nil {
			log.Fatal().Err(err).Int("table", i).Msg("create table")
		}
	}

	log.Info().
		Str("outlet", outlet.Name).
		Str("admin_email", admin.Email).
		Msg("seed complete")
}

func mustNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		log.Fatal().Err(err).Str("value", s).Msg("parse numeric")
	}
	return n
}
