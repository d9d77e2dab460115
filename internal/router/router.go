package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dhaba-pos/api/internal/config"
	"github.com/dhaba-pos/api/internal/database"
	"github.com/dhaba-pos/api/internal/enum"
	"github.com/dhaba-pos/api/internal/handler"
	"github.com/dhaba-pos/api/internal/middleware"
	"github.com/dhaba-pos/api/internal/service"
	"github.com/dhaba-pos/api/internal/ws"
)

// New builds the full route tree. The hub may be nil in tests; handlers
// treat a nil broadcaster as push disabled.
func New(cfg *config.Config, queries *database.Queries, orderSvc *service.OrderService, inventorySvc *service.InventoryService, hub *ws.Hub) http.Handler {
	authH := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuH := handler.NewMenuHandler(queries)
	tableH := handler.NewTableHandler(queries, broadcaster(hub))
	orderH := handler.NewOrderHandler(queries, orderSvc, broadcaster(hub))
	taxRate, err := decimal.NewFromString(cfg.DefaultTaxRate)
	if err != nil {
		log.Warn().Str("value", cfg.DefaultTaxRate).Msg("invalid DEFAULT_TAX_RATE, using 0.05")
		taxRate = decimal.NewFromFloat(0.05)
	}
	billingH := handler.NewBillingHandler(orderSvc, broadcaster(hub), taxRate)
	inventoryH := handler.NewInventoryHandler(queries, inventorySvc)
	userH := handler.NewUserHandler(queries)
	roleH := handler.NewRoleHandler(queries)
	outletH := handler.NewOutletHandler(queries)
	reportH := handler.NewReportHandler(queries)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/pin-login", authH.PinLogin)
		r.Post("/refresh", authH.Refresh)
	})

	if hub != nil {
		r.Get("/ws/outlets/{oid}/orders", ws.ServeWS(hub, cfg.JWTSecret))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleAdmin))

			r.Route("/outlets", func(r chi.Router) {
				r.Get("/", outletH.List)
				r.Post("/", outletH.Create)
				r.Put("/{id}", outletH.Update)
				r.Delete("/{id}", outletH.Delete)
			})

			r.Route("/roles", func(r chi.Router) {
				r.Get("/", roleH.List)
				r.Post("/", roleH.Create)
				r.Put("/{id}", roleH.Update)
				r.Delete("/{id}", roleH.Delete)
			})

			r.Get("/reports/outlet-comparison", reportH.OutletComparison)
		})

		r.Route("/outlets/{oid}", func(r chi.Router) {
			r.Use(middleware.RequireOutlet)

			r.Route("/menu", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleMenu, enum.ActionView)).Get("/", menuH.List)
				r.With(middleware.RequirePermission(enum.ModuleMenu, enum.ActionCreate)).Post("/", menuH.Create)
				r.With(middleware.RequirePermission(enum.ModuleMenu, enum.ActionEdit)).Put("/{id}", menuH.Update)
				r.With(middleware.RequirePermission(enum.ModuleMenu, enum.ActionDelete)).Delete("/{id}", menuH.Delete)
			})

			r.Route("/tables", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleTables, enum.ActionView)).Get("/", tableH.List)
				r.With(middleware.RequirePermission(enum.ModuleTables, enum.ActionCreate)).Post("/", tableH.Create)
				r.With(middleware.RequirePermission(enum.ModuleTables, enum.ActionEdit)).Put("/{id}", tableH.Update)
				r.With(middleware.RequirePermission(enum.ModuleTables, enum.ActionDelete)).Delete("/{id}", tableH.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionView)).Get("/", orderH.List)
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionView)).Get("/{id}", orderH.Get)
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionCreate)).Post("/", orderH.Create)
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionEdit)).Patch("/{id}/status", orderH.UpdateStatus)
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionEdit)).Post("/{id}/complete", orderH.Complete)
				r.With(middleware.RequirePermission(enum.ModuleOrders, enum.ActionDelete)).Delete("/{id}", orderH.Cancel)
			})

			r.Route("/billing", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleBilling, enum.ActionCreate)).Post("/generate", billingH.Generate)
				r.With(middleware.RequirePermission(enum.ModuleBilling, enum.ActionView)).Get("/{orderId}", billingH.Get)
				r.With(middleware.RequirePermission(enum.ModuleBilling, enum.ActionView)).Post("/reprint", billingH.Reprint)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleInventory, enum.ActionView)).Get("/", inventoryH.List)
				r.With(middleware.RequirePermission(enum.ModuleInventory, enum.ActionView)).Get("/logs", inventoryH.Logs)
				r.With(middleware.RequirePermission(enum.ModuleInventory, enum.ActionView)).Get("/alerts", inventoryH.Alerts)
				r.With(middleware.RequirePermission(enum.ModuleInventory, enum.ActionEdit)).Patch("/", inventoryH.Adjust)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequirePermission(enum.ModuleUsers, enum.ActionView)).Get("/", userH.List)
				r.With(middleware.RequirePermission(enum.ModuleUsers, enum.ActionCreate)).Post("/", userH.Create)
				r.With(middleware.RequirePermission(enum.ModuleUsers, enum.ActionEdit)).Put("/{id}", userH.Update)
				r.With(middleware.RequirePermission(enum.ModuleUsers, enum.ActionDelete)).Delete("/{id}", userH.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(enum.ModuleReports, enum.ActionView))
				r.Get("/daily-sales", reportH.DailySales)
				r.Get("/item-sales", reportH.ItemSales)
				r.Get("/payment-summary", reportH.PaymentSummary)
			})
		})
	})

	return r
}

// broadcaster avoids handing handlers a typed-nil interface when the
// hub is absent.
func broadcaster(hub *ws.Hub) handler.Broadcaster {
	if hub == nil {
		return nil
	}
	return hub
}
