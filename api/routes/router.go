package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agriconnect/agriconnect-backend/api/controllers"
	"github.com/agriconnect/agriconnect-backend/api/middleware"
	"github.com/agriconnect/agriconnect-backend/internal/activities"
	"github.com/agriconnect/agriconnect-backend/internal/analytics"
	"github.com/agriconnect/agriconnect-backend/internal/auth"
	"github.com/agriconnect/agriconnect-backend/internal/farms"
	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/internal/marketplace"
	"github.com/agriconnect/agriconnect-backend/internal/notifications"
	"github.com/agriconnect/agriconnect-backend/internal/users"
	"github.com/agriconnect/agriconnect-backend/pkg/auth/session"
	"github.com/agriconnect/agriconnect-backend/pkg/config"
	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersRepo       *users.Repository
	Farms           farms.Service
	Activities      activities.Service
	Inventory       inventory.Service
	CSVPorter       *inventory.CSVPorter
	Reporter        *inventory.Reporter
	Marketplace     marketplace.Service
	Notifications   notifications.Service
	Analytics       analytics.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.CurrentUser(deps.UsersRepo, logg))
			r.Patch("/me", controllers.UpdateCurrentUser(deps.UsersRepo, logg))
			r.Post("/me/password", controllers.AuthChangePassword(deps.AuthService, logg))
		})

		r.Route("/farms", func(r chi.Router) {
			r.Post("/", controllers.CreateFarm(deps.Farms, logg))
			r.Get("/", controllers.ListFarms(deps.Farms, logg))
			r.Get("/{farmId}", controllers.GetFarm(deps.Farms, logg))
			r.Patch("/{farmId}", controllers.UpdateFarm(deps.Farms, logg))
			r.Delete("/{farmId}", controllers.DeactivateFarm(deps.Farms, logg))
			r.Post("/{farmId}/fields", controllers.CreateField(deps.Farms, logg))
			r.Get("/{farmId}/fields", controllers.ListFields(deps.Farms, logg))
		})
		r.Patch("/fields/{fieldId}", controllers.UpdateField(deps.Farms, logg))

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", controllers.CreateActivity(deps.Activities, logg))
			r.Get("/", controllers.ListActivities(deps.Activities, logg))
			r.Get("/{activityId}", controllers.GetActivity(deps.Activities, logg))
			r.Patch("/{activityId}", controllers.UpdateActivity(deps.Activities, logg))
			r.Delete("/{activityId}", controllers.DeleteActivity(deps.Activities, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.CreateInventoryItem(deps.Inventory, logg))
				r.Get("/", controllers.ListInventoryItems(deps.Inventory, logg))
				r.Get("/{itemId}", controllers.GetInventoryItem(deps.Inventory, logg))
				r.Patch("/{itemId}", controllers.UpdateInventoryItem(deps.Inventory, logg))
				r.With(middleware.RequireStaff(logg)).Delete("/{itemId}", controllers.DeleteInventoryItem(deps.Inventory, logg))
			})
			r.Post("/transactions", controllers.CreateInventoryTransaction(deps.Inventory, logg))
			r.Get("/transactions", controllers.ListInventoryTransactions(deps.Inventory, logg))
			r.Get("/alerts", controllers.ListLowStockAlerts(deps.Inventory, logg))
			r.Post("/alerts/{alertId}/acknowledge", controllers.AcknowledgeLowStockAlert(deps.Inventory, logg))
			r.Post("/import", controllers.ImportInventoryCSV(deps.CSVPorter, logg))
			r.Get("/export", controllers.ExportInventoryCSV(deps.CSVPorter, logg))
			r.Get("/reports/summary", controllers.InventorySummary(deps.Reporter, logg))
		})

		r.Route("/marketplace", func(r chi.Router) {
			r.Route("/listings", func(r chi.Router) {
				r.Post("/", controllers.CreateListing(deps.Marketplace, logg))
				r.Get("/", controllers.ListListings(deps.Marketplace, logg))
				r.Get("/{listingId}", controllers.GetListing(deps.Marketplace, logg))
				r.Patch("/{listingId}", controllers.UpdateListing(deps.Marketplace, logg))
				r.Post("/{listingId}/sold", controllers.MarkListingSold(deps.Marketplace, logg))
			})
			r.Get("/prices", controllers.ListPrices(deps.Marketplace, logg))
			r.With(middleware.RequireStaff(logg)).Post("/prices", controllers.CreatePriceUpdate(deps.Marketplace, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/metrics", controllers.RecordFarmMetric(deps.Analytics, logg))
			r.Get("/metrics", controllers.ListFarmMetrics(deps.Analytics, logg))
			r.Get("/summary", controllers.FarmAnalyticsSummary(deps.Analytics, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
