package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printhubhq/printhub-backend/api/controllers"
	"github.com/printhubhq/printhub-backend/api/middleware"
	"github.com/printhubhq/printhub-backend/internal/customers"
	"github.com/printhubhq/printhub-backend/internal/earnings"
	"github.com/printhubhq/printhub-backend/internal/notifications"
	"github.com/printhubhq/printhub-backend/internal/orders"
	"github.com/printhubhq/printhub-backend/internal/payments"
	"github.com/printhubhq/printhub-backend/internal/staff"
	"github.com/printhubhq/printhub-backend/pkg/config"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/redis"
)

// Services bundles the domain services the router exposes over HTTP.
type Services struct {
	Staff         staff.Service
	Orders        orders.Service
	Payments      payments.Service
	Earnings      earnings.Service
	Customers     customers.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	bigqueryP controllers.Pinger,
	svcs Services,
) http.Handler {
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, bigqueryP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.StaffLogin(svcs.Staff, logg))
	})

	// Gateway callbacks authenticate by transaction id, not bearer token.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", controllers.GatewayCallback(svcs.Payments, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateDirectOrder(svcs.Orders, logg))
			r.Post("/requests", controllers.CreateOrderRequest(svcs.Orders, logg))
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderId}/transition", controllers.TransitionOrder(svcs.Orders, logg))
			r.Delete("/{orderId}", controllers.DeleteOrder(svcs.Orders, logg))

			r.Route("/{orderId}/payments", func(r chi.Router) {
				r.Get("/", controllers.ListOrderPayments(svcs.Payments, logg))
				r.Post("/cash", controllers.RecordCashPayment(svcs.Payments, logg))
				r.Post("/online", controllers.RecordOnlinePayment(svcs.Payments, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svcs.Customers, logg))
			r.Patch("/{customerId}", controllers.UpdateCustomer(svcs.Customers, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Get("/staff/{staffId}/earnings", controllers.StaffEarnings(svcs.Earnings, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.StaffRoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/staff", func(r chi.Router) {
			r.Post("/", controllers.CreateStaff(svcs.Staff, logg))
			r.Get("/", controllers.ListStaff(svcs.Staff, logg))
			r.Get("/{staffId}", controllers.GetStaff(svcs.Staff, logg))
			r.Patch("/{staffId}", controllers.UpdateStaff(svcs.Staff, logg))
			r.Post("/{staffId}/status", controllers.SetStaffStatus(svcs.Staff, logg))
			r.Delete("/{staffId}", controllers.DeleteStaff(svcs.Staff, logg))
		})

		r.Get("/earnings/designer-distribution", controllers.DesignerDistribution(svcs.Earnings, logg))
	})

	return r
}
