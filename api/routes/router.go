package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartkisan/kisan-backend/api/controllers"
	"github.com/smartkisan/kisan-backend/api/middleware"
	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/internal/auth"
	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/internal/crops"
	"github.com/smartkisan/kisan-backend/internal/orders"
	"github.com/smartkisan/kisan-backend/internal/weather"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
	"github.com/smartkisan/kisan-backend/pkg/redis"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// Dependencies are the services and clients mounted by NewRouter. Redis may
// be nil, which disables rate limiting and response replay.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	Authenticator  *middleware.Authenticator
	AuthService    auth.Service
	CartService    cart.Service
	OrderService   orders.Service
	CropService    crops.Service
	WeatherService weather.Service
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	authn := deps.Authenticator

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins()),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(int64(cfg.App.BodyLimitMB)<<20),
	)
	if deps.Redis != nil {
		r.Use(middleware.RateLimit(deps.Redis, cfg.RateLimit.Window, cfg.RateLimit.Max, logg))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "Not found - %s", req.URL.RequestURI()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteJSON(w, http.StatusMethodNotAllowed, types.ErrorEnvelope{
			Message: "Method " + req.Method + " not allowed on " + req.URL.Path,
			Code:    "METHOD_NOT_ALLOWED",
		})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["database"] = deps.DB
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}
	r.Route("/api/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(readiness, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		login := middleware.AuthPolicy{
			Name:       "login",
			Window:     cfg.AuthRateLimit.LoginWindow,
			PerIP:      cfg.AuthRateLimit.LoginIPLimit,
			PerAccount: cfg.AuthRateLimit.LoginEmailLimit,
		}
		register := middleware.AuthPolicy{
			Name:       "register",
			Window:     cfg.AuthRateLimit.RegisterWindow,
			PerIP:      cfg.AuthRateLimit.RegisterIPLimit,
			PerAccount: cfg.AuthRateLimit.RegisterEmailLimit,
		}
		authLimit := func(policy middleware.AuthPolicy) func(http.Handler) http.Handler {
			if deps.Redis == nil {
				return middleware.AuthRateLimit(policy, nil, logg)
			}
			return middleware.AuthRateLimit(policy, deps.Redis, logg)
		}

		r.With(authLimit(register)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(authLimit(login)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Get("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
		r.With(authn.Protect).Get("/me", controllers.AuthMe(deps.AuthService, logg))

		r.Put("/updatedetails", controllers.AuthDisabled("Profile updates", logg))
		r.Put("/updatepassword", controllers.AuthDisabled("Password update", logg))
		r.Post("/forgotpassword", controllers.AuthDisabled("Forgot password", logg))
		r.Put("/resetpassword/{token}", controllers.AuthDisabled("Reset password", logg))
	})

	r.Route("/api/crops", func(r chi.Router) {
		r.Get("/", controllers.CropList(deps.CropService, logg))
		r.Get("/{id}", controllers.CropGet(deps.CropService, logg))
		r.With(authn.Protect, middleware.Authorize(logg, enums.RoleFarmer, enums.RoleAdmin)).Post("/", controllers.CropCreate(deps.CropService, logg))
		r.With(authn.Protect).Put("/{id}", controllers.CropUpdate(deps.CropService, logg))
		r.With(authn.Protect).Delete("/{id}", controllers.CropDelete(deps.CropService, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authn.Optional, middleware.GuestSession(logg))
		r.Get("/", controllers.CartGet(deps.CartService, logg))
		r.Post("/add", controllers.CartAdd(deps.CartService, logg))
		r.Put("/{productId}", controllers.CartUpdate(deps.CartService, logg))
		r.Delete("/{productId}", controllers.CartRemove(deps.CartService, logg))
		r.Delete("/", controllers.CartClear(deps.CartService, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authn.Optional, middleware.GuestSession(logg))
			var replay redis.IdempotencyStore
			if deps.Redis != nil {
				replay = deps.Redis
			}
			r.With(middleware.Idempotency(replay, middleware.DefaultIdempotencyTTL, logg)).Post("/", controllers.OrderPlace(deps.OrderService, logg))
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{id}", controllers.OrderGet(deps.OrderService, logg))
		})
		r.With(authn.Protect, middleware.Authorize(logg, enums.RoleAdmin)).Patch("/{id}/status", controllers.OrderUpdateStatus(deps.OrderService, logg))
	})

	r.Route("/api/weather", func(r chi.Router) {
		r.Get("/current", controllers.WeatherCurrent(deps.WeatherService, logg))
		r.Get("/forecast", controllers.WeatherForecast(deps.WeatherService, logg))
		r.Get("/alerts", controllers.WeatherAlerts(deps.WeatherService, logg))
	})

	return r
}
