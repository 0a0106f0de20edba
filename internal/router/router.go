package router

import (
	"net/http"
	"time"

	"storefront/internal/devapi"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Dependencies struct {
	Sessions *services.SessionService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Paths    middleware.Paths

	// DevAPI, when set, serves the development login backend on the same
	// router.
	DevAPI *devapi.Server

	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
}

func SetupRouter(deps Dependencies, logger zerolog.Logger) *mux.Router {
	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Paths, logger)
	cartHandler := handlers.NewCartHandler(deps.Cart, logger)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, logger)

	r := mux.NewRouter()

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger, 500*time.Millisecond))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(deps.CORSOrigins))

	if deps.DevAPI != nil {
		deps.DevAPI.Routes(r)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestValidation())

	api.HandleFunc("/session", authHandler.GetSession).Methods("GET")
	api.HandleFunc("/session/logout", authHandler.Logout).Methods("POST")

	login := api.PathPrefix("/session").Subrouter()
	login.Use(middleware.NewRateLimiter(rate.Limit(deps.RateLimit), deps.RateBurst).Middleware())
	login.HandleFunc("/login", authHandler.Login).Methods("POST")
	login.HandleFunc("/token", authHandler.TokenLogin).Methods("POST")

	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(middleware.RequireSession(deps.Sessions, deps.Paths, models.RoleConsumer))
	cart.HandleFunc("", cartHandler.GetCart).Methods("GET")
	cart.HandleFunc("", cartHandler.ClearCart).Methods("DELETE")
	cart.HandleFunc("/items", cartHandler.AddItem).Methods("POST")
	cart.HandleFunc("/items/{productId}", cartHandler.UpdateQuantity).Methods("PUT")
	cart.HandleFunc("/items/{productId}", cartHandler.RemoveItem).Methods("DELETE")
	cart.HandleFunc("/retailer", cartHandler.SelectRetailer).Methods("PUT")
	cart.HandleFunc("/retailer", cartHandler.DeselectRetailer).Methods("DELETE")

	checkout := api.PathPrefix("/checkout").Subrouter()
	checkout.Use(middleware.RequireSession(deps.Sessions, deps.Paths, models.RoleConsumer))
	checkout.HandleFunc("", checkoutHandler.Submit).Methods("POST")

	r.HandleFunc("/", authHandler.Home).Methods("GET")
	r.HandleFunc(deps.Paths.Login, authHandler.LoginPage("login")).Methods("GET")
	r.HandleFunc(deps.Paths.AdminLogin, authHandler.LoginPage("admin_login")).Methods("GET")

	pages := map[models.Role][]string{
		models.RoleConsumer: {"/consumer/cart", "/consumer/checkout"},
	}
	for _, role := range models.AllRoles {
		guard := middleware.RequireSession(deps.Sessions, deps.Paths, role)
		for _, path := range append([]string{deps.Paths.LandingFor(role)}, pages[role]...) {
			r.Handle(path, guard(handlers.Page(path))).Methods("GET")
		}
	}

	return r
}
