// Package server assembles the HTTP surface: routes, auth guards, rate
// limits, CORS and request logging.
package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/blob"
	"github.com/revomotors/api-leads/internal/catalog"
	"github.com/revomotors/api-leads/internal/config"
	"github.com/revomotors/api-leads/internal/dealer"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/lead"
	"github.com/revomotors/api-leads/internal/message"
	"github.com/revomotors/api-leads/internal/notification"
	"github.com/revomotors/api-leads/internal/offer"
	"github.com/revomotors/api-leads/internal/ratelimit"
	"github.com/revomotors/api-leads/internal/utils"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

const ServiceName = "revo-leads-api"

// Version is set via ldflags at build time.
var Version = "dev"

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Tokens    *auth.Tokens
	Estimator *estimator.Estimator
	Sender    notification.Sender
	Blobs     blob.Store
	Catalog   catalog.Provider
	Limiter   *ratelimit.Limiter
}

// ErrMissingDeps is returned by New when a required dependency is nil.
var ErrMissingDeps = errors.New("server: config, db, tokens and limiter are required")

// New builds the full handler tree. The caller owns the limiter and is
// expected to run its sweeper for the lifetime of the server.
func New(d Deps) (http.Handler, error) {
	if d.Config == nil || d.DB == nil || d.Tokens == nil || d.Limiter == nil {
		return nil, ErrMissingDeps
	}
	authSvc := auth.NewService(d.DB, d.Tokens)
	authH := auth.NewHandler(authSvc)
	leadH := lead.NewHandler(d.DB, d.Estimator, d.Sender, lead.Options{
		Matching:      d.Config.LeadMatching,
		WebhookSecret: d.Config.WebhookSecret,
	})
	messageH := message.NewHandler(d.DB)
	offerH := offer.NewHandler(d.DB, d.Estimator)
	dealerH := dealer.NewHandler(d.DB, d.Blobs)
	carsH := catalog.NewHandler(d.Catalog)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/", ready).Methods(http.MethodGet)
	r.HandleFunc("/health", health(d.DB)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	limited := d.Limiter.Middleware

	// public
	api.Handle("/auth/signup", limited(http.HandlerFunc(authH.Signup))).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(http.HandlerFunc(authH.Login))).Methods(http.MethodPost)
	api.Handle("/leads/webhook/lead_received", limited(http.HandlerFunc(leadH.ReceiveLead))).Methods(http.MethodPost)

	cars := api.PathPrefix("/cars").Subrouter()
	cars.HandleFunc("/makes", carsH.Makes).Methods(http.MethodGet)
	cars.HandleFunc("/models", carsH.Models).Methods(http.MethodGet)
	cars.HandleFunc("/trims", carsH.Trims).Methods(http.MethodGet)
	cars.HandleFunc("/years", carsH.Years).Methods(http.MethodGet)
	cars.HandleFunc("/details", carsH.Details).Methods(http.MethodGet)
	cars.HandleFunc("/search", carsH.Search).Methods(http.MethodGet)
	cars.HandleFunc("/all-body-types", carsH.AllBodyTypes).Methods(http.MethodGet)
	cars.HandleFunc("/all-transmissions", carsH.AllTransmissions).Methods(http.MethodGet)
	cars.HandleFunc("/all-fuel-types", carsH.AllFuelTypes).Methods(http.MethodGet)

	// any authenticated user
	api.Handle("/auth/me", auth.Authenticate(authSvc)(http.HandlerFunc(authH.Me))).Methods(http.MethodGet)

	// dealers only
	dealerOnly := []mux.MiddlewareFunc{auth.Authenticate(authSvc), auth.RequireDealer(authSvc)}

	leads := api.PathPrefix("/leads").Subrouter()
	leads.Use(dealerOnly...)
	collection(leads, leadH.ListLeads, http.MethodGet)
	leads.HandleFunc("/{id:[0-9]+}", leadH.GetLead).Methods(http.MethodGet)
	leads.HandleFunc("/{id:[0-9]+}/generate-message", leadH.GenerateMessage).Methods(http.MethodPost)
	leads.HandleFunc("/{id:[0-9]+}/send-message", leadH.SendMessage).Methods(http.MethodPost)
	leads.HandleFunc("/{id:[0-9]+}/update-offer", leadH.UpdateOffer).Methods(http.MethodPut)
	leads.HandleFunc("/{id:[0-9]+}/status", leadH.UpdateStatus).Methods(http.MethodPut)

	messages := api.PathPrefix("/messages").Subrouter()
	messages.Use(dealerOnly...)
	collection(messages, messageH.List, http.MethodGet)
	collection(messages, messageH.Create, http.MethodPost)
	messages.HandleFunc("/{id:[0-9]+}", messageH.Get).Methods(http.MethodGet)
	messages.HandleFunc("/{id:[0-9]+}", messageH.Update).Methods(http.MethodPut)
	messages.HandleFunc("/{id:[0-9]+}", messageH.Delete).Methods(http.MethodDelete)

	offers := api.PathPrefix("/offers").Subrouter()
	offers.Use(dealerOnly...)
	collection(offers, offerH.List, http.MethodGet)
	collection(offers, offerH.Create, http.MethodPost)
	offers.HandleFunc("/estimate", offerH.Estimate).Methods(http.MethodPost)
	offers.HandleFunc("/{id:[0-9]+}", offerH.Get).Methods(http.MethodGet)
	offers.HandleFunc("/{id:[0-9]+}", offerH.Update).Methods(http.MethodPut)

	dealers := api.PathPrefix("/dealers").Subrouter()
	dealers.Use(dealerOnly...)
	dealers.HandleFunc("/profile", dealerH.GetProfile).Methods(http.MethodGet)
	dealers.HandleFunc("/profile", dealerH.UpdateProfile).Methods(http.MethodPut)
	dealers.HandleFunc("/communication-preferences", dealerH.GetPreferences).Methods(http.MethodGet)
	dealers.HandleFunc("/communication-preferences", dealerH.UpdatePreferences).Methods(http.MethodPut)
	dealers.HandleFunc("/filters", dealerH.ListFilters).Methods(http.MethodGet)
	dealers.HandleFunc("/filters", dealerH.CreateFilter).Methods(http.MethodPost)
	dealers.HandleFunc("/filters/{id:[0-9]+}", dealerH.UpdateFilter).Methods(http.MethodPut)
	dealers.HandleFunc("/filters/{id:[0-9]+}", dealerH.DeleteFilter).Methods(http.MethodDelete)
	dealers.HandleFunc("/documents", dealerH.ListDocuments).Methods(http.MethodGet)
	dealers.HandleFunc("/documents", dealerH.CreateDocument).Methods(http.MethodPost)
	dealers.HandleFunc("/documents/upload", dealerH.UploadDocument).Methods(http.MethodPost)
	dealers.HandleFunc("/documents/{id:[0-9]+}/file", dealerH.DownloadDocument).Methods(http.MethodGet)
	dealers.HandleFunc("/documents/{id:[0-9]+}", dealerH.DeleteDocument).Methods(http.MethodDelete)
	dealers.HandleFunc("/stats", dealerH.Stats).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Webhook-Secret", "X-Request-Id"},
		AllowCredentials: !allowsAny(d.Config.CORSAllowedOrigins),
	})

	var h http.Handler = r
	h = accessLog(h)
	h = recoverer(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return c.Handler(h), nil
}

// collection registers h on the subrouter root with and without a trailing
// slash. StrictSlash is avoided because its redirect turns POST into GET.
func collection(r *mux.Router, h http.HandlerFunc, method string) {
	r.HandleFunc("", h).Methods(method)
	r.HandleFunc("/", h).Methods(method)
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// GET /
func ready(w http.ResponseWriter, _ *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": ServiceName,
		"version": Version,
	})
}

// GET /health
func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "ok"})
	}
}
