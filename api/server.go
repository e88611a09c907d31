// Package api serves a checkbook Store over HTTP.
//
// Every endpoint lives under /api/v1 and requires a bearer token when one is
// configured. Bank aggregators push new bank transactions to the
// bank_transactions endpoint of an account.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/checkbook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Options configures the router.
type Options struct {
	Token          string   // bearer token, empty to disable authentication
	AllowedOrigins []string // CORS origins, empty allows none
	Logger         zerolog.Logger
	Timeout        time.Duration // per request, defaults to 60s
}

// NewRouter returns the HTTP handler serving s.
func NewRouter(s *checkbook.Store, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	accountsHandler := NewAccountsHandler(s)
	transactionsHandler := NewTransactionsHandler(s)
	bankHandler := NewBankHandler(s)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(opts.Token))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountsHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", accountsHandler.Get)
				r.Get("/transactions", accountsHandler.Transactions)
				r.Post("/transactions", transactionsHandler.Create)
				r.Get("/register", accountsHandler.Register)
				r.Get("/payees", accountsHandler.Suggest)
				r.Post("/bank_transactions", bankHandler.Ingest)
			})
		})

		r.Route("/transactions/{id}", func(r chi.Router) {
			r.Get("/", transactionsHandler.Get)
			r.Patch("/", transactionsHandler.Update)
			r.Delete("/", transactionsHandler.Delete)
			r.Post("/toggle", transactionsHandler.Toggle)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Serve serves handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting checkbook API")
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
