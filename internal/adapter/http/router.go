package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/handler"
	"github.com/NathiDhliso/lexo-core/internal/adapter/http/middleware"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TrustAccountHandler   *handler.TrustAccountHandler
	LedgerHandler         *handler.LedgerHandler
	ReconciliationHandler *handler.ReconciliationHandler
	RetainerHandler       *handler.RetainerHandler
	CreditNoteHandler     *handler.CreditNoteHandler
	DisputeHandler        *handler.DisputeHandler
	BillingHandler        *handler.BillingHandler
	AmendmentHandler      *handler.AmendmentHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	Logger                zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Trust accounts and the ledger
		r.Route("/trust-accounts", func(r chi.Router) {
			r.Post("/", cfg.TrustAccountHandler.Create)
			r.Get("/{id}", cfg.TrustAccountHandler.Get)
			r.Get("/{id}/violations", cfg.TrustAccountHandler.Violations)
			r.Post("/{id}/transactions", cfg.LedgerHandler.Append)
			r.Get("/{id}/transactions", cfg.LedgerHandler.List)
			r.Get("/{id}/verify", cfg.LedgerHandler.VerifyChain)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.Report)
			r.Post("/{id}/reconcile", cfg.ReconciliationHandler.MarkReconciled)
		})

		r.Get("/transactions/{id}", cfg.LedgerHandler.GetTransaction)

		// Retainers
		r.Route("/retainers", func(r chi.Router) {
			r.Post("/", cfg.RetainerHandler.Create)
			r.Get("/{id}", cfg.RetainerHandler.Get)
			r.Get("/{id}/summary", cfg.RetainerHandler.Summary)
			r.Get("/{id}/transactions", cfg.RetainerHandler.History)
			r.Post("/{id}/deposit", cfg.RetainerHandler.Deposit)
			r.Post("/{id}/drawdown", cfg.RetainerHandler.Drawdown)
			r.Post("/{id}/refund", cfg.RetainerHandler.Refund)
			r.Post("/{id}/cancel", cfg.RetainerHandler.Cancel)
			r.Post("/{id}/renew", cfg.RetainerHandler.Renew)
		})

		// Credit notes
		r.Route("/credit-notes", func(r chi.Router) {
			r.Post("/", cfg.CreditNoteHandler.Create)
			r.Get("/{id}", cfg.CreditNoteHandler.Get)
			r.Post("/{id}/issue", cfg.CreditNoteHandler.Issue)
			r.Post("/{id}/cancel", cfg.CreditNoteHandler.Cancel)
			r.Post("/{id}/apply", cfg.CreditNoteHandler.Apply)
		})

		// Disputes
		r.Route("/disputes", func(r chi.Router) {
			r.Post("/", cfg.DisputeHandler.Create)
			r.Get("/{id}", cfg.DisputeHandler.Get)
			r.Post("/{id}/investigate", cfg.DisputeHandler.Investigate)
			r.Post("/{id}/escalate", cfg.DisputeHandler.Escalate)
			r.Post("/{id}/resolve", cfg.DisputeHandler.Resolve)
			r.Post("/{id}/close", cfg.DisputeHandler.Close)
		})

		// Invoice-scoped listings
		r.Route("/invoices/{invoiceID}", func(r chi.Router) {
			r.Get("/credit-notes", cfg.CreditNoteHandler.ListByInvoice)
			r.Get("/disputes", cfg.DisputeHandler.ListByInvoice)
		})

		// Matters and the billing pipeline
		r.Route("/matters/{id}", func(r chi.Router) {
			r.Get("/", cfg.BillingHandler.GetMatter)
			r.Get("/amendments", cfg.AmendmentHandler.ListByMatter)
			r.Route("/billing", func(r chi.Router) {
				r.Get("/readiness", cfg.BillingHandler.Readiness)
				r.Post("/complete", cfg.BillingHandler.Complete)
				r.Post("/mark-ready", cfg.BillingHandler.MarkReady)
				r.Post("/submit", cfg.BillingHandler.Submit)
				r.Post("/approve", cfg.BillingHandler.Approve)
				r.Post("/reject", cfg.BillingHandler.Reject)
			})
		})

		// Scope amendments
		r.Route("/amendments", func(r chi.Router) {
			r.Post("/", cfg.AmendmentHandler.Create)
			r.Get("/{id}", cfg.AmendmentHandler.Get)
			r.Get("/{id}/variance", cfg.AmendmentHandler.Variance)
			r.Post("/{id}/approve", cfg.AmendmentHandler.Approve)
			r.Post("/{id}/reject", cfg.AmendmentHandler.Reject)
		})

		// Advocate-scoped views
		r.Route("/advocates/{advocateID}", func(r chi.Router) {
			r.Get("/trust-account", cfg.TrustAccountHandler.GetByAdvocate)
			r.Get("/retainers/low-balance", cfg.RetainerHandler.ListLowBalance)
			r.Get("/retainers/expiring", cfg.RetainerHandler.ListExpiring)
			r.Get("/billing/pipeline", cfg.BillingHandler.Pipeline)
			r.Get("/amendments/pending", cfg.AmendmentHandler.ListPending)
		})
	})

	return r
}
