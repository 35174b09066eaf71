package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zambezi-erp/zambezi-erp/internal/crm"
	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/drafts"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata"
	"github.com/zambezi-erp/zambezi-erp/internal/observability"
	"github.com/zambezi-erp/zambezi-erp/internal/terms"
	"github.com/zambezi-erp/zambezi-erp/jobs"
)

// RouterParams aggregates the handlers mounted on the API surface.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	Metrics     *observability.Metrics
	MasterData  *masterdata.Handler
	Sales       *documents.Handler
	Procurement *documents.Handler
	Drafts      *drafts.Handler
	FX          *fx.Handler
	CRM         *crm.Handler
	Terms       *terms.Handler
	Jobs        *jobs.Handler
}

// NewRouter assembles the HTTP router with the full middleware stack.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if p.MasterData != nil {
			r.Route("/masterdata", p.MasterData.MountRoutes)
		}
		if p.Sales != nil {
			r.Route("/sales/documents", p.Sales.MountRoutes)
		}
		if p.Procurement != nil {
			r.Route("/procurement/documents", p.Procurement.MountRoutes)
		}
		if p.Drafts != nil {
			r.Route("/drafts", p.Drafts.MountRoutes)
		}
		if p.FX != nil {
			r.Route("/fx", p.FX.MountRoutes)
		}
		if p.CRM != nil {
			r.Route("/crm", p.CRM.MountRoutes)
		}
		if p.Terms != nil {
			r.Route("/terms", p.Terms.MountRoutes)
		}
		if p.Jobs != nil {
			r.Route("/jobs", p.Jobs.MountRoutes)
		}
	})

	return r
}
