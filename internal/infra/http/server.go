package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagoa/brewops/internal/auth"
	"github.com/pagoa/brewops/internal/domain/costs"
	"github.com/pagoa/brewops/internal/domain/finished"
	"github.com/pagoa/brewops/internal/domain/history"
	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/production"
	"github.com/pagoa/brewops/internal/domain/recipes"
	"github.com/pagoa/brewops/internal/domain/reports"
	"github.com/pagoa/brewops/internal/domain/sales"
	"github.com/pagoa/brewops/internal/domain/users"
)

// Deps is everything the HTTP layer wires handlers to.
type Deps struct {
	Log        *slog.Logger
	Materials  *materials.Repo
	Recipes    *recipes.Repo
	Production *production.Service
	Operations *production.Repo
	Finished   *finished.Repo
	History    *history.Repo
	Sales      *sales.Repo
	Costs      *costs.Repo
	Reports    *reports.Service
	Users      *users.Repo
	Tokens     *auth.Tokens
}

type Server struct {
	srv  *http.Server
	deps Deps
}

func New(addr string, exposeMetrics bool, deps Deps) *Server {
	s := &Server{deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if exposeMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	authed := func(h http.HandlerFunc) http.Handler { return s.requireAuth(h) }

	mux.Handle("GET /api/materials", authed(s.handleListMaterials))
	mux.Handle("POST /api/materials", authed(s.handleCreateMaterial))
	mux.Handle("GET /api/materials/low-stock", authed(s.handleLowStock))
	mux.Handle("PUT /api/materials/{id}", authed(s.handleUpdateMaterial))
	mux.Handle("DELETE /api/materials/{id}", authed(s.handleDeleteMaterial))
	mux.Handle("POST /api/materials/{id}/adjust", authed(s.handleAdjustStock))

	mux.Handle("GET /api/recipes", authed(s.handleListRecipes))
	mux.Handle("POST /api/recipes", authed(s.handleCreateRecipeLine))
	mux.Handle("GET /api/recipes/styles", authed(s.handleListStyles))
	mux.Handle("PUT /api/recipes/{id}", authed(s.handleUpdateRecipeLine))
	mux.Handle("DELETE /api/recipes/{id}", authed(s.handleDeleteRecipeLine))

	mux.Handle("GET /api/operations", authed(s.handleListOperations))
	mux.Handle("POST /api/operations", authed(s.handleCreateDraft))
	mux.Handle("GET /api/operations/estimate", authed(s.handleEstimate))
	mux.Handle("GET /api/operations/{id}", authed(s.handleGetOperation))
	mux.Handle("DELETE /api/operations/{id}", authed(s.handleDeleteDraft))
	mux.Handle("POST /api/operations/{id}/confirm", authed(s.handleConfirm))

	mux.Handle("GET /api/finished-goods", authed(s.handleListFinished))

	mux.Handle("GET /api/history", authed(s.handleListHistory))

	mux.Handle("GET /api/sales", authed(s.handleListSales))
	mux.Handle("POST /api/sales", authed(s.handleCreateSale))
	mux.Handle("DELETE /api/sales/{id}", authed(s.handleDeleteSale))

	mux.Handle("GET /api/fixed-costs", authed(s.handleListFixedCosts))
	mux.Handle("PUT /api/fixed-costs", authed(s.handleReplaceFixedCosts))

	mux.Handle("GET /api/reports/monthly", authed(s.handleMonthlyReport))
	mux.Handle("GET /api/reports/monthly.xlsx", authed(s.handleMonthlyReportXLSX))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
