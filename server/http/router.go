package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	auditHnd "drawing-audit-service/internal/audit/handler"
	"drawing-audit-service/internal/audit/session"
	"drawing-audit-service/internal/config"
	"drawing-audit-service/internal/middleware"
	"drawing-audit-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	sess := session.New(logger, cfg.DebounceWindow)
	h := auditHnd.New(cfg, logger, sess)

	r.Post("/stock", h.UploadStock)
	r.Post("/vault", h.UploadVault)
	r.Get("/summary", h.Summary)

	r.Post("/filters", h.SetFilters)
	r.Post("/options", h.SetOptions)

	r.Post("/audit/run", h.RunAudit)
	r.Get("/audit/results", h.Results)
	r.Get("/audit/export", h.Export)

	r.Get("/wildcards", h.Wildcards)
	r.Get("/wildcards/test", h.WildcardTest)

	r.Get("/review", h.ReviewQueue)
	r.Post("/review/approve", h.Approve)
	r.Post("/review/flag", h.Flag)
	r.Post("/review/conflict", h.SaveConflict)

	r.Get("/rules/export", h.ExportRules)
	r.Post("/rules/import", h.ImportRules)
	r.Post("/rules/clear", h.ClearRules)

	return r
}
