package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentdesk/agentdesk/internal/agent"
	"github.com/agentdesk/agentdesk/internal/handler"
	"github.com/agentdesk/agentdesk/internal/middleware"
	"github.com/agentdesk/agentdesk/internal/security"
	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// page is the GET/POST pair every front end exposes on /
type page interface {
	Form(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
}

func (s *Server) setupRoutes(ctx context.Context) (http.Handler, error) {
	cfg := s.cfg

	// ─── Security ───────────────────────────────────────────────────────────────
	guard := security.NewPromptValidator(cfg.MaxPromptLength)
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Model backend ──────────────────────────────────────────────────────────
	runner, runnerHealth, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}
	checks := map[string]service.HealthChecker{"llm": runnerHealth}

	var p page
	switch s.app {
	case Helpdesk:
		docs, docsHealth, closer, err := newDocSource(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("docs backend %s: %w", cfg.DocsBackend, err)
		}
		if closer != nil {
			s.closers = append(s.closers, closer)
		}
		checks["docs"] = docsHealth

		reg := tools.NewRegistry()
		reg.MustRegister(
			tools.ReadITDocs(docs),
			tools.ReadFinanceDocs(docs),
			newWebSearch(cfg),
		)
		reg.Freeze()

		classifier, err := service.NewClassifier(cfg.Rules, cfg.DefaultCategory)
		if err != nil {
			return nil, fmt.Errorf("classifier: %w", err)
		}
		specialists, err := agent.DefaultSpecialists(reg)
		if err != nil {
			return nil, err
		}
		router, err := agent.NewRouter(classifier, specialists, runner, auditLogger)
		if err != nil {
			return nil, err
		}
		p = handler.NewHelpdeskHandler(router, guard, auditLogger)

	case Research:
		tmpl, err := agent.LoadPromptTemplate(cfg.PromptTemplatePath)
		if err != nil {
			return nil, err
		}

		reg := tools.NewRegistry()
		reg.MustRegister(
			newWebSearch(cfg),
			tools.WriteFile(newReportWriter(cfg)),
		)
		reg.Freeze()

		toolSet, err := reg.Select(tools.WebSearchName, tools.WriteFileName)
		if err != nil {
			return nil, err
		}
		research, err := agent.NewResearch(runner, tmpl, toolSet, auditLogger)
		if err != nil {
			return nil, err
		}
		p = handler.NewResearchHandler(research, guard, auditLogger)

	default:
		return nil, fmt.Errorf("unknown app %q", s.app)
	}

	probeDependencies(ctx, checks)

	log.Info().
		Str("app", string(s.app)).
		Str("llm_provider", cfg.LLMProvider).
		Str("model", cfg.Model).
		Str("docs_backend", cfg.DocsBackend).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Msg("service configuration")

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)

	r.Get("/", p.Form)
	r.With(middleware.RateLimit(cfg.RateLimitPerMinute)).Post("/", p.Submit)

	return r, nil
}
