package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agentdesk/agentdesk/internal/agent"
	"github.com/agentdesk/agentdesk/internal/config"
	"github.com/agentdesk/agentdesk/internal/report"
	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	webSearchTimeout = 15 * time.Second
	probeTimeout     = 5 * time.Second
)

func newRunner(cfg *config.Config) (agent.Runner, service.HealthChecker, error) {
	opts := agent.RunnerOptions{
		MaxIterations: cfg.AgentMaxIterations,
		Timeout:       cfg.AgentTimeout,
	}
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return agent.NewAnthropicRunner(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL, opts), nil, nil
	case config.ProviderOllama:
		r, err := agent.NewOllamaRunner(cfg.OllamaHost, cfg.Model, opts)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// newDocSource returns the documentation backend plus, where the backend has
// them, a connectivity check and a client to close on shutdown
func newDocSource(ctx context.Context, cfg *config.Config) (service.DocSource, service.HealthChecker, io.Closer, error) {
	switch cfg.DocsBackend {
	case config.DocsStatic:
		return service.NewStaticDocs(), nil, nil, nil
	case config.DocsElasticsearch:
		es, err := service.NewElasticsearchDocs(
			cfg.ElasticsearchScheme,
			cfg.ElasticsearchHost,
			cfg.ElasticsearchPort,
			cfg.ElasticsearchUser,
			cfg.ElasticsearchPassword,
			cfg.ElasticsearchVerifyCerts,
			cfg.ElasticsearchMaxRetries,
			cfg.DocsIndex,
		)
		if err != nil {
			return nil, nil, nil, err
		}
		return es, es, nil, nil
	case config.DocsBigQuery:
		bq, err := service.NewBigQueryDocs(ctx, cfg.GCPProjectID, cfg.GoogleApplicationCredentials, cfg.BigQueryLocation, cfg.BigQueryDocsTable)
		if err != nil {
			return nil, nil, nil, err
		}
		return bq, bq, bq, nil
	case config.DocsPostgres:
		pg, err := service.NewPostgresDocs(ctx, cfg.PostgresDSN, cfg.PostgresDocsTable)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, pg, pg, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown docs backend %q", cfg.DocsBackend)
	}
}

func newWebSearch(cfg *config.Config) tools.Tool {
	ddg := service.NewDuckDuckGo(cfg.WebSearchURL, webSearchTimeout)
	return tools.WebSearch(ddg, tools.WebSearchConfig{
		MaxResults:    cfg.WebSearchMaxResults,
		RatePerMinute: cfg.WebSearchRatePerMinute,
	})
}

func newReportWriter(cfg *config.Config) *report.Writer {
	opts := []report.Option{}
	if cfg.ReportPDF {
		opts = append(opts, report.WithConverter(report.NewWkhtmltopdf(cfg.WkhtmltopdfPath)))
	}
	if cfg.ReportOpen {
		opts = append(opts, report.WithOpener(report.SystemOpener{}))
	}
	return report.NewWriter(cfg.ReportDir, cfg.ReportBasename, opts...)
}

// probeDependencies checks every backend concurrently. Failures are logged,
// not fatal: the agents report tool errors per request instead.
func probeDependencies(ctx context.Context, checks map[string]service.HealthChecker) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var g errgroup.Group
	for name, hc := range checks {
		if hc == nil {
			continue
		}
		g.Go(func() error {
			if err := hc.TestConnection(ctx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("dependency unavailable")
				return err
			}
			log.Info().Str("dependency", name).Msg("dependency ok")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Msg("starting with degraded dependencies")
	}
}
