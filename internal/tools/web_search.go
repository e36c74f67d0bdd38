package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const WebSearchName = "WebSearch"

// Searcher is the backend WebSearch calls; *service.DuckDuckGo satisfies it
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]service.SearchResult, error)
}

// WebSearchConfig tunes throttling and the circuit breaker
type WebSearchConfig struct {
	MaxResults     int
	RatePerMinute  int
	MaxFailures    uint32
	BreakerTimeout time.Duration
}

const (
	defaultSearchMaxFailures uint32 = 3
	defaultSearchBreakerOpen        = 30 * time.Second
)

// WebSearch returns the WebSearch tool. Calls wait on a shared rate limiter,
// and once the backend fails MaxFailures times in a row the breaker opens and
// calls fail fast until BreakerTimeout has passed.
func WebSearch(s Searcher, cfg WebSearchConfig) Tool {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultSearchMaxFailures
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = defaultSearchBreakerOpen
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}
	limiter := rate.NewLimiter(limit, 1)

	maxFailures := cfg.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[[]service.SearchResult](gobreaker.Settings{
		Name:        "web-search",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// a cancelled request says nothing about the backend
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return Tool{
		Name:        WebSearchName,
		Description: "Useful for finding current events and information on the internet. Input is a search query.",
		Invoke: func(ctx context.Context, input string) (string, error) {
			if err := limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("web search throttled: %w", err)
			}
			results, err := breaker.Execute(func() ([]service.SearchResult, error) {
				return s.Search(ctx, input, cfg.MaxResults)
			})
			if err != nil {
				if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
					return "", fmt.Errorf("web search unavailable: %w", err)
				}
				return "", err
			}
			return service.FormatResults(input, results), nil
		},
	}
}
