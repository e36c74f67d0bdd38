package config

import (
	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
)

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 30

	DefaultLLMProvider    = ProviderOllama
	DefaultOllamaHost     = "http://localhost:11434"
	DefaultModel          = "llama3"
	DefaultAnthropicModel = "claude-sonnet-4-6"

	DefaultAgentTimeout       = 300 // seconds
	DefaultAgentMaxIterations = 8

	DefaultDocsBackend             = DocsStatic
	DefaultElasticsearchPort       = 9200
	DefaultElasticsearchScheme     = "http"
	DefaultElasticsearchMaxRetries = 3
	DefaultDocsIndex               = "internal-docs"
	DefaultBigQueryLocation        = "US"
	DefaultPostgresDocsTable       = "internal_docs"

	DefaultWebSearchURL           = "https://html.duckduckgo.com/html/"
	DefaultWebSearchMaxResults    = 5
	DefaultWebSearchRatePerMinute = 20

	DefaultReportDir      = "."
	DefaultReportBasename = "research_output"
	DefaultWkhtmltopdf    = "wkhtmltopdf"

	DefaultPromptTemplate = "agent_prompt.txt"

	DefaultMaxPromptLength = 2000

	DefaultCategory = models.CategoryIT
)

// DefaultRules returns the built-in keyword rules. IT is evaluated first, so a
// query mentioning both "laptop" and "invoice" routes to IT.
func DefaultRules() []service.Rule {
	return []service.Rule{
		{
			Category: models.CategoryIT,
			Keywords: []string{"vpn", "laptop", "email", "wifi", "software"},
		},
		{
			Category: models.CategoryFinance,
			Keywords: []string{"payroll", "invoice", "reimbursement", "budget"},
		},
	}
}
