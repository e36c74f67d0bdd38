package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLM providers
const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// Documentation backends for ReadITDocs / ReadFinanceDocs
const (
	DocsStatic        = "static"
	DocsElasticsearch = "elasticsearch"
	DocsBigQuery      = "bigquery"
	DocsPostgres      = "postgres"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// AI / LLM
	LLMProvider        string `json:"llm_provider"`
	OllamaHost         string `json:"ollama_host"`
	Model              string `json:"model"`
	AnthropicAPIKey    string `json:"anthropic_api_key"`
	AnthropicBaseURL   string `json:"anthropic_base_url"` // override for a compatible proxy
	AgentTimeout       int    `json:"agent_timeout"`
	AgentMaxIterations int    `json:"agent_max_iterations"`

	// Routing
	RulesFile       string          `json:"rules_file"`
	Rules           []service.Rule  `json:"rules"`
	DefaultCategory models.Category `json:"default_category"`

	// Documentation backends
	DocsBackend string `json:"docs_backend"`

	ElasticsearchHost        string `json:"elasticsearch_host"`
	ElasticsearchPort        int    `json:"elasticsearch_port"`
	ElasticsearchScheme      string `json:"elasticsearch_scheme"`
	ElasticsearchUser        string `json:"elasticsearch_user"`
	ElasticsearchPassword    string `json:"elasticsearch_password"`
	ElasticsearchVerifyCerts bool   `json:"elasticsearch_verify_certs"`
	ElasticsearchMaxRetries  int    `json:"elasticsearch_max_retries"`
	DocsIndex                string `json:"docs_index"`

	GCPProjectID                 string `json:"gcp_project_id"`
	GoogleApplicationCredentials string `json:"google_application_credentials"`
	BigQueryLocation             string `json:"bigquery_location"`
	BigQueryDocsTable            string `json:"bigquery_docs_table"` // dataset.table

	PostgresDSN       string `json:"postgres_dsn"`
	PostgresDocsTable string `json:"postgres_docs_table"`

	// Web search
	WebSearchURL           string `json:"web_search_url"`
	WebSearchMaxResults    int    `json:"web_search_max_results"`
	WebSearchRatePerMinute int    `json:"web_search_rate_per_minute"`

	// Research reports
	ReportDir          string `json:"report_dir"`
	ReportBasename     string `json:"report_basename"`
	ReportPDF          bool   `json:"report_pdf"`
	WkhtmltopdfPath    string `json:"wkhtmltopdf_path"`
	ReportOpen         bool   `json:"report_open"`
	PromptTemplatePath string `json:"prompt_template_path"`

	// Security
	MaxPromptLength    int  `json:"max_prompt_length"`
	EnableAuditLogging bool `json:"enable_audit_logging"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:                     DefaultHost,
		Port:                     DefaultPort,
		Environment:              DefaultEnvironment,
		LogLevel:                 DefaultLogLevel,
		RateLimitPerMinute:       DefaultRateLimitPerMinute,
		LLMProvider:              DefaultLLMProvider,
		OllamaHost:               DefaultOllamaHost,
		Model:                    DefaultModel,
		AgentTimeout:             DefaultAgentTimeout,
		AgentMaxIterations:       DefaultAgentMaxIterations,
		Rules:                    DefaultRules(),
		DefaultCategory:          DefaultCategory,
		DocsBackend:              DefaultDocsBackend,
		ElasticsearchPort:        DefaultElasticsearchPort,
		ElasticsearchScheme:      DefaultElasticsearchScheme,
		ElasticsearchVerifyCerts: true,
		ElasticsearchMaxRetries:  DefaultElasticsearchMaxRetries,
		DocsIndex:                DefaultDocsIndex,
		BigQueryLocation:         DefaultBigQueryLocation,
		PostgresDocsTable:        DefaultPostgresDocsTable,
		WebSearchURL:             DefaultWebSearchURL,
		WebSearchMaxResults:      DefaultWebSearchMaxResults,
		WebSearchRatePerMinute:   DefaultWebSearchRatePerMinute,
		ReportDir:                DefaultReportDir,
		ReportBasename:           DefaultReportBasename,
		ReportPDF:                true,
		WkhtmltopdfPath:          DefaultWkhtmltopdf,
		ReportOpen:               true,
		PromptTemplatePath:       DefaultPromptTemplate,
		MaxPromptLength:          DefaultMaxPromptLength,
		EnableAuditLogging:       true,
	}

	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Load from JSON config file if specified
	if path := getEnv("AGENTDESK_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	// llama3 is an Ollama tag; pick a Claude model unless one was set explicitly
	if cfg.LLMProvider == ProviderAnthropic && cfg.Model == DefaultModel {
		cfg.Model = DefaultAnthropicModel
	}

	if cfg.RulesFile != "" {
		rf, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rf.Rules
		if rf.Default != "" {
			cfg.DefaultCategory = rf.Default
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at request time
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOllama:
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("llm provider %q requires ANTHROPIC_API_KEY", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLMProvider)
	}

	switch c.DocsBackend {
	case DocsStatic:
	case DocsElasticsearch:
		if c.ElasticsearchHost == "" {
			return fmt.Errorf("docs backend %q requires ELASTICSEARCH_HOST", c.DocsBackend)
		}
	case DocsBigQuery:
		if c.GCPProjectID == "" || c.BigQueryDocsTable == "" {
			return fmt.Errorf("docs backend %q requires GCP_PROJECT_ID and AGENTDESK_BIGQUERY_DOCS_TABLE", c.DocsBackend)
		}
	case DocsPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("docs backend %q requires AGENTDESK_POSTGRES_DSN", c.DocsBackend)
		}
	default:
		return fmt.Errorf("unknown docs backend %q", c.DocsBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AgentMaxIterations < 1 {
		return fmt.Errorf("agent_max_iterations must be at least 1")
	}
	return nil
}

// RulesFile is the YAML shape of AGENTDESK_RULES_FILE. Rule order is the
// classification priority.
type RulesFile struct {
	Default models.Category `yaml:"default"`
	Rules   []service.Rule  `yaml:"rules"`
}

// LoadRules reads a YAML rules file
func LoadRules(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}
	return &rf, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("AGENTDESK_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("AGENTDESK_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("AGENTDESK_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("AGENTDESK_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("AGENTDESK_LLM_PROVIDER", ""); v != "" {
		cfg.LLMProvider = strings.ToLower(v)
	}
	if v := getEnv("OLLAMA_HOST", ""); v != "" {
		cfg.OllamaHost = v
	}
	if v := getEnv("AGENTDESK_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("AGENTDESK_AGENT_TIMEOUT", ""); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.AgentTimeout = t
		}
	}
	if v := getEnv("AGENTDESK_AGENT_MAX_ITERATIONS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AgentMaxIterations = n
		}
	}
	if v := getEnv("AGENTDESK_RULES_FILE", ""); v != "" {
		cfg.RulesFile = v
	}
	if v := getEnv("AGENTDESK_DOCS_BACKEND", ""); v != "" {
		cfg.DocsBackend = strings.ToLower(v)
	}
	if v := getEnv("ELASTICSEARCH_HOST", ""); v != "" {
		cfg.ElasticsearchHost = v
	}
	if v := getEnv("ELASTICSEARCH_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ElasticsearchPort = p
		}
	}
	if v := getEnv("ELASTICSEARCH_SCHEME", ""); v != "" {
		cfg.ElasticsearchScheme = v
	}
	if v := getEnv("ELASTICSEARCH_USER", ""); v != "" {
		cfg.ElasticsearchUser = v
	}
	if v := getEnv("ELASTICSEARCH_PASSWORD", ""); v != "" {
		cfg.ElasticsearchPassword = v
	}
	if v := getEnv("ELASTICSEARCH_VERIFY_CERTS", ""); v != "" {
		cfg.ElasticsearchVerifyCerts = parseBool(v)
	}
	if v := getEnv("AGENTDESK_DOCS_INDEX", ""); v != "" {
		cfg.DocsIndex = v
	}
	if v := getEnv("GCP_PROJECT_ID", ""); v != "" {
		cfg.GCPProjectID = v
	}
	if v := getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""); v != "" {
		cfg.GoogleApplicationCredentials = v
	}
	if v := getEnv("AGENTDESK_BIGQUERY_DOCS_TABLE", ""); v != "" {
		cfg.BigQueryDocsTable = v
	}
	if v := getEnv("AGENTDESK_POSTGRES_DSN", ""); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getEnv("AGENTDESK_POSTGRES_DOCS_TABLE", ""); v != "" {
		cfg.PostgresDocsTable = v
	}
	if v := getEnv("AGENTDESK_WEB_SEARCH_URL", ""); v != "" {
		cfg.WebSearchURL = v
	}
	if v := getEnv("AGENTDESK_REPORT_DIR", ""); v != "" {
		cfg.ReportDir = v
	}
	if v := getEnv("AGENTDESK_REPORT_BASENAME", ""); v != "" {
		cfg.ReportBasename = v
	}
	if v := getEnv("AGENTDESK_REPORT_PDF", ""); v != "" {
		cfg.ReportPDF = parseBool(v)
	}
	if v := getEnv("AGENTDESK_WKHTMLTOPDF", ""); v != "" {
		cfg.WkhtmltopdfPath = v
	}
	if v := getEnv("AGENTDESK_REPORT_OPEN", ""); v != "" {
		cfg.ReportOpen = parseBool(v)
	}
	if v := getEnv("AGENTDESK_PROMPT_TEMPLATE", ""); v != "" {
		cfg.PromptTemplatePath = v
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
