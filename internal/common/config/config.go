// internal/common/config/config.go
package config

type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	LLM      LLMConfig               `mapstructure:"llm"`
	Search   SearchConfig            `mapstructure:"search"`
	Pipeline PipelineConfig          `mapstructure:"pipeline"`
	Alerts   AlertsConfig            `mapstructure:"alerts"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single address shorthand
}

func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// Enabled reports whether any Elasticsearch address is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LLMConfig selects the completion backend. Profiles override the per-stage
// model, temperature and output budget.
type LLMConfig struct {
	Provider   string                   `mapstructure:"provider"` // openai | anthropic | gemini
	APIKey     string                   `mapstructure:"api_key"`
	BaseURL    string                   `mapstructure:"base_url"`
	Model      string                   `mapstructure:"model"`
	FastModel  string                   `mapstructure:"fast_model"`
	Timeout    int                      `mapstructure:"timeout"` // milliseconds, per completion call
	MaxRetries int                      `mapstructure:"max_retries"`
	Profiles   map[string]ProfileConfig `mapstructure:"profiles"`
}

type ProfileConfig struct {
	Model       string   `mapstructure:"model"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

type SearchConfig struct {
	Provider     string `mapstructure:"provider"` // tavily | google | elasticsearch | none
	Fallback     string `mapstructure:"fallback"` // optional secondary engine
	Timeout      int    `mapstructure:"timeout"`  // milliseconds
	MaxResults   int    `mapstructure:"max_results"`
	SnippetChars int    `mapstructure:"snippet_chars"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables the redis cache

	Tavily struct {
		APIKey      string `mapstructure:"api_key"`
		BaseURL     string `mapstructure:"base_url"`
		SearchDepth string `mapstructure:"search_depth"`
	} `mapstructure:"tavily"`

	Google struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		EngineID string `mapstructure:"engine_id"`
	} `mapstructure:"google"`

	Elasticsearch struct {
		Index string `mapstructure:"index"`
	} `mapstructure:"elasticsearch"`
}

type PipelineConfig struct {
	Timeout         int `mapstructure:"timeout"` // milliseconds, whole analyze run
	ResearchRounds  int `mapstructure:"research_rounds"`
	ScenarioChars   int `mapstructure:"scenario_chars"`
	FollowUpChars   int `mapstructure:"followup_scenario_chars"`
	FollowUpMessage int `mapstructure:"followup_message_chars"`
	FollowUpAnswer  int `mapstructure:"followup_answer_chars"`

	ChatHistoryTurns  int `mapstructure:"chat_history_turns"`
	ChatSearchResults int `mapstructure:"chat_search_results"`
	ChatSessionTTL    int `mapstructure:"chat_session_ttl"` // milliseconds
	ChatMaxSessions   int `mapstructure:"chat_max_sessions"`

	ProgressChannel string `mapstructure:"progress_channel"`
}

type AlertsConfig struct {
	SNS struct {
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
