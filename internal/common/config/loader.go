// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	knownLLMProviders    = map[string]bool{"openai": true, "anthropic": true, "gemini": true}
	knownSearchProviders = map[string]bool{"tavily": true, "google": true, "elasticsearch": true, "none": true}
)

// Load reads config.yaml, merges config.{APP_ENVIRONMENT}.yaml over it and
// fills gaps from the environment.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // test/e2e
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Fprintf(os.Stderr, "loaded .env from %s\n", path)
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKey = firstEnv("ANTHROPIC_API_KEY", "LLM_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "LLM_API_KEY")
		default:
			cfg.LLM.APIKey = firstEnv("OPENAI_API_KEY", "LLM_API_KEY")
		}
	}

	if cfg.Search.Tavily.APIKey == "" {
		cfg.Search.Tavily.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if cfg.Search.Google.APIKey == "" {
		cfg.Search.Google.APIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.Search.Google.EngineID == "" {
		cfg.Search.Google.EngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	}

	if cfg.Alerts.SNS.TopicARN == "" {
		cfg.Alerts.SNS.TopicARN = os.Getenv("SNS_TOPIC_ARN")
	}
	if cfg.Alerts.SNS.Region == "" {
		cfg.Alerts.SNS.Region = firstEnv("AWS_REGION", "AWS_DEFAULT_REGION")
	}

	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = os.Getenv("ZEEBE_ADDRESS")
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = os.Getenv("REDIS_ADDRESS")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "costli-agents"
	}
	if cfg.App.HTTPPort == 0 {
		cfg.App.HTTPPort = 8080
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.Model = "claude-sonnet-4-5"
		case "gemini":
			cfg.LLM.Model = "gemini-2.5-pro"
		default:
			cfg.LLM.Model = "gpt-4o"
		}
	}
	if cfg.LLM.FastModel == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.FastModel = "claude-haiku-4-5"
		case "gemini":
			cfg.LLM.FastModel = "gemini-2.5-flash"
		default:
			cfg.LLM.FastModel = "gpt-4o-mini"
		}
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}

	cfg.Search.Provider = strings.ToLower(strings.TrimSpace(cfg.Search.Provider))
	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "tavily"
	}
	cfg.Search.Fallback = strings.ToLower(strings.TrimSpace(cfg.Search.Fallback))
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10000
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.SnippetChars == 0 {
		cfg.Search.SnippetChars = 800
	}
	if cfg.Search.Tavily.BaseURL == "" {
		cfg.Search.Tavily.BaseURL = "https://api.tavily.com"
	}
	if cfg.Search.Tavily.SearchDepth == "" {
		cfg.Search.Tavily.SearchDepth = "advanced"
	}
	if cfg.Search.Google.BaseURL == "" {
		cfg.Search.Google.BaseURL = "https://www.googleapis.com"
	}
	if cfg.Search.Elasticsearch.Index == "" {
		cfg.Search.Elasticsearch.Index = "cost-knowledge"
	}

	p := &cfg.Pipeline
	if p.Timeout == 0 {
		p.Timeout = 180000
	}
	if p.ResearchRounds == 0 {
		p.ResearchRounds = 6
	}
	if p.ScenarioChars == 0 {
		p.ScenarioChars = 2000
	}
	if p.FollowUpChars == 0 {
		p.FollowUpChars = 500
	}
	if p.FollowUpMessage == 0 {
		p.FollowUpMessage = 1000
	}
	if p.FollowUpAnswer == 0 {
		p.FollowUpAnswer = 1000
	}
	if p.ChatHistoryTurns == 0 {
		p.ChatHistoryTurns = 20
	}
	if p.ChatSearchResults == 0 {
		p.ChatSearchResults = 3
	}
	if p.ChatSessionTTL == 0 {
		p.ChatSessionTTL = 3600000
	}
	if p.ChatMaxSessions == 0 {
		p.ChatMaxSessions = 1000
	}
	if p.ProgressChannel == "" {
		p.ProgressChannel = "costli:progress"
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = cfg.App.Name
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if !knownLLMProviders[cfg.LLM.Provider] {
		return fmt.Errorf("llm.provider %q is not supported", cfg.LLM.Provider)
	}
	if !knownSearchProviders[cfg.Search.Provider] {
		return fmt.Errorf("search.provider %q is not supported", cfg.Search.Provider)
	}
	if cfg.Search.Fallback != "" && !knownSearchProviders[cfg.Search.Fallback] {
		return fmt.Errorf("search.fallback %q is not supported", cfg.Search.Fallback)
	}
	if cfg.Pipeline.ResearchRounds < 1 {
		return fmt.Errorf("pipeline.research_rounds must be at least 1")
	}
	if cfg.Pipeline.ChatHistoryTurns < 1 {
		return fmt.Errorf("pipeline.chat_history_turns must be at least 1")
	}
	return nil
}

// ValidateForWorkers adds the checks only the Zeebe worker process needs.
func ValidateForWorkers(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
