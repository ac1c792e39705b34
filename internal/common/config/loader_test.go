// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: costli-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "costli-test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.HTTPPort)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.FastModel)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "tvly-test", cfg.Search.Tavily.APIKey)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 800, cfg.Search.SnippetChars)
	assert.Equal(t, "cost-knowledge", cfg.Search.Elasticsearch.Index)
	assert.Equal(t, 180*time.Second, GetDuration(cfg.Pipeline.Timeout))
	assert.Equal(t, 6, cfg.Pipeline.ResearchRounds)
	assert.Equal(t, 2000, cfg.Pipeline.ScenarioChars)
	assert.Equal(t, 500, cfg.Pipeline.FollowUpChars)
	assert.Equal(t, 20, cfg.Pipeline.ChatHistoryTurns)
	assert.Equal(t, 3, cfg.Pipeline.ChatSearchResults)
	assert.Equal(t, "costli-test", cfg.Tracing.ServiceName)
}

func TestLoadFromFile_ProviderSpecificKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := LoadFromFile(writeConfig(t, "llm:\n  provider: Anthropic\n"))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
}

func TestLoadFromFile_ExpandsEnvAndProfiles(t *testing.T) {
	t.Setenv("COSTLI_TEST_TOPIC", "arn:aws:sns:eu-west-1:1:alerts")

	cfg, err := LoadFromFile(writeConfig(t, `
alerts:
  sns:
    topic_arn: ${COSTLI_TEST_TOPIC}
llm:
  profiles:
    synthesize:
      model: gpt-4.1
      temperature: 0
      max_tokens: 6000
workers:
  analyze-scenario:
    enabled: true
    timeout: 200000
`))
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:sns:eu-west-1:1:alerts", cfg.Alerts.SNS.TopicARN)

	p := cfg.LLM.Profiles["synthesize"]
	assert.Equal(t, "gpt-4.1", p.Model)
	require.NotNil(t, p.Temperature)
	assert.Equal(t, 0.0, *p.Temperature)
	assert.Equal(t, 6000, p.MaxTokens)

	w := GetWorkerConfig(cfg, "analyze-scenario")
	assert.Equal(t, 200000, w.Timeout)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.True(t, IsWorkerEnabled(cfg, "chat-turn"))
}

func TestLoadFromFile_RejectsUnknownProviders(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "llm:\n  provider: llama\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")

	_, err = LoadFromFile(writeConfig(t, "search:\n  provider: bing\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.provider")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateForWorkers(t *testing.T) {
	assert.Error(t, ValidateForWorkers(&Config{}))
	assert.NoError(t, ValidateForWorkers(&Config{Camunda: CamundaConfig{BrokerAddress: "localhost:26500"}}))
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "", ElasticsearchConfig{}.GetURL())
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200"}}.GetURL())
	assert.True(t, ElasticsearchConfig{URL: "http://b:9200"}.Enabled())
}

func TestLoadFromFile_ShippedConfig(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("ELASTICSEARCH_URL", "")

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, 200000, GetWorkerConfig(cfg, "analyze-scenario").Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "chat-turn"))
	assert.NoError(t, ValidateForWorkers(cfg))
}
