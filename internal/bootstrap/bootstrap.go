// internal/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"time"

	commonaws "costli-agents/internal/common/aws"
	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/config"
	"costli-agents/internal/common/database"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/observability"
	"costli-agents/internal/llm"
	"costli-agents/internal/search"
	chatsession "costli-agents/internal/workers/ai-conversation/chat-session"
	analyzescenario "costli-agents/internal/workers/cost-analysis/analyze-scenario"
	decomposescenario "costli-agents/internal/workers/cost-analysis/decompose-scenario"
	fallbackinsights "costli-agents/internal/workers/cost-analysis/fallback-insights"
	generateactionplan "costli-agents/internal/workers/cost-analysis/generate-action-plan"
	researchagent "costli-agents/internal/workers/cost-analysis/research-agent"
	synthesizeinsights "costli-agents/internal/workers/cost-analysis/synthesize-insights"
)

const storePingTimeout = 3 * time.Second

// Overrides replace the backends New would otherwise build. Tests and the
// CLI use them to inject fakes.
type Overrides struct {
	Provider llm.Provider
	Searcher search.Searcher
	Alerter  commonaws.Alerter
	Obs      *observability.Observability
}

// App holds every handler of the process, built from one Config.
type App struct {
	Config *config.Config
	Logger logger.Logger

	Provider      llm.Provider
	Searcher      search.Searcher
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	Alerter       commonaws.Alerter
	Obs           *observability.Observability

	Decompose  *decomposescenario.Handler
	Research   *researchagent.Handler
	Synthesize *synthesizeinsights.Handler
	Fallback   *fallbackinsights.Handler
	Analyze    *analyzescenario.Handler
	Plan       *generateactionplan.Handler
	Sessions   *chatsession.Manager
	Chat       *chatsession.Handler

	closers []func(context.Context) error
}

// Worker pairs a job type with its handler.
type Worker struct {
	TaskType string
	Handle   camunda.HandlerFunc
}

// New wires the stores, the LLM provider, search and all stage handlers.
// Redis and Elasticsearch are optional: an unreachable store is logged and
// left out.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, ov Overrides) (*App, error) {
	app := &App{Config: cfg, Logger: log, Obs: ov.Obs}

	app.connectStores(ctx)

	app.Provider = ov.Provider
	if app.Provider == nil {
		p, err := llm.New(ctx, cfg.LLM, log)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Provider = p
	}
	if !llm.Configured(cfg.LLM) && ov.Provider == nil {
		log.Warn("llm api key missing, analyses will serve fallback insights", map[string]interface{}{
			"provider": cfg.LLM.Provider,
		})
	}

	app.Searcher = ov.Searcher
	if app.Searcher == nil {
		deps := search.Deps{Redis: app.Redis}
		if app.Elasticsearch != nil {
			deps.Elasticsearch = app.Elasticsearch
		}
		app.Searcher = search.Build(cfg.Search, deps, log)
	}

	app.Alerter = ov.Alerter
	if app.Alerter == nil {
		app.Alerter = buildAlerter(ctx, cfg.Alerts, log)
	}

	app.buildHandlers(ov.Provider != nil)

	log.Info("application wired", map[string]interface{}{
		"llmProvider": app.Provider.Name(),
		"redis":       app.Redis != nil,
		"es":          app.Elasticsearch != nil,
	})
	return app, nil
}

func (a *App) connectStores(ctx context.Context) {
	cfg := a.Config.Database

	if cfg.Redis.Enabled() {
		rc, err := database.NewRedis(cfg.Redis)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, storePingTimeout)
			err = rc.Ping(pctx)
			cancel()
			if err != nil {
				rc.Close()
			}
		}
		if err != nil {
			a.Logger.Warn("redis unavailable, continuing without cache and progress events", map[string]interface{}{
				"address": cfg.Redis.Address,
				"error":   err.Error(),
			})
		} else {
			a.Redis = rc
			a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		}
	}

	if cfg.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Elasticsearch)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, storePingTimeout)
			err = es.Ping(pctx)
			cancel()
		}
		if err != nil {
			a.Logger.Warn("elasticsearch unavailable, knowledge base search disabled", map[string]interface{}{
				"url":   cfg.Elasticsearch.GetURL(),
				"error": err.Error(),
			})
		} else {
			a.Elasticsearch = es
		}
	}
}

func buildAlerter(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) commonaws.Alerter {
	if cfg.SNS.TopicARN == "" {
		return commonaws.NoopAlerter{}
	}
	client, err := commonaws.NewSNSClient(ctx, cfg.SNS.Region)
	if err != nil {
		log.Warn("sns alerts disabled", map[string]interface{}{"error": err.Error()})
		return commonaws.NoopAlerter{}
	}
	log.Info("sns fallback alerts enabled", map[string]interface{}{"topicArn": cfg.SNS.TopicARN})
	return commonaws.NewSNSAlerter(client, cfg.SNS.TopicARN)
}

// buildHandlers creates the stage handlers. An injected provider counts as
// configured even without an api key.
func (a *App) buildHandlers(injected bool) {
	cfg, log := a.Config, a.Logger

	a.Decompose = decomposescenario.NewHandler(decomposescenario.LoadConfig(cfg), a.Provider, log)
	a.Research = researchagent.NewHandler(researchagent.LoadConfig(cfg), a.Provider, a.Searcher, log)
	a.Synthesize = synthesizeinsights.NewHandler(synthesizeinsights.LoadConfig(cfg), a.Provider, log)
	a.Fallback = fallbackinsights.NewHandler(fallbackinsights.LoadConfig(cfg), log)
	a.Plan = generateactionplan.NewHandler(generateactionplan.LoadConfig(cfg), a.Provider, a.Searcher, log)

	acfg := analyzescenario.LoadConfig(cfg)
	if injected {
		acfg.LLMConfigured = true
	}
	// a nil *RedisClient must not become a non-nil interface
	var publisher analyzescenario.Publisher
	if a.Redis != nil {
		publisher = a.Redis
	}
	a.Analyze = analyzescenario.NewHandler(acfg, analyzescenario.Stages{
		Decomposer:  a.Decompose,
		Researcher:  a.Research,
		Synthesizer: a.Synthesize,
	}, a.Alerter, publisher, a.Obs, log)

	ccfg := chatsession.LoadConfig(cfg)
	a.Sessions = chatsession.NewManager(ccfg.MaxSessions, ccfg.SessionTTL, ccfg.Session, a.Provider, a.Searcher, log)
	a.Chat = chatsession.NewHandler(ccfg, a.Sessions, a.Analyze, log)
}

// Workers lists every job type in registration order.
func (a *App) Workers() []Worker {
	return []Worker{
		{TaskType: decomposescenario.TaskType, Handle: a.Decompose.Handle},
		{TaskType: researchagent.TaskType, Handle: a.Research.Handle},
		{TaskType: synthesizeinsights.TaskType, Handle: a.Synthesize.Handle},
		{TaskType: fallbackinsights.TaskType, Handle: a.Fallback.Handle},
		{TaskType: analyzescenario.TaskType, Handle: a.Analyze.Handle},
		{TaskType: generateactionplan.TaskType, Handle: a.Plan.Handle},
		{TaskType: chatsession.TaskType, Handle: a.Chat.Handle},
	}
}

// Close releases the stores. It is safe to call more than once.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}
