// internal/workers/ai-conversation/chat-session/config.go
package chatsession

import (
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/llm"
	"costli-agents/internal/prompt"
)

// SessionConfig bounds one conversation.
type SessionConfig struct {
	HistoryTurns  int
	SearchResults int
	Profile       llm.Profile
}

type Config struct {
	Timeout     time.Duration
	SessionTTL  time.Duration
	MaxSessions int
	Session     SessionConfig
	FollowUp    prompt.FollowUpCaps
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	p := cfg.Pipeline

	caps := prompt.DefaultFollowUpCaps()
	if p.FollowUpChars > 0 {
		caps.Scenario = p.FollowUpChars
	}
	if p.FollowUpMessage > 0 {
		caps.Message = p.FollowUpMessage
	}
	if p.FollowUpAnswer > 0 {
		caps.Answer = p.FollowUpAnswer
	}

	return &Config{
		Timeout:     config.GetDuration(wc.Timeout),
		SessionTTL:  config.GetDuration(p.ChatSessionTTL),
		MaxSessions: p.ChatMaxSessions,
		Session: SessionConfig{
			HistoryTurns:  p.ChatHistoryTurns,
			SearchResults: p.ChatSearchResults,
			Profile:       llm.ResolveProfiles(cfg.LLM).Get(llm.ProfileChat),
		},
		FollowUp: caps,
	}
}
