// internal/llm/profile.go
package llm

import "costli-agents/internal/common/config"

type Profile struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

const (
	ProfileDecompose  = "decompose"
	ProfileResearch   = "research"
	ProfileSynthesize = "synthesize"
	ProfilePlan       = "plan"
	ProfileChat       = "chat"
)

// Profiles is the resolved set of named model settings.
type Profiles map[string]Profile

// ResolveProfiles builds the built-in profiles from the configured model
// names and then applies any per-profile overrides.
func ResolveProfiles(cfg config.LLMConfig) Profiles {
	p := Profiles{
		ProfileDecompose:  {Model: cfg.Model, Temperature: 0.2, MaxTokens: 2048},
		ProfileResearch:   {Model: cfg.Model, Temperature: 0.2, MaxTokens: 4096},
		ProfileSynthesize: {Model: cfg.Model, Temperature: 0.3, MaxTokens: 8192},
		ProfilePlan:       {Model: cfg.Model, Temperature: 0.2, MaxTokens: 4096},
		ProfileChat:       {Model: cfg.FastModel, Temperature: 0.4, MaxTokens: 2048},
	}

	for name, override := range cfg.Profiles {
		base := p[name]
		if override.Model != "" {
			base.Model = override.Model
		}
		if override.Temperature != nil {
			base.Temperature = *override.Temperature
		}
		if override.MaxTokens > 0 {
			base.MaxTokens = override.MaxTokens
		}
		p[name] = base
	}
	return p
}

// Get returns the named profile, falling back to research settings.
func (p Profiles) Get(name string) Profile {
	if prof, ok := p[name]; ok {
		return prof
	}
	return p[ProfileResearch]
}
