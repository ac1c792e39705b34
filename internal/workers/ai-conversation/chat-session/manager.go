// internal/workers/ai-conversation/chat-session/manager.go
package chatsession

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/metrics"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
	"costli-agents/internal/search"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrSessionNotFound = stderrors.New("chat session not found")

const (
	defaultMaxSessions = 1000
	defaultSessionTTL  = 30 * time.Minute
)

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Manager keeps sessions in process memory: at most MaxSessions, each
// dropped after SessionTTL without use.
type Manager struct {
	sessions *expirable.LRU[string, *entry]
	provider llm.Provider
	searcher search.Searcher
	config   SessionConfig
	logger   logger.Logger
}

func NewManager(maxSessions int, ttl time.Duration, config SessionConfig, provider llm.Provider, searcher search.Searcher, log logger.Logger) *Manager {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	m := &Manager{
		provider: provider,
		searcher: searcher,
		config:   config,
		logger:   log,
	}
	m.sessions = expirable.NewLRU[string, *entry](maxSessions, func(id string, _ *entry) {
		metrics.ChatSessionsActive.Dec()
		m.logger.Debug("chat session evicted", map[string]interface{}{"sessionId": id})
	}, ttl)
	return m
}

func (m *Manager) Create(domain models.Domain) *Session {
	s := NewSession(domain, m.provider, m.searcher, m.config, m.logger)
	m.sessions.Add(s.ID, &entry{session: s})
	metrics.ChatSessionsActive.Inc()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	e, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Turn runs one turn on a stored session. Concurrent turns on the same
// session run one after another.
func (m *Manager) Turn(ctx context.Context, id, text string) (string, []models.ChatTurn, error) {
	e, ok := m.sessions.Get(id)
	if !ok {
		return "", nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	reply := e.session.SendTurn(ctx, text)
	// refresh the idle timer
	m.sessions.Add(id, e)
	return reply, e.session.Transcript(), nil
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}
