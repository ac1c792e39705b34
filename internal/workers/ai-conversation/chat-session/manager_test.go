// internal/workers/ai-conversation/chat-session/manager_test.go
package chatsession

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"costli-agents/internal/common/logger"
	"costli-agents/internal/llm"
	"costli-agents/internal/llm/llmtest"
	"costli-agents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, p llm.Provider, ttl time.Duration) *Manager {
	return NewManager(10, ttl, SessionConfig{HistoryTurns: 20, SearchResults: 3}, p, noSearch(), logger.NewTestLogger(t))
}

func TestManager_CreateGetTurn(t *testing.T) {
	m := newTestManager(t, llmtest.New(llmtest.Text("hello")), time.Minute)

	s := m.Create(models.DomainGCP)
	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	reply, transcript, err := m.Turn(context.Background(), s.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Len(t, transcript, 2)

	_, _, err = m.Turn(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SerializesTurns(t *testing.T) {
	var inFlight, peak int32
	fake := llmtest.New()
	fake.Respond = func(context.Context, *llm.Request) (*llm.Response, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &llm.Response{Text: "ok"}, nil
	}
	m := newTestManager(t, fake, time.Minute)
	s := m.Create(models.DomainAWS)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Turn(context.Background(), s.ID, "q")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
	assert.Len(t, s.Transcript(), 16)
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	m := newTestManager(t, llmtest.New(), 50*time.Millisecond)
	s := m.Create(models.DomainAWS)

	assert.Eventually(t, func() bool {
		_, ok := m.Get(s.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_BoundedSize(t *testing.T) {
	m := newTestManager(t, llmtest.New(), time.Minute)
	first := m.Create(models.DomainAWS)
	for i := 0; i < 12; i++ {
		m.Create(models.DomainAWS)
	}
	assert.Equal(t, 10, m.Len())
	_, ok := m.Get(first.ID)
	assert.False(t, ok)
}
