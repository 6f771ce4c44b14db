package mcpserver

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/domain"
)

func TestSessionsAreIndependent(t *testing.T) {
	store := NewSessionStore()

	err := store.WithHistory("alpha", func(h *domain.History) error {
		h.AppendExchange("q1", "a1")
		return nil
	})
	require.NoError(t, err)

	err = store.WithHistory("beta", func(h *domain.History) error {
		assert.Equal(t, 0, h.Len(), "a new session starts with empty history")
		return nil
	})
	require.NoError(t, err)

	err = store.WithHistory("alpha", func(h *domain.History) error {
		assert.Equal(t, 2, h.Len(), "session history persists across calls")
		return nil
	})
	require.NoError(t, err)
}

func TestEmptySessionNameUsesDefault(t *testing.T) {
	store := NewSessionStore()

	err := store.WithHistory("", func(h *domain.History) error {
		h.AppendExchange("q", "a")
		return nil
	})
	require.NoError(t, err)

	err = store.WithHistory(DefaultSession, func(h *domain.History) error {
		assert.Equal(t, 2, h.Len())
		return nil
	})
	require.NoError(t, err)
}

func TestSessionTurnsSerialize(t *testing.T) {
	store := NewSessionStore()

	// Concurrent exchanges on one session must not interleave half-turns:
	// the final history length is exactly 2 per exchange.
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithHistory("shared", func(h *domain.History) error {
				h.AppendExchange("q", "a")
				return nil
			})
		}()
	}
	wg.Wait()

	err := store.WithHistory("shared", func(h *domain.History) error {
		assert.Equal(t, 2*workers, h.Len())
		return nil
	})
	require.NoError(t, err)
}
