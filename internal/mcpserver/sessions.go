package mcpserver

import (
	"sync"

	"github.com/docchat/docchat/internal/domain"
)

// DefaultSession is the session name used when a caller supplies none.
const DefaultSession = "default"

// SessionStore owns the per-session conversation histories. Each session
// is an independent History guarded by its own lock, so turns within one
// session run one at a time while distinct sessions proceed concurrently.
type SessionStore struct {
	mtx      sync.Mutex
	sessions map[string]*session
}

type session struct {
	mtx     sync.Mutex
	history *domain.History
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
	}
}

// WithHistory runs fn holding the named session's lock, creating the
// session on first use. The history must not escape fn.
func (s *SessionStore) WithHistory(name string, fn func(h *domain.History) error) error {
	if name == "" {
		name = DefaultSession
	}

	s.mtx.Lock()
	sess, ok := s.sessions[name]
	if !ok {
		sess = &session{history: domain.NewHistory()}
		s.sessions[name] = sess
	}
	s.mtx.Unlock()

	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	return fn(sess.history)
}
