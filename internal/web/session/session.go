package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gofiber/storage"
	"github.com/rs/zerolog/log"
)

// statePrefix namespaces pending SSO states in the shared storage backend.
const statePrefix = "sso_state:"

// StateStore keeps pending single-use SSO states in a fiber storage backend.
// Take removes the state as part of reading it, so a stored state resolves
// exactly once.
type StateStore struct {
	mu      sync.Mutex
	storage storage.Storage
	ttl     time.Duration
}

// NewStateStore creates a state store on the given storage backend with the
// given state lifetime.
func NewStateStore(backend storage.Storage, ttl time.Duration) *StateStore {
	if backend == nil {
		panic("storage is nil")
	}

	return &StateStore{storage: backend, ttl: ttl}
}

// Put stores the state for the session, replacing any pending one.
func (s *StateStore) Put(sessionID, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Set(statePrefix+sessionID, []byte(state), s.ttl)
}

// Take reads and removes the state stored for the session. A state whose
// removal fails is never handed out: accepting it while it stays live in
// the backend would make it replayable.
func (s *StateStore) Take(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.storage.Get(statePrefix + sessionID)
	if err != nil || len(value) == 0 {
		return "", false
	}

	if err = s.storage.Delete(statePrefix + sessionID); err != nil {
		log.Error().Err(err).Msg("failed to remove pending sso state")

		return "", false
	}

	return string(value), true
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
