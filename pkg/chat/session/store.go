// Package session wraps the persistent session record store with the
// degradation rules the chat flow relies on: reads never fail, and writes
// fall back to a process-local copy when the backing store is down.
package session

import (
	"context"
	"time"

	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/store"
)

// Backend is the persistent session record store.
type Backend interface {
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}

// WriteStatus tags how an update landed.
type WriteStatus string

const (
	// WriteOk: persisted to the backing store.
	WriteOk WriteStatus = "ok"
	// WriteDegraded: the backing store rejected the write; the record lives
	// in the process-local fallback only, and is never promoted back.
	WriteDegraded WriteStatus = "degraded"
)

type Store struct {
	backend  Backend
	fallback *memory.SessionRepository
	logger   logger.ILogger
}

func NewStore(backend Backend, fallback *memory.SessionRepository, log logger.ILogger) *Store {
	return &Store{
		backend:  backend,
		fallback: fallback,
		logger:   log,
	}
}

// Get loads the session for an id. It never fails: on a backend error or
// miss it checks the process-local fallback, and otherwise hands back a
// fresh default session. Touches last_accessed.
func (s *Store) Get(ctx context.Context, sessionID string) *store.Session {
	session, err := s.backend.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("session_store", "session read failed, continuing without persisted history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		session = nil
	}

	fromFallback := false
	if session == nil {
		if fallback, found := s.fallback.Get(sessionID); found {
			session = fallback
			fromFallback = true
		}
	}

	if session == nil {
		session = store.NewSession(sessionID)
	}

	session.LastAccessed = time.Now()
	// Touch is best effort, a failed touch must not degrade the read. A
	// fallback-sourced record is touched in place only: it is never promoted
	// back to the persistent store.
	if fromFallback {
		s.fallback.Save(session)
	} else if err := s.backend.Save(ctx, session); err != nil {
		s.logger.Debug("session_store", "last_accessed touch skipped", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return session
}

// Update persists the new conversation state. On backend failure the record
// is kept in the process-local fallback so same-process turns keep their
// continuity, and the result is tagged WriteDegraded.
func (s *Store) Update(ctx context.Context, session *store.Session, history []store.Turn, step int, planner string) WriteStatus {
	session.History = history
	session.CurrentStep = step
	session.Planner = planner
	session.LastAccessed = time.Now()

	if err := s.backend.Save(ctx, session); err != nil {
		s.logger.Warn("session_store", "session write failed, keeping in-memory copy", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		s.fallback.Save(session)
		return WriteDegraded
	}

	return WriteOk
}

// Delete removes the session from both stores.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.fallback.Delete(sessionID)
	return s.backend.Delete(ctx, sessionID)
}

// Cleanup removes persisted sessions idle longer than maxAge.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	return s.backend.DeleteOlderThan(ctx, maxAge)
}
