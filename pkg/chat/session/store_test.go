package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	sessions map[string]*store.Session
	getErr   error
	saveErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sessions: map[string]*store.Session{}}
}

func (f *fakeBackend) Get(_ context.Context, id string) (*store.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeBackend) Save(_ context.Context, s *store.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeBackend) DeleteOlderThan(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for id, s := range f.sessions {
		if s.LastAccessed.Before(cutoff) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func newTestStore(backend Backend) *Store {
	return NewStore(backend, memory.NewSessionRepository(), noopLogger{})
}

func TestGet_UnknownSessionReturnsDefault(t *testing.T) {
	s := newTestStore(newFakeBackend())

	session := s.Get(context.Background(), "fresh")

	assert.Equal(t, "fresh", session.ID)
	assert.Equal(t, 1, session.CurrentStep)
	assert.Empty(t, session.History)
	assert.Empty(t, session.Planner)
}

func TestGet_BackendErrorReturnsDefaultSession(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("connection refused")
	s := newTestStore(backend)

	session := s.Get(context.Background(), "sid")

	assert.Equal(t, 1, session.CurrentStep)
	assert.Empty(t, session.History)
}

func TestGet_TouchesLastAccessed(t *testing.T) {
	backend := newFakeBackend()
	stale := store.NewSession("sid")
	stale.LastAccessed = time.Now().Add(-48 * time.Hour)
	backend.sessions["sid"] = stale
	s := newTestStore(backend)

	session := s.Get(context.Background(), "sid")

	assert.WithinDuration(t, time.Now(), session.LastAccessed, time.Second)
	assert.WithinDuration(t, time.Now(), backend.sessions["sid"].LastAccessed, time.Second)
}

func TestUpdate_PersistsAndReturnsOk(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)

	session := store.NewSession("sid")
	history := []store.Turn{
		{Role: store.TurnRoleUser, Content: "hello"},
		{Role: store.TurnRoleAssistant, Content: "hi"},
	}

	status := s.Update(context.Background(), session, history, 2, "plan text")

	assert.Equal(t, WriteOk, status)
	persisted := backend.sessions["sid"]
	require.NotNil(t, persisted)
	assert.Len(t, persisted.History, 2)
	assert.Equal(t, 2, persisted.CurrentStep)
	assert.Equal(t, "plan text", persisted.Planner)
}

func TestUpdate_BackendFailureFallsBackToMemory(t *testing.T) {
	backend := newFakeBackend()
	backend.saveErr = errors.New("write refused")
	s := newTestStore(backend)

	session := store.NewSession("sid")
	history := []store.Turn{{Role: store.TurnRoleUser, Content: "hello"}}

	status := s.Update(context.Background(), session, history, 1, "")

	assert.Equal(t, WriteDegraded, status)
	assert.Empty(t, backend.sessions)

	// Same-process reads must still see the degraded write.
	backend.getErr = errors.New("still down")
	reloaded := s.Get(context.Background(), "sid")
	assert.Len(t, reloaded.History, 1)
}

func TestGet_FallbackRecordNotPromotedToBackend(t *testing.T) {
	backend := newFakeBackend()
	backend.saveErr = errors.New("write refused")
	s := newTestStore(backend)

	session := store.NewSession("sid")
	history := []store.Turn{{Role: store.TurnRoleUser, Content: "hello"}}
	status := s.Update(context.Background(), session, history, 2, "")
	require.Equal(t, WriteDegraded, status)

	// Backend recovers. Reads must keep serving the fallback copy without
	// writing it into the persistent store.
	backend.saveErr = nil

	reloaded := s.Get(context.Background(), "sid")
	assert.Len(t, reloaded.History, 1)
	assert.Equal(t, 2, reloaded.CurrentStep)
	assert.NotContains(t, backend.sessions, "sid")

	// The touch lands on the fallback entry instead.
	again := s.Get(context.Background(), "sid")
	assert.WithinDuration(t, time.Now(), again.LastAccessed, time.Second)
	assert.NotContains(t, backend.sessions, "sid")
}

func TestDelete_RemovesFromBothStores(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)

	session := store.NewSession("sid")
	s.Update(context.Background(), session, nil, 1, "")
	require.NoError(t, s.Delete(context.Background(), "sid"))

	reloaded := s.Get(context.Background(), "sid")
	assert.Empty(t, reloaded.History)
	assert.Equal(t, 1, reloaded.CurrentStep)
}

func TestCleanup_RemovesIdleSessions(t *testing.T) {
	backend := newFakeBackend()
	old := store.NewSession("old")
	old.LastAccessed = time.Now().Add(-72 * time.Hour)
	backend.sessions["old"] = old

	recent := store.NewSession("recent")
	backend.sessions["recent"] = recent

	s := newTestStore(backend)
	deleted, err := s.Cleanup(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, backend.sessions, "recent")
	assert.NotContains(t, backend.sessions, "old")
}
