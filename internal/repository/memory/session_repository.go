package memory

import (
	"doc-chat-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the process-local fallback for session records. It is
// never promoted back to the persistent store. Entries must outlive any idle
// window: a record held here may be the only copy of a conversation, so it
// stays for the remainder of the process lifetime.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.NoExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
