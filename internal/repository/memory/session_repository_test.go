package memory

import (
	"testing"

	"doc-chat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	repo := NewSessionRepository()

	session := store.NewSession("sid")
	session.History = []store.Turn{{Role: store.TurnRoleUser, Content: "hello"}}
	repo.Save(session)

	got, found := repo.Get("sid")
	require.True(t, found)
	assert.Len(t, got.History, 1)
}

func TestGetMissing(t *testing.T) {
	repo := NewSessionRepository()

	_, found := repo.Get("nope")
	assert.False(t, found)
}

func TestDeleteRemovesRecord(t *testing.T) {
	repo := NewSessionRepository()

	repo.Save(store.NewSession("sid"))
	repo.Delete("sid")

	_, found := repo.Get("sid")
	assert.False(t, found)
}

// A record held here may be the only copy of a conversation, so entries must
// never carry an expiration deadline.
func TestSavedRecordsNeverExpire(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(store.NewSession("sid"))

	items := repo.cache.Items()
	item, ok := items["sid"]
	require.True(t, ok)
	assert.Zero(t, item.Expiration)
}
