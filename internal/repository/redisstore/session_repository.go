package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doc-chat-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chat:session:"

// SessionRepository persists session records as JSON values in Redis.
// Records carry no TTL; reclamation is an explicit age-based cleanup.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get returns the stored session, or (nil, nil) when the id is unknown.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session store.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Save writes the full session record. Plain SET, last writer wins.
func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteOlderThan removes sessions whose last_accessed is beyond maxAge.
// Returns the number of sessions removed. Undecodable records are removed
// too, they can never be served.
func (r *SessionRepository) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return deleted, fmt.Errorf("redis get %s: %w", key, err)
		}

		var session store.Session
		if err := json.Unmarshal(raw, &session); err == nil && session.LastAccessed.After(cutoff) {
			continue
		}

		if err := r.client.Del(ctx, key).Err(); err != nil {
			return deleted, fmt.Errorf("redis delete %s: %w", key, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan sessions: %w", err)
	}

	return deleted, nil
}

// CountOlderThan reports how many sessions DeleteOlderThan would remove.
func (r *SessionRepository) CountOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	stale := 0

	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return stale, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}

		var session store.Session
		if err := json.Unmarshal(raw, &session); err == nil && session.LastAccessed.After(cutoff) {
			continue
		}
		stale++
	}
	if err := iter.Err(); err != nil {
		return stale, fmt.Errorf("redis scan sessions: %w", err)
	}

	return stale, nil
}
