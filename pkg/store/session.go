package store

import "time"

// Turn is a single conversational exchange entry.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session represents the persisted conversation state for one session id.
type Session struct {
	ID           string    `json:"id"`
	History      []Turn    `json:"history"`
	CurrentStep  int       `json:"current_step"`
	Planner      string    `json:"planner,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

// NewSession returns a fresh session with defaults: empty history, step 1.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		History:      []Turn{},
		CurrentStep:  1,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// Chunk is a single retrieval result. Ephemeral, lives within one request.
type Chunk struct {
	Text     string            `json:"text"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// SourceFile returns the originating file name carried in chunk metadata.
func (c Chunk) SourceFile() string {
	if f, ok := c.Metadata["filename"]; ok && f != "" {
		return f
	}
	return "Unknown source"
}

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)
