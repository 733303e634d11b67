package dto

import "time"

type ProcessChatRequest struct {
	SessionId    string  `json:"session_id"`
	QueryText    string  `json:"query_text" validate:"required"`
	TargetFile   *string `json:"target_file,omitempty"`
	ExplainMode  bool    `json:"explain_active"`
	TasksMode    bool    `json:"tasks_active"`
	Alignment    string  `json:"selected_alignment,omitempty"`
	StepOverride *int    `json:"step_override,omitempty" validate:"omitempty,min=1"`
}

type ChatTurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ProcessChatResponse struct {
	SessionId   string        `json:"session_id"`
	Response    string        `json:"response"`
	History     []ChatTurnDTO `json:"history"`
	CurrentStep int           `json:"current_step"`
	Planner     string        `json:"planner_details,omitempty"`
	Degraded    bool          `json:"degraded,omitempty"` // true when the session write landed in the fallback only
}

type SessionInfoResponse struct {
	SessionId     string    `json:"session_id"`
	CurrentStep   int       `json:"current_step"`
	Planner       string    `json:"planner_details,omitempty"`
	HistoryLength int       `json:"history_length"`
	CreatedAt     time.Time `json:"created_at"`
	LastAccessed  time.Time `json:"last_accessed"`
}
