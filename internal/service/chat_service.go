package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"doc-chat-be/internal/constant"
	"doc-chat-be/internal/dto"
	"doc-chat-be/pkg/chat/navigation"
	"doc-chat-be/pkg/chat/session"
	"doc-chat-be/pkg/chat/stage"
	"doc-chat-be/pkg/llm"
	ragcontext "doc-chat-be/pkg/rag/context"
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
)

// IChatService defines the guided chat flow
type IChatService interface {
	ProcessChat(ctx context.Context, userId *uuid.UUID, request *dto.ProcessChatRequest) (*dto.ProcessChatResponse, error)
	GetSessionInfo(ctx context.Context, sessionId string) (*dto.SessionInfoResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// chatService coordinates navigation, retrieval and generation for one turn
type chatService struct {
	sessions    *session.Store
	assembler   *ragcontext.Assembler
	llmProvider llm.LLMProvider
	maxSteps    int
	llmLogger   *log.Logger
}

func NewChatService(
	sessions *session.Store,
	assembler *ragcontext.Assembler,
	llmProvider llm.LLMProvider,
	maxSteps int,
) IChatService {
	if maxSteps <= 0 {
		maxSteps = stage.DefaultCount
	}
	return &chatService{
		sessions:    sessions,
		assembler:   assembler,
		llmProvider: llmProvider,
		maxSteps:    maxSteps,
		llmLogger:   initLLMLogger(),
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// ProcessChat runs one conversational turn:
//  1. Resolve the effective stage (override, then query directive), rejecting
//     out-of-range targets before any state is touched.
//  2. Load session state. Loads never fail; a broken store yields a fresh
//     default session.
//  3. Assemble retrieval context. Retrieval failures are downgraded to
//     labeled notes inside the context, never surfaced as errors.
//  4. Call the model. This is the only fatal path: on failure the session is
//     left exactly as it was, so a client retry replays the same turn.
//  5. Persist the new history, stage and planner. A failed write degrades to
//     the in-process fallback and is flagged on the response.
func (c *chatService) ProcessChat(ctx context.Context, userId *uuid.UUID, request *dto.ProcessChatRequest) (*dto.ProcessChatResponse, error) {
	sessionId := request.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	parsed := navigation.Parse(request.QueryText)
	if request.StepOverride != nil {
		if err := navigation.ValidateOverride(*request.StepOverride, c.maxSteps); err != nil {
			return nil, err
		}
	} else if parsed.Directive == navigation.DirectiveJump {
		if err := navigation.ValidateOverride(parsed.Target, c.maxSteps); err != nil {
			return nil, err
		}
	}

	sess := c.sessions.Get(ctx, sessionId)

	step := sess.CurrentStep
	if request.StepOverride != nil {
		step = *request.StepOverride
	} else {
		// Out-of-range jumps were rejected above, Apply cannot fail here.
		step, _ = navigation.Apply(step, parsed, c.maxSteps)
	}

	bundle := c.assembler.Build(ctx, request.QueryText, request.TargetFile, userId, ragcontext.ModeFlags{
		Explain:   request.ExplainMode,
		Tasks:     request.TasksMode,
		Alignment: request.Alignment,
	})

	turnContent := prompt.NewTurnBuilder(step, bundle, sess.Planner, request.QueryText).Build()

	messages := make([]llm.Message, 0, len(sess.History)+2)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleSystem, Content: stage.SystemPrompt(step)})
	for _, turn := range sess.History {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: turnContent})

	c.llmLogger.Printf("[CHAT] session=%s step=%d history_len=%d prompt_len=%d", sessionId, step, len(sess.History), len(turnContent))

	answer, err := c.llmProvider.Chat(ctx, messages)
	if err != nil {
		c.llmLogger.Printf("[ERROR] session=%s generation failed: %v", sessionId, err)
		return nil, err
	}

	history := append(sess.History,
		store.Turn{Role: store.TurnRoleUser, Content: request.QueryText},
		store.Turn{Role: store.TurnRoleAssistant, Content: answer},
	)

	planner := sess.Planner
	if step >= stage.PlannerStep {
		if extracted, found := extractPlanner(answer); found {
			planner = extracted
		}
	}

	status := c.sessions.Update(ctx, sess, history, step, planner)

	return &dto.ProcessChatResponse{
		SessionId:   sessionId,
		Response:    answer,
		History:     toTurnDTOs(history),
		CurrentStep: step,
		Planner:     planner,
		Degraded:    status == session.WriteDegraded,
	}, nil
}

// extractPlanner pulls the planner text the model emits after its marker.
// Everything after the last marker occurrence wins.
func extractPlanner(answer string) (string, bool) {
	idx := strings.LastIndex(answer, constant.PlannerMarker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(answer[idx+len(constant.PlannerMarker):]), true
}

func (c *chatService) GetSessionInfo(ctx context.Context, sessionId string) (*dto.SessionInfoResponse, error) {
	sess := c.sessions.Get(ctx, sessionId)

	return &dto.SessionInfoResponse{
		SessionId:     sess.ID,
		CurrentStep:   sess.CurrentStep,
		Planner:       sess.Planner,
		HistoryLength: len(sess.History),
		CreatedAt:     sess.CreatedAt,
		LastAccessed:  sess.LastAccessed,
	}, nil
}

func (c *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	return c.sessions.Delete(ctx, sessionId)
}

func toTurnDTOs(history []store.Turn) []dto.ChatTurnDTO {
	result := make([]dto.ChatTurnDTO, 0, len(history))
	for _, turn := range history {
		result = append(result, dto.ChatTurnDTO{Role: turn.Role, Content: turn.Content})
	}
	return result
}
