package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/chat/navigation"
	"doc-chat-be/pkg/chat/session"
	"doc-chat-be/pkg/chat/stage"
	"doc-chat-be/pkg/llm"
	ragcontext "doc-chat-be/pkg/rag/context"
	"doc-chat-be/pkg/rag/retrieval"
	"doc-chat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type stubBackend struct {
	sessions map[string]*store.Session
	saveErr  error
	saves    int
}

func newStubBackend() *stubBackend {
	return &stubBackend{sessions: map[string]*store.Session{}}
}

func (b *stubBackend) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	s, ok := b.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.History = append([]store.Turn{}, s.History...)
	return &copied, nil
}

func (b *stubBackend) Save(ctx context.Context, s *store.Session) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	copied := *s
	copied.History = append([]store.Turn{}, s.History...)
	b.sessions[s.ID] = &copied
	return nil
}

func (b *stubBackend) Delete(ctx context.Context, sessionID string) error {
	delete(b.sessions, sessionID)
	return nil
}

func (b *stubBackend) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	return 0, nil
}

type stubRetrieval struct {
	chunks map[string][]store.Chunk
}

func (r *stubRetrieval) Query(ctx context.Context, collection, text string, limit int, filter *retrieval.Filter) ([]store.Chunk, error) {
	return r.chunks[collection], nil
}

type stubLLM struct {
	reply string
	err   error
	calls int
	last  []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	s.calls++
	s.last = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newTestChatService(backend session.Backend, model llm.LLMProvider) IChatService {
	sessions := session.NewStore(backend, memory.NewSessionRepository(), noopLogger{})
	assembler := ragcontext.NewAssembler(&stubRetrieval{}, ragcontext.DefaultConfig(), noopLogger{})
	return NewChatService(sessions, assembler, model, stage.DefaultCount)
}

func TestProcessChatNewSessionStartsAtStageOne(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "Welcome to the starting point."}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		QueryText: "I want to plan a reading group",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionId)
	assert.Equal(t, 1, res.CurrentStep)
	assert.Equal(t, "Welcome to the starting point.", res.Response)
	require.Len(t, res.History, 2)
	assert.Equal(t, store.TurnRoleUser, res.History[0].Role)
	assert.Equal(t, "I want to plan a reading group", res.History[0].Content)
	assert.Equal(t, store.TurnRoleAssistant, res.History[1].Role)
	assert.False(t, res.Degraded)

	persisted := backend.sessions[res.SessionId]
	require.NotNil(t, persisted)
	assert.Equal(t, 1, persisted.CurrentStep)
	assert.Len(t, persisted.History, 2)
}

func TestProcessChatNextAdvancesStep(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	first, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{QueryText: "hello"})
	require.NoError(t, err)

	second, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: first.SessionId,
		QueryText: "next",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentStep)
	assert.Len(t, second.History, 4)
}

func TestProcessChatNextClampsAtLastStage(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = stage.DefaultCount
	backend.sessions["s1"] = sess

	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "next",
	})
	require.NoError(t, err)
	assert.Equal(t, stage.DefaultCount, res.CurrentStep)
}

func TestProcessChatPreviousClampsAtOne(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{QueryText: "previous"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStep)
}

func TestProcessChatJumpDirective(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		QueryText: "jump to step 4 please",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.CurrentStep)
}

func TestProcessChatInvalidJumpRejectedBeforeGeneration(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = 2
	sess.History = []store.Turn{{Role: store.TurnRoleUser, Content: "hi"}}
	backend.sessions["s1"] = sess

	model := &stubLLM{reply: "should not be called"}
	svc := newTestChatService(backend, model)

	_, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "jump to step 9",
	})

	var stepErr *navigation.InvalidStepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 9, stepErr.Target)
	assert.Equal(t, 0, model.calls)

	// Session state untouched
	assert.Equal(t, 2, backend.sessions["s1"].CurrentStep)
	assert.Len(t, backend.sessions["s1"].History, 1)
}

func TestProcessChatInvalidOverrideRejected(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	override := 0
	_, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		QueryText:    "hello",
		StepOverride: &override,
	})

	var stepErr *navigation.InvalidStepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 0, model.calls)
}

func TestProcessChatOverrideWinsOverDirective(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	override := 5
	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		QueryText:    "next",
		StepOverride: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.CurrentStep)
}

func TestProcessChatGenerationFailureLeavesSessionUntouched(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = 3
	sess.History = []store.Turn{
		{Role: store.TurnRoleUser, Content: "earlier"},
		{Role: store.TurnRoleAssistant, Content: "reply"},
	}
	backend.sessions["s1"] = sess

	model := &stubLLM{err: llm.Unavailable("ollama", errors.New("connection refused"))}
	svc := newTestChatService(backend, model)

	_, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "continue please",
	})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, genErr.Retryable())

	persisted := backend.sessions["s1"]
	assert.Equal(t, 3, persisted.CurrentStep)
	assert.Len(t, persisted.History, 2)
}

func TestProcessChatRetryAfterFailureReplaysTurn(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{err: llm.RateLimited("gemini", errors.New("quota"))}
	svc := newTestChatService(backend, model)

	first, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "hello",
	})
	require.Error(t, err)
	require.Nil(t, first)

	model.err = nil
	model.reply = "recovered"
	second, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", second.Response)
	assert.Len(t, second.History, 2)
}

func TestProcessChatDegradedWriteFlagged(t *testing.T) {
	backend := newStubBackend()
	backend.saveErr = errors.New("redis down")
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "hello",
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	// Same-process continuity through the fallback
	res2, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "next",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res2.CurrentStep)
	assert.Len(t, res2.History, 4)
}

func TestProcessChatPlannerExtractedAtPlannerStage(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = stage.PlannerStep
	backend.sessions["s1"] = sess

	model := &stubLLM{reply: "Here is your plan.\nPLANNER DEFINED:\n1. Scope\n2. Build\n3. Ship"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "define the plan",
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Scope\n2. Build\n3. Ship", res.Planner)
	assert.Equal(t, "1. Scope\n2. Build\n3. Ship", backend.sessions["s1"].Planner)
}

func TestProcessChatPlannerIgnoredBeforePlannerStage(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "PLANNER DEFINED: too early"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{QueryText: "hello"})
	require.NoError(t, err)
	assert.Empty(t, res.Planner)
}

func TestProcessChatPlannerSurvivesLaterTurns(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = 4
	sess.Planner = "existing planner"
	backend.sessions["s1"] = sess

	model := &stubLLM{reply: "no marker in this one"}
	svc := newTestChatService(backend, model)

	res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "refine stage four",
	})
	require.NoError(t, err)
	assert.Equal(t, "existing planner", res.Planner)
}

func TestProcessChatSystemPromptMatchesStage(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = 2
	backend.sessions["s1"] = sess

	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	_, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
		SessionId: "s1",
		QueryText: "how do these pieces fit together",
	})
	require.NoError(t, err)

	require.NotEmpty(t, model.last)
	assert.Equal(t, "system", model.last[0].Role)
	assert.Contains(t, model.last[0].Content, "Making Connections")
	assert.Contains(t, model.last[len(model.last)-1].Content, "User's Request")
}

func TestProcessChatHistoryGrowsWithoutDeduplication(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "same answer"}
	svc := newTestChatService(backend, model)

	var res *dto.ProcessChatResponse
	var err error
	for i := 0; i < 3; i++ {
		res, err = svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
			SessionId: "s1",
			QueryText: "repeat this",
		})
		require.NoError(t, err)
	}
	assert.Len(t, res.History, 6)
}

func TestGetSessionInfo(t *testing.T) {
	backend := newStubBackend()
	sess := store.NewSession("s1")
	sess.CurrentStep = 3
	sess.Planner = "plan"
	sess.History = []store.Turn{{Role: store.TurnRoleUser, Content: "hi"}}
	backend.sessions["s1"] = sess

	svc := newTestChatService(backend, &stubLLM{})

	info, err := svc.GetSessionInfo(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", info.SessionId)
	assert.Equal(t, 3, info.CurrentStep)
	assert.Equal(t, "plan", info.Planner)
	assert.Equal(t, 1, info.HistoryLength)
}

func TestDeleteSession(t *testing.T) {
	backend := newStubBackend()
	backend.sessions["s1"] = store.NewSession("s1")

	svc := newTestChatService(backend, &stubLLM{})
	require.NoError(t, svc.DeleteSession(context.Background(), "s1"))
	assert.NotContains(t, backend.sessions, "s1")
}

func TestProcessChatGeneratesDistinctSessionIds(t *testing.T) {
	backend := newStubBackend()
	model := &stubLLM{reply: "ok"}
	svc := newTestChatService(backend, model)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res, err := svc.ProcessChat(context.Background(), nil, &dto.ProcessChatRequest{
			QueryText: fmt.Sprintf("query %d", i),
		})
		require.NoError(t, err)
		assert.False(t, seen[res.SessionId])
		seen[res.SessionId] = true
	}
}
