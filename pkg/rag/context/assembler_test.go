package context

import (
	"context"
	"errors"
	"strings"
	"testing"

	"doc-chat-be/internal/constant"
	"doc-chat-be/pkg/rag/retrieval"
	"doc-chat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuery struct {
	Collection string
	Limit      int
	Filter     *retrieval.Filter
}

type fakeRetrievalClient struct {
	queries   []recordedQuery
	responses map[string][]store.Chunk
	errs      map[string]error
}

func newFakeRetrievalClient() *fakeRetrievalClient {
	return &fakeRetrievalClient{
		responses: map[string][]store.Chunk{},
		errs:      map[string]error{},
	}
}

func (f *fakeRetrievalClient) Query(_ context.Context, collection, _ string, limit int, filter *retrieval.Filter) ([]store.Chunk, error) {
	f.queries = append(f.queries, recordedQuery{Collection: collection, Limit: limit, Filter: filter})
	if err, ok := f.errs[collection]; ok {
		return nil, err
	}
	return f.responses[collection], nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func chunk(text, filename string, index string) store.Chunk {
	return store.Chunk{
		Text:     text,
		Score:    0.9,
		Metadata: map[string]string{"filename": filename, "chunk": index},
	}
}

func strPtr(s string) *string { return &s }

func TestBuild_NoTargetFileQueriesFrameworksOnly(t *testing.T) {
	client := newFakeRetrievalClient()
	client.responses[constant.CollectionFrameworks] = []store.Chunk{chunk("framework info", "framework.md", "0")}
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "what is planning?", nil, nil, ModeFlags{})

	require.Len(t, client.queries, 1)
	assert.Equal(t, constant.CollectionFrameworks, client.queries[0].Collection)
	assert.Equal(t, 2, client.queries[0].Limit)
	assert.Contains(t, bundle.Render(), "Relevant Framework Information")
}

func TestBuild_FileContextComesFirstAndReducesFrameworkLimit(t *testing.T) {
	client := newFakeRetrievalClient()
	client.responses[constant.CollectionUserDocuments] = []store.Chunk{chunk("file content", "report.pdf", "1")}
	client.responses[constant.CollectionFrameworks] = []store.Chunk{chunk("framework info", "framework.md", "0")}
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "summarize", strPtr("report.pdf"), nil, ModeFlags{})

	require.Len(t, client.queries, 2)
	fileQuery := client.queries[0]
	assert.Equal(t, constant.CollectionUserDocuments, fileQuery.Collection)
	assert.Equal(t, 10, fileQuery.Limit)
	require.NotNil(t, fileQuery.Filter)
	require.NotNil(t, fileQuery.Filter.Filename)
	assert.Equal(t, "report.pdf", *fileQuery.Filter.Filename)

	assert.Equal(t, 1, client.queries[1].Limit, "framework limit reduced when file context is non-empty")

	rendered := bundle.Render()
	assert.Contains(t, rendered, "File Context from report.pdf")
	fileIdx := strings.Index(rendered, "File Context from report.pdf")
	fwIdx := strings.Index(rendered, "Relevant Framework Information")
	assert.Less(t, fileIdx, fwIdx, "file context precedes framework context")
}

func TestBuild_EmptyFileResultUsesFullFrameworkLimit(t *testing.T) {
	// Scenario: the target file yields nothing, so the framework query keeps
	// its full result count.
	client := newFakeRetrievalClient()
	client.responses[constant.CollectionFrameworks] = []store.Chunk{chunk("framework info", "framework.md", "0")}
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "summarize", strPtr("report.pdf"), nil, ModeFlags{})

	require.Len(t, client.queries, 2)
	assert.Equal(t, 2, client.queries[1].Limit)
	assert.Contains(t, bundle.Render(), "No relevant content found in report.pdf.")
}

func TestBuild_FileQueryErrorDowngradedToSection(t *testing.T) {
	client := newFakeRetrievalClient()
	client.errs[constant.CollectionUserDocuments] = errors.New("vector store down")
	client.responses[constant.CollectionFrameworks] = []store.Chunk{chunk("framework info", "framework.md", "0")}
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "summarize", strPtr("report.pdf"), nil, ModeFlags{})

	rendered := bundle.Render()
	assert.Contains(t, rendered, "File context could not be loaded")
	assert.Contains(t, rendered, "vector store down")
	// The failed file query counts as "not found", so the framework limit stays full.
	assert.Equal(t, 2, client.queries[1].Limit)
}

func TestBuild_ModeSectionsAppendedLast(t *testing.T) {
	client := newFakeRetrievalClient()
	client.responses[constant.CollectionUserDocuments] = []store.Chunk{chunk("file content", "test.pdf", "1")}
	client.responses[constant.CollectionFrameworks] = []store.Chunk{chunk("framework info", "framework.md", "0")}
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "explain the plan", strPtr("test.pdf"), nil, ModeFlags{
		Explain:   true,
		Tasks:     true,
		Alignment: "detailed",
	})

	rendered := bundle.Render()
	assert.Contains(t, rendered, "EXPLAIN MODE ACTIVE")
	assert.Contains(t, rendered, "TASKS MODE ACTIVE")
	assert.Contains(t, rendered, "ALIGNMENT: DETAILED")
	assert.Contains(t, rendered, "File Context from test.pdf")

	fwIdx := strings.Index(rendered, "Relevant Framework Information")
	modeIdx := strings.Index(rendered, "EXPLAIN MODE ACTIVE")
	assert.Less(t, fwIdx, modeIdx, "mode advisories come after retrieved context")
}

func TestBuild_NeverFails(t *testing.T) {
	client := newFakeRetrievalClient()
	client.errs[constant.CollectionUserDocuments] = errors.New("down")
	client.errs[constant.CollectionFrameworks] = errors.New("down")
	a := NewAssembler(client, DefaultConfig(), noopLogger{})

	bundle := a.Build(context.Background(), "anything", strPtr("report.pdf"), nil, ModeFlags{Explain: true})

	require.NotNil(t, bundle)
	assert.NotEmpty(t, bundle.Sections)
}
