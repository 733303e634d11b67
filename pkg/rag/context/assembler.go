// Package context assembles the retrieved grounding material for one chat
// turn into an ordered, labeled bundle.
package context

import (
	"context"
	"fmt"
	"strings"

	"doc-chat-be/internal/constant"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/pkg/rag/retrieval"
	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
)

// Section is one labeled block of context.
type Section struct {
	Label   string
	Content string
}

// Bundle is the ordered set of sections handed to the prompt builder.
// File context always precedes framework context, which precedes the mode
// advisories.
type Bundle struct {
	Sections []Section
}

// Render flattens the bundle into prompt text.
func (b *Bundle) Render() string {
	if len(b.Sections) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, s := range b.Sections {
		fmt.Fprintf(&sb, "\n--- %s ---\n", s.Label)
		sb.WriteString(s.Content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// ModeFlags are the per-request response style toggles.
type ModeFlags struct {
	Explain   bool
	Tasks     bool
	Alignment string
}

// Config holds the retrieval counts. The file limit is deliberately larger:
// a file-scoped request signals focused intent and should maximize recall
// from that one document.
type Config struct {
	FileLimit    int // results for the file-scoped query
	GeneralLimit int // framework results when no file context was found
	ReducedLimit int // framework results when file context is present
}

func DefaultConfig() Config {
	return Config{
		FileLimit:    10,
		GeneralLimit: 2,
		ReducedLimit: 1,
	}
}

// Assembler builds the context bundle for a chat turn. It has no fatal
// error path: retrieval failures are downgraded to labeled sections.
type Assembler struct {
	client retrieval.Client
	config Config
	logger logger.ILogger
}

func NewAssembler(client retrieval.Client, config Config, log logger.ILogger) *Assembler {
	return &Assembler{
		client: client,
		config: config,
		logger: log,
	}
}

// Build assembles the bundle: file-scoped context first, framework context
// second, mode advisories last.
func (a *Assembler) Build(ctx context.Context, query string, targetFile *string, userID *uuid.UUID, flags ModeFlags) *Bundle {
	bundle := &Bundle{}
	fileFound := false

	if targetFile != nil && *targetFile != "" {
		section, found := a.buildFileSection(ctx, query, *targetFile, userID)
		bundle.Sections = append(bundle.Sections, section)
		fileFound = found
	}

	limit := a.config.GeneralLimit
	if fileFound {
		limit = a.config.ReducedLimit
	}
	if section, ok := a.buildFrameworkSection(ctx, query, limit); ok {
		bundle.Sections = append(bundle.Sections, section)
	}

	bundle.Sections = append(bundle.Sections, modeSections(flags)...)

	return bundle
}

func (a *Assembler) buildFileSection(ctx context.Context, query, targetFile string, userID *uuid.UUID) (Section, bool) {
	label := fmt.Sprintf("File Context from %s", targetFile)

	chunks, err := a.client.Query(ctx, constant.CollectionUserDocuments, query, a.config.FileLimit, &retrieval.Filter{
		Filename: &targetFile,
		UserID:   userID,
	})
	if err != nil {
		a.logger.Warn("context_assembler", "file context query failed, continuing without it", map[string]interface{}{
			"target_file": targetFile,
			"error":       err.Error(),
		})
		return Section{
			Label:   label,
			Content: fmt.Sprintf("File context could not be loaded: %v", err),
		}, false
	}

	if len(chunks) == 0 {
		return Section{
			Label:   label,
			Content: fmt.Sprintf("No relevant content found in %s.", targetFile),
		}, false
	}

	return Section{Label: label, Content: renderChunks(chunks)}, true
}

func (a *Assembler) buildFrameworkSection(ctx context.Context, query string, limit int) (Section, bool) {
	label := "Relevant Framework Information"

	chunks, err := a.client.Query(ctx, constant.CollectionFrameworks, query, limit, nil)
	if err != nil {
		a.logger.Warn("context_assembler", "framework context query failed, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		return Section{
			Label:   label,
			Content: fmt.Sprintf("Framework context could not be loaded: %v", err),
		}, true
	}

	if len(chunks) == 0 {
		return Section{}, false
	}

	return Section{Label: label, Content: renderChunks(chunks)}, true
}

func renderChunks(chunks []store.Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n")
		}
		chunkRef := c.Metadata["chunk"]
		if chunkRef == "" {
			chunkRef = "N/A"
		}
		fmt.Fprintf(&sb, "--- From %s (Chunk %s) ---\n%s\n", c.SourceFile(), chunkRef, c.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func modeSections(flags ModeFlags) []Section {
	var sections []Section
	if flags.Explain {
		sections = append(sections, Section{
			Label:   "Response Mode",
			Content: "EXPLAIN MODE ACTIVE: Add clear explanations for every recommendation, so the user understands the reasoning behind each point.",
		})
	}
	if flags.Tasks {
		sections = append(sections, Section{
			Label:   "Response Mode",
			Content: "TASKS MODE ACTIVE: Break the guidance down into a concrete, actionable task list.",
		})
	}
	if flags.Alignment != "" {
		sections = append(sections, Section{
			Label:   "Response Alignment",
			Content: fmt.Sprintf("ALIGNMENT: %s", strings.ToUpper(flags.Alignment)),
		})
	}
	return sections
}
