package embedding

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// Task types understood by providers that distinguish storage from lookup
// embeddings. Providers that don't (Ollama) ignore them.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

type EmbeddingRequestContentPart struct {
	Text string `json:"text"`
}

type EmbeddingRequestContent struct {
	Parts []EmbeddingRequestContentPart `json:"parts"`
}

type EmbeddingRequest struct {
	Model    string                  `json:"model"`
	Content  EmbeddingRequestContent `json:"content"`
	TaskType string                  `json:"task_type,omitempty"`
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
