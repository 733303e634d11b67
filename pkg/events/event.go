package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic carrier used when reconstructing events off the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeDocumentIngested        = "document.ingested"
	TypeDocumentIngestionFailed = "document.ingestion_failed"
)

// NewDocumentIngested is emitted after a document's chunks have been embedded
// and stored.
func NewDocumentIngested(documentID, userID, filename string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
			"filename":    filename,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngestionFailed is emitted when the ingestion pipeline gives up
// on a document.
func NewDocumentIngestionFailed(documentID, userID, filename, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentIngestionFailed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
			"filename":    filename,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}
