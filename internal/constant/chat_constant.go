package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Vector collections. Framework material is shared, user documents are
	// scoped per owner via chunk metadata.
	CollectionFrameworks    = "frameworks"
	CollectionUserDocuments = "user_documents"

	// PlannerMarker flags a planner definition inside a model response.
	// Everything after the marker is captured as the session's planner text.
	PlannerMarker = "PLANNER DEFINED:"
)
