package handler

import (
	"context"
	"os"

	"doc-chat-be/internal/pkg/logger"
	internalWS "doc-chat-be/internal/websocket"
	"doc-chat-be/pkg/events"
	pkgNats "doc-chat-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DocumentEventHandler bridges ingestion events from NATS to connected
// websocket clients and serves the /ws upgrade endpoint.
type DocumentEventHandler struct {
	subscriber *pkgNats.Subscriber
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewDocumentEventHandler(subscriber *pkgNats.Subscriber, hub *internalWS.Hub, log logger.ILogger) *DocumentEventHandler {
	return &DocumentEventHandler{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

// Start subscribes to the ingestion event subjects. Safe to call with no
// NATS connection, the push channel just stays quiet.
func (h *DocumentEventHandler) Start() {
	if h.subscriber == nil {
		h.logger.Warn("DocumentEventHandler", "No NATS subscriber, websocket push disabled", nil)
		return
	}

	subjects := map[string]string{
		"events." + events.TypeDocumentIngested:        "ws-document-ingested",
		"events." + events.TypeDocumentIngestionFailed: "ws-document-ingestion-failed",
	}
	for subject, durable := range subjects {
		if err := h.subscriber.Subscribe(subject, durable, h.handleEvent); err != nil {
			h.logger.Error("DocumentEventHandler", "Failed to subscribe", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}
}

func (h *DocumentEventHandler) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userIdStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		// Event without a valid owner cannot be routed, drop it
		return nil
	}

	notice := internalWS.DocumentNotice{
		DocumentId: stringField(payload, "document_id"),
		Filename:   stringField(payload, "filename"),
		Reason:     stringField(payload, "reason"),
	}
	switch event.EventType() {
	case events.TypeDocumentIngested:
		notice.Status = "ingested"
		if n, ok := payload["chunk_count"].(float64); ok {
			notice.ChunkCount = int(n)
		}
	case events.TypeDocumentIngestionFailed:
		notice.Status = "failed"
	default:
		return nil
	}

	h.hub.Send(userId, notice)
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}

func (h *DocumentEventHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/v1/ingestion", h.ServeWs)
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// Browsers cannot set headers on websocket upgrades, so the token is also
// accepted as a query parameter.
func (h *DocumentEventHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("DocumentEventHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("DocumentEventHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userId})
			internalWS.ServeWs(h.hub, conn, userId)
			h.logger.Info("DocumentEventHandler", "WebSocket session ended", map[string]interface{}{"user_id": userId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
