package bootstrap

import (
	"context"
	"log"

	"doc-chat-be/internal/config"
	"doc-chat-be/internal/controller"
	"doc-chat-be/internal/handler"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/pkg/mailer"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/internal/repository/redisstore"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/internal/service"
	"doc-chat-be/internal/websocket"
	"doc-chat-be/pkg/chat/session"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/llm/factory"
	ragcontext "doc-chat-be/pkg/rag/context"
	"doc-chat-be/pkg/rag/retrieval"

	pkgNats "doc-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	DocumentService service.IDocumentService

	// WebSockets
	DocumentEventHandler *handler.DocumentEventHandler
	WebSocketHub         *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey, "")
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Session storage: Redis is authoritative, the in-memory repo catches
	// writes when Redis is unreachable
	sessionBackend := redisstore.NewSessionRepository(rdb)
	sessionFallback := memory.NewSessionRepository()
	sessionStore := session.NewStore(sessionBackend, sessionFallback, sysLogger)

	// Retrieval pipeline
	retrievalClient := retrieval.NewVectorClient(embeddingProvider, uowFactory, cfg.Retrieval.SimilarityThreshold)
	assembler := ragcontext.NewAssembler(retrievalClient, ragcontext.Config{
		FileLimit:    cfg.Retrieval.FileLimit,
		GeneralLimit: cfg.Retrieval.GeneralLimit,
		ReducedLimit: cfg.Retrieval.ReducedLimit,
	}, sysLogger)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Chat.IngestTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.IngestTopicName,
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Chat.ChunkSize,
		cfg.Chat.ChunkOverlap,
	)

	authService := service.NewAuthService(uowFactory, emailService, cfg.App.JwtSecret)
	documentService := service.NewDocumentService(uowFactory, publisherService, embeddingProvider, sysLogger)
	chatService := service.NewChatService(sessionStore, assembler, llmProvider, cfg.Chat.MaxSteps)

	// 6. Event bridge (NATS -> websocket clients)
	eventHandler := handler.NewDocumentEventHandler(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		eventHandler.Start()
	}

	return &Container{
		AuthController:     controller.NewAuthController(authService),
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),

		ConsumerService: consumerService,
		DocumentService: documentService,

		DocumentEventHandler: eventHandler,
		WebSocketHub:         wsHub,
	}
}
