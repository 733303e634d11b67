package main

import (
	"context"
	"log"

	"doc-chat-be/internal/bootstrap"
	"doc-chat-be/internal/config"
	"doc-chat-be/internal/server"
	"doc-chat-be/internal/tracer"
	"doc-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Migrate(gormDB); err != nil {
		log.Panicf("Unable to run migrations: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Seed the shared framework corpus (no-op once populated)
	if err := container.DocumentService.SeedFrameworks(
		context.Background(),
		cfg.Chat.FrameworkDocsDir,
		cfg.Chat.ChunkSize,
		cfg.Chat.ChunkOverlap,
	); err != nil {
		log.Printf("Framework seeding failed: %v", err)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
