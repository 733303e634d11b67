package main

import (
	"context"
	"flag"
	"log"
	"time"

	"doc-chat-be/internal/config"
	"doc-chat-be/internal/repository/redisstore"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	days := flag.Int("days", cfg.Chat.SessionMaxAgeDays, "delete sessions idle longer than this many days")
	dryRun := flag.Bool("dry-run", false, "report what would be deleted without deleting")
	flag.Parse()

	if *days <= 0 {
		log.Fatal("days must be positive")
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		color.Red("Cannot reach Redis at %s: %v", cfg.App.RedisURL, err)
		log.Fatal(err)
	}

	maxAge := time.Duration(*days) * 24 * time.Hour
	color.Cyan("Cleaning up chat sessions idle for more than %d days", *days)

	repo := redisstore.NewSessionRepository(rdb)

	if *dryRun {
		stale, err := repo.CountOlderThan(ctx, maxAge)
		if err != nil {
			color.Red("Scan failed: %v", err)
			log.Fatal(err)
		}
		color.Yellow("Dry run: %d sessions would be deleted", stale)
		return
	}

	deleted, err := repo.DeleteOlderThan(ctx, maxAge)
	if err != nil {
		color.Red("Cleanup failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Deleted %d stale sessions", deleted)
}
