package main

import (
	"context"
	"log/slog"

	"quote-engine/pkg/config"
	"quote-engine/pkg/database"
	"quote-engine/pkg/mq"
	"quote-engine/pkg/observability"

	"time"
)

// The publisher drains the quote outbox into the change feed. An event is
// deleted only after a successful publish, so a crash in between republishes
// it; the handlers are built for at-least-once delivery.
func main() {
	logger := observability.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(".")
	if err != nil {
		logger.Error("cannot load config", "error", err)
		return
	}

	dbClient, err := database.New(context.Background(), cfg.PostgresConn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}
	defer dbClient.Close()

	mqClient, err := mq.New(cfg.RabbitURL)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer mqClient.Close()

	// Ensure topology exists; safe if already declared
	if err := mqClient.SetupTopology(); err != nil {
		logger.Error("failed to setup rabbitmq topology", "error", err)
		return
	}

	ctx := context.Background()
	ticker := time.NewTicker(cfg.OutboxPollInterval)
	for range ticker.C {
		processOutbox(ctx, dbClient, mqClient, logger, cfg.OutboxBatchSize)
	}
}

func processOutbox(ctx context.Context, db *database.Client, mqClient *mq.Client, logger *slog.Logger, batchSize int) {
	events, err := db.FetchOutboxEvents(ctx, batchSize)
	if err != nil {
		logger.Error("failed to fetch outbox events", "error", err)
		return
	}
	for _, e := range events {
		if err := mqClient.Publish(ctx, e.EventType, e.Payload); err != nil {
			logger.Error("failed to publish event from outbox", "error", err, "event_id", e.ID, "event_type", e.EventType)
			continue
		}

		if err := db.DeleteOutboxEvent(ctx, e.ID); err != nil {
			logger.Error("failed to delete outbox event after publish", "error", err, "event_id", e.ID)
			continue
		}
		logger.Info("published event from outbox", "event_type", e.EventType, "quote_id", e.QuoteID)
	}
}
