package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"quote-engine/pkg/config"
	"quote-engine/pkg/database"
	"quote-engine/pkg/engine"
	"quote-engine/pkg/mq"
	"quote-engine/pkg/notify"
	"quote-engine/pkg/observability"
	"quote-engine/pkg/quote"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	eng    *engine.Engine
	logger *slog.Logger

	errMissingPayload = errors.New("event payload missing quote body")
)

func main() {
	logger = observability.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("cannot load config", "error", err)
		return
	}

	dbClient, err := database.New(context.Background(), cfg.PostgresConn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		return
	}
	defer dbClient.Close()

	mqClient, err := mq.New(cfg.RabbitURL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer mqClient.Close()

	if err := mqClient.SetupTopology(); err != nil {
		slog.Error("failed to setup rabbitmq topology", "error", err)
		return
	}

	dispatcher := notify.NewDispatcher(dbClient, logger)
	eng = engine.New(dbClient, dispatcher, cfg.QuotaMax, cfg.QuotaWarnThreshold, logger)

	observability.StartMetricsServer(cfg.MetricsAddress)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	for _, t := range quote.EventTypes() {
		wg.Add(1)
		go startConsumer(ctx, &wg, mqClient, t, cfg.WorkerConcurrency)
	}

	slog.Info("all consumers started. waiting for quote events...")

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutdown signal received, stopping consumers...")
	cancel()
	wg.Wait()
	slog.Info("all consumers stopped gracefully")
}

func startConsumer(ctx context.Context, wg *sync.WaitGroup, mqClient *mq.Client, eventType quote.EventType, concurrency int) {
	defer wg.Done()

	deliveryChan, err := mqClient.ConsumeEvents(eventType)
	if err != nil {
		logger.Error("failed to start consuming events", "type", string(eventType), "error", err)
		return
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	logger.Info("consumer started", "type", string(eventType), "concurrency", concurrency)

	innerWg := sync.WaitGroup{}
	innerWg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer innerWg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-deliveryChan:
					handleMessage(msg)
				}
			}
		}()
	}

	<-ctx.Done()
	innerWg.Wait()
	logger.Info("consumer shutting down", "type", string(eventType))
}

func handleMessage(msg amqp.Delivery) {
	var evt quote.Event
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		logger.Error("malformed event payload, dead-lettering", "error", err)
		observability.EventsProcessed.WithLabelValues("unknown", "malformed").Inc()
		msg.Nack(false, false) // replaying cannot fix a bad payload
		return
	}

	l := logger.With("event_type", string(evt.Type))
	ctx := context.Background()

	timer := time.Now()
	var err error
	switch evt.Type {
	case quote.EventCreated:
		if evt.Quote == nil {
			err = errMissingPayload
		} else {
			err = eng.HandleQuoteCreated(ctx, evt.Quote)
		}
	case quote.EventDeleted:
		if evt.Quote == nil {
			err = errMissingPayload
		} else {
			err = eng.HandleQuoteDeleted(ctx, evt.Quote)
		}
	case quote.EventUpdated:
		if evt.Before == nil || evt.After == nil {
			err = errMissingPayload
		} else {
			err = eng.HandleQuoteUpdated(ctx, evt.Before, evt.After)
		}
	default:
		l.Error("unknown event type, dead-lettering")
		observability.EventsProcessed.WithLabelValues(string(evt.Type), "malformed").Inc()
		msg.Nack(false, false)
		return
	}
	observability.HandleDuration.WithLabelValues(string(evt.Type)).Observe(time.Since(timer).Seconds())

	if err == errMissingPayload {
		l.Error("event payload missing quote body, dead-lettering")
		observability.EventsProcessed.WithLabelValues(string(evt.Type), "malformed").Inc()
		msg.Nack(false, false)
		return
	}
	if err != nil {
		// Transient store failure: requeue so the platform redelivers. The
		// counter transaction either committed or it did not, so a replay is
		// safe.
		l.Error("event handling failed, requeueing", "error", err)
		observability.EventsProcessed.WithLabelValues(string(evt.Type), "requeued").Inc()
		msg.Nack(false, true)
		return
	}

	observability.EventsProcessed.WithLabelValues(string(evt.Type), "handled").Inc()
	msg.Ack(false)
}
