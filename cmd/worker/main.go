// Package main is the entry point for the SwiftPOS background worker.
// It relays outbox events into the audit trail and keeps customer and
// supplier badges current.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"swiftpos/internal/core/entity"
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/domain/catalogs/supplier"
	"swiftpos/internal/infrastructure/storage/postgres"
	"swiftpos/internal/infrastructure/storage/postgres/catalog_repo"
	"swiftpos/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting swiftpos worker")

	dbPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	txManager := postgres.NewTxManager(dbPool)

	customerService := customer.NewService(catalog_repo.NewCustomerRepo(txManager), txManager)
	supplierService := supplier.NewService(catalog_repo.NewSupplierRepo(txManager), txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	relay := postgres.NewOutboxRelay(dbPool.Unwrap(), 100, &auditRecorder{log: log, audit: auditService})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runRelay(ctx, relay, log)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runBadgeRefresh(ctx, customerService, supplierService, log)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// runRelay drains the outbox on a short tick.
func runRelay(ctx context.Context, relay *postgres.OutboxRelay, log *logger.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := relay.ProcessBatch(ctx)
			if err != nil {
				log.Errorw("outbox batch failed", "error", err)
				continue
			}
			if processed > 0 {
				log.Infow("outbox batch processed", "count", processed)
			}
		}
	}
}

// runBadgeRefresh recomputes purchase and supply volume badges.
func runBadgeRefresh(ctx context.Context, customers *customer.Service, suppliers *supplier.Service, log *logger.Logger) {
	interval := getEnvDuration("BADGE_REFRESH_INTERVAL", time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		if err := customers.UpdateBadges(ctx); err != nil {
			log.Errorw("customer badge refresh failed", "error", err)
		}
		if err := suppliers.UpdateBadges(ctx); err != nil {
			log.Errorw("supplier badge refresh failed", "error", err)
		}
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// auditRecorder is the outbox handler: every domain event is logged and
// written to the audit trail. Webhooks or a broker can replace it
// without touching the relay.
type auditRecorder struct {
	log   *logger.Logger
	audit *postgres.AuditService
}

func (h *auditRecorder) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	var payload any
	if len(msg.Payload) > 0 {
		_ = json.Unmarshal(msg.Payload, &payload)
	}
	h.log.Infow("domain event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"payload", payload,
	)

	return h.audit.Log(ctx, postgres.AuditEntry{
		EntityType: msg.AggregateType,
		EntityID:   msg.AggregateID,
		Action:     auditAction(msg.EventType),
		Changes:    msg.Payload,
		Metadata: entity.Attributes{
			"source":     "outbox",
			"event_type": msg.EventType,
		},
	})
}

// auditAction maps event names like SaleCommitted or BatchDeleted onto
// audit actions.
func auditAction(eventType string) postgres.AuditAction {
	switch {
	case strings.HasSuffix(eventType, "Committed"):
		return postgres.AuditActionCommit
	case strings.HasSuffix(eventType, "Created"):
		return postgres.AuditActionCreate
	case strings.HasSuffix(eventType, "Deleted"):
		return postgres.AuditActionDelete
	default:
		return postgres.AuditActionUpdate
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
