// Package messaging delivers outbox messages to downstream consumers
// (NFe issuance, notifications).
package messaging

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"tudogestao/internal/infrastructure/storage/postgres"
	"tudogestao/pkg/logger"
)

// StreamPublisher appends outbox messages to a Redis Stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewStreamPublisher(addr, password string, db int, stream string) *StreamPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &StreamPublisher{client: client, stream: stream, maxLen: 100_000}
}

func (p *StreamPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

// Handle implements postgres.OutboxHandler.
func (p *StreamPublisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: streamValues(msg),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func streamValues(msg *postgres.OutboxMessage) map[string]any {
	return map[string]any{
		"message_id":     msg.ID.String(),
		"event_type":     msg.EventType,
		"aggregate_type": msg.AggregateType,
		"aggregate_id":   msg.AggregateID.String(),
		"company_id":     msg.CompanyID.String(),
		"payload":        string(msg.Payload),
		"created_at":     msg.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// LogHandler writes outbox messages to the structured log. It stands in
// for the stream when Redis is not configured.
type LogHandler struct {
	log *logger.Logger
}

func NewLogHandler(log *logger.Logger) *LogHandler {
	return &LogHandler{log: log.WithComponent("outbox")}
}

func (h *LogHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.WithContext(ctx).Infow("event relayed",
		"event_type", msg.EventType,
		"aggregate_id", msg.AggregateID,
		"company_id", msg.CompanyID,
		"payload_bytes", len(msg.Payload),
	)
	return nil
}

var (
	_ postgres.OutboxHandler = (*StreamPublisher)(nil)
	_ postgres.OutboxHandler = (*LogHandler)(nil)
)
