package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain/events"
	"tudogestao/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// MaxOutboxRetries is the number of failed deliveries after which a message
// is marked failed and becomes eligible for the DLQ.
const MaxOutboxRetries = 5

// OutboxMessage is a row of sys_outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id" json:"id"`
	CompanyID     id.ID        `db:"company_id" json:"companyId"`
	AggregateType string       `db:"aggregate_type" json:"aggregateType"`
	AggregateID   id.ID        `db:"aggregate_id" json:"aggregateId"`
	EventType     string       `db:"event_type" json:"eventType"`
	Payload       []byte       `db:"payload" json:"payload"`
	Status        OutboxStatus `db:"status" json:"status"`
	RetryCount    int          `db:"retry_count" json:"retryCount"`
	LastError     *string      `db:"last_error" json:"lastError,omitempty"`
	NextRetryAt   *time.Time   `db:"next_retry_at" json:"nextRetryAt,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	PublishedAt   *time.Time   `db:"published_at" json:"publishedAt,omitempty"`
}

var _ events.Publisher = (*OutboxPublisher)(nil)

// OutboxPublisher writes domain events to sys_outbox.
type OutboxPublisher struct {
	txManager *TxManager
}

func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish implements events.Publisher. It must run inside the transaction
// of the change it describes.
func (p *OutboxPublisher) Publish(ctx context.Context, event events.Event) error {
	tx := p.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	sql, args, err := psql().Insert("sys_outbox").
		Columns("id", "company_id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		Values(id.New(), event.CompanyID, event.AggregateType, event.AggregateID, event.EventType, payload,
			OutboxStatusPending, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler delivers outbox messages to a broker.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxHandlerFunc adapts a function to OutboxHandler.
type OutboxHandlerFunc func(ctx context.Context, msg *OutboxMessage) error

func (f OutboxHandlerFunc) Handle(ctx context.Context, msg *OutboxMessage) error {
	return f(ctx, msg)
}

// OutboxRelay reads pending messages and hands them to the handler.
// Used by the background worker.
type OutboxRelay struct {
	txManager *TxManager
	batchSize int
	handler   OutboxHandler
}

func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{txManager: txManager, batchSize: batchSize, handler: handler}
}

// ProcessBatch delivers one batch of pending messages and returns how many
// succeeded. Rows stay locked (SKIP LOCKED) until the batch finishes, so
// several workers can run side by side.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var messages []*OutboxMessage
		err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, `
			SELECT id, company_id, aggregate_type, aggregate_id, event_type, payload, status,
			       retry_count, last_error, next_retry_at, created_at, published_at
			FROM sys_outbox
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, OutboxStatusPending, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			ok, err := r.processMessage(ctx, msg)
			if err != nil {
				return err
			}
			if ok {
				processed++
			}
		}
		return nil
	})
	return processed, err
}

// processMessage returns false when delivery failed and was scheduled for retry.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	if err := r.handler.Handle(ctx, msg); err != nil {
		logger.Warn(ctx, "outbox delivery failed",
			"message_id", msg.ID.String(),
			"event_type", msg.EventType,
			"retry", msg.RetryCount+1,
			"error", err,
		)

		nextRetry := time.Now().UTC().Add(backoff(msg.RetryCount))
		_, updateErr := q.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END
			WHERE id = $5
		`, err.Error(), nextRetry, MaxOutboxRetries, OutboxStatusFailed, msg.ID)
		if updateErr != nil {
			return false, fmt.Errorf("update failed message: %w", updateErr)
		}
		return false, nil
	}

	_, err := q.Exec(ctx, `
		UPDATE sys_outbox SET status = $1, published_at = $2 WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), msg.ID)
	if err != nil {
		return false, fmt.Errorf("mark message published: %w", err)
	}
	return true, nil
}

// backoff grows linearly: 1m, 2m, 3m...
func backoff(retryCount int) time.Duration {
	return time.Duration(retryCount+1) * time.Minute
}

// MoveToDLQ moves failed messages to sys_outbox_dlq.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1 AND retry_count >= $2
			RETURNING *
		)
		INSERT INTO sys_outbox_dlq
		SELECT *, NOW() AS failed_at, last_error AS failure_reason FROM moved
	`, OutboxStatusFailed, MaxOutboxRetries)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgePublished deletes published messages older than age.
func (r *OutboxRelay) PurgePublished(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_outbox WHERE status = $1 AND published_at < $2
	`, OutboxStatusPublished, time.Now().UTC().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("purge published messages: %w", err)
	}
	return tag.RowsAffected(), nil
}
