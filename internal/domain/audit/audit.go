// Package audit records who did what to which entity.
//
// Audit writes are fire-and-forget: Recorder hands the entry to its sink on
// a detached goroutine and never reports sink failures to the caller.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/tenant"
	"tudogestao/pkg/logger"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionCancel       Action = "cancel"
	ActionStatusChange Action = "status_change"
	ActionStockUpdate  Action = "stock_update"
	ActionStockAdjust  Action = "stock_adjust"
	ActionPaid         Action = "paid"
)

// Entry is a single audit record.
type Entry struct {
	ID         id.ID          `json:"id"`
	CompanyID  id.ID          `json:"companyId"`
	UserID     string         `json:"userId"`
	UserEmail  string         `json:"userEmail,omitempty"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   id.ID          `json:"entityId"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Sink persists audit entries.
type Sink interface {
	Write(ctx context.Context, entry Entry) error
}

// Reader returns the history of one entity, newest first.
type Reader interface {
	History(ctx context.Context, companyID id.ID, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

const defaultTimeout = 5 * time.Second

// Recorder dispatches audit entries asynchronously.
type Recorder struct {
	sink    Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder. A nil sink makes Record a no-op.
func NewRecorder(sink Sink, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Recorder{sink: sink, timeout: timeout}
}

// Record writes an entry in the background. User and company are taken from ctx.
// Call it after the audited transaction has committed.
func (r *Recorder) Record(ctx context.Context, action Action, entityType string, entityID id.ID, details map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	entry := Entry{
		ID:         id.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		entry.UserID = user.UserID
		entry.UserEmail = user.Email
	}
	if companyID, err := tenant.CompanyID(ctx); err == nil {
		entry.CompanyID = companyID
	}

	// the entry must outlive the request
	bg := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(bg, "audit sink panicked", "panic", fmt.Sprint(rec), "entity_type", entityType)
			}
		}()

		writeCtx, cancel := context.WithTimeout(bg, r.timeout)
		defer cancel()

		if err := r.sink.Write(writeCtx, entry); err != nil {
			logger.Warn(bg, "audit write failed",
				"error", err,
				"action", string(action),
				"entity_type", entityType,
				"entity_id", entityID.String(),
			)
		}
	}()
}

// Wait blocks until pending writes finish or ctx is done.
func (r *Recorder) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Diff calculates the difference between old and new entity states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if fmt.Sprint(oldVal) != fmt.Sprint(newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}
