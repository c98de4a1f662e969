// Package events defines the domain events written to the transactional outbox.
package events

import (
	"context"

	"tudogestao/internal/core/id"
)

// Event types.
const (
	SaleCreated   = "sale.created"
	SaleCancelled = "sale.cancelled"
	SaleDeleted   = "sale.deleted"
	// SalePaid carries the fully populated sale; NFe issuance consumes it.
	SalePaid = "sale.paid"

	StockChanged = "product.stock_changed"
)

// Aggregate types.
const (
	AggregateSale    = "Sale"
	AggregateProduct = "Product"
)

// Event is a fact to be relayed to consumers after commit.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	CompanyID     id.ID
	EventType     string
	Payload       any
}

// Publisher records events. Implementations must write inside the caller's
// transaction so an event exists if and only if its change committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards events.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })
