package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/id"
	"tudogestao/internal/infrastructure/storage/postgres"
	"tudogestao/pkg/logger"
)

func TestStreamValues(t *testing.T) {
	msg := &postgres.OutboxMessage{
		ID:            id.New(),
		CompanyID:     id.New(),
		AggregateType: "Sale",
		AggregateID:   id.New(),
		EventType:     "SalePaid",
		Payload:       []byte(`{"number":"VND-000001"}`),
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	v := streamValues(msg)
	assert.Equal(t, "SalePaid", v["event_type"])
	assert.Equal(t, msg.CompanyID.String(), v["company_id"])
	assert.Equal(t, msg.AggregateID.String(), v["aggregate_id"])
	assert.Equal(t, `{"number":"VND-000001"}`, v["payload"])
	assert.Equal(t, "2024-03-01T12:00:00.000Z", v["created_at"])
}

func TestLogHandler(t *testing.T) {
	h := NewLogHandler(logger.NewNop())
	require.NoError(t, h.Handle(context.Background(), &postgres.OutboxMessage{EventType: "SaleCreated"}))
}
