package numerator

import (
	"context"
	"time"
)

// Generator allocates sequential document numbers.
//
// Numbers are strict: implementations allocate inside the caller's
// transaction, so a rolled back transaction releases its number and the
// sequence never has gaps.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, scope string, period time.Time) (string, error)
}

// MockGenerator is a test implementation of Generator.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, scope string, period time.Time) (string, error)
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, scope string, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, scope, period)
	}
	return Format(cfg, period, 1), nil
}

var _ Generator = (*MockGenerator)(nil)
