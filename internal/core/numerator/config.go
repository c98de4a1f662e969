// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reset periods for a sequence.
const (
	ResetNever = "never"
	ResetYear  = "year"
	ResetMonth = "month"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "VND")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// SaleConfig numbers sales as VND-000001, never resetting.
func SaleConfig() Config {
	return Config{
		Prefix:      "VND",
		PadWidth:    6,
		ResetPeriod: ResetNever,
	}
}

// Key builds the sequence key. Scope isolates counters, e.g. per company.
func Key(cfg Config, scope string, period time.Time) string {
	key := cfg.Prefix
	switch cfg.ResetPeriod {
	case ResetMonth:
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case ResetYear:
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	}
	if scope != "" {
		key = key + "_" + scope
	}
	return key
}

// Format creates the final number string.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// Parse extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func Parse(formatted string) int64 {
	i := strings.LastIndex(formatted, "-")
	if i < 0 || i == len(formatted)-1 {
		return -1
	}
	n, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
