package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	period := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "VND-000001", Format(SaleConfig(), period, 1))
	assert.Equal(t, "VND-123456", Format(SaleConfig(), period, 123456))
	assert.Equal(t, "VND-1234567", Format(SaleConfig(), period, 1234567))

	withYear := Config{Prefix: "NF", IncludeYear: true}
	assert.Equal(t, "NF-2024-00042", Format(withYear, period, 42))
}

func TestKey(t *testing.T) {
	period := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "VND_c1", Key(SaleConfig(), "c1", period))
	assert.Equal(t, "VND", Key(SaleConfig(), "", period))
	assert.Equal(t, "NF_2024_c1", Key(Config{Prefix: "NF", ResetPeriod: ResetYear}, "c1", period))
	assert.Equal(t, "NF_2024_03", Key(Config{Prefix: "NF", ResetPeriod: ResetMonth}, "", period))
}

func TestParse(t *testing.T) {
	assert.Equal(t, int64(1), Parse("VND-000001"))
	assert.Equal(t, int64(42), Parse("NF-2024-00042"))
	assert.Equal(t, int64(-1), Parse("VND-"))
	assert.Equal(t, int64(-1), Parse("garbage"))
}
