// Package types holds value types shared across the domain.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for monetary values (NUMERIC(15,2)).
const MoneyScale int32 = 2

// Money is a monetary amount in BRL.
type Money = decimal.Decimal

// NewMoneyFromString parses a decimal string such as "1320.00".
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses s and panics on error. Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return decimal.New(cents, -MoneyScale)
}

func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds half away from zero to cents.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// LineTotal returns unitPrice × quantity.
func LineTotal(unitPrice Money, quantity int) Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Split divides total into n parts rounded down to cents. The last part
// absorbs the remainder so the parts always sum to total.
func Split(total Money, n int) []Money {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	part := total.Div(count).RoundDown(MoneyScale)

	parts := make([]Money, n)
	for i := 0; i < n-1; i++ {
		parts[i] = part
	}
	parts[n-1] = total.Sub(part.Mul(decimal.NewFromInt(int64(n - 1))))
	return parts
}
