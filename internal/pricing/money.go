package pricing

import (
	"fmt"
	"math"
)

// Money is an amount in cents.
type Money int64

const unit Money = 100

// Dollars converts whole currency units to Money.
func Dollars(n int64) Money {
	return Money(n) * unit
}

// String formats the amount as "$12.34".
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, int64(m/unit), int64(m%unit))
}

// percentRounded returns pct percent of m rounded to the nearest whole currency unit,
// halves away from zero.
func percentRounded(m Money, pct float64) Money {
	units := float64(m) * pct / 100 / float64(unit)
	return Money(math.Round(units)) * unit
}

func maxMoney(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}
