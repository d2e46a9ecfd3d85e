package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxActiveLoans      = 5
	DefaultLoanPeriod   = 14 * 24 * time.Hour
	DefaultHoldDuration = 2 * 24 * time.Hour
)

var (
	FinePerDay    = decimal.RequireFromString("0.50")
	FineThreshold = decimal.RequireFromString("10.00")
)

// DaysOverdue counts whole days between due and returned, rounding partial
// days up. Returns 0 when returned on or before the due date.
func DaysOverdue(due, returned time.Time) int {
	diff := returned.Sub(due)
	if diff <= 0 {
		return 0
	}
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return int(days)
}

// Fine is the charge for returning a loan daysOverdue days late.
func Fine(daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return FinePerDay.Mul(decimal.NewFromInt(int64(daysOverdue)))
}

// ExceedsFineThreshold reports whether total fines block further borrowing.
func ExceedsFineThreshold(total decimal.Decimal) bool {
	return total.GreaterThan(FineThreshold)
}
