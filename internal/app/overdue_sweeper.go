package app

import (
	"context"
	"time"

	"github.com/cimillas/shelfwise/internal/clock"
)

type OverdueMarker interface {
	MarkOverdueLoans(ctx context.Context, today time.Time) (int64, error)
}

// OverdueSweeper persists the Overdue label for reporting. Checkout guards
// derive overdue state themselves and never depend on a sweep having run.
type OverdueSweeper struct {
	repo  OverdueMarker
	clock clock.Clock
}

func NewOverdueSweeper(repo OverdueMarker, clk clock.Clock) *OverdueSweeper {
	return &OverdueSweeper{
		repo:  repo,
		clock: clk,
	}
}

// SyncOverdue flips Active loans past their due date to Overdue and reports
// how many rows changed.
func (s *OverdueSweeper) SyncOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdueLoans(ctx, clock.Today(s.clock))
}
