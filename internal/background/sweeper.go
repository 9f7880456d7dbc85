package background

import (
	"context"
	"log/slog"
	"time"
)

// TokenSweepRepository clears expired verification and reset tokens.
type TokenSweepRepository interface {
	ClearExpiredTokens(ctx context.Context) (int64, error)
}

// TokenSweeper periodically clears expired out-of-band tokens from account
// rows. Expired tokens are already unusable; the sweep keeps them from
// lingering in the database.
type TokenSweeper struct {
	repo     TokenSweepRepository
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewTokenSweeper creates a new token sweeper.
func NewTokenSweeper(repo TokenSweepRepository, logger *slog.Logger, interval time.Duration) *TokenSweeper {
	return &TokenSweeper{
		repo:     repo,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. It blocks until Stop is called or the
// context is cancelled.
func (ts *TokenSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	// Run immediately on startup
	ts.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			ts.runSweep(ctx)
		case <-ts.stopCh:
			ts.logger.Info("token sweeper stopped")
			return
		case <-ctx.Done():
			ts.logger.Info("token sweeper context cancelled")
			return
		}
	}
}

func (ts *TokenSweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cleared, err := ts.repo.ClearExpiredTokens(sweepCtx)
	if err != nil {
		ts.logger.Error("failed to clear expired tokens", slog.Any("error", err))
		return
	}

	if cleared > 0 {
		ts.logger.Info("expired token sweep completed", slog.Int64("rows_cleared", cleared))
	}
}

// Stop signals the sweeper to stop.
func (ts *TokenSweeper) Stop() {
	close(ts.stopCh)
}
