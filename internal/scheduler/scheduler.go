package scheduler

import (
	"context"
	"log/slog"
	"time"

	"media_syncer/internal/domain"
)

// Syncer runs one sync pass for one user.
type Syncer interface {
	Sync(ctx context.Context, user domain.Influencer) (*domain.SyncResult, error)
}

// UserLister returns the users whose feeds get synced.
type UserLister interface {
	ListTracked(ctx context.Context) ([]domain.Influencer, error)
}

type Scheduler struct {
	syncer   Syncer
	users    UserLister
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, users UserLister, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		users:    users,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass syncs every tracked user, one at a time. Sequential execution is
// what serializes same-user sync passes.
func (s *Scheduler) runPass(ctx context.Context) {
	users, err := s.users.ListTracked(ctx)
	if err != nil {
		s.logger.Error("list tracked users failed", "error", err)
		return
	}

	for _, user := range users {
		syncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		if _, err := s.syncer.Sync(syncCtx, user); err != nil {
			s.logger.Error("sync failed", "user", user.Username, "error", err)
		}
		cancel()

		if ctx.Err() != nil {
			return
		}
	}
}
