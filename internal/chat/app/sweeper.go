package app

import (
	"context"
	"time"

	"food_order_chat_service/internal/chat/repository"
	"food_order_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// Sweeper scheduled maintenance off the hot path: deactivates idle
// conversations and purges messages both parties deleted once the
// retention window passed.
type Sweeper struct {
	msgRepo      repository.MessageRepository
	convRepo     repository.ConversationRepository
	archiveAfter time.Duration
	retention    time.Duration
	interval     time.Duration
}

// NewSweeper create a Sweeper
func NewSweeper(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	archiveAfter, retention, interval time.Duration,
) *Sweeper {
	return &Sweeper{
		msgRepo:      msgRepo,
		convRepo:     convRepo,
		archiveAfter: archiveAfter,
		retention:    retention,
		interval:     interval,
	}
}

// Start run the sweep loop until ctx is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				logger.Log.Info("sweeper stopped")
				return
			}
		}
	}()
}

// Sweep run one archival + retention pass
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now()

	archived, err := s.convRepo.ArchiveInactiveSince(ctx, now.Add(-s.archiveAfter))
	if err != nil {
		logger.Log.Errorf("archive sweep failed:", err)
	} else if archived > 0 {
		logger.Log.Info("archive sweep", zap.Int64("deactivated", archived))
	}

	purged, err := s.msgRepo.PurgeFullyHidden(ctx, now.Add(-s.retention))
	if err != nil {
		logger.Log.Errorf("retention sweep failed:", err)
	} else if purged > 0 {
		logger.Log.Info("retention sweep", zap.Int64("purged", purged))
	}
}
