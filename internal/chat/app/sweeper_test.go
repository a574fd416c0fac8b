package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

func TestSweep(t *testing.T) {
	ctx := context.Background()
	msgRepo := new(MockMessageRepository)
	convRepo := new(MockConversationRepository)
	s := NewSweeper(msgRepo, convRepo, 30*24*time.Hour, 90*24*time.Hour, time.Hour)

	convRepo.On("ArchiveInactiveSince", ctx, mock.MatchedBy(func(at time.Time) bool {
		return time.Since(at) > 29*24*time.Hour
	})).Return(int64(2), nil)
	msgRepo.On("PurgeFullyHidden", ctx, mock.MatchedBy(func(at time.Time) bool {
		return time.Since(at) > 89*24*time.Hour
	})).Return(int64(5), nil)

	s.Sweep(ctx)

	convRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
}
