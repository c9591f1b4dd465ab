package services

import (
	"context"
	"fmt"
	"time"

	"failboard/internal/storage"
	"failboard/internal/utils"
)

const leaderboardTTL = 1 * time.Minute

// LeaderboardService ranks users by the total rating of their
// published posts. Results are cached briefly since the board is read
// far more often than votes land.
type LeaderboardService struct {
	store storage.Storage
}

func NewLeaderboardService(store storage.Storage) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// TopUsers returns at most limit users ordered by summed rating
// descending, ties broken by user id ascending. Users without
// published posts are not ranked.
func (s *LeaderboardService) TopUsers(ctx context.Context, limit int) ([]storage.UserRating, error) {
	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if rows, ok := cached.([]storage.UserRating); ok {
			return rows, nil
		}
	}

	rows, err := s.store.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	utils.GetCache().Set(cacheKey, rows, leaderboardTTL)
	return rows, nil
}
