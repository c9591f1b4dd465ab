package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failboard/internal/models"
	"failboard/internal/storage/stubs"
	"failboard/internal/utils"
)

// clearLeaderboardCache drops the shared cache entry so tests do not
// see each other's results.
func clearLeaderboardCache(limit int) {
	utils.GetCache().Delete(fmt.Sprintf("leaderboard:top:%d", limit))
}

func seedRatedPost(t *testing.T, db *stubs.MockDB, userID uint, rating int, status models.PostStatus) {
	t.Helper()
	post := &models.Post{
		UserID:  userID,
		Name:    "seed",
		Content: "seed",
		Rating:  rating,
		Status:  status,
	}
	require.NoError(t, db.CreatePost(context.Background(), post))
}

func TestTopUsersOrdering(t *testing.T) {
	clearLeaderboardCache(10)
	db := stubs.NewMockDB()
	svc := NewLeaderboardService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	carol := createTestUser(t, db, "carol", models.RoleUser)

	seedRatedPost(t, db, alice.ID, 3, models.StatusPublished)
	seedRatedPost(t, db, alice.ID, 2, models.StatusPublished)
	seedRatedPost(t, db, bob.ID, 7, models.StatusPublished)
	seedRatedPost(t, db, carol.ID, 1, models.StatusPublished)

	top, err := svc.TopUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, 7, top[0].TotalRating)
	assert.Equal(t, "alice", top[1].Username)
	assert.Equal(t, 5, top[1].TotalRating)
	assert.Equal(t, "carol", top[2].Username)
}

func TestTopUsersPublishedOnly(t *testing.T) {
	clearLeaderboardCache(10)
	db := stubs.NewMockDB()
	svc := NewLeaderboardService(db)

	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	seedRatedPost(t, db, alice.ID, 2, models.StatusPublished)
	// Bob's points are all on drafts and posts under review, so he is
	// not ranked at all.
	seedRatedPost(t, db, bob.ID, 100, models.StatusDraft)
	seedRatedPost(t, db, bob.ID, 100, models.StatusChecking)

	top, err := svc.TopUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "alice", top[0].Username)
}

func TestTopUsersTieBreak(t *testing.T) {
	clearLeaderboardCache(10)
	db := stubs.NewMockDB()
	svc := NewLeaderboardService(db)

	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	seedRatedPost(t, db, alice.ID, 4, models.StatusPublished)
	seedRatedPost(t, db, bob.ID, 4, models.StatusPublished)

	top, err := svc.TopUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	// Equal totals rank by user id, oldest account first.
	assert.Equal(t, alice.ID, top[0].UserID)
	assert.Equal(t, bob.ID, top[1].UserID)
}

func TestTopUsersLimit(t *testing.T) {
	clearLeaderboardCache(2)
	db := stubs.NewMockDB()
	svc := NewLeaderboardService(db)

	for i := 0; i < 5; i++ {
		user := createTestUser(t, db, fmt.Sprintf("user%d", i), models.RoleUser)
		seedRatedPost(t, db, user.ID, i, models.StatusPublished)
	}

	top, err := svc.TopUsers(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTopUsersCached(t *testing.T) {
	clearLeaderboardCache(3)
	db := stubs.NewMockDB()
	svc := NewLeaderboardService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", models.RoleUser)
	seedRatedPost(t, db, alice.ID, 1, models.StatusPublished)

	top, err := svc.TopUsers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)

	// New points land after the first read; the cached board does not
	// move until the TTL runs out.
	seedRatedPost(t, db, alice.ID, 9, models.StatusPublished)

	top, err = svc.TopUsers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].TotalRating)

	clearLeaderboardCache(3)
	top, err = svc.TopUsers(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, top[0].TotalRating)
}
