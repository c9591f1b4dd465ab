package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failboard/internal/models"
	"failboard/internal/storage"
	"failboard/internal/storage/stubs"
)

func createTestUser(t *testing.T, db *stubs.MockDB, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Role: role}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func TestCreatePost(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)

	post, err := svc.Create(ctx, owner.ID, "Lost my keys", "Again.", models.StatusDraft, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, 0, post.Rating)
	assert.Equal(t, owner.ID, post.UserID)

	stored, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lost my keys", stored.Name)
}

func TestCreatePostInvalidStatus(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	owner := createTestUser(t, db, "alice", models.RoleUser)

	_, err := svc.Create(context.Background(), owner.ID, "Oops", "Oops.", models.PostStatus("archived"), nil)
	assert.Error(t, err)
}

func TestCreatePostWithTags(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)

	post, err := svc.Create(ctx, owner.ID, "Burnt dinner", "Smoke everywhere.", models.StatusPublished, []string{"kitchen", "fire"})
	require.NoError(t, err)

	stored, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tags, 2)
	assert.Equal(t, "kitchen", stored.Tags[0].Name)
	assert.Equal(t, "fire", stored.Tags[1].Name)
}

func TestUpdateContentOwnership(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)
	stranger := createTestUser(t, db, "bob", models.RoleUser)
	moderator := createTestUser(t, db, "mod", models.RoleModerator)

	post, err := svc.Create(ctx, owner.ID, "Old name", "Old content.", models.StatusPublished, nil)
	require.NoError(t, err)

	// Stranger is rejected.
	_, err = svc.UpdateContent(ctx, post.ID, "Hacked", "Hacked.", stranger)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Owner may edit.
	updated, err := svc.UpdateContent(ctx, post.ID, "New name", "New content.", owner)
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, models.StatusPublished, updated.Status)

	// So may a moderator.
	updated, err = svc.UpdateContent(ctx, post.ID, "Moderated", "Cleaned up.", moderator)
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Name)
}

func TestUpdateContentMissingPost(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	owner := createTestUser(t, db, "alice", models.RoleUser)

	_, err := svc.UpdateContent(context.Background(), 42, "Name", "Content.", owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)

	post, err := svc.Create(ctx, owner.ID, "Pending", "Waiting.", models.StatusChecking, nil)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, post.ID, models.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusPublished, updated.Status)

	// Any transition is allowed, including straight back to draft.
	updated, err = svc.SetStatus(ctx, post.ID, models.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, updated.Status)
}

func TestSetStatusMissingPost(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)

	post, err := svc.SetStatus(context.Background(), 42, models.StatusPublished)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestToDraft(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)

	post, err := svc.Create(ctx, owner.ID, "Live", "Published.", models.StatusPublished, nil)
	require.NoError(t, err)

	ok, err := svc.ToDraft(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)

	ok, err = svc.ToDraft(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublishDraft(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)
	stranger := createTestUser(t, db, "bob", models.RoleUser)

	draft, err := svc.Create(ctx, owner.ID, "Draft", "Not yet.", models.StatusDraft, nil)
	require.NoError(t, err)

	ok, err := svc.PublishDraft(ctx, draft.ID, stranger.ID)
	require.NoError(t, err)
	assert.False(t, ok, "someone else's draft must not publish")

	ok, err = svc.PublishDraft(ctx, draft.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := db.GetPost(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, stored.Status)

	// Already published, so a second publish does nothing.
	ok, err = svc.PublishDraft(ctx, draft.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.PublishDraft(ctx, 42, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePost(t *testing.T) {
	db := stubs.NewMockDB()
	posts := NewPostService(db)
	votes := NewVoteService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)
	stranger := createTestUser(t, db, "bob", models.RoleUser)

	post, err := posts.Create(ctx, owner.ID, "Doomed", "Gone soon.", models.StatusPublished, nil)
	require.NoError(t, err)

	counted, err := votes.Cast(ctx, post.ID, stranger.ID, 1)
	require.NoError(t, err)
	require.True(t, counted)

	// Not the owner: reported as not found, post survives.
	ok, err := posts.Delete(ctx, post.ID, stranger.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	stored, err := posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)

	ok, err = posts.Delete(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err = posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// Votes go with the post.
	_, err = db.GetVote(ctx, post.ID, stranger.ID)
	assert.Error(t, err)

	// Deleting again is a plain false, not an error.
	ok, err = posts.Delete(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDraftsAndPublishedByUser(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)
	other := createTestUser(t, db, "bob", models.RoleUser)

	_, err := svc.Create(ctx, owner.ID, "Draft one", "d1", models.StatusDraft, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, "Published one", "p1", models.StatusPublished, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, "Bob draft", "bd", models.StatusDraft, nil)
	require.NoError(t, err)

	drafts, err := svc.Drafts(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Draft one", drafts[0].Name)

	published, err := svc.PublishedByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Published one", published[0].Name)
}

func TestListFilters(t *testing.T) {
	db := stubs.NewMockDB()
	svc := NewPostService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice", models.RoleUser)

	_, err := svc.Create(ctx, owner.ID, "Lost my keys", "Again.", models.StatusPublished, []string{"keys"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, "Missed the bus", "Overslept.", models.StatusPublished, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, "Secret draft", "Hidden.", models.StatusDraft, nil)
	require.NoError(t, err)

	posts, total, err := svc.List(ctx, storage.PostFilter{Status: models.StatusPublished})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, posts, 2)

	posts, total, err = svc.List(ctx, storage.PostFilter{Search: "keys"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Lost my keys", posts[0].Name)

	posts, total, err = svc.List(ctx, storage.PostFilter{Tags: []string{"keys"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Lost my keys", posts[0].Name)
}
