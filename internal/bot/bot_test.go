package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"failboard/internal/models"
	"failboard/internal/services"
	"failboard/internal/storage/stubs"
)

// newTestBot builds a bot with a nil Telegram API. Outgoing messages
// are dropped; everything else behaves as in production.
func newTestBot(t *testing.T) (*Bot, *stubs.MockDB) {
	t.Helper()
	db := stubs.NewMockDB()
	b := &Bot{
		users:         services.NewUserService(db),
		posts:         services.NewPostService(db),
		votes:         services.NewVoteService(db),
		leaderboard:   services.NewLeaderboardService(db),
		initialStatus: models.StatusDraft,
		logger:        zap.NewNop(),
		states:        make(map[int64]*ConversationState),
	}
	return b, db
}

func commandMessage(chatID int64, username, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID, UserName: username},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(cmd)},
		},
	}
}

func textMessage(chatID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID, UserName: username},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func callback(chatID int64, username, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: chatID, UserName: username},
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: data,
	}
}

func TestFailConversationCreatesDraft(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(commandMessage(100, "alice", "/fail"))
	state, ok := b.state(100)
	require.True(t, ok)
	assert.Equal(t, "fail", state.Command)
	assert.Equal(t, 1, state.Step)

	b.handleMessage(textMessage(100, "alice", "Lost my keys"))
	state, ok = b.state(100)
	require.True(t, ok)
	assert.Equal(t, 2, state.Step)

	b.handleMessage(textMessage(100, "alice", "Again."))
	state, _ = b.state(100)
	assert.Equal(t, -1, state.Step)

	user, err := db.GetUserByChatID(ctx, 100)
	require.NoError(t, err)
	drafts, err := b.posts.Drafts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Lost my keys", drafts[0].Name)
	assert.Equal(t, "Again.", drafts[0].Content)
	assert.Equal(t, models.StatusDraft, drafts[0].Status)
}

func TestFailConversationRejectsLongName(t *testing.T) {
	b, _ := newTestBot(t)

	b.handleMessage(commandMessage(100, "alice", "/fail"))
	b.handleMessage(textMessage(100, "alice", strings.Repeat("x", models.MaxNameLen+1)))

	// Over-long name re-prompts without advancing.
	state, ok := b.state(100)
	require.True(t, ok)
	assert.Equal(t, 1, state.Step)
}

func TestCommandCancelsConversation(t *testing.T) {
	b, _ := newTestBot(t)

	b.handleMessage(commandMessage(100, "alice", "/fail"))
	_, ok := b.state(100)
	require.True(t, ok)

	b.handleMessage(commandMessage(100, "alice", "/help"))
	_, ok = b.state(100)
	assert.False(t, ok)
}

func TestPublishCallback(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	owner, err := b.users.GetOrCreateByChat(ctx, 100, "alice")
	require.NoError(t, err)
	draft, err := b.posts.Create(ctx, owner.ID, "Draft", "Not yet.", models.StatusDraft, nil)
	require.NoError(t, err)

	// Someone else pressing the button must not publish.
	b.handleCallbackQuery(callback(200, "bob", fmt.Sprintf("publish:%d", draft.ID)))
	stored, err := db.GetPost(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)

	b.handleCallbackQuery(callback(100, "alice", fmt.Sprintf("publish:%d", draft.ID)))
	stored, err = db.GetPost(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, stored.Status)
}

func TestVoteCallback(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	owner, err := b.users.GetOrCreateByChat(ctx, 100, "alice")
	require.NoError(t, err)
	post, err := b.posts.Create(ctx, owner.ID, "Tripped", "On stage.", models.StatusPublished, nil)
	require.NoError(t, err)

	b.handleCallbackQuery(callback(200, "bob", fmt.Sprintf("vote:%d:1", post.ID)))
	stored, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Rating)

	// Pressing the button again does not double-count.
	b.handleCallbackQuery(callback(200, "bob", fmt.Sprintf("vote:%d:1", post.ID)))
	stored, err = db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Rating)

	// A second voter does count.
	b.handleCallbackQuery(callback(300, "carol", fmt.Sprintf("vote:%d:1", post.ID)))
	stored, err = db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Rating)
}

func TestVoteCallbackRejectsBadValue(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	owner, err := b.users.GetOrCreateByChat(ctx, 100, "alice")
	require.NoError(t, err)
	post, err := b.posts.Create(ctx, owner.ID, "Tripped", "On stage.", models.StatusPublished, nil)
	require.NoError(t, err)

	b.handleCallbackQuery(callback(200, "bob", fmt.Sprintf("vote:%d:5", post.ID)))
	stored, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Rating)
}

func TestDeleteCallback(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	owner, err := b.users.GetOrCreateByChat(ctx, 100, "alice")
	require.NoError(t, err)
	post, err := b.posts.Create(ctx, owner.ID, "Doomed", "Gone soon.", models.StatusPublished, nil)
	require.NoError(t, err)

	b.handleCallbackQuery(callback(200, "bob", fmt.Sprintf("delete:%d", post.ID)))
	_, err = db.GetPost(ctx, post.ID)
	require.NoError(t, err, "a stranger must not be able to delete the post")

	b.handleCallbackQuery(callback(100, "alice", fmt.Sprintf("delete:%d", post.ID)))
	_, err = db.GetPost(ctx, post.ID)
	assert.Error(t, err)
}

func TestResolveUserFallsBackToFirstName(t *testing.T) {
	b, db := newTestBot(t)
	ctx := context.Background()

	user, err := b.resolveUser(ctx, &tgbotapi.User{ID: 100, FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)

	stored, err := db.GetUserByChatID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}
