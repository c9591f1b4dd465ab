package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"failboard/internal/models"
)

// handleCallbackQuery processes inline keyboard button presses.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()
	user, err := b.resolveUser(ctx, query.From)
	if err != nil {
		b.logger.Error("Failed to resolve user", zap.Error(err), zap.Int64("chat_id", query.From.ID))
		b.answerCallback(query.ID, "Something went wrong.", true)
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "read:"):
		b.handleReadCallback(ctx, query)
	case strings.HasPrefix(data, "vote:"):
		b.handleVoteCallback(ctx, query, user)
	case strings.HasPrefix(data, "publish:"):
		b.handlePublishCallback(ctx, query, user)
	case strings.HasPrefix(data, "delete:"):
		b.handleDeleteCallback(ctx, query, user)
	default:
		b.answerCallback(query.ID, "", false)
	}
}

// handleReadCallback shows one fail with voting buttons.
func (b *Bot) handleReadCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	id := parseID(strings.TrimPrefix(query.Data, "read:"))
	post, err := b.posts.Get(ctx, id)
	if err != nil || post == nil {
		b.answerCallback(query.ID, "Fail not found!", true)
		return
	}
	b.answerCallback(query.ID, "", false)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👎 -1", fmt.Sprintf("vote:%d:-1", post.ID)),
			tgbotapi.NewInlineKeyboardButtonData("👍 +1", fmt.Sprintf("vote:%d:1", post.ID)),
		),
	)

	text := fmt.Sprintf("🤦 A fail by %s:\n\nName: %s\nDescription: %s\nCurrent rating: %d",
		post.User.Username, post.Name, post.Content, post.Rating)

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		query.Message.Chat.ID, query.Message.MessageID, text, keyboard)
	b.sendMessage(edit)
}

// handleVoteCallback casts one vote; "already voted" is reported as a
// popup alert, not an error.
func (b *Bot) handleVoteCallback(ctx context.Context, query *tgbotapi.CallbackQuery, user *models.User) {
	parts := strings.Split(query.Data, ":")
	if len(parts) != 3 {
		b.answerCallback(query.ID, "", false)
		return
	}
	postID := parseID(parts[1])
	value, err := strconv.Atoi(parts[2])
	if err != nil || (value != 1 && value != -1) {
		b.answerCallback(query.ID, "", false)
		return
	}

	counted, err := b.votes.Cast(ctx, postID, user.ID, value)
	if err != nil {
		b.logger.Error("Failed to cast vote",
			zap.Error(err),
			zap.Uint("post_id", postID),
			zap.Uint("user_id", user.ID),
		)
		b.answerCallback(query.ID, "Something went wrong.", true)
		return
	}
	if !counted {
		b.answerCallback(query.ID, "You already voted for this fail.", true)
		return
	}
	b.answerCallback(query.ID, "Vote counted!", false)
}

// handlePublishCallback publishes one of the user's drafts.
func (b *Bot) handlePublishCallback(ctx context.Context, query *tgbotapi.CallbackQuery, user *models.User) {
	id := parseID(strings.TrimPrefix(query.Data, "publish:"))
	ok, err := b.posts.PublishDraft(ctx, id, user.ID)
	if err != nil {
		b.logger.Error("Failed to publish draft", zap.Error(err), zap.Uint("post_id", id))
		b.answerCallback(query.ID, "Something went wrong.", true)
		return
	}
	if !ok {
		b.answerCallback(query.ID, "That draft cannot be published.", true)
		return
	}
	b.answerCallback(query.ID, "Published!", false)
}

// handleDeleteCallback deletes one of the user's own fails.
func (b *Bot) handleDeleteCallback(ctx context.Context, query *tgbotapi.CallbackQuery, user *models.User) {
	id := parseID(strings.TrimPrefix(query.Data, "delete:"))
	ok, err := b.posts.Delete(ctx, id, user.ID)
	if err != nil {
		b.logger.Error("Failed to delete post", zap.Error(err), zap.Uint("post_id", id))
		b.answerCallback(query.ID, "Something went wrong.", true)
		return
	}
	if !ok {
		b.answerCallback(query.ID, "Fail not found.", true)
		return
	}
	b.answerCallback(query.ID, "Deleted.", false)
}

func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	if b.api == nil {
		return
	}
	callback := tgbotapi.NewCallback(callbackID, text)
	if alert {
		callback = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("Failed to answer callback", zap.Error(err))
	}
}

func parseID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
