package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"failboard/internal/models"
)

const helpText = `I collect fail stories and let everyone vote on them.

/fail - submit a new fail
/drafts - your drafts, with publish buttons
/my - your published fails, with delete buttons
/vote - read random fails and vote
/top - top losers leaderboard
/help - this message`

// handleMessage processes a single incoming message.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Something went wrong. Please try again."))
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	user, err := b.resolveUser(ctx, message.From)
	if err != nil {
		b.logger.Error("Failed to resolve user", zap.Error(err), zap.Int64("chat_id", userID))
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Something went wrong. Please try again."))
		return
	}

	if state, ok := b.state(userID); ok {
		if state.Step == -1 || message.IsCommand() {
			// A finished conversation, or any command, cancels the flow.
			b.clearState(userID)
		} else {
			b.handleConversation(ctx, message, user, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start", "help":
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, helpText))
	case "fail":
		b.handleFailStart(message)
	case "drafts":
		b.handleDrafts(ctx, message, user)
	case "my":
		b.handleMyPosts(ctx, message, user)
	case "vote":
		b.handleVoteList(ctx, message)
	case "top":
		b.handleTop(ctx, message)
	default:
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help to see available commands."))
	}
}

// resolveUser maps the Telegram sender to an internal user, creating
// one on first contact.
func (b *Bot) resolveUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	username := from.UserName
	if username == "" {
		username = from.FirstName
	}
	return b.users.GetOrCreateByChat(ctx, from.ID, username)
}

// handleFailStart begins the two-step fail submission conversation.
func (b *Bot) handleFailStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, newConversationState("fail"))
	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("Enter a name for your fail (up to %d characters):", models.MaxNameLen)))
}

// handleDrafts lists the user's drafts with publish buttons.
func (b *Bot) handleDrafts(ctx context.Context, message *tgbotapi.Message, user *models.User) {
	drafts, err := b.posts.Drafts(ctx, user.ID)
	if err != nil {
		b.logger.Error("Failed to list drafts", zap.Error(err), zap.Uint("user_id", user.ID))
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Could not load your drafts."))
		return
	}
	if len(drafts) == 0 {
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "You have no drafts. Use /fail to write one."))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, draft := range drafts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Publish: %s", draft.Name),
				fmt.Sprintf("publish:%d", draft.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Your drafts:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// handleMyPosts lists the user's published fails with delete buttons.
func (b *Bot) handleMyPosts(ctx context.Context, message *tgbotapi.Message, user *models.User) {
	posts, err := b.posts.PublishedByUser(ctx, user.ID)
	if err != nil {
		b.logger.Error("Failed to list posts", zap.Error(err), zap.Uint("user_id", user.ID))
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Could not load your fails."))
		return
	}
	if len(posts) == 0 {
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "You have no published fails yet."))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, post := range posts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Delete: %s (%d)", post.Name, post.Rating),
				fmt.Sprintf("delete:%d", post.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Your published fails:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// handleVoteList offers up to five random published fails to read.
func (b *Bot) handleVoteList(ctx context.Context, message *tgbotapi.Message) {
	posts, err := b.posts.RandomForVoting(ctx, 5)
	if err != nil {
		b.logger.Error("Failed to pick posts for voting", zap.Error(err))
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Could not load fails for voting."))
		return
	}
	if len(posts) == 0 {
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "No fails to vote on yet!"))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, post := range posts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(post.Name, fmt.Sprintf("read:%d", post.ID)),
		))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Pick a fail to read:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// handleTop renders the leaderboard.
func (b *Bot) handleTop(ctx context.Context, message *tgbotapi.Message) {
	top, err := b.leaderboard.TopUsers(ctx, 10)
	if err != nil {
		b.logger.Error("Failed to load leaderboard", zap.Error(err))
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Could not load the leaderboard."))
		return
	}
	if len(top) == 0 {
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Nobody has failed yet!"))
		return
	}

	text := "🏆 Top losers:\n\n"
	for i, row := range top {
		text += fmt.Sprintf("%d. %s: %d points of shame\n", i+1, row.Username, row.TotalRating)
	}
	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}
