package bot

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"failboard/internal/models"
)

// handleConversation routes a non-command message to the active flow.
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, user *models.User, state *ConversationState) {
	switch state.Command {
	case "fail":
		b.handleFailConversation(ctx, message, user, state)
	default:
		b.clearState(message.From.ID)
	}
}

// handleFailConversation walks the two steps of fail submission:
// name, then description. Over-long input re-prompts without
// advancing, matching the length limits the API enforces via binding.
func (b *Bot) handleFailConversation(ctx context.Context, message *tgbotapi.Message, user *models.User, state *ConversationState) {
	switch state.Step {
	case 1:
		if utf8.RuneCountInString(message.Text) > models.MaxNameLen {
			b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "That name is too long. Try a shorter one:"))
			return
		}
		state.Data["name"] = message.Text
		state.Step = 2
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID,
			fmt.Sprintf("Now describe what happened (up to %d characters):", models.MaxContentLen)))

	case 2:
		if utf8.RuneCountInString(message.Text) > models.MaxContentLen {
			b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "That description is too long. Try a shorter one:"))
			return
		}

		name, _ := state.Data["name"].(string)
		post, err := b.posts.Create(ctx, user.ID, name, message.Text, b.initialStatus, nil)
		state.Step = -1
		if err != nil {
			b.logger.Error("Failed to create post",
				zap.Error(err),
				zap.Uint("user_id", user.ID),
			)
			b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Could not save your fail. Please try again."))
			return
		}

		reply := fmt.Sprintf("Your fail has been saved!\n\nName: %s\nDescription: %s", post.Name, post.Content)
		if post.Status == models.StatusDraft {
			reply += "\n\nIt is a draft for now - publish it with /drafts."
		}
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, reply))
	}
}
