package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"failboard/internal/models"
	"failboard/internal/services"
)

// Bot is the Telegram front-end. Each update is mapped to a command or
// to a step of an ongoing conversation; chat identities are resolved
// to internal users on every update.
type Bot struct {
	api           *tgbotapi.BotAPI
	users         *services.UserService
	posts         *services.PostService
	votes         *services.VoteService
	leaderboard   *services.LeaderboardService
	initialStatus models.PostStatus
	logger        *zap.Logger

	mu     sync.Mutex
	states map[int64]*ConversationState
}

// NewBot creates the bot and verifies the token against the Telegram API.
func NewBot(token string, users *services.UserService, posts *services.PostService,
	votes *services.VoteService, leaderboard *services.LeaderboardService,
	initialStatus models.PostStatus, logger *zap.Logger) (*Bot, error) {

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	return &Bot{
		api:           api,
		users:         users,
		posts:         posts,
		votes:         votes,
		leaderboard:   leaderboard,
		initialStatus: initialStatus,
		logger:        logger,
		states:        make(map[int64]*ConversationState),
	}, nil
}

// Start runs long polling and blocks until the update channel closes.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started in polling mode", zap.String("username", b.api.Self.UserName))

	for update := range updates {
		b.handleUpdate(update)
	}
	return nil
}

// StartWebhook registers the webhook URL with Telegram. Updates then
// arrive through HandleWebhookUpdate via the HTTP server.
func (b *Bot) StartWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		b.logger.Warn("Telegram reports webhook error", zap.String("message", info.LastErrorMessage))
	}
	return nil
}

// HandleWebhookUpdate processes one update delivered over HTTP.
func (b *Bot) HandleWebhookUpdate(update tgbotapi.Update) {
	b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// sendMessage sends a message, tolerating a nil API in tests.
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) state(userID int64) (*ConversationState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.states[userID]
	return state, ok
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, userID)
}
