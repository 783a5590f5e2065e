package telegram

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"persona-chatter/internal/persona"
	"persona-chatter/internal/session"
)

const (
	newChatCmd    = "new_chat"
	debugCmd      = "toggle_debug"
	personaPrefix = "persona:"
)

// Bot maps Telegram chats onto sessions: one chat, one session.
type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	sessions *session.Manager
	personas *persona.Store
	logger   *slog.Logger
}

func New(botToken string, sessions *session.Manager, personas *persona.Store, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:      api,
		s:        botAPISender{api: api},
		sessions: sessions,
		personas: personas,
		logger:   logger,
	}, nil
}

// Start consumes updates until ctx is cancelled. Updates are handled one at a
// time, which keeps every chat's submissions sequential.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("telegram bot stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		if update.Message.IsCommand() {
			b.handleCommand(update.Message)
			return
		}
		b.handleIncomingMessage(ctx, update.Message)
		return
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) session(chatID int64) *session.Session {
	return b.sessions.GetOrCreate(sessionKey(chatID))
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
