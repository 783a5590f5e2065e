package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"persona-chatter/internal/session"
)

// handleCommand
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.sendWithKeyboard(chatID, helpText(), b.personaKeyboard())
	case "new":
		b.newChat(chatID)
	case "persona":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			v := b.session(chatID).View()
			text := fmt.Sprintf("Current persona: %s", v.PersonaName)
			if !v.PersonaChangeable {
				b.sendMessage(chatID, text+"\nStart a new chat with /new to pick another one.")
				return
			}
			b.sendWithKeyboard(chatID, text+"\nChoose a persona:", b.personaKeyboard())
			return
		}
		b.selectPersona(chatID, arg)
	case "debug":
		b.toggleDebug(chatID)
	case "transcript":
		v := b.session(chatID).View()
		if v.Transcript == "" {
			b.sendMessage(chatID, "The conversation is empty.")
			return
		}
		b.sendMessage(chatID, v.Transcript)
	default:
		b.sendMessage(chatID, "Unknown command. "+helpText())
	}
}

// handleIncomingMessage
func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess := b.session(chatID)
	b.logger.Debug("incoming message", "chat", chatID, "length", len(msg.Text))

	reply, err := sess.Submit(ctx, msg.Text)
	v := sess.View()
	if err != nil {
		var n *session.Notice
		if !errors.As(err, &n) {
			b.logger.Error("submission failed", "chat", chatID, "error", err)
			b.sendMessage(chatID, "Sorry, something went wrong.")
			return
		}
		text := "⚠️ " + n.Summary
		if n.Kind != session.KindValidation {
			text += "\n" + session.ErrorReply
		}
		if v.Debug {
			text += "\n\n" + n.Detail
		}
		b.sendMessage(chatID, text)
		b.sendDebug(chatID, v)
		return
	}

	b.sendWithKeyboard(chatID, reply, b.menuKeyboard())
	b.sendDebug(chatID, v)
}

// handleCallback
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	switch {
	case cb.Data == newChatCmd:
		b.newChat(chatID)
	case cb.Data == debugCmd:
		b.toggleDebug(chatID)
	case strings.HasPrefix(cb.Data, personaPrefix):
		b.selectPersona(chatID, strings.TrimPrefix(cb.Data, personaPrefix))
	}
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
}

func (b *Bot) newChat(chatID int64) {
	sess := b.session(chatID)
	sess.NewChat()
	v := sess.View()
	b.sendWithKeyboard(chatID, fmt.Sprintf("New chat started. Persona: %s", v.PersonaName), b.personaKeyboard())
}

func (b *Bot) selectPersona(chatID int64, code string) {
	sess := b.session(chatID)
	switch err := sess.SelectPersona(code); {
	case errors.Is(err, session.ErrPersonaLocked):
		b.sendMessage(chatID, "The persona is fixed once the conversation has started. Use /new to start over.")
	case errors.Is(err, session.ErrUnknownPersona):
		b.sendWithKeyboard(chatID, fmt.Sprintf("Unknown persona %q.", code), b.personaKeyboard())
	case err != nil:
		b.sendMessage(chatID, "Could not change persona.")
	default:
		b.sendMessage(chatID, fmt.Sprintf("Persona set: %s", sess.View().PersonaName))
	}
}

func (b *Bot) toggleDebug(chatID int64) {
	if b.session(chatID).ToggleDebug() {
		b.sendMessage(chatID, "Debug mode on: request and response JSON will follow each reply.")
		return
	}
	b.sendMessage(chatID, "Debug mode off.")
}

func (b *Bot) sendDebug(chatID int64, v session.View) {
	if !v.Debug {
		return
	}
	if v.LastRequestJSON != "" {
		b.sendPre(chatID, "Request JSON", v.LastRequestJSON)
	}
	if v.LastResponseJSON != "" {
		b.sendPre(chatID, "Response JSON", v.LastResponseJSON)
	}
}

func helpText() string {
	return "Send a message to chat with the current persona.\n" +
		"/persona [CODE] - show or choose the persona (before the first message)\n" +
		"/new - start a new chat\n" +
		"/debug - show the raw request and response JSON\n" +
		"/transcript - show the conversation so far"
}
