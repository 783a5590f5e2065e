package telegram

import (
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages over 4096 characters; escaping can grow a chunk,
// so split well below that.
const maxChunkRunes = 3500

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(chatID, text, nil)
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	b.send(chatID, text, &kb)
}

// send escapes text for HTML mode; the keyboard goes on the last chunk.
func (b *Bot) send(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	chunks := splitText(text, maxChunkRunes)
	for i, c := range chunks {
		msg := tgbotapi.NewMessage(chatID, html.EscapeString(c))
		msg.ParseMode = tgbotapi.ModeHTML
		if kb != nil && i == len(chunks)-1 {
			msg.ReplyMarkup = *kb
		}
		if _, err := b.s.Send(msg); err != nil {
			b.logger.Warn("failed to send message", "chat", chatID, "error", err)
		}
	}
}

func (b *Bot) sendPre(chatID int64, title, body string) {
	for _, c := range splitText(body, maxChunkRunes) {
		msg := tgbotapi.NewMessage(chatID, "<b>"+html.EscapeString(title)+"</b>\n<pre>"+html.EscapeString(c)+"</pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.s.Send(msg); err != nil {
			b.logger.Warn("failed to send debug block", "chat", chatID, "error", err)
		}
	}
}

// splitText cuts s into pieces of at most n runes, preferring line breaks.
func splitText(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	var out []string
	for len(r) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if r[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

func (b *Bot) personaKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range b.personas.All() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.DisplayName, personaPrefix+string(p.Code)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("New chat", newChatCmd),
			tgbotapi.NewInlineKeyboardButtonData("Debug", debugCmd),
		),
	)
}
