package notify

import (
	"context"
	"html"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"pivot_bot/pkg/logger"
)

// telegram режет сообщения длиннее 4096 символов
const maxMessageLen = 4096

// sender - то, что нужно от BotAPI; подменяется в тестах.
type sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram - HTML-сообщения в один чат. withJSON: payload уходит вторым сообщением в <pre><code>.
type Telegram struct {
	bot      sender
	chatID   int64
	withJSON bool
}

func NewTelegram(token string, chatID int64, withJSON bool) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot init")
	}
	logger.Info("telegram bot authorised as @%s", b.Self.UserName)
	return &Telegram{bot: b, chatID: chatID, withJSON: withJSON}, nil
}

func (t *Telegram) Send(text string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	for _, chunk := range split(text, maxMessageLen) {
		msg := tgbot.NewMessage(t.chatID, chunk)
		msg.ParseMode = tgbot.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return errors.Wrap(err, "telegram send")
		}
	}
	return nil
}

func (t *Telegram) Publish(ctx context.Context, message string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Send(message); err != nil {
		return err
	}
	if !t.withJSON || payload == nil {
		return nil
	}
	block, err := FormatJSON(payload)
	if err != nil {
		return err
	}
	return t.Send(`<pre><code class="language-json">` + html.EscapeString(block) + `</code></pre>`)
}

// split режет по строкам, чтобы не рвать HTML-теги посередине.
func split(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var out []string
	for len(text) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
