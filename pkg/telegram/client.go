package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram caps messages at 4096 characters; leave headroom for entities.
const maxMessageLength = 4000

// Notifier defines the interface for an outbound notification channel.
type Notifier interface {
	SendMessage(text string) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat, splitting
// long payloads into multiple messages.
func (c *client) SendMessage(text string) error {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessageLength {
			chunk = chunk[:maxMessageLength]
		}
		text = text[len(chunk):]

		msg := tgbotapi.NewMessage(c.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
