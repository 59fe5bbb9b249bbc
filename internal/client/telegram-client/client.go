package telegram_client

import (
	"context"
	"os"

	tgBotApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

type TelegramClient struct {
	bot *tgBotApi.BotAPI
}

func NewTelegramClient() (*TelegramClient, error) {
	bot, err := tgBotApi.NewBotAPI(os.Getenv("TELEGRAM_API_TOKEN"))
	if err != nil {
		return nil, errors.Wrap(err, "NewBotAPI")
	}

	return &TelegramClient{
		bot: bot,
	}, nil
}

// SendLiveMessage posts a new live-stream message and returns its message id,
// which stays stable for the lifetime of the stream.
func (tc *TelegramClient) SendLiveMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgBotApi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = false

	sent, err := tc.bot.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "Send")
	}

	return sent.MessageID, nil
}

// EditLiveMessage replaces the text of an existing live-stream message in
// place.
func (tc *TelegramClient) EditLiveMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgBotApi.NewEditMessageText(chatID, messageID, text)

	if _, err := tc.bot.Send(edit); err != nil {
		return errors.Wrap(err, "Send")
	}

	return nil
}

// DeleteLiveMessage removes the message for a stream that went offline.
func (tc *TelegramClient) DeleteLiveMessage(ctx context.Context, chatID int64, messageID int) error {
	del := tgBotApi.NewDeleteMessage(chatID, messageID)

	if _, err := tc.bot.Request(del); err != nil {
		return errors.Wrap(err, "Request")
	}

	return nil
}

// SendText is the plain-text path used for command replies and operator
// reports.
func (tc *TelegramClient) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgBotApi.NewMessage(chatID, text)

	if _, err := tc.bot.Send(msg); err != nil {
		return errors.Wrap(err, "Send")
	}

	return nil
}

// Bot exposes the underlying API handle for the command-dispatch loop.
func (tc *TelegramClient) Bot() *tgBotApi.BotAPI {
	return tc.bot
}
