package telegram_updates_check

import (
	"context"

	"twitch_live_notifier/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

func (tucs *TelegramUpdatesCheckService) forceUpdate(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	err = tucs.liveCheckService.RefreshChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, models.ErrChatLocked) {
			msg.Text = lockedMessage
			return msg, nil
		}
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "RefreshChatByID")
	}

	msg.Text = "Updated the live messages"

	return
}

func (tucs *TelegramUpdatesCheckService) purge(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	err = tucs.liveCheckService.PurgeChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, models.ErrChatLocked) {
			msg.Text = lockedMessage
			return msg, nil
		}
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "PurgeChat")
	}

	// repost from scratch right away
	err = tucs.liveCheckService.RefreshChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, models.ErrChatLocked) {
			msg.Text = lockedMessage
			return msg, nil
		}
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "RefreshChatByID")
	}

	msg.Text = "Purged and reposted the live messages"

	return
}
