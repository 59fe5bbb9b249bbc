package telegram_updates_check

import (
	"context"
	"fmt"
	"strconv"

	"twitch_live_notifier/internal/service/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

func (tucs *TelegramUpdatesCheckService) setChannel(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	args := commandArgs(updateInfo.Message.Text, channelCommand)
	if len(args) == 0 {
		current, err := tucs.settingsService.GetScalar(ctx, chatID, settings.KeyChannelID)
		if err != nil {
			msg.Text = somethingWrong
			return msg, errors.Wrap(err, "GetScalar")
		}
		if current == "" || current == "0" {
			msg.Text = "No output channel is set, live messages go nowhere. Use /channel <chat id> to set one, or /channel here for this chat"
			return msg, nil
		}
		msg.Text = fmt.Sprintf("Live messages go to channel %s", current)
		return msg, nil
	}

	target := args[0]
	if target == "here" {
		target = strconv.FormatInt(chatID, 10)
	}

	if _, err := strconv.ParseInt(target, 10, 64); err != nil {
		msg.Text = fmt.Sprintf("%q does not look like a chat id", args[0])
		return msg, nil
	}

	err = tucs.settingsService.SetScalar(ctx, chatID, settings.KeyChannelID, target)
	if err != nil {
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "SetScalar")
	}

	msg.Text = fmt.Sprintf("Live messages will go to channel %s", target)

	return
}
