package telegram_updates_check

import (
	"context"
	"fmt"
	"strings"

	"twitch_live_notifier/internal/service/settings"
	formater "twitch_live_notifier/internal/utils/formater"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

func (tucs *TelegramUpdatesCheckService) toggleStreamer(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	args := commandArgs(updateInfo.Message.Text, streamCommand)
	if len(args) == 0 {
		streamers, err := tucs.settingsService.Get(ctx, chatID, settings.KeyTrackedStreamers)
		if err != nil {
			msg.Text = somethingWrong
			return msg, errors.Wrap(err, "Get")
		}
		if len(streamers) == 0 {
			msg.Text = "There are no watched streams"
			return msg, nil
		}
		msg.Text = fmt.Sprintf("These are the watched streams (%d of them):\n%s", len(streamers), strings.Join(streamers, ", "))
		return msg, nil
	}

	login := formater.ToLower(args[0])

	present, err := tucs.settingsService.Toggle(ctx, chatID, settings.KeyTrackedStreamers, login)
	if err != nil {
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "Toggle")
	}

	if present {
		msg.Text = fmt.Sprintf("%s's streams will be watched", login)
	} else {
		msg.Text = fmt.Sprintf("%s is no longer watched", login)
	}

	return
}

func (tucs *TelegramUpdatesCheckService) resetStreamers(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	args := commandArgs(updateInfo.Message.Text, streamsResetCommand)

	// with arguments this doubles as a bulk replace
	lowered := make([]string, 0, len(args))
	for _, arg := range args {
		lowered = append(lowered, formater.ToLower(arg))
	}

	err = tucs.settingsService.Modify(ctx, chatID, settings.KeyTrackedStreamers, lowered)
	if err != nil {
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "Modify")
	}

	if len(lowered) == 0 {
		msg.Text = "I have reset the list of streamers watched"
	} else {
		msg.Text = fmt.Sprintf("I have reset the watched stream list to %d streamers", len(lowered))
	}

	return
}

func (tucs *TelegramUpdatesCheckService) toggleGame(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	// category names can contain spaces, the whole trailing text is the name
	gameName := strings.TrimSpace(strings.TrimPrefix(updateInfo.Message.Text, gameCommand))
	if gameName == "" {
		games, err := tucs.settingsService.Get(ctx, chatID, settings.KeyTrackedGames)
		if err != nil {
			msg.Text = somethingWrong
			return msg, errors.Wrap(err, "Get")
		}
		if len(games) == 0 {
			msg.Text = "There are no watched categories"
			return msg, nil
		}
		msg.Text = fmt.Sprintf("These are the watched categories (%d of them):\n%s", len(games), strings.Join(games, ", "))
		return msg, nil
	}

	present, err := tucs.settingsService.Toggle(ctx, chatID, settings.KeyTrackedGames, gameName)
	if err != nil {
		msg.Text = somethingWrong
		return msg, errors.Wrap(err, "Toggle")
	}

	if present {
		msg.Text = fmt.Sprintf("%s is being watched", gameName)
	} else {
		msg.Text = fmt.Sprintf("%s is no longer being watched", gameName)
	}

	return
}
