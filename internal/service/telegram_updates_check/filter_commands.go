package telegram_updates_check

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"twitch_live_notifier/internal/service/settings"
	formater "twitch_live_notifier/internal/utils/formater"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

func (tucs *TelegramUpdatesCheckService) toggleBlacklist(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (tgbotapi.MessageConfig, error) {
	return tucs.toggleListCommand(ctx, updateInfo, ignoreCommand, settings.KeyBlacklistedStreamers, listCommandText{
		empty:     "There are no ignored streams",
		listLabel: "ignored streams",
		added:     "Ignored",
		removed:   "Un-ignored",
		noun:      "streamers",
	})
}

func (tucs *TelegramUpdatesCheckService) toggleWhitelist(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (tgbotapi.MessageConfig, error) {
	return tucs.toggleListCommand(ctx, updateInfo, whitelistCommand, settings.KeyWhitelistedGames, listCommandText{
		empty:     "There are no whitelisted categories. Any category may show up if a streamer is watched",
		listLabel: "whitelisted categories",
		added:     "Whitelisted",
		removed:   "Un-whitelisted",
		noun:      "categories",
	})
}

func (tucs *TelegramUpdatesCheckService) toggleRequiredPhrases(
	ctx context.Context,
	updateInfo tgbotapi.Update,
) (tgbotapi.MessageConfig, error) {
	return tucs.toggleListCommand(ctx, updateInfo, requireCommand, settings.KeyTitleContains, listCommandText{
		empty:     "There are no required phrases. Any stream may show up if other conditions are met",
		listLabel: "required phrases, streams must contain any of them",
		added:     "Added",
		removed:   "Removed",
		noun:      "phrases",
	})
}

type listCommandText struct {
	empty     string
	listLabel string
	added     string
	removed   string
	noun      string
}

// toggleListCommand is the shared shape of the blacklist, whitelist and
// required-phrase commands: no arguments lists the current values, any
// number of arguments toggles each one.
func (tucs *TelegramUpdatesCheckService) toggleListCommand(
	ctx context.Context,
	updateInfo tgbotapi.Update,
	command, key string,
	text listCommandText,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	chatID := updateInfo.Message.Chat.ID

	args := commandArgs(updateInfo.Message.Text, command)
	if len(args) == 0 {
		items, err := tucs.settingsService.Get(ctx, chatID, key)
		if err != nil {
			msg.Text = somethingWrong
			return msg, errors.Wrap(err, "Get")
		}
		if len(items) == 0 {
			msg.Text = text.empty
			return msg, nil
		}
		msg.Text = fmt.Sprintf("These are the %s (%d of them):\n%s", text.listLabel, len(items), strings.Join(items, ", "))
		return msg, nil
	}

	unique := map[string]struct{}{}
	for _, arg := range args {
		unique[formater.ToLower(arg)] = struct{}{}
	}

	var added, removed []string
	for item := range unique {
		present, err := tucs.settingsService.Toggle(ctx, chatID, key, item)
		if err != nil {
			msg.Text = somethingWrong
			return msg, errors.Wrap(err, "Toggle")
		}
		if present {
			added = append(added, item)
		} else {
			removed = append(removed, item)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	var builder strings.Builder
	if len(removed) > 0 {
		builder.WriteString(fmt.Sprintf("%s %d %s: %s", text.removed, len(removed), text.noun, strings.Join(removed, ", ")))
	}
	if len(added) > 0 {
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("%s %d %s: %s", text.added, len(added), text.noun, strings.Join(added, ", ")))
	}
	msg.Text = builder.String()

	return
}
