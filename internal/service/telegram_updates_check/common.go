package telegram_updates_check

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const commandsList = `Known commands:
/stream <login> - watch or unwatch a streamer, no argument lists them
/streams_reset [logins...] - replace the watched streamer list
/game <category name> - watch or unwatch a category, no argument lists them
/ignore <logins...> - toggle streamers on the ignore list
/whitelist <categories...> - toggle categories on the whitelist
/require <phrases...> - toggle phrases the stream title must contain
/channel <chat id>|here - where live messages are posted
/update - refresh the live messages now
/purge - delete and repost all live messages
/commands - this list`

func (tucs *TelegramUpdatesCheckService) commands(
	_ context.Context,
	updateInfo tgbotapi.Update,
) (msg tgbotapi.MessageConfig, err error) {

	msg = replyTo(updateInfo)
	msg.Text = commandsList

	return
}
