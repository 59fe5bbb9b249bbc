package telegram_updates_check

import (
	"context"
	"strings"
	"time"

	telegram_client "twitch_live_notifier/internal/client/telegram-client"
	live_check "twitch_live_notifier/internal/service/live_check"
	"twitch_live_notifier/internal/service/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	telegramUpdatesCheckBGSync = "telegramUpdatesCheck_BGSync"

	streamsResetCommand = "/streams_reset"
	streamCommand       = "/stream"
	gameCommand         = "/game"
	ignoreCommand       = "/ignore"
	whitelistCommand    = "/whitelist"
	requireCommand      = "/require"
	channelCommand      = "/channel"
	updateCommand       = "/update"
	purgeCommand        = "/purge"
	commandsCommand     = "/commands"

	somethingWrong = "Oops, something went wrong, please try again later or contact the author"
	lockedMessage  = "Live messages are currently locked by an ongoing refresh, try again in a moment"
)

type TelegramUpdatesCheckService struct {
	telegramClient   *telegram_client.TelegramClient
	settingsService  *settings.Service
	liveCheckService *live_check.LiveCheckService
}

func NewTelegramUpdatesCheckService(
	telegramClient *telegram_client.TelegramClient,
	settingsService *settings.Service,
	liveCheckService *live_check.LiveCheckService,
) (*TelegramUpdatesCheckService, error) {
	return &TelegramUpdatesCheckService{
		telegramClient:   telegramClient,
		settingsService:  settingsService,
		liveCheckService: liveCheckService,
	}, nil
}

// Sync long-polls Telegram updates and dispatches the configuration and
// refresh commands. Every incoming chat gets a session and a settings
// verify on first contact.
func (tucs *TelegramUpdatesCheckService) Sync(ctx context.Context) error {

	bot := tucs.telegramClient.Bot()

	reader := tgbotapi.NewUpdate(0)
	reader.Timeout = 60

	updates := bot.GetUpdatesChan(reader)

	for updateInfo := range updates {
		if updateInfo.Message == nil {
			continue
		}

		logrus.Printf("[%s] %s", updateInfo.Message.From.UserName, updateInfo.Message.Text)

		chatID := updateInfo.Message.Chat.ID

		if _, err := tucs.liveCheckService.EnsureChat(ctx, chatID); err != nil {
			logrus.Errorf("could not ensure chat %d: %v", chatID, err)
			continue
		}

		var (
			msg tgbotapi.MessageConfig
			err error
		)

		text := updateInfo.Message.Text

		switch {
		case strings.HasPrefix(text, streamsResetCommand):
			msg, err = tucs.resetStreamers(ctx, updateInfo)
		case strings.HasPrefix(text, streamCommand):
			msg, err = tucs.toggleStreamer(ctx, updateInfo)
		case strings.HasPrefix(text, gameCommand):
			msg, err = tucs.toggleGame(ctx, updateInfo)
		case strings.HasPrefix(text, ignoreCommand):
			msg, err = tucs.toggleBlacklist(ctx, updateInfo)
		case strings.HasPrefix(text, whitelistCommand):
			msg, err = tucs.toggleWhitelist(ctx, updateInfo)
		case strings.HasPrefix(text, requireCommand):
			msg, err = tucs.toggleRequiredPhrases(ctx, updateInfo)
		case strings.HasPrefix(text, channelCommand):
			msg, err = tucs.setChannel(ctx, updateInfo)
		case strings.HasPrefix(text, updateCommand):
			msg, err = tucs.forceUpdate(ctx, updateInfo)
		case strings.HasPrefix(text, purgeCommand):
			msg, err = tucs.purge(ctx, updateInfo)
		case strings.HasPrefix(text, commandsCommand):
			msg, err = tucs.commands(ctx, updateInfo)
		default:
			continue
		}

		if err != nil {
			logrus.Errorf("command %q failed: %+v", text, err)
		}

		if msg.Text != "" {
			if _, err := bot.Send(msg); err != nil {
				logrus.Errorf("could not send command reply: %v", err)
			}
		}
	}

	return nil
}

func (tucs *TelegramUpdatesCheckService) SyncBg(ctx context.Context, syncInterval time.Duration) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stoping bg %s process", telegramUpdatesCheckBGSync)
			return
		case <-ticker.C:
			logrus.Infof("started bg %s process", telegramUpdatesCheckBGSync)
			err := tucs.Sync(ctx)
			if err != nil {
				logrus.Info("could not check telegram updates")
				continue
			}
			logrus.Info("telegram updates check was completed")
		}
	}
}

// replyTo seeds a MessageConfig addressed back at the incoming message.
func replyTo(updateInfo tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.MessageConfig{}
	msg.ChatID = updateInfo.Message.Chat.ID
	msg.ReplyToMessageID = updateInfo.Message.MessageID
	return msg
}

// commandArgs returns the whitespace-separated arguments after the command
// prefix.
func commandArgs(text, command string) []string {
	return strings.Fields(strings.TrimPrefix(text, command))
}
