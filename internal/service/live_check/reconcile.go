package live_check

import (
	"context"

	"twitch_live_notifier/internal/models"
	formater "twitch_live_notifier/internal/utils/formater"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// refreshChat reconciles one chat's posted messages against the freshly
// computed live set: messages for streams that went offline are deleted,
// surviving streams get their message edited in place, newly live streams
// get a new message. The resulting record set fully replaces the persisted
// baseline.
func (lcs *LiveCheckService) refreshChat(ctx context.Context, sess *ChatSession, set *chatLiveSet, gameMap *models.CategoryMap) error {

	if !sess.TryLock() {
		return models.ErrChatLocked
	}
	defer sess.Unlock()

	records, err := lcs.notifStore.GetChatNotifications(ctx, sess.ChatID)
	if err != nil {
		return errors.Wrap(err, "GetChatNotifications")
	}

	next := make([]models.ChatNotification, 0, len(set.streams))
	liveUserIDs := map[string]struct{}{}

	for _, record := range records {
		ls, stillLive := set.streams[record.UserLogin]
		if !stillLive {
			// best effort: one failed delete must not stop the rest
			if err := lcs.notifier.DeleteLiveMessage(ctx, set.channelID, record.MessageID); err != nil {
				logrus.Infof("could not delete message %d in chat %d: %v", record.MessageID, sess.ChatID, err)
			}
			continue
		}

		text := lcs.renderStream(ctx, ls, gameMap)
		if err := lcs.notifier.EditLiveMessage(ctx, set.channelID, record.MessageID, text); err != nil {
			logrus.Infof("could not edit message %d in chat %d: %v", record.MessageID, sess.ChatID, err)
		}

		next = append(next, record)
		liveUserIDs[record.UserID] = struct{}{}
	}

	for login, ls := range set.streams {
		if _, alreadyPosted := liveUserIDs[ls.Stream.UserId]; alreadyPosted {
			continue
		}

		text := lcs.renderStream(ctx, ls, gameMap)
		messageID, err := lcs.notifier.SendLiveMessage(ctx, set.channelID, text)
		if err != nil {
			logrus.Infof("could not send message for %s in chat %d: %v", login, sess.ChatID, err)
			continue
		}

		next = append(next, models.ChatNotification{
			MessageID: messageID,
			UserLogin: login,
			UserID:    ls.Stream.UserId,
		})
	}

	if err := lcs.notifStore.ReplaceChatNotifications(ctx, sess.ChatID, next); err != nil {
		return errors.Wrap(err, "ReplaceChatNotifications")
	}

	return nil
}

// renderStream builds the message text for one live stream. The follower
// lookup, and the single-item category resolution when no map was supplied,
// are per-stream remote calls and dominate request volume on busy cycles.
func (lcs *LiveCheckService) renderStream(ctx context.Context, ls models.LiveStream, gameMap *models.CategoryMap) string {

	gameName := formater.NoCategoryLabel

	if gameMap == nil {
		if ls.Stream.GameId != "" {
			if name, err := lcs.twitchClient.GetGameNameById(ctx, ls.Stream.GameId); err == nil {
				gameName = name
			}
		}
	} else if ls.Stream.GameId != "" && ls.Stream.GameId != "0" {
		if name, ok := gameMap.NameByID(ls.Stream.GameId); ok {
			gameName = name
		} else {
			gameName = formater.UnknownCategoryLabel
		}
	}

	followers, err := lcs.twitchClient.GetFollowerCountById(ctx, ls.Stream.UserId)
	if err != nil {
		logrus.Infof("could not get follower count for %s: %v", ls.Stream.UserLogin, err)
	}

	return formater.LiveMessageText(ls, gameName, followers)
}
