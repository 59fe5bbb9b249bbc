package live_check

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"twitch_live_notifier/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const liveCheckBGSync = "liveCheck_BGSync"

// StreamSource is the slice of the Twitch client the live check consumes.
type StreamSource interface {
	GetStreamsByUserLogins(ctx context.Context, logins []string) ([]models.Stream, error)
	GetStreamsByGameIds(ctx context.Context, gameIds []string) ([]models.Stream, error)
	GetUsersByIds(ctx context.Context, ids []string) ([]models.TwitchUserInfo, error)
	GetGameIdsByNames(ctx context.Context, names []string) (map[string]string, error)
	GetGameNamesByIds(ctx context.Context, ids []string) (map[string]string, error)
	GetGameNameById(ctx context.Context, id string) (string, error)
	GetFollowerCountById(ctx context.Context, userId string) (uint64, error)
}

// Notifier is the chat-platform boundary: one message per live stream,
// created, edited in place, and deleted when the stream ends.
type Notifier interface {
	SendLiveMessage(ctx context.Context, chatID int64, text string) (int, error)
	EditLiveMessage(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteLiveMessage(ctx context.Context, chatID int64, messageID int) error
	SendText(ctx context.Context, chatID int64, text string) error
}

// SettingsStore is the per-chat settings contract the live check reads.
type SettingsStore interface {
	Get(ctx context.Context, chatId int64, key string) ([]string, error)
	GetScalar(ctx context.Context, chatId int64, key string) (string, error)
	Verify(ctx context.Context, chatId int64) (int, error)
	ListChatIDs(ctx context.Context) ([]int64, error)
}

// NotificationStore persists each chat's live-message baseline.
type NotificationStore interface {
	GetChatNotifications(ctx context.Context, chatId int64) ([]models.ChatNotification, error)
	ReplaceChatNotifications(ctx context.Context, chatId int64, records []models.ChatNotification) error
}

// TokenChecker validates or refreshes the bearer token once per cycle.
type TokenChecker interface {
	Sync(ctx context.Context) error
}

type LiveCheckService struct {
	twitchClient StreamSource
	notifier     Notifier
	settings     SettingsStore
	notifStore   NotificationStore
	tokenService TokenChecker

	operatorChatID int64

	mu       sync.RWMutex
	sessions map[int64]*ChatSession

	failuresMu      sync.Mutex
	pendingFailures []string
}

func NewLiveCheckService(
	twitchClient StreamSource,
	notifier Notifier,
	settings SettingsStore,
	notifStore NotificationStore,
	tokenService TokenChecker,
) (*LiveCheckService, error) {

	operatorChatID, _ := strconv.ParseInt(os.Getenv("OPERATOR_CHAT_ID"), 10, 64)

	service := &LiveCheckService{
		twitchClient:   twitchClient,
		notifier:       notifier,
		settings:       settings,
		notifStore:     notifStore,
		tokenService:   tokenService,
		operatorChatID: operatorChatID,
		sessions:       map[int64]*ChatSession{},
	}

	ctx := context.Background()
	if err := service.bootstrap(ctx); err != nil {
		return nil, errors.Wrap(err, "bootstrap")
	}

	return service, nil
}

// bootstrap enumerates every chat with persisted settings and opens a
// session for it, verifying the settings schema on the way.
func (lcs *LiveCheckService) bootstrap(ctx context.Context) error {

	chatIDs, err := lcs.settings.ListChatIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "ListChatIDs")
	}

	for _, chatID := range chatIDs {
		if _, err := lcs.EnsureChat(ctx, chatID); err != nil {
			return errors.Wrapf(err, "EnsureChat %d", chatID)
		}
	}

	return nil
}

// EnsureChat returns the chat's session, creating one and verifying the
// settings schema on first contact. Safe to call from the command surface on
// every incoming message.
func (lcs *LiveCheckService) EnsureChat(ctx context.Context, chatID int64) (*ChatSession, error) {

	lcs.mu.RLock()
	sess, ok := lcs.sessions[chatID]
	lcs.mu.RUnlock()
	if ok {
		return sess, nil
	}

	changes, err := lcs.settings.Verify(ctx, chatID)
	if err != nil {
		return nil, errors.Wrap(err, "Verify")
	}
	if changes > 0 {
		logrus.Infof("settings verify applied %d changes for chat %d", changes, chatID)
	}

	lcs.mu.Lock()
	defer lcs.mu.Unlock()

	if sess, ok := lcs.sessions[chatID]; ok {
		return sess, nil
	}

	sess = newChatSession(chatID)
	lcs.sessions[chatID] = sess

	return sess, nil
}

func (lcs *LiveCheckService) session(chatID int64) *ChatSession {
	lcs.mu.RLock()
	defer lcs.mu.RUnlock()
	return lcs.sessions[chatID]
}

func (lcs *LiveCheckService) chatIDs() []int64 {
	lcs.mu.RLock()
	defer lcs.mu.RUnlock()

	ids := make([]int64, 0, len(lcs.sessions))
	for id := range lcs.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Sync runs one full poll cycle: flush any queued failure reports, check the
// token, then refresh every chat.
func (lcs *LiveCheckService) Sync(ctx context.Context) error {

	lcs.flushFailures(ctx)

	if err := lcs.tokenService.Sync(ctx); err != nil {
		lcs.queueFailure(fmt.Sprintf("token check failed, skipping cycle: %v", err))
		return errors.Wrap(err, "token Sync")
	}

	return lcs.RefreshAllChats(ctx)
}

// RefreshAllChats aggregates the live set for every known chat and
// reconciles each one. A failure inside one chat is logged and queued for
// the operator report; sibling chats are untouched.
func (lcs *LiveCheckService) RefreshAllChats(ctx context.Context) error {

	sets, gameMap, err := lcs.gatherStreamsForChats(ctx, lcs.chatIDs())
	if err != nil {
		lcs.queueFailure(fmt.Sprintf("stream aggregation failed: %v", err))
		return errors.Wrap(err, "gatherStreamsForChats")
	}

	for chatID, set := range sets {
		sess := lcs.session(chatID)
		if sess == nil {
			continue
		}

		err := lcs.refreshChat(ctx, sess, set, gameMap)
		if err != nil {
			if errors.Is(err, models.ErrChatLocked) {
				logrus.Infof("chat %d still updating, skipped this cycle", chatID)
				continue
			}

			logrus.Errorf("chat %d refresh failed: %+v", chatID, err)
			lcs.queueFailure(fmt.Sprintf("chat %d refresh failed: %v", chatID, err))
			continue
		}
	}

	return nil
}

// RefreshChatByID is the forced single-chat reconciliation behind the
// /update command and the admin endpoint. It observes the same lock as the
// global loop: ErrChatLocked tells the caller to try later.
func (lcs *LiveCheckService) RefreshChatByID(ctx context.Context, chatID int64) error {

	sess, err := lcs.EnsureChat(ctx, chatID)
	if err != nil {
		return errors.Wrap(err, "EnsureChat")
	}

	sets, gameMap, err := lcs.gatherStreamsForChats(ctx, []int64{chatID})
	if err != nil {
		return errors.Wrap(err, "gatherStreamsForChats")
	}

	set, ok := sets[chatID]
	if !ok {
		return errors.Errorf("chat %d has no resolvable output channel", chatID)
	}

	return lcs.refreshChat(ctx, sess, set, gameMap)
}

// PurgeChat deletes every posted live message for a chat and clears its
// persisted baseline. Deletes are best effort.
func (lcs *LiveCheckService) PurgeChat(ctx context.Context, chatID int64) error {

	sess, err := lcs.EnsureChat(ctx, chatID)
	if err != nil {
		return errors.Wrap(err, "EnsureChat")
	}

	if !sess.TryLock() {
		return models.ErrChatLocked
	}
	defer sess.Unlock()

	channelID, err := lcs.outputChannel(ctx, chatID)
	if err != nil {
		return err
	}

	records, err := lcs.notifStore.GetChatNotifications(ctx, chatID)
	if err != nil {
		return errors.Wrap(err, "GetChatNotifications")
	}

	for _, record := range records {
		if err := lcs.notifier.DeleteLiveMessage(ctx, channelID, record.MessageID); err != nil {
			logrus.Infof("could not delete message %d in chat %d: %v", record.MessageID, chatID, err)
		}
	}

	if err := lcs.notifStore.ReplaceChatNotifications(ctx, chatID, nil); err != nil {
		return errors.Wrap(err, "ReplaceChatNotifications")
	}

	return nil
}

type ChatStatus struct {
	ChatID   int64 `json:"chat_id"`
	Updating bool  `json:"updating"`
}

func (lcs *LiveCheckService) Status() []ChatStatus {
	lcs.mu.RLock()
	defer lcs.mu.RUnlock()

	statuses := make([]ChatStatus, 0, len(lcs.sessions))
	for chatID, sess := range lcs.sessions {
		statuses = append(statuses, ChatStatus{
			ChatID:   chatID,
			Updating: sess.Updating(),
		})
	}
	return statuses
}

// queueFailure records a failure message for the next successful report
// flush. Consecutive failures accumulate so a broken reporting channel does
// not drop error history.
func (lcs *LiveCheckService) queueFailure(msg string) {
	lcs.failuresMu.Lock()
	defer lcs.failuresMu.Unlock()

	lcs.pendingFailures = append(lcs.pendingFailures,
		fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), msg))
}

// flushFailures sends queued failure reports to the operator chat. On a send
// failure the remaining messages stay queued for the next cycle.
func (lcs *LiveCheckService) flushFailures(ctx context.Context) {
	lcs.failuresMu.Lock()
	defer lcs.failuresMu.Unlock()

	if len(lcs.pendingFailures) == 0 {
		return
	}

	if lcs.operatorChatID == 0 {
		for _, msg := range lcs.pendingFailures {
			logrus.Error(msg)
		}
		lcs.pendingFailures = nil
		return
	}

	for i, msg := range lcs.pendingFailures {
		if err := lcs.notifier.SendText(ctx, lcs.operatorChatID, msg); err != nil {
			logrus.Infof("could not flush failure report: %v", err)
			lcs.pendingFailures = lcs.pendingFailures[i:]
			return
		}
	}

	lcs.pendingFailures = nil
}

// SyncBg drives the poll loop. Cycle errors are already queued for the
// operator report; the loop itself only ever exits on shutdown.
func (lcs *LiveCheckService) SyncBg(ctx context.Context, syncInterval time.Duration) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stoping bg %s process", liveCheckBGSync)
			return
		case <-ticker.C:
			logrus.Infof("started bg %s process", liveCheckBGSync)
			err := lcs.Sync(ctx)
			if err != nil {
				logrus.Infof("live check cycle failed: %v", err)
				continue
			}
			logrus.Info("live check cycle was completed")
		}
	}
}
