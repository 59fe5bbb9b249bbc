package live_check

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"twitch_live_notifier/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type fakeStreamSource struct {
	userStreams   []models.Stream
	gameStreams   []models.Stream
	users         []models.TwitchUserInfo
	gameIDsByName map[string]string
	gameNamesByID map[string]string
	followers     map[string]uint64
}

func (f *fakeStreamSource) GetStreamsByUserLogins(_ context.Context, _ []string) ([]models.Stream, error) {
	return f.userStreams, nil
}

func (f *fakeStreamSource) GetStreamsByGameIds(_ context.Context, _ []string) ([]models.Stream, error) {
	return f.gameStreams, nil
}

func (f *fakeStreamSource) GetUsersByIds(_ context.Context, _ []string) ([]models.TwitchUserInfo, error) {
	return f.users, nil
}

func (f *fakeStreamSource) GetGameIdsByNames(_ context.Context, _ []string) (map[string]string, error) {
	if f.gameIDsByName == nil {
		return map[string]string{}, nil
	}
	return f.gameIDsByName, nil
}

func (f *fakeStreamSource) GetGameNamesByIds(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := f.gameNamesByID[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (f *fakeStreamSource) GetGameNameById(_ context.Context, id string) (string, error) {
	name, ok := f.gameNamesByID[id]
	if !ok {
		return "", errors.Errorf("game %s not found", id)
	}
	return name, nil
}

func (f *fakeStreamSource) GetFollowerCountById(_ context.Context, userId string) (uint64, error) {
	return f.followers[userId], nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	nextID  int
	edited  []int
	deleted []int
	sends   int
	texts   []string

	sendTextFailAfter int

	// when set, SendLiveMessage signals entered once and waits on release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeNotifier) SendLiveMessage(_ context.Context, _ int64, _ string) (int, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sends++
	return 100 + f.nextID - 1, nil
}

func (f *fakeNotifier) EditLiveMessage(_ context.Context, _ int64, messageID int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, messageID)
	return nil
}

func (f *fakeNotifier) DeleteLiveMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeNotifier) SendText(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendTextFailAfter > 0 && len(f.texts) >= f.sendTextFailAfter {
		return errors.New("telegram unavailable")
	}
	f.texts = append(f.texts, text)
	return nil
}

type fakeSettings struct {
	lists      map[int64]map[string][]string
	scalars    map[int64]map[string]string
	scalarErrs map[int64]error
}

func (f *fakeSettings) Get(_ context.Context, chatId int64, key string) ([]string, error) {
	return f.lists[chatId][key], nil
}

func (f *fakeSettings) GetScalar(_ context.Context, chatId int64, key string) (string, error) {
	if err, ok := f.scalarErrs[chatId]; ok {
		return "", err
	}
	if v, ok := f.scalars[chatId][key]; ok {
		return v, nil
	}
	return "0", nil
}

func (f *fakeSettings) Verify(_ context.Context, _ int64) (int, error) { return 0, nil }

func (f *fakeSettings) ListChatIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.scalars))
	for id := range f.scalars {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeNotifStore struct {
	records map[int64][]models.ChatNotification
}

func (f *fakeNotifStore) GetChatNotifications(_ context.Context, chatId int64) ([]models.ChatNotification, error) {
	return f.records[chatId], nil
}

func (f *fakeNotifStore) ReplaceChatNotifications(_ context.Context, chatId int64, records []models.ChatNotification) error {
	if f.records == nil {
		f.records = map[int64][]models.ChatNotification{}
	}
	f.records[chatId] = records
	return nil
}

type fakeToken struct{ err error }

func (f fakeToken) Sync(_ context.Context) error { return f.err }

func newTestService(src StreamSource, n Notifier, s SettingsStore, ns NotificationStore) *LiveCheckService {
	return &LiveCheckService{
		twitchClient: src,
		notifier:     n,
		settings:     s,
		notifStore:   ns,
		tokenService: fakeToken{},
		sessions:     map[int64]*ChatSession{},
	}
}

func liveStream(login, userID, gameID, title string) models.LiveStream {
	return models.LiveStream{
		Profile: models.TwitchUserInfo{UserID: userID, Login: login, DisplayName: login},
		Stream: models.Stream{
			UserId:    userID,
			UserLogin: login,
			UserName:  login,
			GameId:    gameID,
			Title:     title,
		},
	}
}

func TestRefreshChatReconcilesDiff(t *testing.T) {
	src := &fakeStreamSource{
		gameNamesByID: map[string]string{"509658": "Just Chatting"},
		followers:     map[string]uint64{},
	}
	notifier := &fakeNotifier{}
	store := &fakeNotifStore{records: map[int64][]models.ChatNotification{
		7: {
			{MessageID: 1, UserLogin: "alice", UserID: "ua"},
			{MessageID: 2, UserLogin: "bob", UserID: "ub"},
			{MessageID: 3, UserLogin: "carol", UserID: "uc"},
		},
	}}

	lcs := newTestService(src, notifier, &fakeSettings{}, store)
	sess := newChatSession(7)

	set := &chatLiveSet{
		channelID: 7,
		streams: map[string]models.LiveStream{
			"bob":   liveStream("bob", "ub", "509658", "still here"),
			"carol": liveStream("carol", "uc", "509658", "still here"),
			"dave":  liveStream("dave", "ud", "509658", "just went live"),
		},
	}
	gameMap := models.NewCategoryMap(map[string]string{"Just Chatting": "509658"})

	if err := lcs.refreshChat(context.Background(), sess, set, gameMap); err != nil {
		t.Fatalf("refreshChat: %v", err)
	}

	if diff := cmp.Diff([]int{1}, notifier.deleted); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}

	sort.Ints(notifier.edited)
	if diff := cmp.Diff([]int{2, 3}, notifier.edited); diff != "" {
		t.Errorf("edited messages mismatch (-want +got):\n%s", diff)
	}

	if notifier.sends != 1 {
		t.Errorf("expected 1 new message, got %d", notifier.sends)
	}

	want := []models.ChatNotification{
		{MessageID: 2, UserLogin: "bob", UserID: "ub"},
		{MessageID: 3, UserLogin: "carol", UserID: "uc"},
		{MessageID: 100, UserLogin: "dave", UserID: "ud"},
	}
	got := store.records[7]
	sort.Slice(got, func(i, j int) bool { return got[i].UserLogin < got[j].UserLogin })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("persisted baseline mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshChatSingleFlight(t *testing.T) {
	src := &fakeStreamSource{followers: map[string]uint64{}}
	notifier := &fakeNotifier{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := &fakeNotifStore{}

	lcs := newTestService(src, notifier, &fakeSettings{}, store)
	sess := newChatSession(7)

	set := &chatLiveSet{
		channelID: 7,
		streams: map[string]models.LiveStream{
			"alice": liveStream("alice", "ua", "", "hello"),
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- lcs.refreshChat(context.Background(), sess, set, nil)
	}()

	<-notifier.entered

	if err := lcs.refreshChat(context.Background(), sess, set, nil); !errors.Is(err, models.ErrChatLocked) {
		t.Errorf("expected ErrChatLocked while refresh in flight, got %v", err)
	}
	if !sess.Updating() {
		t.Error("session should report updating while refresh in flight")
	}

	close(notifier.release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	notifier.entered = nil
	if err := lcs.refreshChat(context.Background(), sess, set, nil); err != nil {
		t.Errorf("refresh after unlock should succeed, got %v", err)
	}
}

func TestFilterCategoryMode(t *testing.T) {
	gameMap := models.NewCategoryMap(map[string]string{"factorio": "12345"})

	flat := map[string]models.LiveStream{
		"alice": liveStream("alice", "ua", "12345", "building a base"),
		"bob":   liveStream("bob", "ub", "12345", "speedrun"),
		"carol": liveStream("carol", "uc", "99999", "unmapped category"),
		"dave":  liveStream("dave", "ud", "", "no category at all"),
	}

	f := &chatFilters{
		trackedGames: []string{"factorio"},
		blacklist:    map[string]struct{}{"bob": {}},
	}

	out := filterChatStreams(f, flat, gameMap)

	if _, ok := out["alice"]; !ok {
		t.Error("alice streams the tracked category and should be included")
	}
	if _, ok := out["bob"]; ok {
		t.Error("bob is blacklisted and should be excluded")
	}
	if _, ok := out["carol"]; ok {
		t.Error("carol's category is not the tracked one and should be excluded")
	}
	if _, ok := out["dave"]; ok {
		t.Error("dave has no category and should be excluded in category mode")
	}
}

func TestFilterLoginModeToleratesUnmappedCategory(t *testing.T) {
	gameMap := models.NewCategoryMap(map[string]string{"Factorio": "12345"})

	flat := map[string]models.LiveStream{
		"alice": liveStream("alice", "ua", "99999", "playing something obscure"),
		"bob":   liveStream("bob", "ub", "12345", "factory must grow"),
	}

	f := &chatFilters{
		trackedStreamers: []string{"alice", "bob"},
		whitelist:        map[string]struct{}{"minecraft": {}},
	}

	out := filterChatStreams(f, flat, gameMap)

	// the whitelist only excludes a subscribed streamer when the category
	// actually resolves to a name
	if _, ok := out["alice"]; !ok {
		t.Error("alice's category is unmapped, the whitelist should not exclude her")
	}
	if _, ok := out["bob"]; ok {
		t.Error("bob's category resolves and is not whitelisted, he should be excluded")
	}
}

func TestFilterRequiredPhrases(t *testing.T) {
	flat := map[string]models.LiveStream{
		"alice": liveStream("alice", "ua", "", "Chill DRG session tonight"),
		"bob":   liveStream("bob", "ub", "", "ranked grind"),
	}

	f := &chatFilters{
		trackedStreamers: []string{"alice", "bob"},
		phrases:          []string{"drg", "deep rock"},
	}

	out := filterChatStreams(f, flat, models.NewCategoryMap(nil))

	if _, ok := out["alice"]; !ok {
		t.Error("alice's title contains a required phrase and should be included")
	}
	if _, ok := out["bob"]; ok {
		t.Error("bob's title contains no required phrase and should be excluded")
	}
}

func TestFilterFirstMatchWins(t *testing.T) {
	gameMap := models.NewCategoryMap(map[string]string{"factorio": "12345"})

	flat := map[string]models.LiveStream{
		"alice": liveStream("alice", "ua", "12345", "the factory grows"),
	}

	f := &chatFilters{
		trackedGames:     []string{"factorio"},
		trackedStreamers: []string{"alice"},
	}

	out := filterChatStreams(f, flat, gameMap)

	if len(out) != 1 {
		t.Fatalf("expected exactly one entry for a stream matched by both modes, got %d", len(out))
	}
	if _, ok := out["alice"]; !ok {
		t.Error("alice should be present once")
	}
}

func TestGatherSkipsChatsWithoutChannel(t *testing.T) {
	src := &fakeStreamSource{
		userStreams: []models.Stream{
			{UserId: "ua", UserLogin: "alice", UserName: "Alice", GameId: ""},
		},
		users: []models.TwitchUserInfo{
			{UserID: "ua", Login: "alice"},
		},
		followers: map[string]uint64{},
	}

	settingsStore := &fakeSettings{
		lists: map[int64]map[string][]string{
			2: {"tracked_streamers": {"alice"}},
		},
		scalars: map[int64]map[string]string{
			1: {"channel_id": "0"},
			2: {"channel_id": "777"},
		},
	}

	lcs := newTestService(src, &fakeNotifier{}, settingsStore, &fakeNotifStore{})

	sets, _, err := lcs.gatherStreamsForChats(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("gatherStreamsForChats: %v", err)
	}

	if _, ok := sets[1]; ok {
		t.Error("chat 1 has no output channel and should sit the cycle out")
	}

	set, ok := sets[2]
	if !ok {
		t.Fatal("chat 2 has an output channel and should be in the cycle")
	}
	if set.channelID != 777 {
		t.Errorf("expected channel 777, got %d", set.channelID)
	}
	if _, ok := set.streams["alice"]; !ok {
		t.Error("alice is tracked and live, she should be in chat 2's set")
	}
}

func TestGatherReportsChannelLookupFailure(t *testing.T) {
	src := &fakeStreamSource{followers: map[string]uint64{}}

	settingsStore := &fakeSettings{
		scalars: map[int64]map[string]string{
			1: {"channel_id": "0"},
		},
		scalarErrs: map[int64]error{
			2: errors.New("settings store unavailable"),
		},
	}

	lcs := newTestService(src, &fakeNotifier{}, settingsStore, &fakeNotifStore{})

	sets, _, err := lcs.gatherStreamsForChats(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("gatherStreamsForChats: %v", err)
	}

	if len(sets) != 0 {
		t.Errorf("neither chat should be in the cycle, got %d", len(sets))
	}

	// an unconfigured channel is normal and stays quiet, a store failure
	// must reach the operator report
	if len(lcs.pendingFailures) != 1 {
		t.Fatalf("expected exactly the store failure queued, got %v", lcs.pendingFailures)
	}
	if !strings.Contains(lcs.pendingFailures[0], "chat 2 channel lookup failed") {
		t.Errorf("queued report should name the failing chat, got %q", lcs.pendingFailures[0])
	}
}

func TestFlushFailuresKeepsRemainderOnSendError(t *testing.T) {
	notifier := &fakeNotifier{sendTextFailAfter: 1}

	lcs := newTestService(&fakeStreamSource{}, notifier, &fakeSettings{}, &fakeNotifStore{})
	lcs.operatorChatID = 42

	lcs.queueFailure("first failure")
	lcs.queueFailure("second failure")
	lcs.queueFailure("third failure")

	lcs.flushFailures(context.Background())

	if len(notifier.texts) != 1 || !strings.HasSuffix(notifier.texts[0], "first failure") {
		t.Errorf("expected exactly the first report delivered, got %v", notifier.texts)
	}
	if len(lcs.pendingFailures) != 2 {
		t.Fatalf("expected 2 reports kept for the next cycle, got %d", len(lcs.pendingFailures))
	}
	if !strings.HasSuffix(lcs.pendingFailures[0], "second failure") {
		t.Errorf("undelivered reports should stay in order, got %v", lcs.pendingFailures)
	}

	// next cycle with a healthy channel drains the queue
	notifier.sendTextFailAfter = 0
	lcs.flushFailures(context.Background())

	if len(lcs.pendingFailures) != 0 {
		t.Errorf("expected an empty queue after a successful flush, got %v", lcs.pendingFailures)
	}
	if len(notifier.texts) != 3 {
		t.Errorf("expected all 3 reports delivered in total, got %d", len(notifier.texts))
	}
}
