package live_check

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"twitch_live_notifier/internal/models"
	"twitch_live_notifier/internal/service/settings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// errNoOutputChannel marks a chat whose channel_id setting is absent or
// zero, as opposed to a settings-store failure.
var errNoOutputChannel = errors.New("no output channel configured")

// chatLiveSet is one chat's slice of a poll cycle: the resolved output
// channel and the live streams that passed its filters, keyed by login.
type chatLiveSet struct {
	channelID int64
	streams   map[string]models.LiveStream
}

// chatFilters is a chat's filter configuration snapshotted for one cycle.
type chatFilters struct {
	trackedStreamers []string
	trackedGames     []string
	blacklist        map[string]struct{}
	whitelist        map[string]struct{}
	phrases          []string
}

func (lcs *LiveCheckService) outputChannel(ctx context.Context, chatID int64) (int64, error) {

	raw, err := lcs.settings.GetScalar(ctx, chatID, settings.KeyChannelID)
	if err != nil {
		return 0, errors.Wrap(err, "GetScalar channel_id")
	}

	channelID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || channelID == 0 {
		return 0, errors.Wrapf(errNoOutputChannel, "chat %d", chatID)
	}

	return channelID, nil
}

// gatherStreamsForChats computes the live set for every given chat in one
// pass. All tracked logins and category names are unioned into two global
// queries so request volume scales with batch count, not chat count; results
// are then re-split per chat through each chat's own filters.
func (lcs *LiveCheckService) gatherStreamsForChats(ctx context.Context, chatIDs []int64) (map[int64]*chatLiveSet, *models.CategoryMap, error) {

	sets := map[int64]*chatLiveSet{}
	filters := map[int64]*chatFilters{}
	loginUnion := map[string]struct{}{}
	gameNameUnion := map[string]struct{}{}

	for _, chatID := range chatIDs {

		// chats without a resolvable output channel sit the cycle out; a
		// settings-store failure is reported, not swallowed
		channelID, err := lcs.outputChannel(ctx, chatID)
		if err != nil {
			if !errors.Is(err, errNoOutputChannel) {
				logrus.Errorf("chat %d channel lookup failed: %v", chatID, err)
				lcs.queueFailure(fmt.Sprintf("chat %d channel lookup failed: %v", chatID, err))
			}
			continue
		}

		f, err := lcs.loadChatFilters(ctx, chatID)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "loadChatFilters %d", chatID)
		}

		for _, login := range f.trackedStreamers {
			loginUnion[login] = struct{}{}
		}
		for _, game := range f.trackedGames {
			gameNameUnion[game] = struct{}{}
		}

		filters[chatID] = f
		sets[chatID] = &chatLiveSet{channelID: channelID}
	}

	userStreams, err := lcs.twitchClient.GetStreamsByUserLogins(ctx, setToSlice(loginUnion))
	if err != nil {
		return nil, nil, errors.Wrap(err, "GetStreamsByUserLogins")
	}

	nameToID, err := lcs.twitchClient.GetGameIdsByNames(ctx, setToSlice(gameNameUnion))
	if err != nil {
		return nil, nil, errors.Wrap(err, "GetGameIdsByNames")
	}
	gameMap := models.NewCategoryMap(nameToID)

	gameIds := make([]string, 0, len(nameToID))
	for _, id := range nameToID {
		gameIds = append(gameIds, id)
	}

	gameStreams, err := lcs.twitchClient.GetStreamsByGameIds(ctx, gameIds)
	if err != nil {
		return nil, nil, errors.Wrap(err, "GetStreamsByGameIds")
	}

	// second resolution pass: live streams can reference categories nobody
	// registered as tracked
	unmapped := map[string]struct{}{}
	for _, stream := range userStreams {
		if stream.GameId != "" && !gameMap.HasID(stream.GameId) {
			unmapped[stream.GameId] = struct{}{}
		}
	}
	for _, stream := range gameStreams {
		if stream.GameId != "" && !gameMap.HasID(stream.GameId) {
			unmapped[stream.GameId] = struct{}{}
		}
	}
	if len(unmapped) > 0 {
		idToName, err := lcs.twitchClient.GetGameNamesByIds(ctx, setToSlice(unmapped))
		if err != nil {
			return nil, nil, errors.Wrap(err, "GetGameNamesByIds")
		}
		gameMap.Backfill(idToName)
	}

	// flatten both result sets into one login -> (profile, stream) map
	streamsByUserID := map[string]models.Stream{}
	for _, stream := range gameStreams {
		streamsByUserID[stream.UserId] = stream
	}
	for _, stream := range userStreams {
		streamsByUserID[stream.UserId] = stream
	}

	userIds := make([]string, 0, len(streamsByUserID))
	for id := range streamsByUserID {
		userIds = append(userIds, id)
	}

	profiles, err := lcs.twitchClient.GetUsersByIds(ctx, userIds)
	if err != nil {
		return nil, nil, errors.Wrap(err, "GetUsersByIds")
	}

	flat := map[string]models.LiveStream{}
	for _, profile := range profiles {
		stream, ok := streamsByUserID[profile.UserID]
		if !ok {
			continue
		}
		flat[profile.Login] = models.LiveStream{Profile: profile, Stream: stream}
	}

	for chatID, f := range filters {
		sets[chatID].streams = filterChatStreams(f, flat, gameMap)
	}

	return sets, gameMap, nil
}

func (lcs *LiveCheckService) loadChatFilters(ctx context.Context, chatID int64) (*chatFilters, error) {

	trackedStreamers, err := lcs.settings.Get(ctx, chatID, settings.KeyTrackedStreamers)
	if err != nil {
		return nil, err
	}
	trackedGames, err := lcs.settings.Get(ctx, chatID, settings.KeyTrackedGames)
	if err != nil {
		return nil, err
	}
	blacklist, err := lcs.settings.Get(ctx, chatID, settings.KeyBlacklistedStreamers)
	if err != nil {
		return nil, err
	}
	whitelist, err := lcs.settings.Get(ctx, chatID, settings.KeyWhitelistedGames)
	if err != nil {
		return nil, err
	}
	phrases, err := lcs.settings.Get(ctx, chatID, settings.KeyTitleContains)
	if err != nil {
		return nil, err
	}

	return &chatFilters{
		trackedStreamers: trackedStreamers,
		trackedGames:     trackedGames,
		blacklist:        sliceToSet(blacklist),
		whitelist:        sliceToSet(whitelist),
		phrases:          phrases,
	}, nil
}

// filterChatStreams applies one chat's filters to the cycle's flattened live
// map. Category matching runs first, then tracked logins; a stream admitted
// by one mode is not reconsidered by the other.
func filterChatStreams(f *chatFilters, flat map[string]models.LiveStream, gameMap *models.CategoryMap) map[string]models.LiveStream {

	out := map[string]models.LiveStream{}

	for _, category := range f.trackedGames {
		if len(f.whitelist) > 0 {
			if _, ok := f.whitelist[category]; !ok {
				continue
			}
		}
		for login, ls := range flat {
			if _, ok := f.blacklist[ls.Profile.Login]; ok {
				continue
			}
			if _, ok := out[login]; ok {
				continue
			}
			if !titleMatches(ls.Stream.Title, f.phrases) {
				continue
			}
			// streams occasionally come through with an empty game_id
			if ls.Stream.GameId == "" {
				continue
			}
			name, ok := gameMap.NameByID(ls.Stream.GameId)
			if !ok {
				continue
			}
			if name == category {
				out[login] = ls
			}
		}
	}

	for _, streamer := range f.trackedStreamers {
		if _, ok := f.blacklist[streamer]; ok {
			continue
		}
		ls, ok := flat[streamer]
		if !ok {
			continue
		}
		if _, ok := out[streamer]; ok {
			continue
		}
		if !titleMatches(ls.Stream.Title, f.phrases) {
			continue
		}
		// Unlike category matching, an explicit subscription with a missing
		// or unmapped game_id is tolerated: the whitelist only excludes when
		// the category is actually known.
		if len(f.whitelist) > 0 && ls.Stream.GameId != "" {
			if name, ok := gameMap.NameByID(ls.Stream.GameId); ok {
				if _, allowed := f.whitelist[strings.ToLower(name)]; !allowed {
					continue
				}
			}
		}
		out[streamer] = ls
	}

	return out
}

// titleMatches reports whether the title contains at least one required
// phrase, case-insensitively. No phrases configured means no restriction.
func titleMatches(title string, phrases []string) bool {
	if len(phrases) == 0 {
		return true
	}

	lowered := strings.ToLower(title)
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	return out
}

func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
