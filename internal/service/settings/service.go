package settings

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// listDelimiter joins list values into the single stored string. It never
// leaks past this package: callers always see []string.
const listDelimiter = "^^"

// Keys of the canonical per-chat schema.
const (
	KeyTrackedStreamers     = "tracked_streamers"
	KeyTrackedGames         = "tracked_games"
	KeyBlacklistedStreamers = "blacklisted_streamers"
	KeyWhitelistedGames     = "whitelisted_games"
	KeyTitleContains        = "title_contains"
	KeyChannelID            = "channel_id"
)

// defaultSchema holds the full set of keys every chat must carry and their
// default values. Verify reconciles persisted settings against it.
var defaultSchema = map[string]string{
	KeyTrackedStreamers:     "",
	KeyTrackedGames:         "",
	KeyBlacklistedStreamers: "",
	KeyWhitelistedGames:     "",
	KeyTitleContains:        "",
	KeyChannelID:            "0",
}

type Repository interface {
	GetChatSetting(ctx context.Context, chatId int64, key string) (*string, error)
	UpsertChatSetting(ctx context.Context, chatId int64, key, value string) error
	DeleteChatSetting(ctx context.Context, chatId int64, key string) error
	ListChatSettings(ctx context.Context, chatId int64) (map[string]string, error)
	ListChatIDs(ctx context.Context) ([]int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Get returns the list stored under key. Empty elements are filtered on
// read; an absent key reads as its schema default.
func (s *Service) Get(ctx context.Context, chatId int64, key string) ([]string, error) {

	raw, err := s.GetScalar(ctx, chatId, key)
	if err != nil {
		return nil, err
	}

	return splitList(raw), nil
}

// GetScalar returns the raw stored value, falling back to the schema default
// when the key is absent.
func (s *Service) GetScalar(ctx context.Context, chatId int64, key string) (string, error) {

	value, err := s.repo.GetChatSetting(ctx, chatId, key)
	if err != nil {
		return "", errors.Wrap(err, "GetChatSetting")
	}

	if value == nil {
		return defaultSchema[key], nil
	}

	return *value, nil
}

// Modify replaces the whole list stored under key. The change is persisted
// before returning success.
func (s *Service) Modify(ctx context.Context, chatId int64, key string, values []string) error {

	filtered := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			filtered = append(filtered, v)
		}
	}

	err := s.repo.UpsertChatSetting(ctx, chatId, key, strings.Join(filtered, listDelimiter))
	if err != nil {
		return errors.Wrap(err, "UpsertChatSetting")
	}

	return nil
}

// SetScalar stores a single-valued setting.
func (s *Service) SetScalar(ctx context.Context, chatId int64, key, value string) error {

	err := s.repo.UpsertChatSetting(ctx, chatId, key, value)
	if err != nil {
		return errors.Wrap(err, "UpsertChatSetting")
	}

	return nil
}

// Toggle adds item to the list under key if absent, removes it if present.
// The returned bool reports whether the item is present after the call.
func (s *Service) Toggle(ctx context.Context, chatId int64, key, item string) (bool, error) {

	items, err := s.Get(ctx, chatId, key)
	if err != nil {
		return false, err
	}

	for i, existing := range items {
		if existing == item {
			items = append(items[:i], items[i+1:]...)
			return false, s.Modify(ctx, chatId, key, items)
		}
	}

	items = append(items, item)
	return true, s.Modify(ctx, chatId, key, items)
}

// Verify reconciles a chat's persisted settings against the canonical
// schema: missing keys get their defaults, keys outside the schema are
// removed. Returns how many changes were applied; calling it again right
// away reports zero.
func (s *Service) Verify(ctx context.Context, chatId int64) (int, error) {

	stored, err := s.repo.ListChatSettings(ctx, chatId)
	if err != nil {
		return 0, errors.Wrap(err, "ListChatSettings")
	}

	changes := 0

	for key, defaultValue := range defaultSchema {
		if _, ok := stored[key]; ok {
			continue
		}
		if err := s.repo.UpsertChatSetting(ctx, chatId, key, defaultValue); err != nil {
			return changes, errors.Wrap(err, "UpsertChatSetting")
		}
		changes++
	}

	for key := range stored {
		if _, ok := defaultSchema[key]; ok {
			continue
		}
		if err := s.repo.DeleteChatSetting(ctx, chatId, key); err != nil {
			return changes, errors.Wrap(err, "DeleteChatSetting")
		}
		changes++
	}

	return changes, nil
}

// ListChatIDs enumerates every chat that has any settings persisted, used
// for session bootstrap on startup.
func (s *Service) ListChatIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListChatIDs(ctx)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, listDelimiter)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			items = append(items, part)
		}
	}

	return items
}
