package settings

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeRepo struct {
	data map[int64]map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{data: map[int64]map[string]string{}}
}

func (f *fakeRepo) GetChatSetting(_ context.Context, chatId int64, key string) (*string, error) {
	value, ok := f.data[chatId][key]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (f *fakeRepo) UpsertChatSetting(_ context.Context, chatId int64, key, value string) error {
	if f.data[chatId] == nil {
		f.data[chatId] = map[string]string{}
	}
	f.data[chatId][key] = value
	return nil
}

func (f *fakeRepo) DeleteChatSetting(_ context.Context, chatId int64, key string) error {
	delete(f.data[chatId], key)
	return nil
}

func (f *fakeRepo) ListChatSettings(_ context.Context, chatId int64) (map[string]string, error) {
	out := map[string]string{}
	for key, value := range f.data[chatId] {
		out[key] = value
	}
	return out, nil
}

func (f *fakeRepo) ListChatIDs(_ context.Context) ([]int64, error) {
	ids := []int64{}
	for id := range f.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestVerifyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	changes, err := svc.Verify(ctx, 42)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if changes != len(defaultSchema) {
		t.Fatalf("first verify applied %d changes, want %d", changes, len(defaultSchema))
	}

	changes, err = svc.Verify(ctx, 42)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if changes != 0 {
		t.Fatalf("second verify applied %d changes, want 0", changes)
	}
}

func TestVerifyRemovesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	if _, err := svc.Verify(ctx, 7); err != nil {
		t.Fatalf("seed verify: %v", err)
	}
	if err := repo.UpsertChatSetting(ctx, 7, "deprecated_key", "x"); err != nil {
		t.Fatal(err)
	}

	changes, err := svc.Verify(ctx, 7)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if changes != 1 {
		t.Fatalf("verify applied %d changes, want 1", changes)
	}
	if _, ok := repo.data[7]["deprecated_key"]; ok {
		t.Fatal("deprecated key survived verify")
	}
}

func TestToggleMembership(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	present, err := svc.Toggle(ctx, 1, KeyTrackedStreamers, "sodapoppin")
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("first toggle should add the item")
	}

	got, err := svc.Get(ctx, 1, KeyTrackedStreamers)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"sodapoppin"}, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	present, err = svc.Toggle(ctx, 1, KeyTrackedStreamers, "sodapoppin")
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("second toggle should remove the item")
	}

	got, err = svc.Get(ctx, 1, KeyTrackedStreamers)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestGetFiltersEmptyElements(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	// a raw value with dangling delimiters should read back clean
	if err := repo.UpsertChatSetting(ctx, 3, KeyTrackedGames, "Factorio^^^^Noita^^"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, 3, KeyTrackedGames)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Factorio", "Noita"}, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestModifyListInListOut(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	want := []string{"lirik", "summit1g", "cohhcarnage"}
	if err := svc.Modify(ctx, 5, KeyTrackedStreamers, want); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, 5, KeyTrackedStreamers)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestAbsentKeyReadsAsDefault(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	channel, err := svc.GetScalar(ctx, 9, KeyChannelID)
	if err != nil {
		t.Fatal(err)
	}
	if channel != "0" {
		t.Fatalf("channel_id default = %q, want %q", channel, "0")
	}

	list, err := svc.Get(ctx, 9, KeyWhitelistedGames)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty default list, got %v", list)
	}
}
