package formater

import (
	"strings"
	"testing"
	"time"

	"twitch_live_notifier/internal/models"
)

func TestClearTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"raid from @someone!", "raid from someone!"},
		{"@a @b collab", "a b collab"},
		{"no tags here", "no tags here"},
	}

	for _, tc := range cases {
		if got := ClearTags(tc.in); got != tc.want {
			t.Errorf("ClearTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestThumbnailURL(t *testing.T) {
	got := ThumbnailURL("https://cdn.example/preview-{width}x{height}.jpg", 256, 144)
	want := "https://cdn.example/preview-256x144.jpg"
	if got != want {
		t.Errorf("ThumbnailURL = %q, want %q", got, want)
	}
}

func TestLiveMessageText(t *testing.T) {
	ls := models.LiveStream{
		Profile: models.TwitchUserInfo{
			Login:           "somestreamer",
			DisplayName:     "SomeStreamer",
			BroadcasterType: "",
			ViewCount:       1000,
		},
		Stream: models.Stream{
			UserName:     "SomeStreamer",
			Title:        "chill run with @friend",
			ViewerCount:  42,
			StartedAt:    time.Now().Add(-time.Hour),
			ThumbnailUrl: "https://cdn.example/live-{width}x{height}.jpg",
		},
	}

	text := LiveMessageText(ls, "Just Chatting", 7)

	for _, want := range []string{
		"SomeStreamer is live on Twitch, playing Just Chatting",
		"chill run with friend",
		"Viewers: 42, Followers: 7, Total views: 1000",
		"non-affiliate",
		models.TwitchWWWSchemeHost + "/somestreamer",
		"https://cdn.example/live-256x144.jpg",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}
