package formater

import (
	"fmt"
	"regexp"
	"strings"

	"twitch_live_notifier/internal/models"
)

const (
	NoCategoryLabel      = "(No Category)"
	UnknownCategoryLabel = "(Unknown Category)"
)

var tagPattern = regexp.MustCompile(`@[^\s.,!?]+`)

func ToLower(text string) string {
	return strings.ToLower(text)
}

// clear all @ symbols in tag substrings because we can interpret it wrong
func ClearTags(text string) string {
	matches := tagPattern.FindAllString(text, -1)
	for _, match := range matches {
		text = strings.ReplaceAll(text, match, match[1:])
	}

	return text
}

// LiveMessageText builds the notification message for one live stream.
func LiveMessageText(ls models.LiveStream, gameName string, followers uint64) string {

	title := strings.TrimSpace(ls.Stream.Title)
	if title == "" {
		title = "(blank title)"
	}

	broadcasterType := ls.Profile.BroadcasterType
	if broadcasterType == "" {
		broadcasterType = "non-affiliate"
	}

	description := ls.Profile.Description
	if description == "" {
		description = "No description"
	}

	twitchLink := fmt.Sprintf("%s/%s", models.TwitchWWWSchemeHost, ls.Profile.Login)
	thumbnail := ThumbnailURL(ls.Stream.ThumbnailUrl, 256, 144)

	return fmt.Sprintf(`%s is live on Twitch, playing %s
"%s"
Duration: %s
Viewers: %d, Followers: %d, Total views: %d
Status: %s
%s
%s
%s`,
		ls.Stream.UserName,
		gameName,
		ClearTags(title),
		CreateStreamDuration(ls.Stream.StartedAt),
		ls.Stream.ViewerCount,
		followers,
		ls.Profile.ViewCount,
		broadcasterType,
		description,
		twitchLink,
		thumbnail)
}
