package models

import "time"

const TwitchWWWSchemeHost = "https://www.twitch.tv"

type StreamType string

var StreamLive StreamType = "live"

// StreamsPage is one page of a helix /streams response. Data is a pointer so
// a payload that dropped the field entirely can be told apart from an empty
// page.
type StreamsPage struct {
	Data       *[]Stream   `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

type Stream struct {
	StreamId     string     `json:"id"`            // Stream ID
	UserId       string     `json:"user_id"`       // ID of the user who is streaming
	UserLogin    string     `json:"user_login"`    // Login of the user who is streaming
	UserName     string     `json:"user_name"`     // Display name corresponding to user_id
	GameId       string     `json:"game_id"`       // ID of the game being played, sometimes empty
	StreamType   StreamType `json:"type"`          // Stream type: "live" or "" (in case of error)
	Title        string     `json:"title"`         // Stream title
	ViewerCount  uint64     `json:"viewer_count"`  // Number of viewers at the time of the query
	StartedAt    time.Time  `json:"started_at"`    // UTC timestamp
	Lang         string     `json:"language"`      // Stream language
	ThumbnailUrl string     `json:"thumbnail_url"` // Template URL, {width} and {height} to be substituted
	IsMature     bool       `json:"is_mature"`
}

type Pagination struct {
	Cursor string `json:"cursor"`
}

// LiveStream pairs a live stream with its broadcaster profile. The aggregation
// phase produces one per live login and every later consumer works off it.
type LiveStream struct {
	Profile TwitchUserInfo
	Stream  Stream
}
