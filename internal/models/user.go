package models

import "time"

type UsersPage struct {
	Data *[]TwitchUserInfo `json:"data"`
}

type TwitchUserInfo struct {
	UserID          string    `json:"id"`                // User’s ID
	Login           string    `json:"login"`             // User’s login name
	DisplayName     string    `json:"display_name"`      // User’s display name
	Type            string    `json:"type"`              // "staff", "admin", "global_mod", or ""
	BroadcasterType string    `json:"broadcaster_type"`  // "partner", "affiliate", or ""
	Description     string    `json:"description"`       // User’s channel description
	ProfileImageUrl string    `json:"profile_image_url"` // URL of the user’s profile image
	OfflineImageUrl string    `json:"offline_image_url"` // URL of the user’s offline image
	ViewCount       uint64    `json:"view_count"`        // Total channel views. DEPRECATED by Twitch but still served
	CreatedAt       time.Time `json:"created_at"`        // Date when the user was created
}

// FollowsPage carries the only field we read from /users/follows.
type FollowsPage struct {
	Total *uint64 `json:"total"`
}
