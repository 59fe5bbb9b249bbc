package models

// ChatNotification identifies one live-stream message currently posted for a
// chat. At most one record exists per user login per chat; the message id
// stays stable while the stream is live and the record dies with the stream.
type ChatNotification struct {
	MessageID int    `db:"message_id"`
	UserLogin string `db:"user_login"`
	UserID    string `db:"user_id"`
}
