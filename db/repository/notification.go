package repository

import (
	"context"
	"database/sql"

	"twitch_live_notifier/internal/models"

	"github.com/pkg/errors"
)

func (dbr *DBRepository) GetChatNotifications(ctx context.Context, chatId int64) (records []models.ChatNotification, err error) {

	query := `
				select
					clm.message_id,
					clm.user_login,
					clm.user_id
				from chat_live_messages clm
				where clm.chat_id = $1
				order by clm.id;
			`

	err = dbr.db.SelectContext(ctx, &records, query, chatId)
	if err != nil {
		return nil, err
	}

	return
}

// ReplaceChatNotifications swaps a chat's whole record set in one
// transaction. A full replace, not a merge, so a crash mid-cycle can never
// leave stale entries behind the new baseline.
func (dbr *DBRepository) ReplaceChatNotifications(ctx context.Context, chatId int64, records []models.ChatNotification) (err error) {

	tx, err := dbr.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "BeginTxx")
	}

	defer tx.Rollback()

	deleteQuery := `
				delete from chat_live_messages
				where chat_id = $1;
	`

	if _, err = tx.ExecContext(ctx, deleteQuery, chatId); err != nil {
		return errors.Wrap(err, "delete")
	}

	insertQuery := `
				insert into chat_live_messages (chat_id, message_id, user_login, user_id)
					values ($1, $2, $3, $4);
	`

	for _, record := range records {
		if _, err = tx.ExecContext(ctx, insertQuery, chatId, record.MessageID, record.UserLogin, record.UserID); err != nil {
			return errors.Wrap(err, "insert")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "Commit")
	}

	return
}
