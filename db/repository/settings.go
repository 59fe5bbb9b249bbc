package repository

import (
	"context"
	"database/sql"
)

// Chat settings are stored one row per (chat_id, key). Values are opaque
// strings here; list encoding and decoding belongs to the settings service.

func (dbr *DBRepository) GetChatSetting(ctx context.Context, chatId int64, key string) (value *string, err error) {

	query := `
				select
					cs.value
				from chat_settings cs
				where cs.chat_id = $1
					and cs.key = $2;
			`

	err = dbr.db.GetContext(ctx, &value, query, chatId, key)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return
}

func (dbr *DBRepository) UpsertChatSetting(ctx context.Context, chatId int64, key, value string) (err error) {

	query := `
				insert into chat_settings (chat_id, key, value)
					values ($1, $2, $3)
				on conflict (chat_id, key)
					do update
					set (value, updated_at) = ($3, now());
	`

	res, err := dbr.db.ExecContext(ctx, query, chatId, key, value)
	if err != nil {
		return err
	}

	_, err = res.RowsAffected()
	if err != nil {
		return err
	}

	return
}

func (dbr *DBRepository) DeleteChatSetting(ctx context.Context, chatId int64, key string) (err error) {

	query := `
				delete from chat_settings
				where chat_id = $1
					and key = $2;
	`

	_, err = dbr.db.ExecContext(ctx, query, chatId, key)

	return
}

func (dbr *DBRepository) ListChatSettings(ctx context.Context, chatId int64) (settings map[string]string, err error) {

	query := `
				select
					cs.key,
					cs.value
				from chat_settings cs
				where cs.chat_id = $1;
			`

	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}

	err = dbr.db.SelectContext(ctx, &rows, query, chatId)
	if err != nil {
		return nil, err
	}

	settings = make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}

	return
}

func (dbr *DBRepository) ListChatIDs(ctx context.Context) (chatIds []int64, err error) {

	query := `
				select distinct
					cs.chat_id
				from chat_settings cs
				order by cs.chat_id;
			`

	err = dbr.db.SelectContext(ctx, &chatIds, query)
	if err != nil {
		return nil, err
	}

	return
}
