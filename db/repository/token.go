package repository

import (
	"context"
	"database/sql"
	"errors"
)

func (dbr *DBRepository) GetNotExpiredToken(ctx context.Context) (token *string, err error) {

	query := `
		select
			tt."token"
		from twitch_tokens tt
		where tt.is_expired = false
		order by tt.created_at
		desc
		limit 1;
	`

	err = dbr.db.GetContext(ctx, &token, query)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return
}

func (dbr *DBRepository) AddToken(ctx context.Context, token string) (err error) {

	query := `
		insert into twitch_tokens ("token") values ($1);
	`

	res, err := dbr.db.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	_, err = res.RowsAffected()
	if err != nil {
		return err
	}

	return
}

// RotateToken stores the fresh token and expires the old one in a single
// transaction, so a crash in between cannot leave the table without a
// usable token.
func (dbr *DBRepository) RotateToken(ctx context.Context, oldToken, newToken string) (err error) {

	tx, err := dbr.BeginTxx(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	insertQuery := `
		insert into twitch_tokens ("token") values ($1);
	`

	_, err = tx.ExecContext(ctx, insertQuery, newToken)
	if err != nil {
		return err
	}

	expireQuery := `
		update twitch_tokens
		set is_expired = true
		where "token" = $1;
	`

	res, err := tx.ExecContext(ctx, expireQuery, oldToken)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n < 1 {
		return errors.New("token not found")
	}

	return tx.Commit()
}
