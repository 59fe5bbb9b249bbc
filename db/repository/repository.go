package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{
		db: db,
	}
}

func (dbr *DBRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return dbr.db.BeginTxx(ctx, &sql.TxOptions{})
}
