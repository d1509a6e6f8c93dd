package accounts

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, name, created_at, deleted_at, is_deleted`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (Account, bool, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND is_deleted = FALSE`

	var (
		a         Account
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &deletedAt, &a.IsDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return a, true, nil
}

func (s *PostgresStore) FindAll(ctx context.Context, page, perPage int) ([]Account, error) {
	if page < 1 {
		page = 1
	}
	const q = `
SELECT ` + accountColumns + ` FROM accounts
WHERE is_deleted = FALSE
ORDER BY id
LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var (
			a         Account
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &deletedAt, &a.IsDeleted); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			a.DeletedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
