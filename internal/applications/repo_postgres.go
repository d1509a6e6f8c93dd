package applications

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

const applicationColumns = `id, public_id, name, contact_email, account_id, created_at, deleted_at, is_deleted`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (Application, bool, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 AND is_deleted = FALSE`

	a, err := scanApplication(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, false, nil
		}
		return Application{}, false, err
	}
	return a, true, nil
}

func (s *PostgresStore) FindAllForAccount(ctx context.Context, accountID int64, page, perPage int) ([]Application, error) {
	if page < 1 {
		page = 1
	}
	const q = `
SELECT ` + applicationColumns + ` FROM applications
WHERE account_id = $1 AND is_deleted = FALSE
ORDER BY id
LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, q, accountID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		a         Application
		deletedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.PublicID, &a.Name, &a.ContactEmail, &a.AccountID, &a.CreatedAt, &deletedAt, &a.IsDeleted)
	if err != nil {
		return Application{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return a, nil
}
