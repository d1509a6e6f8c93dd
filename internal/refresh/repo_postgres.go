package refresh

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists refresh tokens.
//
// Schema assumptions:
// - refresh_tokens(id BIGSERIAL PK, token UNIQUE, user_id, valid_until)
// - No UPDATE or DELETE is ever issued against this table by the application.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, t Token) (Token, error) {
	const q = `
INSERT INTO refresh_tokens (token, user_id, valid_until)
VALUES ($1, $2, $3)
RETURNING id`
	if err := s.db.QueryRowContext(ctx, q, t.Token, t.UserID, t.ValidUntil).Scan(&t.ID); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (Token, bool, error) {
	const q = `
SELECT id, token, user_id, valid_until
FROM refresh_tokens
WHERE token = $1`
	var t Token
	err := s.db.QueryRowContext(ctx, q, token).Scan(&t.ID, &t.Token, &t.UserID, &t.ValidUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, false, nil
		}
		return Token{}, false, err
	}
	return t, true, nil
}
