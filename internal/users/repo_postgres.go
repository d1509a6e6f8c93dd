package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists users in the users table.
//
// Schema assumptions:
// - users(id BIGSERIAL PK, email, first_name, last_name, login UNIQUE,
//   roles JSONB, password_hash, application_id, created_at, created_by,
//   deleted_at, deleted_by, is_deleted)
// - Login uniqueness is enforced by the database, case policy included.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, first_name, last_name, login, roles, password_hash,
       application_id, created_at, created_by, deleted_at, deleted_by, is_deleted`

func (s *PostgresStore) FindByLogin(ctx context.Context, login string) (User, bool, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE login = $1 AND is_deleted = FALSE`, userColumns)
	return s.queryOne(ctx, q, login)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (User, bool, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND is_deleted = FALSE`, userColumns)
	return s.queryOne(ctx, q, id)
}

func (s *PostgresStore) FindOneForApplication(ctx context.Context, id, applicationID int64) (User, bool, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND application_id = $2 AND is_deleted = FALSE`, userColumns)
	return s.queryOne(ctx, q, id, applicationID)
}

func (s *PostgresStore) FindAllForApplication(ctx context.Context, applicationID int64, page, perPage int) ([]User, error) {
	if page < 1 {
		page = 1
	}
	q := fmt.Sprintf(`
SELECT %s FROM users
WHERE application_id = $1 AND is_deleted = FALSE
ORDER BY id
LIMIT $2 OFFSET $3`, userColumns)

	rows, err := s.db.QueryContext(ctx, q, applicationID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, u User) (User, error) {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return User{}, err
	}
	const q = `
INSERT INTO users (
  email, first_name, last_name, login, roles, password_hash,
  application_id, created_at, created_by, deleted_at, deleted_by, is_deleted
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id`
	err = s.db.QueryRowContext(ctx, q,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Login,
		roles,
		u.PasswordHash,
		u.ApplicationID,
		u.CreatedAt,
		nullableID(u.CreatedBy),
		nullableTime(u.DeletedAt),
		nullableID(u.DeletedBy),
		u.IsDeleted,
	).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) Update(ctx context.Context, u User) (User, error) {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return User{}, err
	}
	const q = `
UPDATE users SET
  email = $2, first_name = $3, last_name = $4, roles = $5, password_hash = $6,
  deleted_at = $7, deleted_by = $8, is_deleted = $9
WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		roles,
		u.PasswordHash,
		nullableTime(u.DeletedAt),
		nullableID(u.DeletedBy),
		u.IsDeleted,
	)
	if err != nil {
		return User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if n == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) queryOne(ctx context.Context, q string, args ...any) (User, bool, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

func scanUser(row rowScanner) (User, error) {
	var (
		u         User
		roles     []byte
		createdBy sql.NullInt64
		deletedAt sql.NullTime
		deletedBy sql.NullInt64
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Login,
		&roles,
		&u.PasswordHash,
		&u.ApplicationID,
		&u.CreatedAt,
		&createdBy,
		&deletedAt,
		&deletedBy,
		&u.IsDeleted,
	)
	if err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return User{}, fmt.Errorf("users: decode roles: %w", err)
	}
	if createdBy.Valid {
		u.CreatedBy = &createdBy.Int64
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	if deletedBy.Valid {
		u.DeletedBy = &deletedBy.Int64
	}
	return u, nil
}

func nullableID(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
