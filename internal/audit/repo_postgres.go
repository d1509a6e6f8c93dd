package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo persists audit events. Insert-only: the table carries no
// update or delete path on purpose.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
		INSERT INTO audit_events
			(id, event_type, application_id, actor_user_id, login, ip_address, subject, "right", message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	appID := sql.NullInt64{Int64: e.ApplicationID, Valid: e.ApplicationID != 0}
	actorID := sql.NullInt64{Int64: e.ActorUserID, Valid: e.ActorUserID != 0}

	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, appID, actorID, e.Login, e.IPAddress, e.Subject, e.Right, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
