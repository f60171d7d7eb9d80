package simchat

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles simulated chat message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a simchat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const messageColumns = `id, webinar_id, appear_at_seconds, sender_name, sender_avatar, content, message_type, position`

// Create inserts one message.
func (r *Repository) Create(ctx context.Context, m *Message) error {
	const q = `INSERT INTO sim_chat_messages (webinar_id, appear_at_seconds, sender_name, sender_avatar, content, message_type, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`
	return r.pool.QueryRow(ctx, q, m.WebinarID, m.AppearAtSeconds, m.SenderName, m.SenderAvatar, m.Content, m.Type, m.Position).
		Scan(&m.ID)
}

// CreateBatch inserts imported messages in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, webinarID uuid.UUID, drafts []Draft) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO sim_chat_messages (webinar_id, appear_at_seconds, sender_name, content, message_type, position)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, d := range drafts {
		if _, err := tx.Exec(ctx, q, webinarID, d.AppearAtSeconds, d.SenderName, d.Content, d.Type, d.Position); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(drafts), nil
}

// ListByWebinar returns all messages for a webinar in appearance order.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM sim_chat_messages WHERE webinar_id = $1 ORDER BY appear_at_seconds, position`,
		webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.WebinarID, &m.AppearAtSeconds, &m.SenderName, &m.SenderAvatar, &m.Content, &m.Type, &m.Position); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListWindow returns messages appearing in (afterSeconds, uptoSeconds], the
// per-poll delta for a viewer.
func (r *Repository) ListWindow(ctx context.Context, webinarID uuid.UUID, afterSeconds, uptoSeconds int) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM sim_chat_messages
		 WHERE webinar_id = $1 AND appear_at_seconds > $2 AND appear_at_seconds <= $3
		 ORDER BY appear_at_seconds, position`,
		webinarID, afterSeconds, uptoSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.WebinarID, &m.AppearAtSeconds, &m.SenderName, &m.SenderAvatar, &m.Content, &m.Type, &m.Position); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete removes one message.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sim_chat_messages WHERE id = $1`, id)
	return err
}

// DeleteByWebinar removes all messages of a webinar (before re-import).
func (r *Repository) DeleteByWebinar(ctx context.Context, webinarID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sim_chat_messages WHERE webinar_id = $1`, webinarID)
	return err
}
