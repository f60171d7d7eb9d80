package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Repository handles registration and watch session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertRegistration creates or refreshes a registration. Registering twice
// with the same email keeps the original row and updates the name.
func (r *Repository) UpsertRegistration(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (webinar_id, email, full_name)
		VALUES ($1,$2,$3)
		ON CONFLICT (webinar_id, email)
		DO UPDATE SET full_name = EXCLUDED.full_name, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reg.WebinarID, reg.Email, reg.FullName).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetRegistration returns a registration or nil.
func (r *Repository) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	err := r.pool.QueryRow(ctx,
		`SELECT id, webinar_id, email, full_name, created_at, updated_at FROM registrations WHERE id = $1`,
		id).
		Scan(&reg.ID, &reg.WebinarID, &reg.Email, &reg.FullName, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

const sessionColumns = `id, registration_id, webinar_id, token, scheduled_start_at,
	max_watched_seconds, last_position, is_replay, offer_clicked, typed_keywords,
	replay_expires_at, token_expires_at, completed_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.WatchSession, error) {
	var s models.WatchSession
	err := row.Scan(&s.ID, &s.RegistrationID, &s.WebinarID, &s.Token, &s.ScheduledStartAt,
		&s.MaxWatchedSeconds, &s.LastPosition, &s.IsReplay, &s.OfferClicked, &s.TypedKeywords,
		&s.ReplayExpiresAt, &s.TokenExpiresAt, &s.CompletedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a watch session.
func (r *Repository) CreateSession(ctx context.Context, s *models.WatchSession) error {
	const q = `INSERT INTO watch_sessions (registration_id, webinar_id, token, scheduled_start_at, is_replay, replay_expires_at, token_expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.RegistrationID, s.WebinarID, s.Token, s.ScheduledStartAt,
		s.IsReplay, s.ReplayExpiresAt, s.TokenExpiresAt).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByToken returns the session for a watch token, or nil.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.WatchSession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM watch_sessions WHERE token = $1`, token)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// LatestForRegistration returns the registration's most recent session, or nil.
func (r *Repository) LatestForRegistration(ctx context.Context, registrationID uuid.UUID) (*models.WatchSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM watch_sessions
		 WHERE registration_id = $1 ORDER BY created_at DESC LIMIT 1`,
		registrationID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// AppendKeyword records a typed viewer input on the session so claim
// conditions can inspect the history.
func (r *Repository) AppendKeyword(ctx context.Context, sessionID uuid.UUID, keyword string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE watch_sessions
		 SET typed_keywords = array_append(typed_keywords, $2), updated_at = NOW()
		 WHERE id = $1`,
		sessionID, keyword)
	return err
}

// UpdateProgress advances the session's high-water mark and stores the last
// reported position. GREATEST keeps the mark monotonic even when reports
// arrive out of order. Returns the new high-water mark.
func (r *Repository) UpdateProgress(ctx context.Context, sessionID uuid.UUID, positionSeconds int) (int, error) {
	var maxWatched int
	err := r.pool.QueryRow(ctx,
		`UPDATE watch_sessions
		 SET max_watched_seconds = GREATEST(max_watched_seconds, $2),
		     last_position = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING max_watched_seconds`,
		sessionID, positionSeconds).Scan(&maxWatched)
	return maxWatched, err
}

// MarkOfferClicked flags the session once; repeat clicks are no-ops.
// Returns whether this call flipped the flag.
func (r *Repository) MarkOfferClicked(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE watch_sessions SET offer_clicked = TRUE, updated_at = NOW()
		 WHERE id = $1 AND offer_clicked = FALSE`,
		sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted stamps completion once the viewer crosses the completion
// threshold. Idempotent.
func (r *Repository) MarkCompleted(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE watch_sessions SET completed_at = $2, updated_at = NOW()
		 WHERE id = $1 AND completed_at IS NULL`,
		sessionID, at)
	return err
}

// SwitchToReplay converts an ended live session into a replay session.
func (r *Repository) SwitchToReplay(ctx context.Context, sessionID uuid.UUID, replayExpiresAt *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE watch_sessions SET is_replay = TRUE, replay_expires_at = $2, updated_at = NOW() WHERE id = $1`,
		sessionID, replayExpiresAt)
	return err
}

// CountByWebinar returns how many sessions a webinar has accumulated.
func (r *Repository) CountByWebinar(ctx context.Context, webinarID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM watch_sessions WHERE webinar_id = $1`, webinarID).Scan(&n)
	return n, err
}
