package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// ErrAlreadyClaimed is returned when a session claims the same reward twice.
var ErrAlreadyClaimed = errors.New("reward already claimed by this session")

// ErrClaimLimitReached is returned when a reward has no claims left.
var ErrClaimLimitReached = errors.New("reward claim limit reached")

// Repository handles reward and claim persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const rewardColumns = `id, webinar_id, name, description, trigger_type, watch_time_seconds,
	trigger_keywords, appear_at_seconds, input_deadline_seconds, delivery_type, delivery_target,
	popup_title, popup_description, popup_button_text, conditions, condition_logic,
	max_claims, current_claims, is_active, position, created_at, updated_at`

func scanReward(row pgx.Row) (*models.Reward, error) {
	var r models.Reward
	var keywords, conditions []byte
	err := row.Scan(&r.ID, &r.WebinarID, &r.Name, &r.Description, &r.TriggerType,
		&r.WatchTimeSeconds, &keywords, &r.AppearAtSeconds, &r.InputDeadlineSeconds,
		&r.DeliveryType, &r.DeliveryTarget, &r.PopupTitle, &r.PopupDescription,
		&r.PopupButtonText, &conditions, &r.ConditionLogic, &r.MaxClaims, &r.CurrentClaims,
		&r.IsActive, &r.Position, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &r.TriggerKeywords); err != nil {
			return nil, fmt.Errorf("decode trigger keywords: %w", err)
		}
	}
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &r.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions: %w", err)
		}
	}
	return &r, nil
}

// Create inserts a reward.
func (r *Repository) Create(ctx context.Context, reward *models.Reward) error {
	keywords, err := json.Marshal(reward.TriggerKeywords)
	if err != nil {
		return fmt.Errorf("encode trigger keywords: %w", err)
	}
	conditions, err := json.Marshal(reward.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	const q = `INSERT INTO rewards (webinar_id, name, description, trigger_type, watch_time_seconds,
		trigger_keywords, appear_at_seconds, input_deadline_seconds, delivery_type, delivery_target,
		popup_title, popup_description, popup_button_text, conditions, condition_logic,
		max_claims, is_active, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, current_claims, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reward.WebinarID, reward.Name, reward.Description,
		reward.TriggerType, reward.WatchTimeSeconds, keywords, reward.AppearAtSeconds,
		reward.InputDeadlineSeconds, reward.DeliveryType, reward.DeliveryTarget,
		reward.PopupTitle, reward.PopupDescription, reward.PopupButtonText,
		conditions, reward.ConditionLogic, reward.MaxClaims, reward.IsActive, reward.Position).
		Scan(&reward.ID, &reward.CurrentClaims, &reward.CreatedAt, &reward.UpdatedAt)
}

// GetByID returns a reward or nil when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)
	reward, err := scanReward(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reward, err
}

// ListByWebinar returns all rewards of a webinar in position order.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.Reward, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE webinar_id = $1 ORDER BY position, created_at`,
		webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reward)
	}
	return list, rows.Err()
}

// ListActiveByWebinar returns only rewards currently offered to viewers.
func (r *Repository) ListActiveByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.Reward, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rewardColumns+` FROM rewards
		 WHERE webinar_id = $1 AND is_active = TRUE ORDER BY position, created_at`,
		webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reward)
	}
	return list, rows.Err()
}

// Update replaces the mutable fields of a reward.
func (r *Repository) Update(ctx context.Context, reward *models.Reward) error {
	keywords, err := json.Marshal(reward.TriggerKeywords)
	if err != nil {
		return fmt.Errorf("encode trigger keywords: %w", err)
	}
	conditions, err := json.Marshal(reward.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	const q = `UPDATE rewards SET name = $2, description = $3, trigger_type = $4,
		watch_time_seconds = $5, trigger_keywords = $6, appear_at_seconds = $7,
		input_deadline_seconds = $8, delivery_type = $9, delivery_target = $10,
		popup_title = $11, popup_description = $12, popup_button_text = $13,
		conditions = $14, condition_logic = $15, max_claims = $16, is_active = $17,
		position = $18, updated_at = NOW()
		WHERE id = $1`
	_, err = r.pool.Exec(ctx, q, reward.ID, reward.Name, reward.Description, reward.TriggerType,
		reward.WatchTimeSeconds, keywords, reward.AppearAtSeconds, reward.InputDeadlineSeconds,
		reward.DeliveryType, reward.DeliveryTarget, reward.PopupTitle, reward.PopupDescription,
		reward.PopupButtonText, conditions, reward.ConditionLogic, reward.MaxClaims,
		reward.IsActive, reward.Position)
	return err
}

// Delete removes a reward and its claims.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	return err
}

// Claim records a session claiming a reward. The claim insert and the
// counter increment run in one transaction so max_claims cannot be
// oversubscribed by concurrent viewers.
func (r *Repository) Claim(ctx context.Context, rewardID, sessionID uuid.UUID, couponCode *string) (*models.RewardClaim, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE rewards SET current_claims = current_claims + 1, updated_at = NOW()
		 WHERE id = $1 AND is_active = TRUE
		   AND (max_claims IS NULL OR current_claims < max_claims)`,
		rewardID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrClaimLimitReached
	}

	var claim models.RewardClaim
	claim.RewardID = rewardID
	claim.SessionID = sessionID
	claim.CouponCode = couponCode
	err = tx.QueryRow(ctx,
		`INSERT INTO reward_claims (reward_id, session_id, coupon_code)
		 VALUES ($1,$2,$3) RETURNING id, created_at`,
		rewardID, sessionID, couponCode).
		Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &claim, nil
}

// ClaimsBySession returns the claims a session has made, keyed by reward ID.
func (r *Repository) ClaimsBySession(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]models.RewardClaim, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, reward_id, session_id, coupon_code, delivered_at, failed_at, created_at
		 FROM reward_claims WHERE session_id = $1`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	claims := make(map[uuid.UUID]models.RewardClaim)
	for rows.Next() {
		var c models.RewardClaim
		if err := rows.Scan(&c.ID, &c.RewardID, &c.SessionID, &c.CouponCode, &c.DeliveredAt, &c.FailedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		claims[c.RewardID] = c
	}
	return claims, rows.Err()
}

// GetClaim returns a claim or nil when not found.
func (r *Repository) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.RewardClaim, error) {
	var c models.RewardClaim
	err := r.pool.QueryRow(ctx,
		`SELECT id, reward_id, session_id, coupon_code, delivered_at, failed_at, created_at
		 FROM reward_claims WHERE id = $1`,
		claimID).
		Scan(&c.ID, &c.RewardID, &c.SessionID, &c.CouponCode, &c.DeliveredAt, &c.FailedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkDelivered records a successful delivery.
func (r *Repository) MarkDelivered(ctx context.Context, claimID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE reward_claims SET delivered_at = $2, failed_at = NULL WHERE id = $1`,
		claimID, at)
	return err
}

// MarkFailed records a delivery failure after retries were exhausted.
func (r *Repository) MarkFailed(ctx context.Context, claimID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE reward_claims SET failed_at = $2 WHERE id = $1 AND delivered_at IS NULL`,
		claimID, at)
	return err
}
