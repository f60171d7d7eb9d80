package abtest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Repository handles offer A/B test persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const testColumns = `id, webinar_id, name, status, algorithm, confidence_level,
	min_sample_size, min_conversions, auto_optimize, winner_id,
	started_at, completed_at, created_at, updated_at`

func scanTest(row pgx.Row) (*models.OfferABTest, error) {
	var t models.OfferABTest
	err := row.Scan(&t.ID, &t.WebinarID, &t.Name, &t.Status, &t.Algorithm, &t.ConfidenceLevel,
		&t.MinSampleSize, &t.MinConversions, &t.AutoOptimize, &t.WinnerID,
		&t.StartedAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTest inserts a test with its variants in one transaction.
func (r *Repository) CreateTest(ctx context.Context, test *models.OfferABTest, variants []models.OfferABVariant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO offer_ab_tests (webinar_id, name, algorithm, confidence_level, min_sample_size, min_conversions, auto_optimize)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, status, created_at, updated_at`,
		test.WebinarID, test.Name, test.Algorithm, test.ConfidenceLevel,
		test.MinSampleSize, test.MinConversions, test.AutoOptimize).
		Scan(&test.ID, &test.Status, &test.CreatedAt, &test.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range variants {
		v := &variants[i]
		v.TestID = test.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO offer_ab_variants (test_id, name, is_control, weight, title, description, button_text, button_url)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING id, created_at`,
			v.TestID, v.Name, v.IsControl, v.Weight, v.Title, v.Description, v.ButtonText, v.ButtonURL).
			Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetTest returns a test or nil when not found.
func (r *Repository) GetTest(ctx context.Context, id uuid.UUID) (*models.OfferABTest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+testColumns+` FROM offer_ab_tests WHERE id = $1`, id)
	test, err := scanTest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return test, err
}

// RunningTestByWebinar returns the running test for a webinar, or nil.
func (r *Repository) RunningTestByWebinar(ctx context.Context, webinarID uuid.UUID) (*models.OfferABTest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+testColumns+` FROM offer_ab_tests
		 WHERE webinar_id = $1 AND status = 'RUNNING'
		 ORDER BY started_at DESC LIMIT 1`,
		webinarID)
	test, err := scanTest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return test, err
}

// ListByWebinar returns all tests for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.OfferABTest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+` FROM offer_ab_tests WHERE webinar_id = $1 ORDER BY created_at DESC`,
		webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OfferABTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// SetStatus transitions a test's lifecycle state. Start stamps started_at;
// completion stamps completed_at and the winner when one was decided.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.ABTestStatus, winnerID *uuid.UUID) error {
	var err error
	switch status {
	case models.ABTestRunning:
		_, err = r.pool.Exec(ctx,
			`UPDATE offer_ab_tests SET status = $2, started_at = COALESCE(started_at, NOW()), updated_at = NOW() WHERE id = $1`,
			id, status)
	case models.ABTestCompleted:
		_, err = r.pool.Exec(ctx,
			`UPDATE offer_ab_tests SET status = $2, winner_id = $3, completed_at = NOW(), updated_at = NOW() WHERE id = $1`,
			id, status, winnerID)
	default:
		_, err = r.pool.Exec(ctx,
			`UPDATE offer_ab_tests SET status = $2, updated_at = NOW() WHERE id = $1`,
			id, status)
	}
	return err
}

// Variants returns the variants of a test with their counters.
func (r *Repository) Variants(ctx context.Context, testID uuid.UUID) ([]models.OfferABVariant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, name, is_control, weight, title, description, button_text, button_url,
		        impressions, clicks, conversions, created_at
		 FROM offer_ab_variants WHERE test_id = $1 ORDER BY is_control DESC, created_at`,
		testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OfferABVariant
	for rows.Next() {
		var v models.OfferABVariant
		if err := rows.Scan(&v.ID, &v.TestID, &v.Name, &v.IsControl, &v.Weight, &v.Title,
			&v.Description, &v.ButtonText, &v.ButtonURL, &v.Impressions, &v.Clicks,
			&v.Conversions, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// GetVariant returns one variant or nil.
func (r *Repository) GetVariant(ctx context.Context, id uuid.UUID) (*models.OfferABVariant, error) {
	var v models.OfferABVariant
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, name, is_control, weight, title, description, button_text, button_url,
		        impressions, clicks, conversions, created_at
		 FROM offer_ab_variants WHERE id = $1`,
		id).
		Scan(&v.ID, &v.TestID, &v.Name, &v.IsControl, &v.Weight, &v.Title, &v.Description,
			&v.ButtonText, &v.ButtonURL, &v.Impressions, &v.Clicks, &v.Conversions, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetAssignment returns the session's assignment for a test, or nil.
func (r *Repository) GetAssignment(ctx context.Context, testID, sessionID uuid.UUID) (*models.OfferABAssignment, error) {
	var a models.OfferABAssignment
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, variant_id, session_id, impressed, impressed_at,
		        clicked, clicked_at, converted, converted_at, created_at
		 FROM offer_ab_assignments WHERE test_id = $1 AND session_id = $2`,
		testID, sessionID).
		Scan(&a.ID, &a.TestID, &a.VariantID, &a.SessionID, &a.Impressed, &a.ImpressedAt,
			&a.Clicked, &a.ClickedAt, &a.Converted, &a.ConvertedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment pins a session to a variant. On a concurrent duplicate the
// existing assignment wins and is returned.
func (r *Repository) CreateAssignment(ctx context.Context, testID, variantID, sessionID uuid.UUID) (*models.OfferABAssignment, error) {
	var a models.OfferABAssignment
	a.TestID = testID
	a.VariantID = variantID
	a.SessionID = sessionID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO offer_ab_assignments (test_id, variant_id, session_id)
		 VALUES ($1,$2,$3) RETURNING id, created_at`,
		testID, variantID, sessionID).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.GetAssignment(ctx, testID, sessionID)
		}
		return nil, err
	}
	return &a, nil
}

type eventKind struct {
	flag    string
	stamp   string
	counter string
}

var (
	eventImpression = eventKind{"impressed", "impressed_at", "impressions"}
	eventClick      = eventKind{"clicked", "clicked_at", "clicks"}
	eventConversion = eventKind{"converted", "converted_at", "conversions"}
)

// recordEvent flips the assignment flag and bumps the variant counter in one
// transaction. Repeat events for the same assignment are no-ops, so each
// session contributes at most once per counter.
func (r *Repository) recordEvent(ctx context.Context, assignmentID uuid.UUID, kind eventKind) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var variantID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE offer_ab_assignments SET `+kind.flag+` = TRUE, `+kind.stamp+` = NOW()
		 WHERE id = $1 AND `+kind.flag+` = FALSE
		 RETURNING variant_id`,
		assignmentID).Scan(&variantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE offer_ab_variants SET `+kind.counter+` = `+kind.counter+` + 1 WHERE id = $1`,
		variantID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// RecordImpression marks the first impression of an assignment.
func (r *Repository) RecordImpression(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	return r.recordEvent(ctx, assignmentID, eventImpression)
}

// RecordClick marks the first offer click of an assignment.
func (r *Repository) RecordClick(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	return r.recordEvent(ctx, assignmentID, eventClick)
}

// RecordConversion marks the first conversion of an assignment.
func (r *Repository) RecordConversion(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	return r.recordEvent(ctx, assignmentID, eventConversion)
}
