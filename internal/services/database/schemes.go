// Package database provides database operations for the scheme recommendation engine.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"scheme-recommendation-engine/internal/models"
)

// SchemeRepository handles scheme catalog database operations.
type SchemeRepository struct {
	db *DB
}

// NewSchemeRepository creates a new scheme repository.
func NewSchemeRepository(db *DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

// Create inserts a new scheme into the database. Documents and
// eligibility rules are stored as JSONB.
func (r *SchemeRepository) Create(ctx context.Context, scheme *models.SchemeCreate) error {
	if err := models.ValidateSchemeCreate(scheme); err != nil {
		return err
	}

	rulesJSON, err := json.Marshal(scheme.EligibilityRules)
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility rules: %w", err)
	}

	documentsJSON, err := json.Marshal(scheme.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}

	query := `
		INSERT INTO schemes (
			id, name, description, ministry, level, category, benefits,
			documents, how_to_apply, apply_link, popularity,
			eligibility_rules, created_at, updated_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, true)`

	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, query,
		scheme.ID,
		scheme.Name,
		scheme.Description,
		scheme.Ministry,
		string(scheme.Level),
		scheme.Category,
		scheme.Benefits,
		string(documentsJSON),
		scheme.HowToApply,
		scheme.ApplyLink,
		scheme.Popularity,
		string(rulesJSON),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scheme: %w", err)
	}

	return nil
}

// CreateAll inserts a batch of schemes in one transaction, skipping IDs
// that already exist. Returns the number of rows actually inserted. Used
// by the seed tooling so a half-loaded catalog never becomes visible.
func (r *SchemeRepository) CreateAll(ctx context.Context, schemes []*models.SchemeCreate) (int, error) {
	query := `
		INSERT INTO schemes (
			id, name, description, ministry, level, category, benefits,
			documents, how_to_apply, apply_link, popularity,
			eligibility_rules, created_at, updated_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, true)
		ON CONFLICT (id) DO NOTHING`

	inserted := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, scheme := range schemes {
			if err := models.ValidateSchemeCreate(scheme); err != nil {
				return fmt.Errorf("scheme %s: %w", scheme.ID, err)
			}

			rulesJSON, err := json.Marshal(scheme.EligibilityRules)
			if err != nil {
				return fmt.Errorf("scheme %s: failed to marshal eligibility rules: %w", scheme.ID, err)
			}
			documentsJSON, err := json.Marshal(scheme.Documents)
			if err != nil {
				return fmt.Errorf("scheme %s: failed to marshal documents: %w", scheme.ID, err)
			}

			tag, err := tx.Exec(ctx, query,
				scheme.ID,
				scheme.Name,
				scheme.Description,
				scheme.Ministry,
				string(scheme.Level),
				scheme.Category,
				scheme.Benefits,
				string(documentsJSON),
				scheme.HowToApply,
				scheme.ApplyLink,
				scheme.Popularity,
				string(rulesJSON),
				now,
			)
			if err != nil {
				return fmt.Errorf("scheme %s: failed to insert: %w", scheme.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetByID retrieves a single scheme by its catalog ID.
func (r *SchemeRepository) GetByID(ctx context.Context, id string) (*models.Scheme, error) {
	query := selectSchemeColumns + ` WHERE id = $1`

	scheme, err := scanScheme(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSchemeNotFound
		}
		return nil, fmt.Errorf("failed to get scheme %s: %w", id, err)
	}

	return scheme, nil
}

// GetAllActive retrieves all active schemes ordered by name, which is the
// catalog snapshot the recommendation pipeline runs against.
func (r *SchemeRepository) GetAllActive(ctx context.Context) ([]*models.Scheme, error) {
	query := selectSchemeColumns + ` WHERE is_active = true ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}
	defer rows.Close()

	return collectSchemes(rows)
}

// GetByLevel retrieves active schemes filtered by declared level.
func (r *SchemeRepository) GetByLevel(ctx context.Context, level models.SchemeLevel) ([]*models.Scheme, error) {
	query := selectSchemeColumns + ` WHERE is_active = true AND level = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, string(level))
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes by level: %w", err)
	}
	defer rows.Close()

	return collectSchemes(rows)
}

// GetByCategory retrieves active schemes filtered by category.
func (r *SchemeRepository) GetByCategory(ctx context.Context, category string) ([]*models.Scheme, error) {
	query := selectSchemeColumns + ` WHERE is_active = true AND LOWER(category) = LOWER($1) ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes by category: %w", err)
	}
	defer rows.Close()

	return collectSchemes(rows)
}

// Deactivate soft-deletes a scheme from the active catalog.
func (r *SchemeRepository) Deactivate(ctx context.Context, id string) error {
	affected, err := r.db.ExecContext(ctx,
		`UPDATE schemes SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate scheme %s: %w", id, err)
	}
	if affected == 0 {
		return models.ErrSchemeNotFound
	}
	return nil
}

// Count returns the number of active schemes.
func (r *SchemeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schemes WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count schemes: %w", err)
	}
	return count, nil
}

const selectSchemeColumns = `
	SELECT id, name, description, ministry, level, category, benefits,
	       documents, how_to_apply, apply_link, popularity,
	       eligibility_rules, created_at, updated_at, is_active
	FROM schemes`

// scanScheme scans one scheme row, decoding the JSONB columns.
func scanScheme(row pgx.Row) (*models.Scheme, error) {
	var scheme models.Scheme
	var level string
	var documentsJSON, rulesJSON []byte

	err := row.Scan(
		&scheme.ID,
		&scheme.Name,
		&scheme.Description,
		&scheme.Ministry,
		&level,
		&scheme.Category,
		&scheme.Benefits,
		&documentsJSON,
		&scheme.HowToApply,
		&scheme.ApplyLink,
		&scheme.Popularity,
		&rulesJSON,
		&scheme.CreatedAt,
		&scheme.UpdatedAt,
		&scheme.IsActive,
	)
	if err != nil {
		return nil, err
	}

	scheme.Level = models.SchemeLevel(level)

	if len(documentsJSON) > 0 {
		if err := json.Unmarshal(documentsJSON, &scheme.Documents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
		}
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &scheme.EligibilityRules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal eligibility rules: %w", err)
		}
	}

	return &scheme, nil
}

func collectSchemes(rows pgx.Rows) ([]*models.Scheme, error) {
	schemes := make([]*models.Scheme, 0)
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheme: %w", err)
		}
		schemes = append(schemes, scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schemes: %w", err)
	}
	return schemes, nil
}
