package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"birvalid/internal/domain"
	"birvalid/internal/port"
)

type ruleSetRepo struct {
	db *sqlx.DB
}

// NewRuleSetRepo creates a new PostgreSQL-backed RuleSetRepository. Rules are
// stored as a JSONB column so predicates round-trip without a join table.
func NewRuleSetRepo(db *sqlx.DB) port.RuleSetRepository {
	return &ruleSetRepo{db: db}
}

// ruleSetRow mirrors the rule_sets table with rules as raw JSONB.
type ruleSetRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Kind         string          `db:"kind"`
	Rules        json.RawMessage `db:"rules"`
	MinimumScore int             `db:"minimum_score"`
	IsBuiltin    bool            `db:"is_builtin"`
	IsActive     bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (row *ruleSetRow) toDomain() (*domain.RuleSet, error) {
	var rules []domain.ValidationRule
	if len(row.Rules) > 0 {
		if err := json.Unmarshal(row.Rules, &rules); err != nil {
			return nil, fmt.Errorf("decode rules for %q: %w", row.ID, err)
		}
	}
	return &domain.RuleSet{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		Kind:         domain.RuleSetKind(row.Kind),
		Rules:        rules,
		MinimumScore: row.MinimumScore,
		IsBuiltin:    row.IsBuiltin,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// SeedRuleSets inserts the given rule sets, skipping ids that already exist.
// Run at startup so the builtin catalog is present before the first request;
// operator edits to builtin rows survive restarts.
func SeedRuleSets(ctx context.Context, db *sqlx.DB, sets []*domain.RuleSet) error {
	for _, set := range sets {
		rules, err := json.Marshal(set.Rules)
		if err != nil {
			return fmt.Errorf("seed rule sets: encode %q: %w", set.ID, err)
		}
		now := time.Now().UTC()
		_, err = db.ExecContext(ctx,
			`INSERT INTO rule_sets (
				id, name, description, kind, rules, minimum_score,
				is_builtin, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			set.ID, set.Name, set.Description, set.Kind, rules, set.MinimumScore,
			set.IsBuiltin, set.IsActive, now, now)
		if err != nil {
			return fmt.Errorf("seed rule sets: insert %q: %w", set.ID, err)
		}
	}
	return nil
}

func (r *ruleSetRepo) Get(ctx context.Context, id string) (*domain.RuleSet, error) {
	var row ruleSetRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM rule_sets WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("ruleSetRepo.Get: %w", err)
	}
	return row.toDomain()
}

func (r *ruleSetRepo) List(ctx context.Context) ([]domain.RuleSet, error) {
	var rows []ruleSetRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM rule_sets WHERE is_active = TRUE ORDER BY is_builtin DESC, id")
	if err != nil {
		return nil, fmt.Errorf("ruleSetRepo.List: %w", err)
	}

	sets := make([]domain.RuleSet, 0, len(rows))
	for i := range rows {
		set, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("ruleSetRepo.List: %w", err)
		}
		sets = append(sets, *set)
	}
	return sets, nil
}

func (r *ruleSetRepo) Create(ctx context.Context, set *domain.RuleSet) error {
	rules, err := json.Marshal(set.Rules)
	if err != nil {
		return fmt.Errorf("ruleSetRepo.Create encode rules: %w", err)
	}

	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rule_sets (
			id, name, description, kind, rules, minimum_score,
			is_builtin, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		set.ID, set.Name, set.Description, set.Kind, rules, set.MinimumScore,
		set.IsBuiltin, set.IsActive, set.CreatedAt, set.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrRuleSetExists
		}
		return fmt.Errorf("ruleSetRepo.Create: %w", err)
	}
	return nil
}

func (r *ruleSetRepo) Update(ctx context.Context, set *domain.RuleSet) error {
	rules, err := json.Marshal(set.Rules)
	if err != nil {
		return fmt.Errorf("ruleSetRepo.Update encode rules: %w", err)
	}

	set.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE rule_sets SET
			name = $1, description = $2, kind = $3, rules = $4,
			minimum_score = $5, updated_at = $6
		 WHERE id = $7`,
		set.Name, set.Description, set.Kind, rules,
		set.MinimumScore, set.UpdatedAt, set.ID)
	if err != nil {
		return fmt.Errorf("ruleSetRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrRuleSetNotFound
	}
	return nil
}

func (r *ruleSetRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rule_sets SET is_active = FALSE, updated_at = $1
		 WHERE id = $2 AND is_active = TRUE`,
		time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("ruleSetRepo.SoftDelete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Distinguish "missing" from "already inactive".
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM rule_sets WHERE id = $1)", id); err != nil {
			return false, fmt.Errorf("ruleSetRepo.SoftDelete: %w", err)
		}
		if !exists {
			return false, domain.ErrRuleSetNotFound
		}
		return false, nil
	}
	return true, nil
}
