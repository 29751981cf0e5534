package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
)

// RuleRepository stores rules ordered by a database-assigned position.
// Compiled patterns are cached per rule id; patterns are immutable after
// creation so the cache never goes stale.
type RuleRepository struct {
	db *sql.DB

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db, compiled: make(map[string]*regexp.Regexp)}
}

func (r *RuleRepository) Create(ctx context.Context, rule *entity.Rule) error {
	if _, err := regexp.Compile(rule.Pattern); err != nil {
		return domain.ErrInvalidPattern
	}

	query := `
		INSERT INTO rules (id, pattern, action, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING position
	`
	err := r.db.QueryRowContext(ctx, query,
		rule.ID, rule.Pattern, rule.Action, rule.CreatedAt).Scan(&rule.Position)
	if err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n == 0 {
		return domain.ErrRuleNotFound
	}

	r.mu.Lock()
	delete(r.compiled, id)
	r.mu.Unlock()
	return nil
}

func (r *RuleRepository) List(ctx context.Context) ([]*entity.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pattern, action, position, created_at
		FROM rules ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []*entity.Rule
	for rows.Next() {
		var rule entity.Rule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Action, &rule.Position, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, &rule)
	}
	return out, rows.Err()
}

// MatchFirst loads the ordered rule set in one query, so the scan observes
// a single consistent snapshot, then matches in order and short-circuits.
func (r *RuleRepository) MatchFirst(ctx context.Context, commandText string) (*entity.Rule, error) {
	rules, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		re, err := r.compile(rule.ID, rule.Pattern)
		if err != nil {
			// A stored pattern that no longer compiles is corrupt
			// state; surface it rather than skipping the rule.
			return nil, fmt.Errorf("stored pattern for rule %s: %w", rule.ID, err)
		}
		if re.MatchString(commandText) {
			return rule, nil
		}
	}
	return nil, nil
}

func (r *RuleRepository) compile(id, pattern string) (*regexp.Regexp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if re, ok := r.compiled[id]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	r.compiled[id] = re
	return re, nil
}

var _ outbound.RuleRepository = (*RuleRepository)(nil)
