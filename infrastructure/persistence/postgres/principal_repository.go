package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
)

type PrincipalRepository struct {
	db *sql.DB
}

func NewPrincipalRepository(db *sql.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *entity.Principal) error {
	query := `
		INSERT INTO principals (id, key_id, key_hash, role, credits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.KeyID, p.KeyHash, p.Role, p.Credits, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*entity.Principal, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PrincipalRepository) FindByKeyID(ctx context.Context, keyID string) (*entity.Principal, error) {
	return r.findOne(ctx, `WHERE key_id = $1`, keyID)
}

func (r *PrincipalRepository) findOne(ctx context.Context, where string, arg interface{}) (*entity.Principal, error) {
	query := `
		SELECT id, key_id, key_hash, role, credits, created_at
		FROM principals ` + where + ` LIMIT 1`

	var p entity.Principal
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.KeyID, &p.KeyHash, &p.Role, &p.Credits, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return &p, nil
}

func (r *PrincipalRepository) List(ctx context.Context) ([]*entity.Principal, error) {
	query := `
		SELECT id, key_id, key_hash, role, credits, created_at
		FROM principals ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()

	var out []*entity.Principal
	for rows.Next() {
		var p entity.Principal
		if err := rows.Scan(&p.ID, &p.KeyID, &p.KeyHash, &p.Role, &p.Credits, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

var _ outbound.PrincipalRepository = (*PrincipalRepository)(nil)
