package repositories

import (
	"context"

	"companyhub/internal/models"

	"github.com/google/uuid"
)

type OrphanRepository interface {
	Create(ctx context.Context, orphan *models.Orphan) error
	List(ctx context.Context, limit int) ([]*models.Orphan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkAttempt(ctx context.Context, id uuid.UUID) error
}

type orphanRepo struct {
	db Database
}

func NewOrphanRepo(db Database) OrphanRepository {
	return &orphanRepo{db: db}
}

func (r *orphanRepo) Create(ctx context.Context, orphan *models.Orphan) error {
	query := `
		INSERT INTO provisioning_orphans (id, kind, ref, reason, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, orphan.ID, orphan.Kind, orphan.Ref, orphan.Reason, orphan.Attempts)
	return err
}

func (r *orphanRepo) List(ctx context.Context, limit int) ([]*models.Orphan, error) {
	query := `
		SELECT id, kind, ref, reason, attempts, created_at, last_attempt_at
		FROM provisioning_orphans
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []*models.Orphan
	for rows.Next() {
		orphan := &models.Orphan{}
		if err := rows.Scan(&orphan.ID, &orphan.Kind, &orphan.Ref, &orphan.Reason, &orphan.Attempts, &orphan.CreatedAt, &orphan.LastAttemptAt); err != nil {
			return nil, err
		}
		orphans = append(orphans, orphan)
	}
	return orphans, rows.Err()
}

func (r *orphanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM provisioning_orphans WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *orphanRepo) MarkAttempt(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE provisioning_orphans SET attempts = attempts + 1, last_attempt_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
