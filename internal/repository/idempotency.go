package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
)

// IdempotencyRepository — интерфейс доступа к ключам идемпотентности переходов.
type IdempotencyRepository interface {
	// Get возвращает запись по ключу или ErrNotFound.
	Get(ctx context.Context, key string) (*model.IdempotencyRecord, error)
	// Record сохраняет ключ вместе с результатом перехода.
	// Возвращает ErrConflict, если ключ уже записан.
	Record(ctx context.Context, rec *model.IdempotencyRecord) error
}

// idempotencyRepo — реализация IdempotencyRepository.
type idempotencyRepo struct {
	db DBTX
}

// NewIdempotencyRepository создаёт репозиторий ключей идемпотентности.
func NewIdempotencyRepository(db DBTX) IdempotencyRepository {
	return &idempotencyRepo{db: db}
}

func (r *idempotencyRepo) Get(ctx context.Context, key string) (*model.IdempotencyRecord, error) {
	query := `
		SELECT idempotency_key, file_id, movement_id, resulting_status, created_at
		FROM transition_idempotency
		WHERE idempotency_key = $1`

	rec := &model.IdempotencyRecord{}
	err := r.db.QueryRow(ctx, query, key).Scan(
		&rec.Key, &rec.FileID, &rec.MovementID, &rec.ResultingStatus, &rec.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ключа идемпотентности: %w", err)
	}
	return rec, nil
}

func (r *idempotencyRepo) Record(ctx context.Context, rec *model.IdempotencyRecord) error {
	query := `
		INSERT INTO transition_idempotency (idempotency_key, file_id, movement_id, resulting_status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		rec.Key, rec.FileID, rec.MovementID, rec.ResultingStatus,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ключ идемпотентности уже записан", ErrConflict)
		}
		return fmt.Errorf("ошибка записи ключа идемпотентности: %w", err)
	}
	return nil
}
