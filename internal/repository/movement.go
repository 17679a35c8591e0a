package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
)

// MovementRepository — интерфейс доступа к журналу перемещений.
// Журнал append-only: записи никогда не обновляются и не удаляются.
type MovementRepository interface {
	// Append добавляет запись в журнал. Метка времени должна строго
	// превосходить последнюю запись файла, иначе ErrNonMonotonicTimestamp.
	Append(ctx context.Context, e *model.MovementEntry) error
	// History возвращает все записи файла по возрастанию occurred_at.
	History(ctx context.Context, fileID string) ([]*model.MovementEntry, error)
	// LastEntry возвращает последнюю запись файла или ErrNotFound.
	LastEntry(ctx context.Context, fileID string) (*model.MovementEntry, error)
	// GetByID возвращает запись журнала по UUID или ErrNotFound.
	GetByID(ctx context.Context, movementID string) (*model.MovementEntry, error)
	// ListOverdueRetrievals возвращает выданные папки, не возвращённые
	// в хранилище до cutoff.
	ListOverdueRetrievals(ctx context.Context, cutoff time.Time) ([]*model.OverdueRetrieval, error)
}

// movementRepo — реализация MovementRepository.
type movementRepo struct {
	db DBTX
}

// NewMovementRepository создаёт репозиторий журнала перемещений.
func NewMovementRepository(db DBTX) MovementRepository {
	return &movementRepo{db: db}
}

// Append вставляет запись, только если её метка времени строго больше
// всех существующих записей файла. Ноль затронутых строк означает
// нарушение монотонности.
func (r *movementRepo) Append(ctx context.Context, e *model.MovementEntry) error {
	query := `
		INSERT INTO file_movements (id, file_id, actor_id, action, resulting_status, occurred_at, note)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM file_movements
			WHERE file_id = $2 AND occurred_at >= $6
		)`

	tag, err := r.db.Exec(ctx, query,
		e.ID, e.FileID, e.ActorID, e.Action, e.ResultingStatus, e.OccurredAt, e.Note,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNonMonotonicTimestamp
		}
		return fmt.Errorf("ошибка записи в журнал перемещений: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNonMonotonicTimestamp
	}
	return nil
}

const movementColumns = `id, file_id, actor_id, action, resulting_status, occurred_at, note`

func (r *movementRepo) History(ctx context.Context, fileID string) ([]*model.MovementEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM file_movements
		WHERE file_id = $1
		ORDER BY occurred_at`, movementColumns)

	rows, err := r.db.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала перемещений: %w", err)
	}
	defer rows.Close()

	var result []*model.MovementEntry
	for rows.Next() {
		e := &model.MovementEntry{}
		if err := rows.Scan(
			&e.ID, &e.FileID, &e.ActorID, &e.Action, &e.ResultingStatus, &e.OccurredAt, &e.Note,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *movementRepo) LastEntry(ctx context.Context, fileID string) (*model.MovementEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM file_movements
		WHERE file_id = $1
		ORDER BY occurred_at DESC
		LIMIT 1`, movementColumns)

	e := &model.MovementEntry{}
	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&e.ID, &e.FileID, &e.ActorID, &e.Action, &e.ResultingStatus, &e.OccurredAt, &e.Note,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения последней записи журнала: %w", err)
	}
	return e, nil
}

func (r *movementRepo) GetByID(ctx context.Context, movementID string) (*model.MovementEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM file_movements
		WHERE id = $1`, movementColumns)

	e := &model.MovementEntry{}
	err := r.db.QueryRow(ctx, query, movementID).Scan(
		&e.ID, &e.FileID, &e.ActorID, &e.Action, &e.ResultingStatus, &e.OccurredAt, &e.Note,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи журнала: %w", err)
	}
	return e, nil
}

// ListOverdueRetrievals находит файлы в статусе retrieved, чья последняя
// выдача произошла раньше cutoff. Для каждого файла через LATERAL
// берётся последняя запись журнала с действием retrieve.
func (r *movementRepo) ListOverdueRetrievals(ctx context.Context, cutoff time.Time) ([]*model.OverdueRetrieval, error) {
	query := `
		SELECT f.id, f.file_number, f.patient_id, f.proforma_id, f.status,
			f.physical_location, f.clinical_sections, f.created_at, f.updated_at,
			m.actor_id, m.occurred_at
		FROM adl_files f
		JOIN LATERAL (
			SELECT actor_id, occurred_at
			FROM file_movements
			WHERE file_id = f.id AND action = 'retrieve'
			ORDER BY occurred_at DESC
			LIMIT 1
		) m ON true
		WHERE f.status = 'retrieved' AND m.occurred_at < $1
		ORDER BY m.occurred_at`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения просроченных выдач: %w", err)
	}
	defer rows.Close()

	var result []*model.OverdueRetrieval
	for rows.Next() {
		f := &model.ADLFile{}
		o := &model.OverdueRetrieval{File: f}
		if err := rows.Scan(
			&f.ID, &f.FileNumber, &f.PatientID, &f.ProformaID, &f.Status,
			&f.PhysicalLocation, &f.ClinicalSections, &f.CreatedAt, &f.UpdatedAt,
			&o.RetrievedBy, &o.RetrievedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования просроченной выдачи: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}
