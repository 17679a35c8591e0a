package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
)

// ADLFileRepository — интерфейс доступа к таблице adl_files.
type ADLFileRepository interface {
	// AllocateFileNumber выделяет следующий порядковый номер файла.
	AllocateFileNumber(ctx context.Context) (int64, error)
	// Create вставляет новую запись ADL-файла.
	Create(ctx context.Context, f *model.ADLFile) error
	// GetByID возвращает файл по UUID.
	GetByID(ctx context.Context, fileID string) (*model.ADLFile, error)
	// GetByFileNumber возвращает файл по регистрационному номеру.
	GetByFileNumber(ctx context.Context, fileNumber string) (*model.ADLFile, error)
	// List возвращает список файлов с фильтрацией и пагинацией.
	List(ctx context.Context, filters model.FileListFilters, limit, offset int) ([]*model.ADLFile, error)
	// Count возвращает количество файлов с фильтрацией.
	Count(ctx context.Context, filters model.FileListFilters) (int, error)
	// CompareAndSwapStatus атомарно меняет статус файла при совпадении
	// ожидаемого статуса. Если newLocation не nil — обновляет и полку хранения.
	// Возвращает ErrConflict, если статус уже изменился.
	CompareAndSwapStatus(ctx context.Context, fileID string, expected, next model.FileStatus, newLocation *string) (time.Time, error)
	// UpdateClinicalSections обновляет состав клинических разделов файла.
	UpdateClinicalSections(ctx context.Context, fileID string, sections []byte) error
	// UpdatePhysicalLocation обновляет полку хранения файла.
	UpdatePhysicalLocation(ctx context.Context, fileID string, location *string) error
	// StatusCounts возвращает количество файлов по каждому статусу.
	StatusCounts(ctx context.Context) (map[model.FileStatus]int, error)
}

// adlFileRepo — реализация ADLFileRepository.
type adlFileRepo struct {
	db DBTX
}

// NewADLFileRepository создаёт репозиторий реестра ADL-файлов.
func NewADLFileRepository(db DBTX) ADLFileRepository {
	return &adlFileRepo{db: db}
}

func (r *adlFileRepo) AllocateFileNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT nextval('adl_file_number_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка выделения номера файла: %w", err)
	}
	return n, nil
}

func (r *adlFileRepo) Create(ctx context.Context, f *model.ADLFile) error {
	query := `
		INSERT INTO adl_files (id, file_number, patient_id, proforma_id, status,
			physical_location, clinical_sections)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.FileNumber, f.PatientID, f.ProformaID, f.Status,
		f.PhysicalLocation, f.ClinicalSections,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if name := uniqueConstraintName(err); name != "" {
			if name == "idx_adl_files_proforma_id" {
				return fmt.Errorf("%w: proforma_id=%s", ErrDuplicateProforma, derefOrEmpty(f.ProformaID))
			}
			return fmt.Errorf("%w: файл с таким номером уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания ADL-файла: %w", err)
	}
	return nil
}

const adlFileColumns = `id, file_number, patient_id, proforma_id, status,
		physical_location, clinical_sections, created_at, updated_at`

// scanADLFile сканирует строку результата в модель.
func scanADLFile(row pgx.Row) (*model.ADLFile, error) {
	f := &model.ADLFile{}
	err := row.Scan(
		&f.ID, &f.FileNumber, &f.PatientID, &f.ProformaID, &f.Status,
		&f.PhysicalLocation, &f.ClinicalSections, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *adlFileRepo) GetByID(ctx context.Context, fileID string) (*model.ADLFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM adl_files WHERE id = $1`, adlFileColumns)

	f, err := scanADLFile(r.db.QueryRow(ctx, query, fileID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ADL-файла: %w", err)
	}
	return f, nil
}

func (r *adlFileRepo) GetByFileNumber(ctx context.Context, fileNumber string) (*model.ADLFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM adl_files WHERE file_number = $1`, adlFileColumns)

	f, err := scanADLFile(r.db.QueryRow(ctx, query, fileNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ADL-файла по номеру: %w", err)
	}
	return f, nil
}

// buildFileWhere строит WHERE-условие и аргументы для фильтрации файлов.
func buildFileWhere(filters model.FileListFilters, startArg int) (string, []any) {
	var conditions []string
	var args []any
	argNum := startArg

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filters.Status)
		argNum++
	}
	if filters.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argNum))
		args = append(args, *filters.PatientID)
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "status != 'archived'")
	}
	if filters.WithLocation {
		conditions = append(conditions, "physical_location IS NOT NULL")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *adlFileRepo) List(ctx context.Context, filters model.FileListFilters, limit, offset int) ([]*model.ADLFile, error) {
	where, args := buildFileWhere(filters, 1)
	argNum := len(args) + 1

	query := fmt.Sprintf(`
		SELECT %s
		FROM adl_files
		%s
		ORDER BY file_number
		LIMIT $%d OFFSET $%d`, adlFileColumns, where, argNum, argNum+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка ADL-файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.ADLFile
	for rows.Next() {
		f, err := scanADLFile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования ADL-файла: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *adlFileRepo) Count(ctx context.Context, filters model.FileListFilters) (int, error) {
	where, args := buildFileWhere(filters, 1)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM adl_files %s`, where)

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта ADL-файлов: %w", err)
	}
	return count, nil
}

// CompareAndSwapStatus меняет статус файла только если текущий статус
// совпадает с ожидаемым. Ноль затронутых строк при существующем файле
// означает конкурентное изменение — возвращается ErrConflict.
func (r *adlFileRepo) CompareAndSwapStatus(ctx context.Context, fileID string, expected, next model.FileStatus, newLocation *string) (time.Time, error) {
	var query string
	var args []any
	if newLocation != nil {
		query = `
			UPDATE adl_files
			SET status = $3, physical_location = $4, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING updated_at`
		args = []any{fileID, expected, next, *newLocation}
	} else {
		query = `
			UPDATE adl_files
			SET status = $3, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING updated_at`
		args = []any{fileID, expected, next}
	}

	var updatedAt time.Time
	err := r.db.QueryRow(ctx, query, args...).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Файл отсутствует или статус уже сменился
			var exists bool
			if checkErr := r.db.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM adl_files WHERE id = $1)`, fileID,
			).Scan(&exists); checkErr != nil {
				return time.Time{}, fmt.Errorf("ошибка проверки существования файла: %w", checkErr)
			}
			if !exists {
				return time.Time{}, ErrNotFound
			}
			return time.Time{}, ErrConflict
		}
		return time.Time{}, fmt.Errorf("ошибка смены статуса ADL-файла: %w", err)
	}
	return updatedAt, nil
}

func (r *adlFileRepo) UpdateClinicalSections(ctx context.Context, fileID string, sections []byte) error {
	query := `
		UPDATE adl_files
		SET clinical_sections = $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, fileID, sections)
	if err != nil {
		return fmt.Errorf("ошибка обновления клинических разделов: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adlFileRepo) UpdatePhysicalLocation(ctx context.Context, fileID string, location *string) error {
	query := `
		UPDATE adl_files
		SET physical_location = $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, fileID, location)
	if err != nil {
		return fmt.Errorf("ошибка обновления полки хранения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adlFileRepo) StatusCounts(ctx context.Context) (map[model.FileStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM adl_files GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта файлов по статусам: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.FileStatus]int)
	for rows.Next() {
		var status model.FileStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики статусов: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// derefOrEmpty возвращает значение указателя или пустую строку.
func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
