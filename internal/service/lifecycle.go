// lifecycle.go — сервис жизненного цикла ADL-файлов.
// Заведение файлов, переходы статусов и сверка журнала.
//
// Каждый переход выполняется в одной транзакции: CAS-смена статуса
// в adl_files плюс запись в журнал file_movements. Статус в adl_files —
// кэш; источником истины является журнал.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/lifecycle"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/repository"
)

// transitionsTotal — счётчик переходов статусов по действию и исходу.
var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "adl_transitions_total",
		Help: "Количество переходов статусов ADL-файлов по действию и исходу",
	},
	[]string{"action", "outcome"},
)

// errIdempotentReplay — внутренний маркер: ключ идемпотентности записан
// конкурентным запросом, результат нужно перечитать.
var errIdempotentReplay = errors.New("идемпотентный повтор")

// txRunner — абстракция над repository.TxRunner для тестируемости.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// txScope — набор репозиториев, привязанных к одной транзакции.
type txScope struct {
	files       repository.ADLFileRepository
	movements   repository.MovementRepository
	idempotency repository.IdempotencyRepository
}

// LifecycleService — сервис жизненного цикла ADL-файлов.
type LifecycleService struct {
	files       repository.ADLFileRepository
	movements   repository.MovementRepository
	idempotency repository.IdempotencyRepository
	runner      txRunner
	txRepos     func(tx pgx.Tx) txScope
	logger      *slog.Logger
	now         func() time.Time
}

// NewLifecycleService создаёт сервис жизненного цикла.
func NewLifecycleService(pool *pgxpool.Pool, logger *slog.Logger) *LifecycleService {
	return &LifecycleService{
		files:       repository.NewADLFileRepository(pool),
		movements:   repository.NewMovementRepository(pool),
		idempotency: repository.NewIdempotencyRepository(pool),
		runner:      repository.NewTxRunner(pool),
		txRepos: func(tx pgx.Tx) txScope {
			return txScope{
				files:       repository.NewADLFileRepository(tx),
				movements:   repository.NewMovementRepository(tx),
				idempotency: repository.NewIdempotencyRepository(tx),
			}
		},
		logger: logger.With(slog.String("component", "lifecycle_service")),
		now:    time.Now,
	}
}

// CreateFileRequest — параметры заведения ADL-файла.
type CreateFileRequest struct {
	// PatientID — идентификатор пациента (обязателен)
	PatientID string
	// ProformaID — идентификатор проформы (опционально, уникален среди файлов)
	ProformaID *string
	// ClinicalSections — начальный состав клинических разделов (опционально)
	ClinicalSections json.RawMessage
	// ActorID — кто заводит файл
	ActorID string
	// Note — комментарий к записи журнала (опционально)
	Note *string
}

// CreateFile заводит новый ADL-файл в статусе created.
// Номер файла выделяется из последовательности; запись файла и первая
// запись журнала (create) создаются в одной транзакции.
func (s *LifecycleService) CreateFile(ctx context.Context, req CreateFileRequest) (*model.ADLFile, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patient_id обязателен", ErrValidation)
	}
	if req.ProformaID != nil && *req.ProformaID == "" {
		return nil, fmt.Errorf("%w: proforma_id не может быть пустым", ErrValidation)
	}

	sections := req.ClinicalSections
	if len(sections) == 0 {
		sections = json.RawMessage(`{}`)
	}
	if !json.Valid(sections) {
		return nil, fmt.Errorf("%w: clinical_sections — некорректный JSON", ErrValidation)
	}

	n, err := s.files.AllocateFileNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("выделение номера файла: %w", err)
	}

	f := &model.ADLFile{
		ID:               uuid.NewString(),
		FileNumber:       model.FormatFileNumber(n),
		PatientID:        req.PatientID,
		ProformaID:       req.ProformaID,
		Status:           model.StatusCreated,
		ClinicalSections: sections,
	}

	entry := &model.MovementEntry{
		ID:              uuid.NewString(),
		FileID:          f.ID,
		ActorID:         req.ActorID,
		Action:          model.ActionCreate,
		ResultingStatus: model.StatusCreated,
		OccurredAt:      s.now().UTC(),
		Note:            req.Note,
	}

	err = s.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		scope := s.txRepos(tx)
		if err := scope.files.Create(ctx, f); err != nil {
			return err
		}
		return scope.movements.Append(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateProforma) {
			return nil, fmt.Errorf("%w: proforma_id=%s", ErrDuplicateProforma, *req.ProformaID)
		}
		return nil, fmt.Errorf("заведение ADL-файла: %w", err)
	}

	s.logger.Info("ADL-файл заведён",
		slog.String("file_id", f.ID),
		slog.String("file_number", f.FileNumber),
		slog.String("patient_id", f.PatientID),
		slog.String("actor_id", req.ActorID),
	)

	return f, nil
}

// TransitionRequest — параметры перехода статуса.
type TransitionRequest struct {
	// FileID — UUID файла
	FileID string
	// Action — действие (store, retrieve, return, activate, archive)
	Action model.MovementAction
	// ActorID — кто выполняет действие
	ActorID string
	// Note — комментарий (опционально)
	Note *string
	// NewLocation — полка хранения; учитывается только при переходе в stored
	NewLocation *string
	// IdempotencyKey — ключ идемпотентности (опционально)
	IdempotencyKey string
}

// TransitionResult — результат перехода статуса.
type TransitionResult struct {
	// File — файл после перехода
	File *model.ADLFile
	// Movement — созданная (или ранее созданная) запись журнала
	Movement *model.MovementEntry
	// Idempotent — true, если вернулся результат ранее применённого перехода
	Idempotent bool
}

// ApplyTransition применяет действие к файлу.
// CAS-смена статуса и запись журнала выполняются в одной транзакции;
// при конкурентном изменении статуса возвращается ErrConflict.
// Повторный запрос с тем же ключом идемпотентности возвращает результат
// первого выполнения.
func (s *LifecycleService) ApplyTransition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if !model.IsValidAction(string(req.Action)) || req.Action == model.ActionCreate {
		transitionsTotal.WithLabelValues(string(req.Action), "validation").Inc()
		return nil, fmt.Errorf("%w: недопустимое действие %q", ErrValidation, req.Action)
	}

	// Ключ уже применён — возвращаем сохранённый результат
	if req.IdempotencyKey != "" {
		res, err := s.lookupIdempotent(ctx, req)
		if err == nil {
			transitionsTotal.WithLabelValues(string(req.Action), "idempotent").Inc()
			return res, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	f, err := s.files.GetByID(ctx, req.FileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			transitionsTotal.WithLabelValues(string(req.Action), "not_found").Inc()
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}

	next, err := lifecycle.Next(f.Status, req.Action)
	if err != nil {
		transitionsTotal.WithLabelValues(string(req.Action), "invalid_transition").Inc()
		return nil, err
	}

	// Метка времени строго превосходит последнюю запись журнала.
	// Серверные часы могут отставать после NTP-коррекции.
	ts := s.now().UTC()
	last, err := s.movements.LastEntry(ctx, req.FileID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("чтение последней записи журнала: %w", err)
	}
	if last != nil && !ts.After(last.OccurredAt) {
		ts = last.OccurredAt.Add(time.Microsecond)
	}

	// Полка хранения меняется только при входе в stored
	var newLocation *string
	if next == model.StatusStored {
		newLocation = req.NewLocation
	}

	entry := &model.MovementEntry{
		ID:              uuid.NewString(),
		FileID:          req.FileID,
		ActorID:         req.ActorID,
		Action:          req.Action,
		ResultingStatus: next,
		OccurredAt:      ts,
		Note:            req.Note,
	}

	err = s.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		scope := s.txRepos(tx)

		updatedAt, err := scope.files.CompareAndSwapStatus(ctx, req.FileID, f.Status, next, newLocation)
		if err != nil {
			return err
		}
		f.UpdatedAt = updatedAt

		if err := scope.movements.Append(ctx, entry); err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			rec := &model.IdempotencyRecord{
				Key:             req.IdempotencyKey,
				FileID:          req.FileID,
				MovementID:      entry.ID,
				ResultingStatus: next,
			}
			if err := scope.idempotency.Record(ctx, rec); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return errIdempotentReplay
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Конкурентный запрос с тем же ключом успел первым
		if errors.Is(err, errIdempotentReplay) {
			res, lookupErr := s.lookupIdempotent(ctx, req)
			if lookupErr != nil {
				return nil, fmt.Errorf("чтение результата конкурентного перехода: %w", lookupErr)
			}
			transitionsTotal.WithLabelValues(string(req.Action), "idempotent").Inc()
			return res, nil
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			transitionsTotal.WithLabelValues(string(req.Action), "not_found").Inc()
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			transitionsTotal.WithLabelValues(string(req.Action), "conflict").Inc()
			return nil, fmt.Errorf("%w: статус изменился, повторите запрос", ErrConflict)
		default:
			transitionsTotal.WithLabelValues(string(req.Action), "error").Inc()
			return nil, fmt.Errorf("применение перехода: %w", err)
		}
	}

	f.Status = next
	if newLocation != nil {
		f.PhysicalLocation = newLocation
	}

	transitionsTotal.WithLabelValues(string(req.Action), "ok").Inc()
	s.logger.Info("Переход статуса применён",
		slog.String("file_id", f.ID),
		slog.String("file_number", f.FileNumber),
		slog.String("action", string(req.Action)),
		slog.String("status", string(next)),
		slog.String("actor_id", req.ActorID),
	)

	return &TransitionResult{File: f, Movement: entry}, nil
}

// lookupIdempotent возвращает результат ранее применённого перехода по ключу.
// Ключ, использованный для другого файла или действия — ErrIdempotencyMismatch.
func (s *LifecycleService) lookupIdempotent(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	rec, err := s.idempotency.Get(ctx, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("проверка ключа идемпотентности: %w", err)
	}

	if rec.FileID != req.FileID {
		return nil, fmt.Errorf("%w: ключ применён к файлу %s", ErrIdempotencyMismatch, rec.FileID)
	}

	entry, err := s.movements.GetByID(ctx, rec.MovementID)
	if err != nil {
		return nil, fmt.Errorf("чтение записи журнала по ключу: %w", err)
	}
	if entry.Action != req.Action {
		return nil, fmt.Errorf("%w: ключ применён к действию %s", ErrIdempotencyMismatch, entry.Action)
	}

	f, err := s.files.GetByID(ctx, rec.FileID)
	if err != nil {
		return nil, fmt.Errorf("чтение файла по ключу: %w", err)
	}

	return &TransitionResult{File: f, Movement: entry, Idempotent: true}, nil
}

// UpdateFileRequest — параметры изменения карточки файла.
type UpdateFileRequest struct {
	// ClinicalSections — новый состав разделов; nil = не менять
	ClinicalSections json.RawMessage
	// PhysicalLocation — новая полка; учитывается при PhysicalLocationSet
	PhysicalLocation *string
	// PhysicalLocationSet — true, если полку нужно изменить (в т.ч. очистить)
	PhysicalLocationSet bool
}

// UpdateFile изменяет клинические разделы и/или полку хранения.
// Архивированные файлы неизменяемы; полка редактируется только
// у файлов в статусе stored.
func (s *LifecycleService) UpdateFile(ctx context.Context, fileID string, req UpdateFileRequest) (*model.ADLFile, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}

	if f.Status == model.StatusArchived {
		return nil, fmt.Errorf("%w: архивированный файл неизменяем", ErrValidation)
	}

	if req.ClinicalSections != nil {
		if !json.Valid(req.ClinicalSections) {
			return nil, fmt.Errorf("%w: clinical_sections — некорректный JSON", ErrValidation)
		}
		if err := s.files.UpdateClinicalSections(ctx, fileID, req.ClinicalSections); err != nil {
			return nil, fmt.Errorf("обновление клинических разделов: %w", err)
		}
	}

	if req.PhysicalLocationSet {
		if f.Status != model.StatusStored {
			return nil, fmt.Errorf("%w: полка редактируется только у файлов в архиве (stored)", ErrValidation)
		}
		if err := s.files.UpdatePhysicalLocation(ctx, fileID, req.PhysicalLocation); err != nil {
			return nil, fmt.Errorf("обновление полки хранения: %w", err)
		}
	}

	updated, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("чтение файла после обновления: %w", err)
	}

	s.logger.Info("Карточка файла обновлена",
		slog.String("file_id", fileID),
	)

	return updated, nil
}

// ReplayStatus сверяет кэшированный статус файла со свёрткой журнала.
// Несовпадение — признак дефекта, отчёт фиксирует оба значения.
func (s *LifecycleService) ReplayStatus(ctx context.Context, fileID string) (*model.ConsistencyReport, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}

	entries, err := s.movements.History(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала перемещений: %w", err)
	}

	replayed, err := lifecycle.Replay(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerCorrupted, err)
	}

	report := &model.ConsistencyReport{
		FileID:         fileID,
		StoredStatus:   f.Status,
		ReplayedStatus: replayed,
		Consistent:     f.Status == replayed,
		Entries:        len(entries),
	}

	if !report.Consistent {
		s.logger.Error("Кэшированный статус расходится с журналом",
			slog.String("file_id", fileID),
			slog.String("stored", string(f.Status)),
			slog.String("replayed", string(replayed)),
		)
	}

	return report, nil
}
