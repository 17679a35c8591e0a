package model

import "time"

// MovementAction — действие, вызвавшее переход статуса ADL-файла.
type MovementAction string

// Действия журнала перемещений.
const (
	// ActionCreate — заведение файла (created).
	ActionCreate MovementAction = "create"
	// ActionStore — размещение папки в архиве (stored).
	ActionStore MovementAction = "store"
	// ActionRetrieve — выдача папки на руки (retrieved).
	ActionRetrieve MovementAction = "retrieve"
	// ActionReturn — возврат папки в архив (stored).
	ActionReturn MovementAction = "return"
	// ActionActivate — перевод в непрерывное клиническое использование (active).
	ActionActivate MovementAction = "activate"
	// ActionArchive — закрытие файла (archived, терминальное).
	ActionArchive MovementAction = "archive"
)

// IsValidAction проверяет, является ли строка допустимым действием.
func IsValidAction(s string) bool {
	switch MovementAction(s) {
	case ActionCreate, ActionStore, ActionRetrieve, ActionReturn, ActionActivate, ActionArchive:
		return true
	}
	return false
}

// MovementEntry — запись журнала перемещений: кто, что и когда сделал с файлом.
// Журнал append-only, записи никогда не редактируются и не удаляются.
// Хранится в таблице file_movements.
type MovementEntry struct {
	// ID — UUID записи
	ID string
	// FileID — UUID ADL-файла
	FileID string
	// ActorID — идентификатор сотрудника, выполнившего действие
	// (preferred_username или client_id из JWT)
	ActorID string
	// Action — выполненное действие
	Action MovementAction
	// ResultingStatus — статус, в который файл перешёл в результате действия
	ResultingStatus FileStatus
	// OccurredAt — серверное время перехода.
	// Строго возрастает в пределах одного файла.
	OccurredAt time.Time
	// Note — причина/комментарий (опционально)
	Note *string
}

// StatusHistogram — распределение файлов по статусам.
// Сумма значений всегда равна Total.
type StatusHistogram struct {
	// Counts — количество файлов по каждому статусу
	Counts map[FileStatus]int
	// Total — общее количество файлов
	Total int
}

// OverdueRetrieval — файл, выданный на руки дольше порогового времени.
type OverdueRetrieval struct {
	// File — сам файл (текущий статус retrieved)
	File *ADLFile
	// RetrievedBy — кто забрал папку
	RetrievedBy string
	// RetrievedAt — когда папка была выдана
	RetrievedAt time.Time
}

// ConsistencyReport — результат сверки кэшированного статуса файла
// с пересчётом журнала перемещений.
type ConsistencyReport struct {
	// FileID — UUID проверенного файла
	FileID string
	// StoredStatus — статус из таблицы adl_files
	StoredStatus FileStatus
	// ReplayedStatus — статус, полученный свёрткой журнала
	ReplayedStatus FileStatus
	// Consistent — true, если статусы совпали
	Consistent bool
	// Entries — количество записей журнала, участвовавших в пересчёте
	Entries int
}

// IdempotencyRecord — запись о применённом переходе по ключу идемпотентности.
// Повторный запрос с тем же ключом возвращает сохранённый результат,
// не создавая вторую запись журнала.
// Хранится в таблице transition_idempotency.
type IdempotencyRecord struct {
	// Key — ключ идемпотентности, заданный клиентом
	Key string
	// FileID — UUID файла, к которому был применён переход
	FileID string
	// MovementID — UUID созданной записи журнала
	MovementID string
	// ResultingStatus — статус файла после перехода
	ResultingStatus FileStatus
	// CreatedAt — время первого применения
	CreatedAt time.Time
}
