// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конкурентное изменение файла, запрос нужно повторить.
	ErrConflict = errors.New("конфликт — файл изменён параллельным запросом")
	// ErrDuplicateProforma — для проформы уже заведён ADL-файл.
	ErrDuplicateProforma = errors.New("для проформы уже заведён ADL-файл")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrIdempotencyMismatch — ключ идемпотентности уже использован
	// для другого файла или действия.
	ErrIdempotencyMismatch = errors.New("ключ идемпотентности использован для другого перехода")
	// ErrLedgerCorrupted — журнал перемещений не сворачивается в корректный
	// статус. Признак дефекта, а не ошибки клиента.
	ErrLedgerCorrupted = errors.New("журнал перемещений повреждён")
)
