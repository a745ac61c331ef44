package journal

import "errors"

var (
	// ErrInvalidRecord возвращается при попытке сохранить неполную запись
	ErrInvalidRecord = errors.New("journal.repository: invalid action record")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("journal.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("journal.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("journal.repository: failed to scan row")
)
