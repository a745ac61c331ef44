package store

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SnapshotMetrics метрики размера применённого снимка (опционально)
type SnapshotMetrics interface {
	Set(float64)
}
