package poller

import (
	"fmt"
	"time"
)

// PollError ошибка последнего опроса, хранимая в слоте ошибки до следующего успешного опроса
type PollError struct {
	Err        error
	Message    string // сообщение для водителя
	OccurredAt time.Time
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll failed at %s: %v", e.OccurredAt.Format(time.RFC3339), e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}
