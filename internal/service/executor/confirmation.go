package executor

import (
	"context"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

// Confirmation шаг явного подтверждения водителем.
// Вызывается после захвата блокировки бронирования и до отправки запроса.
// false или ошибка означают отказ: запрос не отправляется, состояние не меняется.
type Confirmation func(ctx context.Context, action domain.PendingAction) (bool, error)

// ConfirmWith возвращает подтверждение с заранее известным ответом
// (например, флаг confirmed из тела HTTP запроса)
func ConfirmWith(confirmed bool) Confirmation {
	return func(context.Context, domain.PendingAction) (bool, error) {
		return confirmed, nil
	}
}
