package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportUnavailable возвращается, когда ответ от backend не получен (нет соединения)
	ErrTransportUnavailable = errors.New("backend client: transport unavailable")

	// ErrTimeout возвращается, когда ответ не получен за отведённое время
	ErrTimeout = errors.New("backend client: timeout")

	// ErrServerRejected возвращается при non-2xx ответе (см. ServerRejectedError)
	ErrServerRejected = errors.New("backend client: server rejected request")

	// ErrServerFailure возвращается, когда 2xx ответ содержит success:false (см. ServerFailureError)
	ErrServerFailure = errors.New("backend client: server reported failure")

	// ErrMalformedResponse возвращается, когда 2xx ответ не соответствует ожидаемой структуре
	ErrMalformedResponse = errors.New("backend client: malformed response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("backend client: internal error")
)

// ServerRejectedError non-2xx ответ backend с кодом и сообщением сервера
type ServerRejectedError struct {
	Code    int
	Message string
}

func (e *ServerRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrServerRejected, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrServerRejected, e.Code, e.Message)
}

// Is позволяет сравнивать через errors.Is(err, ErrServerRejected)
func (e *ServerRejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// ServerFailureError 2xx ответ с success:false и необязательным сообщением сервера
type ServerFailureError struct {
	Message string
}

func (e *ServerFailureError) Error() string {
	if e.Message == "" {
		return ErrServerFailure.Error()
	}
	return fmt.Sprintf("%s: %s", ErrServerFailure, e.Message)
}

// Is позволяет сравнивать через errors.Is(err, ErrServerFailure)
func (e *ServerFailureError) Is(target error) bool {
	return target == ErrServerFailure
}
