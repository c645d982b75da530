package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput: файл не картинка, пустой или больше лимита.
	ErrInvalidInput = errors.New("invalid input")
	// ErrValidation: попытка отправить отчёт без получателей.
	ErrValidation = errors.New("validation failed")
	// ErrTransport: сеть недоступна или истёк таймаут запроса.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse: удалённый сервис вернул неожиданный ответ.
	ErrMalformedResponse = errors.New("malformed response")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotClinician     = errors.New("only clinicians can send reports")
	ErrNoResult         = errors.New("no successful classification to send")
	ErrDialogState      = errors.New("operation is not allowed in the current dialog state")
)

// RemoteRejectionError: ответ сервера с кодом вне 2xx.
type RemoteRejectionError struct {
	StatusCode int
	Detail     string // текст ошибки от сервера, может быть пустым
}

func (e *RemoteRejectionError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API request failed with status code: %d", e.StatusCode)
}

// InvalidInput оборачивает причину отказа в ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
