package ai

import (
	"errors"
	"fmt"
	"time"
)

// AttemptOutcome исход одной попытки устройства
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFailure AttemptOutcome = "failure"
)

// FailureKind вид ошибки попытки
type FailureKind string

const (
	// FailureConstruction - движок не удалось создать на устройстве
	FailureConstruction FailureKind = "device_construction_failed"
	// FailureExecution - движок создан, но транскрипция упала
	FailureExecution FailureKind = "transcription_execution_failed"
)

// DeviceAttempt запись об одной попытке устройства.
// Упорядоченная последовательность попыток образует attempt trail.
type DeviceAttempt struct {
	Device        Device         `json:"device"`
	Precision     PrecisionMode  `json:"precision"`
	Outcome       AttemptOutcome `json:"outcome"`
	FailureKind   FailureKind    `json:"failureKind,omitempty"`
	FailureDetail string         `json:"failureDetail,omitempty"`
	LoadTime      time.Duration  `json:"loadTime"`
}

// ErrInputNotFound аудио файл не существует, не читается или пуст.
// Возвращается до первой попытки устройства.
var ErrInputNotFound = errors.New("input audio not found or empty")

// InputFailureKind различает вход, который не удалось разрешить,
// и существующий файл, который не удалось декодировать
type InputFailureKind string

const (
	InputMissing     InputFailureKind = "missing"
	InputUndecodable InputFailureKind = "undecodable"
)

// InputNotFoundError ошибка входного файла с путём и причиной
type InputNotFoundError struct {
	Path   string
	Kind   InputFailureKind
	Reason string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input audio %q: %s", e.Path, e.Reason)
}

// Unwrap позволяет errors.Is(err, ErrInputNotFound)
func (e *InputNotFoundError) Unwrap() error { return ErrInputNotFound }

// ErrAllDevicesExhausted все устройства из порядка предпочтения отказали
var ErrAllDevicesExhausted = errors.New("all devices exhausted")

// AllDevicesExhaustedError терминальная ошибка прогона: ни одно устройство
// не дало успешной транскрипции. Несёт полный attempt trail для диагностики.
type AllDevicesExhaustedError struct {
	Attempts []DeviceAttempt
}

func (e *AllDevicesExhaustedError) Error() string {
	return fmt.Sprintf("all devices exhausted after %d attempts", len(e.Attempts))
}

// Unwrap позволяет errors.Is(err, ErrAllDevicesExhausted)
func (e *AllDevicesExhaustedError) Unwrap() error { return ErrAllDevicesExhausted }

// attemptError нормализованная ошибка одной попытки.
// Произвольные ошибки и паники движка не пересекают границу попытки:
// здесь они сводятся к фиксированному виду с сохранением деталей строкой.
type attemptError struct {
	kind   FailureKind
	detail string
}

func (e *attemptError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

func newAttemptError(kind FailureKind, cause error) *attemptError {
	detail := "unknown failure"
	if cause != nil {
		detail = cause.Error()
	}
	return &attemptError{kind: kind, detail: detail}
}
