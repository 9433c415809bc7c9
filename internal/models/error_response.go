package models

import (
	"errors"
	"net/http"
)

// ErrorKind - категория ошибки, по которой HTTP-слой выбирает код ответа.
type ErrorKind string

const (
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindInvalidPayload    ErrorKind = "invalid_payload"
	KindIncompleteDetail  ErrorKind = "incomplete_detail"
	KindInvalidDetailKeys ErrorKind = "invalid_detail_keys"
	KindDetailNotFound    ErrorKind = "detail_not_found"
	KindInvalidQuery      ErrorKind = "invalid_query"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInternal          ErrorKind = "internal"
)

// Для DetailNotFound клиент получает 400, а не 404: запрос ссылается на несуществующий offer_type.
// Conflict отдаётся как 403, так же как повторный отзыв в исходном API.
var kindStatus = map[ErrorKind]int{
	KindForbidden:         http.StatusForbidden,
	KindUnauthorized:      http.StatusUnauthorized,
	KindInvalidPayload:    http.StatusBadRequest,
	KindIncompleteDetail:  http.StatusBadRequest,
	KindInvalidDetailKeys: http.StatusBadRequest,
	KindDetailNotFound:    http.StatusBadRequest,
	KindInvalidQuery:      http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusForbidden,
	KindInternal:          http.StatusInternalServerError,
}

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	Kind       ErrorKind `json:"-"`
	StatusCode int       `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    message}
}

// NewKindError создает ошибку заданной категории, код ответа берётся из категории.
func NewKindError(kind ErrorKind, message string) *ErrorResponse {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &ErrorResponse{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
	}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// KindOf возвращает категорию ошибки; для нетипизированных ошибок - KindInternal.
func KindOf(err error) ErrorKind {
	var errorResponse *ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.Kind
	}
	return KindInternal
}

func kindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindInvalidPayload
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}
