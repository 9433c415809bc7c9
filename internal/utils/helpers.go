package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendJSON отправляет тело ответа в формате JSON с указанным кодом.
func SendJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Println(err)
	}
}

// HandleServiceError переводит ошибку сервиса в HTTP-ответ.
// Нетипизированные ошибки логируются и уходят клиенту как 500 с сообщением fallback.
func HandleServiceError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		logger.Println(err)
		if errorResponse.Kind == models.KindInternal {
			SendErrorResponse(w, http.StatusInternalServerError, fallback)
			return
		}
		SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	logger.Println(fallback+":", err)
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// ParsePage обрабатывает page и page_size и возвращает limit и offset
func ParsePage(pageStr, pageSizeStr string, defaultSize, maxSize int) (int, int, error) {
	page, pageSize := 1, defaultSize
	var err error

	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			return 0, 0, fmt.Errorf("invalid page parameter, must be a positive integer")
		}
	}

	if pageSizeStr != "" {
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 || pageSize > maxSize {
			return 0, 0, fmt.Errorf("invalid page_size parameter, must be a positive integer [1:%d]", maxSize)
		}
	}

	if page-1 > math.MaxInt32/pageSize {
		return 0, 0, fmt.Errorf("invalid page parameter, page %d is out of range", page)
	}

	return pageSize, (page - 1) * pageSize, nil
}

// ParseOptionalInt разбирает необязательный целочисленный параметр запроса.
func ParseOptionalInt(name, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter, must be an integer", name)
	}
	return &n, nil
}

// IsValidID проверяет, что идентификатор является UUID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PageLinks строит ссылки next и previous для постраничного ответа.
func PageLinks(r *http.Request, limit, offset, total int) (next, previous *string) {
	page := offset/limit + 1
	link := func(p int) *string {
		u := *r.URL
		q := u.Query()
		q.Set("page", strconv.Itoa(p))
		u.RawQuery = q.Encode()
		s := u.RequestURI()
		return &s
	}
	if offset+limit < total {
		next = link(page + 1)
	}
	if page > 1 {
		previous = link(page - 1)
	}
	return next, previous
}
