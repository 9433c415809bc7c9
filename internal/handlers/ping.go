package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/utils"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHandler возвращает обработчик GET запроса к /api/ping.
// Сервис отвечает "ok", только если база данных отвечает на ping.
func PingHandler(db Pinger, logger *log.Logger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Println("ping failed:", err)
			utils.SendErrorResponse(w, http.StatusServiceUnavailable, "database is unavailable")
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, "ok"); err != nil {
			logger.Println(err)
		}
	}
}
