package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

const maxBodyBytes = 1 << 20

// SubjectResolver находит профиль вызывающего по данным токена.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, userID string, isStaff bool) (permissions.Subject, error)
}

// resolveSubject строит Subject из токена запроса. Без токена возвращается анонимный Subject.
func resolveSubject(ctx context.Context, w http.ResponseWriter, logger *log.Logger, resolver SubjectResolver) (permissions.Subject, bool) {
	identity, _ := auth.FromContext(ctx)
	subject, err := resolver.ResolveSubject(ctx, identity.UserID, identity.IsStaff)
	if err != nil {
		utils.HandleServiceError(w, logger, err, "failed to resolve caller profile")
		return subject, false
	}
	return subject, true
}

// readBody читает тело запроса целиком, ограничивая его размер.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}

// pathID достаёт идентификатор из пути; некорректный UUID не может принадлежать ни одной записи.
func pathID(w http.ResponseWriter, r *http.Request, name, notFound string) (string, bool) {
	id := r.PathValue(name)
	if !utils.IsValidID(id) {
		utils.SendErrorResponse(w, http.StatusNotFound, notFound)
		return "", false
	}
	return id, true
}
