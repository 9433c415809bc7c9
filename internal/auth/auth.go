package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Identity - вызывающий пользователь, извлечённый из токена.
type Identity struct {
	UserID  string
	IsStaff bool
}

// Claims - содержимое токена, который выпускает сервис идентификации.
type Claims struct {
	UserID  string `json:"user_id"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// WithIdentity кладёт пользователя в контекст запроса.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext достаёт пользователя из контекста запроса.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// ValidateToken проверяет подпись и срок действия токена.
func ValidateToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

// Required пропускает запрос дальше только с действительным Bearer-токеном.
func Required(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "missing token")
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := ValidateToken(secret, parts[1])
			if err != nil {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, IsStaff: claims.IsStaff})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
