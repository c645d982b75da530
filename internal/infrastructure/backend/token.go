package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"leukemia-bot/internal/domain/entity"
)

// TokenInfo сведения из access-токена без проверки подписи
type TokenInfo struct {
	UserID    string
	ExpiresAt time.Time // нулевое значение, если срок не указан
}

// InspectToken читает claims токена, чтобы отсеять очевидно просроченные до похода на сервер.
// Подпись проверяет только бэкенд.
func InspectToken(token string, now time.Time) (*TokenInfo, error) {
	token = NormalizeToken(token)
	if token == "" {
		return nil, entity.InvalidInput("empty token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, entity.InvalidInput("token is not a JWT: %v", err)
	}

	info := &TokenInfo{}
	if v, ok := claims["user_id"]; ok {
		info.UserID = fmt.Sprint(v)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, entity.InvalidInput("bad exp claim: %v", err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return nil, entity.InvalidInput("token expired at %s", exp.Time.Format(time.RFC3339))
		}
	}
	return info, nil
}

// NormalizeToken убирает пробелы и префикс "Bearer ", если пользователь вставил заголовок целиком
func NormalizeToken(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
}
