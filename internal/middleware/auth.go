package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/c0ex38/Backend-DuaMiss/internal/dto"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CtxUserID = "user_id"

type TokenVerifier interface {
	ParseAccess(ctx context.Context, raw string) (uuid.UUID, error)
}

// AuthRequired проверяет Bearer-токен и кладёт принципала в контекст запроса.
func AuthRequired(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		token, ok := ExtractBearerToken(authz)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("empty token"))
			return
		}

		uid, err := verifier.ParseAccess(c.Request.Context(), token)
		if err != nil {
			log.Warn("Токен отклонён", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		c.Set(CtxUserID, uid)
		c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), uid))
		c.Next()
	}
}

// ExtractBearerToken извлекает токен из заголовка Authorization.
// Допускаются кавычки вокруг токена и хвост после запятой:
// - "Bearer abc.def.ghi"
// - "Bearer \"abc.def.ghi\""
// - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	scheme, rest, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(rest), `"'`)
	if head, _, cut := strings.Cut(t, ","); cut {
		t = head
	}
	t = strings.TrimSpace(t)
	if head, _, cut := strings.Cut(t, " "); cut {
		t = head
	}
	return strings.Trim(t, ` "'`), true
}
