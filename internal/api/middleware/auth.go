package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/natanhermes/buildflow/pkg/jwt"
	"github.com/natanhermes/buildflow/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxUsername = "username"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// TokenChecker reports revoked token ids. nil disables the check.
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth authenticates the request from the Authorization: Bearer header or,
// when absent, from the session cookie.
func JWTAuth(jwtMgr *jwt.Manager, tokens TokenChecker, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			raw, _ = c.Cookie(cookieName)
		}
		if raw == "" {
			response.Unauthorized(c, 10002, "Autenticação necessária")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil {
			response.Unauthorized(c, 10002, "Sessão inválida ou expirada")
			c.Abort()
			return
		}
		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Tipo de token inválido")
			c.Abort()
			return
		}

		// a redis failure lets the request through
		if tokens != nil && claims.ID != "" {
			if revoked, err := tokens.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, 10002, "Sessão encerrada")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RoleAuth lets through only the listed roles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, 10002, "Autenticação necessária")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "Acesso não permitido para o seu perfil")
		c.Abort()
	}
}
