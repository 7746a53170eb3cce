package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes the two actors the portal cares about. Staff is the
// authority for delivery status; clients drive their own onboarding.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

const (
	contextRoleKey = "auth.role"
	contextUserKey = "auth.user_id"
)

// Claims is the portal token payload.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken mints a signed token for a user and role.
func IssueToken(secret []byte, userID string, role Role, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Middleware parses a Bearer token when present and stores the actor in the
// request context. Requests without a token pass through as clients; routes
// that need more use RequireRole.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextRoleKey, RoleClient)

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid token"})
			return
		}

		c.Set(contextRoleKey, claims.Role)
		c.Set(contextUserKey, claims.Subject)
		c.Next()
	}
}

// RequireRole gates a route on the parsed token role.
func RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if RoleFromContext(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "message": "forbidden"})
			return
		}
		c.Next()
	}
}

// RoleFromContext returns the request actor, defaulting to client.
func RoleFromContext(c *gin.Context) Role {
	if v, ok := c.Get(contextRoleKey); ok {
		if role, ok := v.(Role); ok {
			return role
		}
	}
	return RoleClient
}

// UserIDFromContext returns the token subject, if any.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(contextUserKey)
}
