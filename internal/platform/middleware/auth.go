package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CallerClaims are the session token fields the proxy cares about.
type CallerClaims struct {
	Role     string `json:"role"`
	UserRole string `json:"user_role"`
	jwt.RegisteredClaims
}

// EffectiveRole prefers the application role over the database role.
func (c CallerClaims) EffectiveRole() string {
	if c.UserRole != "" {
		return c.UserRole
	}
	return c.Role
}

// JWTAuth requires an HMAC-signed bearer token. With allowedRoles set,
// the caller's role must be one of them. An empty secret disables the check.
func JWTAuth(secret string, allowedRoles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight carries no credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := CallerClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, claims.EffectiveRole()) {
				writeError(w, http.StatusForbidden, "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
