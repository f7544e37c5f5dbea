package middleware

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the session cookie set on login and register.
const CookieName = "token"

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func GzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") == "gzip" {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				response.Error(rw, http.StatusBadRequest, "Invalid gzip body")
				return
			}
			defer gzr.Close()
			r.Body = io.NopCloser(gzr)
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			rw.Header().Del("Content-Length")
			gzw := gzip.NewWriter(rw)
			defer gzw.Close()

			next.ServeHTTP(gzipResponseWriter{Writer: gzw, ResponseWriter: rw}, r)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// UserFinder loads the account behind a session.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

// tokenFromRequest prefers the session cookie and falls back to a Bearer
// header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// JWTMiddleware verifies the session token and re-loads the user so that the
// role in context is current.
func JWTMiddleware(secret []byte, repo UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				response.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			u, err := repo.FindUserByID(r.Context(), claims.Subject)
			if errors.Is(err, storage.ErrNotFound) {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if err != nil {
				response.ServerError(w, "load session user", err)
				return
			}
			ctx := ContextWithUser(r.Context(), u.ID, u.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after JWTMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != user.RoleAdmin {
			response.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID{}).(string)
	return id
}

func RoleFromContext(ctx context.Context) user.Role {
	role, _ := ctx.Value(ctxKeyRole{}).(user.Role)
	return role
}

func ContextWithUser(ctx context.Context, userID string, role user.Role) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID{}, userID)
	return context.WithValue(ctx, ctxKeyRole{}, role)
}
