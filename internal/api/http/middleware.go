package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/shortlink-service/shortlink/pkg/response"
	"github.com/shortlink-service/shortlink/pkg/token"
)

// tokenCookie is the cookie the login handler sets and the middleware reads.
const tokenCookie = "token"

type ctxKey int

const userIDKey ctxKey = 0

func userIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), true
	}

	return "", false
}

// authenticate validates the request's credential and resolves it to an
// existing user before letting the request through.
func authenticate(userSvc UserService, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := tokenFromRequest(r)
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			userID, err := token.Validate(tokenString, jwtSecret)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			// A valid token for a deleted user must not authenticate.
			if _, err := userSvc.GetUserInfo(r.Context(), userID); err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
