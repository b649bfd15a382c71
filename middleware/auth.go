package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"gitea.com/go-chi/session"

	"github.com/schoolplan/timetable-server/services"
	"github.com/schoolplan/timetable-server/userctx"
)

// RequireAuth admits requests carrying either a valid bearer access token or
// a logged-in browser session, and records the user identity on the request
// context
func RequireAuth(authService services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				claims, err := authService.VerifyAccess(token)
				if err != nil {
					unauthorized(w)
					return
				}

				ctx := r.Context()
				ctx = userctx.SetUserEmail(ctx, claims.Email)
				ctx = userctx.SetUserRole(ctx, claims.Role)
				if userID, err := strconv.Atoi(claims.Subject); err == nil {
					ctx = userctx.SetUserID(ctx, userID)
				}

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sess := session.GetSession(r)
			if email, ok := sess.Get("user_email").(string); ok && email != "" {
				ctx := userctx.SetUserEmail(r.Context(), email)
				if role, ok := sess.Get("user_role").(string); ok {
					ctx = userctx.SetUserRole(ctx, role)
				}
				if userID, ok := sess.Get("user_id").(int); ok {
					ctx = userctx.SetUserID(ctx, userID)
				}

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			unauthorized(w)
		})
	}
}

// RequireAdmin rejects requests from non-admin users. Must run after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userctx.GetUserRole(r.Context()) != "admin" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from the Authorization header, or returns
// empty
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}
