package middleware

import (
	"net/http"
	"strings"

	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Identity trusts the caller identity forwarded by the authentication gateway.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(HeaderUserID)
			if rawID == "" {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			userID, err := uuid.Parse(rawID)
			if err != nil || userID == uuid.Nil {
				logger.Warn("Malformed caller identity",
					zap.String("user_id", rawID),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid caller identity")
				return
			}

			role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
			switch role {
			case "":
				// the gateway only marks operators
				role = utils.RoleCustomer
			case utils.RoleCustomer, utils.RoleAdmin:
			default:
				logger.Warn("Unknown caller role",
					zap.String("user_id", userID.String()),
					zap.String("role", role))
				utils.ResponseUnauthorized(w, "Invalid caller role")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin - middleware cek role admin. Must run after Identity.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !utils.IsAdmin(r.Context()) {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
