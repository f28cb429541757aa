package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
)

type ctxKey string

const (
	ctxUser   ctxKey = "user"
	ctxDealer ctxKey = "dealer"
)

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxUser).(*models.User)
	return u, ok && u != nil
}

func WithDealer(ctx context.Context, d *models.DealerProfile) context.Context {
	return context.WithValue(ctx, ctxDealer, d)
}

func DealerFromContext(ctx context.Context) (*models.DealerProfile, bool) {
	d, ok := ctx.Value(ctxDealer).(*models.DealerProfile)
	return d, ok && d != nil
}

// Authenticate requires a valid bearer token and stores the user in the
// request context.
func Authenticate(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				utils.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			user, err := svc.CurrentUser(r.Context(), strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			switch {
			case errors.Is(err, ErrInvalidToken):
				w.Header().Set("WWW-Authenticate", "Bearer")
				utils.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			case errors.Is(err, ErrUserNotFound):
				utils.Error(w, http.StatusUnauthorized, "User not found")
				return
			case err != nil:
				utils.InternalError(w, r, "resolve current user", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireDealer must run after Authenticate. It rejects non-dealers with 403
// and loads the caller's dealer profile into the context.
func RequireDealer(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				utils.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if user.Role != models.RoleDealer {
				utils.Error(w, http.StatusForbidden, "Only dealers can access this")
				return
			}
			profile, err := svc.DealerProfile(r.Context(), user.ID)
			if errors.Is(err, ErrDealerProfileAbsent) {
				utils.Error(w, http.StatusNotFound, "Dealer profile not found")
				return
			}
			if err != nil {
				utils.InternalError(w, r, "load dealer profile", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithDealer(r.Context(), profile)))
		})
	}
}
