package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateAndRequireDealer(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, NewTokens("test-secret", time.Hour))

	dealerUser, dealer := testutil.CreateDealer(t, db, "d@example.com", models.VerificationVerified)
	seller := testutil.CreateSeller(t, db, "s@example.com")

	var seen *models.DealerProfile
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = DealerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	chain := Authenticate(svc)(RequireDealer(svc)(final))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)
		return w
	}
	bearer := func(u *models.User) string {
		tok, err := svc.Tokens.Issue(u)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	t.Run("dealer passes", func(t *testing.T) {
		w := call(bearer(dealerUser))
		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, dealer.ID, seen.ID)
	})

	t.Run("seller forbidden", func(t *testing.T) {
		w := call(bearer(seller))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Only dealers can access this")
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := call("Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("unknown subject", func(t *testing.T) {
		w := call(bearer(&models.User{ID: 9999, Role: models.RoleDealer}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "User not found")
	})
}
