package lead

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/notification"
	"github.com/revomotors/api-leads/internal/testutil"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Outbound
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notification.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

type fixture struct {
	db     *gorm.DB
	h      *Handler
	sender *recordingSender
	user   *models.User
	dealer *models.DealerProfile
	now    time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	sender := &recordingSender{}
	h := NewHandler(db, estimator.New(estimator.Standard, 2025), sender, opts)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	user, dealer := testutil.CreateDealer(t, db, "dealer@example.com", models.VerificationVerified)
	return &fixture{db: db, h: h, sender: sender, user: user, dealer: dealer, now: now}
}

// request builds a request as an authenticated dealer would send it through
// the router.
func (f *fixture) request(method, target, body string, leadID uint) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := auth.WithUser(req.Context(), f.user)
	ctx = auth.WithDealer(ctx, f.dealer)
	req = req.WithContext(ctx)
	if leadID != 0 {
		req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(leadID), 10)})
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}
