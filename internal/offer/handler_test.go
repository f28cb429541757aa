package offer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	t      *testing.T
	h      *Handler
	user   *models.User
	dealer *models.DealerProfile
}

func (e env) do(fn http.HandlerFunc, method, target, body string, id uint) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req = req.WithContext(auth.WithDealer(auth.WithUser(req.Context(), e.user), e.dealer))
	if id != 0 {
		req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(id), 10)})
	}
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func TestOffers_CreateListUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	user, dealer := testutil.CreateDealer(t, db, "d@example.com", models.VerificationVerified)
	e := env{t: t, h: NewHandler(db, estimator.New(estimator.Standard, 2025)), user: user, dealer: dealer}
	l := testutil.CreateLead(t, db, testutil.CreateListing(t, db, models.SourceHotLead), dealer, models.StatusNegotiating)
	leadID := strconv.Itoa(int(l.ID))

	w := e.do(e.h.Create, http.MethodPost, "/api/offers", `{"lead_id":`+leadID+`,"amount":14000}`, 0)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first models.Offer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = e.do(e.h.Create, http.MethodPost, "/api/offers", `{"lead_id":`+leadID+`,"amount":14500,"note":"after inspection"}`, 0)
	require.Equal(t, http.StatusCreated, w.Code)
	var second models.Offer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	w = e.do(e.h.List, http.MethodGet, "/api/offers?lead_id="+leadID, "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Offer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	var got models.Lead
	require.NoError(t, db.First(&got, l.ID).Error)
	require.NotNil(t, got.DealerOfferAmount)
	assert.Equal(t, 14500.0, *got.DealerOfferAmount)

	// Editing an older offer leaves the current dealer offer alone.
	w = e.do(e.h.Update, http.MethodPut, "/", `{"amount":13000}`, first.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&got, l.ID).Error)
	assert.Equal(t, 14500.0, *got.DealerOfferAmount)

	w = e.do(e.h.Update, http.MethodPut, "/", `{"amount":15000}`, second.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&got, l.ID).Error)
	assert.Equal(t, 15000.0, *got.DealerOfferAmount)

	assert.Equal(t, http.StatusBadRequest, e.do(e.h.Update, http.MethodPut, "/", `{"amount":-1}`, second.ID).Code)
	assert.Equal(t, http.StatusOK, e.do(e.h.Get, http.MethodGet, "/", "", second.ID).Code)
}

func TestOffers_ScopedToDealer(t *testing.T) {
	db := testutil.NewDB(t)
	user, dealer := testutil.CreateDealer(t, db, "d@example.com", models.VerificationVerified)
	otherUser, other := testutil.CreateDealer(t, db, "o@example.com", models.VerificationVerified)
	h := NewHandler(db, estimator.New(estimator.Standard, 2025))
	foreign := testutil.CreateLead(t, db, testutil.CreateListing(t, db, models.SourceHotLead), other, models.StatusNew)

	mine := env{t: t, h: h, user: user, dealer: dealer}
	theirs := env{t: t, h: h, user: otherUser, dealer: other}

	w := mine.do(h.Create, http.MethodPost, "/api/offers", `{"lead_id":`+strconv.Itoa(int(foreign.ID))+`,"amount":1000}`, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = theirs.do(h.Create, http.MethodPost, "/api/offers", `{"lead_id":`+strconv.Itoa(int(foreign.ID))+`,"amount":1000}`, 0)
	require.Equal(t, http.StatusCreated, w.Code)
	var o models.Offer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))

	assert.Equal(t, http.StatusNotFound, mine.do(h.Get, http.MethodGet, "/", "", o.ID).Code)
}

func TestEstimateEndpoint(t *testing.T) {
	db := testutil.NewDB(t)
	user, dealer := testutil.CreateDealer(t, db, "d@example.com", models.VerificationVerified)
	e := env{t: t, h: NewHandler(db, estimator.New(estimator.Standard, 2025)), user: user, dealer: dealer}

	w := e.do(e.h.Estimate, http.MethodPost, "/api/offers/estimate", `{"year":2020,"make":"Toyota","model":"Camry","mileage":30000,"condition":"good"}`, 0)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var est estimator.Estimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 12750.0, est.Low)
	assert.Equal(t, 15000.0, est.Fair)
	assert.Equal(t, 17250.0, est.Max)

	w = e.do(e.h.Estimate, http.MethodPost, "/api/offers/estimate", `{"make":"Toyota"}`, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
