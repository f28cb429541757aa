package dealer

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/blob"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	h      *Handler
	user   *models.User
	dealer *models.DealerProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := blob.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	user, dealer := testutil.CreateDealer(t, db, "dana@example.com", models.VerificationVerified)
	return &fixture{db: db, h: NewHandler(db, store), user: user, dealer: dealer}
}

func (f *fixture) call(fn http.HandlerFunc, method, body string, id uint) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/dealers", rdr)
	return f.serve(fn, req, id)
}

func (f *fixture) serve(fn http.HandlerFunc, req *http.Request, id uint) *httptest.ResponseRecorder {
	req = req.WithContext(auth.WithDealer(auth.WithUser(req.Context(), f.user), f.dealer))
	if id != 0 {
		req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(id), 10)})
	}
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestProfile_UpdateIgnoresBlankFields(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.UpdateProfile, http.MethodPut, `{"city":"Austin","phone":"  ","company_name":""}`, 0)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.call(f.h.GetProfile, http.MethodGet, "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[ProfileDTO](t, w)
	assert.Equal(t, "Austin", p.City)
	assert.Equal(t, "555-0100", p.Phone)
	assert.Equal(t, "Dana Motors", p.CompanyName)
	assert.True(t, p.CommunicationPreferences.AutoFollowupEnabled)
}

func TestPreferences_PartialUpdate(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.UpdatePreferences, http.MethodPut, `{"followup_day_3":false}`, 0)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ActionResponse](t, w)
	require.NotNil(t, resp.Preferences)
	assert.False(t, resp.Preferences.FollowupDay3)
	assert.True(t, resp.Preferences.FollowupDay1)

	var stored models.DealerProfile
	require.NoError(t, f.db.First(&stored, f.dealer.ID).Error)
	assert.False(t, stored.FollowupDay3)
	assert.True(t, stored.AutoFollowupEnabled)
	assert.True(t, stored.FollowupDay7)
}

func TestFilters_Lifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.CreateFilter, http.MethodPost, `{"makes":["Toyota"],"year_min":2015,"offerup_enabled":false,"radius_miles":0}`, 0)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ActionResponse](t, w)
	require.NotZero(t, created.FilterID)

	w = f.call(f.h.ListFilters, http.MethodGet, "", 0)
	list := decode[FilterListResponse](t, w)
	require.Equal(t, 1, list.Total)
	got := list.Filters[0]
	assert.Equal(t, []string{"Toyota"}, got.VehicleFilters.Makes)
	assert.Equal(t, []string{}, got.VehicleFilters.Models)
	require.NotNil(t, got.VehicleFilters.YearMin)
	assert.Equal(t, 2015, *got.VehicleFilters.YearMin)
	assert.Equal(t, 0, got.LocationFilters.RadiusMiles)
	assert.Equal(t, MarketplacesDTO{Facebook: true, Offerup: false, Craigslist: true}, got.Marketplaces)
	assert.True(t, got.IsActive)

	w = f.call(f.h.UpdateFilter, http.MethodPut, `{"models":["Camry"],"carscom_enabled":true}`, created.FilterID)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.DealerMarketplaceFilter
	require.NoError(t, f.db.First(&stored, created.FilterID).Error)
	assert.Equal(t, []string{"Toyota"}, stored.Makes)
	assert.Equal(t, []string{"Camry"}, stored.Models)
	assert.True(t, stored.CarscomEnabled)
	assert.False(t, stored.OfferupEnabled)

	// inactive filters drop out of the listing
	w = f.call(f.h.UpdateFilter, http.MethodPut, `{"is_active":false}`, created.FilterID)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[FilterListResponse](t, f.call(f.h.ListFilters, http.MethodGet, "", 0))
	assert.Equal(t, 0, list.Total)

	w = f.call(f.h.DeleteFilter, http.MethodDelete, "", created.FilterID)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.call(f.h.DeleteFilter, http.MethodDelete, "", created.FilterID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Filter not found"}`, w.Body.String())
}

func TestFilters_DefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.CreateFilter, http.MethodPost, "", 0)
	require.Equal(t, http.StatusCreated, w.Code)
	list := decode[FilterListResponse](t, f.call(f.h.ListFilters, http.MethodGet, "", 0))
	require.Len(t, list.Filters, 1)
	assert.Equal(t, 50, list.Filters[0].LocationFilters.RadiusMiles)
	assert.Equal(t, MarketplacesDTO{Facebook: true, Offerup: true, Craigslist: true}, list.Filters[0].Marketplaces)

	w = f.call(f.h.CreateFilter, http.MethodPost, `{"mileage_max":-5}`, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilters_OtherDealerGets404(t *testing.T) {
	f := newFixture(t)
	_, other := testutil.CreateDealer(t, f.db, "other@example.com", models.VerificationVerified)
	theirs := NewFilter(other.ID)
	require.NoError(t, f.db.Create(&theirs).Error)

	assert.Equal(t, http.StatusNotFound, f.call(f.h.UpdateFilter, http.MethodPut, `{}`, theirs.ID).Code)
	assert.Equal(t, http.StatusNotFound, f.call(f.h.DeleteFilter, http.MethodDelete, "", theirs.ID).Code)
}

func TestDocuments_CreateListDelete(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.CreateDocument, http.MethodPost, `{"document_type":"license","document_name":"Dealer license","file_url":"https://files.example.com/l.pdf","expires_at":"2027-01-31"}`, 0)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ActionResponse](t, w)

	list := decode[DocumentListResponse](t, f.call(f.h.ListDocuments, http.MethodGet, "", 0))
	require.Equal(t, 1, list.Total)
	require.NotNil(t, list.Documents[0].ExpiresAt)
	assert.Equal(t, "2027-01-31", *list.Documents[0].ExpiresAt)
	assert.False(t, list.Documents[0].Verified)

	w = f.call(f.h.CreateDocument, http.MethodPost, `{"document_type":"license","document_name":"x","file_url":"u","expires_at":"31/01/2027"}`, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.call(f.h.DownloadDocument, http.MethodGet, "", created.DocumentID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, f.call(f.h.DeleteDocument, http.MethodDelete, "", created.DocumentID).Code)
	assert.Equal(t, http.StatusNotFound, f.call(f.h.DeleteDocument, http.MethodDelete, "", created.DocumentID).Code)
}

func TestDocuments_UploadAndDownload(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", "insurance"))
	require.NoError(t, mw.WriteField("expires_at", "2026-12-31"))
	part, err := mw.CreateFormFile("file", "policy.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 policy"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dealers/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.serve(f.h.UploadDocument, req, 0)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ActionResponse](t, w)

	var stored models.DealerDocument
	require.NoError(t, f.db.First(&stored, created.DocumentID).Error)
	assert.Equal(t, "policy.pdf", stored.DocumentName)
	assert.Equal(t, "/api/dealers/documents/"+strconv.Itoa(int(stored.ID))+"/file", stored.FileURL)
	assert.NotEmpty(t, stored.StorageKey)

	w = f.call(f.h.DownloadDocument, http.MethodGet, "", created.DocumentID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7 policy", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "policy.pdf")

	require.Equal(t, http.StatusOK, f.call(f.h.DeleteDocument, http.MethodDelete, "", created.DocumentID).Code)
	_, err = f.h.Blobs.Get(req.Context(), stored.StorageKey)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestDocuments_UploadRequiresFile(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", "insurance"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dealers/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.serve(f.h.UploadDocument, req, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats_NoLeads(t *testing.T) {
	f := newFixture(t)

	w := f.call(f.h.Stats, http.MethodGet, "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatsResponse{}, decode[StatsResponse](t, w))
}

func TestStats_Counts(t *testing.T) {
	f := newFixture(t)
	_, other := testutil.CreateDealer(t, f.db, "other@example.com", models.VerificationVerified)

	testutil.CreateLead(t, f.db, testutil.CreateListing(t, f.db, models.SourceHotLead), f.dealer, models.StatusNew)
	testutil.CreateLead(t, f.db, testutil.CreateListing(t, f.db, models.SourceFacebook), f.dealer, models.StatusWon)
	testutil.CreateLead(t, f.db, testutil.CreateListing(t, f.db, models.SourceCraigslist), f.dealer, models.StatusContacted)
	testutil.CreateLead(t, f.db, testutil.CreateListing(t, f.db, models.SourceHotLead), other, models.StatusWon)

	got := decode[StatsResponse](t, f.call(f.h.Stats, http.MethodGet, "", 0))
	assert.Equal(t, StatsResponse{
		TotalLeads:       3,
		HotLeads:         1,
		MarketplaceLeads: 2,
		NewLeads:         1,
		ContactedLeads:   1,
		WonDeals:         1,
		ConversionRate:   33.33,
	}, got)
}

func TestConversionRate(t *testing.T) {
	cases := []struct {
		won, total int64
		want       float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{4, 4, 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ConversionRate(c.won, c.total), "%d/%d", c.won, c.total)
	}
}
