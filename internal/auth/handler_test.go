package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewHandler(NewService(db, NewTokens("test-secret", 720*time.Hour))), db
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestSignup_DealerCreatesProfile(t *testing.T) {
	h, db := newTestHandler(t)

	w := postJSON(h.Signup, `{"email":"Dealer@Example.com","password":"pw123456","first_name":"Ann","last_name":"Lee","role":"dealer"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, models.RoleDealer, resp.Role)

	var user models.User
	require.NoError(t, db.First(&user, resp.UserID).Error)
	assert.Equal(t, "dealer@example.com", user.Email)

	var profile models.DealerProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Ann", profile.CompanyName)
	assert.Equal(t, models.VerificationPending, profile.VerificationStatus)
	assert.True(t, profile.AutoFollowupEnabled)
}

func TestSignup_SellerCreatesProfile(t *testing.T) {
	h, db := newTestHandler(t)

	w := postJSON(h.Signup, `{"email":"s@example.com","password":"pw","role":"seller"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.SellerProfile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"email":"dup@example.com","password":"pw","role":"seller"}`

	require.Equal(t, http.StatusCreated, postJSON(h.Signup, body).Code)

	w := postJSON(h.Signup, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decodeDetail(t, w))
}

func TestCreateUser_UniqueViolationIsEmailTaken(t *testing.T) {
	_, db := newTestHandler(t)
	require.NoError(t, createUser(db, &models.User{Email: "race@example.com", PasswordHash: "x", Role: models.RoleSeller}))

	err := createUser(db, &models.User{Email: "race@example.com", PasswordHash: "y", Role: models.RoleDealer})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "bad email", body: `{"email":"nope","password":"pw","role":"seller"}`},
		{name: "missing password", body: `{"email":"a@b.com","role":"seller"}`},
		{name: "unknown role", body: `{"email":"a@b.com","password":"pw","role":"admin"}`},
		{name: "broken json", body: `{"email":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, postJSON(h.Signup, tt.body).Code)
		})
	}
}

func TestLogin_LongPasswordRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)
	long := strings.Repeat("p4ss", 25)

	require.Equal(t, http.StatusCreated, postJSON(h.Signup, `{"email":"long@example.com","password":"`+long+`","role":"dealer"}`).Code)

	w := postJSON(h.Login, `{"email":"long@example.com","password":"`+long+`"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(h.Signup, `{"email":"x@example.com","password":"right","role":"seller"}`).Code)

	wrongPassword := postJSON(h.Login, `{"email":"x@example.com","password":"wrong"}`)
	unknownEmail := postJSON(h.Login, `{"email":"ghost@example.com","password":"right"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid email or password", decodeDetail(t, wrongPassword))
}

func TestLogin_FormEncoded(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(h.Signup, `{"email":"f@example.com","password":"pw","role":"seller"}`).Code)

	form := url.Values{"username": {"f@example.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Login(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
