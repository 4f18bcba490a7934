package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/utils"
)

type stubAccounts map[string]models.User

func (s stubAccounts) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if email == "broken@example.com" {
		return models.User{}, apperror.Internal("database error", errors.New("down"))
	}
	u, ok := s[email]
	if !ok {
		return models.User{}, apperror.NotFound("user not found", nil)
	}
	return u, nil
}

func newGate(t *testing.T, accounts stubAccounts) (*Gate, *utils.TokenIssuer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	return NewGate(tokens, accounts, &utils.Responder{Logger: logger}), tokens
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	gate, tokens := newGate(t, nil)
	token, err := tokens.Issue(models.User{FirstName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	var seen *utils.Claims
	h := gate.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusBadRequest, serve(h, "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "Bearer").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer garbage").Code)

	rec := serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "ada@example.com", seen.Email)
}

func TestRequireAdmin(t *testing.T) {
	accounts := stubAccounts{
		"admin@example.com": {Email: "admin@example.com", IsAdmin: true},
		"user@example.com":  {Email: "user@example.com"},
	}
	gate, tokens := newGate(t, accounts)
	h := gate.Authenticate(gate.RequireAdmin(okHandler))

	bearer := func(u models.User) string {
		token, err := tokens.Issue(u)
		require.NoError(t, err)
		return "Bearer " + token
	}

	assert.Equal(t, http.StatusTeapot, serve(h, bearer(accounts["admin@example.com"])).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, bearer(accounts["user@example.com"])).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, bearer(models.User{Email: "gone@example.com", IsAdmin: true})).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(h, bearer(models.User{Email: "broken@example.com"})).Code)
}

func TestRequireAdminUsesStoredRole(t *testing.T) {
	accounts := stubAccounts{"demoted@example.com": {Email: "demoted@example.com", IsAdmin: false}}
	gate, tokens := newGate(t, accounts)
	token, err := tokens.Issue(models.User{Email: "demoted@example.com", IsAdmin: true})
	require.NoError(t, err)

	rec := serve(gate.Authenticate(gate.RequireAdmin(okHandler)), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Forbidden: Admins only", body.Message)
}

func TestRequireAdminWithoutAuthenticate(t *testing.T) {
	gate, _ := newGate(t, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(gate.RequireAdmin(okHandler), "").Code)
}

func TestRequestIDAndRecover(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	respond := &utils.Responder{Logger: logger}

	var id string
	h := RequestID(Logger(logger)(Recover(respond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = utils.RequestID(r.Context())
		panic("boom")
	}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/cart/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
