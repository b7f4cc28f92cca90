package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/pkg/secrets"
)

func protectedHandler(cred AdminCredential) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireAdmin(cred, logger)(ok)
}

func doRequest(t *testing.T, h http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/housekeeping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdminWithPlainToken(t *testing.T) {
	h := protectedHandler(AdminCredential{Token: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, h, "s3cret").Code, "scheme is required")
	assert.Equal(t, http.StatusForbidden, doRequest(t, h, "Bearer wrong").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(t, h, "Bearer s3cret").Code)
}

func TestRequireAdminWithHashedToken(t *testing.T) {
	hash, err := secrets.Hash("s3cret")
	require.NoError(t, err)
	h := protectedHandler(AdminCredential{Hash: hash})

	assert.Equal(t, http.StatusNoContent, doRequest(t, h, "Bearer s3cret").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, h, "Bearer wrong").Code)
}

func TestRequireAdminUnconfigured(t *testing.T) {
	h := protectedHandler(AdminCredential{})

	// No credential configured means the admin surface is closed, not open.
	assert.Equal(t, http.StatusForbidden, doRequest(t, h, "Bearer anything").Code)
}
