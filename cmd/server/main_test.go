package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lifeline/internal/platform/config"
	"lifeline/internal/platform/metrics"
	"lifeline/pkg/testutil"
)

// Assembles the full graph in memory mode and drives a request through the
// real token issue/validate pair, so a wiring regression fails here instead
// of at deploy time.
func TestAssemble(t *testing.T) {
	cfg := config.Server{
		Addr:            ":0",
		JWTSigningKey:   "test-signing-key",
		JWTIssuer:       "lifeline",
		JWTAudience:     "lifeline-api",
		TokenTTL:        time.Hour,
		ShutdownTimeout: time.Second,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	router, cleanup, err := assemble(context.Background(), cfg, log, m)
	require.NoError(t, err)
	defer cleanup()

	t.Run("healthz responds", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("protected routes reject missing tokens", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("register, login, and read the profile with the issued token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
			"email":       "asha@relief.org",
			"password":    "correct horse",
			"first_name":  "Asha",
			"last_name":   "Rao",
			"dob":         "15-03-2000",
			"blood_group": "O+",
			"role":        "donor",
		}))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "asha@relief.org",
			"password": "correct horse",
		}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var login struct {
			AccessToken string `json:"access_token"`
		}
		testutil.DecodeJSON(t, w, &login)
		require.NotEmpty(t, login.AccessToken)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+login.AccessToken)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var profile struct {
			Email string `json:"email"`
		}
		testutil.DecodeJSON(t, w, &profile)
		require.Equal(t, "asha@relief.org", profile.Email)
	})
}
