// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/handlers"
	"vitrina/internal/session"
)

// newTestRouter wires the router with empty handler groups. Requests
// that pass the middleware gates would panic on nil stores, so these
// tests only exercise routes the middleware rejects or serves itself.
func newTestRouter() http.Handler {
	sessions := session.NewStore(nil, false)
	catalog := handlers.NewCatalog(nil, nil, nil, nil, nil)
	cart := handlers.NewCart(nil, nil, false)
	auth := handlers.NewAuth(sessions, nil)
	admin := handlers.NewAdmin(nil, nil, nil, nil, nil, nil, nil, nil)
	return New(sessions, catalog, cart, auth, admin)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAdminRequiresSession(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/admin/categories/tree", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMutationRequiresCSRFToken(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/admin/categories", nil))

	// CSRF sits in front of auth for mutating admin requests.
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTwoFARequiresSession(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/auth/2fa/setup", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
