//go:build devlogin

package server

import (
	"net/http"
	"testing"
)

func TestDevLogin(t *testing.T) {
	env := setupTestEnv(t, Options{})
	w := doRequest(t, env.router, http.MethodPost, "/api/auth/dev-login", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dev login status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[loginResponse](t, w)
	if resp.User.Email != devIdentity.Email {
		t.Fatalf("user=%+v", resp.User)
	}

	headers := map[string]string{"Authorization": "Bearer " + resp.Token}
	if w := doRequest(t, env.router, http.MethodGet, "/api/tasks", nil, headers); w.Code != http.StatusOK {
		t.Fatalf("dev token refused: status=%d", w.Code)
	}
}

func TestDevLoginRefusedInProduction(t *testing.T) {
	env := setupTestEnv(t, Options{Production: true})
	w := doRequest(t, env.router, http.MethodPost, "/api/auth/dev-login", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
}
