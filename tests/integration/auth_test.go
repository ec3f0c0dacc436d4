//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLoginLogout(t *testing.T) {
	client := newClient(t)

	me := login(t, client, "admin", adminPassword)
	if me.Role != "admin" {
		t.Errorf("role = %q, want admin", me.Role)
	}

	// The cookie session answers /me.
	meResp := doGet(t, client, "/api/auth/me")
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", meResp.StatusCode)
	}

	// Logout clears the cookie; /me is anonymous again.
	outResp := doJSON(t, client, http.MethodPost, "/api/auth/logout", nil)
	defer outResp.Body.Close()
	if outResp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", outResp.StatusCode)
	}

	deniedResp := doGet(t, client, "/api/auth/me")
	defer deniedResp.Body.Close()
	if deniedResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", deniedResp.StatusCode)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "admin",
		"password": "definitely-wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
	msg := decode[messageResponse](t, resp)
	if msg.Message != "wrong username or password" {
		t.Errorf("message = %q", msg.Message)
	}
}

func TestAdminRoutes_RejectClients(t *testing.T) {
	admin := adminClient(t)

	username := uniqueUsername("boutique")
	createClientAccount(t, admin, username, "client-pass-9", "Retail")

	client := newClient(t)
	login(t, client, username, "client-pass-9")

	resp := doGet(t, client, "/api/auth/users")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("client on admin route = %d, want 403", resp.StatusCode)
	}

	anon := newClient(t)
	anonResp := doGet(t, anon, "/api/auth/users")
	defer anonResp.Body.Close()
	if anonResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous on admin route = %d, want 401", anonResp.StatusCode)
	}
}
