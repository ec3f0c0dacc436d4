//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLiveness(t *testing.T) {
	resp := doGet(t, newClient(t), "/livez")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("livez status = %d, want 200", resp.StatusCode)
	}

	health := decode[healthResponse](t, resp)
	if health.Status != "ok" {
		t.Errorf("livez status = %q, want ok", health.Status)
	}
}

func TestReadiness(t *testing.T) {
	resp := doGet(t, newClient(t), "/readyz")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", resp.StatusCode)
	}
}
