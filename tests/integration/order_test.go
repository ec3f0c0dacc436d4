//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
)

var accountSeq atomic.Int64

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, accountSeq.Add(1))
}

// TestOrderLifecycle walks the main business flow end to end: an admin
// provisions a wholesale client, the client orders with a partial payment,
// the debt shows up on the account, the admin edits the order, and finally
// deletes it, returning the debt to zero.
func TestOrderLifecycle(t *testing.T) {
	admin := adminClient(t)

	username := uniqueUsername("boutique")
	clientID := createClientAccount(t, admin, username, "client-pass-1", "Wholesale")

	client := newClient(t)
	login(t, client, username, "client-pass-1")

	products := listProducts(t, client)
	if len(products) < 2 {
		t.Fatalf("expected seeded catalog, got %d products", len(products))
	}
	p := products[0]

	// Place an order for 3 units, paying part of it up front.
	resp := doJSON(t, client, http.MethodPost, "/api/orders", map[string]any{
		"items":      []map[string]any{{"product": p.ID, "quantity": 3}},
		"amountPaid": 100,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d, want 201", resp.StatusCode)
	}
	placed := decode[orderEnvelope](t, resp).Order

	wantTotal := p.Price * 3
	if placed.TotalPrice != wantTotal {
		t.Errorf("totalPrice = %v, want %v", placed.TotalPrice, wantTotal)
	}
	wantDebt := wantTotal - 100
	if placed.RemainingDebt != wantDebt {
		t.Errorf("remainingDebt = %v, want %v", placed.RemainingDebt, wantDebt)
	}
	if placed.Status != "Pending" {
		t.Errorf("status = %q, want Pending", placed.Status)
	}

	// The remaining debt lands on the client's account.
	meResp := doGet(t, client, "/api/auth/me")
	defer meResp.Body.Close()
	me := decode[userEnvelope](t, meResp).User
	if me.TotalDebt != wantDebt {
		t.Errorf("account totalDebt = %v, want %v", me.TotalDebt, wantDebt)
	}

	// Admin raises the payment; the account debt follows by the delta.
	updResp := doJSON(t, admin, http.MethodPut, "/api/orders/"+placed.ID, map[string]any{
		"amountPaid": wantTotal,
	})
	defer updResp.Body.Close()
	if updResp.StatusCode != http.StatusOK {
		t.Fatalf("order update status = %d, want 200", updResp.StatusCode)
	}
	updated := decode[orderEnvelope](t, updResp).Order
	if updated.RemainingDebt != 0 {
		t.Errorf("remainingDebt after full payment = %v, want 0", updated.RemainingDebt)
	}

	userResp := doGet(t, admin, "/api/auth/users/"+clientID)
	defer userResp.Body.Close()
	account := decode[userResponse](t, userResp)
	if account.TotalDebt != 0 {
		t.Errorf("account totalDebt after full payment = %v, want 0", account.TotalDebt)
	}

	// Status moves freely between the four states.
	stResp := doJSON(t, admin, http.MethodPut, "/api/orders/"+placed.ID+"/status", map[string]any{
		"status": "Delivered",
	})
	defer stResp.Body.Close()
	if stResp.StatusCode != http.StatusOK {
		t.Fatalf("status update = %d, want 200", stResp.StatusCode)
	}

	// Delete removes the order without disturbing the settled balance.
	delResp := doJSON(t, admin, http.MethodDelete, "/api/orders/"+placed.ID, nil)
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("order delete = %d, want 200", delResp.StatusCode)
	}

	myResp := doGet(t, client, "/api/orders/my")
	defer myResp.Body.Close()
	remaining := decode[[]orderResponse](t, myResp)
	if len(remaining) != 0 {
		t.Errorf("orders after delete = %d, want 0", len(remaining))
	}
}

// TestOrderDeleteReversesDebt checks that removing an unpaid order takes its
// remaining debt back off the client's account.
func TestOrderDeleteReversesDebt(t *testing.T) {
	admin := adminClient(t)

	username := uniqueUsername("boutique")
	clientID := createClientAccount(t, admin, username, "client-pass-2", "Retail")

	client := newClient(t)
	login(t, client, username, "client-pass-2")

	p := listProducts(t, client)[0]

	resp := doJSON(t, client, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product": p.ID, "quantity": 2}},
	})
	defer resp.Body.Close()
	placed := decode[orderEnvelope](t, resp).Order

	delResp := doJSON(t, admin, http.MethodDelete, "/api/orders/"+placed.ID, nil)
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("order delete = %d, want 200", delResp.StatusCode)
	}

	userResp := doGet(t, admin, "/api/auth/users/"+clientID)
	defer userResp.Body.Close()
	account := decode[userResponse](t, userResp)
	if account.TotalDebt != 0 {
		t.Errorf("account totalDebt after delete = %v, want 0", account.TotalDebt)
	}
}

// TestReceiptFlow covers the one-shot receipt flag and the on-demand debt
// figure shown on receipts.
func TestReceiptFlow(t *testing.T) {
	admin := adminClient(t)

	username := uniqueUsername("boutique")
	createClientAccount(t, admin, username, "client-pass-3", "SuperWholesale")

	client := newClient(t)
	login(t, client, username, "client-pass-3")

	p := listProducts(t, client)[0]

	resp := doJSON(t, client, http.MethodPost, "/api/orders", map[string]any{
		"items":      []map[string]any{{"product": p.ID, "quantity": 1}},
		"amountPaid": 10,
	})
	defer resp.Body.Close()
	placed := decode[orderEnvelope](t, resp).Order

	rcptResp := doGet(t, client, "/api/orders/"+placed.ID+"/receipt")
	defer rcptResp.Body.Close()
	if rcptResp.StatusCode != http.StatusOK {
		t.Fatalf("receipt status = %d, want 200", rcptResp.StatusCode)
	}
	rcpt := decode[receiptResponse](t, rcptResp)

	if !rcpt.Order.ReceiptGenerated {
		t.Error("receiptGenerated should flip on first view")
	}
	if len(rcpt.Items) != 1 || rcpt.Items[0].ProductName != p.Name {
		t.Errorf("receipt items = %+v, want one line named %q", rcpt.Items, p.Name)
	}
	wantOutstanding := p.Price - 10
	if rcpt.User.TotalDebt != wantOutstanding {
		t.Errorf("receipt totalDebt = %v, want %v", rcpt.User.TotalDebt, wantOutstanding)
	}

	// Another client must not see the receipt.
	otherName := uniqueUsername("boutique")
	createClientAccount(t, admin, otherName, "client-pass-4", "Retail")
	other := newClient(t)
	login(t, other, otherName, "client-pass-4")

	deniedResp := doGet(t, other, "/api/orders/"+placed.ID+"/receipt")
	defer deniedResp.Body.Close()
	if deniedResp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign receipt status = %d, want 403", deniedResp.StatusCode)
	}
}

// TestTierAndOverridePricing verifies that the same catalog route prices per
// session: tier pricing by default, custom override when set.
func TestTierAndOverridePricing(t *testing.T) {
	admin := adminClient(t)

	products := listProducts(t, admin)
	p := products[0]

	username := uniqueUsername("boutique")
	clientID := createClientAccount(t, admin, username, "client-pass-5", "Wholesale")

	client := newClient(t)
	login(t, client, username, "client-pass-5")

	seen := listProducts(t, client)[0]
	if seen.Price != p.BasePrices["Wholesale"] {
		t.Errorf("wholesale price = %v, want %v", seen.Price, p.BasePrices["Wholesale"])
	}

	// Grant a personal override below every tier.
	override := p.BasePrices["SuperWholesale"] - 5
	updResp := doJSON(t, admin, http.MethodPut, "/api/auth/users/"+clientID, map[string]any{
		"customPrices": map[string]any{p.ID: override},
	})
	defer updResp.Body.Close()
	if updResp.StatusCode != http.StatusOK {
		t.Fatalf("user update = %d, want 200", updResp.StatusCode)
	}

	seen = listProducts(t, client)[0]
	if seen.Price != override {
		t.Errorf("override price = %v, want %v", seen.Price, override)
	}
}

// TestSettleDebtOverwrites checks that manual settlement replaces the
// aggregate rather than adjusting it.
func TestSettleDebtOverwrites(t *testing.T) {
	admin := adminClient(t)

	username := uniqueUsername("boutique")
	clientID := createClientAccount(t, admin, username, "client-pass-6", "Retail")

	client := newClient(t)
	login(t, client, username, "client-pass-6")

	p := listProducts(t, client)[0]
	resp := doJSON(t, client, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product": p.ID, "quantity": 4}},
	})
	defer resp.Body.Close()

	settleResp := doJSON(t, admin, http.MethodPut, "/api/auth/users/"+clientID+"/settle-debt", map[string]any{
		"amount": 50,
	})
	defer settleResp.Body.Close()
	if settleResp.StatusCode != http.StatusOK {
		t.Fatalf("settle status = %d, want 200", settleResp.StatusCode)
	}
	settled := decode[userEnvelope](t, settleResp).User
	if settled.TotalDebt != 50 {
		t.Errorf("totalDebt after settle = %v, want 50", settled.TotalDebt)
	}
}
