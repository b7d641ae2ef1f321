//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCart_SessionFlow(t *testing.T) {
	// First touch creates a session.
	resp := doGet(t, "/api/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	empty := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if empty.SessionID == "" {
		t.Fatal("no session id returned")
	}
	if empty.Total != 0 || empty.Shipping != 0 {
		t.Errorf("empty cart priced: total %v shipping %v", empty.Total, empty.Shipping)
	}

	session := map[string]string{"X-Session-ID": empty.SessionID}
	tap := productID(t, "robinet-cuisine-chrome")

	// Add the discounted tap twice: the line merges.
	resp = doJSON(t, http.MethodPost, "/api/cart/items",
		map[string]any{"product_id": tap, "quantity": 1}, session)
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, "/api/cart/items",
		map[string]any{"product_id": tap, "quantity": 2}, session)
	withItems := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(withItems.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(withItems.Items))
	}
	if withItems.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", withItems.Items[0].Quantity)
	}
	// 3 * 39.90 (discounted) = 119.70, over threshold: free shipping.
	if withItems.Subtotal != 119.7 {
		t.Errorf("subtotal: got %v, want 119.7", withItems.Subtotal)
	}
	if withItems.Shipping != 0 {
		t.Errorf("shipping: got %v, want 0", withItems.Shipping)
	}

	// Dropping to zero removes the line.
	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("/api/cart/items/%d", tap),
		map[string]any{"quantity": 0}, session)
	cleared := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cleared.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cleared.Items))
	}
	if cleared.Total != 0 {
		t.Errorf("total: got %v, want 0", cleared.Total)
	}
}
