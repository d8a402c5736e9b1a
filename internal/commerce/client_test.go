package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goobits/storefront/internal/constants"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:        server.URL,
		PublishableKey: "pk_test_123",
	})
}

func TestCartsRetrieve(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/store/carts/cart_1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-publishable-api-key"); got != "pk_test_123" {
			t.Fatalf("unexpected publishable key header: %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"cart": map[string]interface{}{
				"id":       "cart_1",
				"items":    []interface{}{},
				"subtotal": 3500,
			},
		})
	})

	cart, err := client.Carts.Retrieve(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("retrieve cart failed: %v", err)
	}
	if cart.ID != "cart_1" {
		t.Fatalf("unexpected cart id: %s", cart.ID)
	}
	if cart.Subtotal != 3500 {
		t.Fatalf("unexpected subtotal: %d", cart.Subtotal)
	}
}

func TestCartsRetrieveEmptyID(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Carts.Retrieve(context.Background(), "  "); !errors.Is(err, ErrCartIDRequired) {
		t.Fatalf("expected ErrCartIDRequired, got %v", err)
	}
}

func TestStatusErrorTagging(t *testing.T) {
	cases := []struct {
		name         string
		status       int
		expectedKind string
	}{
		{"server", http.StatusInternalServerError, constants.ErrorKindServer},
		{"rate_limit", http.StatusTooManyRequests, constants.ErrorKindRateLimit},
		{"domain", http.StatusNotFound, constants.ErrorKindCart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
			})
			_, err := client.Carts.Retrieve(context.Background(), "cart_1")
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := Kind(err); got != tc.expectedKind {
				t.Fatalf("unexpected kind: got=%s expected=%s", got, tc.expectedKind)
			}
			if got := MessageOf(err); got != "boom" {
				t.Fatalf("unexpected message: %s", got)
			}
			if got := StatusOf(err); got != tc.status {
				t.Fatalf("unexpected status: %d", got)
			}
		})
	}
}

func TestNetworkErrorTagging(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Regions.List(context.Background())
	if err == nil {
		t.Fatalf("expected network error")
	}
	if got := Kind(err); got != constants.ErrorKindNetwork {
		t.Fatalf("unexpected kind: %s", got)
	}
}

func TestCompleteResultOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/store/carts/cart_1/complete" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "order",
			"data": map[string]interface{}{
				"id":      "order_1",
				"cart_id": "cart_1",
				"total":   4099,
			},
		})
	})

	result, err := client.Carts.Complete(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("complete cart failed: %v", err)
	}
	if result.Type != constants.CompletionTypeOrder {
		t.Fatalf("unexpected completion type: %s", result.Type)
	}
	order, err := result.Order()
	if err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if order.ID != "order_1" || order.Total != 4099 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCompleteResultPendingCart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "cart",
			"data": map[string]interface{}{
				"id": "cart_1",
				"payment_session": map[string]interface{}{
					"provider_id": constants.PaymentProviderProcessor,
					"data":        map[string]interface{}{"client_secret": "pi_secret"},
				},
			},
		})
	})

	result, err := client.Carts.Complete(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("complete cart failed: %v", err)
	}
	if result.Type != constants.CompletionTypeCart {
		t.Fatalf("unexpected completion type: %s", result.Type)
	}
	cart, err := result.Cart()
	if err != nil {
		t.Fatalf("decode pending cart failed: %v", err)
	}
	if cart.ID != "cart_1" {
		t.Fatalf("unexpected cart id: %s", cart.ID)
	}
	if cart.PaymentSession == nil || cart.PaymentSession.Data.String("client_secret") != "pi_secret" {
		t.Fatalf("unexpected payment session: %+v", cart.PaymentSession)
	}
}

func TestAuthenticate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/store/auth/token" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "jane@example.com" {
			t.Fatalf("unexpected email: %s", body["email"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok_123"})
	})

	token, err := client.Auth.Authenticate(context.Background(), "jane@example.com", "secret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if token != "tok_123" {
		t.Fatalf("unexpected token: %s", token)
	}
}
