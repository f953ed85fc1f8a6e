package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/checkout"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/events"
)

// stubBackend is the minimal happy-path dealership backend.
type stubBackend struct {
	customerErr error
	inventory   []dealer.InventoryUnit
}

func (s *stubBackend) CreateCustomer(context.Context, dealer.CustomerForm) (*dealer.Customer, error) {
	if s.customerErr != nil {
		return nil, s.customerErr
	}
	return &dealer.Customer{ID: "c1"}, nil
}

func (s *stubBackend) CreateOrder(context.Context, dealer.OrderForm) (*dealer.Order, error) {
	return &dealer.Order{ID: "o1", Number: "ORD-001"}, nil
}

func (s *stubBackend) CreatePayment(_ context.Context, form dealer.PaymentForm) (*dealer.Payment, error) {
	return &dealer.Payment{ID: "p1", OrderID: form.OrderID, Amount: form.Amount}, nil
}

func (s *stubBackend) DeleteCustomer(context.Context, dealer.ID) error { return nil }
func (s *stubBackend) DeleteOrder(context.Context, dealer.ID) error    { return nil }
func (s *stubBackend) DeletePayment(context.Context, dealer.ID) error  { return nil }

func (s *stubBackend) ListVariants(context.Context) ([]dealer.Variant, error) {
	return []dealer.Variant{{ID: "v1", Name: "VF 8 Eco"}}, nil
}

func (s *stubBackend) ListColors(context.Context) ([]dealer.Color, error) {
	return []dealer.Color{{ID: "c-red", Name: "Đỏ"}}, nil
}

func (s *stubBackend) ListInventory(context.Context, dealer.InventoryFilter) ([]dealer.InventoryUnit, error) {
	return s.inventory, nil
}

func newTestServer(t *testing.T, backend *stubBackend) *httptest.Server {
	t.Helper()
	svc := checkout.NewService(backend, checkout.NewMemoryStore(), events.Noop{}, checkout.Config{})
	srv := httptest.NewServer(NewHandler(svc).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func startWizard(t *testing.T, srv *httptest.Server, body string) string {
	t.Helper()
	resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := decoded["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestWizardOverHTTP(t *testing.T) {
	backend := &stubBackend{
		inventory: []dealer.InventoryUnit{{VIN: "5YJ3E1EA7KF317000", VariantID: "v1", Status: "available"}},
	}
	srv := newTestServer(t, backend)

	id := startWizard(t, srv, `{"vehicleHint": "VF 8 Eco", "colorHint": "đỏ"}`)

	resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/customer",
		`{"firstName": "An", "lastName": "Nguyen", "email": "an@test.com", "phone": "0901234567"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decoded["step"])
	assert.Equal(t, "c1", decoded["customerId"])

	// The hints were pre-selected into the references.
	refs := decoded["references"].(map[string]any)
	preselect := refs["preselect"].(map[string]any)
	assert.Equal(t, "v1", preselect["variantId"])
	assert.Equal(t, "c-red", preselect["colorId"])

	resp, decoded = doJSON(t, http.MethodGet, srv.URL+"/checkout/"+id+"/availability?variantId=v1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decoded["units"])

	resp, decoded = doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/order",
		`{"variantId": "v1", "total": "1200000000"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ORD-001", decoded["orderNumber"])

	resp, decoded = doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/payment",
		`{"amount": "100000000", "method": "bank_transfer"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decoded["state"])
	assert.Equal(t, "p1", decoded["paymentId"])
}

func TestAnonymousWizardOverHTTP(t *testing.T) {
	backend := &stubBackend{
		inventory: []dealer.InventoryUnit{{VariantID: "v1", Status: "available"}},
	}
	srv := newTestServer(t, backend)

	id := startWizard(t, srv, "")

	resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/skip-customer", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decoded["step"])
	assert.Nil(t, decoded["customerId"])
}

func TestAbandonOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubBackend{})

	id := startWizard(t, srv, "")

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/checkout/"+id, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/checkout/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	backend := &stubBackend{}
	srv := newTestServer(t, backend)

	t.Run("malformed json is 400", func(t *testing.T) {
		id := startWizard(t, srv, "")
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/customer", `{"firstName": `)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation failure is 400 with field", func(t *testing.T) {
		id := startWizard(t, srv, "")
		resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/customer",
			`{"firstName": "An", "lastName": "Nguyen", "email": "abc", "phone": "09"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		msg, _ := decoded["message"].(string)
		assert.Contains(t, msg, "email")
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/checkout/nope", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("step violation is 409", func(t *testing.T) {
		id := startWizard(t, srv, "")
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/payment", `{"amount": "1"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("blocked availability is 422", func(t *testing.T) {
		id := startWizard(t, srv, "")
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/skip-customer", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// No inventory stubbed: the gate blocks the submit.
		resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/order", `{"variantId": "v1"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		msg, _ := decoded["message"].(string)
		assert.Contains(t, msg, "VF 8 Eco")
	})

	t.Run("backend failure is 502", func(t *testing.T) {
		failing := &stubBackend{customerErr: &dealer.APIError{Status: 500, Message: "db down"}}
		srv := newTestServer(t, failing)
		id := startWizard(t, srv, "")

		resp, decoded := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/customer",
			`{"firstName": "An", "lastName": "Nguyen", "email": "an@test.com", "phone": "09"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		msg, _ := decoded["message"].(string)
		assert.Contains(t, msg, "db down")
	})
}

func TestDecimalBodyParsing(t *testing.T) {
	backend := &stubBackend{
		inventory: []dealer.InventoryUnit{{VariantID: "v1", Status: "available"}},
	}
	srv := newTestServer(t, backend)
	id := startWizard(t, srv, "")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/skip-customer", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Numbers arrive as JSON numbers too, not only strings.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/order",
		`{"variantId": "v1", "total": 1200000000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout/"+id+"/payment", `{"amount": 0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
