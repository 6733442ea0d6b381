package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlements/clients"
)

func newTestRazorpay(t *testing.T, handler http.HandlerFunc) *clients.Razorpay {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return clients.NewRazorpay("key_id", "key_secret", clients.WithRazorpayBaseURL(server.URL))
}

func TestSplitPayment(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestRazorpay(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "trf_1"}},
		})
	})

	transferID, err := c.SplitPayment(context.Background(), "pay_Y", []clients.SplitTransfer{{
		Account:  "acc_X",
		Amount:   44000,
		Currency: "INR",
	}})

	require.NoError(t, err)
	assert.Equal(t, "trf_1", transferID)
	assert.Equal(t, "/payments/pay_Y/transfers", gotPath)

	transfers := gotBody["transfers"].([]any)
	require.Len(t, transfers, 1)
	transfer := transfers[0].(map[string]any)
	assert.Equal(t, "acc_X", transfer["account"])
	assert.Equal(t, float64(44000), transfer["amount"])
	assert.Equal(t, "INR", transfer["currency"])
}

func TestRefundPayment(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestRazorpay(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "rfnd_1", "status": "processed"})
	})

	refund, err := c.RefundPayment(context.Background(), "pay_Y", 11200, map[string]string{"reason": "cancellation"})

	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
	assert.Equal(t, "processed", refund.Status)
	assert.Equal(t, "/payments/pay_Y/refund", gotPath)
	assert.Equal(t, float64(11200), gotBody["amount"])
}

func TestCreateTransfer(t *testing.T) {
	var gotBody map[string]any
	c := newTestRazorpay(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "trf_reverse"})
	})

	transferID, err := c.CreateTransfer(context.Background(), clients.TransferRequest{
		Amount:      10000,
		Currency:    "INR",
		Source:      "acc_owner",
		Destination: "acc_platform",
	})

	require.NoError(t, err)
	assert.Equal(t, "trf_reverse", transferID)
	assert.Equal(t, "acc_owner", gotBody["source"])
	assert.Equal(t, "acc_platform", gotBody["destination"])
}

func TestCreateOrder(t *testing.T) {
	c := newTestRazorpay(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_1"})
	})

	orderID, err := c.CreateOrder(context.Background(), clients.CreateOrderRequest{
		Amount:   50000,
		Currency: "INR",
		Transfers: []clients.OrderTransfer{{
			Account:  "acc_X",
			Amount:   44000,
			Currency: "INR",
		}},
	})

	require.NoError(t, err)
	assert.Equal(t, "order_1", orderID)
}

func TestGatewayErrorSurfacesDescription(t *testing.T) {
	c := newTestRazorpay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":        "BAD_REQUEST_ERROR",
				"description": "The amount is invalid",
			},
		})
	})

	_, err := c.RefundPayment(context.Background(), "pay_Y", -1, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "The amount is invalid")
}
