package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("key_test", "secret_test", "")

	good := sign("secret_test", "order_1|pay_1")
	assert.NoError(t, client.VerifySignature("order_1", "pay_1", good))

	assert.ErrorIs(t, client.VerifySignature("order_1", "pay_1", "forged"), ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifySignature("order_1", "pay_2", good), ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifySignature("order_1", "", good), ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifySignature("", "pay_1", good), ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifySignature("order_1", "pay_1", ""), ErrInvalidSignature)
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	good := sign("webhook_secret", string(body))

	assert.NoError(t, VerifyWebhookSignature(body, good, "webhook_secret"))
	assert.ErrorIs(t, VerifyWebhookSignature(body, "bad", "webhook_secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(body, good, ""), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(body, "", "webhook_secret"), ErrInvalidSignature)
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.EqualValues(t, 29900, payload["amount"])
		assert.Equal(t, "INR", payload["currency"])

		json.NewEncoder(w).Encode(Order{ID: "order_abc", Amount: 29900, Currency: "INR", Status: "created"})
	}))
	defer server.Close()

	client := NewClient("key_test", "secret_test", server.URL)
	order, err := client.CreateOrder(29900, "INR", "enroll-1", map[string]string{"program_id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(29900), order.Amount)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"amount too small"}}`))
	}))
	defer server.Close()

	client := NewClient("key_test", "secret_test", server.URL)
	_, err := client.CreateOrder(1, "INR", "enroll-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestFetchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders/order_abc", r.URL.Path)
		json.NewEncoder(w).Encode(Order{ID: "order_abc", Status: "paid"})
	}))
	defer server.Close()

	client := NewClient("key_test", "secret_test", server.URL)
	order, err := client.FetchOrder("order_abc")
	require.NoError(t, err)
	assert.Equal(t, "paid", order.Status)
}
