package pagbank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookChargePaid(t *testing.T) {
	raw := []byte(`{
		"id": "ORDE_123",
		"type": "CHARGE.PAID",
		"reference_id": "202401-0007",
		"charges": [{"id": "CHAR_1", "amount": {"value": 15990}, "payment_method": {"type": "PIX"}}]
	}`)

	p, err := ParseWebhook(raw)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ORDE_123", p.EventID)
	assert.InDelta(t, 159.90, p.Amount, 0.001)
	assert.Equal(t, "202401-0007", p.OrderRef)
	assert.Equal(t, "pix", p.Method)
}

func TestParseWebhookPlainAmountAndMetadata(t *testing.T) {
	raw := []byte(`{"event": "payment.confirmed", "event_id": "evt-9", "amount": 80, "metadata": {"order_id": 42}}`)

	p, err := ParseWebhook(raw)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "evt-9", p.EventID)
	assert.InDelta(t, 80.0, p.Amount, 0.001)
	assert.Equal(t, "42", p.OrderRef)
	assert.Equal(t, "pagbank", p.Method)
}

func TestParseWebhookAmountObjectAndExternalReference(t *testing.T) {
	raw := []byte(`{"type": "pix.received", "amount": {"value": 2500}, "external_reference": "15"}`)

	p, err := ParseWebhook(raw)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 25.0, p.Amount, 0.001)
	assert.Equal(t, "15", p.OrderRef)
	assert.Equal(t, "pix", p.Method)
	assert.NotEmpty(t, p.EventID)

	again, err := ParseWebhook(raw)
	require.NoError(t, err)
	assert.Equal(t, p.EventID, again.EventID)
}

func TestParseWebhookIgnoresOtherEvents(t *testing.T) {
	for _, raw := range []string{`{"type":"CHARGE.DECLINED"}`, `{}`, `{"event":"payment.failed"}`} {
		p, err := ParseWebhook([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, p, raw)
	}

	_, err := ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}

func TestAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_messages":[{"description":"invalid token"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"ACCO_1","email":"loja@example.com"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "http://unused.invalid", time.Second)

	account, err := client.Account(context.Background(), "good", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, "ACCO_1", account["id"])

	_, err = client.Account(context.Background(), "bad", "sandbox")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizeEnvironment(t *testing.T) {
	assert.Equal(t, EnvProduction, NormalizeEnvironment("Production"))
	assert.Equal(t, EnvSandbox, NormalizeEnvironment(""))
	assert.Equal(t, EnvSandbox, NormalizeEnvironment("homologacao"))
}
