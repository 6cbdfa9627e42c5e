// Package pagbank — статус аккаунта PagBank и разбор входящих вебхуков.
package pagbank

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

var ErrInvalidToken = errors.New("token PagBank inválido ou sem permissão")

// Принимаемые события оплаты; остальные подтверждаются и игнорируются.
var paidEvents = []string{"CHARGE.PAID", "PAYMENT_ORDER.PAID", "order.paid", "payment.confirmed", "pix.received"}

type Client struct {
	http          *resty.Client
	sandboxURL    string
	productionURL string
}

func NewClient(sandboxURL, productionURL string, timeout time.Duration) *Client {
	return &Client{
		http:          resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		sandboxURL:    strings.TrimRight(sandboxURL, "/"),
		productionURL: strings.TrimRight(productionURL, "/"),
	}
}

// NormalizeEnvironment: всё, что не production, считается sandbox.
func NormalizeEnvironment(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), EnvProduction) {
		return EnvProduction
	}
	return EnvSandbox
}

func (c *Client) baseURL(env string) string {
	if NormalizeEnvironment(env) == EnvProduction {
		return c.productionURL
	}
	return c.sandboxURL
}

type errorResponse struct {
	ErrorMessages []struct {
		Description string `json:"description"`
	} `json:"error_messages"`
}

// Account запрашивает GET {base}/accounts; 401/403 -> ErrInvalidToken.
func (c *Client) Account(ctx context.Context, token, env string) (map[string]interface{}, error) {
	var (
		out    map[string]interface{}
		errOut errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		SetError(&errOut).
		Get(c.baseURL(env) + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("pagbank: %w", err)
	}
	switch {
	case resp.StatusCode() == 401 || resp.StatusCode() == 403:
		return nil, ErrInvalidToken
	case resp.IsError():
		if len(errOut.ErrorMessages) > 0 && errOut.ErrorMessages[0].Description != "" {
			return nil, fmt.Errorf("pagbank: %s", errOut.ErrorMessages[0].Description)
		}
		return nil, fmt.Errorf("pagbank: HTTP %d", resp.StatusCode())
	}
	return out, nil
}

// Payment — нормализованный платёж из вебхука.
type Payment struct {
	EventID  string
	Event    string
	Amount   float64
	OrderRef string
	Method   string
}

type webhookAmount struct {
	Value json.Number `json:"value"`
}

type webhookCharge struct {
	ID            string        `json:"id"`
	Amount        webhookAmount `json:"amount"`
	PaymentMethod struct {
		Type string `json:"type"`
	} `json:"payment_method"`
}

type webhookBody struct {
	ID                string          `json:"id"`
	EventID           string          `json:"event_id"`
	Type              string          `json:"type"`
	Event             string          `json:"event"`
	ReferenceID       string          `json:"reference_id"`
	ExternalReference string          `json:"external_reference"`
	Charges           []webhookCharge `json:"charges"`
	Order             *struct {
		ReferenceID string          `json:"reference_id"`
		Charges     []webhookCharge `json:"charges"`
	} `json:"order"`
	Amount   json.RawMessage        `json:"amount"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ParseWebhook возвращает (nil, nil) для событий, которые не являются оплатой.
func ParseWebhook(raw []byte) (*Payment, error) {
	var body webhookBody
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("corpo do webhook inválido: %w", err)
	}

	event := body.Type
	if event == "" {
		event = body.Event
	}
	if !IsPaidEvent(event) {
		return nil, nil
	}

	charges := body.Charges
	if len(charges) == 0 && body.Order != nil {
		charges = body.Order.Charges
	}

	p := &Payment{Event: event, Method: "pagbank"}

	var value float64
	if len(charges) > 0 {
		value, _ = charges[0].Amount.Value.Float64()
		if strings.EqualFold(charges[0].PaymentMethod.Type, "PIX") {
			p.Method = "pix"
		}
	}
	if value == 0 {
		value = parseAmount(body.Amount)
	}
	if strings.HasPrefix(strings.ToLower(event), "pix") {
		p.Method = "pix"
	}
	// значения больше 100 приходят в центаво
	if value > 100 {
		value = value / 100
	}
	p.Amount = value

	p.OrderRef = firstNonEmpty(
		body.ReferenceID,
		orderReference(body),
		metadataString(body.Metadata, "order_id"),
		metadataString(body.Metadata, "orderId"),
		body.ExternalReference,
	)

	p.EventID = firstNonEmpty(body.ID, body.EventID)
	if p.EventID == "" && len(charges) > 0 {
		p.EventID = charges[0].ID
	}
	if p.EventID == "" {
		sum := sha256.Sum256(raw)
		p.EventID = "pagbank_" + hex.EncodeToString(sum[:8])
	}
	return p, nil
}

func IsPaidEvent(event string) bool {
	for _, e := range paidEvents {
		if strings.EqualFold(e, event) {
			return true
		}
	}
	return false
}

// amount бывает числом, строкой или объектом {"value": ...}.
func parseAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var obj webhookAmount
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		v, _ := obj.Value.Float64()
		return v
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		v, _ := strconv.ParseFloat(str, 64)
		return v
	}
	return 0
}

func orderReference(body webhookBody) string {
	if body.Order != nil {
		return body.Order.ReferenceID
	}
	return ""
}

func metadataString(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
