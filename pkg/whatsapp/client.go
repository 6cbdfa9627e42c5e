// Package whatsapp — клиент Evolution API (шлюз WhatsApp).
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ordem-servico/pkg/utils"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("WhatsApp não configurado")
	ErrInvalidNumber = errors.New("número de WhatsApp inválido")
)

const stateOpen = "open"

// Config берётся из system_settings на каждый вызов: админ может поменять его без рестарта.
type Config struct {
	APIURL   string
	APIToken string
	Instance string
}

func (c Config) Configured() bool {
	return c.APIURL != "" && c.APIToken != ""
}

func (c Config) HasInstance() bool {
	return c.Configured() && c.Instance != ""
}

type Client struct {
	http *resty.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

type sendTextOptions struct {
	Delay       int    `json:"delay"`
	Presence    string `json:"presence"`
	LinkPreview bool   `json:"linkPreview"`
}

type sendTextRequest struct {
	Number  string          `json:"number"`
	Options sendTextOptions `json:"options"`
	Text    string          `json:"text"`
}

type connectionStateResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
}

type qrCodeResponse struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
	Base64      string `json:"base64"`
}

type createInstanceRequest struct {
	InstanceName string `json:"instanceName"`
	Number       string `json:"number,omitempty"`
	QRCode       bool   `json:"qrcode"`
	Integration  string `json:"integration"`
}

type createInstanceResponse struct {
	QRCode qrCodeResponse `json:"qrcode"`
}

// RemoteJID: "(11) 98765-4321" -> "5511987654321@s.whatsapp.net".
func RemoteJID(number string) (string, error) {
	normalized := utils.NormalizeBrazilPhone(number)
	if normalized == "" {
		return "", ErrInvalidNumber
	}
	return normalized + "@s.whatsapp.net", nil
}

func (c *Client) request(ctx context.Context, cfg Config) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("apikey", cfg.APIToken)
}

func endpoint(cfg Config, format string, args ...interface{}) string {
	return strings.TrimRight(cfg.APIURL, "/") + fmt.Sprintf(format, args...)
}

func responseError(op string, resp *resty.Response) error {
	return fmt.Errorf("evolution %s: HTTP %d: %s", op, resp.StatusCode(), strings.TrimSpace(resp.String()))
}

func (c *Client) SendText(ctx context.Context, cfg Config, number, text string) error {
	if !cfg.HasInstance() {
		return ErrNotConfigured
	}
	jid, err := RemoteJID(number)
	if err != nil {
		return err
	}

	resp, err := c.request(ctx, cfg).
		SetBody(sendTextRequest{
			Number:  jid,
			Options: sendTextOptions{Delay: 1200, Presence: "composing", LinkPreview: false},
			Text:    text,
		}).
		Post(endpoint(cfg, "/message/sendText/%s", cfg.Instance))
	if err != nil {
		return fmt.Errorf("evolution sendText: %w", err)
	}
	if resp.IsError() {
		return responseError("sendText", resp)
	}
	return nil
}

// ConnectionState возвращает состояние инстанса ("open", "close", "connecting").
func (c *Client) ConnectionState(ctx context.Context, cfg Config) (string, error) {
	if !cfg.HasInstance() {
		return "", ErrNotConfigured
	}
	var out connectionStateResponse
	resp, err := c.request(ctx, cfg).
		SetResult(&out).
		Get(endpoint(cfg, "/instance/connectionState/%s", cfg.Instance))
	if err != nil {
		return "", fmt.Errorf("evolution connectionState: %w", err)
	}
	if resp.IsError() {
		return "", responseError("connectionState", resp)
	}
	return out.Instance.State, nil
}

func (c *Client) IsConnected(ctx context.Context, cfg Config) (bool, error) {
	state, err := c.ConnectionState(ctx, cfg)
	if err != nil {
		return false, err
	}
	return state == stateOpen, nil
}

func (c *Client) QRCode(ctx context.Context, cfg Config) (string, error) {
	if !cfg.HasInstance() {
		return "", ErrNotConfigured
	}
	var out qrCodeResponse
	resp, err := c.request(ctx, cfg).
		SetResult(&out).
		Get(endpoint(cfg, "/instance/connect/%s", cfg.Instance))
	if err != nil {
		return "", fmt.Errorf("evolution connect: %w", err)
	}
	if resp.IsError() {
		return "", responseError("connect", resp)
	}
	if out.Base64 != "" {
		return out.Base64, nil
	}
	return out.Code, nil
}

// CreateInstance создаёт инстанс и возвращает QR-код для сопряжения, если шлюз его отдал.
func (c *Client) CreateInstance(ctx context.Context, cfg Config, instanceName, number string) (string, error) {
	if !cfg.Configured() {
		return "", ErrNotConfigured
	}
	var out createInstanceResponse
	resp, err := c.request(ctx, cfg).
		SetBody(createInstanceRequest{
			InstanceName: instanceName,
			Number:       utils.OnlyDigits(number),
			QRCode:       true,
			Integration:  "WHATSAPP-BAILEYS",
		}).
		SetResult(&out).
		Post(endpoint(cfg, "/instance/create"))
	if err != nil {
		return "", fmt.Errorf("evolution create: %w", err)
	}
	if resp.IsError() {
		return "", responseError("create", resp)
	}
	return out.QRCode.Base64, nil
}

func (c *Client) Logout(ctx context.Context, cfg Config) error {
	if !cfg.HasInstance() {
		return ErrNotConfigured
	}
	resp, err := c.request(ctx, cfg).
		Delete(endpoint(cfg, "/instance/logout/%s", cfg.Instance))
	if err != nil {
		return fmt.Errorf("evolution logout: %w", err)
	}
	if resp.IsError() {
		return responseError("logout", resp)
	}
	return nil
}
