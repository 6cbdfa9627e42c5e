package lookup

import (
	"context"
	"fmt"
	"strings"

	"ordem-servico/pkg/brdoc"
)

const (
	ProviderIMEIOrg  = "imei.org"
	ProviderZylaLabs = "zylalabs"
)

// IMEI-провайдеры по умолчанию; в тестах подменяются.
var imeiEndpoints = map[string]string{
	ProviderIMEIOrg:  "https://api.imei.org/v1/check",
	ProviderZylaLabs: "https://zylalabs.com/api/2008/imei+checker/v1/check",
}

type Device struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Type  string `json:"type"`
}

type imeiOrgResponse struct {
	Success bool `json:"success"`
	Device  struct {
		Brand string `json:"brand"`
		Model string `json:"model"`
		Type  string `json:"type"`
	} `json:"device"`
}

type zylaResponse struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// IMEI — поиск аппарата по серийному номеру. Без токена или для неизвестного
// провайдера возвращает (nil, nil): функция вспомогательная.
func (c *Client) IMEI(ctx context.Context, provider, token, serial string) (*Device, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	endpoint, ok := imeiEndpoints[provider]
	if token == "" || !ok {
		return nil, nil
	}
	serial = brdoc.Clean(serial)
	if serial == "" {
		return nil, nil
	}

	switch provider {
	case ProviderIMEIOrg:
		var out imeiOrgResponse
		resp, err := c.imei.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"token": token, "imei": serial}).
			SetResult(&out).
			Get(endpoint)
		if err != nil {
			return nil, fmt.Errorf("imei.org: %w", err)
		}
		if resp.IsError() || !out.Success {
			return nil, nil
		}
		deviceType := out.Device.Type
		if deviceType == "" {
			deviceType = "Celular"
		}
		return &Device{Brand: out.Device.Brand, Model: out.Device.Model, Type: deviceType}, nil

	default:
		var out zylaResponse
		resp, err := c.imei.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParam("imei", serial).
			SetResult(&out).
			Get(endpoint)
		if err != nil {
			return nil, fmt.Errorf("zylalabs: %w", err)
		}
		if resp.IsError() {
			return nil, nil
		}
		return &Device{Brand: out.Brand, Model: out.Model, Type: "Celular"}, nil
	}
}
