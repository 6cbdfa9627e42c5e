// Package lookup — справочные внешние API: ViaCEP (адрес по CEP), BrasilAPI (CNPJ)
// и опциональный провайдер IMEI.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ordem-servico/pkg/brdoc"

	"github.com/go-resty/resty/v2"
)

var (
	ErrInvalidCEP   = errors.New("CEP inválido")
	ErrCEPNotFound  = errors.New("CEP não encontrado")
	ErrInvalidCNPJ  = errors.New("CNPJ inválido")
	ErrCNPJNotFound = errors.New("CNPJ não encontrado")
)

type Address struct {
	CEP         string   `json:"cep"`
	Logradouro  string   `json:"logradouro"`
	Complemento string   `json:"complemento"`
	Bairro      string   `json:"bairro"`
	Localidade  string   `json:"localidade"`
	UF          string   `json:"uf"`
	IBGE        string   `json:"ibge"`
	DDD         string   `json:"ddd"`
	Erro        flexBool `json:"erro,omitempty"`
}

// flexBool: ViaCEP отдаёт "erro" то как true, то как "true".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	*b = flexBool(v == "true")
	return nil
}

type Company struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	CEP          string `json:"cep"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Complemento  string `json:"complemento"`
	Bairro       string `json:"bairro"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	Email        string `json:"email"`
	DDDTelefone1 string `json:"ddd_telefone_1"`
	Situacao     string `json:"descricao_situacao_cadastral"`
}

type Client struct {
	viaCEP    *resty.Client
	brasilAPI *resty.Client
	imei      *resty.Client
}

func NewClient(viaCEPBaseURL, brasilAPIBaseURL string, timeout time.Duration) *Client {
	return &Client{
		viaCEP:    resty.New().SetBaseURL(strings.TrimRight(viaCEPBaseURL, "/")).SetTimeout(timeout),
		brasilAPI: resty.New().SetBaseURL(strings.TrimRight(brasilAPIBaseURL, "/")).SetTimeout(timeout),
		imei:      resty.New().SetTimeout(timeout),
	}
}

// CEP: ответ ViaCEP с "erro": true означает, что индекс не существует.
func (c *Client) CEP(ctx context.Context, cep string) (*Address, error) {
	digits := brdoc.Clean(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	var out Address
	resp, err := c.viaCEP.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/ws/" + digits + "/json/")
	if err != nil {
		return nil, fmt.Errorf("viacep: %w", err)
	}
	if resp.StatusCode() == 400 {
		return nil, ErrInvalidCEP
	}
	if resp.IsError() {
		return nil, fmt.Errorf("viacep: HTTP %d", resp.StatusCode())
	}
	if out.Erro {
		return nil, ErrCEPNotFound
	}
	return &out, nil
}

func (c *Client) CNPJ(ctx context.Context, cnpj string) (*Company, error) {
	digits := brdoc.Clean(cnpj)
	if !brdoc.ValidateCNPJ(digits) {
		return nil, ErrInvalidCNPJ
	}

	var out Company
	resp, err := c.brasilAPI.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/cnpj/v1/" + digits)
	if err != nil {
		return nil, fmt.Errorf("brasilapi: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrCNPJNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("brasilapi: HTTP %d", resp.StatusCode())
	}
	return &out, nil
}
