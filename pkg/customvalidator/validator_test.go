package customvalidator

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientPayload struct {
	Document string      `validate:"required,cpfcnpj"`
	CEP      string      `validate:"omitempty,cep"`
	UF       string      `validate:"omitempty,uf"`
	Phone    string      `validate:"omitempty,phone_br"`
	Contact  string      `validate:"omitempty,contact_number"`
	Status   string      `validate:"omitempty,order_status"`
	Color    string      `validate:"omitempty,color"`
	Nickname null.String `validate:"omitempty,min=2"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestCustomRules_Accept(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(clientPayload{
		Document: "529.982.247-25",
		CEP:      "01310-100",
		UF:       "SP",
		Phone:    "(11) 98765-4321",
		Contact:  "+5511987654321",
		Status:   "em_reparo",
		Color:    "#1a2b3c",
		Nickname: null.StringFrom("Zé"),
	})
	assert.NoError(t, err)
}

func TestCustomRules_Reject(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(clientPayload{
		Document: "111.111.111-11",
		CEP:      "0131",
		UF:       "XX",
		Phone:    "98765",
		Contact:  "abc",
		Status:   "perdida",
		Color:    "red",
		Nickname: null.StringFrom("Z"),
	})
	require.Error(t, err)

	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	failed := map[string]string{}
	for _, e := range vErrs {
		failed[e.Field()] = e.Tag()
	}
	assert.Equal(t, map[string]string{
		"Document": "cpfcnpj",
		"CEP":      "cep",
		"UF":       "uf",
		"Phone":    "phone_br",
		"Contact":  "contact_number",
		"Status":   "order_status",
		"Color":    "color",
		"Nickname": "min",
	}, failed)
}

func TestNullTypes_InvalidIsSkipped(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(clientPayload{Document: "11.222.333/0001-81", Nickname: null.String{}})
	assert.NoError(t, err)
}
