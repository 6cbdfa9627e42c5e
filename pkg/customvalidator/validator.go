package customvalidator

import (
	"reflect"
	"regexp"
	"slices"

	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/brdoc"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

var (
	contactNumberRegex = regexp.MustCompile(`^(\+)?\d{7,20}$`)
	hexColorRegex      = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

	ufs = []string{
		"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
		"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
	}
)

// RegisterCustomValidations регистрирует все кастомные правила в переданном валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"cpf":            func(fl validator.FieldLevel) bool { return brdoc.ValidateCPF(fl.Field().String()) },
		"cnpj":           func(fl validator.FieldLevel) bool { return brdoc.ValidateCNPJ(fl.Field().String()) },
		"cpfcnpj":        func(fl validator.FieldLevel) bool { return brdoc.ValidateCPFOrCNPJ(fl.Field().String()) },
		"cep":            isCEP,
		"uf":             func(fl validator.FieldLevel) bool { return slices.Contains(ufs, fl.Field().String()) },
		"phone_br":       isBrazilPhone,
		"contact_number": func(fl validator.FieldLevel) bool { return contactNumberRegex.MatchString(fl.Field().String()) },
		"order_status":   func(fl validator.FieldLevel) bool { return statusflow.Status(fl.Field().String()).Valid() },
		"color":          func(fl validator.FieldLevel) bool { return hexColorRegex.MatchString(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	registerNullTypes(v)
	return nil
}

func isCEP(fl validator.FieldLevel) bool {
	return len(brdoc.Clean(fl.Field().String())) == 8
}

// телефон с DDD: 10 цифр (фиксированный) или 11 (мобильный)
func isBrazilPhone(fl validator.FieldLevel) bool {
	n := len(brdoc.Clean(fl.Field().String()))
	return n == 10 || n == 11
}

// registerNullTypes учит валидатор "смотреть внутрь" типов null.String, null.Float64 и т.д.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Float64); ok && val.Valid {
			return val.Float64
		}
		return nil
	}, null.Float64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Bool); ok && val.Valid {
			return val.Bool
		}
		return nil
	}, null.Bool{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Uint64); ok && val.Valid {
			return val.Uint64
		}
		return nil
	}, null.Uint64{})
}
