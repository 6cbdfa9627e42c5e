package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

func OnlyDigits(s string) string {
	return nonDigitRegexp.ReplaceAllString(s, "")
}

// NormalizeBrazilPhone приводит номер к виду 55DDXXXXXXXXX. Пустая строка — номер непригоден.
func NormalizeBrazilPhone(phone string) string {
	digits := OnlyDigits(phone)
	switch {
	case len(digits) == 10 || len(digits) == 11:
		return "55" + digits
	case (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, "55"):
		return digits
	case len(digits) >= 7 && len(digits) <= 15:
		return digits
	}
	return ""
}
