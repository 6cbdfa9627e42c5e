// Package brdoc валидирует и форматирует бразильские налоговые номера (CPF и CNPJ).
package brdoc

import "strings"

const (
	CPFLength  = 11
	CNPJLength = 14
)

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Clean оставляет только цифры.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidateCPF(s string) bool {
	d := digits(Clean(s))
	if len(d) != CPFLength || allEqual(d) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (10 - i)
	}
	if cpfCheckDigit(sum) != d[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += d[i] * (11 - i)
	}
	return cpfCheckDigit(sum) == d[10]
}

func cpfCheckDigit(sum int) int {
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

func ValidateCNPJ(s string) bool {
	d := digits(Clean(s))
	if len(d) != CNPJLength || allEqual(d) {
		return false
	}
	if cnpjCheckDigit(d[:12], cnpjWeights1) != d[12] {
		return false
	}
	return cnpjCheckDigit(d[:13], cnpjWeights2) == d[13]
}

func cnpjCheckDigit(d, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += d[i] * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// ValidateCPFOrCNPJ выбирает алгоритм по длине очищенной строки.
func ValidateCPFOrCNPJ(s string) bool {
	switch len(Clean(s)) {
	case CPFLength:
		return ValidateCPF(s)
	case CNPJLength:
		return ValidateCNPJ(s)
	}
	return false
}

// Format: 000.000.000-00 или 00.000.000/0000-00. Прочие длины возвращаются как есть.
func Format(s string) string {
	c := Clean(s)
	switch len(c) {
	case CPFLength:
		return c[0:3] + "." + c[3:6] + "." + c[6:9] + "-" + c[9:]
	case CNPJLength:
		return c[0:2] + "." + c[2:5] + "." + c[5:8] + "/" + c[8:12] + "-" + c[12:]
	}
	return s
}

// Mask скрывает номер для списков: ***.456.789-** в CPF оставляет средний блок и контрольные цифры.
func Mask(s string) string {
	c := Clean(s)
	switch len(c) {
	case CPFLength:
		return "***." + c[3:6] + ".***-" + c[9:]
	case CNPJLength:
		return "**.***.***/****-" + c[12:]
	}
	return s
}

func digits(s string) []int {
	out := make([]int, len(s))
	for i, r := range s {
		out[i] = int(r - '0')
	}
	return out
}

func allEqual(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}
