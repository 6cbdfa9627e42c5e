package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("método de assinatura do token inválido")
	ErrInvalidToken         = errors.New("token inválido")
	ErrTokenExpired         = errors.New("token expirado")
	ErrTokenNotYetValid     = errors.New("token ainda não é válido")
	ErrTokenIsNotRefresh    = errors.New("token não é um refresh token")
	ErrTokenIsNotAccess     = errors.New("token não é um access token")
	ErrRefreshTokenReuse    = errors.New("refresh token reutilizado")

	// Autorização
	ErrEmptyAuthHeader    = errors.New("cabeçalho Authorization ausente")
	ErrInvalidAuthHeader  = errors.New("formato do cabeçalho Authorization inválido")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrAccountLocked      = errors.New("conta bloqueada temporariamente, tente novamente mais tarde")
	ErrUserInactive       = errors.New("usuário inativo")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrForbidden          = errors.New("acesso negado")

	// Contexto
	ErrUserIDNotFoundInContext = errors.New("UserID não encontrado no contexto da requisição")

	// Gerais
	ErrNotFound          = errors.New("registro não encontrado")
	ErrUserNotFound      = errors.New("usuário não encontrado")
	ErrConflict          = errors.New("registro já existe")
	ErrBadRequest        = errors.New("requisição inválida")
	ErrInsufficientStock = errors.New("Estoque insuficiente")
	ErrIntegrationOff    = errors.New("integração não configurada")
)

// HttpError несёт код ответа и сообщение для клиента; Err и Context уходят только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message, Err: ErrBadRequest}
}

func NewNotFoundError(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

func NewConflictError(message string) *HttpError {
	return &HttpError{Code: http.StatusConflict, Message: message, Err: ErrConflict}
}

func NewUnprocessableError(message string, details interface{}) *HttpError {
	return &HttpError{Code: http.StatusUnprocessableEntity, Message: message, Details: details}
}

func NewForbiddenError(message string) *HttpError {
	return &HttpError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

// StatusFor сопоставляет сигнальные ошибки с HTTP-кодом.
func StatusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict, true
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, ErrAccountLocked):
		return http.StatusTooManyRequests, true
	case errors.Is(err, ErrIntegrationOff):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid), errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrTokenIsNotAccess), errors.Is(err, ErrTokenIsNotRefresh),
		errors.Is(err, ErrRefreshTokenReuse), errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserInactive), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, true
	}
	return 0, false
}
