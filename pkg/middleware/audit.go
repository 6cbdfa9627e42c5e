package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ordem-servico/internal/dto"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const maskedValue = "***"

var sensitiveKeyParts = []string{"password", "token", "secret", "senha"}

type AuditRecorder interface {
	Record(ctx context.Context, entry dto.CreateAuditLogDTO) error
}

// Audit записывает каждый успешный POST/PUT/PATCH/DELETE. Секреты в теле маскируются,
// multipart-тела (файлы) не сохраняются.
func Audit(recorder AuditRecorder, logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.BodyDumpWithConfig(echomw.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				return false
			}
			return true
		},
		Handler: func(c echo.Context, reqBody, _ []byte) {
			status := c.Response().Status
			if status < 200 || status >= 300 {
				return
			}

			req := c.Request()
			details := map[string]interface{}{
				"method": req.Method,
				"url":    req.URL.Path,
			}
			if len(req.URL.Query()) > 0 {
				details["query"] = req.URL.Query()
			}
			params := routeParams(c)
			if len(params) > 0 {
				details["params"] = params
			}
			if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) && len(reqBody) > 0 {
				var body interface{}
				if err := json.Unmarshal(reqBody, &body); err == nil {
					masked := MaskSensitive(body)
					if hasSensitiveParam(params) {
						masked = maskValueField(masked)
					}
					details["body"] = masked
				}
			}

			entry := dto.CreateAuditLogDTO{
				UserID:   utils.OptionalUserID(req.Context()),
				Action:   req.Method,
				Resource: utils.NilIfEmpty(ResourceFromPath(c.Path())),
				Details:  details,
			}
			if id := c.Param("id"); id != "" {
				entry.ResourceID = &id
			}
			if ip := c.RealIP(); ip != "" {
				entry.IPAddress = &ip
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 5*time.Second)
			defer cancel()
			if err := recorder.Record(ctx, entry); err != nil {
				logger.Error("Falha ao gravar auditoria", zap.String("path", c.Path()), zap.Error(err))
			}
		},
	})
}

func routeParams(c echo.Context) map[string]string {
	names := c.ParamNames()
	if len(names) == 0 {
		return nil
	}
	params := make(map[string]string, len(names))
	for _, name := range names {
		params[name] = c.Param(name)
	}
	return params
}

// hasSensitiveParam: PUT /settings/:key несёт секрет в body.value, а признак секрета в имени ключа.
func hasSensitiveParam(params map[string]string) bool {
	for _, v := range params {
		if isSensitiveKey(v) {
			return true
		}
	}
	return false
}

func maskValueField(body interface{}) interface{} {
	if m, ok := body.(map[string]interface{}); ok {
		if _, has := m["value"]; has {
			m["value"] = maskedValue
		}
	}
	return body
}

// ResourceFromPath: "/api/orders/:id/status" -> "orders".
func ResourceFromPath(path string) string {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" || part == "api" || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

// MaskSensitive рекурсивно заменяет значения ключей с password/token/secret на "***".
func MaskSensitive(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = MaskSensitive(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = MaskSensitive(inner)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
