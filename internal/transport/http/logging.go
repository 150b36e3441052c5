package http

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dreamslms/api/internal/domain"
)

const (
	requestBodyLogKey = "http.request.body.summary"
	maxLoggedBody     = 2048
)

// Keys whose values never reach the log, in any body at any depth.
var redactedKeys = []string{"password", "otp", "token", "secret", "authorization"}

func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			accountID := "anonymous"
			if account, ok := c.Get(contextAccountKey).(*domain.Account); ok && account != nil {
				accountID = account.ID.String()
			}

			payload := struct {
				Time        string      `json:"time"`
				AccountUUID string      `json:"account_uuid"`
				LatencyMS   int64       `json:"latency_ms"`
				Method      string      `json:"method"`
				URI         string      `json:"uri"`
				Status      int         `json:"status"`
				Body        interface{} `json:"body,omitempty"`
				Error       string      `json:"error,omitempty"`
			}{
				Time:        v.StartTime.Format(time.RFC3339),
				AccountUUID: accountID,
				LatencyMS:   v.Latency.Milliseconds(),
				Method:      v.Method,
				URI:         v.URI,
				Status:      v.Status,
			}
			if summary := c.Get(requestBodyLogKey); summary != nil {
				payload.Body = summary
			}
			if v.Error != nil {
				payload.Error = v.Error.Error()
			}

			buf, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := redactBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
	}))
}

// redactBody produces a loggable view of a request body with credentials
// removed. Multipart bodies are never logged; JSON bodies are logged with
// sensitive keys replaced.
func redactBody(body []byte, contentType string) interface{} {
	if len(body) == 0 || len(body) > maxLoggedBody {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(lowered, "multipart/form-data") {
		return "multipart body omitted"
	}
	if !strings.HasPrefix(lowered, "application/json") && !json.Valid(body) {
		return nil
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	return redactValue(data)
}

func redactValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			if isSensitiveKey(key) {
				out[key] = "redacted"
				continue
			}
			out[key] = redactValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = redactValue(inner)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, sensitive := range redactedKeys {
		if strings.Contains(lowered, sensitive) {
			return true
		}
	}
	return false
}
