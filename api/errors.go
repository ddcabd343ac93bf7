package api

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apierror"
)

// Fallback messages shown when the server gives nothing better.
const (
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgBadCredentials = "Invalid username or password."
	msgRegisterFailed = "Registration failed. Please try again."
	msgNoResponse     = "No response from server. Please try again later."
)

// decodeError maps a non-2xx response body into the closed error taxonomy.
// The server answers either {"detail": "..."} or a per-field message map;
// anything else falls through to the given fallback message.
func decodeError(kind apierror.Kind, status int, body []byte, fallback string) error {
	if detail := extractDetail(body); detail != "" {
		return apierror.New(kind, detail)
	}

	if fields := extractFieldErrors(body); len(fields) > 0 {
		if kind == apierror.KindValidation {
			return apierror.Validation(fields)
		}
		return apierror.New(kind, apierror.FlattenFields(fields))
	}

	if status == http.StatusUnauthorized && kind == apierror.KindCredential {
		return apierror.New(kind, msgBadCredentials)
	}
	return apierror.New(kind, fallback)
}

func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// extractFieldErrors accepts both {"field": ["msg", ...]} and
// {"field": "msg"} shapes.
func extractFieldErrors(body []byte) map[string][]string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	fields := make(map[string][]string)
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			fields[name] = []string{v}
		case []any:
			var messages []string
			for _, item := range v {
				if msg, ok := item.(string); ok {
					messages = append(messages, msg)
				}
			}
			if len(messages) > 0 {
				fields[name] = messages
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func networkError(err error) error {
	return apierror.Wrap(apierror.KindNetwork, err, msgNoResponse)
}
