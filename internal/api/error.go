package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DisplayError is a backend failure normalized into a single
// human-readable message. The backend reports errors as
// {detail: string} or {detail: [{msg: string}, ...]}; anything else is
// stringified rather than crashing the display path.
type DisplayError struct {
	// Status is the HTTP status code of the rejected response.
	Status int

	// Message is the flattened, user-presentable text.
	Message string
}

func (e *DisplayError) Error() string {
	return e.Message
}

// IsAuthError reports whether err is an authentication rejection from
// the backend.
func IsAuthError(err error) bool {
	var de *DisplayError
	return errors.As(err, &de) && de.Status == http.StatusUnauthorized
}

// detailItem is one entry of a structured validation-error list.
type detailItem struct {
	Msg string `json:"msg"`
}

// parseErrorBody normalizes a non-2xx response body into a DisplayError.
func parseErrorBody(status int, body []byte) *DisplayError {
	fallback := &DisplayError{
		Status:  status,
		Message: fmt.Sprintf("unexpected status %d", status),
	}
	if len(body) == 0 {
		return fallback
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		fallback.Message = strings.TrimSpace(string(body))
		if fallback.Message == "" {
			fallback.Message = fmt.Sprintf("unexpected status %d", status)
		}
		return fallback
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		// A null or empty detail flattens to "", which would render a
		// blank toast.
		if detail == "" {
			return fallback
		}
		return &DisplayError{Status: status, Message: detail}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		lines := make([]string, 0, len(items))
		for _, raw := range items {
			var item detailItem
			if err := json.Unmarshal(raw, &item); err == nil && item.Msg != "" {
				lines = append(lines, item.Msg)
				continue
			}
			lines = append(lines, strings.TrimSpace(string(raw)))
		}
		if message := strings.Join(lines, "\n"); message != "" {
			return &DisplayError{Status: status, Message: message}
		}
		return fallback
	}

	fallback.Message = strings.TrimSpace(string(envelope.Detail))
	return fallback
}
