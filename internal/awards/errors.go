// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package awards

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown to the user when a failure carries no detail.
const GenericMessage = "Lookup failed. Please try again later."

// Sentinel errors for award lookup operations.
var (
	ErrMalformedBody  = errors.New("awards: malformed response body")
	ErrEmptyName      = errors.New("awards: empty investigator name")
	ErrEmptyProjectNo = errors.New("awards: empty project number")
)

// APIError reports a non-2xx response from the award service.
type APIError struct {
	Op         string // Operation: "lookup", "detail", "health"
	StatusCode int
	// Detail is the service's own explanation, taken from the "detail"
	// field of a JSON error body. Empty when the body had none.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("awards %s: HTTP %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("awards %s: HTTP %d", e.Op, e.StatusCode)
}

// UserMessage returns the text to show for a failed lookup: the service's
// detail when it supplied one, GenericMessage otherwise.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return GenericMessage
}

// parseDetail extracts the "detail" field of an error body. The service
// returns either a plain string or, for request validation failures, a list
// of objects each carrying a "msg".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
