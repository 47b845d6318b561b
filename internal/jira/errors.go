package jira

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is returned when Jira answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds a user-facing error from a failed response.
// what describes the request, e.g. "issue search".
func newAPIError(resp *http.Response, body []byte, what string) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Message = "Jira authentication failed (401/403). Please check your Jira email and API token."
		return e
	case http.StatusTooManyRequests:
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			e.Message = fmt.Sprintf("Jira rate limit exceeded (429). Retry after %s seconds.", retryAfter)
		} else {
			e.Message = "Jira rate limit exceeded (429)."
		}
		return e
	}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.ErrorMessages) > 0 && payload.ErrorMessages[0] != "" {
			e.Message = payload.ErrorMessages[0]
			return e
		}
		if payload.Message != "" {
			e.Message = payload.Message
			return e
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		e.Message = fmt.Sprintf("Jira %s not found", what)
		return e
	}
	e.Message = fmt.Sprintf("Jira API returned status %d for %s", resp.StatusCode, what)
	return e
}
