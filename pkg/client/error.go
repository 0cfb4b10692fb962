package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

const (
	// NetworkErrorMessage is shown when the backend could not be reached.
	NetworkErrorMessage = "Network Error"
	// UnexpectedErrorMessage is the last-resort user-facing message.
	UnexpectedErrorMessage = "unexpected error occurred"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	URL        string

	// Detail is the decoded "detail" field: a string, a list of
	// field errors or an object.
	Detail    interface{}
	Message   string
	ErrorText string
	Body      []byte

	// Validation marks a 401 from the profile update endpoint, which is
	// reported as a validation failure instead of a dead session.
	Validation bool
}

func (e *APIError) Error() string {
	return e.format()
}

// HTTPStatus reports the status used for categorization.
func (e *APIError) HTTPStatus() int {
	if e.Validation {
		return http.StatusUnprocessableEntity
	}
	return e.StatusCode
}

// IsUnauthorized reports a genuine authentication failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized && !e.Validation
}

func (e *APIError) format() string {
	switch d := e.Detail.(type) {
	case string:
		if d != "" {
			return d
		}
	case []interface{}:
		if len(d) > 0 {
			return formatFieldErrors(d)
		}
	case map[string]interface{}:
		if msg, ok := d["msg"].(string); ok && msg != "" {
			return msg
		}
	}
	if e.Message != "" {
		return e.Message
	}
	if e.ErrorText != "" {
		return e.ErrorText
	}
	return UnexpectedErrorMessage
}

// formatFieldErrors renders [{loc:["body","email"], msg:"field required"}]
// as "(body.email) field required", comma separated.
func formatFieldErrors(items []interface{}) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			parts = append(parts, fmt.Sprint(item))
			continue
		}
		msg, _ := obj["msg"].(string)
		loc, _ := obj["loc"].([]interface{})
		if len(loc) == 0 {
			parts = append(parts, msg)
			continue
		}
		segs := make([]string, len(loc))
		for i, l := range loc {
			segs[i] = fmt.Sprint(l)
		}
		parts = append(parts, fmt.Sprintf("(%s) %s", strings.Join(segs, "."), msg))
	}
	return strings.Join(parts, ", ")
}

// TransportError is a failure to get any response (refused connection,
// DNS, timeout).
type TransportError struct {
	Message string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func timeoutMessage(d time.Duration) string {
	return fmt.Sprintf("timeout of %dms exceeded", d.Milliseconds())
}

// ParseError parses an error response from the API
func ParseError(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.URL = resp.Request.URL
		apiErr.Validation = resp.StatusCode() == http.StatusUnauthorized && isProfileUpdate(resp.Request)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Detail = body["detail"]
		apiErr.Message, _ = body["message"].(string)
		apiErr.ErrorText, _ = body["error"].(string)
	}
	return apiErr
}

// FormatError turns any error from a gateway call into the text shown in
// error banners. For backend errors the order is: a string detail, then
// a list of field errors, then detail.msg, then message, then error.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.format()
	}
	var tErr *TransportError
	if errors.As(err, &tErr) && tErr.Message != "" {
		return tErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnexpectedErrorMessage
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}
