package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind classifies a failed API call
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindHTTP
	KindDecode
	// KindSession means the stored credential could not be read
	KindSession
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindSession:
		return "session"
	default:
		return "unknown"
	}
}

// Error is returned by every failed call made through Client.Do. Callers match
// on it with errors.Is against the sentinels below, or with errors.As.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	// Message is the server-provided explanation, if the error body had one
	Message string
	Err     error
}

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrDecode       = &Error{Kind: KindDecode}
	ErrSession      = &Error{Kind: KindSession}
)

// HTTPStatus returns a target for errors.Is matching a generic HTTP failure
// with the given status code.
func HTTPStatus(code int) error {
	return &Error{Kind: KindHTTP, StatusCode: code}
}

// StatusCode returns the response status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnauthorized:
		return "not authenticated. Please run 'foodctl login' first"
	case KindForbidden:
		return e.withMessage(fmt.Sprintf("forbidden (status %d)", e.StatusCode))
	case KindHTTP:
		return e.withMessage(fmt.Sprintf("request %s %s failed (status %d)", e.Method, e.Path, e.StatusCode))
	case KindNetwork:
		return fmt.Sprintf("failed to send request: %v", e.Err)
	case KindDecode:
		return fmt.Sprintf("failed to decode response: %v", e.Err)
	case KindSession:
		return fmt.Sprintf("failed to read stored session: %v", e.Err)
	default:
		return "api error"
	}
}

func (e *Error) withMessage(s string) string {
	if e.Message == "" {
		return s
	}
	return s + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, and on StatusCode when the target sets one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// errorBody covers the error shapes the service returns:
// {"status":"Error","message":"..."}, {"error":"..."} and validation
// problems {"title":"...","errors":{"Field":["..."]}}.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Title   string              `json:"title"`
	Errors  map[string][]string `json:"errors"`
}

// messageFromBody extracts a human-readable message from an error response
func messageFromBody(body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		if len(body) > 200 {
			return string(body[:200])
		}
		return string(body)
	}

	switch {
	case eb.Message != "":
		return eb.Message
	case eb.Error != "":
		return eb.Error
	case len(eb.Errors) > 0:
		var parts []string
		for field, msgs := range eb.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
		}
		slices.Sort(parts)
		return strings.Join(parts, "; ")
	default:
		return eb.Title
	}
}

