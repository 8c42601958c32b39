package httperrors

import (
	"fmt"
	"net/http"

	"github/chapool/iao-solana/internal/i18n"
)

// HTTPError is the JSON error body of every failing API call. Title is
// localized from MessageKey when a translation exists.
type HTTPError struct {
	Code     int    `json:"status"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Internal error  `json:"-"`

	MessageKey  string    `json:"-"`
	MessageData i18n.Data `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

// NewFromEcho converts a plain echo error, keeping its status code.
func NewFromEcho(code int, message any) *HTTPError {
	title := fmt.Sprint(message)
	if message == nil || title == "" {
		title = statusText(code)
	}

	return &HTTPError{
		Code:  code,
		Type:  TypeGeneric,
		Title: title,
	}
}

func (e *HTTPError) Error() string {
	var msg string
	if e.Detail != "" {
		msg = fmt.Sprintf("HTTPError %d (%s): %s - %s", e.Code, e.Type, e.Title, e.Detail)
	} else {
		msg = fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	}

	if e.Internal != nil {
		msg = fmt.Sprintf("%s, %v", msg, e.Internal)
	}

	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// WithMessage sets the translation key used for Title.
func (e *HTTPError) WithMessage(key string, data ...i18n.Data) *HTTPError {
	cp := *e
	cp.MessageKey = key
	if len(data) > 0 {
		cp.MessageData = data[0]
	}

	return &cp
}

// Wrap returns a copy of e carrying err as internal cause.
func (e *HTTPError) Wrap(err error) *HTTPError {
	cp := *e
	cp.Internal = err

	return &cp
}

// WithDetail returns a copy of e with a detail message.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	cp := *e
	cp.Detail = detail

	return &cp
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}

	return "Unknown"
}
