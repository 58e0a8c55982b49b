package mise

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	ECONFLICT      = "conflict"
	EINTERNAL      = "internal"
	EINVALID       = "invalid"
	ENOTFOUND      = "not_found"
	EUNAVAILABLE   = "unavailable"
	EUNPROCESSABLE = "unprocessable"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mise error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Typed errors map onto the closest code; anything else is EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.StatusCode == 404 || fe.StatusCode == 410 {
			return ENOTFOUND
		}
		return EUNAVAILABLE
	}
	var re *RenderError
	if errors.As(err, &re) {
		return EUNAVAILABLE
	}
	var ae *AIParseError
	if errors.As(err, &ae) {
		return EUNPROCESSABLE
	}
	var xe *ExtractionFailed
	if errors.As(err, &xe) {
		return EUNPROCESSABLE
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var xe *ExtractionFailed
	if errors.As(err, &xe) {
		return xe.Error()
	}
	return "Internal error."
}

// FetchError reports a failed static fetch. Transient errors (timeouts,
// connection resets, 429/503 after retries) may succeed later; permanent
// ones will not.
type FetchError struct {
	URL        string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s: HTTP %d", e.URL, kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError reports a failed headless render.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// AIParseError reports a model response that is not a single JSON object
// carrying every required key.
type AIParseError struct {
	Reason string
	Raw    string
}

func (e *AIParseError) Error() string {
	return "ai response: " + e.Reason
}

// Attempt is one entry of the diagnostic trail kept while a crawl escalates.
type Attempt struct {
	Stage  string `json:"stage"`
	Source Source `json:"source,omitempty"`
	Reason string `json:"reason"`
}

func (a Attempt) String() string {
	if a.Source != "" {
		return a.Stage + "/" + string(a.Source) + ": " + a.Reason
	}
	return a.Stage + ": " + a.Reason
}

// ExtractionFailed is the terminal error of a crawl that exhausted every
// escalation step. Trail lists what was tried and why each was rejected.
type ExtractionFailed struct {
	URL   string
	Trail []Attempt
}

func (e *ExtractionFailed) Error() string {
	parts := make([]string, len(e.Trail))
	for i, a := range e.Trail {
		parts[i] = a.String()
	}
	return fmt.Sprintf("no recipe extracted from %s: %s", e.URL, strings.Join(parts, "; "))
}
