package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotConfigured indicates no warehouse endpoint or credentials are set.
	ErrNotConfigured = errors.New("warehouse: not configured")
	// ErrTimeout indicates the warehouse did not answer in time.
	ErrTimeout = errors.New("warehouse: timeout")
	// ErrQuota indicates the warehouse rejected the query for quota reasons.
	ErrQuota = errors.New("warehouse: quota exceeded")
	// ErrPermission indicates the warehouse refused the credentials.
	ErrPermission = errors.New("warehouse: permission denied")
)

// RemoteError is a non-2xx answer from the warehouse.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("warehouse %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("warehouse %d: %s", e.Status, msg)
}

// Unwrap maps the HTTP status onto a sentinel error.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermission
	case http.StatusTooManyRequests:
		return ErrQuota
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	}
	return nil
}

// Category groups warehouse failures for display.
type Category string

const (
	CategoryTimeout       Category = "timeout"
	CategoryNotConfigured Category = "not_configured"
	CategoryQuota         Category = "quota"
	CategoryPermission    Category = "permission"
	CategoryGeneric       Category = "generic"
)

// DisplayError is the user-facing rendition of a failed page load.
type DisplayError struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// Status returns the HTTP status used when the page responds with the error.
func (d DisplayError) Status() int {
	switch d.Category {
	case CategoryTimeout:
		return http.StatusGatewayTimeout
	case CategoryNotConfigured:
		return http.StatusServiceUnavailable
	case CategoryQuota:
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

var categoryMessages = map[Category]string{
	CategoryTimeout:       "The analytics service took too long to respond. Please try again in a moment.",
	CategoryNotConfigured: "Analytics is not configured for this environment. Please contact support.",
	CategoryQuota:         "The analytics query limit has been reached. Please try again later.",
	CategoryPermission:    "The analytics service denied access to this data.",
	CategoryGeneric:       "Analytics data could not be loaded right now.",
}

type substringRule struct {
	category Category
	needles  []string
}

// Order matters: the first matching rule wins.
var substringRules = []substringRule{
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategoryNotConfigured, []string{"not configured", "credential"}},
	{CategoryQuota, []string{"quota", "rate limit", "too many requests"}},
	{CategoryPermission, []string{"permission", "access denied", "forbidden"}},
}

// Classify converts a failure into a display category and message. Known
// sentinel errors win; otherwise the lower-cased message is matched against
// keyword rules. A nil error yields the zero value.
func Classify(err error) DisplayError {
	if err == nil {
		return DisplayError{}
	}
	category := categorize(err)
	return DisplayError{Category: category, Message: categoryMessages[category]}
}

func categorize(err error) Category {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, ErrNotConfigured):
		return CategoryNotConfigured
	case errors.Is(err, ErrQuota):
		return CategoryQuota
	case errors.Is(err, ErrPermission):
		return CategoryPermission
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range substringRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.category
			}
		}
	}
	return CategoryGeneric
}
