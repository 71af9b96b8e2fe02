package duo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
)

var (
	ErrEmptyTask     = errors.New("task must not be empty")
	ErrInvalidRounds = errors.New("max rounds must be a positive integer")
)

// FallbackModel is broadly available to every account.
const FallbackModel = "gpt-3.5-turbo"

// ErrorKind groups completion failures by what the user can do about them.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindModelAccess ErrorKind = "model_access"
	KindRateLimit   ErrorKind = "rate_limit"
	KindQuota       ErrorKind = "quota"
	KindTransient   ErrorKind = "transient"
	KindUnknown     ErrorKind = "unknown"
)

// CallError wraps a failed completion call made during a collaboration.
type CallError struct {
	Role  Role
	Round int
	Kind  ErrorKind
	Err   error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s call in round %d failed (%s): %v", e.Role, e.Round, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf returns the kind carried by err, classifying it if needed.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}

// Classify maps an SDK or transport error to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(strings.Join([]string{apiErr.Code, apiErr.Type, apiErr.Message, apiErr.RawJSON()}, " "))
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return KindAuth
		case apiErr.StatusCode == http.StatusTooManyRequests:
			if strings.Contains(msg, "insufficient_quota") {
				return KindQuota
			}
			return KindRateLimit
		case apiErr.StatusCode == http.StatusForbidden, apiErr.StatusCode == http.StatusNotFound:
			return KindModelAccess
		case apiErr.StatusCode >= 500:
			return KindTransient
		}
		return classifyMessage(msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return classifyMessage(strings.ToLower(err.Error()))
}

func classifyMessage(msg string) ErrorKind {
	switch {
	case strings.Contains(msg, "does not exist or you do not have access"),
		strings.Contains(msg, "model_not_found"):
		return KindModelAccess
	case strings.Contains(msg, "insufficient_quota"):
		return KindQuota
	case strings.Contains(msg, "rate_limit_exceeded"):
		return KindRateLimit
	case strings.Contains(msg, "invalid_api_key"), strings.Contains(msg, "incorrect api key"):
		return KindAuth
	}
	return KindUnknown
}

// Advice returns guidance for the user after a failure of the given kind.
func Advice(kind ErrorKind, model string) string {
	switch kind {
	case KindAuth:
		return "The API key was rejected. Check OPENAI_API_KEY in your environment or .env file."
	case KindModelAccess:
		return fmt.Sprintf("Model %q is not available with your API key. Try running again with %q.", model, FallbackModel)
	case KindQuota:
		return "You've exceeded your API quota. Add credits to your account and try again."
	case KindRateLimit:
		return "Rate limit exceeded. Wait a moment and try again, or raise the delay between calls."
	case KindTransient:
		return "The completion service could not be reached. Check your connection and try again."
	default:
		return "Check your API key and account status."
	}
}
