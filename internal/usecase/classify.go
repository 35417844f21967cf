package usecase

import (
	"errors"
	"net/http"
	"strings"

	"nomadlybot/internal/domain/ports/adapter"
)

// DeliveryFailure is the class of a failed send.
type DeliveryFailure int

const (
	FailureNone DeliveryFailure = iota
	// FailureUnreachable means the bot lost access to the chat for good.
	FailureUnreachable
	FailureRateLimited
	// FailureMarkupRejected means the HTML could not be parsed; retry as plain text.
	FailureMarkupRejected
	FailureTransient
)

func (f DeliveryFailure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureUnreachable:
		return "unreachable"
	case FailureRateLimited:
		return "rate_limited"
	case FailureMarkupRejected:
		return "markup_rejected"
	default:
		return "transient"
	}
}

// Keep lowercase. Matched as substrings of the transport error text.
var unreachablePhrases = []string{
	"bot was blocked",
	"bot was kicked",
	"chat not found",
	"bot is not a member",
	"user is deactivated",
	"have no rights to send a message",
}

var groupAccessLostPhrases = []string{
	"bot was kicked",
	"chat not found",
	"bot is not a member",
}

func containsAny(err error, phrases []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsUnreachableError reports a permanent loss of access to a private chat.
func IsUnreachableError(err error) bool {
	if err == nil {
		return false
	}
	return adapter.StatusCode(err) == http.StatusForbidden || containsAny(err, unreachablePhrases)
}

// IsGroupAccessLost reports that a registered group should be dropped.
func IsGroupAccessLost(err error) bool {
	if err == nil {
		return false
	}
	return adapter.StatusCode(err) == http.StatusForbidden || containsAny(err, groupAccessLostPhrases)
}

// ClassifyDeliveryError maps a transport error to its failure class.
// Structured status codes are checked before message text.
func ClassifyDeliveryError(err error) DeliveryFailure {
	if err == nil {
		return FailureNone
	}
	code := adapter.StatusCode(err)
	switch {
	case IsUnreachableError(err):
		return FailureUnreachable
	case code == http.StatusTooManyRequests:
		return FailureRateLimited
	case code == http.StatusBadRequest, strings.Contains(strings.ToLower(err.Error()), "parse"):
		return FailureMarkupRejected
	default:
		return FailureTransient
	}
}

// retryAfter returns the server supplied back-off in seconds, if any.
func retryAfter(err error) int {
	var te *adapter.TransportError
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}
