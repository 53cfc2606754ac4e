package clinic

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for status mapping, metrics, and audit.
type Kind string

const (
	KindConfig         Kind = "config"
	KindInvalidAction  Kind = "invalid_action"
	KindInvalidRequest Kind = "invalid_request"
	KindRateLimited    Kind = "rate_limited"
	KindQuotaExhausted Kind = "quota_exhausted"
	KindUpstream       Kind = "upstream"
	KindProtocol       Kind = "protocol"
	KindInternal       Kind = "internal"
)

const (
	msgNotConfigured   = "AI_GATEWAY_API_KEY is not configured"
	msgInvalidAction   = "Invalid action"
	msgGatewayError    = "AI gateway error"
	msgNoToolCall      = "No tool call response"
	msgInvalidResponse = "AI returned an invalid response"
)

// Error is what the HTTP layer renders as {"error": Message} with Status.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// AsError returns err's *Error, or wraps anything else as an internal
// failure carrying the error's own message.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

func invalidAction() *Error {
	return &Error{Kind: KindInvalidAction, Status: http.StatusBadRequest, Message: msgInvalidAction}
}

func invalidRequest(msg string, err error) *Error {
	return &Error{Kind: KindInvalidRequest, Status: http.StatusBadRequest, Message: msg, Err: err}
}

func configError(err error) *Error {
	return &Error{Kind: KindConfig, Status: http.StatusInternalServerError, Message: msgNotConfigured, Err: err}
}

func protocolError(msg string, err error) *Error {
	return &Error{Kind: KindProtocol, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

func upstreamError(err error) *Error {
	return &Error{Kind: KindUpstream, Status: http.StatusInternalServerError, Message: msgGatewayError, Err: err}
}

// upstreamMessages holds the caller-facing text for throttling and
// exhausted credits, which differs per action.
var upstreamMessages = map[Action]struct{ rateLimited, quota string }{
	ActionSymptomCheck: {
		rateLimited: "Rate limit exceeded. Please try again later.",
		quota:       "AI credits exhausted. Please add funds.",
	},
	ActionPrescriptionExplain: {
		rateLimited: "Rate limit exceeded.",
		quota:       "AI credits exhausted.",
	},
	ActionRiskFlag: {
		rateLimited: "AI service unavailable.",
		quota:       "AI service unavailable.",
	},
}

func rateLimited(action Action, err error) *Error {
	return &Error{Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: upstreamMessages[action].rateLimited, Err: err}
}

func quotaExhausted(action Action, err error) *Error {
	return &Error{Kind: KindQuotaExhausted, Status: http.StatusPaymentRequired, Message: upstreamMessages[action].quota, Err: err}
}
