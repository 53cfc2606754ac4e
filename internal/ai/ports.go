package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Provider is the upstream completion service. It knows nothing about
// clinics, actions, or HTTP callers.
type Provider interface {
	// CompleteStructured forces the reply into req.Tool and returns the
	// argument payload of the first tool call.
	CompleteStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
	// CompleteText returns the text of the first choice, "" when absent.
	CompleteText(ctx context.Context, req TextRequest) (string, error)
}

// Message is a single prompt turn.
type Message struct {
	Role string // "system" | "user"
	Text string
}

// Tool declares the function the model must call and its argument schema.
type Tool struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

type StructuredRequest struct {
	System string
	User   string
	Tool   Tool
}

type TextRequest struct {
	System string
	User   string
}

var (
	// ErrNotConfigured is returned before any network call when no credential is set.
	ErrNotConfigured = errors.New("ai: gateway credential is not configured")
	// ErrNoToolCall means a structured reply carried no tool call.
	ErrNoToolCall = errors.New("ai: no tool call in response")
	// ErrMalformedArguments means the tool call arguments were not valid JSON.
	ErrMalformedArguments = errors.New("ai: tool call arguments are not valid json")
)

// StatusError is a non-success HTTP status from the upstream gateway.
// Body is for server-side logs only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: upstream status %d", e.StatusCode)
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func prompt(system, user string) []Message {
	return []Message{
		{Role: "system", Text: system},
		{Role: "user", Text: user},
	}
}
