package clinic

import (
	"context"
	"encoding/json"
	"time"
)

// Action selects the prompt and response shape of a request.
type Action string

const (
	ActionSymptomCheck        Action = "symptom-check"
	ActionPrescriptionExplain Action = "prescription-explain"
	ActionRiskFlag            Action = "risk-flag"
)

// Request is one of *SymptomCheck, *PrescriptionExplain, *RiskFlag.
type Request interface {
	Action() Action
	validate() error
}

// Service runs a single action against the upstream model.
// The returned JSON is the response body for a 200.
type Service interface {
	Handle(ctx context.Context, req Request) (json.RawMessage, error)
}

// Invocation is the audit record of one request. It never carries the
// clinical payload.
type Invocation struct {
	RequestID string
	Action    string
	Status    int
	ErrorKind string
	Latency   time.Duration
}

// AuditRepo persists invocation records.
type AuditRepo interface {
	Record(ctx context.Context, inv Invocation) error
}
