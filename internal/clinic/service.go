package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/ai"
)

type service struct {
	ai          ai.Provider
	strictEnums bool
	log         zerolog.Logger
}

// NewService builds the action service. With strictEnums set, structured
// replies whose enumerated fields fall outside their closed sets are
// rejected as protocol errors instead of being passed through.
func NewService(provider ai.Provider, strictEnums bool, log zerolog.Logger) Service {
	return &service{
		ai:          provider,
		strictEnums: strictEnums,
		log:         log.With().Str("component", "clinic").Logger(),
	}
}

func (s *service) Handle(ctx context.Context, req Request) (json.RawMessage, error) {
	switch r := req.(type) {
	case *SymptomCheck:
		return s.structured(ctx, ActionSymptomCheck, ai.StructuredRequest{
			System: SymptomCheckSystemPrompt,
			User:   symptomCheckPrompt(r),
			Tool:   suggestConditionsTool,
		}, checkReply[SymptomCheckResult])

	case *PrescriptionExplain:
		return s.explain(ctx, r)

	case *RiskFlag:
		return s.structured(ctx, ActionRiskFlag, ai.StructuredRequest{
			System: RiskFlagSystemPrompt,
			User:   riskFlagPrompt(r),
			Tool:   flagRisksTool,
		}, checkReply[RiskFlagResult])

	default:
		return nil, invalidAction()
	}
}

func (s *service) structured(
	ctx context.Context,
	action Action,
	req ai.StructuredRequest,
	check func(json.RawMessage) error,
) (json.RawMessage, error) {
	raw, err := s.ai.CompleteStructured(ctx, req)
	if err != nil {
		return nil, s.mapUpstream(action, err)
	}

	if s.strictEnums {
		if err := check(raw); err != nil {
			s.log.Error().Err(err).Str("action", string(action)).Msg("structured reply failed validation")
			return nil, protocolError(msgInvalidResponse, err)
		}
	}

	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return nil, protocolError(msgNoToolCall, err)
	}
	return out.Bytes(), nil
}

func (s *service) explain(ctx context.Context, r *PrescriptionExplain) (json.RawMessage, error) {
	text, err := s.ai.CompleteText(ctx, ai.TextRequest{
		System: PrescriptionExplainSystemPrompt,
		User:   prescriptionExplainPrompt(r),
	})
	if err != nil {
		return nil, s.mapUpstream(ActionPrescriptionExplain, err)
	}

	b, err := json.Marshal(ExplanationResult{Explanation: orDefault(text, explanationFallback)})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// mapUpstream converts provider failures into the caller-facing taxonomy.
// Upstream bodies and transport details stay in the logs.
func (s *service) mapUpstream(action Action, err error) error {
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return configError(err)
	case errors.Is(err, ai.ErrNoToolCall), errors.Is(err, ai.ErrMalformedArguments):
		return protocolError(msgNoToolCall, err)
	}

	switch ai.StatusCode(err) {
	case http.StatusTooManyRequests:
		return rateLimited(action, err)
	case http.StatusPaymentRequired:
		return quotaExhausted(action, err)
	}

	s.log.Error().Err(err).Str("action", string(action)).Msg("AI gateway error")
	return upstreamError(err)
}
