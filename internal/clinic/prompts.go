package clinic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const SymptomCheckSystemPrompt = `You are an AI medical assistant for a clinic management system. You help doctors by analyzing symptoms and providing possible conditions. You are NOT making a diagnosis - you are providing decision support.
Always respond in this exact JSON format using the suggest_conditions tool.`

const PrescriptionExplainSystemPrompt = `You are a friendly medical AI assistant. Explain prescriptions in simple, patient-friendly language. Include lifestyle recommendations and preventive advice. Keep it concise and reassuring.`

const RiskFlagSystemPrompt = `You are a medical risk analysis AI. Analyze patient history for risk patterns. Be concise and factual.`

const symptomCheckUserPrompt = `Patient Info:
- Age: %s
- Gender: %s
- Symptoms: %s
- Medical History: %s

Analyze these symptoms and provide possible conditions, risk level, and suggested tests.`

const prescriptionExplainUserPrompt = `Explain this prescription to the patient in simple terms:
- Diagnosis: %s
- Medicines: %s
- Instructions: %s

Provide:
1. Simple explanation of the condition
2. Why each medicine was prescribed
3. Lifestyle recommendations
4. Preventive advice`

const riskFlagUserPrompt = `Analyze this patient's medical history for risk patterns:
- Diagnoses: %s
- Symptoms history: %s
- Appointments: %d total

Flag any:
1. Repeated infection patterns
2. Chronic symptoms
3. High-risk combinations
4. Recommendations`

const (
	placeholderUnknown    = "Unknown"
	placeholderNoHistory  = "None provided"
	placeholderNoGuidance = "None"
)

func symptomCheckPrompt(r *SymptomCheck) string {
	return fmt.Sprintf(symptomCheckUserPrompt,
		orDefault(string(r.Age), placeholderUnknown),
		orDefault(r.Gender, placeholderUnknown),
		r.Symptoms,
		orDefault(r.History, placeholderNoHistory),
	)
}

func prescriptionExplainPrompt(r *PrescriptionExplain) string {
	return fmt.Sprintf(prescriptionExplainUserPrompt,
		r.Diagnosis,
		jsonList(r.Medicines),
		orDefault(r.Instructions, placeholderNoGuidance),
	)
}

func riskFlagPrompt(r *RiskFlag) string {
	count := 0
	if r.AppointmentCount != nil {
		count = *r.AppointmentCount
	}
	return fmt.Sprintf(riskFlagUserPrompt,
		jsonList(r.Diagnoses),
		jsonList(r.Symptoms),
		count,
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func jsonList[T any](items []T) string {
	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(items)
	return strings.TrimSuffix(buf.String(), "\n")
}
