package clinic

import (
	"encoding/json"
	"fmt"
	"slices"
)

const explanationFallback = "Unable to generate explanation."

type Condition struct {
	Name        string `json:"name"`
	Probability string `json:"probability"`
	Description string `json:"description"`
}

type SymptomCheckResult struct {
	Conditions      []Condition `json:"conditions"`
	RiskLevel       string      `json:"risk_level"`
	SuggestedTests  []string    `json:"suggested_tests"`
	Recommendations string      `json:"recommendations"`
}

type RiskFlagEntry struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type RiskFlagResult struct {
	OverallRisk     string          `json:"overall_risk"`
	Flags           []RiskFlagEntry `json:"flags"`
	Recommendations string          `json:"recommendations"`
}

type ExplanationResult struct {
	Explanation string `json:"explanation"`
}

func (r *SymptomCheckResult) check() error {
	if r.Conditions == nil {
		return fmt.Errorf("conditions missing")
	}
	if r.SuggestedTests == nil {
		return fmt.Errorf("suggested_tests missing")
	}
	if err := oneOf("risk_level", r.RiskLevel, riskLevels); err != nil {
		return err
	}
	for i, c := range r.Conditions {
		if err := oneOf(fmt.Sprintf("conditions[%d].probability", i), c.Probability, probabilityLevels); err != nil {
			return err
		}
	}
	return nil
}

func (r *RiskFlagResult) check() error {
	if r.Flags == nil {
		return fmt.Errorf("flags missing")
	}
	if err := oneOf("overall_risk", r.OverallRisk, riskLevels); err != nil {
		return err
	}
	for i, f := range r.Flags {
		if err := oneOf(fmt.Sprintf("flags[%d].severity", i), f.Severity, severityLevels); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%s: %q is not one of %v", field, value, allowed)
	}
	return nil
}

// checkReply decodes raw into T and runs its enum checks.
func checkReply[T any, PT interface {
	*T
	check() error
}](raw json.RawMessage) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return PT(&v).check()
}
