package clinic

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/ai"
)

var (
	probabilityLevels = []string{"High", "Medium", "Low"}
	riskLevels        = []string{"Low", "Medium", "High", "Critical"}
	severityLevels    = []string{"Low", "Medium", "High"}
)

var suggestConditionsTool = ai.Tool{
	Name:        "suggest_conditions",
	Description: "Return possible medical conditions based on symptoms",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"conditions": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"name":        {Type: jsonschema.String, Description: "Condition name"},
						"probability": {Type: jsonschema.String, Enum: probabilityLevels},
						"description": {Type: jsonschema.String, Description: "Brief description"},
					},
					Required:             []string{"name", "probability", "description"},
					AdditionalProperties: false,
				},
			},
			"risk_level": {Type: jsonschema.String, Enum: riskLevels},
			"suggested_tests": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
			"recommendations": {Type: jsonschema.String},
		},
		Required:             []string{"conditions", "risk_level", "suggested_tests", "recommendations"},
		AdditionalProperties: false,
	},
}

var flagRisksTool = ai.Tool{
	Name:        "flag_risks",
	Description: "Return risk analysis for the patient",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"overall_risk": {Type: jsonschema.String, Enum: riskLevels},
			"flags": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"type":        {Type: jsonschema.String},
						"description": {Type: jsonschema.String},
						"severity":    {Type: jsonschema.String, Enum: severityLevels},
					},
					Required:             []string{"type", "description", "severity"},
					AdditionalProperties: false,
				},
			},
			"recommendations": {Type: jsonschema.String},
		},
		Required:             []string{"overall_risk", "flags", "recommendations"},
		AdditionalProperties: false,
	},
}
