package clinic

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// SymptomCheck asks for possible conditions for a set of symptoms.
type SymptomCheck struct {
	Age      Age    `json:"age"`
	Gender   string `json:"gender"`
	Symptoms string `json:"symptoms"`
	History  string `json:"history"`
}

// PrescriptionExplain asks for a patient-friendly prescription explanation.
type PrescriptionExplain struct {
	Diagnosis    string     `json:"diagnosis"`
	Medicines    []Medicine `json:"medicines"`
	Instructions string     `json:"instructions"`
}

type Medicine struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Duration string `json:"duration"`
}

// RiskFlag asks for risk patterns across a patient's history.
type RiskFlag struct {
	Diagnoses        []string `json:"diagnoses"`
	Symptoms         []string `json:"symptoms"`
	AppointmentCount *int     `json:"appointmentCount"`
}

func (*SymptomCheck) Action() Action        { return ActionSymptomCheck }
func (*PrescriptionExplain) Action() Action { return ActionPrescriptionExplain }
func (*RiskFlag) Action() Action            { return ActionRiskFlag }

func (r *SymptomCheck) validate() error {
	if strings.TrimSpace(r.Symptoms) == "" {
		return errors.New("symptoms is required")
	}
	return nil
}

func (r *PrescriptionExplain) validate() error {
	if strings.TrimSpace(r.Diagnosis) == "" {
		return errors.New("diagnosis is required")
	}
	if r.Medicines == nil {
		return errors.New("medicines is required")
	}
	return nil
}

func (r *RiskFlag) validate() error {
	switch {
	case r.Diagnoses == nil:
		return errors.New("diagnoses is required")
	case r.Symptoms == nil:
		return errors.New("symptoms is required")
	case r.AppointmentCount == nil:
		return errors.New("appointmentCount is required")
	case *r.AppointmentCount < 0:
		return errors.New("appointmentCount must not be negative")
	}
	return nil
}

var errAgeType = errors.New("age must be a number or string")

// Age is sent either as a number or as a label such as "Unknown".
type Age string

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(s))
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return errAgeType
		}
		*a = Age(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

type envelope struct {
	Action json.RawMessage `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ParseRequest decodes an {action, data} body into its concrete request.
// Unknown actions, unknown data fields, and missing required fields are
// rejected here, before any upstream call.
func ParseRequest(body []byte) (Request, error) {
	if !json.Valid(body) {
		return nil, invalidRequest("Invalid request body", nil)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, invalidAction()
	}
	var name string
	if err := json.Unmarshal(env.Action, &name); err != nil {
		return nil, invalidAction()
	}

	var req Request
	switch Action(name) {
	case ActionSymptomCheck:
		req = &SymptomCheck{}
	case ActionPrescriptionExplain:
		req = &PrescriptionExplain{}
	case ActionRiskFlag:
		req = &RiskFlag{}
	default:
		return nil, invalidAction()
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, invalidRequest("data is required", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, invalidData(err)
	}
	if err := req.validate(); err != nil {
		return nil, invalidRequest(err.Error(), err)
	}
	return req, nil
}

// invalidData names the offending field without echoing decoder internals.
func invalidData(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, errAgeType):
		return invalidRequest("Invalid data: "+errAgeType.Error(), err)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return invalidRequest("Invalid data: "+typeErr.Field+" has the wrong type", err)
	case errors.As(err, &typeErr):
		return invalidRequest("Invalid data: data must be an object", err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return invalidRequest("Invalid data: unknown field "+strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	}
	return invalidRequest("Invalid data", err)
}
