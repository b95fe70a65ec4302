package evalsrvc

import (
	"encoding/json"
	"fmt"
)

type TestKind string

const (
	KindOutput         TestKind = "output"
	KindVariableExists TestKind = "variable_exists"
	KindVariableType   TestKind = "variable_type"
	KindVariableValue  TestKind = "variable_value"
	KindFunctionCall   TestKind = "function_call"
	KindListContains   TestKind = "list_contains"
	KindListLength     TestKind = "list_length"
)

// TestSpec is a tagged union keyed by Kind; each kind requires only the
// fields its rule reads. Shapes are validated once at quest-load time, not
// per execution.
type TestSpec struct {
	ID          string   `json:"id"`
	Kind        TestKind `json:"kind"`
	Description string   `json:"description,omitempty"`

	Expected     json.RawMessage   `json:"expected,omitempty"`
	VariableName string            `json:"variable,omitempty"`
	ExpectedType string            `json:"expected_type,omitempty"`
	FunctionName string            `json:"function,omitempty"`
	Args         []json.RawMessage `json:"args,omitempty"`
}

// Validate checks the kind-required fields.
func (s TestSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("test spec is missing an id")
	}
	switch s.Kind {
	case KindOutput:
		if len(s.Expected) == 0 {
			return fmt.Errorf("test %s: kind %q requires expected", s.ID, s.Kind)
		}
	case KindVariableExists:
		if s.VariableName == "" {
			return fmt.Errorf("test %s: kind %q requires variable", s.ID, s.Kind)
		}
	case KindVariableType:
		if s.VariableName == "" || s.ExpectedType == "" {
			return fmt.Errorf("test %s: kind %q requires variable and expected_type", s.ID, s.Kind)
		}
	case KindVariableValue:
		if s.VariableName == "" || len(s.Expected) == 0 {
			return fmt.Errorf("test %s: kind %q requires variable and expected", s.ID, s.Kind)
		}
	case KindFunctionCall:
		if s.FunctionName == "" || len(s.Expected) == 0 {
			return fmt.Errorf("test %s: kind %q requires function and expected", s.ID, s.Kind)
		}
	case KindListContains, KindListLength:
		if s.VariableName == "" || len(s.Expected) == 0 {
			return fmt.Errorf("test %s: kind %q requires variable and expected", s.ID, s.Kind)
		}
	default:
		return fmt.Errorf("test %s: unknown kind %q", s.ID, s.Kind)
	}
	return nil
}
