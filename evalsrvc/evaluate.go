// Package evalsrvc turns a raw sandbox outcome into graded test results.
// Evaluation is pure: it never executes code and never returns an error;
// every judgement, including malformed specs and absent targets, is
// expressed as a failed TestResult with a descriptive message.
package evalsrvc

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/questlab/backend/sandbox"
)

type TestResult struct {
	TestID   string `json:"test_id"`
	Passed   bool   `json:"passed"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
	Message  string `json:"message,omitempty"`
}

type EvaluationResult struct {
	AllPassed   bool               `json:"all_passed"`
	TestResults []TestResult       `json:"test_results"`
	Raw         sandbox.RawOutcome `json:"raw"`
}

// Evaluate grades every spec against the outcome. Result order mirrors
// spec order. AllPassed is true when every test passed and at least one
// test existed, or when no tests were declared and the execution itself
// succeeded; the zero-tests fallback is deliberate policy.
func Evaluate(raw sandbox.RawOutcome, specs []TestSpec) EvaluationResult {
	execFailed := raw.TimedOut || raw.RuntimeError != nil
	execErrMsg := "execution failed"
	if raw.RuntimeError != nil {
		execErrMsg = *raw.RuntimeError
	}

	results := make([]TestResult, 0, len(specs))
	for _, spec := range specs {
		if execFailed {
			results = append(results, TestResult{
				TestID:   spec.ID,
				Passed:   false,
				Actual:   "execution error",
				Expected: expectedString(spec),
				Message:  execErrMsg,
			})
			continue
		}
		results = append(results, evaluateOne(raw, spec))
	}

	allPassed := !execFailed
	if len(specs) > 0 {
		allPassed = true
		for _, r := range results {
			if !r.Passed {
				allPassed = false
				break
			}
		}
	}

	return EvaluationResult{
		AllPassed:   allPassed,
		TestResults: results,
		Raw:         raw,
	}
}

func evaluateOne(raw sandbox.RawOutcome, spec TestSpec) TestResult {
	res := TestResult{TestID: spec.ID, Expected: expectedString(spec)}

	if err := spec.Validate(); err != nil {
		res.Message = err.Error()
		return res
	}

	switch spec.Kind {
	case KindOutput:
		actual := strings.TrimSpace(raw.Stdout)
		want := strings.TrimSpace(jsonToDisplay(spec.Expected))
		res.Actual = actual
		res.Passed = actual == want
		if !res.Passed {
			res.Message = "output does not match the expected text"
		}

	case KindVariableExists:
		v, ok := raw.Var(spec.VariableName)
		res.Expected = fmt.Sprintf("variable %q is defined", spec.VariableName)
		if ok && v.Exists {
			res.Passed = true
			res.Actual = "found"
		} else {
			res.Actual = "not found"
			res.Message = fmt.Sprintf("variable %q was not bound after the run", spec.VariableName)
		}

	case KindVariableType:
		v, ok := raw.Var(spec.VariableName)
		res.Expected = spec.ExpectedType
		if !ok || !v.Exists {
			res.Actual = "not found"
			res.Message = fmt.Sprintf("variable %q was not bound after the run", spec.VariableName)
			break
		}
		res.Actual = v.TypeName
		res.Passed = v.TypeName == spec.ExpectedType
		if !res.Passed {
			res.Message = fmt.Sprintf("variable %q has type %s, expected %s", spec.VariableName, v.TypeName, spec.ExpectedType)
		}

	case KindVariableValue:
		v, ok := raw.Var(spec.VariableName)
		if !ok || !v.Exists {
			res.Actual = "not found"
			res.Message = fmt.Sprintf("variable %q was not bound after the run", spec.VariableName)
			break
		}
		res.Actual = jsonToDisplay(v.ValueJSON)
		res.Passed = jsonDeepEqual(v.ValueJSON, spec.Expected)
		if !res.Passed {
			res.Message = fmt.Sprintf("variable %q holds a different value", spec.VariableName)
		}

	case KindFunctionCall:
		c, ok := raw.Call(spec.FunctionName)
		if !ok {
			res.Actual = "not invoked"
			res.Message = fmt.Sprintf("function %q could not be invoked", spec.FunctionName)
			break
		}
		if c.Error != "" {
			res.Actual = "error"
			res.Message = c.Error
			break
		}
		want := strings.TrimSpace(jsonToDisplay(spec.Expected))
		res.Actual = c.Output
		res.Passed = strings.TrimSpace(c.Output) == want
		if !res.Passed {
			res.Message = fmt.Sprintf("calling %q produced a different result", spec.FunctionName)
		}

	case KindListContains:
		v, ok := raw.Var(spec.VariableName)
		res.Expected = fmt.Sprintf("list contains %s", jsonToDisplay(spec.Expected))
		if !ok || !v.Exists {
			res.Actual = "not found"
			res.Message = fmt.Sprintf("variable %q was not bound after the run", spec.VariableName)
			break
		}
		if !v.IsList {
			res.Actual = v.TypeName
			res.Message = fmt.Sprintf("variable %q is not a list", spec.VariableName)
			break
		}
		res.Actual = jsonToDisplay(v.ValueJSON)
		res.Passed = listContains(v.ValueJSON, spec.Expected)
		if !res.Passed {
			res.Message = fmt.Sprintf("list %q does not contain the expected element", spec.VariableName)
		}

	case KindListLength:
		v, ok := raw.Var(spec.VariableName)
		if !ok || !v.Exists {
			res.Actual = "not found"
			res.Message = fmt.Sprintf("variable %q was not bound after the run", spec.VariableName)
			break
		}
		if !v.IsList {
			res.Actual = v.TypeName
			res.Message = fmt.Sprintf("variable %q is not a list", spec.VariableName)
			break
		}
		var wantLen int
		if err := json.Unmarshal(spec.Expected, &wantLen); err != nil {
			res.Message = fmt.Sprintf("test %s: expected length is not an integer", spec.ID)
			break
		}
		res.Actual = fmt.Sprintf("%d", v.Length)
		res.Expected = fmt.Sprintf("%d", wantLen)
		res.Passed = v.Length == wantLen
		if !res.Passed {
			res.Message = fmt.Sprintf("list %q has length %d, expected %d", spec.VariableName, v.Length, wantLen)
		}
	}

	return res
}

func expectedString(spec TestSpec) string {
	switch spec.Kind {
	case KindVariableExists:
		return fmt.Sprintf("variable %q is defined", spec.VariableName)
	case KindVariableType:
		return spec.ExpectedType
	default:
		return jsonToDisplay(spec.Expected)
	}
}

// jsonToDisplay renders a raw JSON value for humans: strings lose their
// quotes, everything else stays compact JSON.
func jsonToDisplay(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// jsonDeepEqual compares two raw JSON values structurally, so formatting
// and key order do not matter.
func jsonDeepEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

func listContains(listJSON, elemJSON json.RawMessage) bool {
	var list []any
	if err := json.Unmarshal(listJSON, &list); err != nil {
		return false
	}
	var elem any
	if err := json.Unmarshal(elemJSON, &elem); err != nil {
		return false
	}
	for _, item := range list {
		if reflect.DeepEqual(item, elem) {
			return true
		}
	}
	return false
}
