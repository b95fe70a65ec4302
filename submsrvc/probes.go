package submsrvc

import (
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/sandbox"
)

// probesFor derives the scope probes a quest's test specs need: one
// variable snapshot per variable/list kind and one invocation per
// function_call kind. Output-only quests produce an empty spec and the
// harness skips probing entirely.
func probesFor(specs []evalsrvc.TestSpec) sandbox.ProbeSpec {
	var probe sandbox.ProbeSpec
	seenVars := map[string]bool{}
	for _, spec := range specs {
		switch spec.Kind {
		case evalsrvc.KindVariableExists, evalsrvc.KindVariableType,
			evalsrvc.KindVariableValue, evalsrvc.KindListContains,
			evalsrvc.KindListLength:
			if spec.VariableName != "" && !seenVars[spec.VariableName] {
				seenVars[spec.VariableName] = true
				probe.Vars = append(probe.Vars, spec.VariableName)
			}
		case evalsrvc.KindFunctionCall:
			if spec.FunctionName != "" {
				probe.Calls = append(probe.Calls, sandbox.CallSpec{
					Name: spec.FunctionName,
					Args: spec.Args,
				})
			}
		}
	}
	return probe
}
