package sandbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func marshalProbeSpec(spec ProbeSpec) ([]byte, error) {
	// normalize nils so every harness sees arrays, not null
	if spec.Vars == nil {
		spec.Vars = []string{}
	}
	calls := make([]CallSpec, len(spec.Calls))
	for i, c := range spec.Calls {
		if c.Args == nil {
			c.Args = []json.RawMessage{}
		}
		calls[i] = c
	}
	spec.Calls = calls
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal probe spec: %w", err)
	}
	return data, nil
}

// readProbeReport parses the harness's scope snapshot. A missing file is
// not an error: the run may have crashed or carried no probes.
func readProbeReport(dir string) *ProbeReport {
	data, err := os.ReadFile(filepath.Join(dir, probeReportFname))
	if err != nil {
		return nil
	}
	var report ProbeReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}
