package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPermission  = 0755
	filePermission = 0600

	probeSpecFname   = "__probe_spec.json"
	probeReportFname = "__probe_report.json"
)

// newScratchDir creates the ephemeral working directory for one execution
// and materializes the request's dataset files into it. The returned
// cleanup removes the directory; callers defer it so removal happens on
// every exit path.
func newScratchDir(pattern string, datasets []DatasetFile) (string, func(), error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	for _, f := range datasets {
		name := filepath.Clean(f.Name)
		if name == "" || name == "." || filepath.IsAbs(name) || strings.Contains(name, "..") {
			cleanup()
			return "", nil, fmt.Errorf("unsafe dataset file name: %q", f.Name)
		}
		path := filepath.Join(dir, name)
		if parent := filepath.Dir(path); parent != dir {
			if err := os.MkdirAll(parent, dirPermission); err != nil {
				cleanup()
				return "", nil, fmt.Errorf("failed to create dataset dir: %w", err)
			}
		}
		if err := os.WriteFile(path, f.Content, filePermission); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to write dataset %q: %w", name, err)
		}
	}
	return dir, cleanup, nil
}

// writeProbeSpec serializes the probe spec into the scratch dir for the
// harness to pick up. An empty spec writes nothing; the harness treats a
// missing spec file as "no probes requested".
func writeProbeSpec(dir string, spec ProbeSpec) error {
	if spec.IsEmpty() {
		return nil
	}
	data, err := marshalProbeSpec(spec)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, probeSpecFname), data, filePermission)
}
