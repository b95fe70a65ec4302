// Package sandbox runs untrusted submissions under a hard wall-clock
// deadline with bounded output capture. One executor variant exists per
// supported language; all variants satisfy the same contract. Resource
// isolation (network denial, CPU/memory ceilings) is a provisioning-level
// guarantee of the surrounding container; this package decides what runs,
// for how long, and what the caller gets to observe.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	// DefaultTimeoutMs is the native execution deadline.
	DefaultTimeoutMs = 2000
	// MaxTimeoutMs caps whatever the quest or caller asks for.
	MaxTimeoutMs = 10000
	// DefaultMaxOutputBytes is the per-stream capture ceiling.
	DefaultMaxOutputBytes = 64 * 1024

	// TimeoutErrMsg is the runtime error recorded on deadline expiry.
	TimeoutErrMsg = "execution timeout exceeded"
)

// DatasetFile is materialized into the scratch directory before execution.
type DatasetFile struct {
	Name    string
	Content []byte
}

// ExecRequest describes one submission to run. Immutable once dispatched.
type ExecRequest struct {
	Code           string
	Datasets       []DatasetFile
	TimeoutMs      int64
	MaxStdoutBytes int
	MaxStderrBytes int
	Probes         ProbeSpec
}

// RawOutcome is produced exactly once per submission and never mutated
// afterwards. All failure modes of the submitted code are encoded here;
// Execute returns a non-nil error only for faults of the sandbox itself.
type RawOutcome struct {
	Stdout          string       `json:"stdout"`
	Stderr          string       `json:"stderr"`
	TimedOut        bool         `json:"timed_out"`
	RuntimeError    *string      `json:"runtime_error,omitempty"`
	ElapsedMs       int64        `json:"elapsed_ms"`
	StdoutTruncated bool         `json:"stdout_truncated"`
	StderrTruncated bool         `json:"stderr_truncated"`
	Probe           *ProbeReport `json:"probe,omitempty"`
}

// Executor is the per-language sandbox contract. Adding a language means
// adding a variant; the evaluator never sees which one ran.
type Executor interface {
	Language() string
	Execute(ctx context.Context, req ExecRequest) (RawOutcome, error)
}

// Registry maps language tags to executor variants. Construct once at
// process start.
type Registry struct {
	byLang map[string]Executor
}

func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{byLang: map[string]Executor{}}
	for _, e := range executors {
		r.byLang[e.Language()] = e
	}
	return r
}

func (r *Registry) Get(lang string) (Executor, error) {
	e, ok := r.byLang[lang]
	if !ok {
		return nil, fmt.Errorf("no sandbox backend for language %q", lang)
	}
	return e, nil
}

func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.byLang))
	for l := range r.byLang {
		langs = append(langs, l)
	}
	return langs
}

// ProbeSpec tells the harness which scope bindings to snapshot and which
// functions to invoke after the submission has run.
type ProbeSpec struct {
	Vars  []string   `json:"vars"`
	Calls []CallSpec `json:"calls"`
}

func (p ProbeSpec) IsEmpty() bool {
	return len(p.Vars) == 0 && len(p.Calls) == 0
}

type CallSpec struct {
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args"`
}

// ProbeReport is the harness's snapshot of the execution scope, read back
// from the scratch directory after the process exits.
type ProbeReport struct {
	Vars  map[string]VarProbe `json:"vars"`
	Calls []CallProbe         `json:"calls"`
}

type VarProbe struct {
	Exists    bool            `json:"exists"`
	TypeName  string          `json:"type"`
	ValueJSON json.RawMessage `json:"value,omitempty"`
	IsList    bool            `json:"is_list"`
	Length    int             `json:"length"`
}

type CallProbe struct {
	Name   string `json:"name"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Var looks up a variable probe; the second result is false when the
// harness produced no report at all (crashed or timed-out run).
func (o RawOutcome) Var(name string) (VarProbe, bool) {
	if o.Probe == nil {
		return VarProbe{}, false
	}
	v, ok := o.Probe.Vars[name]
	return v, ok
}

// Call finds the probe result for a function invocation by name.
func (o RawOutcome) Call(name string) (CallProbe, bool) {
	if o.Probe == nil {
		return CallProbe{}, false
	}
	for _, c := range o.Probe.Calls {
		if c.Name == name {
			return c, true
		}
	}
	return CallProbe{}, false
}
