package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// runConfig is what a language variant contributes to the shared run loop.
type runConfig struct {
	binary       string   // interpreter looked up on PATH
	binaryArgs   []string // flags before the harness path
	codeFname    string   // where the submission is written
	harnessFname string
	harness      string // harness source, embedded per backend
	env          []string
	scratchTag   string
}

// runHarness executes one submission through a language harness. The
// submitted code's own failures (crash, timeout, oversized output) land in
// the RawOutcome; a non-nil error is reserved for sandbox infrastructure
// faults.
func runHarness(ctx context.Context, req ExecRequest, cfg runConfig) (RawOutcome, error) {
	binPath, err := exec.LookPath(cfg.binary)
	if err != nil {
		return RawOutcome{}, ErrTransportFault().SetDebug(err)
	}

	dir, cleanup, err := newScratchDir(cfg.scratchTag, req.Datasets)
	if err != nil {
		return RawOutcome{}, ErrSandboxFault().SetDebug(err)
	}
	defer cleanup()

	if err := os.WriteFile(filepath.Join(dir, cfg.codeFname), []byte(req.Code), filePermission); err != nil {
		return RawOutcome{}, ErrSandboxFault().SetDebug(err)
	}
	if err := os.WriteFile(filepath.Join(dir, cfg.harnessFname), []byte(cfg.harness), filePermission); err != nil {
		return RawOutcome{}, ErrSandboxFault().SetDebug(err)
	}
	if err := writeProbeSpec(dir, req.Probes); err != nil {
		return RawOutcome{}, ErrSandboxFault().SetDebug(err)
	}

	timeoutMs := req.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}
	if timeoutMs > MaxTimeoutMs {
		timeoutMs = MaxTimeoutMs
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	args := append([]string{}, cfg.binaryArgs...)
	args = append(args, filepath.Join(dir, cfg.harnessFname))
	cmd := exec.CommandContext(runCtx, binPath, args...)
	cmd.Dir = dir
	cmd.Env = cfg.env

	stdout := NewCapBuffer(req.MaxStdoutBytes)
	stderr := NewCapBuffer(req.MaxStderrBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	outcome := RawOutcome{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		ElapsedMs:       elapsed,
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		// the deadline won the race; whatever the process was about to
		// produce is discarded with it
		outcome.TimedOut = true
		msg := TimeoutErrMsg
		outcome.RuntimeError = &msg
		return outcome, nil
	}
	if ctx.Err() != nil {
		// the caller went away mid-run; the killed process is not a
		// graded outcome and not a timeout
		return outcome, ctx.Err()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return outcome, ErrTransportFault().SetDebug(runErr)
		}
		msg := runtimeErrFromStderr(outcome.Stderr)
		outcome.RuntimeError = &msg
		return outcome, nil
	}

	outcome.Probe = readProbeReport(dir)
	return outcome, nil
}

// runtimeErrFromStderr distills the harness's one-line error report. The
// harness writes "ErrName: detail" as the last stderr line.
func runtimeErrFromStderr(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "execution failed"
}
