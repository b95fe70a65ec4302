package sandbox

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, binary string) {
	t.Helper()
	if _, err := exec.LookPath(binary); err != nil {
		t.Skipf("%s not installed, skipping", binary)
	}
}

func TestPythonExecutorCapturesStdout(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: `print("hello from the sandbox")`,
	})
	require.NoError(t, err)

	assert.Contains(t, out.Stdout, "hello from the sandbox")
	assert.False(t, out.TimedOut)
	assert.Nil(t, out.RuntimeError)
	assert.False(t, out.StdoutTruncated)
}

func TestPythonExecutorReportsRuntimeError(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: `raise ValueError("boom")`,
	})
	require.NoError(t, err)

	require.NotNil(t, out.RuntimeError)
	assert.Contains(t, *out.RuntimeError, "ValueError")
	assert.False(t, out.TimedOut)
}

func TestPythonExecutorTimesOut(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code:      "while True:\n    pass\n",
		TimeoutMs: 300,
	})
	require.NoError(t, err)

	assert.True(t, out.TimedOut)
	require.NotNil(t, out.RuntimeError)
	assert.Equal(t, TimeoutErrMsg, *out.RuntimeError)
}

func TestPythonExecutorCanceledMidRun(t *testing.T) {
	requireBinary(t, "python3")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	out, err := NewPythonExecutor().Execute(ctx, ExecRequest{
		Code:      "import time\ntime.sleep(5)\n",
		TimeoutMs: 8000,
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, out.TimedOut)
}

func TestPythonExecutorBlocksDisallowedImports(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: "import socket\n",
	})
	require.NoError(t, err)

	require.NotNil(t, out.RuntimeError)
	assert.Contains(t, *out.RuntimeError, "ImportError")
}

func TestPythonExecutorAllowsListedImports(t *testing.T) {
	requireBinary(t, "python3")

	for name, code := range map[string]string{
		"random":     "import random\nprint(random.randint(3, 3))\n",
		"statistics": "import statistics\nprint(statistics.mean([2, 4]))\n",
		"datetime":   "import datetime\nprint(datetime.datetime.strptime(\"2026-08-28\", \"%Y-%m-%d\").day)\n",
	} {
		t.Run(name, func(t *testing.T) {
			out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{Code: code})
			require.NoError(t, err)
			assert.Nil(t, out.RuntimeError)
			assert.NotEmpty(t, out.Stdout)
		})
	}
}

func TestPythonExecutorBlocksImportsInsideFunctions(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: "def f():\n    import subprocess\nf()\n",
	})
	require.NoError(t, err)

	require.NotNil(t, out.RuntimeError)
	assert.Contains(t, *out.RuntimeError, "ImportError")
}

func TestPythonExecutorReadsDatasets(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: "with open(\"data.txt\") as f:\n    print(f.read())\n",
		Datasets: []DatasetFile{
			{Name: "data.txt", Content: []byte("42,17,8")},
		},
	})
	require.NoError(t, err)

	assert.Nil(t, out.RuntimeError)
	assert.Contains(t, out.Stdout, "42,17,8")
}

func TestPythonExecutorProbesScope(t *testing.T) {
	requireBinary(t, "python3")

	code := `x = 42
nums = [1, 2, 3]
def greet(name):
    return "Hello, " + name
`
	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code: code,
		Probes: ProbeSpec{
			Vars: []string{"x", "nums", "missing"},
			Calls: []CallSpec{
				{Name: "greet", Args: []json.RawMessage{json.RawMessage(`"World"`)}},
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Probe)

	x, ok := out.Var("x")
	require.True(t, ok)
	assert.True(t, x.Exists)
	assert.Equal(t, "int", x.TypeName)

	nums, ok := out.Var("nums")
	require.True(t, ok)
	assert.True(t, nums.IsList)
	assert.Equal(t, 3, nums.Length)

	missing, ok := out.Var("missing")
	require.True(t, ok)
	assert.False(t, missing.Exists)

	call, ok := out.Call("greet")
	require.True(t, ok)
	assert.Equal(t, "Hello, World", call.Output)
	assert.Empty(t, call.Error)
}

func TestPythonExecutorTruncatesOutput(t *testing.T) {
	requireBinary(t, "python3")

	out, err := NewPythonExecutor().Execute(context.Background(), ExecRequest{
		Code:           `print("x" * 100000)`,
		MaxStdoutBytes: 1024,
	})
	require.NoError(t, err)

	assert.True(t, out.StdoutTruncated)
	assert.Contains(t, out.Stdout, "[output truncated - exceeded 1024 byte limit]")
}

func TestNodeExecutorCapturesStdoutAndProbes(t *testing.T) {
	requireBinary(t, "node")

	code := `var total = 6 * 7;
console.log("total is " + total);
`
	out, err := NewNodeExecutor().Execute(context.Background(), ExecRequest{
		Code:   code,
		Probes: ProbeSpec{Vars: []string{"total"}},
	})
	require.NoError(t, err)

	assert.Contains(t, out.Stdout, "total is 42")
	probe, ok := out.Var("total")
	require.True(t, ok)
	assert.True(t, probe.Exists)
	assert.Equal(t, "number", probe.TypeName)
}

func TestRegistrySelectsByLanguage(t *testing.T) {
	registry := NewRegistry(NewPythonExecutor(), NewNodeExecutor())

	e, err := registry.Get("python")
	require.NoError(t, err)
	assert.Equal(t, "python", e.Language())

	_, err = registry.Get("cobol")
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{"python", "javascript"}, registry.Languages())
}

func TestRuntimeErrFromStderr(t *testing.T) {
	assert.Equal(t, "ValueError: boom", runtimeErrFromStderr("ValueError: boom\n"))
	assert.Equal(t, "last line", runtimeErrFromStderr("first\nlast line\n\n"))
	assert.Equal(t, "execution failed", runtimeErrFromStderr("   \n"))
}
