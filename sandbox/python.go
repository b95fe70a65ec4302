package sandbox

import (
	"context"
)

// PythonExecutor runs submissions under python3 in isolated mode through
// the scope-probing harness below.
type PythonExecutor struct{}

func NewPythonExecutor() *PythonExecutor {
	return &PythonExecutor{}
}

func (p *PythonExecutor) Language() string { return "python" }

func (p *PythonExecutor) Execute(ctx context.Context, req ExecRequest) (RawOutcome, error) {
	return runHarness(ctx, req, runConfig{
		binary:       "python3",
		binaryArgs:   []string{"-I"},
		codeFname:    "main.py",
		harnessFname: "__runner.py",
		harness:      pythonHarness,
		env: []string{
			"PYTHONUNBUFFERED=1",
			"PYTHONDONTWRITEBYTECODE=1",
		},
		scratchTag: "questlab-py-*",
	})
}

// The harness executes main.py in a fresh module scope with a guarded
// import and open surface, then snapshots the probe spec's variables and
// function calls into __probe_report.json. The report goes to a file, not
// stdout, so the submission's own output stays clean. On any failure of
// the submission the harness writes a single "ErrName: detail" line to
// stderr and exits non-zero before probing.
const pythonHarness = `import builtins
import contextlib
import io
import json
import os
import sys

SCRATCH = os.path.realpath(os.getcwd())

ALLOWED_MODULES = {
    "math", "random", "json", "datetime", "re", "string", "textwrap",
    "itertools", "functools", "collections", "statistics", "time",
    "typing", "decimal", "fractions",
    # lazily imported by datetime.strptime / time.strptime with the
    # calling frame's globals, so the requester check cannot exempt it
    "_strptime",
}

_real_import = builtins.__import__
_real_open = builtins.open

for _mod in sorted(ALLOWED_MODULES):
    try:
        _real_import(_mod)
    except ImportError:
        pass


def _guarded_import(name, globals=None, locals=None, fromlist=(), level=0):
    # only imports issued from the submission's own frames are
    # allow-listed; imports made internally by already-allowed modules
    # (globals of the library module, or none at all for C-level
    # imports) pass through
    requester = globals.get("__name__") if globals is not None else None
    if requester == "__main__":
        root = name.split(".")[0]
        if root not in ALLOWED_MODULES:
            raise ImportError("module '%s' is not available in the sandbox" % root)
    return _real_import(name, globals, locals, fromlist, level)


def _guarded_open(file, mode="r", *args, **kwargs):
    path = os.path.realpath(os.path.join(SCRATCH, os.fspath(file)))
    if path != SCRATCH and not path.startswith(SCRATCH + os.sep):
        raise PermissionError("file access outside the working directory is not allowed")
    return _real_open(path, mode, *args, **kwargs)


builtins.__import__ = _guarded_import
builtins.open = _guarded_open

scope = {"__name__": "__main__"}
try:
    with _real_open(os.path.join(SCRATCH, "main.py")) as f:
        src = f.read()
    exec(compile(src, "main.py", "exec"), scope)
except SystemExit:
    pass
except BaseException as e:
    sys.stderr.write("%s: %s\n" % (type(e).__name__, e))
    sys.exit(1)

sys.stdout.flush()

try:
    with _real_open(os.path.join(SCRATCH, "__probe_spec.json")) as f:
        spec = json.load(f)
except OSError:
    sys.exit(0)


def _snapshot(value):
    entry = {
        "exists": True,
        "type": type(value).__name__,
        "is_list": isinstance(value, (list, tuple)),
        "length": 0,
    }
    if entry["is_list"]:
        entry["length"] = len(value)
    try:
        entry["value"] = json.loads(json.dumps(value, default=str))
    except (TypeError, ValueError):
        entry["value"] = str(value)
    return entry


report = {"vars": {}, "calls": []}

for name in spec.get("vars", []):
    if name in scope:
        report["vars"][name] = _snapshot(scope[name])
    else:
        report["vars"][name] = {"exists": False, "type": "", "is_list": False, "length": 0}

for call in spec.get("calls", []):
    entry = {"name": call["name"], "output": ""}
    fn = scope.get(call["name"])
    if not callable(fn):
        entry["error"] = "function '%s' is not defined" % call["name"]
        report["calls"].append(entry)
        continue
    buf = io.StringIO()
    try:
        with contextlib.redirect_stdout(buf):
            ret = fn(*call.get("args", []))
        out = buf.getvalue().strip()
        if out == "" and ret is not None:
            out = ret if isinstance(ret, str) else json.dumps(ret, default=str)
        entry["output"] = out
    except BaseException as e:
        entry["error"] = "%s: %s" % (type(e).__name__, e)
    report["calls"].append(entry)

with _real_open(os.path.join(SCRATCH, "__probe_report.json"), "w") as f:
    json.dump(report, f)
`
