package sandbox

import (
	"context"
)

// NodeExecutor runs submissions under node inside a vm context exposing an
// allow-listed global surface.
type NodeExecutor struct{}

func NewNodeExecutor() *NodeExecutor {
	return &NodeExecutor{}
}

func (n *NodeExecutor) Language() string { return "javascript" }

func (n *NodeExecutor) Execute(ctx context.Context, req ExecRequest) (RawOutcome, error) {
	return runHarness(ctx, req, runConfig{
		binary:       "node",
		binaryArgs:   []string{"--no-warnings"},
		codeFname:    "index.js",
		harnessFname: "__runner.js",
		harness:      nodeHarness,
		env:          []string{"NODE_ENV=sandbox"},
		scratchTag:   "questlab-js-*",
	})
}

// Top-level bindings are observable by probes when declared with var or as
// function declarations; let/const stay inside the script scope, which is
// a constraint quest authors write against.
const nodeHarness = `"use strict";
const fs = require("node:fs");
const path = require("node:path");
const vm = require("node:vm");

const scratch = fs.realpathSync(process.cwd());

const allowedModules = new Set(["assert", "node:assert"]);
function guardedRequire(name) {
  if (!allowedModules.has(name)) {
    throw new Error("module '" + name + "' is not available in the sandbox");
  }
  return require(name);
}

function resolveInScratch(name) {
  const p = path.resolve(scratch, String(name));
  if (p !== scratch && !p.startsWith(scratch + path.sep)) {
    throw new Error("file access outside the working directory is not allowed");
  }
  return p;
}

function guardedReadFile(name) {
  return fs.readFileSync(resolveInScratch(name), "utf8");
}

function guardedWriteFile(name, content) {
  fs.writeFileSync(resolveInScratch(name), String(content));
}

const context = vm.createContext({
  console: console,
  Math: Math,
  JSON: JSON,
  Date: Date,
  RegExp: RegExp,
  require: guardedRequire,
  readFile: guardedReadFile,
  writeFile: guardedWriteFile,
});

const src = fs.readFileSync(path.join(scratch, "index.js"), "utf8");
try {
  vm.runInContext(src, context, { filename: "index.js" });
} catch (err) {
  process.stderr.write((err.name || "Error") + ": " + err.message + "\n");
  process.exit(1);
}

let spec;
try {
  spec = JSON.parse(fs.readFileSync(path.join(scratch, "__probe_spec.json"), "utf8"));
} catch (err) {
  process.exit(0);
}

function typeName(v) {
  if (v === null) return "null";
  if (Array.isArray(v)) return "array";
  return typeof v;
}

const report = { vars: {}, calls: [] };

for (const name of spec.vars || []) {
  if (name in context) {
    const v = context[name];
    const entry = {
      exists: true,
      type: typeName(v),
      is_list: Array.isArray(v),
      length: Array.isArray(v) ? v.length : 0,
    };
    try {
      entry.value = JSON.parse(JSON.stringify(v));
    } catch (err) {
      entry.value = String(v);
    }
    report.vars[name] = entry;
  } else {
    report.vars[name] = { exists: false, type: "", is_list: false, length: 0 };
  }
}

const hostConsole = console;
for (const call of spec.calls || []) {
  const entry = { name: call.name, output: "" };
  const fn = context[call.name];
  if (typeof fn !== "function") {
    entry.error = "function '" + call.name + "' is not defined";
    report.calls.push(entry);
    continue;
  }
  const lines = [];
  context.console = {
    log: function () { lines.push(Array.prototype.map.call(arguments, String).join(" ")); },
    error: function () { lines.push(Array.prototype.map.call(arguments, String).join(" ")); },
  };
  try {
    const ret = fn.apply(null, call.args || []);
    let out = lines.join("\n").trim();
    if (out === "" && ret !== undefined && ret !== null) {
      out = typeof ret === "string" ? ret : JSON.stringify(ret);
    }
    entry.output = out;
  } catch (err) {
    entry.error = (err.name || "Error") + ": " + err.message;
  } finally {
    context.console = hostConsole;
  }
  report.calls.push(entry);
}

fs.writeFileSync(path.join(scratch, "__probe_report.json"), JSON.stringify(report));
`
