// sandbox.go: per-plugin sandbox construction (§4.E) — the isolated
// {env, global} pair each plugin's code runs against, installed on
// first load and shared across every file belonging to that plugin.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"errors"
	"os"
	"strings"
)

var errNotAString = errors.New("JSON.parse expects a string argument")

// SandboxTemplate is the {env?, global?} pair a host can assign to a
// specific plugin via PluginManager.SetSandboxTemplate, or leave unset
// to get the default derived from the host's own environment.
type SandboxTemplate struct {
	// Env populates the plugin's process.env, which holds only these
	// entries.
	Env map[string]string

	// Global populates the plugin's `global` object, which starts empty.
	// Values must be primitives (string, float64, bool) or nil; richer
	// shapes should be exposed as staticDependencies instead.
	Global map[string]any
}

// defaultSandboxTemplate derives the fallback template applied to any
// plugin without an explicit one: a shallow copy of the host process's
// environment, and no extra global bindings. A Go host has no
// enumerable JS global object to copy from, so "shallow-copying host
// globals" degenerates to an empty Global map here — documented in
// DESIGN.md as the one place §4.E's "host globals" language doesn't
// translate literally into a Go host.
func defaultSandboxTemplate() SandboxTemplate {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return SandboxTemplate{Env: env}
}

// pluginSandbox is the materialized, mutable runtime state backing one
// plugin's isolated context: its own process.env object, its own
// global object, and the root scope every file of that plugin shares.
type pluginSandbox struct {
	root       *jsScope
	processObj *jsObject
	globalObj  *jsObject
}

func newPluginSandbox(tmpl SandboxTemplate) *pluginSandbox {
	envObj := newObject()
	for k, v := range tmpl.Env {
		envObj.set(k, v)
	}

	processObj := newObject()
	processObj.set("env", envObj)
	processObj.set("platform", "linux")
	processObj.set("version", "v18.0.0")
	processObj.set("argv", newArray([]any{"node", "plugin"}))

	globalObj := newObject()
	for k, v := range tmpl.Global {
		globalObj.set(k, v)
	}

	root := newScope(nil)
	root.define("global", globalObj)
	root.define("process", processObj)
	root.define("console", consoleObject())
	root.define("JSON", jsonObject())
	root.define("Buffer", bufferConstructor())
	root.define("Error", errorConstructor())
	installTimerStubs(root)

	return &pluginSandbox{root: root, processObj: processObj, globalObj: globalObj}
}

// consoleObject builds the console global every sandbox gets; its
// methods write nowhere by default (a silent console matches this
// loader's synchronous, non-interactive execution model) but are real
// callables so plugin code invoking console.log never throws.
func consoleObject() *jsObject {
	o := newObject()
	logFn := nativeFn("log", func(i *interp, this any, args []any) (any, error) {
		return undefined, nil
	})
	o.set("log", logFn)
	o.set("info", logFn)
	o.set("warn", logFn)
	o.set("error", logFn)
	o.set("debug", logFn)
	return o
}

func jsonObject() *jsObject {
	o := newObject()
	o.set("stringify", nativeFn("stringify", func(i *interp, this any, args []any) (any, error) {
		s, err := jsonStringify(arg(args, 0))
		if err != nil {
			return nil, NewExecutionError("JSON.stringify", err)
		}
		return s, nil
	}))
	o.set("parse", nativeFn("parse", func(i *interp, this any, args []any) (any, error) {
		s, ok := arg(args, 0).(string)
		if !ok {
			return nil, NewExecutionError("JSON.parse", errNotAString)
		}
		v, err := jsonParse(s)
		if err != nil {
			return nil, NewExecutionError("JSON.parse", err)
		}
		return v, nil
	}))
	return o
}

// bufferConstructor provides a minimal Buffer.from/Buffer.isBuffer
// surface: enough for plugin code that stringifies or measures a
// buffer, not a byte-accurate binary Buffer implementation.
func bufferConstructor() *jsObject {
	ctor := newObject()
	from := nativeFn("from", func(i *interp, this any, args []any) (any, error) {
		s, _ := arg(args, 0).(string)
		buf := newObject()
		buf.set("length", float64(len(s)))
		buf.set("toString", nativeFn("toString", func(i *interp, this any, args []any) (any, error) {
			return s, nil
		}))
		return buf, nil
	})
	ctor.set("from", from)
	ctor.set("isBuffer", nativeFn("isBuffer", func(i *interp, this any, args []any) (any, error) {
		_, ok := arg(args, 0).(*jsObject)
		return ok, nil
	}))
	return ctor
}

// errorConstructor provides `new Error(message)`: a plain object
// carrying name/message, the shape plugin code's own try/catch and
// instanceof-free error handling actually inspects.
func errorConstructor() *jsFunction {
	return nativeFn("Error", func(i *interp, this any, args []any) (any, error) {
		msg := ""
		if len(args) > 0 {
			msg = toStringValue(args[0])
		}
		o, ok := this.(*jsObject)
		if !ok {
			o = newObject()
		}
		o.set("message", msg)
		o.set("name", "Error")
		o.set("toString", nativeFn("toString", func(i *interp, this any, args []any) (any, error) {
			return "Error: " + msg, nil
		}))
		return o, nil
	})
}

// installTimerStubs wires setTimeout/setInterval/setImmediate to run
// their callback synchronously and their clear* counterparts to no-ops.
// The loader's execution model is fully synchronous (§5: require and
// runScript never suspend), so there is no event loop to schedule onto;
// running the callback immediately is the closest equivalent a plugin
// author can observe without one.
func installTimerStubs(scope *jsScope) {
	immediate := nativeFn("setTimeout", func(i *interp, this any, args []any) (any, error) {
		fn, ok := arg(args, 0).(*jsFunction)
		if !ok {
			return float64(0), nil
		}
		extra := args
		if len(extra) > 2 {
			extra = extra[2:]
		} else {
			extra = nil
		}
		_, err := i.callFunction(fn, undefined, extra)
		return float64(0), err
	})
	noop := nativeFn("clearTimeout", func(i *interp, this any, args []any) (any, error) {
		return undefined, nil
	})

	scope.define("setTimeout", immediate)
	scope.define("setInterval", immediate)
	scope.define("setImmediate", immediate)
	scope.define("clearTimeout", noop)
	scope.define("clearInterval", noop)
	scope.define("clearImmediate", noop)
}
