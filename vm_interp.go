// vm_interp.go: the tree-walking evaluator over the AST from
// vm_ast.go, executed once per loaded CommonJS module inside its
// plugin's sandbox scope (§4.E).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"math"
)

// jsThrowError wraps a thrown JS value so it can travel up through Go's
// error-returning call chain until a try/catch (or the loader, for an
// uncaught throw) handles it.
type jsThrowError struct{ value any }

func (e *jsThrowError) Error() string {
	if o, ok := e.value.(*jsObject); ok {
		if msg, ok := o.get("message"); ok {
			return fmt.Sprintf("uncaught exception: %s", toStringValue(msg))
		}
	}
	return fmt.Sprintf("uncaught exception: %s", toStringValue(e.value))
}

// control carries a non-local exit (return/break/continue) up through
// statement execution without allocating on every ordinary statement.
type control int

const (
	ctrlNone control = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// interp is the evaluator shared by every module evaluation. It carries
// no per-module state: require, module and exports are bindings in the
// scope each evaluation runs in.
type interp struct {
	global *jsScope
}

func newInterp(global *jsScope) *interp {
	return &interp{global: global}
}

// run executes a parsed program's top-level statements in scope.
func (i *interp) run(prog *programNode, scope *jsScope) error {
	i.hoist(prog.body, scope)
	_, ctrl, err := i.execList(prog.body, scope)
	if err != nil {
		return err
	}
	_ = ctrl
	return nil
}

// hoist predeclares function declarations (var names are not hoisted)
// before the body executes, matching CommonJS modules'
// reliance on being able to call a function defined later in the file.
func (i *interp) hoist(body []stmt, scope *jsScope) {
	for _, s := range body {
		if fd, ok := s.(funcDeclStmt); ok {
			scope.define(fd.name, &jsFunction{name: fd.name, params: fd.params, body: fd.body, closure: scope})
		}
	}
}

func (i *interp) execList(body []stmt, scope *jsScope) (any, control, error) {
	for _, s := range body {
		v, ctrl, err := i.exec(s, scope)
		if err != nil {
			return nil, ctrlNone, err
		}
		if ctrl != ctrlNone {
			return v, ctrl, nil
		}
	}
	return undefined, ctrlNone, nil
}

func (i *interp) exec(s stmt, scope *jsScope) (any, control, error) {
	switch n := s.(type) {
	case varDeclStmt:
		var v any = undefined
		if n.value != nil {
			val, err := i.eval(n.value, scope)
			if err != nil {
				return nil, ctrlNone, err
			}
			v = val
		}
		scope.define(n.name, v)
		return undefined, ctrlNone, nil

	case funcDeclStmt:
		// Already hoisted; re-executing is a harmless no-op at the
		// top level and correct inside nested blocks.
		scope.define(n.name, &jsFunction{name: n.name, params: n.params, body: n.body, closure: scope})
		return undefined, ctrlNone, nil

	case exprStmt:
		_, err := i.eval(n.x, scope)
		return undefined, ctrlNone, err

	case returnStmt:
		if n.value == nil {
			return undefined, ctrlReturn, nil
		}
		v, err := i.eval(n.value, scope)
		if err != nil {
			return nil, ctrlNone, err
		}
		return v, ctrlReturn, nil

	case blockStmt:
		inner := newScope(scope)
		i.hoist(n.body, inner)
		return i.execList(n.body, inner)

	case ifStmt:
		cond, err := i.eval(n.cond, scope)
		if err != nil {
			return nil, ctrlNone, err
		}
		branch := n.then
		if !truthy(cond) {
			branch = n.els
		}
		inner := newScope(scope)
		i.hoist(branch, inner)
		return i.execList(branch, inner)

	case whileStmt:
		for {
			cond, err := i.eval(n.cond, scope)
			if err != nil {
				return nil, ctrlNone, err
			}
			if !truthy(cond) {
				break
			}
			inner := newScope(scope)
			v, ctrl, err := i.execList(n.body, inner)
			if err != nil {
				return nil, ctrlNone, err
			}
			if ctrl == ctrlReturn {
				return v, ctrl, nil
			}
			if ctrl == ctrlBreak {
				break
			}
		}
		return undefined, ctrlNone, nil

	case forStmt:
		loopScope := newScope(scope)
		if n.init != nil {
			if _, _, err := i.exec(n.init, loopScope); err != nil {
				return nil, ctrlNone, err
			}
		}
		for {
			if n.cond != nil {
				cond, err := i.eval(n.cond, loopScope)
				if err != nil {
					return nil, ctrlNone, err
				}
				if !truthy(cond) {
					break
				}
			}
			inner := newScope(loopScope)
			v, ctrl, err := i.execList(n.body, inner)
			if err != nil {
				return nil, ctrlNone, err
			}
			if ctrl == ctrlReturn {
				return v, ctrl, nil
			}
			if ctrl == ctrlBreak {
				break
			}
			if n.post != nil {
				if _, _, err := i.exec(n.post, loopScope); err != nil {
					return nil, ctrlNone, err
				}
			}
		}
		return undefined, ctrlNone, nil

	case forInStmt:
		obj, err := i.eval(n.object, scope)
		if err != nil {
			return nil, ctrlNone, err
		}
		o, ok := obj.(*jsObject)
		if !ok {
			return undefined, ctrlNone, nil
		}
		var items []any
		if n.ofLoop {
			if o.isArray {
				items = o.arrayItems()
			}
		} else {
			for _, k := range sortedKeys(o) {
				items = append(items, k)
			}
		}
		for _, item := range items {
			inner := newScope(scope)
			inner.define(n.name, item)
			v, ctrl, err := i.execList(n.body, inner)
			if err != nil {
				return nil, ctrlNone, err
			}
			if ctrl == ctrlReturn {
				return v, ctrl, nil
			}
			if ctrl == ctrlBreak {
				break
			}
		}
		return undefined, ctrlNone, nil

	case breakStmt:
		return undefined, ctrlBreak, nil

	case continueStmt:
		return undefined, ctrlContinue, nil

	case throwStmt:
		v, err := i.eval(n.value, scope)
		if err != nil {
			return nil, ctrlNone, err
		}
		return nil, ctrlNone, &jsThrowError{value: v}

	case tryStmt:
		inner := newScope(scope)
		i.hoist(n.block, inner)
		v, ctrl, err := i.execList(n.block, inner)
		if err != nil {
			if thrown, ok := err.(*jsThrowError); ok && n.catch != nil {
				catchScope := newScope(scope)
				if n.catchParam != "" {
					catchScope.define(n.catchParam, thrown.value)
				}
				v, ctrl, err = i.execList(n.catch, catchScope)
			}
		}
		if n.finally != nil {
			finScope := newScope(scope)
			_, finCtrl, finErr := i.execList(n.finally, finScope)
			if finErr != nil {
				return nil, ctrlNone, finErr
			}
			if finCtrl != ctrlNone {
				return undefined, finCtrl, nil
			}
		}
		return v, ctrl, err

	default:
		return undefined, ctrlNone, fmt.Errorf("unsupported statement type %T", s)
	}
}

func (i *interp) eval(e expr, scope *jsScope) (any, error) {
	switch n := e.(type) {
	case numberLit:
		return n.value, nil
	case stringLit:
		return n.value, nil
	case boolLit:
		return n.value, nil
	case nullLit:
		return nil, nil
	case undefLit:
		return undefined, nil
	case thisExpr:
		if v, ok := scope.lookup("this"); ok {
			return v, nil
		}
		return undefined, nil
	case identExpr:
		if v, ok := scope.lookup(n.name); ok {
			return v, nil
		}
		return nil, NewExecutionError(n.name, fmt.Errorf("%s is not defined", n.name))
	case arrayLit:
		items := make([]any, len(n.elements))
		for idx, el := range n.elements {
			v, err := i.eval(el, scope)
			if err != nil {
				return nil, err
			}
			items[idx] = v
		}
		return newArray(items), nil
	case objectLit:
		o := newObject()
		for idx, key := range n.keys {
			v, err := i.eval(n.values[idx], scope)
			if err != nil {
				return nil, err
			}
			if fn, ok := v.(*jsFunction); ok && fn.closure == nil {
				fn.closure = scope
			}
			o.set(key, v)
		}
		return o, nil
	case funcExpr:
		fn := &jsFunction{name: n.name, params: n.params, body: n.body, closure: scope}
		return fn, nil
	case unaryExpr:
		return i.evalUnary(n, scope)
	case binaryExpr:
		return i.evalBinary(n, scope)
	case logicalExpr:
		return i.evalLogical(n, scope)
	case conditionalExpr:
		cond, err := i.eval(n.cond, scope)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return i.eval(n.then, scope)
		}
		return i.eval(n.els, scope)
	case assignExpr:
		return i.evalAssign(n, scope)
	case memberExpr:
		_, v, err := i.evalMember(n, scope)
		return v, err
	case callExpr:
		return i.evalCall(n, scope)
	case newExpr:
		return i.evalNew(n, scope)
	case typeofExpr:
		v, err := i.evalMaybeUndefinedIdent(n.x, scope)
		if err != nil {
			return nil, err
		}
		return typeofValue(v), nil
	case deleteExpr:
		if m, ok := n.x.(memberExpr); ok {
			obj, err := i.eval(m.object, scope)
			if err != nil {
				return nil, err
			}
			if o, ok := obj.(*jsObject); ok {
				o.delete(i.propertyKey(m, scope))
			}
		}
		return true, nil
	case sequenceExpr:
		var v any = undefined
		for _, x := range n.exprs {
			val, err := i.eval(x, scope)
			if err != nil {
				return nil, err
			}
			v = val
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported expression type %T", e)
	}
}

// evalMaybeUndefinedIdent evaluates x, treating a reference error on a
// bare identifier as "undefined" the way typeof uniquely does in JS.
func (i *interp) evalMaybeUndefinedIdent(x expr, scope *jsScope) (any, error) {
	if id, ok := x.(identExpr); ok {
		if v, ok := scope.lookup(id.name); ok {
			return v, nil
		}
		return undefined, nil
	}
	return i.eval(x, scope)
}

func (i *interp) propertyKey(m memberExpr, scope *jsScope) string {
	if m.computed != nil {
		v, err := i.eval(m.computed, scope)
		if err != nil {
			return ""
		}
		return toStringValue(v)
	}
	return m.property
}

func (i *interp) evalMember(m memberExpr, scope *jsScope) (any, any, error) {
	obj, err := i.eval(m.object, scope)
	if err != nil {
		return nil, nil, err
	}
	key := i.propertyKey(m, scope)

	switch o := obj.(type) {
	case *jsObject:
		if o.isArray && key == "length" {
			v, _ := o.props["length"]
			return obj, v, nil
		}
		if v, ok := o.get(key); ok {
			return obj, v, nil
		}
		if fn := arrayBuiltin(key); o.isArray && fn != nil {
			return obj, fn, nil
		}
		return obj, undefined, nil
	case string:
		if key == "length" {
			return obj, float64(len([]rune(o))), nil
		}
		if fn := stringBuiltin(key); fn != nil {
			return obj, fn, nil
		}
		return obj, undefined, nil
	case nil, jsUndefined:
		return nil, nil, NewExecutionError(key, fmt.Errorf("cannot read property %q of %s", key, toStringValue(obj)))
	default:
		return obj, undefined, nil
	}
}

func (i *interp) evalUnary(n unaryExpr, scope *jsScope) (any, error) {
	if n.op == "++" || n.op == "--" {
		old, err := i.eval(n.x, scope)
		if err != nil {
			return nil, err
		}
		delta := 1.0
		if n.op == "--" {
			delta = -1
		}
		updated := toNumber(old) + delta
		if err := i.assignTo(n.x, updated, scope); err != nil {
			return nil, err
		}
		if n.prefix {
			return updated, nil
		}
		return toNumber(old), nil
	}

	v, err := i.eval(n.x, scope)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		return !truthy(v), nil
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %q", n.op)
	}
}

func (i *interp) evalBinary(n binaryExpr, scope *jsScope) (any, error) {
	x, err := i.eval(n.x, scope)
	if err != nil {
		return nil, err
	}
	y, err := i.eval(n.y, scope)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "+":
		if xs, ok := x.(string); ok {
			return xs + toStringValue(y), nil
		}
		if ys, ok := y.(string); ok {
			return toStringValue(x) + ys, nil
		}
		return toNumber(x) + toNumber(y), nil
	case "-":
		return toNumber(x) - toNumber(y), nil
	case "*":
		return toNumber(x) * toNumber(y), nil
	case "/":
		return toNumber(x) / toNumber(y), nil
	case "%":
		return math.Mod(toNumber(x), toNumber(y)), nil
	case "==":
		return looseEquals(x, y), nil
	case "!=":
		return !looseEquals(x, y), nil
	case "===":
		return strictEquals(x, y), nil
	case "!==":
		return !strictEquals(x, y), nil
	case "<":
		return compareValues(x, y) < 0, nil
	case ">":
		return compareValues(x, y) > 0, nil
	case "<=":
		return compareValues(x, y) <= 0, nil
	case ">=":
		return compareValues(x, y) >= 0, nil
	case "in":
		key := toStringValue(x)
		if o, ok := y.(*jsObject); ok {
			_, found := o.get(key)
			return found, nil
		}
		return false, nil
	case "instanceof":
		return false, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %q", n.op)
	}
}

func compareValues(x, y any) int {
	xs, xIsStr := x.(string)
	ys, yIsStr := y.(string)
	if xIsStr && yIsStr {
		switch {
		case xs < ys:
			return -1
		case xs > ys:
			return 1
		default:
			return 0
		}
	}
	xn, yn := toNumber(x), toNumber(y)
	switch {
	case xn < yn:
		return -1
	case xn > yn:
		return 1
	default:
		return 0
	}
}

func (i *interp) evalLogical(n logicalExpr, scope *jsScope) (any, error) {
	x, err := i.eval(n.x, scope)
	if err != nil {
		return nil, err
	}
	if n.op == "&&" {
		if !truthy(x) {
			return x, nil
		}
		return i.eval(n.y, scope)
	}
	if truthy(x) {
		return x, nil
	}
	return i.eval(n.y, scope)
}

func (i *interp) evalAssign(n assignExpr, scope *jsScope) (any, error) {
	value, err := i.eval(n.value, scope)
	if err != nil {
		return nil, err
	}
	if n.op != "=" {
		current, err := i.eval(n.target, scope)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "+=":
			if cs, ok := current.(string); ok {
				value = cs + toStringValue(value)
			} else {
				value = toNumber(current) + toNumber(value)
			}
		case "-=":
			value = toNumber(current) - toNumber(value)
		case "*=":
			value = toNumber(current) * toNumber(value)
		case "/=":
			value = toNumber(current) / toNumber(value)
		}
	}
	if err := i.assignTo(n.target, value, scope); err != nil {
		return nil, err
	}
	return value, nil
}

func (i *interp) assignTo(target expr, value any, scope *jsScope) error {
	switch t := target.(type) {
	case identExpr:
		scope.assign(t.name, value)
		return nil
	case memberExpr:
		obj, err := i.eval(t.object, scope)
		if err != nil {
			return err
		}
		o, ok := obj.(*jsObject)
		if !ok {
			return NewExecutionError(t.property, fmt.Errorf("cannot set property on non-object"))
		}
		o.set(i.propertyKey(t, scope), value)
		return nil
	default:
		return fmt.Errorf("invalid assignment target %T", target)
	}
}

func (i *interp) evalCall(n callExpr, scope *jsScope) (any, error) {
	var this any = undefined
	var fnVal any
	var err error

	if m, ok := n.callee.(memberExpr); ok {
		this, fnVal, err = i.evalMember(m, scope)
		if err != nil {
			return nil, err
		}
	} else {
		fnVal, err = i.eval(n.callee, scope)
		if err != nil {
			return nil, err
		}
	}

	fn, ok := fnVal.(*jsFunction)
	if !ok {
		return nil, NewExecutionError("call", fmt.Errorf("%s is not a function", callTargetName(n.callee)))
	}

	args := make([]any, len(n.args))
	for idx, a := range n.args {
		v, err := i.eval(a, scope)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	return i.callFunction(fn, this, args)
}

func callTargetName(e expr) string {
	switch t := e.(type) {
	case identExpr:
		return t.name
	case memberExpr:
		return t.property
	default:
		return "expression"
	}
}

func (i *interp) callFunction(fn *jsFunction, this any, args []any) (any, error) {
	if fn.native != nil {
		return fn.native(i, this, args)
	}

	callScope := newScope(fn.closure)
	callScope.define("this", this)
	for idx, param := range fn.params {
		if idx < len(args) {
			callScope.define(param, args[idx])
		} else {
			callScope.define(param, undefined)
		}
	}
	argsArr := newArray(args)
	callScope.define("arguments", argsArr)

	i.hoist(fn.body, callScope)
	v, ctrl, err := i.execList(fn.body, callScope)
	if err != nil {
		return nil, err
	}
	if ctrl == ctrlReturn {
		return v, nil
	}
	return undefined, nil
}

func (i *interp) evalNew(n newExpr, scope *jsScope) (any, error) {
	fnVal, err := i.eval(n.callee, scope)
	if err != nil {
		return nil, err
	}
	fn, ok := fnVal.(*jsFunction)
	if !ok {
		return nil, NewExecutionError("new", fmt.Errorf("%s is not a constructor", callTargetName(n.callee)))
	}
	args := make([]any, len(n.args))
	for idx, a := range n.args {
		v, err := i.eval(a, scope)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	instance := newObject()
	result, err := i.callFunction(fn, instance, args)
	if err != nil {
		return nil, err
	}
	if o, ok := result.(*jsObject); ok {
		return o, nil
	}
	return instance, nil
}
