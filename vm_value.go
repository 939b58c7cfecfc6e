// vm_value.go: the runtime value representation for the interpreter —
// every JS value the evaluator produces or consumes is a plain `any`
// holding one of the types defined here, mirroring how a tree-walking
// interpreter for a dynamically typed language is usually built.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// jsUndefined is the sentinel value for JavaScript's `undefined`. Go's
// own nil stands in for JavaScript's `null`.
type jsUndefined struct{}

var undefined = jsUndefined{}

// jsObject is a plain JS object: an insertion-ordered string-keyed
// property bag. Arrays are jsObjects with isArray set; numeric indices
// are still stored as ordinary string keys ("0", "1", ...) alongside a
// tracked length, which keeps one representation for both.
type jsObject struct {
	props   map[string]any
	order   []string
	isArray bool
	proto   *jsObject
}

func newObject() *jsObject {
	return &jsObject{props: make(map[string]any)}
}

func newArray(items []any) *jsObject {
	o := &jsObject{props: make(map[string]any), isArray: true}
	for i, v := range items {
		o.set(strconv.Itoa(i), v)
	}
	o.props["length"] = float64(len(items))
	return o
}

func (o *jsObject) get(key string) (any, bool) {
	if v, ok := o.props[key]; ok {
		return v, true
	}
	if o.proto != nil {
		return o.proto.get(key)
	}
	return nil, false
}

func (o *jsObject) set(key string, value any) {
	if _, exists := o.props[key]; !exists {
		o.order = append(o.order, key)
	}
	o.props[key] = value
	if o.isArray {
		if idx, err := strconv.Atoi(key); err == nil {
			if cur, _ := o.props["length"].(float64); float64(idx+1) > cur {
				o.props["length"] = float64(idx + 1)
			}
		}
	}
}

func (o *jsObject) delete(key string) {
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// arrayItems returns an array object's elements in index order.
func (o *jsObject) arrayItems() []any {
	length := 0
	if n, ok := o.props["length"].(float64); ok {
		length = int(n)
	}
	items := make([]any, length)
	for i := range items {
		v, _ := o.props[strconv.Itoa(i)]
		if v == nil {
			v = undefined
		}
		items[i] = v
	}
	return items
}

// jsFunction is either a user-defined closure (body + captured scope)
// or a native Go-backed builtin (console.log, Buffer.from, ...).
type jsFunction struct {
	name    string
	params  []string
	body    []stmt
	closure *jsScope
	native  func(i *interp, this any, args []any) (any, error)
}

// jsScope is a single lexical scope frame in a chain rooted at the
// sandbox's global scope.
type jsScope struct {
	vars   map[string]any
	parent *jsScope
}

func newScope(parent *jsScope) *jsScope {
	return &jsScope{vars: make(map[string]any), parent: parent}
}

func (s *jsScope) define(name string, value any) {
	s.vars[name] = value
}

func (s *jsScope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// assign walks the scope chain looking for an existing binding of
// name; if none exists (sloppy-mode implicit global), it defines one
// at the root scope.
func (s *jsScope) assign(name string, value any) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = value
			return
		}
		if cur.parent == nil {
			cur.vars[name] = value
			return
		}
	}
}

// truthy implements JavaScript's loose boolean coercion for the subset
// of values this interpreter produces.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil, jsUndefined:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// toNumber implements JavaScript's ToNumber for this interpreter's
// value set.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case jsUndefined:
		return math.NaN()
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		if x == "" {
			return 0
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// toStringValue implements JavaScript's ToString for this
// interpreter's value set, matching Node's default console/string
// coercion closely enough for plugin code to observe familiar output.
func toStringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case jsUndefined:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *jsObject:
		if x.isArray {
			parts := make([]string, 0, len(x.arrayItems()))
			for _, item := range x.arrayItems() {
				parts = append(parts, toStringValue(item))
			}
			return strings.Join(parts, ",")
		}
		return "[object Object]"
	case *jsFunction:
		return fmt.Sprintf("function %s() { [native code] }", x.name)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// looseEquals implements JavaScript's "==" for the value kinds this
// interpreter supports: same-type comparisons behave like "===",
// cross-type comparisons coerce through numbers the way the spec's
// abstract equality algorithm does for primitives.
func looseEquals(a, b any) bool {
	if strictEquals(a, b) {
		return true
	}
	_, aUndef := a.(jsUndefined)
	_, bUndef := b.(jsUndefined)
	if (a == nil && bUndef) || (aUndef && b == nil) {
		return true
	}
	an, aIsNum := a.(float64)
	bn, bIsNum := b.(float64)
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	switch {
	case aIsNum && bIsStr:
		return an == toNumber(bs)
	case aIsStr && bIsNum:
		return toNumber(as) == bn
	}
	return false
}

func strictEquals(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case jsUndefined:
		_, ok := b.(jsUndefined)
		return ok
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	default:
		return a == b
	}
}

// typeofValue implements JavaScript's typeof operator for this
// interpreter's value set.
func typeofValue(v any) string {
	switch v.(type) {
	case nil:
		return "object"
	case jsUndefined:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *jsFunction:
		return "function"
	default:
		return "object"
	}
}

// sortedKeys returns o's enumerable keys in insertion order (numeric
// index order for arrays), skipping the synthetic "length" property on
// arrays.
func sortedKeys(o *jsObject) []string {
	keys := make([]string, 0, len(o.order))
	for _, k := range o.order {
		if o.isArray && k == "length" {
			continue
		}
		keys = append(keys, k)
	}
	if o.isArray {
		sort.Slice(keys, func(i, j int) bool {
			ni, ei := strconv.Atoi(keys[i])
			nj, ej := strconv.Atoi(keys[j])
			if ei == nil && ej == nil {
				return ni < nj
			}
			return keys[i] < keys[j]
		})
	}
	return keys
}
