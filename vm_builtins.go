// vm_builtins.go: the small set of Array.prototype, String.prototype
// and JSON methods the interpreter recognizes natively; the JSON helpers
// here back the JSON global that sandbox.go installs in every sandbox
// regardless of its template (§4.E execution parameters).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"encoding/json"
	"strconv"
	"strings"
)

func nativeFn(name string, fn func(i *interp, this any, args []any) (any, error)) *jsFunction {
	return &jsFunction{name: name, native: fn}
}

func arg(args []any, idx int) any {
	if idx < len(args) {
		return args[idx]
	}
	return undefined
}

// arrayBuiltin resolves an Array.prototype method by name, or nil if
// this interpreter doesn't implement it.
func arrayBuiltin(name string) *jsFunction {
	switch name {
	case "push":
		return nativeFn("push", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			n := int(toNumber(o.props["length"]))
			for _, a := range args {
				o.set(strconv.Itoa(n), a)
				n++
			}
			return float64(n), nil
		})
	case "pop":
		return nativeFn("pop", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			items := o.arrayItems()
			if len(items) == 0 {
				return undefined, nil
			}
			last := items[len(items)-1]
			o.delete(strconv.Itoa(len(items) - 1))
			o.props["length"] = float64(len(items) - 1)
			return last, nil
		})
	case "join":
		return nativeFn("join", func(i *interp, this any, args []any) (any, error) {
			sep := ","
			if s, ok := arg(args, 0).(string); ok {
				sep = s
			}
			o := this.(*jsObject)
			parts := make([]string, 0)
			for _, v := range o.arrayItems() {
				parts = append(parts, toStringValue(v))
			}
			return strings.Join(parts, sep), nil
		})
	case "indexOf":
		return nativeFn("indexOf", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			target := arg(args, 0)
			for idx, v := range o.arrayItems() {
				if strictEquals(v, target) {
					return float64(idx), nil
				}
			}
			return float64(-1), nil
		})
	case "includes":
		return nativeFn("includes", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			target := arg(args, 0)
			for _, v := range o.arrayItems() {
				if strictEquals(v, target) {
					return true, nil
				}
			}
			return false, nil
		})
	case "slice":
		return nativeFn("slice", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			items := o.arrayItems()
			start, end := sliceBounds(len(items), args)
			if start >= end {
				return newArray(nil), nil
			}
			return newArray(items[start:end]), nil
		})
	case "concat":
		return nativeFn("concat", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			items := append([]any{}, o.arrayItems()...)
			for _, a := range args {
				if other, ok := a.(*jsObject); ok && other.isArray {
					items = append(items, other.arrayItems()...)
				} else {
					items = append(items, a)
				}
			}
			return newArray(items), nil
		})
	case "forEach":
		return nativeFn("forEach", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			fn, ok := arg(args, 0).(*jsFunction)
			if !ok {
				return undefined, nil
			}
			for idx, v := range o.arrayItems() {
				if _, err := i.callFunction(fn, undefined, []any{v, float64(idx), o}); err != nil {
					return nil, err
				}
			}
			return undefined, nil
		})
	case "map":
		return nativeFn("map", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			fn, ok := arg(args, 0).(*jsFunction)
			if !ok {
				return newArray(nil), nil
			}
			out := make([]any, 0, len(o.arrayItems()))
			for idx, v := range o.arrayItems() {
				r, err := i.callFunction(fn, undefined, []any{v, float64(idx), o})
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return newArray(out), nil
		})
	case "filter":
		return nativeFn("filter", func(i *interp, this any, args []any) (any, error) {
			o := this.(*jsObject)
			fn, ok := arg(args, 0).(*jsFunction)
			if !ok {
				return newArray(nil), nil
			}
			var out []any
			for idx, v := range o.arrayItems() {
				r, err := i.callFunction(fn, undefined, []any{v, float64(idx), o})
				if err != nil {
					return nil, err
				}
				if truthy(r) {
					out = append(out, v)
				}
			}
			return newArray(out), nil
		})
	default:
		return nil
	}
}

// sliceBounds normalizes JS Array/String.slice's (start, end) argument
// pair, including negative offsets from the end.
func sliceBounds(length int, args []any) (int, int) {
	start, end := 0, length
	if len(args) > 0 {
		start = clampIndex(int(toNumber(args[0])), length)
	}
	if len(args) > 1 {
		end = clampIndex(int(toNumber(args[1])), length)
	}
	return start, end
}

func clampIndex(idx, length int) int {
	if idx < 0 {
		idx += length
	}
	if idx < 0 {
		return 0
	}
	if idx > length {
		return length
	}
	return idx
}

// stringBuiltin resolves a String.prototype method by name, or nil if
// this interpreter doesn't implement it.
func stringBuiltin(name string) *jsFunction {
	switch name {
	case "split":
		return nativeFn("split", func(i *interp, this any, args []any) (any, error) {
			s := this.(string)
			sep, ok := arg(args, 0).(string)
			if !ok {
				return newArray([]any{s}), nil
			}
			parts := strings.Split(s, sep)
			items := make([]any, len(parts))
			for idx, p := range parts {
				items[idx] = p
			}
			return newArray(items), nil
		})
	case "trim":
		return nativeFn("trim", func(i *interp, this any, args []any) (any, error) {
			return strings.TrimSpace(this.(string)), nil
		})
	case "toUpperCase":
		return nativeFn("toUpperCase", func(i *interp, this any, args []any) (any, error) {
			return strings.ToUpper(this.(string)), nil
		})
	case "toLowerCase":
		return nativeFn("toLowerCase", func(i *interp, this any, args []any) (any, error) {
			return strings.ToLower(this.(string)), nil
		})
	case "indexOf":
		return nativeFn("indexOf", func(i *interp, this any, args []any) (any, error) {
			s := this.(string)
			sub, _ := arg(args, 0).(string)
			return float64(strings.Index(s, sub)), nil
		})
	case "includes":
		return nativeFn("includes", func(i *interp, this any, args []any) (any, error) {
			s := this.(string)
			sub, _ := arg(args, 0).(string)
			return strings.Contains(s, sub), nil
		})
	case "slice", "substring":
		return nativeFn(name, func(i *interp, this any, args []any) (any, error) {
			s := []rune(this.(string))
			start, end := sliceBounds(len(s), args)
			if start >= end {
				return "", nil
			}
			return string(s[start:end]), nil
		})
	case "charAt":
		return nativeFn("charAt", func(i *interp, this any, args []any) (any, error) {
			s := []rune(this.(string))
			idx := int(toNumber(arg(args, 0)))
			if idx < 0 || idx >= len(s) {
				return "", nil
			}
			return string(s[idx]), nil
		})
	case "replace":
		return nativeFn("replace", func(i *interp, this any, args []any) (any, error) {
			s := this.(string)
			old, _ := arg(args, 0).(string)
			newVal, _ := arg(args, 1).(string)
			return strings.Replace(s, old, newVal, 1), nil
		})
	default:
		return nil
	}
}

// jsonStringify and jsonParse back the JSON global every sandbox
// receives, using encoding/json against a value converted to/from this
// interpreter's plain-Go representation.
func jsonStringify(v any) (string, error) {
	data, err := json.Marshal(toPlainGo(v))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func jsonParse(s string) (any, error) {
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	return fromPlainGo(raw), nil
}

// toPlainGo converts an interpreter value into plain Go maps/slices
// that encoding/json can marshal.
func toPlainGo(v any) any {
	switch x := v.(type) {
	case *jsObject:
		if x.isArray {
			items := x.arrayItems()
			out := make([]any, len(items))
			for i, it := range items {
				out[i] = toPlainGo(it)
			}
			return out
		}
		out := make(map[string]any, len(x.order))
		for _, k := range sortedKeys(x) {
			val, _ := x.get(k)
			out[k] = toPlainGo(val)
		}
		return out
	case jsUndefined:
		return nil
	default:
		return x
	}
}

// fromPlainGo converts a value decoded by encoding/json back into this
// interpreter's value representation.
func fromPlainGo(v any) any {
	switch x := v.(type) {
	case map[string]any:
		o := newObject()
		for k, val := range x {
			o.set(k, fromPlainGo(val))
		}
		return o
	case []any:
		items := make([]any, len(x))
		for i, it := range x {
			items[i] = fromPlainGo(it)
		}
		return newArray(items)
	case nil:
		return nil
	default:
		return x
	}
}
