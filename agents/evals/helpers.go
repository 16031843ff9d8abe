/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/agents/result"
)

// NoError fails traces whose call returned an error.
func NoError[T any]() ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		if trace.Error != nil {
			o.Fail(fmt.Sprintf("call error: got = %v, wanted = nil", trace.Error))
		}
	}
}

// RequiredFields fails traces whose result object lacks any of the named
// fields. Presence is judged on the payload the service returned, so a
// field holding a zero value is present and an empty payload is missing
// every field.
func RequiredFields[T any](names ...string) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		obj, ok := resultObject(o, trace)
		if !ok {
			return
		}
		var missing []string
		for _, name := range names {
			if _, ok := obj[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			o.Fail(fmt.Sprintf("missing required fields: %v", missing))
		}
	}
}

// FieldCheck runs check on one field of the result. The value is as
// decoded by encoding/json: strings, float64, bool, []any or
// map[string]any. A missing field fails without calling check.
func FieldCheck[T any](field string, check func(v any) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		obj, ok := resultObject(o, trace)
		if !ok {
			return
		}
		v, ok := obj[field]
		if !ok {
			o.Fail(fmt.Sprintf("field %s: got = missing, wanted = present", field))
			return
		}
		if err := check(v); err != nil {
			o.Fail(fmt.Sprintf("field %s: %v", field, err))
		}
	}
}

// Contains checks that a string field contains want, ignoring case.
func Contains[T any](field, want string) ObservableTraceCallback[T] {
	return FieldCheck[T](field, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("got = %T, wanted = string", v)
		}
		if !strings.Contains(strings.ToLower(s), strings.ToLower(want)) {
			return fmt.Errorf("got = %q, wanted = contains %q", s, want)
		}
		return nil
	})
}

// EqualFold checks that a string field equals want, ignoring case.
func EqualFold[T any](field, want string) ObservableTraceCallback[T] {
	return FieldCheck[T](field, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("got = %T, wanted = string", v)
		}
		if !strings.EqualFold(s, want) {
			return fmt.Errorf("got = %q, wanted = %q", s, want)
		}
		return nil
	})
}

// InRange checks that a numeric field lies in [lo, hi].
func InRange[T any](field string, lo, hi float64) ObservableTraceCallback[T] {
	return FieldCheck[T](field, func(v any) error {
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("got = %T, wanted = number", v)
		}
		if n < lo || n > hi {
			return fmt.Errorf("got = %v, wanted = %v..%v", n, lo, hi)
		}
		return nil
	})
}

// All runs every check against the same observer, stopping at the first
// one that fails.
func All[T any](checks ...ObservableTraceCallback[T]) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		fo := &failWatch{Observer: o}
		for _, check := range checks {
			check(fo, trace)
			if fo.failed {
				return
			}
		}
	}
}

type failWatch struct {
	Observer
	failed bool
}

func (f *failWatch) Fail(msg string) {
	f.failed = true
	f.Observer.Fail(msg)
}

// ResultValidator runs validator on the result. Nil pointer results fail
// without calling it.
func ResultValidator[T any](validator func(result T) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		v := reflect.ValueOf(trace.Result)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			o.Fail("result is nil")
			return
		}
		if err := validator(trace.Result); err != nil {
			o.Fail(err.Error())
		}
	}
}

// BuildCallbacks injects each evaluation with the child of observer named
// after it.
func BuildCallbacks[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) []agenttrace.TraceCallback[T] {
	callbacks := make([]agenttrace.TraceCallback[T], 0, len(evalMap))
	for name, eval := range evalMap {
		callbacks = append(callbacks, Inject(observer.Child(name), eval))
	}
	return callbacks
}

// BuildTracer is BuildCallbacks wrapped in agenttrace.ByCode.
func BuildTracer[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) agenttrace.Tracer[T] {
	return agenttrace.ByCode(BuildCallbacks(observer, evalMap)...)
}

// resultObject decodes the trace result as a JSON object. The payload
// the service returned is used when the trace carries one, so fields the
// service left out stay missing; otherwise the result is encoded. A null
// payload decodes to an empty object. Errored traces and non-object
// results fail the evaluation.
func resultObject[T any](o Observer, trace *agenttrace.Trace[T]) (map[string]any, bool) {
	if trace.Error != nil {
		o.Fail(fmt.Sprintf("call error: %v", trace.Error))
		return nil, false
	}
	b := []byte(trace.Raw)
	if len(b) == 0 {
		var err error
		if b, err = json.Marshal(trace.Result); err != nil {
			o.Fail(fmt.Sprintf("encode result: %v", err))
			return nil, false
		}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		o.Fail(fmt.Sprintf("decode result: %v", err))
		return nil, false
	}
	switch v := v.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return v, true
	case string:
		// Structured output delivered as JSON text.
		var obj map[string]any
		if err := json.Unmarshal([]byte(result.ExtractJSON(v)), &obj); err == nil && obj != nil {
			return obj, true
		}
	}
	o.Fail(fmt.Sprintf("result is not an object: %s", b))
	return nil, false
}
