/*
Copyright 2024 Terrazzo Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reactive

import (
	"sync/atomic"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// TemplateHandle is the minimal surface ReactiveClosureBuilder.Register
// needs from a template: its debug id (used to name the consumers it
// creates) and its depth (the sort key consumers register at, so a
// template's own recomputation always precedes its descendants').
type TemplateHandle interface {
	DebugID() string
	Depth() Depth
}

// ReactiveClosureBuilder progressively binds signal arguments to a closure:
// a curried `() -> (T1 -> (T2 -> ... -> Output))` collapsed to a
// variadic-args equivalent since Go has no currying. Bind appends a reader
// for one more signal; Register seeds the closure once at the current
// versions and subscribes it to every bound signal's producer.
type ReactiveClosureBuilder struct {
	name      string
	producers []*Producer[Version]
	readers   []func() any
	fn        func(args []any) any
}

// NewReactiveClosureBuilder starts a builder around fn, which will
// eventually be called with one argument per Bind call, in bind order.
func NewReactiveClosureBuilder(name string, fn func(args []any) any) *ReactiveClosureBuilder {
	return &ReactiveClosureBuilder{name: name, fn: fn}
}

// Bind adds signal as the next positional argument to the builder's
// closure. Reads prefer the signal's immutable post-Close snapshot so a
// closure that outlives its bound signal (e.g. by Close racing with a
// pending fan-out) still observes a value instead of a zero one.
func Bind[T any](b *ReactiveClosureBuilder, signal *Signal[T]) *ReactiveClosureBuilder {
	reader := func() any {
		if v, ok := signal.ImmutableSnapshot(); ok {
			return v
		}
		return signal.GetValueUntracked()
	}
	return &ReactiveClosureBuilder{
		name:      b.name,
		producers: append(append([]*Producer[Version]{}, b.producers...), signal.producer),
		readers:   append(append([]func() any{}, b.readers...), reader),
		fn:        b.fn,
	}
}

// reactiveClosure is the fully-bound, Arc-equivalent closure: a last-seen
// version gate plus the call that reads every bound signal and invokes fn.
type reactiveClosure struct {
	name        string
	readers     []func() any
	fn          func(args []any) any
	lastVersion atomic.Uint64
}

func (r *reactiveClosure) call(version Version) {
	last := Version(r.lastVersion.Swap(uint64(version)))
	if last >= version {
		return
	}
	r.invoke()
}

// seed runs fn unconditionally, bypassing the version gate, to prime the
// template with an initial render before any subscription exists.
func (r *reactiveClosure) seed(version Version) {
	r.lastVersion.Store(uint64(version))
	r.invoke()
}

func (r *reactiveClosure) invoke() {
	args := make([]any, len(r.readers))
	for i, read := range r.readers {
		args[i] = read()
	}
	r.fn(args)
}

// Register performs an initial call seeding the template at the current
// versions, then registers the closure as a consumer on every bound
// signal's producer, at the template's depth. The returned consumers must
// be kept alive (and eventually Close'd) for as long as the subscription
// should last.
func (b *ReactiveClosureBuilder) Register(template TemplateHandle) ([]*Consumer[Version], error) {
	if template == nil {
		return nil, trace.BadParameter("reactive closure %q: template must not be nil", b.name)
	}

	closure := &reactiveClosure{name: b.name, readers: b.readers, fn: b.fn}
	closure.seed(CurrentVersion())

	consumers := make([]*Consumer[Version], 0, len(b.producers))
	name := template.DebugID()
	depth := template.Depth()
	for _, producer := range b.producers {
		consumers = append(consumers, producer.Register(name, depth, func(version Version) {
			closure.call(version)
		}))
	}
	log.WithFields(logrus.Fields{
		"closure": b.name,
		"template": name,
		"signals":  len(consumers),
	}).Debug("registered reactive closure")
	return consumers, nil
}
