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

import "sync/atomic"

// Cancellable wraps callbacks in a generation counter: every call captured
// before the most recent Cancel becomes a no-op. Useful for invalidating
// in-flight reactive closures tied to a template that was just replaced.
type Cancellable struct {
	generation atomic.Uint64
}

// Cancel bumps the generation, invalidating every capture taken so far.
func (c *Cancellable) Cancel() {
	c.generation.Add(1)
}

// Capture returns a function that runs f only if Cancel has not been
// called since Capture was invoked; otherwise it returns the zero value
// and ok=false.
func Capture[I, O any](c *Cancellable, f func(I) O) func(I) (O, bool) {
	generation := c.generation.Load()
	return func(i I) (O, bool) {
		if c.generation.Load() != generation {
			var zero O
			return zero, false
		}
		return f(i), true
	}
}
