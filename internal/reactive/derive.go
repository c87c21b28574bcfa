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

import "github.com/sirupsen/logrus"

// Derive creates a bidirectional derived signal: changes to the main signal
// push through `to` into the derived signal, and changes to the derived
// signal push back through `from` (when it returns a non-nil new value)
// into the main signal. The two signals cross-subscribe; each
// cross-subscription's Consumer is torn down by the *other* signal's
// Close, so dropping either side cuts both directions.
func (s *Signal[T]) Derive(name string, to func(T) any, from func(T, any) (any, bool)) *Signal[any] {
	log.WithFields(logrus.Fields{"signal": s.name, "derived": name}).Debug("deriving signal")
	derived := NewSignal[any](name, to(s.GetValueUntracked()), nil)

	// Derived updates main.
	derivedToMain := derived.producer.Register(name+"->main", ZeroDepth, func(Version) {
		newMain, ok := from(s.GetValueUntracked(), derived.GetValueUntracked())
		if !ok {
			return
		}
		s.Force(newMain.(T))
	})
	s.OnDrop(func() { derivedToMain.Close() })

	// Main updates derived.
	mainToDerived := s.producer.Register(s.name+"->"+name, ZeroDepth, func(Version) {
		derived.Set(to(s.GetValueUntracked()))
	})
	derived.OnDrop(func() { mainToDerived.Close() })

	return derived
}

// View is a one-way Derive: the derived signal tracks `to(main)` but never
// pushes a value back into main.
func (s *Signal[T]) View(name string, to func(T) any) *Signal[any] {
	return s.Derive(name, to, func(T, any) (any, bool) { return nil, false })
}
