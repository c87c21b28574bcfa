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
	"sync"
	"time"
)

// Debounce coalesces rapid calls to a wrapped function: f only runs delay
// after the last call, and if calls keep arriving faster than delay, it is
// forced to run once maxDelay has elapsed since its last run. A browser
// widget would schedule this with setTimeout/performance.now; server-side
// Go has no DOM to run against, so this wraps time.AfterFunc/time.Now
// instead.
type Debounce struct {
	Delay    time.Duration
	MaxDelay time.Duration // 0 means "no forced run"
}

// Wrap returns a debounced version of f. The wrapper is safe for
// concurrent use.
func (d Debounce) Wrap(f func(arg any)) func(arg any) {
	var mu sync.Mutex
	var timer *time.Timer
	var pending any
	var lastRun time.Time

	run := func() {
		mu.Lock()
		arg := pending
		timer = nil
		lastRun = time.Now()
		mu.Unlock()
		f(arg)
	}

	return func(arg any) {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if d.MaxDelay > 0 && timer != nil && now.Sub(lastRun)-d.Delay > d.MaxDelay {
			// Already overdue and a run is scheduled: let it fire with
			// the latest argument instead of pushing it out further.
			pending = arg
			return
		}
		if timer != nil {
			timer.Stop()
		}
		pending = arg
		timer = time.AfterFunc(d.Delay, run)
	}
}

// WrapFixed is the single-duration shortcut where MaxDelay equals Delay.
func WrapFixed(delay time.Duration, f func(arg any)) func(arg any) {
	return Debounce{Delay: delay, MaxDelay: delay}.Wrap(f)
}
