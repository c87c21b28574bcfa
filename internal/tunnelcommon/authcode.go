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

package tunnelcommon

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// rotationPeriod is how often AuthCode promotes current to previous and
// mints a fresh current code.
const rotationPeriod = 60 * time.Second

// ErrInvalidAuthCode is returned when a presented auth code fails
// validation against the current rotation window.
var ErrInvalidAuthCode = errInvalidAuthCode{}

type errInvalidAuthCode struct{}

func (errInvalidAuthCode) Error() string { return "invalid auth code" }

// AuthCode is the ephemeral, rotating credential a client presents once
// to authorise certificate issuance. The first Current call generates
// the initial current/previous pair and starts the rotation loop.
type AuthCode struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	current  string
	previous string
	started  bool
	stop     chan struct{}
}

// NewAuthCode returns an AuthCode driven by clock, or a real clock if nil.
func NewAuthCode(clock clockwork.Clock) *AuthCode {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthCode{clock: clock}
}

// Current returns the active code, starting the rotation loop on first
// call.
func (a *AuthCode) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureStartedLocked()
	return a.current
}

// IsValid reports whether code matches the current or previous code;
// within one rotation window a code returned by Current always validates,
// and after two rotations it no longer does.
func (a *AuthCode) IsValid(code string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureStartedLocked()
	return code == a.current || code == a.previous
}

func (a *AuthCode) ensureStartedLocked() {
	if a.started {
		return
	}
	a.current = uuid.NewString()
	a.previous = uuid.NewString()
	a.started = true
	a.stop = make(chan struct{})
	go a.rotate(a.stop)
}

// Stop cancels the rotation loop.
func (a *AuthCode) Stop() {
	a.mu.Lock()
	stop := a.stop
	a.started = false
	a.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

func (a *AuthCode) rotate(stop chan struct{}) {
	ticker := a.clock.NewTicker(rotationPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			a.mu.Lock()
			a.previous = a.current
			a.current = uuid.NewString()
			a.mu.Unlock()
			log.Debug("auth code rotated")
		case <-stop:
			return
		}
	}
}
