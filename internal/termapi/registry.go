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

package termapi

import (
	"context"
	"sync"

	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/pipestream"
)

// terminal is one registry entry: a running backend plus the bookkeeping
// needed to answer /list and to know which pipe, if any, is currently
// consuming its output.
type terminal struct {
	mu          sync.Mutex
	backend     Backend
	title       string
	client      string
	rows, cols  int
	correlation pipestream.CorrelationID
	registered  bool
}

// Registry is the gateway's terminal table: every live terminal, local
// or remote, keyed by id, plus the pipe registration multiplexing their
// output to browser clients.
type Registry struct {
	mu        sync.RWMutex
	terminals map[pipestream.TerminalID]*terminal
	pipes     *pipestream.Registration
}

// NewRegistry returns an empty terminal registry.
func NewRegistry() *Registry {
	return &Registry{
		terminals: make(map[pipestream.TerminalID]*terminal),
		pipes:     pipestream.NewRegistration(),
	}
}

// NewID allocates a fresh terminal id without creating a backend for
// it yet, answering POST /new_id.
func (r *Registry) NewID() pipestream.TerminalID {
	return pipestream.NewTerminalID()
}

// List returns every live terminal's definition, answering POST /list.
func (r *Registry) List() []TerminalDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]TerminalDef, 0, len(r.terminals))
	for id, t := range r.terminals {
		t.mu.Lock()
		defs = append(defs, TerminalDef{ID: id, Title: t.title, Client: t.client, Rows: t.rows, Cols: t.cols})
		t.mu.Unlock()
	}
	return defs
}

// Create adds an already-spawned backend to the table under id, used by
// the /stream/register handler in RegisterCreate mode.
func (r *Registry) Create(ctx context.Context, id pipestream.TerminalID, backend Backend, client string) *terminal {
	t := &terminal{backend: backend, client: client, title: string(id)}
	r.mu.Lock()
	r.terminals[id] = t
	r.mu.Unlock()
	log.WithField("terminal", id).Info("terminal created")
	return t
}

func (r *Registry) get(id pipestream.TerminalID) (*terminal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.terminals[id]
	if !ok {
		return nil, trace.NotFound("terminal %q not found", id)
	}
	return t, nil
}

// Resize applies rows/cols to id's backend.
func (r *Registry) Resize(id pipestream.TerminalID, rows, cols int) error {
	t, err := r.get(id)
	if err != nil {
		return trace.Wrap(err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows, t.cols = rows, cols
	return trace.Wrap(t.backend.Resize(rows, cols))
}

// SetTitle updates id's display title.
func (r *Registry) SetTitle(id pipestream.TerminalID, title string) error {
	t, err := r.get(id)
	if err != nil {
		return trace.Wrap(err)
	}
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
	return nil
}

// Write sends raw bytes to id's backend.
func (r *Registry) Write(id pipestream.TerminalID, data []byte) error {
	t, err := r.get(id)
	if err != nil {
		return trace.Wrap(err)
	}
	_, werr := t.backend.Write(data)
	return trace.Wrap(werr)
}

// Register attaches id's output to correlation's pipe, leasing a fresh
// output stream from its backend, per spec.md §4.3's "Opening and
// attaching".
func (r *Registry) Register(ctx context.Context, id pipestream.TerminalID, correlation pipestream.CorrelationID) error {
	t, err := r.get(id)
	if err != nil {
		return trace.Wrap(err)
	}
	lease, err := t.backend.Entry().LeaseOutput(ctx)
	if err != nil {
		return trace.Wrap(err, "lease output for %q", id)
	}
	if err := r.pipes.Register(correlation, id, lease); err != nil {
		return trace.Wrap(err)
	}
	t.mu.Lock()
	t.correlation = correlation
	t.registered = true
	t.mu.Unlock()
	return nil
}

// Close tears down id's backend, and — if this was the pipe's last
// registered terminal — unregisters the pipe entry too, per spec.md
// §4.3's "Close".
func (r *Registry) Close(id pipestream.TerminalID) error {
	t, err := r.get(id)
	if err != nil {
		return trace.Wrap(err)
	}

	r.mu.Lock()
	delete(r.terminals, id)
	r.mu.Unlock()

	t.mu.Lock()
	correlation, registered := t.correlation, t.registered
	t.mu.Unlock()
	if registered {
		r.pipes.Unregister(correlation)
	}

	log.WithField("terminal", id).Info("terminal closed")
	return trace.Wrap(t.backend.Close())
}

// Pipes exposes the pipe registration table the /stream/pipe handlers
// read from.
func (r *Registry) Pipes() *pipestream.Registration { return r.pipes }
