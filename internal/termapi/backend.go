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
	"io"

	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/pty"
)

// Backend is the interface a terminal's process runs behind, whether it
// lives on the gateway host or on a remote agent: either way the
// terminal gets a write half and an at-most-one-consumer output entry
// with identical hand-off semantics.
type Backend interface {
	Write(p []byte) (int, error)
	Resize(rows, cols int) error
	Entry() *pty.ProcessIoEntry
	Close() error
}

// LocalBackend runs the terminal's process directly on the gateway
// host, via internal/pty.
type LocalBackend struct {
	proc  *pty.ProcessIO
	w     io.WriteCloser
	entry *pty.ProcessIoEntry
}

// DefaultShell is the command LocalBackend spawns absent an explicit
// override; it mirrors what an interactive login shell would be on a
// POSIX host.
const DefaultShell = "/bin/bash"

// NewLocalBackend opens a PTY running shell (or DefaultShell if empty).
func NewLocalBackend(ctx context.Context, shell string) (*LocalBackend, error) {
	if shell == "" {
		shell = DefaultShell
	}
	proc, err := pty.Open(ctx, shell)
	if err != nil {
		return nil, trace.Wrap(err, "open local terminal backend")
	}
	w, r := proc.Split()
	return &LocalBackend{
		proc:  proc,
		w:     w,
		entry: pty.NewProcessIoEntry(r),
	}, nil
}

func (b *LocalBackend) Write(p []byte) (int, error) { return b.w.Write(p) }
func (b *LocalBackend) Resize(rows, cols int) error { return b.proc.Resize(rows, cols) }
func (b *LocalBackend) Entry() *pty.ProcessIoEntry  { return b.entry }
func (b *LocalBackend) Close() error                { return b.proc.Close() }
