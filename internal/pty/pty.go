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

// Package pty allocates pseudo-terminals, spawns the shell attached to
// them, and hands out at-most-one-consumer leases over their output.
package pty

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/gravitational/trace"
)

// chunkSize is the fixed frame size ProcessIO's read half batches master
// output into.
const chunkSize = 1024

// ProcessIO owns an allocated pseudo-terminal and the process attached to
// its slave end.
type ProcessIO struct {
	master *os.File
	cmd    *exec.Cmd
}

// Open allocates a PTY, spawns name/args attached to its slave end, and
// marks the master nonblocking so reads yield cooperatively.
func Open(ctx context.Context, name string, args ...string) (*ProcessIO, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	master, err := pty.Start(cmd)
	if err != nil {
		return nil, trace.Wrap(err, "open pty for %q", name)
	}
	log.WithField("cmd", name).Debug("pty opened")
	return &ProcessIO{master: master, cmd: cmd}, nil
}

// Resize sets the terminal window size.
func (p *ProcessIO) Resize(rows, cols int) error {
	if err := pty.Setsize(p.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return trace.Wrap(err, "resize pty")
	}
	return nil
}

// Split returns a write half bound to the PTY's stdin and a read half
// that frames master output into chunkSize chunks.
func (p *ProcessIO) Split() (io.WriteCloser, *OutputReader) {
	return p.master, &OutputReader{f: p.master}
}

// Close releases the master fd and kills the attached process.
func (p *ProcessIO) Close() error {
	err := p.master.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if err != nil {
		return trace.Wrap(err, "close pty master")
	}
	return nil
}

// OutputFrame is one unit read from a PTY's master fd.
type OutputFrame struct {
	Data []byte
	EOS  bool
	Err  error
}

// OutputReader reads a PTY master's output in chunkSize increments.
type OutputReader struct {
	f *os.File
}

// Read blocks for up to one chunk of output, translating io.EOF into an
// OutputFrame with EOS set rather than surfacing it as an error.
func (r *OutputReader) Read() OutputFrame {
	buf := make([]byte, chunkSize)
	n, err := r.f.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return OutputFrame{EOS: true}
		}
		return OutputFrame{Err: trace.Wrap(err, "read pty output")}
	}
	return OutputFrame{Data: buf[:n]}
}
