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

import "github.com/terrazzo-project/terrazzo/internal/pipestream"

// TerminalDef describes one live terminal, as returned by POST /list.
type TerminalDef struct {
	ID     pipestream.TerminalID `json:"id"`
	Title  string                `json:"title"`
	Client string                `json:"client,omitempty"`
	Rows   int                   `json:"rows"`
	Cols   int                   `json:"cols"`
}

// RegisterMode distinguishes a fresh terminal from a re-attach to one
// that already exists, per spec.md §4.3's "Opening and attaching".
type RegisterMode string

const (
	// RegisterCreate spawns a new backend process for the terminal.
	RegisterCreate RegisterMode = "create"
	// RegisterReopen re-attaches to an existing terminal's output
	// without replaying bytes produced while the pipe was detached.
	RegisterReopen RegisterMode = "reopen"
)

// RegisterTerminalRequest is the body of POST /stream/register/{id}.
type RegisterTerminalRequest struct {
	Mode        RegisterMode             `json:"mode"`
	Correlation pipestream.CorrelationID `json:"correlation_id"`
	Shell       string                   `json:"shell,omitempty"`
	Client      string                   `json:"client,omitempty"`
	Rows        int                      `json:"rows,omitempty"`
	Cols        int                      `json:"cols,omitempty"`
}

// ResizeRequestBody is the body of POST /resize/{id}.
type ResizeRequestBody struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SetTitleRequestBody is the body of POST /set_title/{id}.
type SetTitleRequestBody struct {
	Title string `json:"title"`
}
