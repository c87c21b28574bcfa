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
	"encoding/json"
	"io"
	"net/http"

	"github.com/gravitational/trace"
	"github.com/julienschmidt/httprouter"

	"github.com/terrazzo-project/terrazzo/internal/pipestream"
	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
)

// handlerFunc is this package's httprouter handler shape: it returns a
// JSON-able value or an error, leaving status code mapping and body
// writing to Server.wrap. Modeled on teleport's lib/auth/apiserver.go
// handler signature.
type handlerFunc func(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error)

// Server exposes the gateway's /api surface described by spec.md §6:
// terminal listing and lifecycle, plus the long-poll output pipe.
type Server struct {
	httprouter.Router
	registry *Registry
	picker   ChannelPicker
}

// NewServer wires registry's operations to the /api routes.
func NewServer(registry *Registry, picker ChannelPicker) *Server {
	s := &Server{registry: registry, picker: picker}
	s.Router = *httprouter.New()
	s.Router.UseRawPath = true

	s.POST("/list", s.wrap(s.list))
	s.POST("/new_id", s.wrap(s.newID))
	s.POST("/resize/:id", s.wrap(s.resize))
	s.POST("/set_title/:id", s.wrap(s.setTitle))
	s.POST("/write/:id", s.wrap(s.write))
	s.POST("/stream/register/:id", s.wrap(s.registerStream))
	s.POST("/stream/close/:id", s.wrap(s.closeStream))
	s.GET("/stream/pipe", s.pipe)
	s.POST("/stream/pipe/close", s.wrap(s.closePipe))

	return s
}

// wrap adapts handlerFunc to httprouter.Handle, JSON-encoding a
// successful result and mapping errors through tunnelcommon.WriteError.
func (s *Server) wrap(h handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		result, err := h(w, r, p)
		if err != nil {
			log.WithError(err).Warn("api request failed")
			tunnelcommon.WriteError(w, err)
			return
		}
		if result == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.WithError(err).Warn("encode response failed")
		}
	}
}

func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return trace.BadParameter("decode request body: %v", err)
	}
	return nil
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	return s.registry.List(), nil
}

func (s *Server) newID(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	return struct {
		ID pipestream.TerminalID `json:"id"`
	}{ID: s.registry.NewID()}, nil
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	var req ResizeRequestBody
	if err := readJSON(r, &req); err != nil {
		return nil, trace.Wrap(err)
	}
	id := pipestream.TerminalID(p.ByName("id"))
	return nil, trace.Wrap(s.registry.Resize(id, req.Rows, req.Cols))
}

func (s *Server) setTitle(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	var req SetTitleRequestBody
	if err := readJSON(r, &req); err != nil {
		return nil, trace.Wrap(err)
	}
	id := pipestream.TerminalID(p.ByName("id"))
	return nil, trace.Wrap(s.registry.SetTitle(id, req.Title))
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, trace.Wrap(err, "read write body")
	}
	id := pipestream.TerminalID(p.ByName("id"))
	return nil, trace.Wrap(s.registry.Write(id, data))
}

// registerStream implements "Opening and attaching": RegisterCreate
// spawns a fresh backend (local or remote, per req.Client) for id before
// registering it, RegisterReopen attaches to one that already exists.
func (s *Server) registerStream(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	var req RegisterTerminalRequest
	if err := readJSON(r, &req); err != nil {
		return nil, trace.Wrap(err)
	}
	id := pipestream.TerminalID(p.ByName("id"))
	ctx := r.Context()

	if req.Mode == RegisterCreate {
		backend, err := s.spawn(ctx, id, req)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		t := s.registry.Create(ctx, id, backend, req.Client)
		t.mu.Lock()
		t.rows, t.cols = req.Rows, req.Cols
		t.mu.Unlock()
	}

	return nil, trace.Wrap(s.registry.Register(ctx, id, req.Correlation))
}

func (s *Server) spawn(ctx context.Context, id pipestream.TerminalID, req RegisterTerminalRequest) (Backend, error) {
	if req.Client == "" {
		return NewLocalBackend(ctx, req.Shell)
	}
	return NewRemoteBackend(ctx, s.picker, req.Client, id, req.Shell)
}

func (s *Server) closeStream(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	id := pipestream.TerminalID(p.ByName("id"))
	return nil, trace.Wrap(s.registry.Close(id))
}

// pipe serves the long-poll body itself; it bypasses wrap because its
// response is a streamed newline-delimited JSON body, not a single
// JSON value.
func (s *Server) pipe(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	correlation := pipestream.CorrelationID(r.URL.Query().Get("correlation_id"))
	if correlation == "" {
		tunnelcommon.WriteError(w, trace.BadParameter("missing correlation_id"))
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}
	if err := s.registry.Pipes().WriteTo(r.Context(), correlation, w); err != nil {
		log.WithError(err).WithField("correlation", correlation).Warn("pipe closed")
	}
}

func (s *Server) closePipe(w http.ResponseWriter, r *http.Request, p httprouter.Params) (interface{}, error) {
	var req struct {
		Correlation pipestream.CorrelationID `json:"correlation_id"`
	}
	if err := readJSON(r, &req); err != nil {
		return nil, trace.Wrap(err)
	}
	s.registry.Pipes().Unregister(req.Correlation)
	return nil, nil
}
