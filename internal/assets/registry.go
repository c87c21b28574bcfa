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

// Package assets holds the process-wide name-to-bytes mapping the
// gateway serves static content out of. Bundling the assets themselves
// (HTML/JS/WASM build output) is outside this package's concern; it
// only models the registry and lookup.
package assets

import (
	"net/http"
	"sync"

	"github.com/gravitational/trace"
)

// Asset is one registered static resource.
type Asset struct {
	MIME  string
	Bytes []byte
}

// Registry is a process-wide, install-once mapping from asset name to
// its content. Re-registering a name already present is a programmer
// error, not a runtime condition the caller can recover from.
type Registry struct {
	mu     sync.RWMutex
	assets map[string]Asset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[string]Asset)}
}

// Install registers name once. Calling it twice for the same name
// panics: asset wiring happens exactly once at process start, and a
// duplicate indicates a bug in that wiring, not a condition a caller
// should handle.
func (r *Registry) Install(name, mime string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assets[name]; exists {
		panic("assets: duplicate install of " + name)
	}
	r.assets[name] = Asset{MIME: mime, Bytes: data}
	log.WithField("asset", name).Debug("asset installed")
}

// Lookup returns the asset registered under name.
func (r *Registry) Lookup(name string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[name]
	if !ok {
		return Asset{}, trace.NotFound("asset %q not found", name)
	}
	return a, nil
}

// ServeHTTP serves the asset named by r.URL.Path (with the leading
// slash trimmed), 404-ing misses the way the rest of the gateway's API
// reports NotFound.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Path
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	asset, err := r.Lookup(name)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", asset.MIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Bytes)
}
