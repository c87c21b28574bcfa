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

// Package domtree defines the minimal live-DOM surface the UI runtime's
// element/attribute/children diff operates against, plus an in-memory
// implementation used by tests and by any non-browser renderer. The
// in-memory implementation is the only one in this module; the diff
// engine in internal/ui depends on these interfaces alone, never on
// syscall/js directly.
package domtree
