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

// Package termapi implements the gateway's /api HTTP surface from
// spec.md §6: terminal listing and lifecycle, write/resize/title, and
// the long-poll pipe that fans out terminal output. Each terminal is
// backed by a Backend, local (a direct PTY) or remote (dialed through a
// tunnel's PtyService), with identical semantics either way.
package termapi
