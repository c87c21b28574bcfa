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

import "github.com/gravitational/trace"

// ErrNoChannels is returned by the connection pool when a client name
// has no pooled channels to pick from.
var ErrNoChannels = trace.ConnectionProblem(nil, "no pooled tunnel channels for client")

// ErrHealthCheckReplay is returned when a PingPong round-trips faster
// than the requested delay, which would mean the agent replied without
// actually waiting — a sign of a hostile or broken peer.
var ErrHealthCheckReplay = trace.ConnectionProblem(nil, "health check returned faster than its requested delay")

// ErrHealthCheckMismatch is returned when a PingPong reply echoes a
// connection id other than the one it was sent with.
var ErrHealthCheckMismatch = trace.ConnectionProblem(nil, "health check reply carried the wrong connection id")
