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

// Package tunnelclient implements the agent side of the reverse tunnel:
// it dials out to the gateway over a websocket, turns that byte stream
// into an inner mutually-authenticated TLS connection in which the
// agent plays the TLS server role, and serves the PTY, health and
// calculator gRPC services over it so the gateway can reach the agent's
// terminals without ever accepting an inbound connection itself.
package tunnelclient
