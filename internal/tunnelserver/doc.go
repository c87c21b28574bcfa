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

// Package tunnelserver is the gateway side of the reverse-tunnel
// runtime: root CA bootstrap, signed-extension certificate issuance,
// the agent connection pool with its health-check loop and two-of-N
// load balancing, the ACME driver for the gateway's own server
// certificate, and the HTTP/HTTPS demultiplexer in front of both.
package tunnelserver
