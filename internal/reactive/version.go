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

package reactive

import "sync/atomic"

// Version is a process-wide monotonically increasing counter. Signals stamp
// every state change with a Version so subscribers can dedup deliveries that
// reach them through more than one path in the reactive graph.
type Version uint64

var globalVersion uint64

// CurrentVersion returns the last Version handed out by NextVersion, or 0 if
// none has been allocated yet.
func CurrentVersion() Version {
	return Version(atomic.LoadUint64(&globalVersion))
}

// NextVersion allocates and returns a new, strictly greater Version.
func NextVersion() Version {
	return Version(atomic.AddUint64(&globalVersion, 1))
}
