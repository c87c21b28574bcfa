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

package pipestream

import "github.com/google/uuid"

// processCorrelationID correlates this process's log lines across
// whichever browser sessions connect to it over its lifetime.
var processCorrelationID = uuid.NewString()

// DebugCorrelationID returns the process-wide debug id, for inclusion in
// log lines that need to be tied back to a specific gateway process
// independent of any one browser session's CorrelationID.
func DebugCorrelationID() string {
	return processCorrelationID
}
