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

// Depth is a tree-depth ordering key. It is the primary sort key among
// consumers of a single producer, so that an ancestor template's
// recomputation always runs before its descendants'.
type Depth uint32

// ZeroDepth is the root depth.
const ZeroDepth Depth = 0

// Next returns a strictly greater depth, for a child one level down.
func (d Depth) Next() Depth {
	return d + 1
}
