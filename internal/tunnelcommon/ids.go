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

import "github.com/google/uuid"

// ConnectionID identifies one pooled tunnel channel.
type ConnectionID string

// NewConnectionID allocates a fresh connection id.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// ClientID is the name an agent presents when opening a tunnel; the pool
// groups channels by it.
type ClientID string
