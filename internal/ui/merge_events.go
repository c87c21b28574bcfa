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

package ui

import "github.com/terrazzo-project/terrazzo/internal/domtree"

// mergeEvents reconciles a live element's listeners against a new
// render's Events. A listener survives untouched when both its event
// type and callback identity match an old one; otherwise it is detached
// and the new handler (if any) is attached in its place. Old listeners
// whose type isn't present in the new set are removed.
func mergeEvents(live domtree.Element, oldEvents, newEvents []Event) {
	oldByType := make(map[string]Event, len(oldEvents))
	for _, e := range oldEvents {
		oldByType[e.Type] = e
	}

	seen := make(map[string]bool, len(newEvents))
	for _, e := range newEvents {
		seen[e.Type] = true
		if old, ok := oldByType[e.Type]; ok && old.CallbackID == e.CallbackID {
			continue
		}
		live.SetEventListener(e.Type, e.CallbackID, e.Handler)
	}

	for eventType := range oldByType {
		if !seen[eventType] {
			live.RemoveEventListener(eventType)
		}
	}
}
