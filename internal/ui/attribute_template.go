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

import (
	"github.com/sirupsen/logrus"

	"github.com/terrazzo-project/terrazzo/internal/reactive"
)

// AttributeTemplate lets one dynamic attribute slot re-aggregate on its
// own signal's schedule, independently of the element template that
// declared it. It satisfies reactive.TemplateHandle so a
// ReactiveClosureBuilder can bind it directly to the signals the slot's
// value depends on.
type AttributeTemplate struct {
	debugID string
	depth   reactive.Depth
	id      AttributeID
	store   AttributeDiffStore
	compute func() AttributeValueDiff
}

func NewAttributeTemplate(debugID string, depth reactive.Depth, id AttributeID, store AttributeDiffStore, compute func() AttributeValueDiff) *AttributeTemplate {
	return &AttributeTemplate{debugID: debugID, depth: depth, id: id, store: store, compute: compute}
}

func (t *AttributeTemplate) DebugID() string    { return t.debugID }
func (t *AttributeTemplate) Depth() reactive.Depth { return t.depth }

// Apply recomputes this slot's diff and reports it to the owning
// element's attribute store, which aggregates and writes to the DOM if
// the aggregated value changed.
func (t *AttributeTemplate) Apply() {
	diff := t.compute()
	log.WithFields(logrus.Fields{
		"template":  t.debugID,
		"attribute": t.id.Name.Text,
		"index":     t.id.Index,
	}).Debug("attribute template applied")
	t.store.Report(t.id, diff)
}
