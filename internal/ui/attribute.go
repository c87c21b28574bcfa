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
	"sync"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
)

// LiveElement wraps an attached domtree.Element together with the
// long-lived attribute builder dynamic attributes write into between
// template renders.
type LiveElement struct {
	mu      sync.Mutex
	elem    domtree.Element
	builder AttributeValuesBuilder
}

func NewLiveElement(elem domtree.Element) *LiveElement {
	return &LiveElement{elem: elem}
}

func (le *LiveElement) Element() domtree.Element { return le.elem }

// set writes id's aggregated value, or clears it, directly to the DOM.
func (le *LiveElement) set(id AttributeID, value *string) {
	switch id.Name.Kind {
	case KindStyle:
		if value == nil {
			le.elem.RemoveStyleProperty(id.Name.Text)
		} else {
			le.elem.SetStyleProperty(id.Name.Text, *value)
		}
	default:
		if value == nil {
			le.elem.RemoveAttribute(id.Name.Text)
		} else {
			le.elem.SetAttribute(id.Name.Text, *value)
		}
	}
}

// AttributeDiffStore receives one slot's contribution during a merge
// pass and decides, per the backend's policy, when to aggregate and
// write the owning attribute's final value.
type AttributeDiffStore interface {
	Report(id AttributeID, diff AttributeValueDiff)
}

// StaticBackend aggregates immediately against a builder scoped to the
// current render pass: used for attributes with no dynamic (signal- or
// closure-bound) contributors, so there is nothing to reconcile later.
type StaticBackend struct {
	live    *LiveElement
	builder AttributeValuesBuilder
}

func NewStaticBackend(live *LiveElement) *StaticBackend {
	return &StaticBackend{live: live}
}

func (b *StaticBackend) Report(id AttributeID, diff AttributeValueDiff) {
	b.builder.Set(id, diff)
	value, write := AggregateAttribute(b.builder.Chunk(id.Index))
	if write {
		b.live.set(id, value)
		log.WithField("attribute", id.String()).Debug("static attribute written")
	}
}

// DynamicBackend persists every reported slot into the LiveElement's own
// builder, so a later independent update of one dynamic attribute still
// aggregates against its siblings' last-known values.
type DynamicBackend struct {
	live *LiveElement
}

func NewDynamicBackend(live *LiveElement) *DynamicBackend {
	return &DynamicBackend{live: live}
}

func (b *DynamicBackend) Report(id AttributeID, diff AttributeValueDiff) {
	b.live.mu.Lock()
	defer b.live.mu.Unlock()
	b.live.builder.Set(id, diff)
	value, write := AggregateAttribute(b.live.builder.Chunk(id.Index))
	if write {
		b.live.set(id, value)
		log.WithField("attribute", id.String()).Debug("dynamic attribute written")
	}
}

// Attribute is one attribute slot as declared by a template: a fixed
// name/kind/index/sub-index plus the function that computes its diff
// against the previous render.
type Attribute struct {
	ID     AttributeID
	Render func(prevRendered bool) AttributeValueDiff
}

// Merge reports this attribute's diff for the current render into
// store. prevRendered tells the render function whether a prior value
// for this exact slot already exists.
func (a Attribute) Merge(store AttributeDiffStore, prevRendered bool) {
	store.Report(a.ID, a.Render(prevRendered))
}
