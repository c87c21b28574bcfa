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
	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
	"github.com/terrazzo-project/terrazzo/internal/reactive"
)

// Event is one listener a template attaches to a rendered element.
// CallbackID stands in for host-function-pointer identity: two Events
// with the same Type and CallbackID are considered the same listener
// across a merge.
type Event struct {
	Type       string
	CallbackID uint64
	Handler    func(domtree.Event)
}

// OnRenderCallback runs after an Element's attributes, children and
// events have all been merged into the live DOM; used for focus
// management and similar one-shot DOM side effects.
type OnRenderCallback func(live domtree.Element)

// ValueKind discriminates an Element's value: either its children were
// rendered directly by the owning template (Static), or it owns a
// nested Template that regenerates its own content independently
// (Dynamic while awaiting a first generation, Generated once it has
// one). Mirrors the teacher's Rust XElementValue enum.
type ValueKind int

const (
	ValueStatic ValueKind = iota
	ValueDynamic
	ValueGenerated
)

// Closer is the narrow interface a Generate callback's subscription
// handles must satisfy so Element can hold them without depending on
// reactive.Consumer's type parameter.
type Closer interface {
	Close() error
}

// Render produces the element tree a Dynamic element's nested Template
// regenerates independently of its parent, mirroring the render
// closure an XTemplate is built from.
type Render func() *Element

// Generate wires an already-built nested Template (freshly constructed,
// or reused from the previous render) into whatever reactive
// subscriptions drive its later, parent-independent re-renders. It
// receives the Template, not the other way around: mergeDynamic owns
// allocating or reusing it, mirroring the teacher's
// XDynamicElement(Box<dyn Fn(XTemplate) -> Consumers>), where the
// callback is handed an already-constructed XTemplate and returns only
// the Consumers that keep it alive. Generate runs on every merge of a
// Dynamic element, not just the first: a subsequent Static transition
// (or element teardown) closes the returned consumers.
type Generate func(t *Template) []Closer

// generatedState is the merge-internal bookkeeping a Dynamic element
// accumulates once it has generated at least once: its nested Template
// and the consumers that keep it alive.
type generatedState struct {
	template  *Template
	consumers []Closer
}

// Element is one rendered node: a tag, its reconciliation Key, the
// attribute slots a template contributed, its children, its event
// listeners, and the live DOM handle once attached.
type Element struct {
	Tag        string
	Key        Key
	Attributes []Attribute
	Children   []Node
	Events     []Event
	OnRender   OnRenderCallback

	// BeforeRender runs before attributes, children and events are
	// merged, mirroring XElement::merge's before_render hook.
	BeforeRender OnRenderCallback

	// HasDynamicAttributes routes this element's attribute reporting
	// through a DynamicBackend instead of a StaticBackend.
	HasDynamicAttributes bool

	// ValueKind selects between a Static element (children rendered by
	// the owner) and a Dynamic one (owns a nested Template). Render and
	// Generate must both be set when ValueKind is ValueDynamic;
	// ValueGenerated is a merge-internal result, never a value a caller
	// should set.
	ValueKind ValueKind
	Render    Render
	Generate  Generate

	live      domtree.Element
	liveRef   *LiveElement
	generated *generatedState
}

// NewElement constructs an unattached Element ready for a first merge.
func NewElement(tag string, key Key) *Element {
	return &Element{Tag: tag, Key: key}
}

// NewDynamicElement constructs an unattached Element whose content is
// produced by a nested Template, rather than rendered by the owner.
// render builds that Template's element tree; generate is invoked with
// the Template on every merge (first generation, reuse, and any later
// re-merge) to (re)establish its reactive subscriptions.
func NewDynamicElement(tag string, key Key, render Render, generate Generate) *Element {
	return &Element{Tag: tag, Key: key, ValueKind: ValueDynamic, Render: render, Generate: generate}
}

// Live returns the attached DOM element, or nil before the first merge.
func (e *Element) Live() domtree.Element { return e.live }

// Merge reconciles e against prev (which may be nil for a fresh mount)
// and attaches/updates the live DOM element under doc, returning the
// live node so a parent can place it in its own child list.
func (e *Element) Merge(doc domtree.Document, prev *Element) (domtree.Element, error) {
	return e.mergeAtDepth(doc, prev, 0)
}

// mergeAtDepth is Merge's depth-aware core. depth is the reconciliation
// depth the owning Template was built at; a Dynamic element spawns its
// nested Template one level deeper, mirroring XTemplate::with_depth.
func (e *Element) mergeAtDepth(doc domtree.Document, prev *Element, depth reactive.Depth) (domtree.Element, error) {
	if doc == nil {
		return nil, trace.BadParameter("element %q: merge requires a non-nil document", e.Tag)
	}
	if e.Tag == "" {
		return nil, trace.BadParameter("element: tag name must not be empty")
	}
	if e.ValueKind == ValueGenerated {
		return nil, trace.BadParameter("element %q: Generated is a merge-internal result, not a valid render value", e.Tag)
	}

	if prev != nil && prev.Tag == e.Tag && prev.live != nil {
		e.live = prev.live
		e.liveRef = prev.liveRef
	} else {
		e.live = doc.CreateElement(e.Tag)
		e.liveRef = NewLiveElement(e.live)
		prev = nil // tag changed: nothing carries over
	}

	if e.BeforeRender != nil {
		e.BeforeRender(e.live)
	}

	var err error
	if e.ValueKind == ValueDynamic {
		err = e.mergeDynamic(doc, prev, depth)
	} else {
		err = e.mergeStatic(doc, prev, depth)
	}
	if err != nil {
		return nil, trace.Wrap(err, "element %q", e.Tag)
	}

	if e.OnRender != nil {
		e.OnRender(e.live)
	}
	return e.live, nil
}

// mergeStatic merges attributes, events and children the owner
// rendered directly. If prev was Dynamic/Generated, its nested
// Template's consumers are closed first: a Static value drops whatever
// independent regeneration the previous render had set up.
func (e *Element) mergeStatic(doc domtree.Document, prev *Element, depth reactive.Depth) error {
	if prev != nil && prev.ValueKind != ValueStatic {
		closeGenerated(prev.generated)
		prev = nil
	}

	e.mergeAttributes(prev)
	mergeEvents(e.live, prevEvents(prev), e.Events)
	if err := mergeChildrenAtDepth(doc, e.live, prevChildren(prev), e.Children, depth); err != nil {
		return trace.Wrap(err)
	}
	return nil
}

// mergeDynamic allocates or reuses the nested Template that drives this
// element's independent regeneration, mirroring XElement::merge's
// Dynamic arm: a prior Generated value hands its Template straight
// through (closing its old consumers first), anything else builds a
// fresh one at depth.Next() mounted onto e.live. Generate is then
// called with that Template on every merge, whether reused or fresh,
// to (re)establish the subscriptions that will drive this Template's
// later, parent-independent Apply calls; this first Apply performs the
// initial render the teacher's reactive closure would otherwise trigger
// the moment it subscribes.
func (e *Element) mergeDynamic(doc domtree.Document, prev *Element, depth reactive.Depth) error {
	e.mergeAttributes(prev)
	mergeEvents(e.live, prevEvents(prev), e.Events)

	var tmpl *Template
	if prev != nil && prev.ValueKind == ValueGenerated && prev.generated != nil {
		tmpl = prev.generated.template
		closeGenerated(prev.generated)
	} else {
		if prev != nil {
			closeGenerated(prev.generated)
		}
		var err error
		tmpl, err = NewTemplate(e.Tag, depth.Next(), doc, e.live, e.Render)
		if err != nil {
			return trace.Wrap(err, "generate")
		}
	}

	consumers := e.Generate(tmpl)
	if _, err := tmpl.Apply(); err != nil {
		return trace.Wrap(err, "generate")
	}
	e.generated = &generatedState{template: tmpl, consumers: consumers}
	e.ValueKind = ValueGenerated
	return nil
}

func closeGenerated(g *generatedState) {
	if g == nil {
		return
	}
	for _, c := range g.consumers {
		c.Close()
	}
}

func (e *Element) mergeAttributes(prev *Element) {
	var store AttributeDiffStore
	if e.HasDynamicAttributes {
		store = NewDynamicBackend(e.liveRef)
	} else {
		store = NewStaticBackend(e.liveRef)
	}
	prevRendered := prev != nil
	for _, attr := range e.Attributes {
		attr.Merge(store, prevRendered)
	}
}

func prevEvents(prev *Element) []Event {
	if prev == nil {
		return nil
	}
	return prev.Events
}

func prevChildren(prev *Element) []Node {
	if prev == nil {
		return nil
	}
	return prev.Children
}
