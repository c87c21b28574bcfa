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

package domtree

// NodeKind distinguishes element nodes from text nodes in a live child
// list, matching the two cases the children-merge algorithm handles.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
)

// Node is either an Element or a Text node, as found in a live parent's
// child list.
type Node interface {
	Kind() NodeKind
}

// Element is a live DOM element: the write side of the attribute, event,
// and children diff.
type Element interface {
	Node

	TagName() string

	SetAttribute(name, value string)
	RemoveAttribute(name string)
	SetStyleProperty(name, value string)
	RemoveStyleProperty(name string)

	// SetEventListener attaches handler for eventType, replacing any
	// prior listener for the same type. callbackID identifies the host
	// function by pointer-equality-like identity so the merge can keep
	// an unchanged listener in place.
	SetEventListener(eventType string, callbackID uint64, handler func(Event))
	RemoveEventListener(eventType string)
	// EventListenerID reports the callbackID currently attached for
	// eventType, if any.
	EventListenerID(eventType string) (uint64, bool)

	Children() []Node
	AppendChild(n Node)
	InsertBefore(n Node, before Node)
	RemoveChild(n Node)
	// ReplaceSelfWith swaps this element for n in its parent's child
	// list, preserving position; used when the tag name changes.
	ReplaceSelfWith(n Node)
}

// Text is a live DOM text node.
type Text interface {
	Node
	Data() string
	SetData(data string)
	ReplaceSelfWith(n Node)
}

// Event is the minimal event payload delivered to a listener.
type Event struct {
	Type string
	// Detail carries whatever the concrete DOM binding wants to expose;
	// the UI runtime only forwards it to the registered callback.
	Detail any
}

// Document creates new, unattached nodes.
type Document interface {
	CreateElement(tag string) Element
	CreateText(data string) Text
}
