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

// MemDocument is an in-memory Document, used by tests and by any
// renderer that runs without a browser attached.
type MemDocument struct{}

func NewMemDocument() *MemDocument { return &MemDocument{} }

func (*MemDocument) CreateElement(tag string) Element {
	if tag == "" {
		log.Warn("creating element with empty tag name")
	}
	log.WithField("tag", tag).Debug("create element")
	return &MemElement{tag: tag, listeners: map[string]memListener{}}
}

func (*MemDocument) CreateText(data string) Text {
	log.WithField("len", len(data)).Debug("create text")
	return &MemText{data: data}
}

type memListener struct {
	id      uint64
	handler func(Event)
}

// MemElement is a plain Go tree node standing in for a browser Element.
type MemElement struct {
	tag        string
	parent     *MemElement
	children   []Node
	attributes map[string]string
	style      map[string]string
	listeners  map[string]memListener
}

func (e *MemElement) Kind() NodeKind { return KindElement }
func (e *MemElement) TagName() string { return e.tag }

func (e *MemElement) SetAttribute(name, value string) {
	if e.attributes == nil {
		e.attributes = map[string]string{}
	}
	e.attributes[name] = value
}

func (e *MemElement) RemoveAttribute(name string) {
	delete(e.attributes, name)
}

func (e *MemElement) Attribute(name string) (string, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

func (e *MemElement) SetStyleProperty(name, value string) {
	if e.style == nil {
		e.style = map[string]string{}
	}
	e.style[name] = value
}

func (e *MemElement) RemoveStyleProperty(name string) {
	delete(e.style, name)
}

func (e *MemElement) StyleProperty(name string) (string, bool) {
	v, ok := e.style[name]
	return v, ok
}

func (e *MemElement) SetEventListener(eventType string, callbackID uint64, handler func(Event)) {
	e.listeners[eventType] = memListener{id: callbackID, handler: handler}
}

func (e *MemElement) RemoveEventListener(eventType string) {
	delete(e.listeners, eventType)
}

func (e *MemElement) EventListenerID(eventType string) (uint64, bool) {
	l, ok := e.listeners[eventType]
	if !ok {
		return 0, false
	}
	return l.id, true
}

// Dispatch is a test helper that simulates an event firing.
func (e *MemElement) Dispatch(eventType string, detail any) {
	if l, ok := e.listeners[eventType]; ok {
		l.handler(Event{Type: eventType, Detail: detail})
	}
}

func (e *MemElement) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

func (e *MemElement) AppendChild(n Node) {
	detachFrom(n)
	setParent(n, e)
	e.children = append(e.children, n)
}

func (e *MemElement) InsertBefore(n Node, before Node) {
	detachFrom(n)
	idx := e.indexOf(before)
	if idx < 0 {
		e.AppendChild(n)
		return
	}
	setParent(n, e)
	e.children = append(e.children[:idx], append([]Node{n}, e.children[idx:]...)...)
}

func (e *MemElement) RemoveChild(n Node) {
	idx := e.indexOf(n)
	if idx < 0 {
		return
	}
	e.children = append(e.children[:idx], e.children[idx+1:]...)
	setParent(n, nil)
}

func (e *MemElement) ReplaceSelfWith(n Node) {
	if e.parent == nil {
		return
	}
	parent := e.parent
	idx := parent.indexOf(e)
	if idx < 0 {
		return
	}
	setParent(n, parent)
	parent.children[idx] = n
	e.parent = nil
}

func (e *MemElement) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func detachFrom(n Node) {
	switch v := n.(type) {
	case *MemElement:
		if v.parent != nil {
			v.parent.RemoveChild(v)
		}
	case *MemText:
		if v.parent != nil {
			v.parent.RemoveChild(v)
		}
	}
}

func setParent(n Node, parent *MemElement) {
	switch v := n.(type) {
	case *MemElement:
		v.parent = parent
	case *MemText:
		v.parent = parent
	}
}

// MemText is a plain Go text node standing in for a browser Text node.
type MemText struct {
	data   string
	parent *MemElement
}

func (t *MemText) Kind() NodeKind { return KindText }
func (t *MemText) Data() string   { return t.data }
func (t *MemText) SetData(data string) { t.data = data }

func (t *MemText) ReplaceSelfWith(n Node) {
	if t.parent == nil {
		return
	}
	parent := t.parent
	idx := parent.indexOf(t)
	if idx < 0 {
		return
	}
	setParent(n, parent)
	parent.children[idx] = n
	t.parent = nil
}
