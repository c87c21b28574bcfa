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

// Node is one entry in an element's rendered children list: either an
// Element or a Text, never both.
type Node struct {
	Element *Element
	Text    *TextNode
}

func ElementNode(e *Element) Node { return Node{Element: e} }
func TextNodeOf(t *TextNode) Node { return Node{Text: t} }

// Live returns the domtree.Node this entry is currently attached to, or
// nil if it was never rendered.
func (n Node) Live() domtree.Node {
	switch {
	case n.Element != nil:
		return n.Element.live
	case n.Text != nil:
		return n.Text.live
	default:
		return nil
	}
}

// Key returns the reconciliation key for an Element entry, or the zero
// Key (treated as unkeyed) for a Text entry.
func (n Node) Key() (Key, bool) {
	if n.Element == nil {
		return Key{}, false
	}
	return n.Element.Key, true
}

// TextNode is a rendered text child; text children are matched
// positionally rather than by key.
type TextNode struct {
	Value string
	live  domtree.Text
}

func NewTextNode(value string) *TextNode {
	return &TextNode{Value: value}
}
