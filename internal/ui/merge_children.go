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

// mergeChildren reconciles a parent's rendered children against its
// previous render. Element children are matched by Key across the two
// lists (so reordering reuses the existing live node instead of
// recreating it); Text children are matched positionally, since they
// carry no key. Children whose key doesn't reappear are detached.
func mergeChildren(doc domtree.Document, parent domtree.Element, oldChildren, newChildren []Node) error {
	return mergeChildrenAtDepth(doc, parent, oldChildren, newChildren, 0)
}

// mergeChildrenAtDepth is mergeChildren's depth-aware core: depth is
// passed down to each Element child's merge so a Dynamic child spawns
// its own nested Template one level deeper than its parent.
func mergeChildrenAtDepth(doc domtree.Document, parent domtree.Element, oldChildren, newChildren []Node, depth reactive.Depth) error {
	if parent == nil {
		return trace.BadParameter("merge children: parent must not be nil")
	}
	RenumberIndexKeys(newChildren)

	oldElemByKey := make(map[Key]*Element, len(oldChildren))
	var oldTexts []*TextNode
	for _, n := range oldChildren {
		switch {
		case n.Element != nil:
			oldElemByKey[n.Element.Key] = n.Element
		case n.Text != nil:
			oldTexts = append(oldTexts, n.Text)
		}
	}

	textCursor := 0
	target := make([]domtree.Node, 0, len(newChildren))
	for i := range newChildren {
		child := &newChildren[i]
		switch {
		case child.Element != nil:
			prev, reused := oldElemByKey[child.Element.Key]
			if reused {
				delete(oldElemByKey, child.Element.Key)
			} else {
				prev = nil
			}
			live, err := child.Element.mergeAtDepth(doc, prev, depth)
			if err != nil {
				return trace.Wrap(err, "child %v", child.Element.Key)
			}
			target = append(target, live)

		case child.Text != nil:
			var prevText *TextNode
			if textCursor < len(oldTexts) {
				prevText = oldTexts[textCursor]
				textCursor++
			}
			target = append(target, mergeText(doc, child.Text, prevText))
		}
	}

	reorderChildren(parent, target)

	for _, leftover := range oldElemByKey {
		if leftover.live != nil {
			parent.RemoveChild(leftover.live)
		}
	}
	return nil
}

func mergeText(doc domtree.Document, n *TextNode, prev *TextNode) domtree.Text {
	if prev != nil && prev.live != nil {
		n.live = prev.live
		if prev.Value != n.Value {
			n.live.SetData(n.Value)
		}
		return n.live
	}
	n.live = doc.CreateText(n.Value)
	return n.live
}

// reorderChildren brings parent's live child list into line with
// target: anything no longer wanted is detached first, then each
// target node is moved into its final position in a single left-to-
// right pass. Nodes already in place are left untouched.
func reorderChildren(parent domtree.Element, target []domtree.Node) {
	wanted := make(map[domtree.Node]bool, len(target))
	for _, n := range target {
		wanted[n] = true
	}
	for _, c := range parent.Children() {
		if !wanted[c] {
			parent.RemoveChild(c)
		}
	}

	for i, n := range target {
		siblings := parent.Children()
		if i < len(siblings) && siblings[i] == n {
			continue
		}
		if i < len(siblings) {
			parent.InsertBefore(n, siblings[i])
		} else {
			parent.AppendChild(n)
		}
	}
}
