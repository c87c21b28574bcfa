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
	"github.com/sirupsen/logrus"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
	"github.com/terrazzo-project/terrazzo/internal/reactive"
)

// Template owns one mount point in the live DOM and the root Element it
// last rendered there. Applying it again renders a fresh tree and
// diffs it against the previous one in place, rather than replacing the
// mounted subtree wholesale.
type Template struct {
	debugID string
	depth   reactive.Depth
	doc     domtree.Document
	mount   domtree.Element
	render  func() *Element

	prevRoot *Element
}

// NewTemplate builds a Template that renders into mount by calling
// render, attaching the result on first Apply and diffing against the
// prior render on every subsequent call. doc, mount and render must all
// be non-nil.
func NewTemplate(debugID string, depth reactive.Depth, doc domtree.Document, mount domtree.Element, render func() *Element) (*Template, error) {
	if doc == nil || mount == nil || render == nil {
		return nil, trace.BadParameter("template %q: doc, mount and render must all be non-nil", debugID)
	}
	return &Template{debugID: debugID, depth: depth, doc: doc, mount: mount, render: render}, nil
}

func (t *Template) DebugID() string       { return t.debugID }
func (t *Template) Depth() reactive.Depth { return t.depth }

// Apply renders and merges the template's current output, mounting it
// the first time and diffing in place on every later call.
func (t *Template) Apply() (domtree.Element, error) {
	next := t.render()
	if next == nil {
		return nil, trace.BadParameter("template %q: render returned a nil root", t.debugID)
	}
	live, err := next.mergeAtDepth(t.doc, t.prevRoot, t.depth)
	if err != nil {
		return nil, trace.Wrap(err, "template %q", t.debugID)
	}
	if t.prevRoot == nil {
		t.mount.AppendChild(live)
	} else if t.prevRoot.live != live {
		t.prevRoot.live.ReplaceSelfWith(live)
	}
	t.prevRoot = next
	log.WithFields(logrus.Fields{"template": t.debugID, "tag": next.Tag}).Debug("template applied")
	return live, nil
}

// Root returns the live root element of the last render, or nil before
// the first Apply.
func (t *Template) Root() domtree.Element {
	if t.prevRoot == nil {
		return nil
	}
	return t.prevRoot.live
}
