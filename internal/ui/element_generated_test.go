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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
	"github.com/terrazzo-project/terrazzo/internal/reactive"
)

// fakeCloser records whether Close was called, standing in for a
// reactive.Consumer's Close method without pulling in its type param.
type fakeCloser struct{ closed bool }

func (c *fakeCloser) Close() error {
	c.closed = true
	return nil
}

func TestDynamicElementSpawnsNestedTemplateAtNextDepth(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()

	var renderCount int
	render := func() *Element {
		renderCount++
		return NewElement("span", IndexKey(0))
	}

	var gotDepth reactive.Depth
	closer1 := &fakeCloser{}
	generate := func(tmpl *Template) []Closer {
		gotDepth = tmpl.Depth()
		return []Closer{closer1}
	}

	root := NewDynamicElement("div", IndexKey(0), render, generate)
	live, err := root.mergeAtDepth(doc, nil, reactive.Depth(2))
	require.NoError(t, err)

	require.Equal(t, reactive.Depth(3), gotDepth, "nested template must render one depth below its owner")
	require.Equal(t, 1, renderCount)
	require.Equal(t, ValueGenerated, root.ValueKind)
	require.Len(t, live.Children(), 1)
	require.Equal(t, "span", live.Children()[0].(domtree.Element).TagName())

	tmpl := root.generated.template

	// Independent regeneration: firing the nested template again does
	// not require the owning element to merge again.
	_, err = tmpl.Apply()
	require.NoError(t, err)
	require.Equal(t, 2, renderCount)
	require.Len(t, live.Children(), 1, "regeneration reconciles in place, not by appending")

	// A second merge of the owner with an unchanged Dynamic value reuses
	// the existing nested Template (same identity, same depth) rather
	// than building a fresh one, but Generate still runs on every merge
	// to (re)establish the reactive subscription, and the previous
	// round's consumers are closed as it hands over.
	closer2 := &fakeCloser{}
	var gotTemplate *Template
	generate2 := func(tmpl *Template) []Closer {
		gotTemplate = tmpl
		return []Closer{closer2}
	}
	next := NewDynamicElement("div", IndexKey(0), render, generate2)
	live2, err := next.mergeAtDepth(doc, root, reactive.Depth(2))
	require.NoError(t, err)
	require.Same(t, live, live2)
	require.Same(t, tmpl, gotTemplate, "reuse path must hand the prior Template straight through")
	require.Equal(t, 3, renderCount, "reused template still regenerates on merge")
	require.True(t, closer1.closed, "reuse closes the outgoing generation's consumers")
	require.False(t, closer2.closed)
}

func TestDynamicElementClosesConsumersOnTransitionToStatic(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()

	closer := &fakeCloser{}
	render := func() *Element { return NewElement("span", IndexKey(0)) }
	generate := func(tmpl *Template) []Closer { return []Closer{closer} }

	root := NewDynamicElement("div", IndexKey(0), render, generate)
	_, err := root.mergeAtDepth(doc, nil, 0)
	require.NoError(t, err)
	require.False(t, closer.closed)

	next := NewElement("div", IndexKey(0))
	_, err = next.mergeAtDepth(doc, root, 0)
	require.NoError(t, err)
	require.True(t, closer.closed, "reverting to Static must unwind the prior generation's consumers")
}
