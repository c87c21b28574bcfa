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

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
)

func TestElementMergeReusesLiveNodeForSameTag(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()

	e1 := NewElement("span", IndexKey(0))
	live1, err := e1.Merge(doc, nil)
	require.NoError(t, err)

	e2 := NewElement("span", IndexKey(0))
	live2, err := e2.Merge(doc, e1)
	require.NoError(t, err)

	require.Same(t, live1, live2)
	require.Equal(t, "span", live2.TagName())
}

func TestElementMergeReplacesOnTagChange(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()

	e1 := NewElement("span", IndexKey(0))
	live1, err := e1.Merge(doc, nil)
	require.NoError(t, err)

	e2 := NewElement("p", IndexKey(0))
	live2, err := e2.Merge(doc, e1)
	require.NoError(t, err)

	require.NotSame(t, live1, live2)
	require.Equal(t, "p", live2.TagName())
}

func TestElementMergeRejectsNilDocument(t *testing.T) {
	t.Parallel()
	e := NewElement("span", IndexKey(0))
	_, err := e.Merge(nil, nil)
	require.Error(t, err)
	require.True(t, trace.IsBadParameter(err))
}

func TestMergeChildrenKeyedReorderPreservesIdentity(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	parent := doc.CreateElement("ul")

	a := NewElement("li", NamedKey("a"))
	b := NewElement("li", NamedKey("b"))
	oldChildren := []Node{ElementNode(a), ElementNode(b)}
	require.NoError(t, mergeChildren(doc, parent, nil, oldChildren))

	liveA, liveB := a.Live(), b.Live()
	require.Equal(t, []domtree.Node{liveA, liveB}, parent.Children())

	newB := NewElement("li", NamedKey("b"))
	newA := NewElement("li", NamedKey("a"))
	newChildren := []Node{ElementNode(newB), ElementNode(newA)}
	require.NoError(t, mergeChildren(doc, parent, oldChildren, newChildren))

	require.Same(t, liveB, newB.Live())
	require.Same(t, liveA, newA.Live())
	require.Equal(t, []domtree.Node{liveB, liveA}, parent.Children())
}

func TestMergeChildrenDetachesUnusedKey(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	parent := doc.CreateElement("ul")

	a := NewElement("li", NamedKey("a"))
	c := NewElement("li", NamedKey("c"))
	oldChildren := []Node{ElementNode(a), ElementNode(c)}
	require.NoError(t, mergeChildren(doc, parent, nil, oldChildren))
	require.Len(t, parent.Children(), 2)

	newChildren := []Node{ElementNode(NewElement("li", NamedKey("a")))}
	require.NoError(t, mergeChildren(doc, parent, oldChildren, newChildren))

	require.Len(t, parent.Children(), 1)
	require.Equal(t, a.Live(), parent.Children()[0])
}

func TestMergeChildrenTextUpdatedInPlace(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	parent := doc.CreateElement("p")

	oldText := NewTextNode("hello")
	require.NoError(t, mergeChildren(doc, parent, nil, []Node{TextNodeOf(oldText)}))
	live := oldText.live

	newText := NewTextNode("world")
	require.NoError(t, mergeChildren(doc, parent, []Node{TextNodeOf(oldText)}, []Node{TextNodeOf(newText)}))

	require.Same(t, live, newText.live)
	require.Equal(t, "world", live.Data())
}

func TestMergeEventsKeepsListenerWithSameCallbackID(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	live := doc.CreateElement("button")

	var calls int
	handler := func(domtree.Event) { calls++ }
	mergeEvents(live, nil, []Event{{Type: "click", CallbackID: 1, Handler: handler}})

	idBefore, ok := live.EventListenerID("click")
	require.True(t, ok)
	require.EqualValues(t, 1, idBefore)

	mergeEvents(live, []Event{{Type: "click", CallbackID: 1, Handler: handler}},
		[]Event{{Type: "click", CallbackID: 1, Handler: func(domtree.Event) { calls += 100 }}})

	live.(*domtree.MemElement).Dispatch("click", nil)
	require.Equal(t, 1, calls, "handler should not have been replaced")
}

func TestMergeEventsReplacesOnDifferentCallbackID(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	live := doc.CreateElement("button")

	var calls int
	mergeEvents(live, nil, []Event{{Type: "click", CallbackID: 1, Handler: func(domtree.Event) { calls = 1 }}})
	mergeEvents(live,
		[]Event{{Type: "click", CallbackID: 1, Handler: func(domtree.Event) { calls = 1 }}},
		[]Event{{Type: "click", CallbackID: 2, Handler: func(domtree.Event) { calls = 2 }}})

	live.(*domtree.MemElement).Dispatch("click", nil)
	require.Equal(t, 2, calls)
}

func TestMergeEventsRemovesUnmatchedType(t *testing.T) {
	t.Parallel()
	doc := domtree.NewMemDocument()
	live := doc.CreateElement("button")

	mergeEvents(live, nil, []Event{{Type: "focus", CallbackID: 1, Handler: func(domtree.Event) {}}})
	mergeEvents(live, []Event{{Type: "focus", CallbackID: 1, Handler: func(domtree.Event) {}}}, nil)

	_, ok := live.EventListenerID("focus")
	require.False(t, ok)
}
