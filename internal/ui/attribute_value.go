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

// AttributeKind distinguishes a plain HTML attribute from a CSS style
// property; the former writes through Element.SetAttribute, the latter
// through Element.SetStyleProperty.
type AttributeKind int

const (
	KindAttribute AttributeKind = iota
	KindStyle
)

// AttributeName is the (text, kind) pair shared by every slot contributing
// to one logical attribute.
type AttributeName struct {
	Text string
	Kind AttributeKind
}

// AttributeID locates one attribute slot: Index groups slots that
// contribute to the same final attribute, SubIndex orders them within
// that group.
type AttributeID struct {
	Name     AttributeName
	Index    int
	SubIndex int
}

func (id AttributeID) String() string {
	kind := "attr"
	if id.Name.Kind == KindStyle {
		kind = "style"
	}
	return kind + ":" + id.Name.Text
}

// diffKind tags one slot's contribution as seen by the aggregator.
type diffKind int

const (
	diffUndefined diffKind = iota // dynamic slot not yet initialised
	diffSame                      // unchanged from the prior render
	diffNull                      // explicitly absent
	diffValue                     // newly set or changed
)

// AttributeValueDiff is what one slot reports to its element's attribute
// builder during a merge pass.
type AttributeValueDiff struct {
	kind  diffKind
	value string
}

func DiffUndefined() AttributeValueDiff        { return AttributeValueDiff{kind: diffUndefined} }
func DiffSame(value string) AttributeValueDiff { return AttributeValueDiff{kind: diffSame, value: value} }
func DiffNull() AttributeValueDiff             { return AttributeValueDiff{kind: diffNull} }
func DiffValue(value string) AttributeValueDiff {
	return AttributeValueDiff{kind: diffValue, value: value}
}

// AttributeValuesBuilder holds one element's per-(index, sub_index)
// contributions across however many attribute names it declares.
type AttributeValuesBuilder struct {
	chunks [][]AttributeValueDiff
}

// Set records value at (id.Index, id.SubIndex), growing the builder as
// needed. Slots are expected to be written in ascending SubIndex order
// within an index.
func (b *AttributeValuesBuilder) Set(id AttributeID, value AttributeValueDiff) {
	for len(b.chunks) <= id.Index {
		b.chunks = append(b.chunks, nil)
	}
	chunk := b.chunks[id.Index]
	for len(chunk) <= id.SubIndex {
		chunk = append(chunk, AttributeValueDiff{})
	}
	chunk[id.SubIndex] = value
	b.chunks[id.Index] = chunk
}

// Chunk returns the accumulated slots for one index.
func (b *AttributeValuesBuilder) Chunk(index int) []AttributeValueDiff {
	if index < 0 || index >= len(b.chunks) {
		return nil
	}
	return b.chunks[index]
}

// AggregateAttribute implements the aggregation laws:
//   - all Undefined/Same -> no write (ok=false)
//   - any Null, no Value and no Same -> remove (ok=true, value=nil)
//   - any Value, or any Null alongside a Same -> write the space-joined
//     Same/Value strings (ok=true)
func AggregateAttribute(chunk []AttributeValueDiff) (value *string, write bool) {
	hasData := false
	hasNull := false
	hasValue := false
	for _, d := range chunk {
		switch d.kind {
		case diffSame:
			hasData = true
		case diffNull:
			hasNull = true
		case diffValue:
			hasValue = true
		}
	}
	if !hasValue {
		if !hasNull {
			return nil, false
		}
		if !hasData {
			return nil, true
		}
		// hasData && hasNull, with no Value slot: still falls through to
		// the joined-string path below, since the surviving Same slots
		// determine the written value.
	}

	var acc string
	for _, d := range chunk {
		if d.kind != diffSame && d.kind != diffValue {
			continue
		}
		if acc != "" {
			acc += " "
		}
		acc += d.value
	}
	return &acc, true
}
