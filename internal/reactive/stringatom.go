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

package reactive

// StringAtom is a string that is cheap to copy and compares by content.
//
// Go's native string is already an immutable, reference-counted-ish value
// (a pointer+length pair sharing its backing array on copy), so StringAtom
// is a thin wrapper that keeps the static/owned distinction from the
// originating design for debug purposes without adding an allocation on the
// common "static label" path.
type StringAtom struct {
	value  string
	static bool
}

// Static wraps a compile-time string literal. It never allocates.
func Static(s string) StringAtom {
	return StringAtom{value: s, static: true}
}

// Owned wraps a dynamically produced string.
func Owned(s string) StringAtom {
	return StringAtom{value: s, static: false}
}

// String returns the underlying text.
func (a StringAtom) String() string {
	return a.value
}

// IsStatic reports whether the atom was constructed from a literal.
func (a StringAtom) IsStatic() bool {
	return a.static
}

// Equal compares two atoms by content.
func (a StringAtom) Equal(other StringAtom) bool {
	return a.value == other.value
}

// Less orders two atoms by byte content.
func (a StringAtom) Less(other StringAtom) bool {
	return a.value < other.value
}
