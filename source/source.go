// Copyright 2024-2026 The Kestrel Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package source provides source buffers and the location-mapping service
// used throughout the front end.
//
// A [Location] is an opaque handle into a [Set]'s address space. Code that
// holds a Location can only compare it or offset it; resolving it back to a
// buffer and byte offset goes through the Set that issued it.
package source

import "fmt"

// Location is an opaque handle to a position in some buffer registered with
// a [Set]. The zero Location is invalid.
type Location int

// IsValid reports whether this location refers to an actual position.
func (l Location) IsValid() bool {
	return l > 0
}

// Advance returns this location offset by n bytes. n may be negative.
func (l Location) Advance(n int) Location {
	return l + Location(n)
}

// File is a single registered source buffer. Its text is immutable for the
// file's lifetime; tokens borrow into it directly.
type File struct {
	path string
	text string
	base Location
}

// Path returns the name the file was registered under.
func (f *File) Path() string { return f.path }

// Text returns the full text of the file.
func (f *File) Text() string { return f.text }

// Len returns the length of the file's text in bytes.
func (f *File) Len() int { return len(f.text) }

// Base returns the location of the first byte of the file.
func (f *File) Base() Location { return f.base }

// Location converts a file-local byte offset into a Location.
//
// offset may equal f.Len(), denoting the end-of-file position.
func (f *File) Location(offset int) Location {
	if offset < 0 || offset > len(f.text) {
		panic(fmt.Sprintf("kestrel/source: offset %d out of range for %q", offset, f.path))
	}
	return f.base.Advance(offset)
}

// Offset converts a Location back into a file-local byte offset.
func (f *File) Offset(loc Location) int {
	if !f.Contains(loc) {
		panic(fmt.Sprintf("kestrel/source: location %d not in %q", loc, f.path))
	}
	return int(loc - f.base)
}

// Contains reports whether loc lies within this file, including the
// end-of-file position.
func (f *File) Contains(loc Location) bool {
	return loc >= f.base && loc <= f.base.Advance(len(f.text))
}

// Span returns the span covering [start, end) in this file.
func (f *File) Span(start, end int) Span {
	return Span{File: f, Start: start, End: end}
}

// Span is a contiguous byte range within a single file. Start is inclusive,
// End is exclusive.
type Span struct {
	File       *File
	Start, End int
}

// Text returns the text the span covers.
func (s Span) Text() string {
	return s.File.text[s.Start:s.End]
}

// Span returns the span itself, so spans can be passed wherever a spanner
// is wanted.
func (s Span) Span() Span { return s }

// String implements [fmt.Stringer].
func (s Span) String() string {
	return fmt.Sprintf("%s[%d:%d]", s.File.path, s.Start, s.End)
}
