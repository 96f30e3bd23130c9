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

package source

import (
	"fmt"
	"sync"

	"github.com/kestrel-lang/kestrel/internal/interval"
)

// Set is the location-mapping service: it owns a collection of source files
// and assigns each a disjoint range of the Location address space.
//
// Registration and lookup are safe for concurrent use; the driver registers
// buffers from multiple parsing goroutines.
type Set struct {
	mu    sync.RWMutex
	next  Location
	files interval.Map[Location, *File]
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{next: 1}
}

// Add registers a new file under the given path and returns it.
func (s *Set) Add(path, text string) *File {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &File{path: path, text: text, base: s.next}
	// The interval includes the end-of-file position, so EOF locations
	// resolve to their file.
	end := s.next.Advance(len(text))
	if overlap := s.files.Insert(s.next, end, f); overlap.Value != nil {
		panic(fmt.Sprintf("kestrel/source: overlapping buffer registration for %q", path))
	}
	s.next = end.Advance(1)
	return f
}

// FileContaining resolves a location to the file whose range contains it, or
// nil if the location was not issued by this set.
func (s *Set) FileContaining(loc Location) *File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	got := s.files.Get(loc)
	if got.Value == nil {
		return nil
	}
	return *got.Value
}

// Span resolves a location plus a length into a file-local span.
func (s *Set) Span(loc Location, length int) Span {
	f := s.FileContaining(loc)
	if f == nil {
		panic(fmt.Sprintf("kestrel/source: location %d not registered with this set", loc))
	}
	start := f.Offset(loc)
	return f.Span(start, start+length)
}
