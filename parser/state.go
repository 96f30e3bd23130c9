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

package parser

import (
	"github.com/petermattis/goid"

	"github.com/kestrel-lang/kestrel/ast"
	"github.com/kestrel-lang/kestrel/source"
)

// ParserPos is a position saved across parser instances: the location to
// resume lexing from, plus the end of the token before it.
type ParserPos struct {
	Loc     source.Location
	PrevLoc source.Location
}

// IsValid reports whether this is a real saved position.
func (p ParserPos) IsValid() bool { return p.Loc.IsValid() }

// DelayedBody is one deferred parse obligation: a function declaration whose
// body was skipped, and the location of that body's opening brace.
type DelayedBody struct {
	Decl *ast.FuncDecl
	Loc  source.Location
}

// PersistentState is parser state that outlives any single [Parser]
// instance. It carries at most one saved position, for resuming top-level
// parsing across instances, and the queue of delayed parse obligations.
//
// The state is owned by the compilation-unit driver and borrowed by one
// parser at a time. It is not safe for concurrent use; a runtime goroutine
// check catches interleaved borrowers.
type PersistentState struct {
	borrower int64

	pos           ParserPos
	delayedBodies []DelayedBody
	delayedTop    ParserPos
}

// NewPersistentState returns an empty state.
func NewPersistentState() *PersistentState {
	return &PersistentState{}
}

// acquire records the calling goroutine as the state's current borrower.
// Sequential handoff between goroutines is fine; what must never happen is
// two live borrowers interleaving mutations.
func (s *PersistentState) acquire() {
	s.borrower = goid.Get()
}

func (s *PersistentState) checkBorrower() {
	if s.borrower != 0 && s.borrower != goid.Get() {
		panic("kestrel/parser: PersistentState mutated by a goroutine that does not hold it")
	}
}

// MarkPosition saves a position for a future parser instance to resume from.
// The state holds at most one saved position at a time.
func (s *PersistentState) MarkPosition(pos ParserPos) {
	s.checkBorrower()
	if s.pos.IsValid() {
		panic("kestrel/parser: PersistentState already holds a saved position")
	}
	s.pos = pos
}

// TakePosition returns the saved position, if any, and clears it.
func (s *PersistentState) TakePosition() ParserPos {
	s.checkBorrower()
	pos := s.pos
	s.pos = ParserPos{}
	return pos
}

// DelayFunctionBody queues a deferred body-parse obligation.
func (s *PersistentState) DelayFunctionBody(fd *ast.FuncDecl, loc source.Location) {
	s.checkBorrower()
	s.delayedBodies = append(s.delayedBodies, DelayedBody{Decl: fd, Loc: loc})
}

// TakeDelayedBody removes and returns the obligation recorded for fd.
func (s *PersistentState) TakeDelayedBody(fd *ast.FuncDecl) (source.Location, bool) {
	s.checkBorrower()
	for i, d := range s.delayedBodies {
		if d.Decl == fd {
			s.delayedBodies = append(s.delayedBodies[:i], s.delayedBodies[i+1:]...)
			return d.Loc, true
		}
	}
	return 0, false
}

// DelayTopLevel records the position of a pending top-level statement or
// declaration at an interactive completion point. At most one can be pending.
func (s *PersistentState) DelayTopLevel(pos ParserPos) {
	s.checkBorrower()
	if s.delayedTop.IsValid() {
		panic("kestrel/parser: PersistentState already holds a delayed top-level position")
	}
	s.delayedTop = pos
}

// HasDelayedTopLevel reports whether a top-level parse is pending.
func (s *PersistentState) HasDelayedTopLevel() bool {
	return s.delayedTop.IsValid()
}

// TakeDelayedTopLevel returns the pending top-level position and clears it.
func (s *PersistentState) TakeDelayedTopLevel() ParserPos {
	s.checkBorrower()
	pos := s.delayedTop
	s.delayedTop = ParserPos{}
	return pos
}
