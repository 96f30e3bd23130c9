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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/parser"
	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
	"github.com/kestrel-lang/kestrel/token"
)

func newParser(t *testing.T, text string) (*parser.Parser, *source.File, *report.Report) {
	t.Helper()
	f := source.NewSet().Add("test.ks", text)
	errs := &report.Report{}
	return parser.New(f, errs, nil), f, errs
}

func TestConsumeAndPrevious(t *testing.T) {
	t.Parallel()

	p, f, _ := newParser(t, "let x = 1")

	assert.Equal(t, token.Unprimed, p.Tok.Kind)
	next := p.PeekToken() // Primes the cursor as a side effect.
	assert.Equal(t, token.KwLet, p.Tok.Kind)
	assert.Equal(t, "x", next.Text)

	loc := p.ConsumeToken()
	assert.Equal(t, f.Location(0), loc)
	assert.Equal(t, f.Location(3), p.PreviousLoc) // End of "let".
	assert.Equal(t, "x", p.Tok.Text)

	assert.False(t, p.ConsumeIf(token.Number))
	assert.True(t, p.ConsumeIf(token.Ident))
	assert.Equal(t, "=", p.Tok.Text)
}

func TestConsumePastEOFPanics(t *testing.T) {
	t.Parallel()

	p, _, _ := newParser(t, "a")
	p.ConsumeToken()
	require.True(t, p.Tok.Is(token.EOF))
	assert.Panics(t, func() { p.ConsumeToken() })
}

func TestCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	p, _, _ := newParser(t, `func f() { return "a\(b)c" } // tail`)

	p.ConsumeToken() // func
	cp := p.CaptureCheckpoint()

	var first []token.Token
	for range 5 {
		first = append(first, p.Tok)
		p.ConsumeToken()
	}

	p.RestoreCheckpoint(cp)
	var second []token.Token
	for range 5 {
		second = append(second, p.Tok)
		p.ConsumeToken()
	}

	// Re-lexing from the checkpoint reproduces bit-identical tokens.
	assert.Equal(t, first, second)
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	p, f, errs := newParser(t, "( x")

	loc, ok := p.ParseToken(token.LParen, "expected `(`")
	assert.True(t, ok)
	assert.Equal(t, f.Location(0), loc)

	_, ok = p.ParseToken(token.Number, "expected number")
	assert.False(t, ok)
	assert.Equal(t, "x", p.Tok.Text) // Nothing consumed on failure.
	require.Len(t, errs.Diagnostics, 1)
	assert.Equal(t, "expected number", errs.Diagnostics[0].Err.Error())
}

func TestParseMatchingTokenPointsAtOpener(t *testing.T) {
	t.Parallel()

	p, f, errs := newParser(t, "( x")

	openLoc := p.ConsumeToken()
	p.ConsumeToken() // x

	_, ok := p.ParseMatchingToken(token.RParen, openLoc, "expected `)`")
	assert.False(t, ok)

	require.Len(t, errs.Diagnostics, 1)
	d := errs.Diagnostics[0]
	require.Len(t, d.Annotations, 2)
	assert.Equal(t, "to match this opening `(`", d.Annotations[1].Message)
	assert.Equal(t, f.Span(0, 1), d.Annotations[1].Span)

	assert.Panics(t, func() { p.ParseMatchingToken(token.Comma, openLoc, "nope") })
}

func TestConsumeStartingAngle(t *testing.T) {
	t.Parallel()

	p, f, _ := newParser(t, "a<<b>>c")
	p.ConsumeToken() // a
	require.Equal(t, "<<", p.Tok.Text)

	// Splitting takes one '<' and re-lexes the rest in place.
	loc := p.ConsumeStartingLess()
	assert.Equal(t, f.Location(1), loc)
	assert.Equal(t, "<", p.Tok.Text)
	assert.Equal(t, f.Location(2), p.Tok.Loc)
	assert.Equal(t, f.Location(2), p.PreviousLoc)

	// A single-character operator is consumed whole.
	loc = p.ConsumeStartingLess()
	assert.Equal(t, f.Location(2), loc)
	assert.Equal(t, "b", p.Tok.Text)

	p.ConsumeToken() // b
	require.Equal(t, ">>", p.Tok.Text)
	loc = p.ConsumeStartingGreater()
	assert.Equal(t, f.Location(4), loc)
	assert.Equal(t, ">", p.Tok.Text)

	assert.Panics(t, func() { p.ConsumeStartingLess() }) // Tok is ">".
}

func TestPositionPersistence(t *testing.T) {
	t.Parallel()

	f := source.NewSet().Add("test.ks", "let a = 1 let b = 2")
	errs := &report.Report{}
	state := parser.NewPersistentState()

	p1 := parser.New(f, errs, state)
	for range 4 {
		p1.ConsumeToken() // let a = 1
	}
	require.Equal(t, "let", p1.Tok.Text)
	p1.SavePosition()

	// A second parser over the same state resumes where the first stopped,
	// including the fix-it anchor.
	p2 := parser.New(f, errs, state)
	assert.Equal(t, "let", p2.Tok.Text)
	assert.Equal(t, f.Location(10), p2.Tok.Loc)
	assert.Equal(t, f.Location(9), p2.PreviousLoc) // End of "1".

	// The position is consumed by the restore.
	p3 := parser.New(f, errs, state)
	assert.Equal(t, token.Unprimed, p3.Tok.Kind)
}

func TestSavePositionTwicePanics(t *testing.T) {
	t.Parallel()

	f := source.NewSet().Add("test.ks", "a b")
	state := parser.NewPersistentState()
	p := parser.New(f, nil, state)
	p.ConsumeToken()
	p.SavePosition()
	assert.Panics(t, func() { p.SavePosition() })
}

func TestStateRejectsInterleavedBorrowers(t *testing.T) {
	t.Parallel()

	f := source.NewSet().Add("test.ks", "a")
	state := parser.NewPersistentState()
	p := parser.New(f, nil, state) // Borrows state on this goroutine.
	_ = p

	got := make(chan any)
	go func() {
		defer func() { got <- recover() }()
		state.MarkPosition(parser.ParserPos{Loc: f.Location(0)})
	}()
	assert.NotNil(t, <-got)
}

func TestStatePositionIgnoredForOtherFile(t *testing.T) {
	t.Parallel()

	set := source.NewSet()
	f1 := set.Add("a.ks", "x y")
	f2 := set.Add("b.ks", "p q")
	state := parser.NewPersistentState()

	p1 := parser.New(f1, nil, state)
	p1.ConsumeToken()
	p1.SavePosition()

	// The saved position lies outside f2, so the new parser starts fresh
	// rather than seeking into the wrong buffer.
	p2 := parser.New(f2, nil, state)
	assert.Equal(t, token.Unprimed, p2.Tok.Kind)
	p2.PeekToken() // Primes the cursor.
	assert.Equal(t, "p", p2.Tok.Text)
}

func TestCheckpointPreservesCompletionMarker(t *testing.T) {
	t.Parallel()

	f := source.NewSet().Add("test.ks", "x y")
	p := parser.New(f, nil, nil, parser.CompletionOffset(2))

	cp := p.CaptureCheckpoint()
	p.ConsumeToken() // x; lexing crosses the completion offset.
	require.Equal(t, token.CodeComplete, p.Tok.Kind)

	// The pending marker is part of the tokenization mode, so restoring the
	// checkpoint hands it back and the second pass reproduces the first.
	p.RestoreCheckpoint(cp)
	p.ConsumeToken()
	assert.Equal(t, token.CodeComplete, p.Tok.Kind)
	assert.Equal(t, f.Location(2), p.Tok.Loc)
}
