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

// Package parser implements the Kestrel front end: a hand-written lexer, a
// one-token-lookahead cursor with checkpoints, error recovery by skipping to
// synchronization points, tolerant separated-list parsing, and delayed
// parsing of function bodies for incremental and interactive use.
package parser

import (
	"fmt"

	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
	"github.com/kestrel-lang/kestrel/token"
)

// Parser parses one source file. Each Parser exclusively owns its lexer; the
// two are created and discarded together. The PersistentState it borrows is
// owned by the driver and may be shared, sequentially, with other instances.
type Parser struct {
	file  *source.File
	errs  *report.Report
	lexer *Lexer
	state *PersistentState

	// Tok is the token under the cursor. Before the first lexing step it
	// holds the Unprimed sentinel.
	Tok token.Token
	// PreviousLoc is the end of the most recently consumed token. Fix-it
	// insertions for missing separators anchor here.
	PreviousLoc source.Location

	completion  CompletionCallbacks
	delayBodies bool

	// Top-level value names seen so far, for redefinition diagnostics.
	declared map[string]source.Location
}

// Option configures a Parser at construction.
type Option func(*Parser)

// DelayFunctionBodies makes the main parse skip function bodies, recording
// them as delayed obligations in the persistent state instead.
func DelayFunctionBodies() Option {
	return func(p *Parser) { p.delayBodies = true }
}

// CompletionOffset places an interactive completion marker at the given
// file-local byte offset.
func CompletionOffset(offset int) Option {
	return func(p *Parser) { p.lexer.SetCompletionOffset(offset) }
}

// New returns a parser over file. state may be nil, in which case the parser
// owns a fresh one. If state carries a saved position inside file, parsing
// resumes there rather than at offset zero.
//
// errs may be nil to suppress diagnostics during speculative parses.
func New(file *source.File, errs *report.Report, state *PersistentState, opts ...Option) *Parser {
	p := newRangeParser(file, errs, 0, file.Len())
	if state != nil {
		p.state = state
		p.state.acquire()
	}

	for _, opt := range opts {
		opt(p)
	}

	if pos := p.state.TakePosition(); pos.IsValid() && file.Contains(pos.Loc) {
		p.restorePosition(pos)
	}
	return p
}

// newRangeParser builds a parser whose lexer is confined to a byte range of
// file, with a fresh persistent state. Interpolated-string segments parse
// through these.
func newRangeParser(file *source.File, errs *report.Report, start, end int) *Parser {
	p := &Parser{
		file:     file,
		errs:     errs,
		state:    NewPersistentState(),
		lexer:    NewLexerRange(file, errs, false, start, end),
		declared: make(map[string]source.Location),
	}
	p.state.acquire()

	// The sentinel keeps the first real lexing step unambiguous. It cannot
	// be Unknown, since the lexer produces that kind.
	p.Tok = token.Token{Kind: token.Unprimed}
	return p
}

// SetCompletionCallbacks installs the code-completion observer for this
// parser. The delayed-parse scheduler calls this on sub-parsers it creates.
func (p *Parser) SetCompletionCallbacks(cb CompletionCallbacks) {
	p.completion = cb
}

// prime lexes the first token if the cursor still holds the sentinel.
func (p *Parser) prime() {
	if p.Tok.Is(token.Unprimed) {
		p.lexer.Lex(&p.Tok)
		p.PreviousLoc = p.Tok.Loc
	}
}

// PeekToken returns the token after the current one without advancing.
func (p *Parser) PeekToken() token.Token {
	p.prime()
	return p.lexer.Peek()
}

// ConsumeToken advances past the current token and returns that token's
// location. Consuming past EOF is a bug in the caller, not a parse error.
func (p *Parser) ConsumeToken() source.Location {
	p.prime()
	if p.Tok.Is(token.EOF) {
		panic("kestrel/parser: consuming past end of input")
	}
	loc := p.Tok.Loc
	p.PreviousLoc = p.Tok.End()
	p.lexer.Lex(&p.Tok)
	return loc
}

// ConsumeIf consumes the current token only if it has the given kind.
func (p *Parser) ConsumeIf(k token.Kind) bool {
	p.prime()
	if p.Tok.IsNot(k) {
		return false
	}
	p.ConsumeToken()
	return true
}

// ParseToken consumes a token of kind k and returns its location. If the
// current token has a different kind, it emits the given diagnostic and
// fails without consuming anything.
func (p *Parser) ParseToken(k token.Kind, format string, args ...any) (source.Location, bool) {
	p.prime()
	if p.Tok.Is(k) {
		return p.ConsumeToken(), true
	}
	p.errs.Errorf(p.tokSpan(), format, args...)
	return 0, false
}

// ParseMatchingToken consumes the closing delimiter k. On failure it emits
// the given diagnostic plus a secondary snippet pointing at the opening
// delimiter it was supposed to match.
func (p *Parser) ParseMatchingToken(k token.Kind, openLoc source.Location, format string, args ...any) (source.Location, bool) {
	var opening string
	switch k {
	case token.RParen:
		opening = "("
	case token.RBracket:
		opening = "["
	case token.RBrace:
		opening = "{"
	default:
		panic(fmt.Sprintf("kestrel/parser: %v is not a matching delimiter kind", k))
	}

	p.prime()
	if p.Tok.Is(k) {
		return p.ConsumeToken(), true
	}
	p.errs.Errorf(p.tokSpan(), format, args...).
		With(report.Snippetf(p.spanAt(openLoc, 1), "to match this opening `%s`", opening))
	return 0, false
}

// ConsumeStartingLess splits a single '<' off the current operator token.
// If the token is exactly "<" it is consumed whole; otherwise the remainder
// (e.g. the second '<' of "<<") is re-lexed in place. This is how
// generic-argument delimiters are told apart from shift and comparison
// operators without a separate lexer mode.
func (p *Parser) ConsumeStartingLess() source.Location {
	if !p.Tok.StartsWithLess() {
		panic("kestrel/parser: token does not start with '<'")
	}
	return p.consumeStartingChar()
}

// ConsumeStartingGreater splits a single '>' off the current operator token.
func (p *Parser) ConsumeStartingGreater() source.Location {
	if !p.Tok.StartsWithGreater() {
		panic("kestrel/parser: token does not start with '>'")
	}
	return p.consumeStartingChar()
}

func (p *Parser) consumeStartingChar() source.Location {
	if p.Tok.Length() == 1 {
		return p.ConsumeToken()
	}
	loc := p.Tok.Loc
	p.PreviousLoc = loc.Advance(1)
	p.Tok = p.lexer.TokenAt(loc.Advance(1))
	return loc
}

// Checkpoint is a captured cursor position. Restoring it reproduces
// bit-identical subsequent tokenization, because lexing is a pure function
// of (buffer, offset, mode flags). The pending completion offset is one of
// those mode flags: the lexer clears it when it emits the marker, so a
// speculative parse that crosses it must hand it back on restore.
type Checkpoint struct {
	tok            token.Token
	offset         int
	completeOffset int
}

// CaptureCheckpoint snapshots the cursor.
func (p *Parser) CaptureCheckpoint() Checkpoint {
	p.prime()
	return Checkpoint{
		tok:            p.Tok,
		offset:         p.lexer.cursor,
		completeOffset: p.lexer.completeOffset,
	}
}

// RestoreCheckpoint rewinds the cursor to a previously captured position.
// Any lookahead state is discarded along with it.
func (p *Parser) RestoreCheckpoint(cp Checkpoint) {
	p.Tok = cp.tok
	p.lexer.seek(cp.offset)
	p.lexer.completeOffset = cp.completeOffset
}

// SavePosition records the cursor in the persistent state, for a future
// parser instance over the same file to resume from.
func (p *Parser) SavePosition() {
	p.state.MarkPosition(p.positionForState())
}

// positionForState converts the cursor into a position that a future parser
// instance can resume from via PersistentState.
func (p *Parser) positionForState() ParserPos {
	p.prime()
	return ParserPos{Loc: p.Tok.Loc, PrevLoc: p.PreviousLoc}
}

// restorePosition re-seats the cursor at a position saved by a previous
// parser instance over the same buffer.
func (p *Parser) restorePosition(pos ParserPos) {
	p.lexer.seek(p.file.Offset(pos.Loc))
	p.lexer.Lex(&p.Tok)
	p.PreviousLoc = pos.PrevLoc
}

// tokSpan returns the span of the current token. EOF tokens span zero bytes:
// their text, if any, belongs to the enclosing lexing range.
func (p *Parser) tokSpan() source.Span {
	if p.Tok.Is(token.EOF) {
		return p.spanAt(p.Tok.Loc, 0)
	}
	return p.spanAt(p.Tok.Loc, p.Tok.Length())
}

func (p *Parser) spanAt(loc source.Location, length int) source.Span {
	start := p.file.Offset(loc)
	return p.file.Span(start, start+length)
}
