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
	"github.com/kestrel-lang/kestrel/ast"
	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
	"github.com/kestrel-lang/kestrel/token"
	"github.com/kestrel-lang/kestrel/walk"
)

// CompletionCallbacks observes an interactive completion session. A parser
// with callbacks installed parses completion markers as ordinary expression
// nodes; DoneParsing fires once the parse containing the marker ends.
type CompletionCallbacks interface {
	DoneParsing()
}

// CompletionFactory builds the callbacks for a sub-parser created during
// delayed parsing. A nil factory means no completion session is active.
type CompletionFactory func(*Parser) CompletionCallbacks

// ParseFuncBodyDelayed parses the deferred body of fd, which must belong to
// this parser's file and persistent state. The cursor is re-seated at the
// body's opening brace; tokens there lex bit-identically to the main parse,
// so the resulting block is the one the main parse would have built.
//
// A declaration whose body is already parsed, or one this state holds no
// obligation for, is left untouched.
func (p *Parser) ParseFuncBodyDelayed(fd *ast.FuncDecl) {
	if fd.BodyKind != ast.BodyUnparsed {
		return
	}
	loc, ok := p.state.TakeDelayedBody(fd)
	if !ok {
		return
	}

	p.restorePosition(ParserPos{Loc: loc, PrevLoc: loc})
	if p.Tok.IsNot(token.LBrace) {
		// The obligation's location no longer lexes as a brace; the state was
		// built against a different buffer. Nothing sound to do.
		return
	}
	fd.Body = p.parseBlock()
	fd.BodyKind = ast.BodyParsed
	fd.BodyLoc = 0
}

// ParseTopLevelDelayed redoes the top-level item recorded at an interactive
// completion point and appends the result to unit. It requires completion
// callbacks: delayed parsing of top-level code only makes sense for code
// completion, since a batch parse already consumed the surrounding items.
func (p *Parser) ParseTopLevelDelayed(unit *ast.File) {
	if p.completion == nil {
		panic("kestrel/parser: delayed top-level parsing requires completion callbacks")
	}
	pos := p.state.TakeDelayedTopLevel()
	if !pos.IsValid() {
		return
	}
	p.restorePosition(pos)
	unit.Decls = append(unit.Decls, p.parseTopLevelCode())
}

// PerformDelayedParsing discharges every delayed obligation recorded in
// state during unit's main parse: each unparsed function body in declaration
// order, plus the pending top-level item if there is one. Each obligation
// gets a fresh sub-parser over file sharing errs and state; opts are applied
// to every sub-parser, so a completion offset from the main parse can be
// re-applied here.
//
// When factory is non-nil, every sub-parser gets its own callbacks and
// DoneParsing fires after that sub-parse completes. The pending top-level
// item requires a factory; without one it is left pending.
func PerformDelayedParsing(file *source.File, unit *ast.File, errs *report.Report, state *PersistentState, factory CompletionFactory, opts ...Option) {
	walk.Decls(unit.Decls, func(d ast.Decl) bool {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.BodyKind != ast.BodyUnparsed {
			return true
		}
		sub := New(file, errs, state, opts...)
		var cb CompletionCallbacks
		if factory != nil {
			cb = factory(sub)
			sub.SetCompletionCallbacks(cb)
		}
		sub.ParseFuncBodyDelayed(fd)
		if cb != nil {
			cb.DoneParsing()
		}
		return true
	})

	if state.HasDelayedTopLevel() && factory != nil {
		sub := New(file, errs, state, opts...)
		cb := factory(sub)
		sub.SetCompletionCallbacks(cb)
		sub.ParseTopLevelDelayed(unit)
		cb.DoneParsing()
	}
}
