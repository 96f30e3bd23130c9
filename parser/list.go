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
	"fmt"

	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
	"github.com/kestrel-lang/kestrel/token"
)

// ParseList parses a separator-delimited sequence ending at the closing
// delimiter rightK, whose opener is at leftLoc. parseElement parses one
// element and reports whether it succeeded; it runs once per element and its
// failures are folded into the result without stopping the list.
//
// The separator must be Comma or Semi. When optionalSep is false, a missing
// separator produces one diagnostic with a fix-it inserting it after the
// previous token, and parsing continues. Stray doubled separators are
// likewise diagnosed, with removal fix-its, and skipped. closeFormat is the
// diagnostic used when the closing delimiter is missing.
//
// Returns the close delimiter's location and whether any part of the list
// was invalid. Every iteration either consumes at least one token or
// returns, so the loop always terminates.
func (p *Parser) ParseList(rightK token.Kind, leftLoc source.Location, sepK token.Kind, optionalSep bool, closeFormat string, parseElement func() bool) (source.Location, bool) {
	if sepK != token.Comma && sepK != token.Semi {
		panic(fmt.Sprintf("kestrel/parser: %v is not a list separator kind", sepK))
	}

	p.prime()
	if p.Tok.Is(rightK) {
		return p.ConsumeToken(), false
	}

	sep := sepK.Spelling()
	invalid := false
	for {
		// Doubled or leading separators: diagnose and drop them.
		for p.Tok.Is(sepK) {
			p.errs.Errorf(p.tokSpan(), "unexpected `%s` separator", sep).
				With(report.RemoveSpan(p.tokSpan()))
			p.ConsumeToken()
		}

		startLoc := p.Tok.Loc
		if !parseElement() {
			invalid = true
		}

		if p.Tok.Is(rightK) {
			break
		}

		// If the lexer stopped at an artificial EOF whose text is the close
		// delimiter, this list is the host expression of an interpolated
		// string segment; the delimiter lives just outside our lexing range.
		// Accept it as the close. This is deliberately narrow: a plain EOF
		// here is still an unterminated list.
		if p.Tok.Is(token.EOF) && p.Tok.Text == rightK.Spelling() {
			return p.Tok.Loc, invalid
		}

		if p.ConsumeIf(sepK) {
			continue
		}

		if !optionalSep {
			p.errs.Errorf(p.tokSpan(), "expected `%s` separator", sep).
				With(report.InsertTextAt(p.spanAt(p.PreviousLoc, 0), sep))
			invalid = true
		}

		// If the element callback consumed nothing and no separator turned
		// up, force progress so the loop cannot spin.
		if p.Tok.Loc == startLoc {
			p.SkipUntil(rightK, sepK, false)
			if p.Tok.Is(rightK) {
				break
			}
			if p.Tok.Is(token.EOF) || p.Tok.Is(token.CodeComplete) {
				return 0, true
			}
			p.ConsumeIf(sepK)
		}
	}

	rightLoc, ok := p.ParseMatchingToken(rightK, leftLoc, "%s", closeFormat)
	return rightLoc, invalid || !ok
}
