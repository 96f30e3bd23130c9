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

import "github.com/kestrel-lang/kestrel/token"

// The skip family advances the cursor past ill-formed input to a token from
// which parsing can soundly resume. All variants stop as early as possible
// at a structurally meaningful boundary, so that recovery loses as little
// subsequent text as it can, and all are no-ops when already positioned on a
// stop condition.

// SkipSingle consumes one logical unit: an opening bracket is consumed
// together with everything up to and including its matching closer (nesting
// balances through the recursion in SkipUntil), while any other token is
// consumed alone. A code-completion marker is consumed only if the caller
// did not ask to stop at one.
func (p *Parser) SkipSingle(stopAtCodeComplete bool) {
	p.prime()
	switch p.Tok.Kind {
	case token.LParen:
		p.ConsumeToken()
		p.SkipUntil(token.RParen, token.Unknown, stopAtCodeComplete)
		p.ConsumeIf(token.RParen)
	case token.LBrace:
		p.ConsumeToken()
		p.SkipUntil(token.RBrace, token.Unknown, stopAtCodeComplete)
		p.ConsumeIf(token.RBrace)
	case token.LBracket:
		p.ConsumeToken()
		p.SkipUntil(token.RBracket, token.Unknown, stopAtCodeComplete)
		p.ConsumeIf(token.RBracket)
	case token.CodeComplete:
		if !stopAtCodeComplete {
			p.ConsumeToken()
		}
	case token.EOF:
		// Nothing left to skip.
	default:
		p.ConsumeToken()
	}
}

// SkipUntil skips to the next occurrence of t1 or t2, or to EOF. An Unknown
// target is inert, so callers pass it to mean "no target in this slot"; the
// lexer does emit Unknown tokens for garbage input, and those are skipped
// like any other token, never stopped at. Passing Unknown for both targets
// means "skip nothing".
func (p *Parser) SkipUntil(t1, t2 token.Kind, stopAtCodeComplete bool) {
	if t1 == token.Unknown && t2 == token.Unknown {
		return
	}

	p.prime()
	for p.Tok.IsNot(token.EOF) &&
		(t1 == token.Unknown || p.Tok.IsNot(t1)) &&
		(t2 == token.Unknown || p.Tok.IsNot(t2)) &&
		(!stopAtCodeComplete || p.Tok.IsNot(token.CodeComplete)) {
		p.SkipSingle(stopAtCodeComplete)
	}
}

// SkipUntilAnyOperator skips to the next operator token or EOF.
func (p *Parser) SkipUntilAnyOperator() {
	p.prime()
	for p.Tok.IsNot(token.EOF) && !p.Tok.IsAnyOperator() {
		p.SkipSingle(false)
	}
}

// SkipUntilDeclRBrace skips to the next '}' or to a token that starts a new
// declaration. Used for recovering inside a malformed declaration body.
func (p *Parser) SkipUntilDeclRBrace() {
	p.prime()
	for p.Tok.IsNot(token.EOF) && p.Tok.IsNot(token.RBrace) &&
		!isStartOfDecl(p.Tok, p.PeekToken()) {
		p.SkipSingle(false)
	}
}

// SkipUntilDeclStmtRBrace is SkipUntilDeclRBrace, additionally stopping at
// tokens that start a statement.
func (p *Parser) SkipUntilDeclStmtRBrace(stopAtCodeComplete bool) {
	p.prime()
	for p.Tok.IsNot(token.EOF) && p.Tok.IsNot(token.RBrace) &&
		!isStartOfStmt(p.Tok) &&
		!isStartOfDecl(p.Tok, p.PeekToken()) &&
		(!stopAtCodeComplete || p.Tok.IsNot(token.CodeComplete)) {
		p.SkipSingle(stopAtCodeComplete)
	}
}
