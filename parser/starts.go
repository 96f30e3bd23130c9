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

// Start-set predicates. Recovery skips stop at tokens these accept, so they
// deliberately err toward rejecting: a token wrongly accepted here makes
// recovery resume mid-garbage, while one wrongly rejected just skips a bit
// more text.

// isStartOfDecl reports whether tok can begin a declaration. next is the
// token after it, used to reject binding keywords not followed by a name.
func isStartOfDecl(tok, next token.Token) bool {
	switch tok.Kind {
	case token.KwFunc:
		return true
	case token.KwLet, token.KwVar:
		return next.Is(token.Ident) || next.Is(token.CodeComplete)
	default:
		return false
	}
}

// isStartOfStmt reports whether tok can begin a statement that is not a
// declaration.
func isStartOfStmt(tok token.Token) bool {
	switch tok.Kind {
	case token.KwReturn, token.KwIf, token.KwWhile, token.LBrace:
		return true
	default:
		return isStartOfExpr(tok)
	}
}

// isStartOfExpr reports whether tok can begin an expression.
func isStartOfExpr(tok token.Token) bool {
	switch tok.Kind {
	case token.Ident, token.Number, token.String,
		token.LParen, token.LBracket,
		token.KwTrue, token.KwFalse, token.KwNil,
		token.CodeComplete:
		return true
	default:
		return false
	}
}
