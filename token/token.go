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

// Package token defines the lexical vocabulary of Kestrel source text.
package token

import (
	"fmt"

	"github.com/kestrel-lang/kestrel/source"
)

// Kind identifies what kind of token a particular [Token] is.
type Kind byte

const (
	// Unprimed is the sentinel kind a parser's cursor holds before the first
	// token has been lexed. The lexer never produces it; in particular it is
	// distinct from Unknown, which the lexer does produce.
	Unprimed Kind = iota

	Unknown      // Unrecognized garbage in the input.
	EOF          // End of the lexed range.
	CodeComplete // Zero-length marker at an interactive completion point.

	Ident
	Number
	String
	Operator
	Comment

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi
	Colon

	KwFunc
	KwLet
	KwVar
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwTrue
	KwFalse
	KwNil
)

// IsKeyword reports whether this kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwFunc && k <= KwNil
}

// Spelling returns the fixed spelling of punctuation and keyword kinds, and
// "" for kinds whose text varies.
func (k Kind) Spelling() string {
	switch k {
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Comma:
		return ","
	case Semi:
		return ";"
	case Colon:
		return ":"
	case KwFunc:
		return "func"
	case KwLet:
		return "let"
	case KwVar:
		return "var"
	case KwReturn:
		return "return"
	case KwIf:
		return "if"
	case KwElse:
		return "else"
	case KwWhile:
		return "while"
	case KwTrue:
		return "true"
	case KwFalse:
		return "false"
	case KwNil:
		return "nil"
	default:
		return ""
	}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Unprimed:
		return "Unprimed"
	case Unknown:
		return "Unknown"
	case EOF:
		return "EOF"
	case CodeComplete:
		return "CodeComplete"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Operator:
		return "Operator"
	case Comment:
		return "Comment"
	default:
		if s := k.Spelling(); s != "" {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprintf("token.Kind(%d)", int(k))
	}
}

// Token is a single lexical unit. Tokens are immutable values whose Text
// borrows directly into the source buffer.
type Token struct {
	Kind Kind
	// The text this token covers. For EOF tokens produced when lexing a
	// truncated sub-range, this holds the text immediately after the range,
	// which the list parser uses to recognize an interpolation boundary.
	Text string
	Loc  source.Location
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsNot reports whether the token does not have the given kind.
func (t Token) IsNot(k Kind) bool { return t.Kind != k }

// Length returns the token's length in bytes.
func (t Token) Length() int { return len(t.Text) }

// End returns the location one past the token's last byte.
//
// EOF tokens report their own location: their text, if any, belongs to an
// enclosing lexing range, not to the token.
func (t Token) End() source.Location {
	if t.Kind == EOF {
		return t.Loc
	}
	return t.Loc.Advance(len(t.Text))
}

// IsAnyOperator reports whether this is an operator token.
func (t Token) IsAnyOperator() bool { return t.Kind == Operator }

// StartsWithLess reports whether the token is an operator whose first
// character is '<', such as "<" itself or "<<".
func (t Token) StartsWithLess() bool {
	return t.Kind == Operator && len(t.Text) > 0 && t.Text[0] == '<'
}

// StartsWithGreater reports whether the token is an operator whose first
// character is '>'.
func (t Token) StartsWithGreater() bool {
	return t.Kind == Operator && len(t.Text) > 0 && t.Text[0] == '>'
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	return fmt.Sprintf("%v(%q)", t.Kind, t.Text)
}
