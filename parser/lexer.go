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
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
	"github.com/kestrel-lang/kestrel/token"
)

// operatorChars are the characters an operator token may consist of. '<' and
// '>' are ordinary operator characters; the parser splits them off when it
// needs generic-argument delimiters.
const operatorChars = "+-*/%<>=!&|^~?."

var keywords = map[string]token.Kind{
	"func":   token.KwFunc,
	"let":    token.KwLet,
	"var":    token.KwVar,
	"return": token.KwReturn,
	"if":     token.KwIf,
	"else":   token.KwElse,
	"while":  token.KwWhile,
	"true":   token.KwTrue,
	"false":  token.KwFalse,
	"nil":    token.KwNil,
}

// Lexer converts a byte range of a source file into tokens.
//
// Lexing is a pure function of (buffer, offset, mode flags): re-creating a
// lexer at the same offset with the same flags reproduces the same token
// sequence, which is what makes cursor checkpoints restorable.
type Lexer struct {
	file *source.File
	errs *report.Report // nil suppresses diagnostics

	keepComments bool
	cursor, end  int

	// Byte offset of an interactive completion point, or -1. When the
	// cursor reaches it, the lexer emits a single zero-length
	// CodeComplete token.
	completeOffset int
}

// NewLexer returns a lexer over the whole file.
func NewLexer(file *source.File, errs *report.Report, keepComments bool) *Lexer {
	return NewLexerRange(file, errs, keepComments, 0, file.Len())
}

// NewLexerRange returns a lexer over file's byte range [start, end).
func NewLexerRange(file *source.File, errs *report.Report, keepComments bool, start, end int) *Lexer {
	return &Lexer{
		file:           file,
		errs:           errs,
		keepComments:   keepComments,
		cursor:         start,
		end:            end,
		completeOffset: -1,
	}
}

// SetCompletionOffset arranges for a CodeComplete token to be emitted when
// lexing reaches the given file-local offset.
func (l *Lexer) SetCompletionOffset(offset int) {
	l.completeOffset = offset
}

// Lex writes the next token into tok, advancing the lexer. At the end of the
// lexed range it writes an EOF token and keeps returning it.
func (l *Lexer) Lex(tok *token.Token) {
	*tok = l.next()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	savedCursor, savedComplete := l.cursor, l.completeOffset
	tok := l.next()
	l.cursor, l.completeOffset = savedCursor, savedComplete
	return tok
}

// TokenAt re-lexes a single token starting at loc and positions the lexer
// immediately after it. The parser uses this to split angle-bracket
// characters off of longer operator tokens.
func (l *Lexer) TokenAt(loc source.Location) token.Token {
	l.cursor = l.file.Offset(loc)
	return l.next()
}

// seek rewinds (or fast-forwards) the lexer to a file-local offset.
func (l *Lexer) seek(offset int) {
	l.cursor = offset
}

func (l *Lexer) next() token.Token {
	for {
		if l.cursor == l.completeOffset {
			// Emit the marker exactly once, then fall through to ordinary
			// lexing at the same offset.
			l.completeOffset = -1
			return token.Token{Kind: token.CodeComplete, Loc: l.loc(l.cursor)}
		}
		if l.cursor >= l.end {
			return l.eofToken()
		}

		start := l.cursor
		c := l.pop()
		switch {
		case strings.ContainsRune(" \t\r\n\f\v", c):
			l.takeWhile(func(r rune) bool {
				return strings.ContainsRune(" \t\r\n\f\v", r)
			})
			continue

		case c == '/' && l.peekRune() == '/':
			l.seekPast("\n")
			if l.keepComments {
				return l.newToken(token.Comment, start)
			}
			continue

		case c == '/' && l.peekRune() == '*':
			l.pop() // The *.
			if !l.seekPast("*/") {
				l.errorf(start, l.cursor, "unterminated block comment")
			}
			if l.keepComments {
				return l.newToken(token.Comment, start)
			}
			continue

		case c == '_' || isIdentStart(c):
			l.takeWhile(isIdentContinue)
			tok := l.newToken(token.Ident, start)
			if kw, ok := keywords[tok.Text]; ok {
				tok.Kind = kw
			}
			return tok

		case c >= '0' && c <= '9':
			l.lexNumber()
			return l.newToken(token.Number, start)

		case c == '"':
			return l.lexString(start)

		case c == '(':
			return l.newToken(token.LParen, start)
		case c == ')':
			return l.newToken(token.RParen, start)
		case c == '{':
			return l.newToken(token.LBrace, start)
		case c == '}':
			return l.newToken(token.RBrace, start)
		case c == '[':
			return l.newToken(token.LBracket, start)
		case c == ']':
			return l.newToken(token.RBracket, start)
		case c == ',':
			return l.newToken(token.Comma, start)
		case c == ';':
			return l.newToken(token.Semi, start)
		case c == ':':
			return l.newToken(token.Colon, start)

		case strings.ContainsRune(operatorChars, c):
			l.takeWhile(func(r rune) bool {
				if r == '/' {
					// Don't run into a trailing comment.
					next := l.peekRuneAt(l.cursor + 1)
					if next == '/' || next == '*' {
						return false
					}
				}
				return strings.ContainsRune(operatorChars, r)
			})
			return l.newToken(token.Operator, start)

		default:
			// Consume whole grapheme clusters of unrecognized input so a
			// single diagnostic covers the run, however many runes wide.
			l.cursor = start
			for gs := uniseg.NewGraphemes(l.rest()); gs.Next(); {
				g := gs.Str()
				r, _ := utf8.DecodeRuneInString(g)
				if isRecognized(r) {
					break
				}
				l.cursor += len(g)
			}
			if l.cursor == start {
				l.cursor += utf8.RuneLen(c)
			}
			tok := l.newToken(token.Unknown, start)
			l.errorf(start, l.cursor, "unrecognized character sequence %q", tok.Text)
			return tok
		}
	}
}

// lexNumber consumes the remainder of a numeric literal. The first digit has
// already been consumed. Malformed numbers still become Number tokens; value
// legalization is not the lexer's job.
func (l *Lexer) lexNumber() {
	allowSign := false
	for {
		r := l.peekRune()
		if (r == '+' || r == '-') && !allowSign {
			return
		}
		allowSign = false
		if r != '.' && r != '_' && r != '+' && r != '-' &&
			(r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return
		}
		if r == 'e' || r == 'E' {
			allowSign = true
		}
		l.pop()
	}
}

// lexString consumes a string literal. start is the offset of the opening
// quote, already consumed. Interpolations `\( ... )` are scanned with paren
// balancing but kept inside the single String token; splitting them apart is
// [StringSegments]'s job.
func (l *Lexer) lexString(start int) token.Token {
	for l.cursor < l.end {
		c := l.pop()
		switch c {
		case '"':
			return l.newToken(token.String, start)
		case '\n':
			l.cursor-- // Leave the newline for the next token.
			l.errorf(start, l.cursor, "unterminated string literal")
			return l.newToken(token.String, start)
		case '\\':
			if l.peekRune() == '(' {
				l.pop()
				l.skipBalancedParens()
				continue
			}
			if l.cursor < l.end {
				l.pop() // Whatever the escaped character is.
			}
		}
	}
	l.errorf(start, l.cursor, "unterminated string literal")
	return l.newToken(token.String, start)
}

// skipBalancedParens consumes up to and including the ')' matching an
// already-consumed '('. Nested strings inside the interpolation are skipped
// as whole literals.
func (l *Lexer) skipBalancedParens() {
	depth := 1
	for l.cursor < l.end && depth > 0 {
		switch l.pop() {
		case '(':
			depth++
		case ')':
			depth--
		case '"':
			l.lexString(l.cursor - 1)
		}
	}
}

func (l *Lexer) newToken(kind token.Kind, start int) token.Token {
	return token.Token{
		Kind: kind,
		Text: l.file.Text()[start:l.cursor],
		Loc:  l.loc(start),
	}
}

// eofToken builds the EOF token for this range. When the range ends before
// the underlying buffer does, the token's text is the rune just past the
// range; the list parser relies on this to detect that a nested
// interpolation parse ran up against its closing delimiter.
func (l *Lexer) eofToken() token.Token {
	tok := token.Token{Kind: token.EOF, Loc: l.loc(l.end)}
	if text := l.file.Text(); l.end < len(text) {
		r, size := utf8.DecodeRuneInString(text[l.end:])
		if r != utf8.RuneError {
			tok.Text = text[l.end : l.end+size]
		}
	}
	return tok
}

func (l *Lexer) loc(offset int) source.Location {
	return l.file.Location(offset)
}

func (l *Lexer) rest() string {
	return l.file.Text()[l.cursor:l.end]
}

func (l *Lexer) peekRune() rune {
	return l.peekRuneAt(l.cursor)
}

func (l *Lexer) peekRuneAt(offset int) rune {
	if offset >= l.end {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.file.Text()[offset:l.end])
	return r
}

func (l *Lexer) pop() rune {
	r := l.peekRune()
	if r < 0 {
		return -1
	}
	l.cursor += utf8.RuneLen(r)
	return r
}

func (l *Lexer) takeWhile(f func(rune) bool) {
	for {
		r := l.peekRune()
		if r < 0 || !f(r) {
			return
		}
		l.pop()
	}
}

// seekPast advances the cursor past the next occurrence of needle. Returns
// false, leaving the cursor at the end of the range, if needle never occurs.
func (l *Lexer) seekPast(needle string) bool {
	if idx := strings.Index(l.rest(), needle); idx >= 0 {
		l.cursor += idx + len(needle)
		return true
	}
	l.cursor = l.end
	return false
}

func (l *Lexer) errorf(start, end int, format string, args ...any) {
	l.errs.Errorf(l.file.Span(start, end), format, args...)
}

// isRecognized reports whether r can begin some real token.
func isRecognized(r rune) bool {
	return r == '_' || r == '"' || isIdentStart(r) || (r >= '0' && r <= '9') ||
		strings.ContainsRune("()[]{},;:", r) ||
		strings.ContainsRune(operatorChars, r) ||
		strings.ContainsRune(" \t\r\n\f\v", r)
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentContinue(r rune) bool {
	return r == '_' || isIdentStart(r) || (r >= '0' && r <= '9')
}
