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

// SegmentKind distinguishes the two kinds of string-literal segment.
type SegmentKind int8

const (
	// SegmentLiteral is a run of literal text between quotes and
	// interpolations.
	SegmentLiteral SegmentKind = iota
	// SegmentInterpolated is the expression range inside `\( ... )`.
	SegmentInterpolated
)

// StringSegment is one piece of a split string literal. Offset and Length
// are file-local; literal segments exclude the surrounding quotes and the
// `\(` `)` interpolation markers.
type StringSegment struct {
	Kind   SegmentKind
	Offset int
	Length int
}

// StringSegments splits a string-literal token into its alternating literal
// and interpolated segments. The result always begins and ends with a
// literal segment, either of which may be empty.
func StringSegments(file *source.File, tok token.Token) []StringSegment {
	if tok.IsNot(token.String) {
		panic(fmt.Sprintf("kestrel/parser: StringSegments on %v token", tok.Kind))
	}

	text := tok.Text
	base := file.Offset(tok.Loc)
	seg := func(kind SegmentKind, start, end int) StringSegment {
		return StringSegment{Kind: kind, Offset: base + start, Length: end - start}
	}

	var segments []StringSegment
	litStart := 1 // Past the opening quote.
	i := 1
	for i < len(text) {
		switch {
		case text[i] == '"':
			// Closing quote.
			segments = append(segments, seg(SegmentLiteral, litStart, i))
			return segments

		case text[i] == '\\' && i+1 < len(text) && text[i+1] == '(':
			segments = append(segments, seg(SegmentLiteral, litStart, i))
			exprStart := i + 2
			i = exprStart + matchParen(text[exprStart:])
			segments = append(segments, seg(SegmentInterpolated, exprStart, i))
			if i < len(text) { // Skip the closing paren.
				i++
			}
			litStart = i

		case text[i] == '\\':
			i += 2

		default:
			i++
		}
	}

	// Unterminated literal; whatever is left is the trailing segment.
	return append(segments, seg(SegmentLiteral, litStart, len(text)))
}

// matchParen returns the index of the ')' matching an implicit '(' just
// before s, or len(s) if unbalanced. Nested string literals are skipped
// whole, mirroring the lexer's balanced-paren scan, so parentheses inside
// them never count toward the balance.
func matchParen(s string) int {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '\\':
			i++
		case '"':
			i = skipNestedString(s, i+1)
		}
	}
	return len(s)
}

// skipNestedString returns the index of the quote closing the string literal
// whose opening quote sits just before s[i], skipping escapes and nested
// interpolations, or len(s) when unterminated.
func skipNestedString(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case '"':
			return i
		case '\\':
			if i+1 < len(s) && s[i+1] == '(' {
				i += 2
				i += matchParen(s[i:])
			} else {
				i++
			}
		}
		i++
	}
	return i
}

// StringPartTokens expands a string-literal token into the token sequence
// the parser consumes: one synthesized string-literal token per literal
// segment, with the first and last extended to include their quote
// characters, and the re-tokenized contents of each interpolated segment
// spliced in between, comments preserved.
func StringPartTokens(file *source.File, tok token.Token, errs *report.Report) []token.Token {
	segments := StringSegments(file, tok)
	text := file.Text()

	var toks []token.Token
	for i, seg := range segments {
		isFirst := i == 0
		isLast := i == len(segments)-1

		if seg.Kind == SegmentInterpolated {
			toks = append(toks, Tokenize(file, seg.Offset, seg.Offset+seg.Length, true, false, errs)...)
			continue
		}

		start, end := seg.Offset, seg.Offset+seg.Length
		if isFirst {
			start-- // Include the opening quote.
		}
		if isLast && end < len(text) && text[end] == '"' {
			end++ // Include the closing quote, when the literal has one.
		}
		toks = append(toks, token.Token{
			Kind: token.String,
			Text: text[start:end],
			Loc:  file.Location(start),
		})
	}
	return toks
}

// Tokenize converts file's byte range [startOffset, endOffset) into tokens.
// If both offsets are zero the whole file is tokenized. The terminating EOF
// token is not included in the result.
//
// When splitInterpolated is set, each string-literal token is replaced by
// its [StringPartTokens] expansion.
//
// errs may be nil to suppress lexical diagnostics, e.g. for speculative
// re-tokenization.
func Tokenize(file *source.File, startOffset, endOffset int, keepComments, splitInterpolated bool, errs *report.Report) []token.Token {
	if startOffset == 0 && endOffset == 0 {
		endOffset = file.Len()
	}

	l := NewLexerRange(file, errs, keepComments, startOffset, endOffset)
	var toks []token.Token
	for {
		var tok token.Token
		l.Lex(&tok)
		if tok.Is(token.EOF) {
			return toks
		}
		if tok.Is(token.String) && splitInterpolated {
			toks = append(toks, StringPartTokens(file, tok, errs)...)
			continue
		}
		toks = append(toks, tok)
	}
}
