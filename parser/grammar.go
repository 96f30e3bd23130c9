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
)

// ParseUnit parses the whole file into a translation unit. It never fails:
// ill-formed input produces diagnostics plus Bad* placeholder nodes, and
// parsing resumes at the next synchronization point.
func (p *Parser) ParseUnit() *ast.File {
	p.prime()
	unit := &ast.File{Path: p.file.Path()}

	for p.Tok.IsNot(token.EOF) {
		switch {
		case p.Tok.Is(token.Semi):
			p.ConsumeToken()

		case p.Tok.Is(token.CodeComplete) && p.completion == nil:
			// A completion marker surfaced with no observer installed. Record
			// where it sits so a later parser instance, created with
			// callbacks, can redo just this item, and move on.
			if !p.state.HasDelayedTopLevel() {
				p.state.DelayTopLevel(p.positionForState())
			}
			p.ConsumeToken()

		case isStartOfDecl(p.Tok, p.PeekToken()):
			d := p.parseDecl()
			p.declareTopLevel(d)
			unit.Decls = append(unit.Decls, d)

		case isStartOfStmt(p.Tok):
			unit.Decls = append(unit.Decls, p.parseTopLevelCode())

		default:
			loc := p.Tok.Loc
			p.errs.Errorf(p.tokSpan(), "expected declaration or statement, found %v", p.Tok.Kind)
			p.SkipUntilDeclStmtRBrace(false)
			p.ConsumeIf(token.RBrace) // A stray '}' is not a sync point up here.
			unit.Decls = append(unit.Decls, &ast.BadDecl{FromLoc: loc})
		}
	}
	return unit
}

// declareTopLevel records a top-level value name, diagnosing redefinition.
func (p *Parser) declareTopLevel(d ast.Decl) {
	var name string
	var loc source.Location
	switch d := d.(type) {
	case *ast.FuncDecl:
		name, loc = d.Name, d.NameLoc
	case *ast.BindDecl:
		name, loc = d.Name, d.NameLoc
	}
	if name == "" || !loc.IsValid() {
		return
	}
	if prev, ok := p.declared[name]; ok {
		p.errs.Errorf(p.spanAt(loc, len(name)), "invalid redefinition of `%s`", name).
			With(report.Snippetf(p.spanAt(prev, len(name)), "`%s` previously declared here", name))
		return
	}
	p.declared[name] = loc
}

// parseTopLevelCode wraps one executable top-level statement in a
// TopLevelCode declaration, so the unit's children are uniformly Decls.
func (p *Parser) parseTopLevelCode() ast.Decl {
	start := p.Tok.Loc
	stmt := p.parseStmt()
	return &ast.TopLevelCode{Body: &ast.Block{
		LBrace: start,
		Stmts:  []ast.Stmt{stmt},
		RBrace: p.PreviousLoc,
	}}
}

func (p *Parser) parseDecl() ast.Decl {
	switch p.Tok.Kind {
	case token.KwFunc:
		return p.parseFuncDecl()
	case token.KwLet, token.KwVar:
		return p.parseBindDecl()
	default:
		loc := p.Tok.Loc
		p.errs.Errorf(p.tokSpan(), "expected declaration, found %v", p.Tok.Kind)
		p.SkipUntilDeclRBrace()
		return &ast.BadDecl{FromLoc: loc}
	}
}

// parseFuncDecl parses `func name(params) { body }`. The current token is
// the `func` keyword. With body delaying enabled, the body's tokens are
// skipped with brace balancing and a parse obligation is queued instead.
func (p *Parser) parseFuncDecl() ast.Decl {
	fd := &ast.FuncDecl{FuncLoc: p.ConsumeToken()}

	if p.Tok.Is(token.Ident) {
		fd.Name = p.Tok.Text
		fd.NameLoc = p.ConsumeToken()
	} else {
		p.errs.Errorf(p.tokSpan(), "expected name in function declaration")
	}

	if lparen, ok := p.ParseToken(token.LParen, "expected `(` in parameter list"); ok {
		p.ParseList(token.RParen, lparen, token.Comma, false,
			"expected `)` to close parameter list", func() bool {
				if p.Tok.IsNot(token.Ident) {
					p.errs.Errorf(p.tokSpan(), "expected parameter name")
					return false
				}
				param := &ast.Param{Name: p.Tok.Text}
				param.NameLoc = p.ConsumeToken()
				fd.Params = append(fd.Params, param)
				return true
			})
	} else {
		p.SkipUntil(token.LBrace, token.Unknown, false)
	}

	if p.Tok.IsNot(token.LBrace) {
		p.errs.Errorf(p.tokSpan(), "expected `{` to begin body of `%s`", fd.Name)
		return fd
	}

	if p.delayBodies {
		fd.BodyKind = ast.BodyUnparsed
		fd.BodyLoc = p.Tok.Loc
		p.state.DelayFunctionBody(fd, fd.BodyLoc)
		p.SkipSingle(false) // The balanced brace run.
		return fd
	}

	fd.Body = p.parseBlock()
	return fd
}

// parseBindDecl parses `let name = value` or `var name = value`. The
// initializer is optional; the `=` must be the bare assignment operator.
func (p *Parser) parseBindDecl() ast.Decl {
	kw := p.Tok.Kind.Spelling()
	bd := &ast.BindDecl{
		Mutable:    p.Tok.Is(token.KwVar),
		KeywordLoc: p.ConsumeToken(),
	}

	if p.Tok.Is(token.CodeComplete) {
		bd.Value = &ast.CodeCompletionExpr{MarkerLoc: p.ConsumeToken()}
		return bd
	}
	if p.Tok.IsNot(token.Ident) {
		p.errs.Errorf(p.tokSpan(), "expected name after `%s`", kw)
		p.SkipUntilDeclStmtRBrace(false)
		return &ast.BadDecl{FromLoc: bd.KeywordLoc}
	}
	bd.Name = p.Tok.Text
	bd.NameLoc = p.ConsumeToken()

	if p.Tok.Is(token.Operator) && p.Tok.Text == "=" {
		p.ConsumeToken()
		bd.Value = p.parseExpr()
	}
	return bd
}

// parseBlock parses a brace-delimited statement list. The current token is
// the opening brace.
func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.ConsumeToken()
	b := &ast.Block{LBrace: lbrace}

	for p.Tok.IsNot(token.RBrace) && p.Tok.IsNot(token.EOF) {
		switch {
		case p.Tok.Is(token.Semi):
			p.ConsumeToken()

		case isStartOfDecl(p.Tok, p.PeekToken()):
			b.Stmts = append(b.Stmts, &ast.DeclStmt{Decl: p.parseDecl()})

		case isStartOfStmt(p.Tok):
			b.Stmts = append(b.Stmts, p.parseStmt())

		default:
			p.errs.Errorf(p.tokSpan(), "expected statement, found %v", p.Tok.Kind)
			p.SkipUntilDeclStmtRBrace(false)
		}
	}

	b.RBrace, _ = p.ParseMatchingToken(token.RBrace, lbrace, "expected `}` to close block")
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.Tok.Kind {
	case token.KwReturn:
		rs := &ast.ReturnStmt{ReturnLoc: p.ConsumeToken()}
		if isStartOfExpr(p.Tok) {
			rs.Value = p.parseExpr()
		}
		return rs

	case token.KwIf:
		return p.parseIfStmt()

	case token.KwWhile:
		ws := &ast.WhileStmt{WhileLoc: p.ConsumeToken()}
		ws.Cond = p.parseCondition()
		ws.Body = p.parseBlockAfter("while")
		return ws

	case token.KwLet, token.KwVar, token.KwFunc:
		return &ast.DeclStmt{Decl: p.parseDecl()}

	case token.LBrace:
		return p.parseBlock()

	default:
		return &ast.ExprStmt{X: p.parseExpr()}
	}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	s := &ast.IfStmt{IfLoc: p.ConsumeToken()}
	s.Cond = p.parseCondition()
	s.Then = p.parseBlockAfter("if")

	if p.Tok.Is(token.KwElse) {
		s.ElseLoc = p.ConsumeToken()
		if p.Tok.Is(token.KwIf) {
			s.Else = p.parseIfStmt()
		} else {
			s.Else = p.parseBlockAfter("else")
		}
	}
	return s
}

// parseCondition parses a control-flow condition. When the condition fails
// to parse, skip forward to the body's opening brace so the body itself is
// not lost to recovery.
func (p *Parser) parseCondition() ast.Expr {
	cond := p.parseExpr()
	if _, bad := cond.(*ast.BadExpr); bad {
		p.SkipUntil(token.LBrace, token.RBrace, false)
	}
	return cond
}

// parseBlockAfter parses the brace-delimited body of a control-flow
// statement, diagnosing a missing opening brace without consuming anything.
func (p *Parser) parseBlockAfter(kw string) *ast.Block {
	if p.Tok.IsNot(token.LBrace) {
		p.errs.Errorf(p.tokSpan(), "expected `{` after `%s` condition", kw)
		return &ast.Block{LBrace: p.Tok.Loc, RBrace: p.Tok.Loc}
	}
	return p.parseBlock()
}

// parseExpr parses a binary-operator sequence. Operators are
// left-associative and unranked; precedence is a later pass's concern.
func (p *Parser) parseExpr() ast.Expr {
	lhs := p.parsePostfix()
	for p.Tok.IsAnyOperator() {
		op := p.Tok.Text
		opLoc := p.ConsumeToken()
		rhs := p.parsePostfix()
		lhs = &ast.BinaryExpr{Op: op, OpLoc: opLoc, LHS: lhs, RHS: rhs}
		if _, bad := rhs.(*ast.BadExpr); bad {
			break
		}
	}
	return lhs
}

// parsePostfix parses a primary expression followed by any number of call
// and generic-argument suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.Tok.Is(token.LParen):
			lp := p.ConsumeToken()
			call := &ast.CallExpr{Fn: x, LParen: lp}
			call.RParen, _ = p.ParseList(token.RParen, lp, token.Comma, false,
				"expected `)` to close argument list", func() bool {
					arg := p.parseExpr()
					call.Args = append(call.Args, arg)
					_, bad := arg.(*ast.BadExpr)
					return !bad
				})
			x = call

		case p.Tok.StartsWithLess() && p.startsGenericArgs():
			x = p.parseGenericArgs(x)

		default:
			return x
		}
	}
}

// startsGenericArgs decides whether a '<' at the cursor opens a
// generic-argument list rather than a comparison, by speculatively scanning
// ahead from a checkpoint. The speculation consumes nothing and emits no
// diagnostics of its own.
func (p *Parser) startsGenericArgs() bool {
	cp := p.CaptureCheckpoint()
	defer p.RestoreCheckpoint(cp)
	return p.skipGenericArgs()
}

// skipGenericArgs scans a candidate generic-argument list, reporting whether
// it closed with '>'. Only simple arguments (names and literals, themselves
// possibly generic) qualify; anything else means the '<' was an operator.
func (p *Parser) skipGenericArgs() bool {
	p.ConsumeStartingLess()
	for {
		switch p.Tok.Kind {
		case token.Ident, token.Number, token.String,
			token.KwTrue, token.KwFalse, token.KwNil:
			p.ConsumeToken()
		default:
			return false
		}
		if p.Tok.StartsWithLess() && !p.skipGenericArgs() {
			return false
		}
		if p.ConsumeIf(token.Comma) {
			continue
		}
		if p.Tok.StartsWithGreater() {
			p.ConsumeStartingGreater()
			return true
		}
		return false
	}
}

// parseGenericArgs parses `<arg, arg, ...>` as a suffix of base. Only called
// once startsGenericArgs has accepted the list, so the delimiters are known
// to balance.
func (p *Parser) parseGenericArgs(base ast.Expr) ast.Expr {
	g := &ast.GenericExpr{Base: base, LAngle: p.ConsumeStartingLess()}
	for {
		arg := p.parsePrimary()
		if p.Tok.StartsWithLess() {
			arg = p.parseGenericArgs(arg)
		}
		g.Args = append(g.Args, arg)
		if !p.ConsumeIf(token.Comma) {
			break
		}
	}
	g.RAngle = p.ConsumeStartingGreater()
	return g
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.Tok.Kind {
	case token.Ident:
		name := p.Tok.Text
		return &ast.Ident{Name: name, NameLoc: p.ConsumeToken()}

	case token.KwTrue, token.KwFalse, token.KwNil:
		name := p.Tok.Kind.Spelling()
		return &ast.Ident{Name: name, NameLoc: p.ConsumeToken()}

	case token.Number:
		text := p.Tok.Text
		return &ast.NumberLit{Text: text, TextLoc: p.ConsumeToken()}

	case token.String:
		return p.parseStringLiteral()

	case token.LParen:
		lp := p.ConsumeToken()
		t := &ast.TupleExpr{LParen: lp}
		t.RParen, _ = p.ParseList(token.RParen, lp, token.Comma, false,
			"expected `)` to close tuple", func() bool {
				elem := p.parseExpr()
				t.Elems = append(t.Elems, elem)
				_, bad := elem.(*ast.BadExpr)
				return !bad
			})
		return t

	case token.LBracket:
		lb := p.ConsumeToken()
		a := &ast.ArrayExpr{LBracket: lb}
		a.RBracket, _ = p.ParseList(token.RBracket, lb, token.Comma, false,
			"expected `]` to close array literal", func() bool {
				elem := p.parseExpr()
				a.Elems = append(a.Elems, elem)
				_, bad := elem.(*ast.BadExpr)
				return !bad
			})
		return a

	case token.CodeComplete:
		return &ast.CodeCompletionExpr{MarkerLoc: p.ConsumeToken()}

	default:
		// Don't consume: the caller's recovery decides what to skip.
		p.errs.Errorf(p.tokSpan(), "expected expression, found %v", p.Tok.Kind)
		return &ast.BadExpr{FromLoc: p.Tok.Loc}
	}
}

// parseStringLiteral expands the string-literal token under the cursor. A
// literal without interpolations becomes a StringLit; one with `\(expr)`
// segments becomes an InterpolatedString whose expression parts are parsed
// by a sub-parser confined to each segment's byte range.
func (p *Parser) parseStringLiteral() ast.Expr {
	tok := p.Tok
	loc := p.ConsumeToken()

	segments := StringSegments(p.file, tok)
	if len(segments) == 1 {
		return &ast.StringLit{Text: tok.Text, TextLoc: loc}
	}

	lit := &ast.InterpolatedString{TextLoc: loc}
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentLiteral:
			lit.Parts = append(lit.Parts, &ast.StringLit{
				Text:    p.file.Text()[seg.Offset : seg.Offset+seg.Length],
				TextLoc: p.file.Location(seg.Offset),
			})
		case SegmentInterpolated:
			lit.Parts = append(lit.Parts, p.parseInterpolatedSegment(seg))
		}
	}
	return lit
}

// parseInterpolatedSegment parses one `\( ... )` segment's contents as an
// expression, using a fresh parser whose lexer is confined to the segment.
// The confined lexer's EOF token carries the `)` just past the range, which
// is how list parses inside the segment know to stop at the boundary.
func (p *Parser) parseInterpolatedSegment(seg StringSegment) ast.Expr {
	sub := newRangeParser(p.file, p.errs, seg.Offset, seg.Offset+seg.Length)
	sub.completion = p.completion
	sub.prime()

	if sub.Tok.Is(token.EOF) {
		p.errs.Errorf(sub.tokSpan(), "expected expression in string interpolation")
		return &ast.BadExpr{FromLoc: p.file.Location(seg.Offset)}
	}
	expr := sub.parseExpr()
	if sub.Tok.IsNot(token.EOF) {
		p.errs.Errorf(sub.tokSpan(), "extra tokens after expression in string interpolation")
	}
	return expr
}
