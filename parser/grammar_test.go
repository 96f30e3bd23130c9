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

	"github.com/kestrel-lang/kestrel/ast"
	"github.com/kestrel-lang/kestrel/parser"
	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
)

func parseUnit(t *testing.T, text string) (*ast.File, *report.Report) {
	t.Helper()
	p, _, errs := newParser(t, text)
	return p.ParseUnit(), errs
}

func TestParseUnitWellFormed(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, `
func add(a, b) {
    return a + b
}

let x = add(1, 2)

while x < 10 {
    x = x + 1
}

if x > 5 {
    print(x)
} else {
    print(0)
}
`)
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())
	require.Len(t, unit.Decls, 4)

	fd, ok := unit.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fd.Name)
	require.Len(t, fd.Params, 2)
	assert.Equal(t, "a", fd.Params[0].Name)
	assert.Equal(t, "b", fd.Params[1].Name)
	assert.Equal(t, ast.BodyParsed, fd.BodyKind)
	require.NotNil(t, fd.Body)
	require.Len(t, fd.Body.Stmts, 1)
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)

	bd, ok := unit.Decls[1].(*ast.BindDecl)
	require.True(t, ok)
	assert.Equal(t, "x", bd.Name)
	assert.False(t, bd.Mutable)
	call, ok := bd.Value.(*ast.CallExpr)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)

	top, ok := unit.Decls[2].(*ast.TopLevelCode)
	require.True(t, ok)
	require.Len(t, top.Body.Stmts, 1)
	loop, ok := top.Body.Stmts[0].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, loop.Body.Stmts, 1)

	top, ok = unit.Decls[3].(*ast.TopLevelCode)
	require.True(t, ok)
	cond, ok := top.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, cond.Else)
	elseBlock, ok := cond.Else.(*ast.Block)
	require.True(t, ok)
	assert.Len(t, elseBlock.Stmts, 1)
}

func TestParseElseIfChain(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "if a { } else if b { } else { }")
	assert.False(t, errs.HasErrors())

	top := unit.Decls[0].(*ast.TopLevelCode)
	first := top.Body.Stmts[0].(*ast.IfStmt)
	second, ok := first.Else.(*ast.IfStmt)
	require.True(t, ok)
	_, ok = second.Else.(*ast.Block)
	assert.True(t, ok)
}

func TestParseBindDecls(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "let a = 1\nvar b = a\nlet c")
	assert.False(t, errs.HasErrors())
	require.Len(t, unit.Decls, 3)

	a := unit.Decls[0].(*ast.BindDecl)
	assert.False(t, a.Mutable)
	_, ok := a.Value.(*ast.NumberLit)
	assert.True(t, ok)

	b := unit.Decls[1].(*ast.BindDecl)
	assert.True(t, b.Mutable)

	c := unit.Decls[2].(*ast.BindDecl)
	assert.Nil(t, c.Value) // Initializer is optional.
}

func TestRedefinitionDiagnostic(t *testing.T) {
	t.Parallel()

	_, errs := parseUnit(t, "let a = 1\nfunc a() {}")
	require.Len(t, errs.Diagnostics, 1)

	d := errs.Diagnostics[0]
	assert.Equal(t, "invalid redefinition of `a`", d.Err.Error())
	require.Len(t, d.Annotations, 2)
	assert.Equal(t, "`a` previously declared here", d.Annotations[1].Message)
	// Primary points at the new name, the note at the old one.
	assert.Greater(t, d.Annotations[0].Span.Start, d.Annotations[1].Span.Start)
}

func TestShadowingInBodiesIsAllowed(t *testing.T) {
	t.Parallel()

	// Only top-level names participate in redefinition checking.
	_, errs := parseUnit(t, "let a = 1\nfunc f() { let a = 2 }")
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())
}

func TestParseInterpolatedString(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, `let s = "x = \(add(x, 1))!"`)
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	bd := unit.Decls[0].(*ast.BindDecl)
	lit, ok := bd.Value.(*ast.InterpolatedString)
	require.True(t, ok)
	require.Len(t, lit.Parts, 3)

	head, ok := lit.Parts[0].(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "x = ", head.Text)

	call, ok := lit.Parts[1].(*ast.CallExpr)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)

	tail, ok := lit.Parts[2].(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "!", tail.Text)
}

func TestParsePlainString(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, `let s = "plain"`)
	assert.False(t, errs.HasErrors())
	bd := unit.Decls[0].(*ast.BindDecl)
	lit, ok := bd.Value.(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, `"plain"`, lit.Text)
}

func TestParseTuplesAndArrays(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "let t = (1, 2)\nlet e = []\nlet a = [1, (2), f(3)]")
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	tup := unit.Decls[0].(*ast.BindDecl).Value.(*ast.TupleExpr)
	assert.Len(t, tup.Elems, 2)

	empty := unit.Decls[1].(*ast.BindDecl).Value.(*ast.ArrayExpr)
	assert.Empty(t, empty.Elems)

	arr := unit.Decls[2].(*ast.BindDecl).Value.(*ast.ArrayExpr)
	require.Len(t, arr.Elems, 3)
	_, ok := arr.Elems[2].(*ast.CallExpr)
	assert.True(t, ok)
}

func TestParseGenericArguments(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "let v = make<Dict<K, V>, 8>(x)")
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	call := unit.Decls[0].(*ast.BindDecl).Value.(*ast.CallExpr)
	gen, ok := call.Fn.(*ast.GenericExpr)
	require.True(t, ok)
	assert.Equal(t, "make", gen.Base.(*ast.Ident).Name)
	require.Len(t, gen.Args, 2)

	inner, ok := gen.Args[0].(*ast.GenericExpr)
	require.True(t, ok)
	assert.Equal(t, "Dict", inner.Base.(*ast.Ident).Name)
	assert.Len(t, inner.Args, 2)
}

func TestParseNestedGenericCloser(t *testing.T) {
	t.Parallel()

	// The '>>' token is split between the two generic argument lists.
	unit, errs := parseUnit(t, "let v = a<b<c>>")
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	outer := unit.Decls[0].(*ast.BindDecl).Value.(*ast.GenericExpr)
	inner, ok := outer.Args[0].(*ast.GenericExpr)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Base.(*ast.Ident).Name)
	assert.True(t, outer.RAngle.IsValid())
	assert.True(t, inner.RAngle.IsValid())
	assert.Equal(t, inner.RAngle.Advance(1), outer.RAngle)
}

func TestComparisonIsNotGeneric(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "let r = a < b")
	assert.False(t, errs.HasErrors())

	bin, ok := unit.Decls[0].(*ast.BindDecl).Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<", bin.Op)
}

func TestTopLevelRecovery(t *testing.T) {
	t.Parallel()

	// The junk after the bad binding is skipped up to the next declaration
	// start, which parses cleanly.
	unit, errs := parseUnit(t, "let = 1\nfunc ok() {}")
	assert.True(t, errs.HasErrors())

	require.NotEmpty(t, unit.Decls)
	last, ok := unit.Decls[len(unit.Decls)-1].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "ok", last.Name)
}

func TestBlockRecovery(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "func f() {\n    ; ; §\n    return 1\n}\nlet after = 2")
	assert.True(t, errs.HasErrors())
	require.Len(t, unit.Decls, 2)

	fd := unit.Decls[0].(*ast.FuncDecl)
	require.NotNil(t, fd.Body)
	require.Len(t, fd.Body.Stmts, 1)
	_, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	assert.True(t, ok)

	_, ok = unit.Decls[1].(*ast.BindDecl)
	assert.True(t, ok)
}

func TestMissingBodyBrace(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "func f()\nlet x = 1")
	assert.True(t, errs.HasErrors())

	fd := unit.Decls[0].(*ast.FuncDecl)
	assert.Equal(t, "f", fd.Name)
	assert.Nil(t, fd.Body)

	_, ok := unit.Decls[1].(*ast.BindDecl)
	assert.True(t, ok)
}

func TestUnterminatedStringRecovery(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, "let s = \"abc\nlet t = 1")
	require.Len(t, errs.Diagnostics, 1)
	assert.Contains(t, errs.Diagnostics[0].Err.Error(), "unterminated string literal")

	require.Len(t, unit.Decls, 2)
	s := unit.Decls[0].(*ast.BindDecl)
	lit, ok := s.Value.(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, `"abc`, lit.Text)
}

func TestCompletionMarkerInExpression(t *testing.T) {
	t.Parallel()

	text := "let x = 12 + 3"
	f := source.NewSet().Add("test.ks", text)
	errs := &report.Report{}

	// Marker right where the initializer starts.
	p := parser.New(f, errs, nil, parser.CompletionOffset(8))
	p.SetCompletionCallbacks(completionRecorder{})
	unit := p.ParseUnit()

	bd := unit.Decls[0].(*ast.BindDecl)
	cc, ok := bd.Value.(*ast.CodeCompletionExpr)
	require.True(t, ok)
	assert.Equal(t, f.Location(8), cc.MarkerLoc)
}

type completionRecorder struct{ done *int }

func (c completionRecorder) DoneParsing() {
	if c.done != nil {
		*c.done++
	}
}

func TestGenericSpeculationKeepsCompletionMarker(t *testing.T) {
	t.Parallel()

	// The speculative generic-argument scan after `a<` crosses the
	// completion offset and rewinds; the marker must survive the rewind and
	// surface as an expression.
	f := source.NewSet().Add("test.ks", "let v = a<")
	errs := &report.Report{}
	p := parser.New(f, errs, nil, parser.CompletionOffset(10))
	p.SetCompletionCallbacks(completionRecorder{})

	unit := p.ParseUnit()
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	require.Len(t, unit.Decls, 1)
	bd, ok := unit.Decls[0].(*ast.BindDecl)
	require.True(t, ok)
	bin, ok := bd.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<", bin.Op)
	_, ok = bin.RHS.(*ast.CodeCompletionExpr)
	assert.True(t, ok)
}

func TestInterpolationWithNestedString(t *testing.T) {
	t.Parallel()

	unit, errs := parseUnit(t, `let s = "a\(f("("))b"`)
	assert.False(t, errs.HasErrors(), "%v", errs.Messages())

	require.Len(t, unit.Decls, 1)
	bd, ok := unit.Decls[0].(*ast.BindDecl)
	require.True(t, ok)
	lit, ok := bd.Value.(*ast.InterpolatedString)
	require.True(t, ok)
	require.Len(t, lit.Parts, 3)
	_, ok = lit.Parts[1].(*ast.CallExpr)
	assert.True(t, ok)
}
