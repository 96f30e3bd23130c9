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

// Package ast defines the abstract syntax tree the parser produces.
//
// The node set is deliberately small: it exists to give the parsing engine
// real handles to hang locations, delayed bodies, and recovery results off
// of, not to model every corner of the language.
package ast

import "github.com/kestrel-lang/kestrel/source"

// Node is implemented by every AST node.
type Node interface {
	// Loc returns the location of the node's first token.
	Loc() source.Location
}

// Decl is a declaration node.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// File is one parsed translation unit.
type File struct {
	Path  string
	Decls []Decl
}

// BodyKind describes the parse state of a function body.
type BodyKind int8

const (
	// BodyParsed is a fully parsed body.
	BodyParsed BodyKind = iota
	// BodyUnparsed is a body that the main parse skipped; the delayed-parse
	// scheduler fills it in later.
	BodyUnparsed
)

// FuncDecl is `func name(params) { body }`.
type FuncDecl struct {
	FuncLoc source.Location
	Name    string
	NameLoc source.Location
	Params  []*Param

	Body     *Block
	BodyKind BodyKind
	// Location of the body's opening brace. Valid while BodyKind is
	// BodyUnparsed; the delayed sub-parser resumes here.
	BodyLoc source.Location
}

func (d *FuncDecl) Loc() source.Location { return d.FuncLoc }
func (d *FuncDecl) declNode()            {}

// Param is a single function parameter.
type Param struct {
	Name    string
	NameLoc source.Location
}

func (p *Param) Loc() source.Location { return p.NameLoc }

// BindDecl is `let name = value` or `var name = value`.
type BindDecl struct {
	KeywordLoc source.Location
	Mutable    bool // var rather than let
	Name       string
	NameLoc    source.Location
	Value      Expr
}

func (d *BindDecl) Loc() source.Location { return d.KeywordLoc }
func (d *BindDecl) declNode()            {}

// TopLevelCode wraps executable statements appearing at the top level of a
// unit, so that the declaration walker can visit them uniformly.
type TopLevelCode struct {
	Body *Block
}

func (d *TopLevelCode) Loc() source.Location { return d.Body.Loc() }
func (d *TopLevelCode) declNode()            {}

// BadDecl is a placeholder for a declaration that failed to parse.
type BadDecl struct {
	FromLoc source.Location
}

func (d *BadDecl) Loc() source.Location { return d.FromLoc }
func (d *BadDecl) declNode()            {}

// Block is a brace-delimited statement list. A Block is also a statement, so
// that bare braces and else-blocks need no wrapper node.
type Block struct {
	LBrace source.Location
	Stmts  []Stmt
	RBrace source.Location
}

func (b *Block) Loc() source.Location { return b.LBrace }
func (b *Block) stmtNode()            {}

// DeclStmt is a declaration in statement position.
type DeclStmt struct {
	Decl Decl
}

func (s *DeclStmt) Loc() source.Location { return s.Decl.Loc() }
func (s *DeclStmt) stmtNode()            {}

// ReturnStmt is `return expr?`.
type ReturnStmt struct {
	ReturnLoc source.Location
	Value     Expr // may be nil
}

func (s *ReturnStmt) Loc() source.Location { return s.ReturnLoc }
func (s *ReturnStmt) stmtNode()            {}

// IfStmt is `if cond { ... }`, optionally with an else clause. Else is nil,
// a *Block, or another *IfStmt for an else-if chain.
type IfStmt struct {
	IfLoc   source.Location
	Cond    Expr
	Then    *Block
	ElseLoc source.Location
	Else    Stmt
}

func (s *IfStmt) Loc() source.Location { return s.IfLoc }
func (s *IfStmt) stmtNode()            {}

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	WhileLoc source.Location
	Cond     Expr
	Body     *Block
}

func (s *WhileStmt) Loc() source.Location { return s.WhileLoc }
func (s *WhileStmt) stmtNode()            {}

// ExprStmt is an expression in statement position.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Loc() source.Location { return s.X.Loc() }
func (s *ExprStmt) stmtNode()            {}

// Ident is a name reference.
type Ident struct {
	Name    string
	NameLoc source.Location
}

func (e *Ident) Loc() source.Location { return e.NameLoc }
func (e *Ident) exprNode()            {}

// NumberLit is a numeric literal, kept as source text.
type NumberLit struct {
	Text    string
	TextLoc source.Location
}

func (e *NumberLit) Loc() source.Location { return e.TextLoc }
func (e *NumberLit) exprNode()            {}

// StringLit is a string literal without interpolation, including its quotes.
type StringLit struct {
	Text    string
	TextLoc source.Location
}

func (e *StringLit) Loc() source.Location { return e.TextLoc }
func (e *StringLit) exprNode()            {}

// InterpolatedString is a string literal with `\(expr)` interpolations.
// Parts alternate between StringLit fragments and interpolated expressions.
type InterpolatedString struct {
	TextLoc source.Location
	Parts   []Expr
}

func (e *InterpolatedString) Loc() source.Location { return e.TextLoc }
func (e *InterpolatedString) exprNode()            {}

// TupleExpr is `(a, b, ...)`; a one-element tuple is a parenthesized
// expression.
type TupleExpr struct {
	LParen source.Location
	Elems  []Expr
	RParen source.Location
}

func (e *TupleExpr) Loc() source.Location { return e.LParen }
func (e *TupleExpr) exprNode()            {}

// ArrayExpr is `[a, b, ...]`.
type ArrayExpr struct {
	LBracket source.Location
	Elems    []Expr
	RBracket source.Location
}

func (e *ArrayExpr) Loc() source.Location { return e.LBracket }
func (e *ArrayExpr) exprNode()            {}

// CallExpr is `fn(args)`.
type CallExpr struct {
	Fn     Expr
	LParen source.Location
	Args   []Expr
	RParen source.Location
}

func (e *CallExpr) Loc() source.Location { return e.Fn.Loc() }
func (e *CallExpr) exprNode()            {}

// GenericExpr is `base<args>`, e.g. an identifier specialized with generic
// arguments.
type GenericExpr struct {
	Base   Expr
	LAngle source.Location
	Args   []Expr
	RAngle source.Location
}

func (e *GenericExpr) Loc() source.Location { return e.Base.Loc() }
func (e *GenericExpr) exprNode()            {}

// BinaryExpr is `lhs op rhs`. Operator sequences parse left-associatively;
// precedence is not this engine's concern.
type BinaryExpr struct {
	Op    string
	OpLoc source.Location
	LHS   Expr
	RHS   Expr
}

func (e *BinaryExpr) Loc() source.Location { return e.LHS.Loc() }
func (e *BinaryExpr) exprNode()            {}

// CodeCompletionExpr marks the interactive completion point in expression
// position.
type CodeCompletionExpr struct {
	MarkerLoc source.Location
}

func (e *CodeCompletionExpr) Loc() source.Location { return e.MarkerLoc }
func (e *CodeCompletionExpr) exprNode()            {}

// BadExpr is a placeholder for an expression that failed to parse.
type BadExpr struct {
	FromLoc source.Location
}

func (e *BadExpr) Loc() source.Location { return e.FromLoc }
func (e *BadExpr) exprNode()            {}
