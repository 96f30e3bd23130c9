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

// Package walk traverses declarations in a parsed unit.
package walk

import "github.com/kestrel-lang/kestrel/ast"

// Visitor visits one declaration. Returning false stops descent into that
// declaration's children; traversal of siblings continues either way.
type Visitor func(decl ast.Decl) bool

// Decls visits each declaration in decls recursively, in source order.
// Nested declarations are reached through function bodies and top-level code
// blocks.
func Decls(decls []ast.Decl, visit Visitor) {
	for _, d := range decls {
		decl(d, visit)
	}
}

func decl(d ast.Decl, visit Visitor) {
	if !visit(d) {
		return
	}
	switch d := d.(type) {
	case *ast.FuncDecl:
		block(d.Body, visit)
	case *ast.TopLevelCode:
		block(d.Body, visit)
	}
}

func block(b *ast.Block, visit Visitor) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		stmt(s, visit)
	}
}

func stmt(s ast.Stmt, visit Visitor) {
	switch s := s.(type) {
	case *ast.DeclStmt:
		decl(s.Decl, visit)
	case *ast.Block:
		block(s, visit)
	case *ast.IfStmt:
		block(s.Then, visit)
		if s.Else != nil {
			stmt(s.Else, visit)
		}
	case *ast.WhileStmt:
		block(s.Body, visit)
	}
}
