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

package walk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-lang/kestrel/ast"
	"github.com/kestrel-lang/kestrel/walk"
)

// tree builds:
//
//	func outer {
//	    func inner {}
//	    if ... { let a } else { while ... { func deepest {} } }
//	}
//	let top
func tree() []ast.Decl {
	deepest := &ast.FuncDecl{Name: "deepest", Body: &ast.Block{}}
	inner := &ast.FuncDecl{Name: "inner", Body: &ast.Block{}}
	outer := &ast.FuncDecl{Name: "outer", Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Decl: inner},
		&ast.IfStmt{
			Then: &ast.Block{Stmts: []ast.Stmt{
				&ast.DeclStmt{Decl: &ast.BindDecl{Name: "a"}},
			}},
			Else: &ast.Block{Stmts: []ast.Stmt{
				&ast.WhileStmt{Body: &ast.Block{Stmts: []ast.Stmt{
					&ast.DeclStmt{Decl: deepest},
				}}},
			}},
		},
	}}}
	return []ast.Decl{outer, &ast.BindDecl{Name: "top"}}
}

func names(decls []ast.Decl, visit func(ast.Decl) bool) []string {
	var got []string
	walk.Decls(decls, func(d ast.Decl) bool {
		switch d := d.(type) {
		case *ast.FuncDecl:
			got = append(got, d.Name)
		case *ast.BindDecl:
			got = append(got, d.Name)
		}
		return visit(d)
	})
	return got
}

func TestDeclsVisitsNestedInOrder(t *testing.T) {
	t.Parallel()

	got := names(tree(), func(ast.Decl) bool { return true })
	assert.Equal(t, []string{"outer", "inner", "a", "deepest", "top"}, got)
}

func TestDeclsStopsDescent(t *testing.T) {
	t.Parallel()

	// Refusing to descend into a declaration skips its children but not its
	// siblings.
	got := names(tree(), func(d ast.Decl) bool {
		fd, ok := d.(*ast.FuncDecl)
		return !ok || fd.Name != "outer"
	})
	assert.Equal(t, []string{"outer", "top"}, got)
}
