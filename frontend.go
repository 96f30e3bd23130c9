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

// Package kestrel provides the compilation driver for the Kestrel front end:
// it resolves source files, parses them in parallel, and schedules delayed
// parsing of function bodies.
package kestrel

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/semaphore"

	"github.com/kestrel-lang/kestrel/ast"
	"github.com/kestrel-lang/kestrel/parser"
	"github.com/kestrel-lang/kestrel/report"
	"github.com/kestrel-lang/kestrel/source"
)

// Resolver turns a path into the text of the source file it names.
type Resolver interface {
	FindFileByPath(path string) (string, error)
}

// ResolverFunc adapts a function to the [Resolver] interface.
type ResolverFunc func(path string) (string, error)

// FindFileByPath implements [Resolver].
func (f ResolverFunc) FindFileByPath(path string) (string, error) { return f(path) }

type osResolver struct{}

func (osResolver) FindFileByPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

type fsResolver struct{ fsys fs.FS }

func (r fsResolver) FindFileByPath(path string) (string, error) {
	data, err := fs.ReadFile(r.fsys, path)
	return string(data), err
}

// Frontend parses batches of Kestrel source files.
//
// All files parsed by one Frontend, across any number of Parse calls, share
// one location address space; spans from different units can therefore be
// compared and resolved through [Frontend.Files].
type Frontend struct {
	// Resolver locates source text by path. Defaults to reading from the
	// operating system's file system.
	Resolver Resolver

	// MaxParallelism is the maximum number of files parsed concurrently.
	// Values less than one mean GOMAXPROCS.
	MaxParallelism int

	// DelayFunctionBodies makes the main parse of each unit skip function
	// bodies, leaving them to [Unit.PerformDelayedParsing].
	DelayFunctionBodies bool

	initOnce sync.Once
	set      *source.Set
}

// Unit is the result of parsing one source file. The AST, Report, and State
// belong exclusively to this unit; the File is registered with the shared
// location set.
type Unit struct {
	File   *source.File
	AST    *ast.File
	Report *report.Report
	State  *parser.PersistentState

	// Options re-applied to sub-parsers created for delayed parsing, such as
	// the completion offset of an interactive session.
	delayedOpts []parser.Option
}

// PerformDelayedParsing parses every function body the main parse skipped,
// plus the delayed top-level item of an interactive session if one is
// pending. factory may be nil outside completion sessions.
func (u *Unit) PerformDelayedParsing(factory parser.CompletionFactory) {
	parser.PerformDelayedParsing(u.File, u.AST, u.Report, u.State, factory, u.delayedOpts...)
}

// Files returns the location set shared by everything this Frontend parsed.
func (f *Frontend) Files() *source.Set {
	f.initOnce.Do(func() { f.set = source.NewSet() })
	return f.set
}

func (f *Frontend) resolver() Resolver {
	if f.Resolver != nil {
		return f.Resolver
	}
	return osResolver{}
}

// Parse parses the named files, in parallel up to MaxParallelism. The
// returned units correspond to paths one-to-one.
//
// An error is returned only for failures outside the input text, such as an
// unresolvable path or a canceled context; syntax problems land in each
// unit's Report instead.
func (f *Frontend) Parse(ctx context.Context, paths ...string) ([]*Unit, error) {
	return f.parseAll(ctx, f.resolver(), paths)
}

// ParseGlob parses every file in fsys matching the given doublestar pattern,
// such as "src/**/*.ks", in lexical path order.
func (f *Frontend) ParseGlob(ctx context.Context, fsys fs.FS, pattern string) ([]*Unit, error) {
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)
	return f.parseAll(ctx, fsResolver{fsys}, paths)
}

// ParseForCompletion parses a single file with an interactive completion
// marker at the given byte offset. The marker surfaces either directly in
// the unit's AST or as a delayed obligation discharged by
// [Unit.PerformDelayedParsing] with a callback factory.
func (f *Frontend) ParseForCompletion(ctx context.Context, path string, offset int) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unit, err := f.parseOne(f.resolver(), path, parser.CompletionOffset(offset))
	if err != nil {
		return nil, err
	}
	unit.delayedOpts = append(unit.delayedOpts, parser.CompletionOffset(offset))
	return unit, nil
}

func (f *Frontend) parseAll(ctx context.Context, resolver Resolver, paths []string) ([]*Unit, error) {
	par := f.MaxParallelism
	if par < 1 {
		par = runtime.GOMAXPROCS(0)
	}
	sem := semaphore.NewWeighted(int64(par))

	units := make([]*Unit, len(paths))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			unit, err := f.parseOne(resolver, path)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			units[i] = unit
		}(i, path)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return units, nil
}

func (f *Frontend) parseOne(resolver Resolver, path string, extra ...parser.Option) (*Unit, error) {
	text, err := resolver.FindFileByPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}

	file := f.Files().Add(path, text)
	errs := &report.Report{}
	state := parser.NewPersistentState()

	opts := extra
	if f.DelayFunctionBodies {
		opts = append(opts, parser.DelayFunctionBodies())
	}

	p := parser.New(file, errs, state, opts...)
	return &Unit{
		File:   file,
		AST:    p.ParseUnit(),
		Report: errs,
		State:  state,
	}, nil
}
