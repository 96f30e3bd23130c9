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

// Package report provides the diagnostics sink for the front end.
//
// A [Report] is an append-only collection of [Diagnostic] values. How
// diagnostics are rendered for users is not this package's concern; it only
// records structured information (spans, notes, and suggested edits) for a
// renderer or an IDE integration to consume.
//
// A nil *Report is a valid sink that discards everything, which speculative
// re-parses use to probe input without emitting diagnostics.
package report

import (
	"fmt"

	"github.com/kestrel-lang/kestrel/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	Error Level = 1 + iota
	Warning
	Remark
)

// Diagnostic is a single reported problem, annotated with source spans and
// optionally with machine-applicable suggested edits (fix-its).
type Diagnostic struct {
	// The error that prompted this diagnostic. Its Error() return is used
	// as the diagnostic message.
	Err error

	// The kind of diagnostic this is.
	Level Level

	// Annotated source code spans. The first is the primary one.
	Annotations []Annotation

	// Notes to include after the annotations.
	Notes []string

	// Suggested edits attached to this diagnostic.
	Suggestions []Suggestion

	// Set on diagnostics handed out by a nil *Report so that chained
	// option application quietly goes nowhere.
	discard bool
}

// Annotation is an annotated source code span within a [Diagnostic].
type Annotation struct {
	Span    source.Span
	Message string
	// Whether this is the primary span for the diagnostic.
	Primary bool
}

// Primary returns this diagnostic's primary annotation, if it has one.
func (d *Diagnostic) Primary() Annotation {
	for _, a := range d.Annotations {
		if a.Primary {
			return a
		}
	}
	return Annotation{}
}

// With applies the given options to this diagnostic and returns it, for
// chaining off of [Report.Errorf] and friends.
//
// Calling With on a diagnostic returned by a nil *Report is a no-op.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	if d == nil || d.discard {
		return d
	}
	for _, option := range options {
		if option != nil {
			option(d)
		}
	}
	return d
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
type DiagnosticOption func(*Diagnostic)

// Snippetf returns a DiagnosticOption that adds an annotated span to a
// diagnostic. The first annotation added becomes the primary one.
func Snippetf(span source.Span, format string, args ...any) DiagnosticOption {
	a := Annotation{Span: span, Message: fmt.Sprintf(format, args...)}
	return func(d *Diagnostic) {
		a.Primary = len(d.Annotations) == 0
		d.Annotations = append(d.Annotations, a)
	}
}

// Notef returns a DiagnosticOption that appends a prose note to a diagnostic.
func Notef(format string, args ...any) DiagnosticOption {
	return func(d *Diagnostic) {
		d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
	}
}

// Report is the append-only collection of diagnostics produced by one parse.
//
// Report values are not safe for concurrent use; the driver gives each
// translation unit its own Report and merges afterward.
type Report struct {
	Diagnostics []Diagnostic

	errors int
}

// Errorf appends an error diagnostic and returns it so that options can be
// chained with [Diagnostic.With].
func (r *Report) Errorf(span source.Span, format string, args ...any) *Diagnostic {
	return r.push(span, Error, fmt.Errorf(format, args...))
}

// Warnf appends a warning diagnostic and returns it for chaining.
func (r *Report) Warnf(span source.Span, format string, args ...any) *Diagnostic {
	return r.push(span, Warning, fmt.Errorf(format, args...))
}

// HasErrors reports whether any error-level diagnostics were recorded.
func (r *Report) HasErrors() bool {
	return r != nil && r.errors > 0
}

// Messages returns the rendered one-line messages of all diagnostics, in the
// order they were reported. Intended for tests and simple frontends.
func (r *Report) Messages() []string {
	if r == nil {
		return nil
	}
	msgs := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		if p := d.Primary(); p.Span.File != nil {
			msgs[i] = fmt.Sprintf("%s: %v", p.Span, d.Err)
		} else {
			msgs[i] = d.Err.Error()
		}
	}
	return msgs
}

func (r *Report) push(span source.Span, level Level, err error) *Diagnostic {
	if r == nil {
		// Suppressed sink. Hand back a detached diagnostic so that chained
		// With calls have something harmless to write to.
		return &Diagnostic{discard: true}
	}
	d := Diagnostic{Err: err, Level: level}
	if span.File != nil {
		d.Annotations = []Annotation{{Span: span, Primary: true}}
	}
	if level == Error {
		r.errors++
	}
	r.Diagnostics = append(r.Diagnostics, d)
	return &r.Diagnostics[len(r.Diagnostics)-1]
}
