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

package report

import "github.com/kestrel-lang/kestrel/source"

// Edit is a single machine-applicable source edit: replace the text covered
// by [Start, End) with Replace. Offsets are relative to the span of the
// enclosing [Suggestion].
//
// A zero-width edit (Start == End) is an insertion; an edit with an empty
// Replace is a deletion.
type Edit struct {
	Start, End int
	Replace    string
}

// Suggestion is a collection of edits attached to a diagnostic, presented to
// the user as one actionable fix.
type Suggestion struct {
	Message string
	Span    source.Span
	Edits   []Edit
}

// SuggestEdits returns a DiagnosticOption that attaches suggested edits,
// applied against the given span, to a diagnostic.
func SuggestEdits(span source.Span, message string, edits ...Edit) DiagnosticOption {
	return func(d *Diagnostic) {
		d.Suggestions = append(d.Suggestions, Suggestion{
			Message: message,
			Span:    span,
			Edits:   edits,
		})
	}
}

// InsertTextAt is shorthand for a single-edit suggestion inserting text at
// the start of span.
func InsertTextAt(span source.Span, text string) DiagnosticOption {
	return SuggestEdits(span, "insert `"+text+"`", Edit{Replace: text})
}

// RemoveSpan is shorthand for a single-edit suggestion deleting the text the
// span covers.
func RemoveSpan(span source.Span) DiagnosticOption {
	return SuggestEdits(span, "remove `"+span.Text()+"`", Edit{End: span.End - span.Start})
}
