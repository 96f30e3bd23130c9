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

// Package golden runs file-system-driven test corpora: each .ks file under a
// corpus root is one test case, and its expected outputs live next to it in
// files with an extra extension.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes one test corpus: a table-driven test whose table is a
// directory tree of Kestrel source files.
type Corpus struct {
	// Root of the corpus, relative to the test file that calls [Corpus.Run].
	Root string

	// Environment variable consulted for refresh mode. When set, it is a
	// doublestar glob of test names whose expected outputs are rewritten
	// from the test's actual outputs instead of compared.
	Refresh string

	// Extension (without dot) of files that define a test case.
	Extension string

	// Extra extensions of the per-case output files, e.g. "tokens" for
	// foo.ks.tokens. A missing output file means the output is expected to
	// be empty.
	Outputs []string

	// Test runs one case and returns one string per entry in Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Run enumerates the corpus and runs each case as a subtest.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)

	var cases []string
	err := filepath.Walk(root, func(p string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.TrimPrefix(path.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("golden: error walking corpus root %q: %v", root, err)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: invalid refresh glob %q", refresh)
		}
	}
	if refresh != "" {
		// Refreshed outputs must not pass CI by accident.
		t.Logf("golden: refreshing expected outputs because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, casePath := range cases {
		name, _ := filepath.Rel(testDir, casePath)
		t.Run(name, func(t *testing.T) {
			text, err := os.ReadFile(casePath)
			if err != nil {
				t.Fatalf("golden: error reading input %q: %v", casePath, err)
			}

			results := c.Test(t, name, string(text))
			if len(results) != len(c.Outputs) {
				t.Fatalf("golden: test returned %d outputs, corpus declares %d", len(results), len(c.Outputs))
			}

			refreshThis, _ := doublestar.Match(refresh, name)
			for i, ext := range c.Outputs {
				outPath := fmt.Sprint(casePath, ".", ext)
				if refreshThis {
					c.write(t, outPath, results[i])
					continue
				}

				want, err := os.ReadFile(outPath)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("golden: error reading expected output %q: %v", outPath, err)
					continue
				}
				if diff := diff(results[i], string(want)); diff != "" {
					t.Errorf("output mismatch for %q:\n%s", outPath, diff)
				}
			}
		})
	}
}

func (c Corpus) write(t *testing.T, path, text string) {
	if text == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: error deleting output %q: %v", path, err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o660); err != nil {
		t.Errorf("golden: error writing output %q: %v", path, err)
	}
}

func diff(got, want string) string {
	if got == want {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return text
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("golden: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
