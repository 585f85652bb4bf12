// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"math/big"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/emitter"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/source"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// reportError prints err to stderr, and — when err carries a source span —
// follows it with the enclosing source line, truncated to the terminal's
// width so a long line never wraps illegibly across a narrow pane. This is
// the CLI-facing counterpart to the "precise enough for editors to
// highlight" intent of the parser's diagnostics (§4.2), applied to a
// terminal instead of an editor gutter.
func reportError(err error) {
	fmt.Fprintln(os.Stderr, err)

	se, ok := err.(*source.SyntaxError)
	if !ok {
		return
	}

	line := se.SourceFile().Line(se.Span())
	fmt.Fprintln(os.Stderr, truncateToWidth(line, terminalWidth()))
}

// terminalWidth reports the width of the terminal attached to stderr, or 80
// columns when stderr is not a terminal (e.g. redirected to a file) or the
// ioctl fails.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}

	return w
}

func truncateToWidth(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}

	return string(r[:width-1]) + "…"
}

// GetFlag gets an expected bool flag, or exits on error.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits on error.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// compile runs the full lex -> parse -> analyse -> emit pipeline over a
// single Zinc source file, following spec.md §6.1 (root module file; mod
// resolution is an out-of-scope collaborator concern, so only one file is
// read here).
func compile(filename string) (*bytecode.Program, error) {
	set := source.NewSet()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("zincc: %w", err)
	}

	file, err := set.Add(filename, data)
	if err != nil {
		return nil, fmt.Errorf("zincc: %w", err)
	}

	module, err := syntax.Parse(file)
	if err != nil {
		return nil, err
	}

	global := semantic.NewScope(nil)

	analyzer := semantic.NewAnalyzer(file, global)

	if _, err := analyzer.Analyze(module); err != nil {
		return nil, err
	}

	if w := analyzer.Warnings(); w != nil {
		fmt.Fprintln(os.Stderr, w)
	}

	prog, err := emitter.NewEmitter(global, analyzer.Types).Emit(module)
	if err != nil {
		return nil, err
	}

	return prog, nil
}

// loadProgram loads a program either by compiling a ".zn" source file or by
// deserialising an already-built program blob, dispatching on extension.
func loadProgram(filename string) (*bytecode.Program, error) {
	if hasSuffix(filename, ".zn") {
		return compile(filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("zincc: %w", err)
	}

	prog := &bytecode.Program{}
	if err := prog.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("zincc: %w", err)
	}

	return prog, nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// writeProgram serialises prog to filename, as binary unless --json was
// given (in which case the human-readable disassembly mirror is written
// instead — see bytecode.Program.MarshalJSON).
func writeProgram(cmd *cobra.Command, prog *bytecode.Program, filename string) error {
	var (
		data []byte
		err  error
	)

	if GetFlag(cmd, "json") {
		data, err = prog.MarshalJSON()
	} else {
		data, err = prog.MarshalBinary()
	}

	if err != nil {
		return fmt.Errorf("zincc: %w", err)
	}

	return os.WriteFile(filename, data, 0o644)
}

// readInputJSON parses a JSON document on disk into the plain-Go-value shape
// pkg/vm.Bind expects (bool/*big.Int/[]any/map[string]any), converting
// segmentio/encoding/json's float64 numbers to *big.Int since Zinc integers
// and field elements may exceed float64's exact range.
func readInputJSON(filename string) (any, error) {
	if filename == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("zincc: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("zincc: decoding %s: %w", filename, err)
	}

	return normalizeJSON(raw), nil
}

func normalizeJSON(v any) any {
	switch vv := v.(type) {
	case float64:
		bi, _ := big.NewFloat(vv).Int(nil)
		return bi
	case string:
		if bi, ok := new(big.Int).SetString(vv, 0); ok {
			return bi
		}

		return vv
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = normalizeJSON(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = normalizeJSON(e)
		}

		return out
	default:
		return vv
	}
}

// writeJSON marshals v to filename using the fast segmentio codec (§1.3/§2).
func writeJSON(filename string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("zincc: %w", err)
	}

	return os.WriteFile(filename, data, 0o644)
}

// readJSON unmarshals the file at filename into v.
func readJSON(filename string, v any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("zincc: %w", err)
	}

	return json.Unmarshal(data, v)
}
