/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package driver runs the compilation pipeline end to end (spec §4.5):
// lex the main file and every module it imports, parse modules before
// main, prune unused module functions, and generate the main .c and each
// module's .h.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gmofishsauce/simc/internal/codegen"
	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/lexer"
	"github.com/gmofishsauce/simc/internal/module"
	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/parser"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

// DumpMode selects one of the debug dump modes accepted as simc's
// optional second CLI argument (spec §6).
type DumpMode string

const (
	NoDump                DumpMode = ""
	DumpTokens            DumpMode = "token"
	DumpOpcodes           DumpMode = "opcode"
	DumpTableAfterLexing  DumpMode = "table_after_lexing"
	DumpTableAfterParsing DumpMode = "table_after_parsing"
)

// Result is what a successful Run produces, mainly for tests: the output
// paths written plus the rendered source of each, in case a caller wants
// to inspect generated C without re-reading the files.
type Result struct {
	MainPath    string
	MainSource  string
	ModulePaths map[string]string // module name -> .h path
	ModuleSrc   map[string]string // module name -> rendered .h text
}

// Run compiles sourcePath to C. log receives phase-boundary tracing when
// non-nil (wired to logrus by cmd/simc's --verbose flag).
func Run(sourcePath string, dump DumpMode, log *logrus.Logger) (*Result, error) {
	if filepath.Ext(sourcePath) != ".simc" {
		diag.Fatal(diag.NoLine, "source file must have a .simc extension, got %q", sourcePath)
	}
	logf(log, "reading main source %s", sourcePath)
	mainSrc, err := os.ReadFile(sourcePath)
	if err != nil {
		diag.Fatal(diag.NoLine, "cannot read %q: %v", sourcePath, err)
	}

	table := symtab.New()
	moduleDir := filepath.Dir(sourcePath)

	logf(log, "lexing main file")
	mainLexer := lexer.New(sourcePath, string(mainSrc), table, moduleDir)
	mainTokens, modulePaths := mainLexer.Lex()

	reg := module.New()
	queue := append([]string(nil), modulePaths...)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if reg.Has(path) {
			continue
		}
		logf(log, "lexing module %s", path)
		src, err := os.ReadFile(path)
		if err != nil {
			diag.Fatal(diag.NoLine, "cannot read imported module %q: %v", path, err)
		}
		modLexer := lexer.New(path, string(src), table, moduleDir)
		toks, nested := modLexer.Lex()
		reg.Add(path, toks)
		queue = append(queue, nested...)
	}

	if dump == DumpTokens {
		dumpTokenStream(mainTokens, reg)
	}
	if dump == DumpTableAfterLexing {
		fmt.Print(table.String())
	}

	shared := parser.NewShared(table)

	logf(log, "parsing %d module(s)", len(reg.All()))
	for _, m := range reg.All() {
		p := parser.New(m.Path, m.Tokens, shared)
		m.Ops = p.Parse()
	}

	logf(log, "parsing main file")
	mainParser := parser.New(sourcePath, mainTokens, shared)
	mainOps := mainParser.Parse()

	if dump == DumpOpcodes {
		dumpOpcodeStream(mainOps, reg)
	}
	if dump == DumpTableAfterParsing {
		fmt.Print(table.String())
	}

	used := shared.UsedFunctions()
	for _, m := range reg.All() {
		before := len(m.Ops)
		m.Ops = prune(m.Ops, used)
		logf(log, "pruned module %s: %d -> %d opcodes", m.Name, before, len(m.Ops))
	}

	base := strings.TrimSuffix(sourcePath, ".simc")
	outPath := base + ".c"
	logf(log, "generating %s", outPath)
	mainOut := codegen.New(table).Generate(mainOps)
	if err := os.WriteFile(outPath, []byte(mainOut), 0o644); err != nil {
		diag.Fatal(diag.NoLine, "cannot write %q: %v", outPath, err)
	}

	result := &Result{
		MainPath:    outPath,
		MainSource:  mainOut,
		ModulePaths: make(map[string]string),
		ModuleSrc:   make(map[string]string),
	}
	for _, m := range reg.All() {
		hPath := filepath.Join(filepath.Dir(m.Path), m.Name+".h")
		logf(log, "generating %s", hPath)
		src := codegen.New(table).Generate(m.Ops)
		if err := os.WriteFile(hPath, []byte(src), 0o644); err != nil {
			diag.Fatal(diag.NoLine, "cannot write %q: %v", hPath, err)
		}
		result.ModulePaths[m.Name] = hPath
		result.ModuleSrc[m.Name] = src
	}
	return result, nil
}

func logf(log *logrus.Logger, format string, args ...any) {
	if log == nil {
		return
	}
	log.Debugf(format, args...)
}

// prune removes every func_decl...scope_over block whose function was
// never called (spec §4.5 step 4). It is idempotent: running it again on
// an already-pruned stream with the same used set is a no-op, since no
// FuncDecl in the result is absent from used.
func prune(ops []opcode.Op, used map[string]bool) []opcode.Op {
	out := make([]opcode.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		fd, ok := ops[i].(*opcode.FuncDecl)
		if !ok || used[fd.Name] {
			out = append(out, ops[i])
			i++
			continue
		}
		depth := 1
		i++
		for i < len(ops) && depth > 0 {
			switch ops[i].(type) {
			case *opcode.FuncDecl, *opcode.ScopeBegin:
				depth++
			case *opcode.ScopeOver:
				depth--
			}
			i++
		}
	}
	return out
}

func dumpTokenStream(mainTokens []token.Token, reg *module.Registry) {
	for _, m := range reg.All() {
		fmt.Printf("; module %s\n", m.Name)
		for _, t := range m.Tokens {
			fmt.Println(t.String())
		}
	}
	fmt.Println("; main")
	for _, t := range mainTokens {
		fmt.Println(t.String())
	}
}

func dumpOpcodeStream(ops []opcode.Op, reg *module.Registry) {
	for _, m := range reg.All() {
		fmt.Printf("; module %s\n", m.Name)
		for _, op := range m.Ops {
			fmt.Printf("%#v\n", op)
		}
	}
	fmt.Println("; main")
	for _, op := range ops {
		fmt.Printf("%#v\n", op)
	}
}
