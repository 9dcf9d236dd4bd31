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

// Package lexer turns simC source text into a token sequence plus a list
// of module paths discovered via `import` statements (spec §4.2). It is a
// single forward pass over the source bytes, terminated by a sentinel NUL,
// and it mutates the shared symbol table as new identifiers and constants
// are discovered.
package lexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

var debug = false

const nul = byte(0)

// cTypeNames are C type keywords recognized as an explicit-cast marker
// when immediately followed by '(' (spec §4.2).
var cTypeNames = map[string]bool{
	"int": true, "float": true, "double": true, "char": true, "bool": true,
	"long": true, "short": true, "unsigned": true, "signed": true, "void": true,
}

// cReservedWords are C keywords that may not be used as simc identifiers
// except in the explicit-cast position handled above.
var cReservedWords = map[string]bool{
	"int": true, "float": true, "double": true, "char": true, "void": true,
	"long": true, "short": true, "unsigned": true, "signed": true,
	"const": true, "typedef": true, "union": true, "enum": true, "goto": true,
	"static": true, "extern": true, "register": true, "volatile": true,
	"sizeof": true,
}

var mathConstants = map[string]string{
	"PI": "M_PI", "E": "M_E", "inf": "INFINITY", "NaN": "NAN",
}

// Lexer scans one source file. Construct with New and drive with Lex.
type Lexer struct {
	path      string
	src       string
	pos       int
	line      int
	table     *symtab.Table
	moduleDir string

	brackets []byte // stack of '(' '{' '[' for balance checking
	tokens   []token.Token
	modules  []string

	rawMode           bool
	expectModuleName  bool
}

// New constructs a lexer over src (the already-slurped file contents,
// without a trailing NUL; New appends the sentinel itself). moduleDir is
// the directory searched for `import`ed `.simc` files.
func New(path, src string, table *symtab.Table, moduleDir string) *Lexer {
	return &Lexer{
		path:      path,
		src:       src + string(nul),
		line:      1,
		table:     table,
		moduleDir: moduleDir,
	}
}

// Lex runs the scanner to completion, fatally erroring (via diag.Fatal) on
// any lexical problem, and returns the token sequence together with the
// source paths of any modules discovered via `import`.
func (lx *Lexer) Lex() ([]token.Token, []string) {
	for {
		if lx.rawMode {
			lx.scanRawLine()
			continue
		}
		c := lx.peek()
		switch {
		case c == nul:
			lx.finish()
			return lx.tokens, lx.modules
		case c == '\n':
			lx.pos++
			if len(lx.brackets) == 0 {
				lx.emit(token.New(token.Newline, lx.line))
			}
			lx.line++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '/' && lx.peekAt(1) == '/':
			lx.scanLineComment()
		case c == '/' && lx.peekAt(1) == '*':
			lx.scanBlockComment()
		case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
			lx.scanNumber()
		case c == '"' || c == '\'':
			lx.scanQuoted(c)
		case isIdentStart(c):
			lx.scanIdentifier()
		case c == '(' || c == '{' || c == '[':
			lx.openBracket(c)
		case c == ')' || c == '}' || c == ']':
			lx.closeBracket(c)
		default:
			lx.scanOperator()
		}
	}
}

func (lx *Lexer) finish() {
	if lx.rawMode {
		diag.Fatal(lx.line, "unmatched BEGIN_C: no END_C found")
	}
	if len(lx.brackets) != 0 {
		diag.Fatal(lx.line, "unbalanced %q at end of file", string(lx.brackets[len(lx.brackets)-1]))
	}
	lx.emit(token.New(token.EOF, lx.line))
}

func (lx *Lexer) emit(t token.Token) {
	lx.tokens = append(lx.tokens, t)
	if debug {
		os.Stderr.WriteString(t.String() + "\n")
	}
	if t.Kind == token.BeginC {
		lx.rawMode = true
	}
	lx.maybeCallEnd(t)
	lx.maybeImport(t)
}

// maybeCallEnd implements the call-end sentinel: after a balanced ')'
// whose next non-space character is newline, '{', '}' or ',', emit a
// synthetic call_end token sharing the ')' token's line (spec §4.2).
func (lx *Lexer) maybeCallEnd(t token.Token) {
	if t.Kind != token.RightParen {
		return
	}
	i := lx.pos
	for i < len(lx.src) && (lx.src[i] == ' ' || lx.src[i] == '\t') {
		i++
	}
	if i >= len(lx.src) {
		return
	}
	switch lx.src[i] {
	case '\n', '{', '}', ',':
		lx.tokens = append(lx.tokens, token.New(token.CallEnd, t.Line))
	}
}

// maybeImport tracks the one-token lookahead needed to resolve the module
// name following an `import` keyword.
func (lx *Lexer) maybeImport(t token.Token) {
	if t.Kind == token.Import {
		lx.expectModuleName = true
		return
	}
	if !lx.expectModuleName {
		return
	}
	lx.expectModuleName = false
	if t.Kind != token.ID {
		diag.Fatal(t.Line, "expected module name after import")
	}
	name := lx.table.Get(t.ID).Value
	path := filepath.Join(lx.moduleDir, name+".simc")
	if _, err := os.Stat(path); err != nil {
		diag.Fatal(t.Line, "cannot find imported module %q", name)
	}
	lx.modules = append(lx.modules, path)
}
