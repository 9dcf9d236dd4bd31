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

// Package parser turns a token sequence into an opcode sequence, inferring
// and widening symbol-table datatypes as it goes (spec §4.3).
package parser

import (
	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

var debug = false

// scopeState is the parser's scalar scope machine (spec §4.3).
type scopeState int

const (
	scopeGlobal scopeState = iota
	scopeMain
	scopeFunction
	scopeOneLineFuncStart
	scopeOneLineFuncEnd
	scopeStruct
)

// funcInfo is what the parser remembers about a declared function: its
// parameters, return type, deferred return-type resolver and whether any
// call site used it. Call sites are not checked against the parameter
// count, and recorded default values are not filled in for omitted
// arguments.
type funcInfo struct {
	params     []symtab.Param
	returnType symtab.DataType
	// pending is non-nil while the function's return type could not be
	// determined at its own `return` statement because the return
	// expression referenced still-untyped parameters (spec §4.3 deferred
	// return-type inference / Design Note 5). Called with a call site's
	// argument types, it widens over the types of every parameter the
	// captured return expression text mentions.
	pending func(argTypes []symtab.DataType) (symtab.DataType, bool)
	id      symtab.ID
	used    bool
}

// structInfo remembers a struct's member list for `StructName var`
// instantiation.
type structInfo struct {
	members []structMember
}

type structMember struct {
	name string
	typ  symtab.DataType
}

// Parser holds all mutable state for one file's parse. A fresh Parser is
// used per file, but every Parser over one compilation shares the same
// *symtab.Table and the same funcs/structs maps so that module function
// signatures are visible to the main file (spec §4.5 driver ordering).
type Parser struct {
	path   string
	tokens []token.Token
	pos    int
	table  *symtab.Table

	ops []opcode.Op

	state      scopeState
	braceDepth int
	mainSeen   bool
	inMain     bool

	// scopes is a stack of name->id maps giving identifiers scope at
	// introduction time (Design Note 4), replacing the original
	// compiler's post-hoc ScopeResolver.
	scopes []map[string]symtab.ID

	funcs   map[string]*funcInfo
	structs map[string]*structInfo

	// currentFunc is non-nil while parsing a function body, so `return`
	// can record its expression against the right funcInfo.
	currentFunc *funcInfo
}

// Shared is the cross-file state the driver threads through every file of
// a compilation: the symbol table and the function/struct registries that
// make cross-module type inference possible.
type Shared struct {
	Table   *symtab.Table
	Funcs   map[string]*funcInfo
	Structs map[string]*structInfo
}

// NewShared creates an empty cross-file state for a fresh compilation.
func NewShared(table *symtab.Table) *Shared {
	return &Shared{
		Table:   table,
		Funcs:   make(map[string]*funcInfo),
		Structs: make(map[string]*structInfo),
	}
}

// UsedFunctions reports, for every function declared across the
// compilation, whether any call site called it (spec §4.5
// step 4: a function never called from the main program or another used
// module is pruned from its module's output).
func (s *Shared) UsedFunctions() map[string]bool {
	used := make(map[string]bool, len(s.Funcs))
	for name, fi := range s.Funcs {
		used[name] = fi.used
	}
	return used
}

// New constructs a parser for one file's token stream.
func New(path string, tokens []token.Token, shared *Shared) *Parser {
	return &Parser{
		path:    path,
		tokens:  tokens,
		table:   shared.Table,
		state:   scopeGlobal,
		scopes:  []map[string]symtab.ID{make(map[string]symtab.ID)},
		funcs:   shared.Funcs,
		structs: shared.Structs,
	}
}

// Parse consumes the whole token stream and returns the resulting opcode
// sequence. It fatally errors (via diag.Fatal) on any grammar violation.
func (p *Parser) Parse() []opcode.Op {
	for !p.atEnd() {
		p.parseStatement()
	}
	if p.state == scopeMain || p.inMain {
		diag.Fatal(p.line(), "unmatched MAIN: missing END_MAIN")
	}
	if p.braceDepth != 0 {
		diag.Fatal(p.line(), "unmatched '{': missing '}'")
	}
	return p.ops
}

func (p *Parser) emit(op opcode.Op) {
	p.ops = append(p.ops, op)
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(off int) token.Token {
	if p.pos+off >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+off]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) line() int {
	return p.peek().Line
}

// expect consumes and returns the current token if its kind is want,
// otherwise fatally errors.
func (p *Parser) expect(want token.Kind, what string) token.Token {
	if p.peek().Kind != want {
		diag.Fatal(p.line(), "expected %s", what)
	}
	return p.advance()
}

// skipNewlines consumes any run of newline tokens (blank lines between
// statements carry no meaning).
func (p *Parser) skipNewlines() {
	for p.peek().Kind == token.Newline {
		p.advance()
	}
}

// pushScope opens a fresh identifier scope, shadowing outer bindings.
func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]symtab.ID))
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// declare binds name to id in the innermost scope.
func (p *Parser) declare(name string, id symtab.ID) {
	p.scopes[len(p.scopes)-1][name] = id
}

// resolve looks up name from the innermost scope outward, falling back to
// the symbol table's scope-blind index (e.g. for module-level functions
// visible without an explicit declaration in this file).
func (p *Parser) resolve(name string) (symtab.ID, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if id, ok := p.scopes[i][name]; ok {
			return id, true
		}
	}
	return p.table.Lookup(name)
}

func (p *Parser) valueOf(id symtab.ID) string {
	return p.table.Get(id).Value
}
