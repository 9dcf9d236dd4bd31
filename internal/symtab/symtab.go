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

// Package symtab is the append-only symbol table shared by the lexer, the
// parser and the code generator. The lexer and parser have mutable access;
// the generator only reads. Entries are never deleted and ids are never
// reused (spec invariant: 1 <= id <= size).
package symtab

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// ID is a symbol table row identifier. The zero value is never issued;
// valid ids start at 1.
type ID int

// NoID is returned by lookups that find nothing.
const NoID ID = 0

// DataType is the datatype column of a symbol table entry.
type DataType int

const (
	Var        DataType = iota // unknown: a bare identifier nobody has typed yet
	Declared                   // seen (e.g. `var x` with no initializer) but not yet inferred
	ArrDeclared                // array seen but element type/size not yet inferred
	Int
	Float
	Double
	Char
	CharPtr
	StringT
	BoolT
	StructVar
	Function
	NotKnown // deferred: concrete type pending a call site or later assignment
)

func (d DataType) String() string {
	switch d {
	case Var:
		return "var"
	case Declared:
		return "declared"
	case ArrDeclared:
		return "arr_declared"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	case CharPtr:
		return "char*"
	case StringT:
		return "string"
	case BoolT:
		return "bool"
	case StructVar:
		return "struct_var"
	case Function:
		return "function"
	case NotKnown:
		return "not_known"
	default:
		return "?"
	}
}

// IsKnown reports whether d is a concrete C type that the generator can
// emit a declaration for.
func (d DataType) IsKnown() bool {
	switch d {
	case Int, Float, Double, Char, CharPtr, StringT, BoolT, StructVar:
		return true
	}
	return false
}

// Precedence returns the type-widening rank used by the expression
// sub-parser and by dependency resolution: 0=string-const 1=char* 2=char
// 3=int 4=float 5=double 6=bool. Types with no defined rank (Var,
// Declared, Function, ...) return -1 and must not participate in widening.
func (d DataType) Precedence() int {
	switch d {
	case StringT:
		return 0
	case CharPtr:
		return 1
	case Char:
		return 2
	case Int:
		return 3
	case Float:
		return 4
	case Double:
		return 5
	case BoolT:
		return 6
	default:
		return -1
	}
}

// MetaKind distinguishes the shape of an entry's metadata column.
type MetaKind int

const (
	NoMeta MetaKind = iota
	Constant
	Variable
	FunctionMeta
	ArrayMeta
	StructMeta
)

// Param is one formal parameter of a function entry, with an optional
// default value expressed as a symbol table id (spec §4.3 default args).
type Param struct {
	Name       string
	Type       DataType
	HasDefault bool
	Default    ID
}

// Meta carries the kind-specific metadata column of an entry.
type Meta struct {
	Kind    MetaKind
	Params  []Param // FunctionMeta
	Size    int     // ArrayMeta: declared element count, -1 if not yet known
	Members []ID    // StructMeta: child member entry ids, in declaration order
}

// Entry is one row of the symbol table.
type Entry struct {
	ID    ID
	Value string
	Type  DataType
	Meta  Meta
	// Deps lists the ids of other entries whose type should be copied
	// (with widening) from this entry once this entry's type is known.
	// This is the deferred-type graph of spec §3, stored as an explicit
	// adjacency list rather than a "-id-id-..." encoded string.
	Deps []ID
}

// Table is the shared, append-only symbol table.
type Table struct {
	entries []Entry
	byName  map[string]ID // last-writer-wins naive name index; see Intern
}

// New returns an empty table. Row 0 is never used; NoID (0) always means
// "not found".
func New() *Table {
	return &Table{entries: make([]Entry, 1, 256), byName: make(map[string]ID)}
}

// Define appends a new entry and returns its id.
func (t *Table) Define(value string, dtype DataType, meta Meta) ID {
	id := ID(len(t.entries))
	t.entries = append(t.entries, Entry{ID: id, Value: value, Type: dtype, Meta: meta})
	t.byName[value] = id
	return id
}

// Intern returns the id most recently bound to name, creating a fresh
// Var/variable entry if name has never been seen. This is the lexer's
// naive, scope-blind identifier discovery (spec §4.2): the parser is
// responsible for shadowing it correctly via its own scope stack.
func (t *Table) Intern(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	return t.Define(name, Var, Meta{Kind: Variable})
}

// Lookup returns the id most recently bound to name, or (NoID, false).
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Get returns the entry for id. It panics on an out-of-range id, which
// would indicate a compiler bug (every id referenced by a token or opcode
// payload must resolve to an existing entry per spec §8).
func (t *Table) Get(id ID) *Entry {
	return &t.entries[id]
}

// Len returns the number of entries, including the unused row 0.
func (t *Table) Len() int {
	return len(t.entries)
}

// SetType overwrites an entry's datatype. It is used by the parser when
// direct type inference determines a variable's concrete C type.
func (t *Table) SetType(id ID, dtype DataType) {
	t.entries[id].Type = dtype
}

// AddDependency records that child's datatype should track parent's: an
// edge parent -> child in the deferred-type graph.
func (t *Table) AddDependency(parent, child ID) {
	t.entries[parent].Deps = append(t.entries[parent].Deps, child)
}

// Resolve widens every entry reachable from id through the deferred-type
// graph, given that id's own datatype is now known. It is idempotent:
// running it twice after the graph is fully settled is a no-op, since
// nodes whose type already matches or exceeds the propagated type are
// left alone.
func (t *Table) Resolve(id ID) {
	queue := []ID{id}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		parentType := t.entries[parent].Type
		parentRank := parentType.Precedence()
		if parentRank < 0 {
			continue
		}
		deps := t.entries[parent].Deps
		t.entries[parent].Deps = nil
		for _, child := range deps {
			childType := t.entries[child].Type
			switch {
			case childType == Var || childType == Declared:
				widened := parentType
				if widened == StringT {
					// assigning a string constant to a declared scalar
					// widens it to char* (spec §4.3 dependency resolution)
					widened = CharPtr
				}
				t.entries[child].Type = widened
				queue = append(queue, child)
			case childType.Precedence() > parentRank:
				// already-known higher-precedence type wins; stop here
			case childType.Precedence() < parentRank:
				t.entries[child].Type = parentType
				queue = append(queue, child)
			}
		}
	}
}

// String renders the table as id / value / type / typedata columns,
// aligned with spaces by text/tabwriter; no bar delimiters are drawn.
func (t *Table) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 2, 1, ' ', 0)
	fmt.Fprintln(w, "id\tvalue\ttype\ttypedata")
	for i := 1; i < len(t.entries); i++ {
		e := t.entries[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Value, e.Type, metaString(e.Meta))
	}
	w.Flush()
	return b.String()
}

func metaString(m Meta) string {
	switch m.Kind {
	case Constant:
		return "constant"
	case Variable:
		return "variable"
	case FunctionMeta:
		names := make([]string, len(m.Params))
		for i, p := range m.Params {
			names[i] = p.Name
		}
		return "function---" + strings.Join(names, "---")
	case ArrayMeta:
		return fmt.Sprintf("%d", m.Size)
	case StructMeta:
		ids := make([]string, len(m.Members))
		for i, id := range m.Members {
			ids[i] = fmt.Sprintf("%d", id)
		}
		return "-" + strings.Join(ids, "-")
	default:
		return ""
	}
}

// Names returns every interned identifier name, sorted, for diagnostics.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
