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

// Package codegen renders an opcode sequence (spec §4.4) into C source
// text. It is a pure function of the opcode slice and the shared symbol
// table: no I/O, no global state, so generating the same stream twice
// yields byte-identical output.
package codegen

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/symtab"
)

// Generator assembles one output file from an opcode sequence. Construct
// with New and call Generate once; it is not meant to be reused across
// unrelated opcode streams since indent/pending state is not reset.
type Generator struct {
	table *symtab.Table

	outside []string
	inside  []string
	inMain  bool
	indent  int

	// pendingBrace is set right after writing a control-construct header
	// (for/while/do/if/else_if/else/switch) so the next ScopeBegin's "{"
	// is appended to that same line instead of starting a new one.
	pendingBrace bool

	mainReturned bool
}

// New returns a fresh generator reading final, possibly-widened types from
// table at generation time rather than trusting the types an opcode froze
// when the parser first emitted it (spec §4.3 deferred return type
// inference: the table keeps resolving after a FuncDecl is emitted).
func New(table *symtab.Table) *Generator {
	return &Generator{table: table}
}

// Generate renders ops to a complete C source file, including the
// inferred #include prefix (spec §4.4).
func (g *Generator) Generate(ops []opcode.Op) string {
	for _, op := range ops {
		g.emit(op)
	}
	var b strings.Builder
	for _, inc := range g.includes() {
		b.WriteString(inc)
		b.WriteByte('\n')
	}
	if len(g.outside) > 0 || len(g.inside) > 0 {
		b.WriteByte('\n')
	}
	for _, l := range g.outside {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for _, l := range g.inside {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Generator) buf() *[]string {
	if g.inMain {
		return &g.inside
	}
	return &g.outside
}

// write appends one indented line to the current buffer.
func (g *Generator) write(line string) {
	indent := strings.Repeat("\t", g.indent)
	*g.buf() = append(*g.buf(), indent+line)
}

// writeRaw appends a line with no indentation, for BEGIN_C/END_C passthrough.
func (g *Generator) writeRaw(line string) {
	*g.buf() = append(*g.buf(), line)
}

// appendToLast appends text to the most recently written line in the
// current buffer rather than starting a new one.
func (g *Generator) appendToLast(text string) {
	buf := g.buf()
	if len(*buf) == 0 {
		g.write(strings.TrimSpace(text))
		return
	}
	(*buf)[len(*buf)-1] += text
}

func (g *Generator) emit(op opcode.Op) {
	switch o := op.(type) {
	case *opcode.Print:
		args := append([]string{o.Format}, o.Args...)
		g.write(fmt.Sprintf("printf(%s);", strings.Join(args, ", ")))

	case *opcode.VarAssign:
		t := cType(o.Type)
		if o.IsInput {
			spec, _, needsAddr := scanfSpec(o.Type)
			dest := o.Name
			if needsAddr {
				dest = "&" + o.Name
			}
			g.write(fmt.Sprintf("%s %s;", t, o.Name))
			g.write(fmt.Sprintf("printf(%s);", o.Prompt))
			g.write(fmt.Sprintf("scanf(%q, %s);", spec, dest))
			return
		}
		g.write(fmt.Sprintf("%s %s = %s;", t, o.Name, o.Expr))

	case *opcode.VarNoAssign:
		g.write(fmt.Sprintf("%s %s;", cType(o.Type), o.Name))

	case *opcode.PtrAssign:
		g.write(fmt.Sprintf("%s %s%s = %s;", cType(o.Type), strings.Repeat("*", o.Depth), o.Name, o.Expr))

	case *opcode.PtrNoAssign:
		g.write(fmt.Sprintf("%s %s%s;", cType(o.Type), strings.Repeat("*", o.Depth), o.Name))

	case *opcode.ArrayAssign:
		g.write(fmt.Sprintf("%s %s[%s] = %s;", cType(o.Type), o.Name, o.Size, o.Init))

	case *opcode.ArrayNoAssign:
		if o.Size == "" {
			diag.Fatal(o.SourceLine(), "array %q declared with no size and no initializer", o.Name)
		}
		g.write(fmt.Sprintf("%s %s[%s];", cType(o.Type), o.Name, o.Size))

	case *opcode.ArrayOnlyAssign:
		g.write(fmt.Sprintf("%s[%s] = %s;", o.Name, o.Index, o.Expr))

	case *opcode.Assign:
		g.write(fmt.Sprintf("%s %s %s;", o.Name, o.Op, o.Expr))

	case *opcode.PtrOnlyAssign:
		g.write(fmt.Sprintf("%s%s %s %s;", strings.Repeat("*", o.Depth), o.Name, o.Op, o.Expr))

	case *opcode.Unary:
		g.write(o.Text + ";")

	case *opcode.FuncDecl:
		ret := cReturnType(g.resolvedType(o.ID, o.ReturnType))
		params := "void"
		if len(o.Params) > 0 {
			parts := make([]string, len(o.Params))
			for i, p := range o.Params {
				parts[i] = fmt.Sprintf("%s %s", cType(g.resolvedType(p.ID, p.Type)), p.Name)
			}
			params = strings.Join(parts, ", ")
		}
		g.write(fmt.Sprintf("%s %s(%s) {", ret, o.Name, params))
		g.indent++

	case *opcode.FuncCall:
		g.write(fmt.Sprintf("%s(%s);", o.Name, strings.Join(o.Args, ", ")))

	case *opcode.StructDecl:
		g.write(fmt.Sprintf("struct %s {", o.Name))
		g.indent++

	case *opcode.StructInstantiate:
		g.write(fmt.Sprintf("struct %s %s;", o.StructName, o.VarName))

	case *opcode.StructScopeOver:
		g.indent--
		g.write("};")

	case *opcode.ScopeBegin:
		if g.pendingBrace {
			g.appendToLast(" {")
			g.pendingBrace = false
		} else {
			g.write("{")
		}
		g.indent++

	case *opcode.ScopeOver:
		g.indent--
		g.write("}")

	case *opcode.Main:
		g.write("int main() {")
		g.indent++
		g.inMain = true
		g.mainReturned = false

	case *opcode.EndMain:
		if !g.mainReturned {
			g.write("return 0;")
		}
		g.indent--
		g.write("}")
		g.inMain = false

	case *opcode.For:
		header := fmt.Sprintf("for(int %s = %s; %s %s %s; %s%s=%s)",
			o.Var, o.Start, o.Var, o.CompareOp, o.End, o.Var, o.StepOp, o.Step)
		g.write(header)
		g.pendingBrace = true

	case *opcode.While:
		g.write(fmt.Sprintf("while(%s)", o.Cond))
		g.pendingBrace = true

	case *opcode.Do:
		g.write("do")
		g.pendingBrace = true

	case *opcode.WhileDo:
		g.write(fmt.Sprintf("while(%s);", o.Cond))

	case *opcode.If:
		g.write(fmt.Sprintf("if(%s)", o.Cond))
		g.pendingBrace = true

	case *opcode.ElseIf:
		g.write(fmt.Sprintf("else if(%s)", o.Cond))
		g.pendingBrace = true

	case *opcode.Else:
		g.write("else")
		g.pendingBrace = true

	case *opcode.Switch:
		g.write(fmt.Sprintf("switch(%s)", o.Expr))
		g.pendingBrace = true

	case *opcode.Case:
		g.indent--
		g.write(fmt.Sprintf("case %s:", o.Expr))
		g.indent++

	case *opcode.Default:
		g.indent--
		g.write("default:")
		g.indent++

	case *opcode.Return:
		if o.HasExpr {
			g.write(fmt.Sprintf("return %s;", o.Expr))
		} else {
			g.write("return;")
		}
		if g.inMain {
			g.mainReturned = true
		}

	case *opcode.Break:
		g.write("break;")

	case *opcode.Continue:
		g.write("continue;")

	case *opcode.Exit:
		g.write(fmt.Sprintf("exit(%s);", o.Code))

	case *opcode.SingleLineComment:
		g.write(o.Text)

	case *opcode.MultiLineComment:
		for _, l := range strings.Split(o.Text, "\n") {
			g.write(l)
		}

	case *opcode.Raw:
		g.writeRaw(o.Text)

	case *opcode.Import:
		g.write(fmt.Sprintf("#include %q", o.Name+".h"))

	default:
		diag.Fatal(op.SourceLine(), "codegen: unhandled opcode %T", op)
	}
}

// includes scans every rendered line for the markers spec §4.4 names and
// returns the deduplicated #include prefix, in a fixed stable order.
func (g *Generator) includes() []string {
	joined := strings.Join(g.outside, "\n") + "\n" + strings.Join(g.inside, "\n")
	var out []string
	if strings.Contains(joined, "printf(") || strings.Contains(joined, "scanf(") {
		out = append(out, "#include <stdio.h>", "#include <stdbool.h>")
	} else if strings.Contains(joined, "bool ") || strings.Contains(joined, "bool*") {
		out = append(out, "#include <stdbool.h>")
	}
	if strings.Contains(joined, "M_PI") || strings.Contains(joined, "M_E") ||
		strings.Contains(joined, "pow(") || strings.Contains(joined, "INFINITY") || strings.Contains(joined, "NAN") {
		out = append(out, "#include <math.h>")
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func cType(dt symtab.DataType) string {
	switch dt {
	case symtab.Int:
		return "int"
	case symtab.Float:
		return "float"
	case symtab.Double:
		return "double"
	case symtab.Char:
		return "char"
	case symtab.CharPtr, symtab.StringT:
		return "char*"
	case symtab.BoolT:
		return "bool"
	default:
		return "int"
	}
}

// resolvedType looks up id's current type in the shared table, which may
// have kept widening after the opcode carrying frozen was emitted; frozen
// is used as-is when id is unset (NoID) or the table has no known type for
// it yet, e.g. an opcode built directly by a test with no backing table.
func (g *Generator) resolvedType(id symtab.ID, frozen symtab.DataType) symtab.DataType {
	if g.table == nil || id == symtab.NoID {
		return frozen
	}
	if t := g.table.Get(id).Type; t.IsKnown() {
		return t
	}
	return frozen
}

func cReturnType(dt symtab.DataType) string {
	if !dt.IsKnown() {
		return "void"
	}
	return cType(dt)
}

func scanfSpec(dtype symtab.DataType) (spec string, code byte, needsAddr bool) {
	switch dtype {
	case symtab.Int:
		return "%d", 'i', true
	case symtab.Float:
		return "%f", 'f', true
	case symtab.Double:
		return "%lf", 'd', true
	case symtab.Char:
		return "%c", 'c', true
	default:
		return "%s", 's', false
	}
}
