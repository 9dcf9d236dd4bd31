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

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/lexer"
	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/symtab"
)

// withFakeExit substitutes diag.Exit for the duration of the test so a
// diag.Fatal call records instead of terminating the test binary.
func withFakeExit(t *testing.T) *bool {
	t.Helper()
	called := false
	prev := diag.Exit
	diag.Exit = func(int) { called = true }
	t.Cleanup(func() { diag.Exit = prev })
	return &called
}

func parse(t *testing.T, src string) ([]opcode.Op, *symtab.Table) {
	t.Helper()
	tbl := symtab.New()
	toks, _ := lexer.New(t.Name(), src, tbl, ".").Lex()
	shared := NewShared(tbl)
	ops := New(t.Name(), toks, shared).Parse()
	return ops, tbl
}

func TestParsePrintStringLiteral(t *testing.T) {
	ops, _ := parse(t, `print("Hello")`+"\n")
	require.Len(t, ops, 1)
	p, ok := ops[0].(*opcode.Print)
	require.True(t, ok)
	require.Equal(t, `"Hello"`, p.Format)
}

func TestParseVarAssignInfersInt(t *testing.T) {
	ops, tbl := parse(t, "var a = 1 + 2\n")
	require.Len(t, ops, 1)
	va, ok := ops[0].(*opcode.VarAssign)
	require.True(t, ok)
	require.Equal(t, symtab.Int, va.Type)
	id, ok := tbl.Lookup("a")
	require.True(t, ok)
	require.Equal(t, symtab.Int, tbl.Get(id).Type)
}

func TestParseForLoop(t *testing.T) {
	ops, _ := parse(t, "for i in 1 to 10 by + 1 {\nprint(i)\n}\n")
	require.Len(t, ops, 4) // For, ScopeBegin, Print, ScopeOver
	f, ok := ops[0].(*opcode.For)
	require.True(t, ok)
	require.Equal(t, "i", f.Var)
	require.Equal(t, "1", f.Start)
	require.Equal(t, "10", f.End)
	require.Equal(t, "<", f.CompareOp)
	require.Equal(t, "+", f.StepOp)
}

func TestParseFuncDeclAndCallInfersReturnType(t *testing.T) {
	ops, tbl := parse(t, "fun add(x, y) {\nreturn x + y\n}\nvar r = add(1, 2)\n")
	var fd *opcode.FuncDecl
	for _, op := range ops {
		if f, ok := op.(*opcode.FuncDecl); ok {
			fd = f
		}
	}
	require.NotNil(t, fd)
	id, ok := tbl.Lookup("add")
	require.True(t, ok)
	// fd.ReturnType is frozen at NotKnown from declaration time; fd.ID is
	// how codegen finds the table's final, call-site-resolved type.
	require.Equal(t, symtab.NotKnown, fd.ReturnType)
	require.Equal(t, id, fd.ID)
	require.Equal(t, symtab.Int, tbl.Get(id).Type)

	rid, ok := tbl.Lookup("r")
	require.True(t, ok)
	require.Equal(t, symtab.Int, tbl.Get(rid).Type)
}

func TestParseMainEndMainRequiresPairing(t *testing.T) {
	ops, _ := parse(t, "MAIN\nprint(\"hi\")\nEND_MAIN\n")
	require.IsType(t, &opcode.Main{}, ops[0])
	require.IsType(t, &opcode.EndMain{}, ops[len(ops)-1])
}

func TestParseArrayDeclaration(t *testing.T) {
	ops, _ := parse(t, "var nums[3] = {1, 2, 3}\n")
	require.Len(t, ops, 1)
	a, ok := ops[0].(*opcode.ArrayAssign)
	require.True(t, ok)
	require.Equal(t, "3", a.Size)
	require.Equal(t, "{1, 2, 3}", a.Init)
}

func TestParseIfElse(t *testing.T) {
	ops, _ := parse(t, "if (1) {\nprint(\"y\")\n} else {\nprint(\"n\")\n}\n")
	var sawIf, sawElse bool
	for _, op := range ops {
		switch op.(type) {
		case *opcode.If:
			sawIf = true
		case *opcode.Else:
			sawElse = true
		}
	}
	require.True(t, sawIf)
	require.True(t, sawElse)
}

func TestParseOneLineFunctionBodyOmitsBraces(t *testing.T) {
	ops, _ := parse(t, "fun square(x)\nreturn x\n")
	var sawDecl, sawScopeBegin, sawReturn, sawScopeOver bool
	for _, op := range ops {
		switch op.(type) {
		case *opcode.FuncDecl:
			sawDecl = true
		case *opcode.ScopeBegin:
			sawScopeBegin = true
		case *opcode.Return:
			sawReturn = true
		case *opcode.ScopeOver:
			sawScopeOver = true
		}
	}
	require.True(t, sawDecl)
	require.False(t, sawScopeBegin, "a one-line function body has no braced scope opcode")
	require.True(t, sawReturn)
	require.True(t, sawScopeOver, "the one-line body still auto-emits the trailing scope_over")
}

func TestParseOneLineIfBodyOmitsBraces(t *testing.T) {
	ops, _ := parse(t, "if (1)\nprint(\"y\")\n")
	var sawIf, sawScopeBegin, sawPrint, sawScopeOver bool
	for _, op := range ops {
		switch op.(type) {
		case *opcode.If:
			sawIf = true
		case *opcode.ScopeBegin:
			sawScopeBegin = true
		case *opcode.Print:
			sawPrint = true
		case *opcode.ScopeOver:
			sawScopeOver = true
		}
	}
	require.True(t, sawIf)
	require.True(t, sawScopeBegin, "a one-line control body still brackets its single statement")
	require.True(t, sawPrint)
	require.True(t, sawScopeOver)
}

func TestParseStructInstantiateCreatesDerivedMemberEntries(t *testing.T) {
	ops, tbl := parse(t, "struct Point {\nvar x\nvar y\n}\nPoint p\n")
	var sawInstantiate bool
	for _, op := range ops {
		if _, ok := op.(*opcode.StructInstantiate); ok {
			sawInstantiate = true
		}
	}
	require.True(t, sawInstantiate)

	xid, ok := tbl.Lookup("p.x")
	require.True(t, ok)
	require.Equal(t, symtab.Var, tbl.Get(xid).Type)

	yid, ok := tbl.Lookup("p.y")
	require.True(t, ok)
	require.Equal(t, symtab.Var, tbl.Get(yid).Type)
}

func TestParseFuncDeclDefaultArgMustBeLiteral(t *testing.T) {
	called := withFakeExit(t)
	parse(t, "fun greet(name = other)\nreturn name\n")
	require.True(t, *called)
}
