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

package lexer

import (
	"testing"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

func check(t *testing.T, a1 any, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexNumberInt(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "42\n", tbl, ".").Lex()
	check(t, toks[0].Kind, token.Number)
	check(t, tbl.Get(toks[0].ID).Type, symtab.Int)
	check(t, tbl.Get(toks[0].ID).Value, "42")
}

func TestLexNumberFloatVsDouble(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "3.14159 3.14159265\n", tbl, ".").Lex()
	check(t, tbl.Get(toks[0].ID).Type, symtab.Float)
	check(t, tbl.Get(toks[1].ID).Type, symtab.Double)
}

func TestLexStringVsChar(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", `"hi" 'a'`+"\n", tbl, ".").Lex()
	check(t, tbl.Get(toks[0].ID).Type, symtab.StringT)
	check(t, tbl.Get(toks[1].ID).Type, symtab.Char)
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "var x = 1\n", tbl, ".").Lex()
	check(t, kinds(toks)[0], token.Var)
	check(t, kinds(toks)[1], token.ID)
	check(t, kinds(toks)[2], token.Assignment)
	check(t, kinds(toks)[3], token.Number)
}

func TestLexCallEndAfterParen(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "foo(1)\n", tbl, ".").Lex()
	// foo ( 1 ) call_end newline EOF
	check(t, kinds(toks)[3], token.RightParen)
	check(t, kinds(toks)[4], token.CallEnd)
}

func TestLexUnbalancedBracketIsFatal(t *testing.T) {
	called := false
	prev := diag.Exit
	diag.Exit = func(int) { called = true }
	defer func() { diag.Exit = prev }()

	tbl := symtab.New()
	New("t", "(1\n", tbl, ".").Lex()
	check(t, called, true)
}

func TestLexBoolLiteral(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "true\n", tbl, ".").Lex()
	check(t, toks[0].Kind, token.Bool)
	check(t, tbl.Get(toks[0].ID).Type, symtab.BoolT)
}

func TestLexAddressOfVsBitwiseAnd(t *testing.T) {
	tbl := symtab.New()
	toks, _ := New("t", "&x\nx & 1\n", tbl, ".").Lex()
	check(t, kinds(toks)[0], token.AddressOf)
	// second line: x & 1 -> ID, BitwiseAnd, Number
	var found token.Kind
	for _, tk := range toks[2:] {
		if tk.Kind == token.BitwiseAnd || tk.Kind == token.AddressOf {
			found = tk.Kind
			break
		}
	}
	check(t, found, token.BitwiseAnd)
}
