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

package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func check(t *testing.T, a1 any, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func TestDefineAndGet(t *testing.T) {
	tbl := New()
	id := tbl.Define("x", Int, Meta{Kind: Variable})
	check(t, id, ID(1))
	check(t, tbl.Get(id).Value, "x")
	check(t, tbl.Get(id).Type, Int)
}

func TestInternReusesExistingID(t *testing.T) {
	tbl := New()
	a := tbl.Intern("counter")
	b := tbl.Intern("counter")
	check(t, a, b)
	check(t, tbl.Get(a).Type, Var)
}

func TestLookupMissing(t *testing.T) {
	tbl := New()
	_, ok := tbl.Lookup("nope")
	check(t, ok, false)
}

func TestPrecedenceOrdering(t *testing.T) {
	require.Less(t, StringT.Precedence(), CharPtr.Precedence())
	require.Less(t, CharPtr.Precedence(), Char.Precedence())
	require.Less(t, Char.Precedence(), Int.Precedence())
	require.Less(t, Int.Precedence(), Float.Precedence())
	require.Less(t, Float.Precedence(), Double.Precedence())
	require.Less(t, Double.Precedence(), BoolT.Precedence())
	require.Equal(t, -1, Var.Precedence())
}

func TestResolveWidensVarToParentType(t *testing.T) {
	tbl := New()
	parent := tbl.Intern("p")
	child := tbl.Intern("c")
	tbl.AddDependency(parent, child)
	tbl.SetType(parent, Float)
	tbl.Resolve(parent)
	require.Equal(t, Float, tbl.Get(child).Type)
}

func TestResolveWidensStringConstToCharPtr(t *testing.T) {
	tbl := New()
	parent := tbl.Intern("p")
	child := tbl.Intern("c")
	tbl.AddDependency(parent, child)
	tbl.SetType(parent, StringT)
	tbl.Resolve(parent)
	require.Equal(t, CharPtr, tbl.Get(child).Type)
}

func TestResolveKeepsHigherPrecedenceChild(t *testing.T) {
	tbl := New()
	parent := tbl.Intern("p")
	child := tbl.Intern("c")
	tbl.SetType(child, Double)
	tbl.AddDependency(parent, child)
	tbl.SetType(parent, Int)
	tbl.Resolve(parent)
	require.Equal(t, Double, tbl.Get(child).Type)
}

func TestResolveIsIdempotent(t *testing.T) {
	tbl := New()
	parent := tbl.Intern("p")
	child := tbl.Intern("c")
	tbl.AddDependency(parent, child)
	tbl.SetType(parent, Int)
	tbl.Resolve(parent)
	first := tbl.Get(child).Type
	tbl.Resolve(parent)
	require.Equal(t, first, tbl.Get(child).Type)
}

func TestStringRendersHeaderAndRows(t *testing.T) {
	tbl := New()
	tbl.Define("x", Int, Meta{Kind: Variable})
	out := tbl.String()
	require.Contains(t, out, "id")
	require.Contains(t, out, "value")
	require.Contains(t, out, "x")
	require.Contains(t, out, "int")
}
