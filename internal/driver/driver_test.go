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

package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/simc/internal/diag"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunRejectsNonSimcExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.txt", "print(\"hi\")\n")
	called := false
	withFakeExit(t, &called)
	_, _ = Run(path, NoDump, nil)
	require.True(t, called)
}

func TestRunGeneratesForLoopWithMergedBrace(t *testing.T) {
	dir := t.TempDir()
	src := "MAIN\nfor i in 1 to 10 by + 1 {\nprint(i)\n}\nEND_MAIN\n"
	path := writeFile(t, dir, "prog.simc", src)

	result, err := Run(path, NoDump, nil)
	require.NoError(t, err)
	require.Contains(t, result.MainSource, "#include <stdio.h>")
	require.Contains(t, result.MainSource, "for(int i = 1; i < 10; i+=1) {")

	out, err := os.ReadFile(result.MainPath)
	require.NoError(t, err)
	require.Equal(t, result.MainSource, string(out))
}

func TestRunPrunesUnusedModuleFunctions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "math.simc", "fun sqrt(x) {\nreturn x\n}\nfun unused(x) {\nreturn x\n}\n")
	mainPath := writeFile(t, dir, "prog.simc", "import math\nMAIN\nvar x = sqrt(4.0)\nEND_MAIN\n")

	result, err := Run(mainPath, NoDump, nil)
	require.NoError(t, err)

	mathSrc, ok := result.ModuleSrc["math"]
	require.True(t, ok)
	require.Contains(t, mathSrc, "sqrt")
	require.NotContains(t, mathSrc, "unused")
}

// TestRunRendersFunctionReturnTypeFromCallSite covers a function whose
// `return` expression references parameters rather than a bare literal:
// the call site's argument types are the only source of the function's
// return type, and the FuncDecl opcode is emitted long before the call is
// parsed, so the generator must read the final type from the shared table
// instead of the frozen opcode field.
func TestRunRendersFunctionReturnTypeFromCallSite(t *testing.T) {
	dir := t.TempDir()
	src := "fun add(x, y) {\nreturn x + y\n}\nMAIN\nvar r = add(1, 2)\nEND_MAIN\n"
	path := writeFile(t, dir, "prog.simc", src)

	result, err := Run(path, NoDump, nil)
	require.NoError(t, err)
	require.Contains(t, result.MainSource, "int add(int x, int y) {")
	require.NotContains(t, result.MainSource, "void add")
}

// withFakeExit substitutes diag.Exit for the duration of the test so a
// diag.Fatal call records instead of terminating the test binary.
func withFakeExit(t *testing.T, called *bool) {
	t.Helper()
	prev := diag.Exit
	diag.Exit = func(int) { *called = true }
	t.Cleanup(func() { diag.Exit = prev })
}
