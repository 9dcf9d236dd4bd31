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

package diag

import "testing"

func check(t *testing.T, a1 any, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func withFakeExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := Exit
	Exit = func(c int) { code = c }
	t.Cleanup(func() { Exit = prev })
	return &code
}

func TestFatalCallsExit(t *testing.T) {
	code := withFakeExit(t)
	Fatal(NoLine, "boom")
	check(t, *code, 1)
}

func TestFatalWithLine(t *testing.T) {
	code := withFakeExit(t)
	Fatal(12, "unexpected %s", "token")
	check(t, *code, 1)
}

func TestCheckPassesWhenMatched(t *testing.T) {
	code := withFakeExit(t)
	Check([]int{1, 2, 3}, 2, 5, "bad value")
	check(t, *code, -1)
}

func TestCheckFatalsWhenNotMatched(t *testing.T) {
	code := withFakeExit(t)
	Check([]int{1, 2, 3}, 9, 5, "bad value")
	check(t, *code, 1)
}
