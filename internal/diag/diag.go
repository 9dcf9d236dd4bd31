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

// Package diag is the compiler's single fatal error channel. Every stage
// (lexer, parser, generator, driver) reports through Fatal; there is no
// recovery and no warning channel.
package diag

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// NoLine is the sentinel line number for errors that precede any source
// file being read (bad or missing filename, wrong extension).
const NoLine = -1

const red = "\x1b[31m"
const reset = "\x1b[0m"

// Exit is os.Exit by default; tests substitute it to observe fatal calls
// without killing the test binary.
var Exit = os.Exit

// Fatal formats "[Line N] Error: <msg>" (or "Error: <msg>" when line is
// NoLine), writes it to stderr in red when stderr is a terminal, and
// terminates the process with a non-zero status. It never returns.
func Fatal(line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if line == NoLine {
		msg = fmt.Sprintf("Error: %s", msg)
	} else {
		msg = fmt.Sprintf("[Line %d] Error: %s", line, msg)
	}
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, red+msg+reset)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	Exit(1)
}

// Check invokes Fatal unless actual is one of expected. It is used
// throughout the parser to assert token shape before consuming it.
func Check[T comparable](expected []T, actual T, line int, format string, args ...any) {
	for _, e := range expected {
		if e == actual {
			return
		}
	}
	Fatal(line, format, args...)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
