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

// Command simc translates a .simc source file into C (spec §6).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/simc/internal/driver"
)

var verbose bool

var validDumpModes = map[string]driver.DumpMode{
	"token":               driver.DumpTokens,
	"opcode":              driver.DumpOpcodes,
	"table_after_lexing":  driver.DumpTableAfterLexing,
	"table_after_parsing": driver.DumpTableAfterParsing,
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simc <source.simc> [token|opcode|table_after_lexing|table_after_parsing]",
		Short: "Translate simC source into C",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			log.SetLevel(logrus.WarnLevel)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			dump := driver.NoDump
			if len(args) == 2 {
				mode, ok := validDumpModes[args[1]]
				if !ok {
					return fmt.Errorf("unknown dump mode %q", args[1])
				}
				dump = mode
			}

			result, err := driver.Run(args[0], dump, log)
			if err != nil {
				return err
			}
			if dump == driver.NoDump {
				fmt.Printf("C code generated at %s!\n", result.MainPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace compiler phases to stderr")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
