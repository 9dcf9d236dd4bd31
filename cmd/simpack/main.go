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

// Command simpack fetches a named module from the package index into the
// local module directory (spec §6).
package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/simc/internal/diag"
)

var (
	name    string
	dirFlag string
	index   string
)

func resolveInstallDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if v := os.Getenv("SIMC_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Annotate(err, "resolving home directory")
	}
	return filepath.Join(home, ".simc"), nil
}

func loadIndex(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening package index %q", path)
	}
	defer f.Close()

	idx := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " - ", 2)
		if len(parts) != 2 {
			continue
		}
		idx[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Annotate(err, "reading package index")
	}
	return idx, nil
}

func fetchModule(moduleName, url, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errors.Annotate(err, "creating module directory")
	}
	dest := filepath.Join(destDir, moduleName+".simc")
	if _, err := os.Stat(dest); err == nil {
		return errors.Errorf("module %q is already installed at %s", moduleName, dest)
	}

	resp, err := http.Get(url)
	if err != nil {
		return errors.Annotatef(err, "fetching %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching %s: server returned %s", url, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.Annotate(err, "creating destination file")
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return errors.Annotatef(err, "writing %s", dest)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simpack --name <module>",
		Short: "Fetch a simC module from the package index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			installDir, err := resolveInstallDir(dirFlag)
			if err != nil {
				diag.Fatal(diag.NoLine, "%v", err)
			}
			idx, err := loadIndex(index)
			if err != nil {
				diag.Fatal(diag.NoLine, "%v", err)
			}
			url, ok := idx[name]
			if !ok {
				diag.Fatal(diag.NoLine, "unknown module %q", name)
			}
			dest := filepath.Join(installDir, "modules")
			if err := fetchModule(name, url, dest); err != nil {
				diag.Fatal(diag.NoLine, "%v", err)
			}
			fmt.Printf("Installed %s to %s\n", name, filepath.Join(dest, name+".simc"))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the module to fetch")
	cmd.Flags().StringVar(&dirFlag, "dir", "", "install directory (default $SIMC_HOME or ~/.simc)")
	cmd.Flags().StringVar(&index, "index", "package-index", "path to the package index file")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
