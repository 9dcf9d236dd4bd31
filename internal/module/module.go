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

// Package module is the driver's registry of imported .simc files: the
// path each module was discovered at, its token stream, and once parsed,
// its opcode stream. One Module exists per distinct name discovered via
// `import`, in first-discovery order.
package module

import (
	"path/filepath"
	"strings"

	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/token"
)

// Module is one imported file's state as it moves through the pipeline.
type Module struct {
	Name   string
	Path   string
	Tokens []token.Token
	Ops    []opcode.Op
}

// NameFromPath derives a module's name from its source path, the same
// way the generator derives the `.h` file's base name.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Registry tracks every module discovered so far, preserving discovery
// order so the driver's header generation is deterministic.
type Registry struct {
	byName map[string]*Module
	order  []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Module)}
}

// Add registers a module by path, deriving its name, unless a module of
// that name is already registered (re-importing the same module from two
// different files is a no-op, not an error).
func (r *Registry) Add(path string, tokens []token.Token) *Module {
	name := NameFromPath(path)
	if m, ok := r.byName[name]; ok {
		return m
	}
	m := &Module{Name: name, Path: path, Tokens: tokens}
	r.byName[name] = m
	r.order = append(r.order, name)
	return m
}

// Has reports whether a module of this name is already registered,
// letting the driver skip re-lexing a module discovered via two
// different `import` statements.
func (r *Registry) Has(path string) bool {
	_, ok := r.byName[NameFromPath(path)]
	return ok
}

// All returns every registered module in discovery order.
func (r *Registry) All() []*Module {
	mods := make([]*Module, len(r.order))
	for i, name := range r.order {
		mods[i] = r.byName[name]
	}
	return mods
}
