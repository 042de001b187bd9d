// Copyright (C) 2026  The Generic-Assembler Authors

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package listing

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
)

const (
	bold  = "\033[1m"
	dim   = "\033[1;30m"
	reset = "\033[0m"
)

// Listing prints assembly source next to the addresses it was assembled to
type Listing struct {
	Source   []string
	SymTable *assembler.SymTable
	Color    bool
}

func New(source io.Reader, symtable *assembler.SymTable) (*Listing, error) {
	var lines []string

	scanner := bufio.NewScanner(source)
	scanner.Split(bufio.ScanLines)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Listing{Source: lines, SymTable: symtable}, nil
}

// Addresses maps 1-based source lines to the first address they emit
func (list *Listing) Addresses() map[int]uint64 {
	result := make(map[int]uint64)

	if list.SymTable == nil {
		return result
	}

	for addr, line := range list.SymTable.Symbols {
		if current, exists := result[line]; !exists || addr < current {
			result[line] = addr
		}
	}

	return result
}

// Lookup returns the source line that emitted addr
func (list *Listing) Lookup(addr uint64) (string, bool) {
	if list.SymTable == nil {
		return "", false
	}

	line, exists := list.SymTable.Symbols[addr]

	if !exists || line < 1 || line > len(list.Source) {
		return "", false
	}

	return list.Source[line-1], true
}

func (list *Listing) prefix(w io.Writer, addr uint64, exists bool) {
	switch {
	case exists && list.Color:
		fmt.Fprintf(w, bold+"[%#04x]"+reset+" ", addr)
	case exists:
		fmt.Fprintf(w, "[%#04x] ", addr)
	case list.Color:
		fmt.Fprint(w, dim+"~~~~~~~~"+reset+" ")
	default:
		fmt.Fprint(w, "~~~~~~~~ ")
	}
}

func (list *Listing) write(w io.Writer, from int, count int, addresses map[int]uint64) error {
	for i := from; i < len(list.Source) && i < from+count; i++ {
		addr, exists := addresses[i+1]

		list.prefix(w, addr, exists)

		if _, err := fmt.Fprintln(w, list.Source[i]); err != nil {
			return err
		}
	}

	return nil
}

// Write prints every source line
func (list *Listing) Write(w io.Writer) error {
	return list.write(w, 0, len(list.Source), list.Addresses())
}

// WriteFrom prints count source lines starting at the line that emitted addr
func (list *Listing) WriteFrom(w io.Writer, addr uint64, count int) error {
	if list.SymTable == nil {
		return fmt.Errorf("No symbol table loaded")
	}

	line, exists := list.SymTable.Symbols[addr]

	if !exists {
		return fmt.Errorf("No instruction found at %#04x", addr)
	}

	return list.write(w, line-1, count, list.Addresses())
}

// Labels returns the labelled addresses in ascending order
func (list *Listing) Labels() []uint64 {
	if list.SymTable == nil {
		return nil
	}

	result := make([]uint64, 0, len(list.SymTable.Labels))
	for addr := range list.SymTable.Labels {
		result = append(result, addr)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result
}

// WriteSymbols prints one "address label" line per label
func (list *Listing) WriteSymbols(w io.Writer) error {
	for _, addr := range list.Labels() {
		label := list.SymTable.Labels[addr]

		if list.Color {
			label = bold + label + reset
		}

		if _, err := fmt.Fprintf(w, "%#04x %s\n", addr, label); err != nil {
			return err
		}
	}

	return nil
}
