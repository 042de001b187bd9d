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

package assembler

import (
	"bufio"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
)

// Assembler turns source lines into object code for one architecture. The
// arch.Spec is only read; all tables belong to the Assembler and are rebuilt
// by every FirstPass.
type Assembler struct {
	spec *arch.Spec

	counter   uint64
	addresses []uint64
	lines     []int
	symbols   map[string]uint64
	data      map[string]uint64

	section  SectionType
	declared map[SectionType]bool
}

func New(spec *arch.Spec) *Assembler {
	return &Assembler{
		spec:    spec,
		symbols: make(map[string]uint64),
		data:    make(map[string]uint64),
	}
}

// Reads source lines, dropping comments and surrounding whitespace
func ReadSource(input io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(input)

	for scanner.Scan() {
		lines = append(lines, clean(scanner.Text()))
	}

	return lines, scanner.Err()
}

func clean(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Symbols returns the address of every instruction label
func (asm *Assembler) Symbols() map[string]uint64 {
	return asm.symbols
}

// Data returns the address of every data label
func (asm *Assembler) Data() map[string]uint64 {
	return asm.data
}

// Addresses returns the start address of every data and instruction line in
// order, followed by the address one past the last line.
func (asm *Assembler) Addresses() []uint64 {
	return asm.addresses
}

func (asm *Assembler) reset() {
	asm.counter = 0
	asm.section = SECTION_NONE
	asm.declared = make(map[SectionType]bool)
}

// Updates the section state for a header line. Reports whether line was a
// header at all.
func (asm *Assembler) header(line string, strict bool) (bool, error) {
	var section SectionType

	switch line {
	case HEADER_DATA:
		section = SECTION_DATA
	case HEADER_TEXT:
		section = SECTION_TEXT
	default:
		if asm.section == SECTION_NONE {
			return false, &SectionError{"No section header (\".data\" or \".text\")."}
		}
		return false, nil
	}

	if strict && asm.declared[section] {
		return true, &SectionError{line + " section already declared."}
	}

	asm.declared[section] = true
	asm.section = section
	return true, nil
}

// FirstPass assigns an address to every line and collects labels. Running it
// again starts from scratch.
func (asm *Assembler) FirstPass(lines []string) error {
	asm.reset()
	asm.addresses = nil
	asm.lines = nil
	asm.symbols = make(map[string]uint64)
	asm.data = make(map[string]uint64)

	glog.V(1).Infof("first pass: %d lines", len(lines))

	for i, raw := range lines {
		line := clean(raw)

		if line == "" {
			continue
		}

		if err := asm.firstPassLine(line, i+1); err != nil {
			return &LineError{Line: i + 1, Source: line, Err: err}
		}
	}

	asm.addresses = append(asm.addresses, asm.counter)

	glog.V(1).Infof(
		"first pass done: %d symbols, %d data labels, end %#x",
		len(asm.symbols),
		len(asm.data),
		asm.counter,
	)

	return nil
}

func (asm *Assembler) firstPassLine(line string, number int) error {
	if ok, err := asm.header(line, true); ok || err != nil {
		return err
	}

	switch asm.section {
	case SECTION_DATA:
		decl, err := asm.parseData(line)
		if err != nil {
			return err
		}

		if err := asm.declare(decl.Label, asm.data); err != nil {
			return err
		}

		asm.record(number)
		asm.counter += uint64(decl.Units)

	case SECTION_TEXT:
		ctx, err := asm.analyse(line)
		if err != nil {
			return err
		}

		if label, ok := ctx.label(); ok {
			if err := asm.declare(label, asm.symbols); err != nil {
				return err
			}
		}

		asm.record(number)
		asm.counter += uint64(ctx.size / asm.spec.MinAddressableUnit)

		glog.V(2).Infof("%#x: %s (%d bits)", asm.addresses[len(asm.addresses)-1], line, ctx.size)
	}

	return nil
}

func (asm *Assembler) record(number int) {
	asm.addresses = append(asm.addresses, asm.counter)
	asm.lines = append(asm.lines, number)
}

// Binds label to the current location. Labels share one namespace across the
// instruction and data tables.
func (asm *Assembler) declare(label string, table map[string]uint64) error {
	_, text := asm.symbols[label]
	_, data := asm.data[label]

	if text || data {
		return &RedeclaredLabelError{label}
	}

	table[label] = asm.counter
	return nil
}

// SecondPass encodes every line using the addresses and labels of the last
// FirstPass. The object code produced before a failure is returned with the
// error.
func (asm *Assembler) SecondPass(lines []string) ([]string, error) {
	if asm.addresses == nil {
		return nil, &PassError{"Second pass requires a completed first pass"}
	}

	asm.reset()

	var result []string
	index := 0

	glog.V(1).Infof("second pass: %d lines", len(lines))

	for i, raw := range lines {
		line := clean(raw)

		if line == "" {
			continue
		}

		var object string

		ok, err := asm.header(line, false)
		if ok {
			continue
		}

		if err == nil {
			if index+1 >= len(asm.addresses) {
				err = &PassError{"Source differs from the first pass"}
			} else {
				object, err = asm.secondPassLine(line, index)
			}
		}

		if err != nil {
			return result, &LineError{Line: i + 1, Source: line, Err: err}
		}

		glog.V(2).Info(object)

		result = append(result, object)
		index++
	}

	return result, nil
}

func (asm *Assembler) secondPassLine(line string, index int) (string, error) {
	addr := asm.addresses[index]
	asm.counter = addr

	switch asm.section {
	case SECTION_DATA:
		decl, err := asm.parseData(line)
		if err != nil {
			return "", err
		}

		return asm.encodeData(decl, addr)

	case SECTION_TEXT:
		ctx, err := asm.analyse(line)
		if err != nil {
			return "", err
		}

		ctx.address = addr
		ctx.next = asm.addresses[index+1]

		return asm.encode(ctx)
	}

	return "", nil
}

// Assemble runs both passes. On failure the returned lines hold the object
// code produced so far followed by the diagnostic block. When symtable is not
// nil it is filled with the address to line and label tables.
func (asm *Assembler) Assemble(lines []string, symtable *SymTable) ([]string, error) {
	if err := asm.FirstPass(lines); err != nil {
		return []string{err.Error()}, err
	}

	result, err := asm.SecondPass(lines)
	if err != nil {
		return append(result, err.Error()), err
	}

	if symtable != nil {
		if symtable.Symbols == nil {
			symtable.Symbols = make(map[uint64]int)
		}
		if symtable.Labels == nil {
			symtable.Labels = make(map[uint64]string)
		}

		for i, number := range asm.lines {
			if _, exists := symtable.Symbols[asm.addresses[i]]; !exists {
				symtable.Symbols[asm.addresses[i]] = number
			}
		}

		for label, addr := range asm.data {
			symtable.Labels[addr] = label
		}

		for label, addr := range asm.symbols {
			symtable.Labels[addr] = label
		}
	}

	return result, nil
}
