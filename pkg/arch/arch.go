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

package arch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

type Endian uint

const (
	ENDIAN_BIG Endian = iota
	ENDIAN_LITTLE
)

type Field struct {
	Name string
	Bits int
}

type InstructionFormat struct {
	Name   string
	Fields []Field
}

// OperandFormat is one accepted operand syntax of a mnemonic. Encodings map
// field names to binary strings; Template is empty when no operand is mapped.
type OperandFormat struct {
	Pattern        string
	Template       string
	LocalEncodings map[string]string
	Layout         []string
}

type Mnemonic struct {
	Name            string
	GlobalEncodings map[string]string
	Formats         []*OperandFormat
}

// Spec describes a target architecture. It is built once by a reader and is
// never mutated by the assembler.
type Spec struct {
	Architecture       string
	Endian             Endian
	MinAddressableUnit int
	Registers          map[string]string
	InstructionFormats map[string]*InstructionFormat
	Mnemonics          map[string]*Mnemonic
	Tree               *grammar.Tree
}

func ParseEndian(s string) (Endian, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big":
		return ENDIAN_BIG, nil
	case "little":
		return ENDIAN_LITTLE, nil
	}

	return ENDIAN_BIG, fmt.Errorf("Endian must be \"big\" or \"little\"\n\thave:%s", s)
}

func (endian Endian) String() string {
	if endian == ENDIAN_LITTLE {
		return "little"
	}
	return "big"
}

func (format *InstructionFormat) Size() int {
	size := 0
	for _, field := range format.Fields {
		size += field.Bits
	}
	return size
}

// Tokens returns the grammar tokens of the pattern, commas removed
func (format *OperandFormat) Tokens() []string {
	return grammar.Tokenize(format.Pattern)
}

func (format *OperandFormat) TemplateTokens() []string {
	return strings.Fields(format.Template)
}

// TemplateFields returns the field names named by the template, in order
func (format *OperandFormat) TemplateFields() []string {
	var result []string

	for _, token := range format.TemplateTokens() {
		for _, part := range grammar.SplitShape(token) {
			if !grammar.IsSeparator(part) {
				result = append(result, part)
			}
		}
	}

	return result
}

func (format *OperandFormat) String() string {
	return format.Pattern
}

func NewSpec() *Spec {
	return &Spec{
		MinAddressableUnit: 8,
		Registers:          make(map[string]string),
		InstructionFormats: make(map[string]*InstructionFormat),
		Mnemonics:          make(map[string]*Mnemonic),
		Tree:               grammar.NewTree(),
	}
}

// Register and mnemonic names can never be labels or numbers
func (spec *Spec) IsReserved(token string) bool {
	if _, ok := spec.Registers[token]; ok {
		return true
	}

	_, ok := spec.Mnemonics[token]
	return ok
}

// Fields concatenates the fields of every instruction format in the layout
func (spec *Spec) Fields(format *OperandFormat) ([]Field, error) {
	var result []Field

	for _, name := range format.Layout {
		instruction, ok := spec.InstructionFormats[name]

		if !ok {
			return nil, &ConsistencyError{
				Context: format.Pattern,
				Reason:  fmt.Sprintf("instruction format \"%s\" is not declared", name),
			}
		}

		result = append(result, instruction.Fields...)
	}

	return result, nil
}

// Size is the encoded size of format in bits
func (spec *Spec) Size(format *OperandFormat) (int, error) {
	fields, err := spec.Fields(format)
	if err != nil {
		return 0, err
	}

	size := 0
	for _, field := range fields {
		size += field.Bits
	}

	return size, nil
}

// MnemonicNames returns the declared mnemonics sorted by name
func (spec *Spec) MnemonicNames() []string {
	return SortedKeys(spec.Mnemonics)
}

// Validate checks the cross references between tables. Every problem found is
// reported in the returned *SpecError.
func (spec *Spec) Validate() error {
	var errs []error

	report := func(context string, msg string, args ...interface{}) {
		errs = append(errs, &ConsistencyError{
			Context: context,
			Reason:  fmt.Sprintf(msg, args...),
		})
	}

	if spec.MinAddressableUnit <= 0 {
		report("minAddressableUnit", "must be a positive integer, have %d", spec.MinAddressableUnit)
	}

	if spec.Tree == nil {
		report("assemblyOpTree", "no grammar declared")
	} else if err := spec.Tree.Validate(); err != nil {
		errs = append(errs, err)
	}

	for _, name := range SortedKeys(spec.Registers) {
		if !encoding.IsBinary(spec.Registers[name]) {
			report("register "+name, "value \"%s\" is not a binary string", spec.Registers[name])
		}
	}

	for _, name := range SortedKeys(spec.InstructionFormats) {
		seen := make(map[string]bool)

		for _, field := range spec.InstructionFormats[name].Fields {
			if field.Bits <= 0 {
				report("instruction format "+name, "field \"%s\" must be at least one bit wide", field.Name)
			}

			if seen[field.Name] {
				report("instruction format "+name, "field \"%s\" is declared twice", field.Name)
			}

			seen[field.Name] = true
		}
	}

	for _, name := range spec.MnemonicNames() {
		mnemonic := spec.Mnemonics[name]

		if len(mnemonic.Formats) == 0 {
			report("mnemonic "+name, "no operand formats declared")
		}

		for _, format := range mnemonic.Formats {
			errs = append(errs, spec.ValidateFormat(mnemonic, format)...)
		}
	}

	if len(errs) > 0 {
		return &SpecError{Errors: errs}
	}

	return nil
}

// ValidateFormat checks one operand format of mnemonic against the grammar and
// the instruction formats
func (spec *Spec) ValidateFormat(mnemonic *Mnemonic, format *OperandFormat) []error {
	var errs []error
	context := fmt.Sprintf("mnemonic %s, operand format \"%s\"", mnemonic.Name, format.Pattern)

	report := func(msg string, args ...interface{}) {
		errs = append(errs, &ConsistencyError{
			Context: context,
			Reason:  fmt.Sprintf(msg, args...),
		})
	}

	if spec.Tree != nil {
		for _, token := range format.Tokens() {
			if !spec.Tree.Knows(token) {
				report("token \"%s\" does not appear in the assembly operand tree", token)
			}
		}
	}

	if len(format.Layout) == 0 {
		report("no instruction layout declared")
		return errs
	}

	fields, err := spec.Fields(format)
	if err != nil {
		report("instruction layout %q names an undeclared instruction format", format.Layout)
		return errs
	}

	width := make(map[string]int)
	size := 0

	for _, field := range fields {
		if _, ok := width[field.Name]; ok {
			report("field \"%s\" appears twice in instruction layout", field.Name)
		}

		width[field.Name] = field.Bits
		size += field.Bits
	}

	mapped := make(map[string]bool)
	for _, name := range format.TemplateFields() {
		mapped[name] = true
	}

	checkFixed := func(kind string, encodings map[string]string) {
		for _, name := range SortedKeys(encodings) {
			value := encodings[name]

			if !encoding.IsBinary(value) {
				report("%s encoding %s=%s is not a binary string", kind, name, value)
				continue
			}

			if bits, ok := width[name]; ok && len(value) > bits {
				report(
					"%s encoding %s=%s exceeds expected bits\n\twant:%d\n\thave:%d",
					kind, name, value, bits, len(value),
				)
			}
		}
	}

	checkFixed("global", mnemonic.GlobalEncodings)
	checkFixed("local", format.LocalEncodings)

	for _, field := range fields {
		_, global := mnemonic.GlobalEncodings[field.Name]
		_, local := format.LocalEncodings[field.Name]

		if !global && !local && !mapped[field.Name] {
			report("field \"%s\" has no encoding or operand", field.Name)
		}
	}

	if spec.MinAddressableUnit > 0 && size%spec.MinAddressableUnit != 0 {
		report(
			"instruction size must be a multiple of the addressable unit\n\twant:%d\n\thave:%d",
			spec.MinAddressableUnit,
			size,
		)
	}

	return errs
}

// SortedKeys returns the keys of m in ascending order
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
