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
	"fmt"
	"strings"

	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

type SectionType uint
type SourceType uint
type DataType uint

// SymTable maps addresses back to the source. Symbols holds the 1-based line
// number of every emitted address; Labels the label declared at an address.
type SymTable struct {
	Source  string
	Symbols map[uint64]int
	Labels  map[uint64]string
}

func NewSymTable(source string) *SymTable {
	return &SymTable{
		Source:  source,
		Symbols: make(map[uint64]int),
		Labels:  make(map[uint64]string),
	}
}

// FieldSource says where the bits of an instruction field come from: a fixed
// encoding of the mnemonic or operand format, or a source operand token.
type FieldSource struct {
	Type  SourceType
	Bits  string
	Token string
}

// LineError ties a failure to the source line it occurred on. Its message is
// the diagnostic block appended to the object code.
type LineError struct {
	Line   int
	Source string
	Err    error
}

func (err *LineError) Error() string {
	var builder strings.Builder

	builder.WriteString(rule + "\n")
	fmt.Fprintf(&builder, "Exception at line %d :\n\n", err.Line)
	builder.WriteString(err.Source + "\n")
	builder.WriteString(rule + "\n\n")
	builder.WriteString(err.Err.Error() + "\n\n")

	return builder.String()
}

func (err *LineError) Unwrap() error {
	return err.Err
}

type GrammarError struct {
	Tokens []string
	Err    error
}

func (err *GrammarError) Error() string {
	if _, ok := err.Err.(*grammar.CycleError); ok {
		return err.Err.Error()
	}

	return fmt.Sprintf(
		"Assembly line not consistent with assemblyOpTree. Please check tree.\n\thave:%s",
		strings.Join(err.Tokens, " "),
	)
}

func (err *GrammarError) Unwrap() error {
	return err.Err
}

type UnknownMnemonicError struct {
	Tokens []string
}

func (err *UnknownMnemonicError) Error() string {
	return fmt.Sprintf(
		"Mnemonic not declared in mnemonicData\n\thave:%s",
		strings.Join(err.Tokens, " "),
	)
}

type OperandFormatError struct {
	Mnemonic string
	Formats  []string
	Path     string
}

func (err *OperandFormatError) Error() string {
	var builder strings.Builder

	fmt.Fprintf(
		&builder,
		"Incorrectly formatted operands. Expected formats for mnemonic \"%s\":\n",
		err.Mnemonic,
	)

	for _, format := range err.Formats {
		builder.WriteString("\n" + format)
	}

	builder.WriteString("\n\nOperands named by a format are not optional.\n")
	builder.WriteString("Operand tree built from assembly line:\n\n" + err.Path)

	return builder.String()
}

type OperandSyntaxError struct {
	Mnemonic string
	Formats  []string
}

func (err *OperandSyntaxError) Error() string {
	return fmt.Sprintf(
		"Assembly line syntax error. Check use of commas and spaces between operands of \"%s\". Expected syntax:\n\n%s",
		err.Mnemonic,
		strings.Join(err.Formats, "\n"),
	)
}

type FieldMappingError struct {
	Template string
	Operands []string
	Reason   string
}

func (err *FieldMappingError) Error() string {
	return fmt.Sprintf(
		"%s\n\nSource assembly operands: %s\nOperand field encodings:  %s",
		err.Reason,
		strings.Join(err.Operands, " "),
		err.Template,
	)
}

type UnknownLabelError struct {
	Label string
}

func (err *UnknownLabelError) Error() string {
	return fmt.Sprintf("Label \"%s\" not found", err.Label)
}

type OversizedValueError struct {
	Token    string
	Field    string
	Required int
	Received int
}

func (err *OversizedValueError) Error() string {
	return fmt.Sprintf(
		"Bit representation of \"%s\" exceeds expected bits for field \"%s\"\n\twant:%d\n\thave:%d",
		err.Token,
		err.Field,
		err.Required,
		err.Received,
	)
}

type UnknownFieldSourceError struct {
	Field string
	Token string
}

func (err *UnknownFieldSourceError) Error() string {
	if err.Token == "" {
		return fmt.Sprintf(
			"Instruction field \"%s\" has no fixed encoding and no mapped operand",
			err.Field,
		)
	}

	return fmt.Sprintf(
		"Encoding data for \"%s\" (instruction field \"%s\") not found. "+
			"Declare it as a register or give it a terminal type in assemblyOpTree.",
		err.Token,
		err.Field,
	)
}

type InstructionSizeError struct {
	Unit int
	Size int
}

func (err *InstructionSizeError) Error() string {
	return fmt.Sprintf(
		"Instruction size is not a multiple of the addressable unit\n\twant:%d\n\thave:%d",
		err.Unit,
		err.Size,
	)
}

type SectionError struct {
	Reason string
}

func (err *SectionError) Error() string {
	return err.Reason
}

type DataSyntaxError struct {
	Reason string
}

func (err *DataSyntaxError) Error() string {
	return ".data line incorrect syntax: " + err.Reason
}

type RedeclaredLabelError struct {
	Label string
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf("\"%s\" already exists in symbol table", err.Label)
}

type PassError struct {
	Reason string
}

func (err *PassError) Error() string {
	return err.Reason
}
