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

package archfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/archfile"
	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
)

const toyText = `; toy machine
architecture:
	toy

registers:
	r0 0B
	r1 1I
	r2 10B
	r3 3H

instructionFormat:
	R : op(6) a(5) b(5)
	I : op(8) imm(8)
	J : op(8) off(8)

assemblyOpTree:
	instruction : label? mnem arg*
	label : LABEL
	arg : reg
	arg : INT
	arg : LABEL
	mnem : "add"
	mnem : "addi"
	mnem : "jmp"
	reg : "r0"
	reg : "r1"
	reg : "r2"
	reg : "r3"

Endian:
	big

minAddressableUnit:
	8

mnemonicData:
add
	op=100000B

	mnem reg, reg
		mnem a b
		--
		R

	mnem reg ,reg      ; operands swapped
		mnem b a
		--
		R

addi
	op=1I

	mnem INT
		mnem imm
		--
		I

jmp

	mnem LABEL
		mnem off
		op=2H
		J
`

type failCase struct {
	Name   string
	Input  string
	Error  error
	Reason string
}

// Replaces the first occurrence of old in the toy description
func patch(old string, new string) string {
	return strings.Replace(toyText, old, new, 1)
}

// Returns the errors carried by err, with line errors unwrapped
func causes(err error) []error {
	var errs archfile.Errors

	if !errors.As(err, &errs) {
		return []error{err}
	}

	var result []error

	for _, e := range errs {
		var line *archfile.LineError

		if errors.As(e, &line) {
			result = append(result, line.Err)
		} else {
			result = append(result, e)
		}
	}

	return result
}

func testFail(t *testing.T, read func(string) error, tests []failCase) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			err := read(test.Input)

			if err == nil {
				t.Fatalf("Expected error\n\twant:%s\n\thave:nil", reflect.TypeOf(test.Error))
			}

			for _, cause := range causes(err) {
				if reflect.TypeOf(cause) != reflect.TypeOf(test.Error) {
					continue
				}

				if strings.Contains(cause.Error(), test.Reason) {
					return
				}
			}

			t.Errorf(
				"Unexpected error\n\twant:%s (%s)\n\thave:%s",
				reflect.TypeOf(test.Error),
				test.Reason,
				err,
			)
		})
	}
}

func checkToy(t *testing.T, spec *arch.Spec) {
	if spec.Architecture != "toy" {
		t.Errorf("Architecture mismatch\n\twant:toy\n\thave:%s", spec.Architecture)
	}

	if spec.Endian != arch.ENDIAN_BIG || spec.MinAddressableUnit != 8 {
		t.Errorf("Layout mismatch\n\twant:big 8\n\thave:%s %d", spec.Endian, spec.MinAddressableUnit)
	}

	registers := map[string]string{"r0": "0", "r1": "1", "r2": "10", "r3": "11"}
	if !reflect.DeepEqual(spec.Registers, registers) {
		t.Errorf("Register mismatch\n\twant:%v\n\thave:%v", registers, spec.Registers)
	}

	if size := spec.InstructionFormats["R"].Size(); size != 16 {
		t.Errorf("Format size mismatch\n\twant:16\n\thave:%d", size)
	}

	if spec.Tree.Root != "instruction" {
		t.Errorf("Root mismatch\n\twant:instruction\n\thave:%s", spec.Tree.Root)
	}

	add := spec.Mnemonics["add"]
	if add == nil || len(add.Formats) != 2 {
		t.Fatalf("Mnemonic \"add\" should carry two formats\n\thave:%v", add)
	}

	if add.Formats[1].Pattern != "mnem reg ,reg" || add.Formats[1].Template != "mnem b a" {
		t.Errorf("Format mismatch\n\twant:mnem reg ,reg\n\thave:%s", add.Formats[1].Pattern)
	}

	if op := spec.Mnemonics["addi"].GlobalEncodings["op"]; op != "1" {
		t.Errorf("Global encoding mismatch\n\twant:1\n\thave:%s", op)
	}

	if op := spec.Mnemonics["jmp"].Formats[0].LocalEncodings["op"]; op != "10" {
		t.Errorf("Local encoding mismatch\n\twant:10\n\thave:%s", op)
	}
}

func TestReadText(t *testing.T) {
	spec, err := archfile.ReadText(strings.NewReader(toyText))

	if err != nil {
		t.Fatal(err)
	}

	checkToy(t, spec)
}

func TestReadTextAssemble(t *testing.T) {
	spec, err := archfile.ReadText(strings.NewReader(toyText))

	if err != nil {
		t.Fatal(err)
	}

	output, err := assembler.New(spec).Assemble([]string{
		".text",
		"start add r1, r2",
		"add r1 ,r2",
		"jmp start",
	}, nil)

	if err != nil {
		t.Fatal(err)
	}

	want := []string{"80 22", "80 41", "02 FA"}

	if len(output) != len(want) {
		t.Fatalf("Line count mismatch\n\twant:%d\n\thave:%d", len(want), len(output))
	}

	for i, line := range output {
		if !strings.HasSuffix(strings.TrimSpace(line), want[i]) {
			t.Errorf("Object code mismatch\n\twant:%s\n\thave:%s", want[i], line)
		}
	}
}

func TestReadTextFail(t *testing.T) {
	read := func(input string) error {
		_, err := archfile.ReadText(strings.NewReader(input))
		return err
	}

	tests := []failCase{
		{
			Name:   "No Header",
			Input:  "toy\n" + toyText,
			Error:  errors.New(""),
			Reason: "No section header.",
		},
		{
			Name:   "Duplicate Section",
			Input:  toyText + "\nendian:\n\tlittle\n",
			Error:  errors.New(""),
			Reason: "Endian section already declared.",
		},
		{
			Name:   "Missing Sections",
			Input:  patch("Endian:\n\tbig\n", ""),
			Error:  &archfile.MissingSectionError{},
			Reason: `"endian"`,
		},
		{
			Name:   "Missing Mnemonic Data",
			Input:  toyText[:strings.Index(toyText, "mnemonicData:")],
			Error:  &archfile.MissingSectionError{},
			Reason: `"mnemonicData"`,
		},
		{
			Name:   "Second Architecture",
			Input:  patch("\ttoy\n", "\ttoy\n\tother\n"),
			Error:  &archfile.SyntaxError{},
			Reason: "Architecture name already specified.",
		},
		{
			Name:   "Duplicate Register",
			Input:  patch("\tr3 3H", "\tr1 3H"),
			Error:  &archfile.SyntaxError{},
			Reason: `Register "r1" already defined.`,
		},
		{
			Name:   "Register Value",
			Input:  patch("\tr3 3H", "\tr3 3"),
			Error:  &archfile.SyntaxError{},
			Reason: "<value><B/H/I>",
		},
		{
			Name:   "Register Syntax",
			Input:  patch("\tr3 3H", "\tr3"),
			Error:  &archfile.SyntaxError{},
			Reason: "Register syntax error",
		},
		{
			Name:   "Zero Width Field",
			Input:  patch("imm(8)", "imm(0)"),
			Error:  &archfile.SyntaxError{},
			Reason: `Field "imm" must be at least one bit wide.`,
		},
		{
			Name:   "Duplicate Field",
			Input:  patch("a(5) b(5)", "a(5) a(5)"),
			Error:  &archfile.SyntaxError{},
			Reason: `Field "a" already defined in "R".`,
		},
		{
			Name:   "Duplicate Format",
			Input:  patch("\tJ : op(8) off(8)", "\tI : op(8) off(8)"),
			Error:  &archfile.SyntaxError{},
			Reason: `Instruction format "I" already defined.`,
		},
		{
			Name:   "Format Syntax",
			Input:  patch("\tJ : op(8) off(8)", "\tJ : op8"),
			Error:  &archfile.SyntaxError{},
			Reason: "InstructionFormat error",
		},
		{
			Name:   "Quantifier Outside Root",
			Input:  patch("\tlabel : LABEL", "\tlabel : LABEL?"),
			Error:  &archfile.SyntaxError{},
			Reason: "AssemblyOpTree error",
		},
		{
			Name:   "Endian",
			Input:  patch("\tbig", "\tmiddle"),
			Error:  &archfile.SyntaxError{},
			Reason: "Endian not recognised",
		},
		{
			Name:   "Addressable Unit",
			Input:  patch("\t8\n", "\t0\n"),
			Error:  &archfile.SyntaxError{},
			Reason: "positive integer",
		},
		{
			Name:   "Duplicate Mnemonic",
			Input:  toyText + "\nadd\n\n\tmnem INT\n\t\tmnem imm\n\t\t--\n\t\tI\n",
			Error:  &archfile.SyntaxError{},
			Reason: `Mnemonic name "add" already defined.`,
		},
		{
			Name:   "Unknown Token",
			Input:  patch("\tmnem INT\n", "\tmnem HEX\n"),
			Error:  &archfile.SyntaxError{},
			Reason: `Operand format token "HEX" not found in AssemblyOpTree.`,
		},
		{
			Name:   "Duplicate Pattern",
			Input:  patch("\tmnem reg ,reg", "\tmnem reg, reg"),
			Error:  &archfile.SyntaxError{},
			Reason: `Operand format "mnem reg, reg" already defined for mnemonic "add".`,
		},
		{
			Name:   "Duplicate Template Field",
			Input:  patch("\t\tmnem b a", "\t\tmnem b b"),
			Error:  &archfile.SyntaxError{},
			Reason: `Duplicate field "b" defined.`,
		},
		{
			Name:   "Global Encodings",
			Input:  patch("\top=100000B", "\top 100000B"),
			Error:  &archfile.SyntaxError{},
			Reason: "Global encodings syntax error",
		},
		{
			Name:   "Local Encodings",
			Input:  patch("\t\top=2H", "\t\top:2H"),
			Error:  &archfile.SyntaxError{},
			Reason: "Local encodings syntax error",
		},
		{
			Name:   "Incomplete Format",
			Input:  patch("\t\tmnem imm\n\t\t--\n\t\tI\n", "\t\tmnem imm\n"),
			Error:  &archfile.SyntaxError{},
			Reason: "local field encodings",
		},
		{
			Name:   "Missing Format",
			Input:  toyText + "\nnop\n",
			Error:  &archfile.SyntaxError{},
			Reason: `Mnemonic format missing for mnemonic "nop".`,
		},
		{
			Name:   "Oversized Encoding",
			Input:  patch("\t\top=2H", "\t\top=1FFH"),
			Error:  &arch.SpecError{},
			Reason: "exceeds expected bits",
		},
		{
			Name:   "Unmapped Field",
			Input:  patch("\t\tmnem imm\n", "\t\t--\n"),
			Error:  &arch.SpecError{},
			Reason: `field "imm" has no encoding or operand`,
		},
	}

	testFail(t, read, tests)
}

// One bad mnemonic does not hide the errors of the next one
func TestReadTextRecovery(t *testing.T) {
	input := patch("\top=100000B", "\top 100000B")
	input = strings.Replace(input, "\t\top=2H", "\t\top:2H", 1)

	_, err := archfile.ReadText(strings.NewReader(input))

	var errs archfile.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Expected archfile.Errors\n\thave:%v", err)
	}

	if len(errs) != 2 {
		t.Fatalf("Error count mismatch\n\twant:2\n\thave:%d\n%s", len(errs), errs.Report())
	}

	for _, e := range errs {
		if _, ok := e.(*archfile.LineError); !ok {
			t.Errorf("Expected line error\n\thave:%s", reflect.TypeOf(e))
		}
	}

	want := strings.Count(toyText[:strings.Index(toyText, "\top=100000B")], "\n") + 1

	if line := errs[0].(*archfile.LineError).Line; line != want {
		t.Errorf("Line mismatch\n\twant:%d\n\thave:%d", want, line)
	}
}

func TestReport(t *testing.T) {
	if report := (archfile.Errors{}).Report(); report != "No errors found within specification file.\n" {
		t.Errorf("Report mismatch\n\thave:%q", report)
	}

	_, err := archfile.ReadText(strings.NewReader("toy\n" + toyText))

	var errs archfile.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Expected archfile.Errors\n\thave:%v", err)
	}

	want := "------------------------------------------\n" +
		"Exception at line 1 :\n\n" +
		"toy\n" +
		"------------------------------------------\n\n" +
		"No section header.\n\n"

	if report := errs.Report(); report != want {
		t.Errorf("Report mismatch\n\twant:%q\n\thave:%q", want, report)
	}
}

const toyYAML = `
architecture: toy
endian: big
minAddressableUnit: 8
registers:
  r0: 0B
  r1: 1I
  r2: 10B
  r3: 3H
instructionFormats:
  R: [{name: op, bits: 6}, {name: a, bits: 5}, {name: b, bits: 5}]
  I: [{name: op, bits: 8}, {name: imm, bits: 8}]
  J: [{name: op, bits: 8}, {name: off, bits: 8}]
assemblyOpTree:
  root: instruction
  rules:
    - {node: label, expression: LABEL}
    - {node: instruction, expression: "label? mnem arg*"}
    - {node: arg, expression: reg}
    - {node: arg, expression: INT}
    - {node: arg, expression: LABEL}
    - {node: mnem, expression: '"add"'}
    - {node: mnem, expression: '"addi"'}
    - {node: mnem, expression: '"jmp"'}
    - {node: reg, expression: '"r0"'}
    - {node: reg, expression: '"r1"'}
    - {node: reg, expression: '"r2"'}
    - {node: reg, expression: '"r3"'}
mnemonics:
  - name: add
    globalEncodings: {op: 100000B}
    formats:
      - {pattern: "mnem reg, reg", fields: "mnem a b", layout: [R]}
      - {pattern: "mnem reg ,reg", fields: "mnem b a", layout: [R]}
  - name: addi
    globalEncodings: {op: 1I}
    formats:
      - {pattern: "mnem INT", fields: "mnem imm", layout: [I]}
  - name: jmp
    formats:
      - pattern: mnem LABEL
        fields: mnem off
        localEncodings: {op: 2H}
        layout: [J]
`

func TestReadYAML(t *testing.T) {
	spec, err := archfile.ReadYAML(strings.NewReader(toyYAML))

	if err != nil {
		t.Fatal(err)
	}

	checkToy(t, spec)
}

func TestReadYAMLFail(t *testing.T) {
	read := func(input string) error {
		_, err := archfile.ReadYAML(strings.NewReader(input))
		return err
	}

	patchYAML := func(old string, new string) string {
		return strings.Replace(toyYAML, old, new, 1)
	}

	tests := []failCase{
		{
			Name:   "Unknown Key",
			Input:  toyYAML + "extra: 1\n",
			Error:  &archfile.SyntaxError{},
			Reason: "YAML error",
		},
		{
			Name:   "Missing Sections",
			Input:  patchYAML("endian: big\n", ""),
			Error:  &archfile.MissingSectionError{},
			Reason: `"endian"`,
		},
		{
			Name:   "Register Value",
			Input:  patchYAML("r3: 3H", "r3: 3Q"),
			Error:  &archfile.SyntaxError{},
			Reason: `Register "r3"`,
		},
		{
			Name:   "Zero Width Field",
			Input:  patchYAML("{name: imm, bits: 8}", "{name: imm, bits: 0}"),
			Error:  &archfile.SyntaxError{},
			Reason: `Field "imm" must be at least one bit wide.`,
		},
		{
			Name:   "Missing Root",
			Input:  patchYAML("root: instruction", "root: start"),
			Error:  &archfile.SyntaxError{},
			Reason: `Root node "start" has no expansion.`,
		},
		{
			Name:   "Duplicate Mnemonic",
			Input:  patchYAML("  - name: addi", "  - name: add"),
			Error:  &archfile.SyntaxError{},
			Reason: `Mnemonic name "add" already defined.`,
		},
		{
			Name:   "Duplicate Pattern",
			Input:  patchYAML(`pattern: "mnem reg ,reg"`, `pattern: "mnem reg, reg"`),
			Error:  &archfile.SyntaxError{},
			Reason: `operand format "mnem reg, reg" already defined.`,
		},
		{
			Name:   "Unknown Layout",
			Input:  patchYAML("layout: [I]", "layout: [X]"),
			Error:  &arch.ConsistencyError{},
			Reason: "undeclared instruction format",
		},
	}

	testFail(t, read, tests)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"toy.txt":  toyText,
		"toy.yaml": toyYAML,
		"toy.yml":  toyYAML,
	}

	for name, contents := range files {
		path := filepath.Join(dir, name)

		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}

		t.Run(name, func(t *testing.T) {
			spec, err := archfile.Read(path, archfile.FORMAT_AUTO)

			if err != nil {
				t.Fatal(err)
			}

			checkToy(t, spec)
		})
	}

	if _, err := archfile.Read(filepath.Join(dir, "toy.txt"), archfile.FORMAT_YAML); err == nil {
		t.Errorf("Expected error reading text as YAML")
	}

	if _, err := archfile.Read(filepath.Join(dir, "missing.txt"), archfile.FORMAT_AUTO); err == nil {
		t.Errorf("Expected error reading missing file")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]archfile.Format{
		"":     archfile.FORMAT_AUTO,
		"auto": archfile.FORMAT_AUTO,
		"TEXT": archfile.FORMAT_TEXT,
		"yaml": archfile.FORMAT_YAML,
		"yml":  archfile.FORMAT_YAML,
	}

	for input, want := range tests {
		have, err := archfile.ParseFormat(input)

		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("Format mismatch\n\twant:%s\n\thave:%s", want, have)
		}
	}

	if _, err := archfile.ParseFormat("json"); err == nil {
		t.Errorf("Expected error for unknown format")
	}
}
