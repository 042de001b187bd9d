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

package archfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

const (
	SECTION_ARCHITECTURE = "architecture"
	SECTION_REGISTERS    = "registers"
	SECTION_FORMATS      = "instructionFormat"
	SECTION_TREE         = "assemblyOpTree"
	SECTION_ENDIAN       = "endian"
	SECTION_UNIT         = "minAddressableUnit"
	SECTION_MNEMONICS    = "mnemonicData"
)

var sections = []string{
	SECTION_ARCHITECTURE,
	SECTION_REGISTERS,
	SECTION_FORMATS,
	SECTION_TREE,
	SECTION_ENDIAN,
	SECTION_UNIT,
	SECTION_MNEMONICS,
}

// Sections that must carry at least one entry
var required = []string{
	SECTION_ARCHITECTURE,
	SECTION_FORMATS,
	SECTION_TREE,
	SECTION_ENDIAN,
	SECTION_UNIT,
}

var (
	registerLine  = regexp.MustCompile(`^\S+\s+\S+$`)
	formatLine    = regexp.MustCompile(`^[^\s:]+\s*:\s*[a-zA-Z0-9]+\([0-9]+\)(\s*[a-zA-Z0-9]+\([0-9]+\))*$`)
	formatField   = regexp.MustCompile(`([a-zA-Z0-9]+)\(([0-9]+)\)`)
	treeLine      = regexp.MustCompile(`^[^:]+:.+$`)
	unitLine      = regexp.MustCompile(`^[0-9]+$`)
	nameLine      = regexp.MustCompile(`^\S+$`)
	encodingsLine = regexp.MustCompile(
		`^[a-zA-Z0-9]+\s*=\s*[a-zA-Z0-9]+(\s*,\s*[a-zA-Z0-9]+\s*=\s*[a-zA-Z0-9]+)*$`,
	)
)

// Position within a mnemonicData block
type mnemState uint

const (
	MNEM_NAME mnemState = iota
	MNEM_GLOBAL
	MNEM_FORMAT
	MNEM_TEMPLATE
	MNEM_LOCAL
	MNEM_LAYOUT
)

type textReader struct {
	spec     *arch.Spec
	errs     Errors
	section  string
	declared map[string]bool
	found    map[string]bool

	state    mnemState
	mnemonic *arch.Mnemonic
	format   *arch.OperandFormat
	blank    bool
	aborting bool
}

func title(section string) string {
	return strings.ToUpper(section[:1]) + section[1:]
}

func syntax(section string, msg string, args ...interface{}) error {
	return &SyntaxError{Section: title(section), Reason: fmt.Sprintf(msg, args...)}
}

// Strips the comment and trailing whitespace, leading tabs are significant
func clean(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimRight(line, " \t\r")
}

func header(line string) (string, bool) {
	lower := strings.ToLower(line)

	for _, section := range sections {
		if strings.HasPrefix(lower, strings.ToLower(section)+":") {
			return section, true
		}
	}

	return "", false
}

func indent(line string, tabs int) bool {
	if len(line) <= tabs || strings.TrimLeft(line[:tabs], "\t") != "" {
		return false
	}
	return line[tabs] != '\t' && line[tabs] != ' '
}

// ReadText parses the sectioned text description. Every section except
// mnemonicData is read first so operand formats can be checked against the
// grammar and the instruction formats. Line errors are collected and returned
// together as Errors.
func ReadText(r io.Reader) (*arch.Spec, error) {
	var raw []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw = append(raw, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	reader := &textReader{
		spec:     arch.NewSpec(),
		declared: make(map[string]bool),
		found:    make(map[string]bool),
	}

	glog.V(1).Infof("archfile: first scan, %d lines", len(raw))

	for i, source := range raw {
		if err := reader.firstScan(clean(source)); err != nil {
			reader.errs = append(reader.errs, &LineError{i + 1, source, err})
		}
	}

	var missing []string
	for _, section := range required {
		if !reader.found[section] {
			missing = append(missing, section)
		}
	}

	if len(missing) > 0 {
		reader.errs = append(reader.errs, &MissingSectionError{Sections: missing})
	}

	if reader.found[SECTION_TREE] {
		if err := reader.spec.Tree.Validate(); err != nil {
			reader.errs = append(reader.errs, err)
		}
	}

	if len(reader.errs) > 0 {
		return nil, reader.errs
	}

	glog.V(1).Infof("archfile: second scan")

	reader.section = ""

	for i, source := range raw {
		line := clean(source)

		if section, ok := header(line); ok {
			reader.section = section
			continue
		}

		if reader.section != SECTION_MNEMONICS {
			continue
		}

		if err := reader.mnemonicLine(line); err != nil {
			reader.errs = append(reader.errs, &LineError{i + 1, source, err})
			reader.aborting = true
			reader.blank = line == ""
		}
	}

	if err := reader.finish(); err != nil {
		last := len(raw)
		reader.errs = append(reader.errs, &LineError{last, raw[last-1], err})
	}

	if !reader.found[SECTION_MNEMONICS] {
		reader.errs = append(reader.errs, &MissingSectionError{
			Sections: []string{SECTION_MNEMONICS},
		})
	}

	if len(reader.errs) > 0 {
		return nil, reader.errs
	}

	if err := reader.spec.Validate(); err != nil {
		return nil, flatten(err)
	}

	glog.V(1).Infof(
		"archfile: %s, %d mnemonics",
		reader.spec.Architecture,
		len(reader.spec.Mnemonics),
	)

	return reader.spec, nil
}

func flatten(err error) Errors {
	if specErr, ok := err.(*arch.SpecError); ok {
		return Errors(specErr.Errors)
	}
	return Errors{err}
}

func (reader *textReader) firstScan(line string) error {
	if section, ok := header(line); ok {
		if reader.declared[section] {
			return fmt.Errorf("%s section already declared.", title(section))
		}

		reader.declared[section] = true
		reader.section = section
		return nil
	}

	if reader.section == "" {
		if strings.TrimSpace(line) != "" {
			return fmt.Errorf("No section header.")
		}
		return nil
	}

	if reader.section == SECTION_MNEMONICS {
		return nil
	}

	line = strings.TrimSpace(line)

	if line == "" {
		return nil
	}

	spec := reader.spec

	switch reader.section {
	case SECTION_ARCHITECTURE:
		if reader.found[SECTION_ARCHITECTURE] {
			return syntax(SECTION_ARCHITECTURE, "Architecture name already specified.")
		}
		spec.Architecture = line

	case SECTION_REGISTERS:
		if !registerLine.MatchString(line) {
			return syntax(SECTION_REGISTERS, "Register syntax error, <registerName> <value><B/H/I> expected.")
		}

		tokens := strings.Fields(line)

		if _, ok := spec.Registers[tokens[0]]; ok {
			return syntax(SECTION_REGISTERS, "Register \"%s\" already defined.", tokens[0])
		}

		value, err := encoding.ParseValue(tokens[1])
		if err != nil {
			return syntax(SECTION_REGISTERS, "%s", err)
		}

		spec.Registers[tokens[0]] = value

	case SECTION_FORMATS:
		format, err := parseInstructionFormat(line)
		if err != nil {
			return err
		}

		if _, ok := spec.InstructionFormats[format.Name]; ok {
			return syntax(SECTION_FORMATS, "Instruction format \"%s\" already defined.", format.Name)
		}

		spec.InstructionFormats[format.Name] = format

	case SECTION_TREE:
		if !treeLine.MatchString(line) {
			return syntax(SECTION_TREE, "Syntax error, <node> : <expression> expected.")
		}

		node, expression, _ := strings.Cut(line, ":")

		if err := spec.Tree.AddRule(strings.TrimSpace(node), strings.TrimSpace(expression)); err != nil {
			return syntax(SECTION_TREE, "%s", err)
		}

	case SECTION_ENDIAN:
		if reader.found[SECTION_ENDIAN] {
			return syntax(SECTION_ENDIAN, "Endian already specified.")
		}

		endian, err := arch.ParseEndian(line)
		if err != nil {
			return syntax(SECTION_ENDIAN, "Endian not recognised, \"big\" or \"little\" expected.")
		}

		spec.Endian = endian

	case SECTION_UNIT:
		if reader.found[SECTION_UNIT] {
			return syntax(SECTION_UNIT, "Minimum addressable unit already specified.")
		}

		if !unitLine.MatchString(line) {
			return syntax(SECTION_UNIT, "Minimum addressable unit should be a positive integer.")
		}

		unit, err := strconv.Atoi(line)
		if err != nil || unit <= 0 {
			return syntax(SECTION_UNIT, "Minimum addressable unit should be a positive integer.")
		}

		spec.MinAddressableUnit = unit
	}

	reader.found[reader.section] = true

	return nil
}

func parseInstructionFormat(line string) (*arch.InstructionFormat, error) {
	if !formatLine.MatchString(line) {
		return nil, syntax(
			SECTION_FORMATS,
			"Syntax error, <formatName> : <fieldName>(<bitLength>) ... expected.",
		)
	}

	name, fields, _ := strings.Cut(line, ":")
	format := &arch.InstructionFormat{Name: strings.TrimSpace(name)}
	seen := make(map[string]bool)

	for _, match := range formatField.FindAllStringSubmatch(fields, -1) {
		bits, err := strconv.Atoi(match[2])

		if err != nil || bits <= 0 {
			return nil, syntax(SECTION_FORMATS, "Field \"%s\" must be at least one bit wide.", match[1])
		}

		if seen[match[1]] {
			return nil, syntax(SECTION_FORMATS, "Field \"%s\" already defined in \"%s\".", match[1], format.Name)
		}

		seen[match[1]] = true
		format.Fields = append(format.Fields, arch.Field{Name: match[1], Bits: bits})
	}

	return format, nil
}

func parseEncodings(kind string, line string) (map[string]string, error) {
	result := make(map[string]string)

	if line == "--" {
		return result, nil
	}

	if !encodingsLine.MatchString(line) {
		return nil, syntax(
			SECTION_MNEMONICS,
			"%s encodings syntax error, <fieldName>=<value><B/H/I> expected.",
			kind,
		)
	}

	for _, pair := range strings.Split(line, ",") {
		field, value, _ := strings.Cut(pair, "=")

		binary, err := encoding.ParseValue(strings.TrimSpace(value))
		if err != nil {
			return nil, syntax(SECTION_MNEMONICS, "%s", err)
		}

		result[strings.TrimSpace(field)] = binary
	}

	return result, nil
}

func (reader *textReader) mnemonicLine(line string) error {
	if line == "" {
		reader.blank = true

		if reader.aborting {
			return nil
		}

		switch reader.state {
		case MNEM_TEMPLATE, MNEM_LOCAL, MNEM_LAYOUT:
			return reader.incomplete()
		case MNEM_GLOBAL:
			reader.state = MNEM_FORMAT
		}

		return nil
	}

	reader.found[SECTION_MNEMONICS] = true

	if reader.aborting {
		if !reader.blank || !indent(line, 0) {
			reader.blank = false
			return nil
		}

		reader.aborting = false
		reader.state = MNEM_NAME
	}

	blank := reader.blank
	reader.blank = false

	switch reader.state {
	case MNEM_NAME:
		if !indent(line, 0) {
			return syntax(SECTION_MNEMONICS, "Mnemonic name not declared.")
		}
		return reader.addMnemonic(line)

	case MNEM_GLOBAL:
		if !indent(line, 1) {
			return syntax(SECTION_MNEMONICS, "Global encodings or blank line expected after mnemonic name.")
		}

		encodings, err := parseEncodings("Global", strings.TrimSpace(line))
		if err != nil {
			return err
		}

		reader.mnemonic.GlobalEncodings = encodings
		reader.state = MNEM_FORMAT

	case MNEM_FORMAT:
		if !blank {
			return syntax(SECTION_MNEMONICS, "Blank line expected.")
		}

		if indent(line, 0) {
			if len(reader.mnemonic.Formats) == 0 {
				return reader.missingFormat()
			}
			return reader.addMnemonic(line)
		}

		if !indent(line, 1) {
			return syntax(SECTION_MNEMONICS, "Operand format should be indented by one tab.")
		}

		return reader.addFormat(strings.TrimSpace(line))

	case MNEM_TEMPLATE, MNEM_LOCAL, MNEM_LAYOUT:
		if !indent(line, 2) {
			return reader.incomplete()
		}

		return reader.formatData(strings.TrimSpace(line))
	}

	return nil
}

func (reader *textReader) addMnemonic(line string) error {
	name := strings.TrimSpace(line)

	if !nameLine.MatchString(name) {
		return syntax(
			SECTION_MNEMONICS,
			"Mnemonic name syntax error, should only be single token (no spaces).",
		)
	}

	if _, ok := reader.spec.Mnemonics[name]; ok {
		return syntax(SECTION_MNEMONICS, "Mnemonic name \"%s\" already defined.", name)
	}

	reader.mnemonic = &arch.Mnemonic{
		Name:            name,
		GlobalEncodings: make(map[string]string),
	}
	reader.spec.Mnemonics[name] = reader.mnemonic
	reader.state = MNEM_GLOBAL

	glog.V(2).Infof("archfile: mnemonic %s", name)

	return nil
}

func (reader *textReader) addFormat(pattern string) error {
	for _, token := range grammar.Tokenize(pattern) {
		if !reader.spec.Tree.Knows(token) {
			return syntax(
				SECTION_MNEMONICS,
				"Operand format token \"%s\" not found in AssemblyOpTree.",
				token,
			)
		}
	}

	for _, format := range reader.mnemonic.Formats {
		if format.Pattern == pattern {
			return syntax(
				SECTION_MNEMONICS,
				"Operand format \"%s\" already defined for mnemonic \"%s\".",
				pattern,
				reader.mnemonic.Name,
			)
		}
	}

	reader.format = &arch.OperandFormat{
		Pattern:        pattern,
		LocalEncodings: make(map[string]string),
	}
	reader.state = MNEM_TEMPLATE

	return nil
}

func (reader *textReader) formatData(line string) error {
	format := reader.format

	switch reader.state {
	case MNEM_TEMPLATE:
		if line != "--" {
			format.Template = line
		}

		seen := make(map[string]bool)
		for _, field := range format.TemplateFields() {
			if seen[field] {
				return syntax(SECTION_MNEMONICS, "Duplicate field \"%s\" defined.", field)
			}
			seen[field] = true
		}

		reader.state = MNEM_LOCAL

	case MNEM_LOCAL:
		encodings, err := parseEncodings("Local", line)
		if err != nil {
			return err
		}

		format.LocalEncodings = encodings
		reader.state = MNEM_LAYOUT

	case MNEM_LAYOUT:
		format.Layout = strings.Fields(line)
		reader.mnemonic.Formats = append(reader.mnemonic.Formats, format)
		reader.state = MNEM_FORMAT

		glog.V(2).Infof("archfile: %s %s -> %v", reader.mnemonic.Name, format.Pattern, format.Layout)

		errs := reader.spec.ValidateFormat(reader.mnemonic, format)
		if len(errs) > 0 {
			return &arch.SpecError{Errors: errs}
		}
	}

	return nil
}

func (reader *textReader) incomplete() error {
	expected := map[mnemState]string{
		MNEM_TEMPLATE: "operand field encodings (or \"--\")",
		MNEM_LOCAL:    "local field encodings (or \"--\")",
		MNEM_LAYOUT:   "instruction format layout",
	}

	pattern := ""
	if reader.format != nil {
		pattern = reader.format.Pattern
	}

	return syntax(
		SECTION_MNEMONICS,
		"Operand format \"%s\" of mnemonic \"%s\" incomplete, %s expected on a line indented by two tabs.",
		pattern,
		reader.mnemonic.Name,
		expected[reader.state],
	)
}

func (reader *textReader) missingFormat() error {
	return syntax(
		SECTION_MNEMONICS,
		"Mnemonic format missing for mnemonic \"%s\".",
		reader.mnemonic.Name,
	)
}

// Checks the state left by the last line of the section
func (reader *textReader) finish() error {
	if reader.aborting || reader.mnemonic == nil {
		return nil
	}

	switch reader.state {
	case MNEM_TEMPLATE, MNEM_LOCAL, MNEM_LAYOUT:
		return reader.incomplete()
	}

	if len(reader.mnemonic.Formats) == 0 {
		return reader.missingFormat()
	}

	return nil
}
