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
	"fmt"
	"io"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

type yamlField struct {
	Name string `yaml:"name"`
	Bits int    `yaml:"bits"`
}

type yamlRule struct {
	Node       string `yaml:"node"`
	Expression string `yaml:"expression"`
}

type yamlTree struct {
	Root  string     `yaml:"root"`
	Rules []yamlRule `yaml:"rules"`
}

type yamlFormat struct {
	Pattern        string            `yaml:"pattern"`
	Fields         string            `yaml:"fields"`
	LocalEncodings map[string]string `yaml:"localEncodings"`
	Layout         []string          `yaml:"layout"`
}

type yamlMnemonic struct {
	Name            string            `yaml:"name"`
	GlobalEncodings map[string]string `yaml:"globalEncodings"`
	Formats         []yamlFormat      `yaml:"formats"`
}

type yamlSpec struct {
	Architecture       string                 `yaml:"architecture"`
	Endian             string                 `yaml:"endian"`
	MinAddressableUnit int                    `yaml:"minAddressableUnit"`
	Registers          map[string]string      `yaml:"registers"`
	InstructionFormats map[string][]yamlField `yaml:"instructionFormats"`
	AssemblyOpTree     yamlTree               `yaml:"assemblyOpTree"`
	Mnemonics          []yamlMnemonic         `yaml:"mnemonics"`
}

// ReadYAML parses a YAML description. Unknown keys are rejected.
func ReadYAML(r io.Reader) (*arch.Spec, error) {
	var doc yamlSpec

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil {
		return nil, Errors{&SyntaxError{Section: "YAML", Reason: err.Error()}}
	}

	spec := arch.NewSpec()
	var errs Errors

	report := func(section string, msg string, args ...interface{}) {
		errs = append(errs, syntax(section, msg, args...))
	}

	var missing []string

	if doc.Architecture == "" {
		missing = append(missing, SECTION_ARCHITECTURE)
	}
	if len(doc.InstructionFormats) == 0 {
		missing = append(missing, "instructionFormats")
	}
	if len(doc.AssemblyOpTree.Rules) == 0 {
		missing = append(missing, SECTION_TREE)
	}
	if doc.Endian == "" {
		missing = append(missing, SECTION_ENDIAN)
	}
	if doc.MinAddressableUnit == 0 {
		missing = append(missing, SECTION_UNIT)
	}
	if len(doc.Mnemonics) == 0 {
		missing = append(missing, "mnemonics")
	}

	if len(missing) > 0 {
		errs = append(errs, &MissingSectionError{Sections: missing})
	}

	spec.Architecture = doc.Architecture

	if doc.Endian != "" {
		endian, err := arch.ParseEndian(doc.Endian)
		if err != nil {
			report(SECTION_ENDIAN, "Endian not recognised, \"big\" or \"little\" expected.")
		}
		spec.Endian = endian
	}

	if doc.MinAddressableUnit < 0 {
		report(SECTION_UNIT, "Minimum addressable unit should be a positive integer.")
	} else if doc.MinAddressableUnit > 0 {
		spec.MinAddressableUnit = doc.MinAddressableUnit
	}

	for _, name := range arch.SortedKeys(doc.Registers) {
		value, err := encoding.ParseValue(doc.Registers[name])
		if err != nil {
			report(SECTION_REGISTERS, "Register \"%s\": %s", name, err)
			continue
		}
		spec.Registers[name] = value
	}

	for _, name := range arch.SortedKeys(doc.InstructionFormats) {
		format := &arch.InstructionFormat{Name: name}
		seen := make(map[string]bool)

		for _, field := range doc.InstructionFormats[name] {
			if field.Bits <= 0 {
				report(SECTION_FORMATS, "Field \"%s\" must be at least one bit wide.", field.Name)
			}

			if seen[field.Name] {
				report(SECTION_FORMATS, "Field \"%s\" already defined in \"%s\".", field.Name, name)
			}

			seen[field.Name] = true
			format.Fields = append(format.Fields, arch.Field{Name: field.Name, Bits: field.Bits})
		}

		spec.InstructionFormats[name] = format
	}

	if err := addRules(spec.Tree, doc.AssemblyOpTree); err != nil {
		report(SECTION_TREE, "%s", err)
	}

	for _, entry := range doc.Mnemonics {
		if _, ok := spec.Mnemonics[entry.Name]; ok {
			report(SECTION_MNEMONICS, "Mnemonic name \"%s\" already defined.", entry.Name)
			continue
		}

		mnemonic, err := buildMnemonic(entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		spec.Mnemonics[mnemonic.Name] = mnemonic
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if err := spec.Validate(); err != nil {
		return nil, flatten(err)
	}

	glog.V(1).Infof("archfile: %s, %d mnemonics", spec.Architecture, len(spec.Mnemonics))

	return spec, nil
}

// Root rules are added first so the root is the declared one
func addRules(tree *grammar.Tree, doc yamlTree) error {
	ordered := make([]yamlRule, 0, len(doc.Rules))

	for _, rule := range doc.Rules {
		if rule.Node == doc.Root {
			ordered = append(ordered, rule)
		}
	}

	if doc.Root != "" && len(ordered) == 0 {
		return fmt.Errorf("Root node \"%s\" has no expansion.", doc.Root)
	}

	for _, rule := range doc.Rules {
		if rule.Node != doc.Root {
			ordered = append(ordered, rule)
		}
	}

	for _, rule := range ordered {
		if err := tree.AddRule(rule.Node, rule.Expression); err != nil {
			return err
		}
	}

	return nil
}

func buildMnemonic(entry yamlMnemonic) (*arch.Mnemonic, error) {
	fail := func(msg string, args ...interface{}) error {
		return syntax(SECTION_MNEMONICS, "Mnemonic \"%s\": "+msg, append([]interface{}{entry.Name}, args...)...)
	}

	if !nameLine.MatchString(entry.Name) {
		return nil, fail("name should only be single token (no spaces).")
	}

	mnemonic := &arch.Mnemonic{
		Name:            entry.Name,
		GlobalEncodings: make(map[string]string),
	}

	for field, value := range entry.GlobalEncodings {
		binary, err := encoding.ParseValue(value)
		if err != nil {
			return nil, fail("global encoding %s: %s", field, err)
		}
		mnemonic.GlobalEncodings[field] = binary
	}

	for _, entryFormat := range entry.Formats {
		for _, format := range mnemonic.Formats {
			if format.Pattern == entryFormat.Pattern {
				return nil, fail("operand format \"%s\" already defined.", entryFormat.Pattern)
			}
		}

		format := &arch.OperandFormat{
			Pattern:        entryFormat.Pattern,
			LocalEncodings: make(map[string]string),
			Layout:         entryFormat.Layout,
		}

		if entryFormat.Fields != "--" {
			format.Template = entryFormat.Fields
		}

		seen := make(map[string]bool)
		for _, field := range format.TemplateFields() {
			if seen[field] {
				return nil, fail("duplicate field \"%s\" defined.", field)
			}
			seen[field] = true
		}

		for field, value := range entryFormat.LocalEncodings {
			binary, err := encoding.ParseValue(value)
			if err != nil {
				return nil, fail("local encoding %s: %s", field, err)
			}
			format.LocalEncodings[field] = binary
		}

		mnemonic.Formats = append(mnemonic.Formats, format)
	}

	return mnemonic, nil
}
