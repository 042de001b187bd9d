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
	"regexp"
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

// lineContext carries everything learned about one instruction line from
// matching through encoding. It is discarded once the line is done.
type lineContext struct {
	line     string
	tokens   []string
	path     grammar.Path
	terms    map[string]grammar.Terminal
	mnemonic *arch.Mnemonic
	format   *arch.OperandFormat
	operands []string
	fields   []arch.Field
	size     int

	address uint64
	next    uint64
}

type candidate struct {
	format   *arch.OperandFormat
	operands []string
}

// Label bound by this line, taken from the leading leaf of the path
func (ctx *lineContext) label() (string, bool) {
	if len(ctx.path) == 0 {
		return "", false
	}
	return ctx.path[0].Label()
}

func (asm *Assembler) analyse(line string) (*lineContext, error) {
	ctx := &lineContext{line: line, tokens: grammar.Tokenize(line)}

	path, err := asm.spec.Tree.Match(ctx.tokens, asm.spec)
	if err != nil {
		return nil, &GrammarError{Tokens: ctx.tokens, Err: err}
	}

	ctx.path = path
	ctx.terms = path.Terms()

	glog.V(3).Infof("path: %s", path)

	for _, leaf := range path {
		if mnemonic, ok := asm.spec.Mnemonics[leaf.Operand()]; ok {
			ctx.mnemonic = mnemonic
			break
		}
	}

	if ctx.mnemonic == nil {
		return nil, &UnknownMnemonicError{Tokens: ctx.tokens}
	}

	var candidates []candidate

	for _, format := range ctx.mnemonic.Formats {
		if operands, ok := structural(path, format.Tokens()); ok {
			candidates = append(candidates, candidate{format, operands})
		}
	}

	if len(candidates) == 0 {
		formats := make([]string, 0, len(ctx.mnemonic.Formats))
		for _, format := range ctx.mnemonic.Formats {
			formats = append(formats, format.Pattern)
		}

		return nil, &OperandFormatError{
			Mnemonic: ctx.mnemonic.Name,
			Formats:  formats,
			Path:     path.String(),
		}
	}

	for _, c := range candidates {
		if syntactic(c.format.Pattern, c.operands).MatchString(line) {
			ctx.format = c.format
			ctx.operands = c.operands
			break
		}
	}

	if ctx.format == nil {
		formats := make([]string, 0, len(candidates))
		for _, c := range candidates {
			formats = append(formats, c.format.Pattern)
		}

		return nil, &OperandSyntaxError{Mnemonic: ctx.mnemonic.Name, Formats: formats}
	}

	fields, err := asm.spec.Fields(ctx.format)
	if err != nil {
		return nil, err
	}

	ctx.fields = fields
	for _, field := range fields {
		ctx.size += field.Bits
	}

	if unit := asm.spec.MinAddressableUnit; unit <= 0 || ctx.size%unit != 0 {
		return nil, &InstructionSizeError{Unit: unit, Size: ctx.size}
	}

	glog.V(3).Infof("format: %s %s -> %q", ctx.mnemonic.Name, ctx.format.Pattern, ctx.operands)

	return ctx, nil
}

// Walks the format tokens against the mandatory leaves of path. Optional
// leaves never consume a format token. Returns the operand of every
// mandatory leaf.
func structural(path grammar.Path, tokens []string) ([]string, bool) {
	var operands []string
	i := 0

	for j := range path {
		leaf := &path[j]

		if leaf.Optional {
			continue
		}

		if i >= len(tokens) || !leaf.Has(tokens[i]) {
			return nil, false
		}

		operands = append(operands, leaf.Operand())
		i++
	}

	return operands, i == len(tokens)
}

// Builds the pattern a line must match for a format: each operand quoted in
// place of its format token, commas kept exactly where the format has them.
func syntactic(pattern string, operands []string) *regexp.Regexp {
	var builder strings.Builder
	builder.WriteString(`^.*`)

	i := 0

	for n, chunk := range strings.Fields(pattern) {
		if n > 0 {
			builder.WriteString(`\s+`)
		}

		core := strings.Trim(chunk, ",")

		if core == "" {
			builder.WriteString(chunk)
			continue
		}

		lead := len(chunk) - len(strings.TrimLeft(chunk, ","))
		trail := len(chunk) - len(strings.TrimRight(chunk, ","))

		builder.WriteString(strings.Repeat(",", lead))

		if i < len(operands) {
			builder.WriteString("(" + regexp.QuoteMeta(operands[i]) + ")")
		} else {
			builder.WriteString("(" + regexp.QuoteMeta(core) + ")")
		}
		i++

		builder.WriteString(strings.Repeat(",", trail))
	}

	builder.WriteString(`$`)

	return regexp.MustCompile(builder.String())
}

// Maps every field named in the format template to the operand text at the
// same position. Separators inside a template token must appear in the
// operand at the same place.
func mapFields(format *arch.OperandFormat, operands []string) (map[string]string, error) {
	result := make(map[string]string)
	template := format.TemplateTokens()

	if len(template) == 0 {
		return result, nil
	}

	if len(template) != len(operands) {
		return nil, &FieldMappingError{
			Template: format.Template,
			Operands: operands,
			Reason:   "Token mismatch between source assembly operands and operand fields",
		}
	}

	for i, token := range template {
		parts := grammar.SplitShape(token)
		pieces := grammar.SplitOn(operands[i], grammar.Separators(token))

		if len(parts) != len(pieces) {
			return nil, &FieldMappingError{
				Template: format.Template,
				Operands: operands,
				Reason:   "Syntax mismatch between instruction operands and field encodings",
			}
		}

		for j, part := range parts {
			if grammar.IsSeparator(part) {
				if part != pieces[j] {
					return nil, &FieldMappingError{
						Template: format.Template,
						Operands: operands,
						Reason:   "Could not map instruction fields to assembly line",
					}
				}
				continue
			}

			result[part] = pieces[j]
		}
	}

	return result, nil
}
