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
	"math/big"
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
	"github.com/mhvelplund/Generic-Assembler/pkg/grammar"
)

// Global encodings win over local ones, which win over mapped operands
func (asm *Assembler) source(
	ctx *lineContext,
	field arch.Field,
	mapping map[string]string,
) FieldSource {
	if bits, ok := ctx.mnemonic.GlobalEncodings[field.Name]; ok {
		return FieldSource{Type: SOURCE_FIXED, Bits: bits}
	}

	if bits, ok := ctx.format.LocalEncodings[field.Name]; ok {
		return FieldSource{Type: SOURCE_FIXED, Bits: bits}
	}

	if token, ok := mapping[field.Name]; ok {
		return FieldSource{Type: SOURCE_OPERAND, Token: token}
	}

	return FieldSource{Type: SOURCE_NONE}
}

func (asm *Assembler) encode(ctx *lineContext) (string, error) {
	mapping, err := mapFields(ctx.format, ctx.operands)
	if err != nil {
		return "", err
	}

	glog.V(3).Infof("fields: %v terms: %v", mapping, ctx.terms)

	var bits strings.Builder

	for _, field := range ctx.fields {
		var value string
		source := asm.source(ctx, field, mapping)

		switch source.Type {
		case SOURCE_FIXED:
			value = source.Bits
		case SOURCE_OPERAND:
			value, err = asm.operand(ctx, field, source.Token)
			if err != nil {
				return "", err
			}
		default:
			return "", &UnknownFieldSourceError{Field: field.Name}
		}

		if len(value) > field.Bits {
			token := source.Token
			if token == "" {
				token = value
			}

			return "", &OversizedValueError{
				Token:    token,
				Field:    field.Name,
				Required: field.Bits,
				Received: len(value),
			}
		}

		bits.WriteString(encoding.PadBinary(value, field.Bits))
	}

	return asm.render(ctx.address, bits.String()), nil
}

// Resolves an operand token to its natural binary form
func (asm *Assembler) operand(
	ctx *lineContext,
	field arch.Field,
	token string,
) (string, error) {
	if bits, ok := asm.spec.Registers[token]; ok {
		return bits, nil
	}

	term, ok := ctx.terms[token]
	if !ok {
		return "", &UnknownFieldSourceError{Field: field.Name, Token: token}
	}

	switch term {
	case grammar.TERMINAL_INT:
		return encoding.IntToBinary(token)

	case grammar.TERMINAL_HEX:
		return encoding.HexToBinary(token)

	case grammar.TERMINAL_LABEL:
		if dest, ok := asm.symbols[token]; ok {
			offset := big.NewInt(int64(dest) - int64(ctx.next))
			bits, fits := encoding.SignedBinary(offset, field.Bits)

			if !fits {
				return "", &OversizedValueError{
					Token:    token,
					Field:    field.Name,
					Required: field.Bits,
					Received: encoding.SignedWidth(offset),
				}
			}

			return bits, nil
		}

		if addr, ok := asm.data[token]; ok {
			return encoding.Truncate(new(big.Int).SetUint64(addr), field.Bits), nil
		}

		return "", &UnknownLabelError{Label: token}
	}

	return "", &UnknownFieldSourceError{Field: field.Name, Token: token}
}

// Splits bits into addressing units and formats the object code line. Units
// are reversed on little endian targets.
func (asm *Assembler) render(addr uint64, bits string) string {
	units := encoding.SplitUnits(bits, asm.spec.MinAddressableUnit)
	little := asm.spec.Endian == arch.ENDIAN_LITTLE

	return encoding.FormatObjectLine(addr, encoding.RenderUnits(units, little))
}
