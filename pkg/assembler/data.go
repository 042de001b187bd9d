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
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
)

var (
	valueLine   = regexp.MustCompile(`^[A-Za-z0-9]+\s+[0-9]+MAU\s+[^\s]+$`)
	asciiLine   = regexp.MustCompile(`^[A-Za-z0-9]+\s+\.ascii\s+".+"$`)
	reserveLine = regexp.MustCompile(`^[A-Za-z0-9]+\s+[0-9]+MAU$`)
)

type dataDecl struct {
	Label string
	Type  DataType
	Units int
	Value string
}

// Recognises the three .data forms:
//
//	<label> <N>MAU <value>
//	<label> <N>MAU
//	<label> .ascii "<text>"
func (asm *Assembler) parseData(line string) (*dataDecl, error) {
	fields := strings.Fields(line)
	decl := &dataDecl{Label: fields[0]}

	switch {
	case asciiLine.MatchString(line):
		text := strings.SplitN(line, "\"", 2)[1]
		decl.Type = DATA_ASCII
		decl.Value = text[:len(text)-1]

		bits := len(decl.Value) * ASCII_BITS
		unit := asm.spec.MinAddressableUnit
		decl.Units = (bits + unit - 1) / unit
		return decl, nil

	case valueLine.MatchString(line):
		decl.Type = DATA_VALUE
		decl.Value = fields[2]

	case reserveLine.MatchString(line):
		decl.Type = DATA_RESERVE

	default:
		return nil, &DataSyntaxError{
			"expected <label> <N>MAU [value] or <label> .ascii \"<text>\"",
		}
	}

	units, err := strconv.Atoi(strings.TrimSuffix(fields[1], "MAU"))
	if err != nil || units <= 0 {
		return nil, &DataSyntaxError{
			fmt.Sprintf("\"%s\" is not a positive number of addressable units", fields[1]),
		}
	}

	decl.Units = units
	return decl, nil
}

func (asm *Assembler) encodeData(decl *dataDecl, addr uint64) (string, error) {
	width := decl.Units * asm.spec.MinAddressableUnit

	switch decl.Type {
	case DATA_ASCII:
		var bits strings.Builder

		for i := 0; i < len(decl.Value); i++ {
			bits.WriteString(encoding.PadBinary(
				strconv.FormatUint(uint64(decl.Value[i]), 2), ASCII_BITS,
			))
		}

		padded := bits.String() + strings.Repeat("0", width-bits.Len())
		return asm.render(addr, padded), nil

	case DATA_RESERVE:
		return asm.render(addr, strings.Repeat("0", width)), nil
	}

	bits, err := dataValue(decl.Value, width)
	if err != nil {
		return "", err
	}

	if len(bits) > width {
		return "", &OversizedValueError{
			Token:    decl.Value,
			Field:    decl.Label,
			Required: width,
			Received: len(bits),
		}
	}

	return asm.render(addr, encoding.PadBinary(bits, width)), nil
}

// Data values are value literals (5I, 0FH, 101B) or plain decimals. Negative
// decimals are stored as two's complement in width bits.
func dataValue(value string, width int) (string, error) {
	if bits, err := encoding.ParseValue(value); err == nil {
		return bits, nil
	}

	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return "", &DataSyntaxError{fmt.Sprintf("\"%s\" is not a valid integer", value)}
	}

	if v.Sign() >= 0 {
		return v.Text(2), nil
	}

	bits, fits := encoding.SignedBinary(v, width)
	if !fits {
		return "", &OversizedValueError{
			Token:    value,
			Field:    "data",
			Required: width,
			Received: encoding.SignedWidth(v),
		}
	}

	return bits, nil
}
