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

package encoding

import (
	"fmt"
	"math/big"
	"strings"
)

type InvalidValueError struct {
	Value  string
	Reason string
}

func (err *InvalidValueError) Error() string {
	return fmt.Sprintf("Value error: \"%s\" %s", err.Value, err.Reason)
}

// Left pads a binary string with zeros until it is width bits long. Strings
// already at or over width are returned untouched.
func PadBinary(bits string, width int) string {
	if len(bits) >= width {
		return bits
	}

	return strings.Repeat("0", width-len(bits)) + bits
}

// Decodes a base-16 numeral without prefix (FF, 1a) into its natural binary
// representation
func HexToBinary(s string) (string, error) {
	if !IsHex(s) {
		return "", &InvalidValueError{s, "is not a valid hex value."}
	}

	result, ok := new(big.Int).SetString(s, 16)

	if !ok {
		return "", &InvalidValueError{s, "is not a valid hex value."}
	}

	return result.Text(2), nil
}

// Decodes an unsigned base-10 numeral into its natural binary representation
func IntToBinary(s string) (string, error) {
	if !IsDecimal(s) {
		return "", &InvalidValueError{s, "is not a valid integer."}
	}

	result, ok := new(big.Int).SetString(s, 10)

	if !ok {
		return "", &InvalidValueError{s, "is not a valid integer."}
	}

	return result.Text(2), nil
}

// Decodes a value literal in the formats: 0101B, 1FH, 42I
func ParseValue(s string) (string, error) {
	if len(s) < 2 {
		return "", &InvalidValueError{
			s, "should be <value><B/H/I> (B binary, H hexadecimal, I integer).",
		}
	}

	value := s[:len(s)-1]

	switch s[len(s)-1] {
	case 'B':
		if !IsBinary(value) {
			return "", &InvalidValueError{value, "is not a valid binary value."}
		}
		return value, nil
	case 'H':
		return HexToBinary(value)
	case 'I':
		return IntToBinary(value)
	}

	return "", &InvalidValueError{
		s, "should be <value><B/H/I> (B binary, H hexadecimal, I integer).",
	}
}

// Renders v as the low width bits of its two's complement. Reports false when
// v does not fit in a signed field of that width.
func SignedBinary(v *big.Int, width int) (string, bool) {
	if width <= 0 {
		return "", false
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(width-1))

	if v.Cmp(new(big.Int).Neg(limit)) < 0 || v.Cmp(limit) >= 0 {
		return "", false
	}

	u := new(big.Int).Set(v)

	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), uint(width)))
	}

	return PadBinary(u.Text(2), width), true
}

// Number of bits v needs as a two's complement value
func SignedWidth(v *big.Int) int {
	if v.Sign() < 0 {
		return new(big.Int).Not(v).BitLen() + 1
	}
	return v.BitLen() + 1
}

// Keeps the low width bits of v
func Truncate(v *big.Int, width int) string {
	if width <= 0 {
		return ""
	}

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return PadBinary(new(big.Int).And(v, mask).Text(2), width)
}

// Renders a non-negative v in width bits, reporting false when it needs more
func UnsignedBinary(v *big.Int, width int) (string, bool) {
	if v.Sign() < 0 || v.BitLen() > width {
		return "", false
	}

	return PadBinary(v.Text(2), width), true
}

// Interprets bits as a two's complement integer
func SignExtend(bits string) *big.Int {
	result, ok := new(big.Int).SetString(bits, 2)

	if !ok {
		return new(big.Int)
	}

	if len(bits) > 0 && bits[0] == '1' {
		result.Sub(result, new(big.Int).Lsh(big.NewInt(1), uint(len(bits))))
	}

	return result
}

// Interprets bits as an unsigned integer
func ZeroExtend(bits string) *big.Int {
	result, ok := new(big.Int).SetString(bits, 2)

	if !ok {
		return new(big.Int)
	}

	return result
}

// Splits a bit string into chunks of unit bits; the last chunk may be short.
func SplitUnits(bits string, unit int) []string {
	units := make([]string, 0, (len(bits)+unit-1)/unit)

	for i := 0; i < len(bits); i += unit {
		end := i + unit
		if end > len(bits) {
			end = len(bits)
		}
		units = append(units, bits[i:end])
	}

	return units
}

// Renders a bit string as uppercase hex, zero padded to one digit per four
// bits (rounded up)
func BinaryToHex(bits string) string {
	digits := (len(bits) + 3) / 4

	if digits == 0 {
		return ""
	}

	result := ZeroExtend(bits)

	return fmt.Sprintf("%.*X", digits, result)
}

// Renders addressing units as space terminated hex groups. Little endian
// targets emit the units in reverse order.
func RenderUnits(units []string, little bool) string {
	var builder strings.Builder

	for i := range units {
		unit := units[i]
		if little {
			unit = units[len(units)-1-i]
		}

		builder.WriteString(BinaryToHex(unit))
		builder.WriteByte(' ')
	}

	return builder.String()
}

// Formats an object code line: hex address and colon left justified in ten
// columns, a space, then the unit groups
func FormatObjectLine(addr uint64, groups string) string {
	return fmt.Sprintf("%-10s %s", fmt.Sprintf("%x:", addr), groups)
}

func IsBinary(s string) bool {
	return s != "" && strings.Trim(s, "01") == ""
}

func IsDecimal(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

func IsHex(s string) bool {
	return s != "" && strings.Trim(s, "0123456789abcdefABCDEF") == ""
}

func IsAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return false
		}
	}

	return s != ""
}

func IsAlphaNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}

	return s != ""
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
