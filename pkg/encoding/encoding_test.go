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

package encoding_test

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		Name  string
		Input string
		Want  string
		Fail  bool
	}{
		{"Binary", "000B", "000", false},
		{"Hex", "1FH", "11111", false},
		{"Int", "5I", "101", false},
		{"Zero Int", "0I", "0", false},
		{"Bad Binary", "012B", "", true},
		{"Bad Hex", "XYH", "", true},
		{"Bad Int", "1AI", "", true},
		{"Missing Base", "1010", "", true},
		{"Missing Value", "B", "", true},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			have, err := encoding.ParseValue(test.Input)

			if test.Fail {
				if err == nil {
					t.Fatalf("Expected error\nwant:%T\nhave:<nil>", &encoding.InvalidValueError{})
				}
				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if have != test.Want {
				t.Fatalf("Value mismatch\nwant:%s\nhave:%s", test.Want, have)
			}
		})
	}
}

func TestSignedBinary(t *testing.T) {
	tests := []struct {
		Value int64
		Width int
		Want  string
		Fits  bool
	}{
		{-14, 8, "11110010", true},
		{-128, 8, "10000000", true},
		{127, 8, "01111111", true},
		{128, 8, "", false},
		{-129, 8, "", false},
		{-1, 1, "1", true},
		{0, 1, "0", true},
		{1, 1, "", false},
		{5, 0, "", false},
	}

	for _, test := range tests {
		have, ok := encoding.SignedBinary(big.NewInt(test.Value), test.Width)

		if ok != test.Fits {
			t.Fatalf(
				"Fit mismatch for %d in %d bits\nwant:%t\nhave:%t",
				test.Value, test.Width, test.Fits, ok,
			)
		}

		if have != test.Want {
			t.Fatalf(
				"Encoding mismatch for %d in %d bits\nwant:%s\nhave:%s",
				test.Value, test.Width, test.Want, have,
			)
		}

		if ok && encoding.SignExtend(have).Int64() != test.Value {
			t.Fatalf(
				"Sign extension mismatch\nwant:%d\nhave:%s",
				test.Value, encoding.SignExtend(have),
			)
		}
	}
}

func TestUnsignedBinary(t *testing.T) {
	if have, ok := encoding.UnsignedBinary(big.NewInt(255), 8); !ok || have != "11111111" {
		t.Fatalf("Encoding mismatch\nwant:11111111\nhave:%s (%t)", have, ok)
	}

	if _, ok := encoding.UnsignedBinary(big.NewInt(256), 8); ok {
		t.Fatal("256 should not fit in 8 unsigned bits")
	}

	if _, ok := encoding.UnsignedBinary(big.NewInt(-1), 8); ok {
		t.Fatal("-1 should not fit in an unsigned field")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		Value int64
		Width int
		Want  string
	}{
		{0x12c, 8, "00101100"},
		{0x2c, 8, "00101100"},
		{5, 4, "0101"},
		{0xff, 8, "11111111"},
		{-2, 8, "11111110"},
	}

	for _, test := range tests {
		if have := encoding.Truncate(big.NewInt(test.Value), test.Width); have != test.Want {
			t.Errorf("Truncate mismatch for %d\nwant:%s\nhave:%s", test.Value, test.Want, have)
		}
	}
}

func TestSignedWidth(t *testing.T) {
	tests := map[int64]int{0: 1, 1: 2, 127: 8, 128: 9, -1: 1, -128: 8, -129: 9}

	for value, want := range tests {
		if have := encoding.SignedWidth(big.NewInt(value)); have != want {
			t.Errorf("Width mismatch for %d\nwant:%d\nhave:%d", value, want, have)
		}
	}
}

func TestRenderUnits(t *testing.T) {
	bits := "00000000000000000000000000000101"
	units := encoding.SplitUnits(bits, 8)

	if want := []string{"00000000", "00000000", "00000000", "00000101"}; !reflect.DeepEqual(units, want) {
		t.Fatalf("Unit split mismatch\nwant:%v\nhave:%v", want, units)
	}

	if have, want := encoding.RenderUnits(units, false), "00 00 00 05 "; have != want {
		t.Fatalf("Big endian mismatch\nwant:%q\nhave:%q", want, have)
	}

	if have, want := encoding.RenderUnits(units, true), "05 00 00 00 "; have != want {
		t.Fatalf("Little endian mismatch\nwant:%q\nhave:%q", want, have)
	}

	if have, want := encoding.RenderUnits(encoding.SplitUnits("0001001000110100", 16), false), "1234 "; have != want {
		t.Fatalf("Wide unit mismatch\nwant:%q\nhave:%q", want, have)
	}
}

func TestFormatObjectLine(t *testing.T) {
	if have, want := encoding.FormatObjectLine(0x1a, "EB E8 "), "1a:        EB E8 "; have != want {
		t.Fatalf("Object line mismatch\nwant:%q\nhave:%q", want, have)
	}
}

func TestClassifiers(t *testing.T) {
	if !encoding.IsHex("1aF") || encoding.IsHex("1g") || encoding.IsHex("") {
		t.Fatal("IsHex misclassified input")
	}

	if !encoding.IsDecimal("0042") || encoding.IsDecimal("-1") {
		t.Fatal("IsDecimal misclassified input")
	}

	if !encoding.IsAlpha("loop") || encoding.IsAlpha("loop1") || encoding.IsAlpha("") {
		t.Fatal("IsAlpha misclassified input")
	}

	if !encoding.IsAlphaNumeric("r15") || encoding.IsAlphaNumeric("r_15") {
		t.Fatal("IsAlphaNumeric misclassified input")
	}
}
