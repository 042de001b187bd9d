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

package listing_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
	"github.com/mhvelplund/Generic-Assembler/pkg/listing"
)

const source = `.text
start add r1, r2
; nothing here
	jmp start`

func newListing(t *testing.T) *listing.Listing {
	symtable := assembler.NewSymTable("test.asm")
	symtable.Symbols[0x0] = 2
	symtable.Symbols[0x2] = 4
	symtable.Labels[0x0] = "start"

	list, err := listing.New(strings.NewReader(source), symtable)

	if err != nil {
		t.Fatal(err)
	}

	return list
}

func TestWrite(t *testing.T) {
	var buffer bytes.Buffer

	if err := newListing(t).Write(&buffer); err != nil {
		t.Fatal(err)
	}

	want := "~~~~~~~~ .text\n" +
		"[0x00] start add r1, r2\n" +
		"~~~~~~~~ ; nothing here\n" +
		"[0x02] \tjmp start\n"

	if have := buffer.String(); have != want {
		t.Errorf("Listing mismatch\n\twant:%q\n\thave:%q", want, have)
	}
}

func TestWriteColor(t *testing.T) {
	var buffer bytes.Buffer

	list := newListing(t)
	list.Color = true

	if err := list.Write(&buffer); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buffer.String(), "\033[1m[0x02]\033[0m \tjmp start") {
		t.Errorf("Expected bold address prefix\n\thave:%q", buffer.String())
	}
}

func TestWriteFrom(t *testing.T) {
	var buffer bytes.Buffer

	list := newListing(t)

	if err := list.WriteFrom(&buffer, 0x0, 2); err != nil {
		t.Fatal(err)
	}

	want := "[0x00] start add r1, r2\n~~~~~~~~ ; nothing here\n"

	if have := buffer.String(); have != want {
		t.Errorf("Listing mismatch\n\twant:%q\n\thave:%q", want, have)
	}

	if err := list.WriteFrom(&buffer, 0x1, 1); err == nil {
		t.Errorf("Expected error for address without instruction")
	}
}

func TestLookup(t *testing.T) {
	list := newListing(t)

	if line, ok := list.Lookup(0x2); !ok || line != "\tjmp start" {
		t.Errorf("Lookup mismatch\n\twant:\tjmp start\n\thave:%q", line)
	}

	if _, ok := list.Lookup(0x4); ok {
		t.Errorf("Lookup of 0x4 should fail")
	}

	if _, ok := (&listing.Listing{}).Lookup(0x0); ok {
		t.Errorf("Lookup without symbol table should fail")
	}
}

func TestWriteSymbols(t *testing.T) {
	var buffer bytes.Buffer

	list := newListing(t)
	list.SymTable.Labels[0x10] = "msg"

	if err := list.WriteSymbols(&buffer); err != nil {
		t.Fatal(err)
	}

	want := "0x00 start\n0x10 msg\n"

	if have := buffer.String(); have != want {
		t.Errorf("Symbol mismatch\n\twant:%q\n\thave:%q", want, have)
	}
}
