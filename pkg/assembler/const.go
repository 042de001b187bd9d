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

const (
	SECTION_NONE SectionType = iota
	SECTION_DATA
	SECTION_TEXT
)

const (
	SOURCE_NONE SourceType = iota
	SOURCE_FIXED
	SOURCE_OPERAND
)

const (
	DATA_INVALID DataType = iota
	DATA_VALUE
	DATA_RESERVE
	DATA_ASCII
)

const (
	HEADER_DATA = ".data"
	HEADER_TEXT = ".text"
)

// Bits per character of an .ascii declaration
const ASCII_BITS = 8

const rule = "------------------------------------------"
