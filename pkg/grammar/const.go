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

package grammar

const (
	ATOM_LITERAL AtomKind = iota
	ATOM_TERMINAL
	ATOM_NODE
	ATOM_COMPOSITE
)

const (
	QUANT_ONE Quantifier = iota
	QUANT_OPTIONAL
	QUANT_STAR
	QUANT_PLUS
)

const (
	TERMINAL_NONE Terminal = iota
	TERMINAL_LABEL
	TERMINAL_INT
	TERMINAL_HEX
)

// Matching deeper than this is treated as a reference cycle in the tree
const MaxDepth = 256
