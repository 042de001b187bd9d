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

import (
	"fmt"
	"strings"
)

type AtomKind uint
type Quantifier uint
type Terminal uint

// Atom is one element of an expansion: a quoted literal, a terminal category,
// a reference to another node, or a composite shape such as INT(reg) whose
// alphanumeric parts are matched recursively.
type Atom struct {
	Kind  AtomKind
	Text  string
	Value string
	Quant Quantifier
}

type Expansion []Atom

// Term records a source token resolved to a terminal category
type Term struct {
	Value    string
	Terminal Terminal
}

// Leaf is one matched source token together with the chain of node names
// that led to it from the root expansion. Optional is set for tokens matched
// by a ? atom.
type Leaf struct {
	Nodes    []string
	Atom     string
	Value    string
	Optional bool
	Terms    []Term
}

type Path []Leaf

func (term Terminal) String() string {
	switch term {
	case TERMINAL_LABEL:
		return "LABEL"
	case TERMINAL_INT:
		return "INT"
	case TERMINAL_HEX:
		return "HEX"
	}

	return "<none>"
}

func (quant Quantifier) String() string {
	switch quant {
	case QUANT_OPTIONAL:
		return "?"
	case QUANT_STAR:
		return "*"
	case QUANT_PLUS:
		return "+"
	}

	return ""
}

func (atom Atom) String() string {
	return atom.Text + atom.Quant.String()
}

func (exp Expansion) String() string {
	atoms := make([]string, 0, len(exp))
	for _, atom := range exp {
		atoms = append(atoms, atom.String())
	}
	return strings.Join(atoms, " ")
}

// Reports whether token names one of the nodes on the way to this leaf, the
// leaf atom itself, or the source token it matched.
func (leaf *Leaf) Has(token string) bool {
	if leaf.Atom == token || leaf.Value == token {
		return true
	}

	for _, node := range leaf.Nodes {
		if node == token {
			return true
		}
	}

	return false
}

// Operand is the matched source token with any quote characters removed
func (leaf *Leaf) Operand() string {
	return strings.ReplaceAll(leaf.Value, "\"", "")
}

// Label returns the first LABEL terminal matched inside this leaf
func (leaf *Leaf) Label() (string, bool) {
	for _, term := range leaf.Terms {
		if term.Terminal == TERMINAL_LABEL {
			return term.Value, true
		}
	}

	return "", false
}

// Terms collects the terminal category of every token resolved along the path
func (path Path) Terms() map[string]Terminal {
	result := make(map[string]Terminal)

	for _, leaf := range path {
		for _, term := range leaf.Terms {
			result[term.Value] = term.Terminal
		}
	}

	return result
}

func (path Path) String() string {
	leaves := make([]string, 0, len(path))

	for _, leaf := range path {
		var parts []string
		if leaf.Optional {
			parts = append(parts, "?")
		}
		parts = append(parts, leaf.Nodes...)
		parts = append(parts, leaf.Atom, leaf.Value)
		leaves = append(leaves, "["+strings.Join(parts, ", ")+"]")
	}

	return "[" + strings.Join(leaves, ", ") + "]"
}

type MismatchError struct {
	Tokens []string
}

func (err *MismatchError) Error() string {
	return fmt.Sprintf(
		"Assembly line not consistent with grammar\n\thave:%s",
		strings.Join(err.Tokens, " "),
	)
}

type CycleError struct {
	Nodes []string
}

func (err *CycleError) Error() string {
	return fmt.Sprintf(
		"Grammar cycle: check tree has no infinite loops\n\thave:%s",
		strings.Join(err.Nodes, " -> "),
	)
}

type ReservedNodeError struct {
	Node string
}

func (err *ReservedNodeError) Error() string {
	return fmt.Sprintf(
		"Node can not be keyword \"LABEL\", \"INT\" or \"HEX\"\n\thave:%s",
		err.Node,
	)
}

type NodeNameError struct {
	Node string
}

func (err *NodeNameError) Error() string {
	return fmt.Sprintf(
		"Node should be an alphanumeric token, <node> : <expression> expected\n\thave:%s",
		err.Node,
	)
}

type QuantifierError struct {
	Node string
	Atom string
	Root string
}

func (err *QuantifierError) Error() string {
	return fmt.Sprintf(
		"Wildcards (\"*\", \"+\" or \"?\") can only be applied to tokens in root node expression (\"%s\")\n\thave:%s : %s",
		err.Root,
		err.Node,
		err.Atom,
	)
}

type ExpansionError struct {
	Node       string
	Expression string
}

func (err *ExpansionError) Error() string {
	if err.Expression == "" {
		return fmt.Sprintf("Empty expression for node \"%s\"", err.Node)
	}

	return fmt.Sprintf(
		"Non root expressions should only consist of a single token\n\thave:%s : %s",
		err.Node,
		err.Expression,
	)
}

type RootError struct{}

func (err *RootError) Error() string {
	return "Grammar has no root node"
}
