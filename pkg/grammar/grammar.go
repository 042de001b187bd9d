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
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/encoding"
)

// Tree is the operand grammar of an architecture. The first node added
// becomes the root; only the root may carry multi-atom, quantified expansions.
type Tree struct {
	Root  string
	Rules map[string][]Expansion

	nodes  []string
	tokens map[string]bool
}

// Reserved tells the matcher which tokens may never resolve to a terminal
// category, typically register and mnemonic names.
type Reserved interface {
	IsReserved(token string) bool
}

func NewTree() *Tree {
	return &Tree{
		Rules:  make(map[string][]Expansion),
		tokens: make(map[string]bool),
	}
}

func IsTerminal(name string) bool {
	return name == "LABEL" || name == "INT" || name == "HEX"
}

// Splits a source line into grammar terms: whitespace separated, with
// surrounding commas trimmed and comma-only terms dropped.
func Tokenize(line string) []string {
	var result []string

	for _, field := range strings.Fields(line) {
		field = strings.Trim(field, ",")
		if field != "" {
			result = append(result, field)
		}
	}

	return result
}

func ParseAtom(text string) (Atom, error) {
	atom := Atom{Quant: QUANT_ONE}

	if len(text) > 1 {
		switch text[len(text)-1] {
		case '?':
			atom.Quant = QUANT_OPTIONAL
		case '*':
			atom.Quant = QUANT_STAR
		case '+':
			atom.Quant = QUANT_PLUS
		}

		if atom.Quant != QUANT_ONE {
			text = text[:len(text)-1]
		}
	}

	if text == "" {
		return atom, &ExpansionError{}
	}

	atom.Text = text

	switch {
	case len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"':
		atom.Kind = ATOM_LITERAL
		atom.Value = text[1 : len(text)-1]
	case IsTerminal(text):
		atom.Kind = ATOM_TERMINAL
		atom.Value = text
	case encoding.IsAlphaNumeric(text):
		atom.Kind = ATOM_NODE
		atom.Value = text
	default:
		atom.Kind = ATOM_COMPOSITE
		atom.Value = text
	}

	return atom, nil
}

// Adds one alternative expansion to node. Repeated calls with the same node
// append alternatives in declaration order.
func (tree *Tree) AddRule(node string, expression string) error {
	if IsTerminal(node) {
		return &ReservedNodeError{Node: node}
	}

	if !encoding.IsAlphaNumeric(node) {
		return &NodeNameError{Node: node}
	}

	fields := strings.Fields(expression)

	if len(fields) == 0 {
		return &ExpansionError{Node: node}
	}

	if tree.Root == "" {
		tree.Root = node
	}

	if node != tree.Root && len(fields) > 1 {
		return &ExpansionError{Node: node, Expression: expression}
	}

	exp := make(Expansion, 0, len(fields))

	for _, field := range fields {
		atom, err := ParseAtom(field)

		if err != nil {
			return &ExpansionError{Node: node, Expression: expression}
		}

		if node != tree.Root && atom.Quant != QUANT_ONE {
			return &QuantifierError{
				Node: node,
				Atom: field,
				Root: tree.Root,
			}
		}

		exp = append(exp, atom)
	}

	if _, ok := tree.Rules[node]; !ok {
		tree.nodes = append(tree.nodes, node)
	}

	tree.Rules[node] = append(tree.Rules[node], exp)
	tree.tokens[node] = true

	for _, atom := range exp {
		tree.tokens[atom.Text] = true
		tree.tokens[atom.Value] = true

		if atom.Kind == ATOM_COMPOSITE {
			for _, part := range SplitShape(atom.Text) {
				tree.tokens[part] = true
			}
		}
	}

	glog.V(3).Infof("grammar: %s : %s", node, exp)

	return nil
}

// Nodes returns node names in declaration order
func (tree *Tree) Nodes() []string {
	return tree.nodes
}

// Knows reports whether token appears anywhere in the grammar, either as a
// node name or inside an expansion.
func (tree *Tree) Knows(token string) bool {
	return tree.tokens[token]
}

// Validate checks that a root exists and that no chain of plain node
// references leads back to itself, which would never consume a token.
func (tree *Tree) Validate() error {
	if tree.Root == "" {
		return &RootError{}
	}

	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int)
	var stack []string
	var visit func(node string) error

	visit = func(node string) error {
		switch state[node] {
		case visiting:
			cycle := []string{node}
			for i := len(stack) - 1; i >= 0; i-- {
				cycle = append([]string{stack[i]}, cycle...)
				if stack[i] == node {
					break
				}
			}
			return &CycleError{Nodes: cycle}
		case done:
			return nil
		}

		state[node] = visiting
		stack = append(stack, node)

		// The root consumes one token per atom, so only single-atom
		// expansions can recurse without progress.
		for _, exp := range tree.Rules[node] {
			if len(exp) != 1 || exp[0].Kind != ATOM_NODE {
				continue
			}

			if _, ok := tree.Rules[exp[0].Value]; !ok {
				continue
			}

			if err := visit(exp[0].Value); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
		return nil
	}

	for _, node := range tree.nodes {
		if err := visit(node); err != nil {
			return err
		}
	}

	return nil
}
