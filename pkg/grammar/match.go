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

type matcher struct {
	tree     *Tree
	reserved Reserved
}

// Match finds the first path through the root expansions that consumes every
// token. Alternatives are tried in declaration order at every level.
func (tree *Tree) Match(tokens []string, reserved Reserved) (Path, error) {
	if tree.Root == "" {
		return nil, &RootError{}
	}

	m := matcher{tree: tree, reserved: reserved}

	for _, exp := range tree.Rules[tree.Root] {
		path, ok, err := m.matchRoot(expand(exp), tokens, Path{})

		if err != nil {
			return nil, err
		}

		if ok {
			glog.V(3).Infof("matched %q via %s: %s", tokens, exp, path)
			return path, nil
		}

		glog.V(3).Infof("rejected %q via %s", tokens, exp)
	}

	return nil, &MismatchError{Tokens: tokens}
}

// Rewrites atom+ as atom atom*
func expand(exp Expansion) Expansion {
	result := make(Expansion, 0, len(exp))

	for _, atom := range exp {
		if atom.Quant == QUANT_PLUS {
			one := atom
			one.Quant = QUANT_ONE
			more := atom
			more.Quant = QUANT_STAR
			result = append(result, one, more)
		} else {
			result = append(result, atom)
		}
	}

	return result
}

func feasible(atoms Expansion, count int) bool {
	least := 0
	unbounded := false

	for _, atom := range atoms {
		switch atom.Quant {
		case QUANT_ONE:
			least++
		case QUANT_STAR, QUANT_PLUS:
			unbounded = true
		}
	}

	if count < least {
		return false
	}

	return unbounded || count <= len(atoms)
}

func (m *matcher) matchRoot(
	atoms Expansion,
	tokens []string,
	path Path,
) (Path, bool, error) {
	if len(atoms) == 0 {
		return path, len(tokens) == 0, nil
	}

	if len(tokens) == 0 {
		for _, atom := range atoms {
			if atom.Quant == QUANT_ONE {
				return nil, false, nil
			}
		}
		return path, true, nil
	}

	if !feasible(atoms, len(tokens)) {
		return nil, false, nil
	}

	atom := atoms[0]

	leaf, err := m.matchAtom(atom, tokens[0], nil, 0)
	if err != nil {
		return nil, false, err
	}

	// Copy on append so sibling branches never share a backing array
	grow := func(leaf *Leaf) Path {
		return append(path[:len(path):len(path)], *leaf)
	}

	switch atom.Quant {
	case QUANT_ONE:
		if leaf == nil {
			return nil, false, nil
		}
		return m.matchRoot(atoms[1:], tokens[1:], grow(leaf))

	case QUANT_OPTIONAL:
		if leaf != nil {
			leaf.Optional = true
			result, ok, err := m.matchRoot(atoms[1:], tokens[1:], grow(leaf))
			if err != nil || ok {
				return result, ok, err
			}
		}
		return m.matchRoot(atoms[1:], tokens, path)

	case QUANT_STAR:
		if leaf != nil {
			result, ok, err := m.matchRoot(atoms, tokens[1:], grow(leaf))
			if err != nil || ok {
				return result, ok, err
			}
		}
		return m.matchRoot(atoms[1:], tokens, path)
	}

	return nil, false, nil
}

func (m *matcher) matchAtom(
	atom Atom,
	token string,
	chain []string,
	depth int,
) (*Leaf, error) {
	if depth > MaxDepth {
		return nil, &CycleError{Nodes: loop(chain)}
	}

	leaf := &Leaf{Nodes: chain, Atom: atom.Text, Value: token}

	switch atom.Kind {
	case ATOM_LITERAL:
		if token == atom.Value {
			return leaf, nil
		}

	case ATOM_TERMINAL:
		if term, ok := m.terminal(atom.Value, token); ok {
			leaf.Terms = []Term{term}
			return leaf, nil
		}

	case ATOM_NODE:
		alternatives, ok := m.tree.Rules[atom.Value]
		if !ok {
			// Undeclared names act as keywords
			if token == atom.Value {
				return leaf, nil
			}
			return nil, nil
		}

		next := append(chain[:len(chain):len(chain)], atom.Value)

		for _, exp := range alternatives {
			if len(exp) != 1 {
				continue
			}

			result, err := m.matchAtom(exp[0], token, next, depth+1)
			if err != nil || result != nil {
				return result, err
			}
		}

	case ATOM_COMPOSITE:
		terms, ok, err := m.matchShape(atom.Text, token, chain, depth)
		if err != nil {
			return nil, err
		}
		if ok {
			leaf.Terms = terms
			return leaf, nil
		}
	}

	return nil, nil
}

// Decomposes token on the separators of shape and matches the parts
// positionally: separators and keywords literally, node names recursively,
// terminal names by category.
func (m *matcher) matchShape(
	shape string,
	token string,
	chain []string,
	depth int,
) ([]Term, bool, error) {
	parts := SplitShape(shape)
	pieces := SplitOn(token, Separators(shape))

	if len(parts) != len(pieces) {
		return nil, false, nil
	}

	var terms []Term

	for i, part := range parts {
		piece := pieces[i]

		if IsSeparator(part) || part == piece {
			if part != piece {
				return nil, false, nil
			}
			continue
		}

		if alternatives, ok := m.tree.Rules[part]; ok {
			next := append(chain[:len(chain):len(chain)], part)
			var found *Leaf

			for _, exp := range alternatives {
				if len(exp) != 1 {
					continue
				}

				leaf, err := m.matchAtom(exp[0], piece, next, depth+1)
				if err != nil {
					return nil, false, err
				}
				if leaf != nil {
					found = leaf
					break
				}
			}

			if found == nil {
				return nil, false, nil
			}

			terms = append(terms, found.Terms...)
			continue
		}

		if term, ok := m.terminal(part, piece); ok {
			terms = append(terms, term)
			continue
		}

		return nil, false, nil
	}

	return terms, true, nil
}

func (m *matcher) terminal(category string, token string) (Term, bool) {
	if m.reserved != nil && m.reserved.IsReserved(token) {
		return Term{}, false
	}

	term := Term{Value: token}

	switch category {
	case "LABEL":
		term.Terminal = TERMINAL_LABEL
		return term, encoding.IsAlpha(token)
	case "INT":
		term.Terminal = TERMINAL_INT
		return term, encoding.IsDecimal(token)
	case "HEX":
		term.Terminal = TERMINAL_HEX
		return term, encoding.IsHex(token)
	}

	return Term{}, false
}

// Cuts chain back to its first repeated node
func loop(chain []string) []string {
	seen := make(map[string]int)

	for i, node := range chain {
		if j, ok := seen[node]; ok {
			return chain[j : i+1]
		}
		seen[node] = i
	}

	return chain
}

func IsSeparator(part string) bool {
	return len(part) == 1 && !encoding.IsAlphaNumeric(part)
}

func Separators(shape string) string {
	var seps strings.Builder

	for i := 0; i < len(shape); i++ {
		if !encoding.IsAlphaNumeric(shape[i : i+1]) {
			seps.WriteByte(shape[i])
		}
	}

	return seps.String()
}

// SplitShape splits on every non-alphanumeric character, keeping each as its
// own part: "INT(reg)" becomes "INT", "(", "reg", ")".
func SplitShape(shape string) []string {
	return SplitOn(shape, Separators(shape))
}

// SplitOn splits s at every byte found in seps. Each separator is kept as a
// part of its own; runs of other bytes form the remaining parts.
func SplitOn(s string, seps string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(s); i++ {
		if strings.IndexByte(seps, s[i]) < 0 {
			continue
		}

		if i > start {
			parts = append(parts, s[start:i])
		}

		parts = append(parts, s[i:i+1])
		start = i + 1
	}

	if start < len(s) {
		parts = append(parts, s[start:])
	}

	return parts
}
