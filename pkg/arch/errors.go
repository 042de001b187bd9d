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

package arch

import (
	"fmt"
	"strings"
)

type ConsistencyError struct {
	Context string
	Reason  string
}

func (err *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Reason)
}

type SpecError struct {
	Errors []error
}

func (err *SpecError) Error() string {
	messages := make([]string, 0, len(err.Errors))
	for _, e := range err.Errors {
		messages = append(messages, e.Error())
	}

	return fmt.Sprintf(
		"Specification is inconsistent (%d errors)\n%s",
		len(err.Errors),
		strings.Join(messages, "\n"),
	)
}

func (err *SpecError) Unwrap() []error {
	return err.Errors
}
