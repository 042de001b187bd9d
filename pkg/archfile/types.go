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

package archfile

import (
	"fmt"
	"strings"
)

type Format uint

const (
	FORMAT_AUTO Format = iota
	FORMAT_TEXT
	FORMAT_YAML
)

const rule = "------------------------------------------"

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FORMAT_AUTO, nil
	case "text", "txt":
		return FORMAT_TEXT, nil
	case "yaml", "yml":
		return FORMAT_YAML, nil
	}

	return FORMAT_AUTO, fmt.Errorf("Unknown description format\n\twant:auto, text or yaml\n\thave:%s", s)
}

func (format Format) String() string {
	switch format {
	case FORMAT_TEXT:
		return "text"
	case FORMAT_YAML:
		return "yaml"
	}
	return "auto"
}

// SyntaxError is a malformed line within one section of a description
type SyntaxError struct {
	Section string
	Reason  string
}

func (err *SyntaxError) Error() string {
	return err.Section + " error: " + err.Reason
}

type MissingSectionError struct {
	Sections []string
}

func (err *MissingSectionError) Error() string {
	quoted := make([]string, 0, len(err.Sections))
	for _, section := range err.Sections {
		quoted = append(quoted, "\""+section+"\"")
	}

	return fmt.Sprintf(
		"Section/s %s missing from specification file.",
		strings.Join(quoted, " "),
	)
}

type LineError struct {
	Line   int
	Source string
	Err    error
}

func (err *LineError) Error() string {
	var builder strings.Builder

	builder.WriteString(rule + "\n")
	fmt.Fprintf(&builder, "Exception at line %d :\n\n", err.Line)
	builder.WriteString(err.Source + "\n")
	builder.WriteString(rule + "\n\n")
	builder.WriteString(err.Err.Error() + "\n\n")

	return builder.String()
}

func (err *LineError) Unwrap() error {
	return err.Err
}

// Errors collects every problem found while reading a description
type Errors []error

func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "No errors found within specification file."
	case 1:
		return errs[0].Error()
	}

	return fmt.Sprintf(
		"Error in specification file (%d errors), first:\n%s",
		len(errs),
		errs[0].Error(),
	)
}

func (errs Errors) Unwrap() []error {
	return errs
}

// Report renders the error report written next to the object code
func (errs Errors) Report() string {
	if len(errs) == 0 {
		return "No errors found within specification file.\n"
	}

	var builder strings.Builder

	for _, err := range errs {
		if _, ok := err.(*LineError); ok {
			builder.WriteString(err.Error())
		} else {
			builder.WriteString(err.Error() + "\n\n")
		}
	}

	return builder.String()
}
