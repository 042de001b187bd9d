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

package main

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
)

var debugvar bool
var outvar string

var assembleCmd = &cobra.Command{
	Use:   "assemble archFile sourceFile",
	Short: "Assembles a source file into object code",
	Long: `Assemble reads the architecture description, then assembles the source file
in two passes. Object code is written one line per source line that emits
bits: the address followed by the hexadecimal addressing units. When an error
is found the object code produced so far is written, followed by a report of
the failing line.`,

	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assemble(args[0], args[1], os.Stdout)
	},
}

func init() {
	assembleCmd.Flags().StringVarP(
		&outvar, "out", "o", "object_code.txt",
		"Output file for the object code, - writes to stdout",
	)
	assembleCmd.Flags().BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.gasmdb'",
	)
	rootCmd.AddCommand(assembleCmd)
}

func readSource(path string) ([]string, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	if stat, err := file.Stat(); err != nil {
		return nil, err
	} else if stat.IsDir() {
		return nil, fmt.Errorf("%s is not a valid assembly file", filepath.Base(path))
	}

	return assembler.ReadSource(file)
}

// Symbol table path for an output file, stdout maps to the source name
func symtablePath(out string, source string) string {
	if out == "-" {
		out = source
	}

	return filepath.Join(
		filepath.Dir(out),
		strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))+".gasmdb",
	)
}

func writeSymTable(path string, symtable *assembler.SymTable) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)

	if err != nil {
		return err
	}

	defer file.Close()

	return gob.NewEncoder(file).Encode(symtable)
}

func assemble(archPath string, sourcePath string, stdout io.Writer) error {
	spec, err := readArch(archPath)

	if err != nil {
		return err
	}

	logPrefix(sourcePath)

	lines, err := readSource(sourcePath)

	if err != nil {
		return err
	}

	var symtarget *assembler.SymTable

	if debugvar {
		source, err := filepath.Abs(sourcePath)

		if err != nil {
			log.Println(err)
			source = ""
		}

		symtarget = assembler.NewSymTable(source)
	}

	result, asmErr := assembler.New(spec).Assemble(lines, symtarget)

	glog.V(1).Infof("gasm: %d object lines for %s", len(result), sourcePath)

	output := strings.Join(result, "\n")
	if len(result) > 0 {
		output += "\n"
	}

	if outvar == "-" {
		if _, err := io.WriteString(stdout, output); err != nil {
			return err
		}
	} else if err := os.WriteFile(outvar, []byte(output), 0666); err != nil {
		log.Println("Error writing output file")
		return err
	}

	if asmErr != nil {
		var lineErr *assembler.LineError

		if errors.As(asmErr, &lineErr) {
			return fmt.Errorf("%d: %s", lineErr.Line, lineErr.Err)
		}

		return asmErr
	}

	if symtarget != nil {
		if err := writeSymTable(symtablePath(outvar, sourcePath), symtarget); err != nil {
			log.Println("Error writing symbol table")
			return err
		}
	}

	return nil
}
