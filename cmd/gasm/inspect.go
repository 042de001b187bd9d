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
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
)

var symbolsvar string

var inspectCmd = &cobra.Command{
	Use:   "inspect archFile",
	Short: "Pretty-prints a validated architecture description",
	Long: `Inspect reads and validates the architecture description and prints the
resulting model: registers, instruction formats, the operand grammar and
every mnemonic with its operand formats. With --symbols the symbol table
written by "assemble --debug" is printed as well.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readArch(args[0])

		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.SetColoringEnabled(isTerminal(os.Stdout))
		printer.SetExportedOnly(true)

		printer.Println(spec)

		if symbolsvar == "" {
			return nil
		}

		symtable, err := loadSymTable(symbolsvar)

		if err != nil {
			return err
		}

		printer.Println(symtable)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(
		&symbolsvar, "symbols", "",
		"Symbol table (.gasmdb) to print after the description",
	)
	rootCmd.AddCommand(inspectCmd)
}

func loadSymTable(path string) (*assembler.SymTable, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		return nil, err
	}

	return &symtable, nil
}
