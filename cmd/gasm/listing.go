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
	"os"

	"github.com/spf13/cobra"

	"github.com/mhvelplund/Generic-Assembler/pkg/assembler"
	"github.com/mhvelplund/Generic-Assembler/pkg/listing"
)

var labelsvar bool

var listingCmd = &cobra.Command{
	Use:   "listing archFile sourceFile",
	Short: "Prints the source with the address of every line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readArch(args[0])

		if err != nil {
			return err
		}

		logPrefix(args[1])

		lines, err := readSource(args[1])

		if err != nil {
			return err
		}

		file, err := os.Open(args[1])

		if err != nil {
			return err
		}

		defer file.Close()

		symtable := assembler.NewSymTable(args[1])

		if _, err := assembler.New(spec).Assemble(lines, symtable); err != nil {
			return err
		}

		list, err := listing.New(file, symtable)

		if err != nil {
			return err
		}

		list.Color = isTerminal(os.Stdout)

		if err := list.Write(os.Stdout); err != nil {
			return err
		}

		if labelsvar {
			return list.WriteSymbols(os.Stdout)
		}

		return nil
	},
}

func init() {
	listingCmd.Flags().BoolVar(&labelsvar, "labels", false, "Also print the label table")
	rootCmd.AddCommand(listingCmd)
}
