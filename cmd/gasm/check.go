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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhvelplund/Generic-Assembler/pkg/archfile"
)

var checkCmd = &cobra.Command{
	Use:   "check archFile",
	Short: "Validates an architecture description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := archfile.ParseFormat(formatvar)

		if err != nil {
			return err
		}

		logPrefix(args[0])

		_, err = archfile.Read(args[0], format)

		if errs, ok := err.(archfile.Errors); ok {
			fmt.Fprint(os.Stdout, errs.Report())
			return fmt.Errorf("%d errors in specification file", len(errs))
		}

		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, archfile.Errors{}.Report())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
