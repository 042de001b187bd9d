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
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
	"github.com/mhvelplund/Generic-Assembler/pkg/archfile"
)

var formatvar string
var reportvar string

var rootCmd = &cobra.Command{
	Use:   "gasm",
	Short: "A retargetable two-pass assembler",
	Long: `Gasm assembles source for any architecture described by an architecture
description file. The description declares registers, instruction formats,
an assembly operand grammar and the encodings of every mnemonic. Descriptions
are read in the sectioned text format or, with the .yaml extension, as YAML.`,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVar(
		&formatvar, "format", "auto",
		"Architecture description format: text, yaml or auto (by extension)",
	)
	rootCmd.PersistentFlags().StringVar(
		&reportvar, "report", "spec_error_report.txt",
		"Path of the architecture description error report",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// glog reads its flags from the go flag set
		flag.CommandLine.Parse(nil)
	}
}

// Sets the log prefix to the file name, bold on a terminal
func logPrefix(path string) {
	name := filepath.Base(path)

	if isTerminal(os.Stderr) {
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m ", name))
	} else {
		log.SetPrefix(name + ": ")
	}
}

// Reads and validates the architecture description at path. The error report
// is written whenever reportvar is set.
func readArch(path string) (*arch.Spec, error) {
	format, err := archfile.ParseFormat(formatvar)

	if err != nil {
		return nil, err
	}

	logPrefix(path)

	spec, err := archfile.Read(path, format)
	errs, aggregated := err.(archfile.Errors)

	if reportvar != "" && (err == nil || aggregated) {
		if werr := os.WriteFile(reportvar, []byte(errs.Report()), 0666); werr != nil {
			log.Println("Error writing specification error report")
			log.Println(werr)
		}
	}

	if aggregated && reportvar != "" {
		return nil, fmt.Errorf(
			"Error in specification file %s, see \"%s\".",
			filepath.Base(path),
			reportvar,
		)
	}

	return spec, err
}

func gasm() int {
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(gasm())
}
