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
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/mhvelplund/Generic-Assembler/pkg/arch"
)

// Detect picks the reader for path from its extension
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FORMAT_YAML
	}
	return FORMAT_TEXT
}

// Read loads the architecture description at path. FORMAT_AUTO selects the
// reader from the file extension.
func Read(path string, format Format) (*arch.Spec, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	if format == FORMAT_AUTO {
		format = Detect(path)
	}

	glog.V(1).Infof("archfile: reading %s as %s", path, format)

	if format == FORMAT_YAML {
		return ReadYAML(file)
	}

	return ReadText(file)
}
