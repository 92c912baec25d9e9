// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperorg/paperorg/pkg/types"
)

// EnvDir is the environment variable that overrides the default
// destination directory.
const EnvDir = "PAPERS_DIR"

const defaultDirName = "Papers"

// mkdirAll is swapped by tests to exercise permission failures.
var mkdirAll = os.MkdirAll

// Destination is where organized papers land and how that location was
// chosen.
type Destination struct {
	Path string

	// Source records which setting won: "flag", "env" or "default".
	Source string

	// FirstUse is true when the directory did not exist and was just
	// created.
	FirstUse bool

	// Fallback is true when the default directory could not be created
	// and the working directory was used instead.
	Fallback bool
}

// ResolveDestination picks the destination directory. An explicit flag
// wins, then the PAPERS_DIR environment variable, then ~/Papers.
func ResolveDestination(flagDir, envDir, home string) Destination {
	switch {
	case flagDir != "":
		return Destination{Path: expandHome(flagDir, home), Source: "flag"}
	case envDir != "":
		return Destination{Path: expandHome(envDir, home), Source: "env"}
	default:
		return Destination{Path: filepath.Join(home, defaultDirName), Source: "default"}
	}
}

// expandHome rewrites a leading ~ to the home directory.
func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// EnsureDestination creates the chosen directory when it does not exist
// yet. Only the built-in default may fall back to the working directory
// on a permission failure; explicitly configured paths fail loudly.
func EnsureDestination(dest Destination) (Destination, error) {
	if _, err := os.Stat(dest.Path); err == nil {
		return dest, nil
	}

	err := mkdirAll(dest.Path, 0o755)
	if err == nil {
		dest.FirstUse = true
		return dest, nil
	}

	if dest.Source == "default" && errors.Is(err, fs.ErrPermission) {
		if cwd, wdErr := os.Getwd(); wdErr == nil {
			dest.Path = cwd
			dest.Fallback = true
			return dest, nil
		}
	}

	return Destination{}, types.NewFault(types.KindFilesystem, "preparing destination", dest.Path, err)
}
