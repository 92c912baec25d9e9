// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage places PDFs into the destination directory without ever
// overwriting what is already there.
package storage

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperorg/paperorg/pkg/types"
)

// Mode selects how the source file reaches its destination.
type Mode int

const (
	// ModeMove renames the source into place. The source must live on the
	// same filesystem as the destination directory.
	ModeMove Mode = iota + 1

	// ModeCopy copies the source and verifies the copy by checksum before
	// committing it. The source file is preserved.
	ModeCopy
)

// Placement reports where a file ended up.
type Placement struct {
	// Path is the final location.
	Path string

	// Conflicted is true when the desired name was taken and a numbered
	// variant was used instead.
	Conflicted bool
}

// Place puts srcPath into destDir under name, resolving name collisions
// with numbered suffixes. The destination directory is created when absent.
func Place(srcPath, destDir, name string, mode Mode) (Placement, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Placement{}, types.NewFault(types.KindFilesystem, "place", destDir, err)
	}

	destPath, conflicted, err := NextAvailable(filepath.Join(destDir, name))
	if err != nil {
		return Placement{}, err
	}

	switch mode {
	case ModeMove:
		if err := os.Rename(srcPath, destPath); err != nil {
			return Placement{}, types.NewFault(types.KindFilesystem, "move", destPath, err)
		}
	case ModeCopy:
		if err := copyVerified(srcPath, destPath); err != nil {
			return Placement{}, err
		}
	default:
		return Placement{}, types.NewFault(types.KindValidation, "place", name,
			fmt.Errorf("unknown mode %d", mode))
	}

	return Placement{Path: destPath, Conflicted: conflicted}, nil
}

// NextAvailable returns path when nothing occupies it, otherwise the first
// free "name(N).ext" variant counting from 2. The probe and the later
// create are not atomic; callers sharing a directory accept the race.
func NextAvailable(path string) (string, bool, error) {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path, false, nil
	} else if err != nil {
		return "", false, types.NewFault(types.KindFilesystem, "probe", path, err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, true, nil
		} else if err != nil {
			return "", false, types.NewFault(types.KindFilesystem, "probe", candidate, err)
		}
	}
}

// copyVerified copies src into destPath via a temp file in the destination
// directory, re-reads the copy, and commits it only when the checksums
// agree. The temp file never survives an error.
func copyVerified(src, destPath string) error {
	in, err := os.Open(src)
	if err != nil {
		return types.NewFault(types.KindFilesystem, "copy", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, ".paperorg-*.tmp")
	if err != nil {
		return types.NewFault(types.KindFilesystem, "copy", dir, err)
	}
	tmpPath := tmp.Name()

	srcHash := sha256.New()
	_, err = io.Copy(tmp, io.TeeReader(in, srcHash))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return types.NewFault(types.KindFilesystem, "copy", destPath, err)
	}

	written, err := hashFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if !bytes.Equal(written, srcHash.Sum(nil)) {
		os.Remove(tmpPath)
		return types.NewFault(types.KindFilesystem, "copy", destPath,
			errors.New("checksum mismatch after copy"))
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return types.NewFault(types.KindFilesystem, "copy", destPath, err)
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewFault(types.KindFilesystem, "hash", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, types.NewFault(types.KindFilesystem, "hash", path, err)
	}
	return h.Sum(nil), nil
}
