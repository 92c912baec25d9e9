// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrKind classifies a failure so callers can decide how to react without
// string-matching error text.
type ErrKind int

const (
	// KindValidation marks bad input: malformed URLs, missing files,
	// paths that are not regular files.
	KindValidation ErrKind = iota + 1

	// KindNetwork marks transport failures and transient server errors
	// that persisted through retries.
	KindNetwork

	// KindRemoteRejection marks definitive server refusals (404, 403 and
	// similar) where retrying cannot help.
	KindRemoteRejection

	// KindFilesystem marks local I/O failures: permissions, missing
	// directories, rename and copy errors.
	KindFilesystem
)

func (k ErrKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindRemoteRejection:
		return "remote-rejection"
	case KindFilesystem:
		return "filesystem"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Fault is the error type returned by the pipeline stages. It pairs a
// classification with the operation that failed and the subject it failed on.
type Fault struct {
	Kind   ErrKind
	Op     string
	Target string
	Err    error
}

func (f *Fault) Error() string {
	if f.Target == "" {
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Op, f.Target, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// NewFault wraps err with a classification and operation context.
func NewFault(kind ErrKind, op, target string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Target: target, Err: err}
}

// KindOf extracts the classification from err, or 0 when err carries none.
func KindOf(err error) ErrKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
