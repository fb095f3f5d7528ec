// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// ErrNotFound means that a requested key was not found. Reader.Get does not
// return it: a missing key yields a nil error and no visit call.
var ErrNotFound = errors.New("coredb/sstable: not found")

// ErrInvalidArgument means that a call was rejected because of a
// precondition the caller failed to satisfy, such as naming a file that
// cannot be opened, stat'ed or memory-mapped, or passing an internal key
// shorter than its trailer. Open always memory-maps the file; there is no
// non-mmap read mode to reject.
var ErrInvalidArgument = errors.New("coredb/sstable: invalid argument")

// ErrCorruption means that an on-disk structure failed to parse or failed a
// checksum: a block trailer's checksum didn't match its contents, a footer's
// magic number was wrong, or a varint ran past the end of its block.
var ErrCorruption = errors.New("coredb/sstable: corruption")

// ErrAborted means that a record carried a value-type tag the reader does
// not recognize. A visit callback that stops a Get early does not produce
// it; Get then returns nil.
var ErrAborted = errors.New("coredb/sstable: aborted")

// CorruptionErrorf formats an ErrCorruption with the supplied detail, which
// is treated as safe-for-redaction: corruption diagnostics should describe
// byte offsets and block kinds, never raw key or value bytes.
func CorruptionErrorf(format string, args ...interface{}) error {
	safeArgs := make([]interface{}, len(args))
	for i, a := range args {
		safeArgs[i] = redact.Safe(a)
	}
	return errors.Mark(errors.Newf(format, safeArgs...), ErrCorruption)
}

// InvalidArgumentErrorf formats an ErrInvalidArgument with the supplied
// detail.
func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// IsCorruptionError returns true if err is (or wraps) ErrCorruption.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}

// IsInvalidArgumentError returns true if err is (or wraps) ErrInvalidArgument.
func IsInvalidArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
