// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"golang.org/x/sys/unix"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/vfs"
)

// mmapRegion is a memory-mapped view of an entire table file, giving Open's
// zero-copy read path direct []byte access into the file's contents:
// segments, indices and the blob store all hold slices into this one
// backing array rather than copies, per spec §9's "single owning byte
// region with many read-only views" design.
type mmapRegion struct {
	data []byte
}

// openMMap opens the named file through fs and memory-maps it for reading,
// returning a region spanning its full contents. It is grounded in the
// open-stat-mmap sequence a random-access datafile reader uses to hand
// callers zero-copy slices, generalized to go through vfs.FS rather than
// os directly.
func openMMap(fs vfs.FS, name string) (*mmapRegion, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, base.InvalidArgumentErrorf("opening %q: %s", name, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, base.InvalidArgumentErrorf("stat %q: %s", name, err)
	}
	size := fi.Size()
	if size == 0 {
		return &mmapRegion{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, base.InvalidArgumentErrorf("mmap %q: %s", name, err)
	}
	return &mmapRegion{data: data}, nil
}

// Close unmaps the region.
func (m *mmapRegion) Close() error {
	if len(m.data) == 0 {
		return nil
	}
	return unix.Munmap(m.data)
}

// warmUp advises the OS that data will be needed soon and then performs a
// volatile read of each page to force it resident, per spec §4.5 step 9.
func warmUp(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
	const pageSize = 4096
	sum := byte(0)
	for i := 0; i < len(data); i += pageSize {
		sum += data[i]
	}
	_ = sum
}
