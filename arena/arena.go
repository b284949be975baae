package arena

import (
	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
)

// Increment is the growth granularity: capacities are always rounded up to
// the next multiple of this.
const Increment = 1024

// Alignment of the arena region in linear memory.
const regionAlign = 16

// Arena is the single growable scratch region used for all bulk-array
// marshalling across the native boundary. It grows monotonically and never
// shrinks; growth frees the old region and allocates a fresh one, so every
// previously fetched view goes stale.
//
// The arena is owned for the duration of one call: no operation that stages
// or reads arena data may trigger another arena-touching operation before it
// completes. User lifecycle hooks in particular must not call back into
// marshalling paths.
type Arena struct {
	mem   scenebridge.Memory
	alloc scenebridge.Allocator
	buf   []byte
	base  uint32
	cap   uint32
	gen   uint32
}

// New creates an arena carving from the given linear memory. No region is
// allocated until the first EnsureCapacity call.
func New(mem scenebridge.Memory, alloc scenebridge.Allocator) *Arena {
	return &Arena{mem: mem, alloc: alloc}
}

// Base returns the current native pointer of the region, for passing to
// calls that read or write staged data.
func (a *Arena) Base() uint32 { return a.base }

// Capacity returns the current region size in bytes.
func (a *Arena) Capacity() uint32 { return a.cap }

// Generation increments on every growth. Views compare it to detect
// staleness.
func (a *Arena) Generation() uint32 { return a.gen }

// EnsureCapacity guarantees the region holds at least n bytes. A no-op when
// the current capacity suffices. Otherwise the old region is freed, a new
// one sized up to the next Increment multiple is allocated, and all
// outstanding views go stale. Staged contents do not survive growth.
//
// Allocation failure is the one fatal condition in this layer; the returned
// error must propagate.
func (a *Arena) EnsureCapacity(n uint32) error {
	if n <= a.cap {
		return nil
	}

	newCap := (n + Increment - 1) / Increment * Increment

	if a.cap > 0 {
		a.alloc.Free(a.base, a.cap, regionAlign)
	}
	a.buf = nil
	a.gen++

	ptr, err := a.alloc.Alloc(newCap, regionAlign)
	if err != nil {
		a.base, a.cap = 0, 0
		return errors.AllocationFailed(newCap, err)
	}

	buf, err := a.mem.Read(ptr, newCap)
	if err != nil {
		a.alloc.Free(ptr, newCap, regionAlign)
		a.base, a.cap = 0, 0
		return errors.AllocationFailed(newCap, err)
	}

	a.base, a.cap, a.buf = ptr, newCap, buf
	return nil
}

// StageBytes writes data at the given offset within the region, growing it
// first if needed.
func (a *Arena) StageBytes(offset uint32, data []byte) error {
	if err := a.EnsureCapacity(offset + uint32(len(data))); err != nil {
		return err
	}
	copy(a.buf[offset:], data)
	return nil
}

// StageUTF8 writes text null-terminated at extraOffset within the region and
// returns the native pointer of the string. The offset lets a caller stage a
// string alongside other data in the same call.
func (a *Arena) StageUTF8(text string, extraOffset uint32) (uint32, error) {
	n := uint32(len(text))
	if err := a.EnsureCapacity(extraOffset + n + 1); err != nil {
		return 0, err
	}
	copy(a.buf[extraOffset:], text)
	a.buf[extraOffset+n] = 0
	return a.base + extraOffset, nil
}

// ReadUTF8 reads a null-terminated string of at most max bytes starting at
// the given offset within the region.
func (a *Arena) ReadUTF8(offset, max uint32) (string, error) {
	end := offset + max
	if end > a.cap {
		return "", errors.OutOfBounds(errors.PhaseMarshal, nil, int(end), int(a.cap))
	}
	b := a.buf[offset:end]
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
