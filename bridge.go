package scenebridge

import (
	"context"
	"math"
)

// Memory represents the runtime's linear memory.
//
// Read returns a slice aliasing linear memory; the slice stays valid until
// the underlying memory grows. Implementations backed by wazero satisfy this
// naturally.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Allocator allocates regions inside the runtime's linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Caller invokes one function of the native API surface. Argument and result
// meaning are fixed per FuncID; pointers into linear memory travel as byte
// offsets.
type Caller interface {
	Call(ctx context.Context, fn FuncID, args ...uint64) (uint64, error)
}

// Bridge is the full contract the binding layer consumes from a loaded
// runtime: the call primitive plus the shared linear memory it marshals
// through.
type Bridge interface {
	Caller
	Memory() Memory
	Allocator() Allocator
}

// I32Arg encodes a signed 32-bit value (handles are signed; negative locals
// are the null sentinel) into a call slot.
func I32Arg(v int32) uint64 { return uint64(uint32(v)) }

// I32Result decodes a signed 32-bit value from a call result.
func I32Result(v uint64) int32 { return int32(uint32(v)) }

// F32Arg encodes a float32 into a call slot.
func F32Arg(v float32) uint64 { return uint64(math.Float32bits(v)) }

// F32Result decodes a float32 from a call result.
func F32Result(v uint64) float32 { return math.Float32frombits(uint32(v)) }
