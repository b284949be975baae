package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/lumekit/scenebridge/errors"
)

// wazeroMemory adapts wazero's api.Memory to the root Memory interface.
// Read returns a slice aliasing linear memory, as the contract requires.
type wazeroMemory struct {
	mem api.Memory
}

func (m *wazeroMemory) Read(offset, length uint32) ([]byte, error) {
	b, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset+length), int(m.mem.Size()))
	}
	return b, nil
}

func (m *wazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset)+len(data), int(m.mem.Size()))
	}
	return nil
}

func (m *wazeroMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return v, nil
}

func (m *wazeroMemory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return v, nil
}

func (m *wazeroMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return v, nil
}

func (m *wazeroMemory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return v, nil
}

func (m *wazeroMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return nil
}

func (m *wazeroMemory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return nil
}

func (m *wazeroMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return nil
}

func (m *wazeroMemory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMarshal, nil, int(offset), int(m.mem.Size()))
	}
	return nil
}

// wazeroAllocator drives the runtime's exported allocator. A zero pointer
// from scene_alloc means the guest allocator is out of memory.
type wazeroAllocator struct {
	alloc api.Function
	free  api.Function
}

func (a *wazeroAllocator) Alloc(size, align uint32) (uint32, error) {
	res, err := a.alloc.Call(context.Background(), uint64(size), uint64(align))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", allocExportName, err)
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		return 0, fmt.Errorf("%s returned null for %d bytes", allocExportName, size)
	}
	return ptr, nil
}

func (a *wazeroAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	if _, err := a.free.Call(context.Background(), uint64(ptr), uint64(size), uint64(align)); err != nil {
		Logger().Warn("scene_free failed", zap.Error(err))
	}
}
