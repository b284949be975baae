package arena

import (
	"encoding/binary"
	"math"
)

// Typed overlay views share the arena's backing bytes. A view is valid only
// until the next growth; afterwards its Len reports 0 and element access
// panics, so stale writes can never land in the wrong region.

// U8View overlays the region as bytes.
type U8View struct {
	a   *Arena
	gen uint32
}

// U16View overlays the region as little-endian uint16 elements.
type U16View struct {
	a   *Arena
	gen uint32
}

// U32View overlays the region as little-endian uint32 elements.
type U32View struct {
	a   *Arena
	gen uint32
}

// I32View overlays the region as little-endian int32 elements. Handle arrays
// travel through this view.
type I32View struct {
	a   *Arena
	gen uint32
}

// F32View overlays the region as little-endian float32 elements.
type F32View struct {
	a   *Arena
	gen uint32
}

// ViewU8 returns the byte view of the whole region.
func (a *Arena) ViewU8() U8View { return U8View{a: a, gen: a.gen} }

// ViewU16 returns the uint16 view of the whole region.
func (a *Arena) ViewU16() U16View { return U16View{a: a, gen: a.gen} }

// ViewU32 returns the uint32 view of the whole region.
func (a *Arena) ViewU32() U32View { return U32View{a: a, gen: a.gen} }

// ViewI32 returns the int32 view of the whole region.
func (a *Arena) ViewI32() I32View { return I32View{a: a, gen: a.gen} }

// ViewF32 returns the float32 view of the whole region.
func (a *Arena) ViewF32() F32View { return F32View{a: a, gen: a.gen} }

func (v U8View) live() bool  { return v.a != nil && v.gen == v.a.gen }
func (v U16View) live() bool { return v.a != nil && v.gen == v.a.gen }
func (v U32View) live() bool { return v.a != nil && v.gen == v.a.gen }
func (v I32View) live() bool { return v.a != nil && v.gen == v.a.gen }
func (v F32View) live() bool { return v.a != nil && v.gen == v.a.gen }

// Len returns the element count, or 0 once the view is stale.
func (v U8View) Len() int {
	if !v.live() {
		return 0
	}
	return int(v.a.cap)
}

func (v U8View) At(i int) uint8 {
	v.check(i)
	return v.a.buf[i]
}

func (v U8View) Set(i int, x uint8) {
	v.check(i)
	v.a.buf[i] = x
}

func (v U8View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic("arena: view index out of range")
	}
}

// Len returns the element count, or 0 once the view is stale.
func (v U16View) Len() int {
	if !v.live() {
		return 0
	}
	return int(v.a.cap / 2)
}

func (v U16View) At(i int) uint16 {
	v.check(i)
	return binary.LittleEndian.Uint16(v.a.buf[i*2:])
}

func (v U16View) Set(i int, x uint16) {
	v.check(i)
	binary.LittleEndian.PutUint16(v.a.buf[i*2:], x)
}

func (v U16View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic("arena: view index out of range")
	}
}

// Len returns the element count, or 0 once the view is stale.
func (v U32View) Len() int {
	if !v.live() {
		return 0
	}
	return int(v.a.cap / 4)
}

func (v U32View) At(i int) uint32 {
	v.check(i)
	return binary.LittleEndian.Uint32(v.a.buf[i*4:])
}

func (v U32View) Set(i int, x uint32) {
	v.check(i)
	binary.LittleEndian.PutUint32(v.a.buf[i*4:], x)
}

func (v U32View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic("arena: view index out of range")
	}
}

// Len returns the element count, or 0 once the view is stale.
func (v I32View) Len() int {
	if !v.live() {
		return 0
	}
	return int(v.a.cap / 4)
}

func (v I32View) At(i int) int32 {
	v.check(i)
	return int32(binary.LittleEndian.Uint32(v.a.buf[i*4:]))
}

func (v I32View) Set(i int, x int32) {
	v.check(i)
	binary.LittleEndian.PutUint32(v.a.buf[i*4:], uint32(x))
}

func (v I32View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic("arena: view index out of range")
	}
}

// Len returns the element count, or 0 once the view is stale.
func (v F32View) Len() int {
	if !v.live() {
		return 0
	}
	return int(v.a.cap / 4)
}

func (v F32View) At(i int) float32 {
	v.check(i)
	return math.Float32frombits(binary.LittleEndian.Uint32(v.a.buf[i*4:]))
}

func (v F32View) Set(i int, x float32) {
	v.check(i)
	binary.LittleEndian.PutUint32(v.a.buf[i*4:], math.Float32bits(x))
}

func (v F32View) check(i int) {
	if i < 0 || i >= v.Len() {
		panic("arena: view index out of range")
	}
}
