package handle

// LocalID identifies an entity within one container or manager. Negative
// values are the null sentinel: they never name a live entity.
type LocalID int32

// NullLocal is the canonical "no entity" local ID.
const NullLocal LocalID = -1

// IsNull reports whether local denotes "no entity".
func IsNull(local LocalID) bool { return local < 0 }

// ContainerIndex identifies a scene container on the native side.
type ContainerIndex int32

// ManagerIndex identifies a native component pool. Index 0 is reserved for
// dynamically-typed components, which have no native storage and are tracked
// by index only on the managed side.
type ManagerIndex int32

// DynamicManager is the reserved manager index for dynamic components.
const DynamicManager ManagerIndex = 0

// ContainerShift is the bit position of the container index inside a packed
// handle. Locals occupy the low 22 bits.
const ContainerShift = 22

const localMask = (1 << ContainerShift) - 1

// Packed addresses an object or container-scoped resource as
// (container << ContainerShift) | local. It is the shape scene-object
// handles take across the native boundary.
type Packed int32

// NullPacked is a packed handle whose local part is the null sentinel.
const NullPacked Packed = -1

// Pack encodes a (container, local) pair. The caller is responsible for
// container >= 0 and 0 <= local < 1<<ContainerShift; malformed input is
// rejected downstream by the native call.
func Pack(container ContainerIndex, local LocalID) Packed {
	return Packed(int32(container)<<ContainerShift | int32(local))
}

// Unpack decodes a packed handle back into its (container, local) pair.
func Unpack(p Packed) (ContainerIndex, LocalID) {
	return ContainerIndex(int32(p) >> ContainerShift), LocalID(int32(p) & localMask)
}

// Container extracts the container index of a packed handle.
func (p Packed) Container() ContainerIndex {
	c, _ := Unpack(p)
	return c
}

// Local extracts the local ID of a packed handle.
func (p Packed) Local() LocalID {
	_, l := Unpack(p)
	return l
}

// IsNull reports whether the packed handle denotes "no entity". Null packed
// handles are negative as a whole, so the check is on the raw value.
func (p Packed) IsNull() bool { return p < 0 }

// Simple addresses a component as (manager, local). Registries keyed by
// container store the container index in Manager; the two index spaces never
// mix within one registry.
type Simple struct {
	Manager ManagerIndex
	Local   LocalID
}

// NullSimple is the destroyed-proxy sentinel handle.
var NullSimple = Simple{Manager: -1, Local: NullLocal}

// IsNull reports whether the handle denotes "no entity".
func (s Simple) IsNull() bool { return IsNull(s.Local) }
