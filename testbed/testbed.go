// Package testbed provides a pure-Go stand-in for the compiled scene
// runtime: a toy scene graph behind the same Bridge contract the engine
// package exposes, with dense local-ID reuse and arena-style marshalling
// through a byte-slice linear memory. Integration tests run against it
// without loading any wasm.
package testbed

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/handle"
)

// memSize is the fixed fake linear memory size. It never grows, so slices
// handed out by Read stay aliased for the life of the runtime.
const memSize = 1 << 20

// FakeRuntime implements scenebridge.Bridge over an in-process scene graph.
// Single-threaded, like the real runtime.
type FakeRuntime struct {
	mem   *fakeMemory
	alloc *bumpAllocator

	containers    map[handle.ContainerIndex]*container
	nextContainer handle.ContainerIndex

	meshComps    map[handle.LocalID]*meshComp
	meshFree     []handle.LocalID
	nextMeshComp handle.LocalID

	meshes    []meshData
	textures  []textureData
	materials []materialData

	assets map[string]AssetFunc

	raycastHits map[handle.ContainerIndex][]handle.Packed

	// Calls counts native invocations per function, for tests asserting
	// call-batching behavior.
	Calls [scenebridge.FuncCount]int
}

// AssetFunc populates a container on scene_load / scene_append and returns
// the root object of what it built.
type AssetFunc func(f *FakeRuntime, c handle.ContainerIndex) handle.LocalID

type container struct {
	objects    map[handle.LocalID]*object
	roots      []handle.LocalID
	free       []handle.LocalID
	next       handle.LocalID
	skins      []int32   // joint counts
	animations []float32 // durations
}

type object struct {
	local    handle.LocalID
	parent   handle.LocalID // NullLocal at container root
	children []handle.LocalID
	comps    []handle.LocalID // mesh component locals
	name     string
	pos      [3]float32
}

type meshComp struct {
	owner  handle.Packed
	mesh   handle.LocalID
	active bool
}

type meshData struct {
	verts      []float32
	indexCount int32
}

type textureData struct{ w, h int32 }

type materialData struct {
	slots map[int32]handle.LocalID
}

// New creates an empty fake runtime.
func New() *FakeRuntime {
	return &FakeRuntime{
		mem:         &fakeMemory{buf: make([]byte, memSize)},
		alloc:       &bumpAllocator{next: 16},
		containers:  make(map[handle.ContainerIndex]*container),
		meshComps:   make(map[handle.LocalID]*meshComp),
		assets:      make(map[string]AssetFunc),
		raycastHits: make(map[handle.ContainerIndex][]handle.Packed),
	}
}

// Memory implements scenebridge.Bridge.
func (f *FakeRuntime) Memory() scenebridge.Memory { return f.mem }

// Allocator implements scenebridge.Bridge.
func (f *FakeRuntime) Allocator() scenebridge.Allocator { return f.alloc }

// Frees reports how many regions were released, for arena growth tests.
func (f *FakeRuntime) Frees() int { return f.alloc.frees }

// RegisterAsset installs a named fixture for scene_load / scene_append.
func (f *FakeRuntime) RegisterAsset(name string, fn AssetFunc) {
	f.assets[name] = fn
}

// ProgramRaycast fixes the hit list raycast_all reports for one container.
func (f *FakeRuntime) ProgramRaycast(c handle.ContainerIndex, hits []handle.Packed) {
	f.raycastHits[c] = hits
}

// AddMesh installs a mesh resource and returns its local ID.
func (f *FakeRuntime) AddMesh(verts []float32, indexCount int) handle.LocalID {
	f.meshes = append(f.meshes, meshData{verts: verts, indexCount: int32(indexCount)})
	return handle.LocalID(len(f.meshes) - 1)
}

// AddTexture installs a texture resource and returns its local ID.
func (f *FakeRuntime) AddTexture(w, h int) handle.LocalID {
	f.textures = append(f.textures, textureData{w: int32(w), h: int32(h)})
	return handle.LocalID(len(f.textures) - 1)
}

// AddMaterial installs a material resource and returns its local ID.
func (f *FakeRuntime) AddMaterial() handle.LocalID {
	f.materials = append(f.materials, materialData{slots: make(map[int32]handle.LocalID)})
	return handle.LocalID(len(f.materials) - 1)
}

// AddSkin installs a container-scoped skin and returns its local ID.
func (f *FakeRuntime) AddSkin(c handle.ContainerIndex, joints int) handle.LocalID {
	ct := f.containers[c]
	ct.skins = append(ct.skins, int32(joints))
	return handle.LocalID(len(ct.skins) - 1)
}

// AddAnimation installs a container-scoped animation clip.
func (f *FakeRuntime) AddAnimation(c handle.ContainerIndex, duration float32) handle.LocalID {
	ct := f.containers[c]
	ct.animations = append(ct.animations, duration)
	return handle.LocalID(len(ct.animations) - 1)
}

// ObjectCount reports the live objects of one container.
func (f *FakeRuntime) ObjectCount(c handle.ContainerIndex) int {
	ct := f.containers[c]
	if ct == nil {
		return 0
	}
	return len(ct.objects)
}

func (f *FakeRuntime) container(c handle.ContainerIndex) (*container, error) {
	ct := f.containers[c]
	if ct == nil {
		return nil, fmt.Errorf("testbed: no container %d", c)
	}
	return ct, nil
}

func (f *FakeRuntime) object(p handle.Packed) (*container, *object, error) {
	ct, err := f.container(p.Container())
	if err != nil {
		return nil, nil, err
	}
	o := ct.objects[p.Local()]
	if o == nil {
		return nil, nil, fmt.Errorf("testbed: no object %d in container %d", p.Local(), p.Container())
	}
	return ct, o, nil
}

func (ct *container) allocLocal() handle.LocalID {
	if n := len(ct.free); n > 0 {
		local := ct.free[n-1]
		ct.free = ct.free[:n-1]
		return local
	}
	local := ct.next
	ct.next++
	return local
}

func (f *FakeRuntime) createObject(c handle.ContainerIndex, parent handle.Packed) (handle.Packed, error) {
	ct, err := f.container(c)
	if err != nil {
		return handle.NullPacked, err
	}
	local := ct.allocLocal()
	o := &object{local: local, parent: handle.NullLocal}
	ct.objects[local] = o

	if !parent.IsNull() {
		_, po, err := f.object(parent)
		if err != nil {
			return handle.NullPacked, err
		}
		o.parent = parent.Local()
		po.children = append(po.children, local)
	} else {
		ct.roots = append(ct.roots, local)
	}
	return handle.Pack(c, local), nil
}

func (f *FakeRuntime) destroyObject(p handle.Packed) error {
	ct, o, err := f.object(p)
	if err != nil {
		return err
	}
	for len(o.children) > 0 {
		child := o.children[0]
		if err := f.destroyObject(handle.Pack(p.Container(), child)); err != nil {
			return err
		}
	}
	for _, comp := range o.comps {
		delete(f.meshComps, comp)
		f.meshFree = append(f.meshFree, comp)
	}
	if handle.IsNull(o.parent) {
		ct.roots = removeLocal(ct.roots, o.local)
	} else if po := ct.objects[o.parent]; po != nil {
		po.children = removeLocal(po.children, o.local)
	}
	delete(ct.objects, o.local)
	ct.free = append(ct.free, o.local)
	return nil
}

func removeLocal(list []handle.LocalID, local handle.LocalID) []handle.LocalID {
	for i, l := range list {
		if l == local {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Call implements scenebridge.Caller by dispatching on the FuncID.
func (f *FakeRuntime) Call(ctx context.Context, fn scenebridge.FuncID, args ...uint64) (uint64, error) {
	if fn >= scenebridge.FuncCount {
		return 0, fmt.Errorf("testbed: unknown function %d", fn)
	}
	f.Calls[fn]++

	i32 := func(i int) int32 { return scenebridge.I32Result(args[i]) }
	ptr := func(i int) uint32 { return uint32(args[i]) }

	switch fn {
	case scenebridge.FnSceneCreate:
		idx := f.nextContainer
		f.nextContainer++
		f.containers[idx] = &container{objects: make(map[handle.LocalID]*object)}
		return scenebridge.I32Arg(int32(idx)), nil

	case scenebridge.FnSceneDestroy:
		idx := handle.ContainerIndex(i32(0))
		if ct := f.containers[idx]; ct != nil {
			// Components owned by the container's objects go back to the
			// free list, same as a per-object destroy.
			for _, o := range ct.objects {
				for _, comp := range o.comps {
					delete(f.meshComps, comp)
					f.meshFree = append(f.meshFree, comp)
				}
			}
		}
		delete(f.containers, idx)
		return 0, nil

	case scenebridge.FnSceneLoad:
		name, err := f.mem.readString(ptr(0), ptr(1))
		if err != nil {
			return 0, err
		}
		build, ok := f.assets[name]
		if !ok {
			return scenebridge.I32Arg(-1), nil
		}
		idx := f.nextContainer
		f.nextContainer++
		f.containers[idx] = &container{objects: make(map[handle.LocalID]*object)}
		build(f, idx)
		return scenebridge.I32Arg(int32(idx)), nil

	case scenebridge.FnSceneAppend:
		c := handle.ContainerIndex(i32(0))
		name, err := f.mem.readCString(ptr(1))
		if err != nil {
			return 0, err
		}
		build, ok := f.assets[name]
		if !ok {
			return scenebridge.I32Arg(int32(handle.NullPacked)), nil
		}
		root := build(f, c)
		return scenebridge.I32Arg(int32(handle.Pack(c, root))), nil

	case scenebridge.FnObjectCreate:
		p, err := f.createObject(handle.ContainerIndex(i32(0)), handle.Packed(i32(1)))
		if err != nil {
			return 0, err
		}
		return scenebridge.I32Arg(int32(p)), nil

	case scenebridge.FnObjectDestroy:
		return 0, f.destroyObject(handle.Packed(i32(0)))

	case scenebridge.FnObjectSetName:
		_, o, err := f.object(handle.Packed(i32(0)))
		if err != nil {
			return 0, err
		}
		name, err := f.mem.readCString(ptr(1))
		if err != nil {
			return 0, err
		}
		o.name = name
		return 0, nil

	case scenebridge.FnObjectGetName:
		_, o, err := f.object(handle.Packed(i32(0)))
		if err != nil {
			return 0, err
		}
		n := uint32(len(o.name))
		if n+1 > ptr(2) {
			n = ptr(2) - 1
		}
		if err := f.mem.Write(ptr(1), []byte(o.name[:n])); err != nil {
			return 0, err
		}
		if err := f.mem.WriteU8(ptr(1)+n, 0); err != nil {
			return 0, err
		}
		return uint64(n), nil

	case scenebridge.FnObjectParent:
		p := handle.Packed(i32(0))
		_, o, err := f.object(p)
		if err != nil {
			return 0, err
		}
		if handle.IsNull(o.parent) {
			return scenebridge.I32Arg(int32(handle.NullPacked)), nil
		}
		return scenebridge.I32Arg(int32(handle.Pack(p.Container(), o.parent))), nil

	case scenebridge.FnObjectChildCount:
		_, o, err := f.object(handle.Packed(i32(0)))
		if err != nil {
			return 0, err
		}
		return uint64(len(o.children)), nil

	case scenebridge.FnObjectChildren:
		p := handle.Packed(i32(0))
		_, o, err := f.object(p)
		if err != nil {
			return 0, err
		}
		max := int(ptr(2))
		written := 0
		for _, child := range o.children {
			if written >= max {
				break
			}
			packed := handle.Pack(p.Container(), child)
			if err := f.mem.WriteU32(ptr(1)+uint32(written)*4, uint32(int32(packed))); err != nil {
				return 0, err
			}
			written++
		}
		return uint64(written), nil

	case scenebridge.FnObjectSetPosition:
		_, o, err := f.object(handle.Packed(i32(0)))
		if err != nil {
			return 0, err
		}
		for i := 0; i < 3; i++ {
			bits, err := f.mem.ReadU32(ptr(1) + uint32(i)*4)
			if err != nil {
				return 0, err
			}
			o.pos[i] = math.Float32frombits(bits)
		}
		return 0, nil

	case scenebridge.FnObjectGetPosition:
		_, o, err := f.object(handle.Packed(i32(0)))
		if err != nil {
			return 0, err
		}
		for i := 0; i < 3; i++ {
			if err := f.mem.WriteU32(ptr(1)+uint32(i)*4, math.Float32bits(o.pos[i])); err != nil {
				return 0, err
			}
		}
		return 0, nil

	case scenebridge.FnComponentAdd:
		if i32(0) != 1 {
			return 0, fmt.Errorf("testbed: no native manager %d", i32(0))
		}
		owner := handle.Packed(i32(1))
		_, o, err := f.object(owner)
		if err != nil {
			return 0, err
		}
		var local handle.LocalID
		if n := len(f.meshFree); n > 0 {
			local = f.meshFree[n-1]
			f.meshFree = f.meshFree[:n-1]
		} else {
			local = f.nextMeshComp
			f.nextMeshComp++
		}
		f.meshComps[local] = &meshComp{owner: owner, mesh: handle.NullLocal, active: true}
		o.comps = append(o.comps, local)
		return scenebridge.I32Arg(int32(local)), nil

	case scenebridge.FnComponentDestroy:
		local := handle.LocalID(i32(1))
		comp := f.meshComps[local]
		if comp == nil {
			return 0, nil
		}
		if _, o, err := f.object(comp.owner); err == nil {
			o.comps = removeLocal(o.comps, local)
		}
		delete(f.meshComps, local)
		f.meshFree = append(f.meshFree, local)
		return 0, nil

	case scenebridge.FnComponentObject:
		comp := f.meshComps[handle.LocalID(i32(1))]
		if comp == nil {
			return 0, fmt.Errorf("testbed: no component %d", i32(1))
		}
		return scenebridge.I32Arg(int32(comp.owner)), nil

	case scenebridge.FnComponentCount:
		_, o, err := f.object(handle.Packed(i32(1)))
		if err != nil {
			return 0, err
		}
		return uint64(len(o.comps)), nil

	case scenebridge.FnComponentList:
		_, o, err := f.object(handle.Packed(i32(1)))
		if err != nil {
			return 0, err
		}
		max := int(ptr(3))
		written := 0
		for _, comp := range o.comps {
			if written >= max {
				break
			}
			if err := f.mem.WriteU32(ptr(2)+uint32(written)*4, uint32(int32(comp))); err != nil {
				return 0, err
			}
			written++
		}
		return uint64(written), nil

	case scenebridge.FnComponentSetActive:
		if comp := f.meshComps[handle.LocalID(i32(1))]; comp != nil {
			comp.active = i32(2) != 0
		}
		return 0, nil

	case scenebridge.FnMeshComponentSetMesh:
		comp := f.meshComps[handle.LocalID(i32(0))]
		if comp == nil {
			return 0, fmt.Errorf("testbed: no component %d", i32(0))
		}
		comp.mesh = handle.LocalID(i32(1))
		return 0, nil

	case scenebridge.FnMeshComponentMesh:
		comp := f.meshComps[handle.LocalID(i32(0))]
		if comp == nil {
			return 0, fmt.Errorf("testbed: no component %d", i32(0))
		}
		return scenebridge.I32Arg(int32(comp.mesh)), nil

	case scenebridge.FnMeshVertexCount:
		m, err := f.meshAt(i32(0))
		if err != nil {
			return 0, err
		}
		return uint64(len(m.verts) / 3), nil

	case scenebridge.FnMeshIndexCount:
		m, err := f.meshAt(i32(0))
		if err != nil {
			return 0, err
		}
		return uint64(m.indexCount), nil

	case scenebridge.FnMeshVertexData:
		m, err := f.meshAt(i32(0))
		if err != nil {
			return 0, err
		}
		first, count := int(ptr(2)), int(ptr(3))
		written := 0
		for i := 0; i < count && first+i < len(m.verts); i++ {
			if err := f.mem.WriteU32(ptr(1)+uint32(i)*4, math.Float32bits(m.verts[first+i])); err != nil {
				return 0, err
			}
			written++
		}
		return uint64(written), nil

	case scenebridge.FnTextureWidth:
		t, err := f.textureAt(i32(0))
		if err != nil {
			return 0, err
		}
		return uint64(t.w), nil

	case scenebridge.FnTextureHeight:
		t, err := f.textureAt(i32(0))
		if err != nil {
			return 0, err
		}
		return uint64(t.h), nil

	case scenebridge.FnMaterialSetTexture:
		mat, err := f.materialAt(i32(0))
		if err != nil {
			return 0, err
		}
		mat.slots[i32(1)] = handle.LocalID(i32(2))
		return 0, nil

	case scenebridge.FnMaterialTexture:
		mat, err := f.materialAt(i32(0))
		if err != nil {
			return 0, err
		}
		tex, ok := mat.slots[i32(1)]
		if !ok {
			tex = handle.NullLocal
		}
		return scenebridge.I32Arg(int32(tex)), nil

	case scenebridge.FnSkinJointCount:
		p := handle.Packed(i32(0))
		ct, err := f.container(p.Container())
		if err != nil {
			return 0, err
		}
		if int(p.Local()) >= len(ct.skins) {
			return 0, fmt.Errorf("testbed: no skin %d", p.Local())
		}
		return uint64(ct.skins[p.Local()]), nil

	case scenebridge.FnAnimationDuration:
		p := handle.Packed(i32(0))
		ct, err := f.container(p.Container())
		if err != nil {
			return 0, err
		}
		if int(p.Local()) >= len(ct.animations) {
			return 0, fmt.Errorf("testbed: no animation %d", p.Local())
		}
		return scenebridge.F32Arg(ct.animations[p.Local()]), nil

	case scenebridge.FnRaycastAll:
		c := handle.ContainerIndex(i32(0))
		hits := f.raycastHits[c]
		max := int(ptr(3))
		written := 0
		for _, h := range hits {
			if written >= max {
				break
			}
			if err := f.mem.WriteU32(ptr(2)+uint32(written)*4, uint32(int32(h))); err != nil {
				return 0, err
			}
			written++
		}
		return uint64(written), nil

	case scenebridge.FnHierarchyClone:
		return f.cloneHierarchy(handle.Packed(i32(0)), handle.ContainerIndex(i32(1)), ptr(2))
	}

	return 0, fmt.Errorf("testbed: unimplemented function %d", fn)
}

func (f *FakeRuntime) meshAt(local int32) (*meshData, error) {
	if local < 0 || int(local) >= len(f.meshes) {
		return nil, fmt.Errorf("testbed: no mesh %d", local)
	}
	return &f.meshes[local], nil
}

func (f *FakeRuntime) textureAt(local int32) (*textureData, error) {
	if local < 0 || int(local) >= len(f.textures) {
		return nil, fmt.Errorf("testbed: no texture %d", local)
	}
	return &f.textures[local], nil
}

func (f *FakeRuntime) materialAt(local int32) (*materialData, error) {
	if local < 0 || int(local) >= len(f.materials) {
		return nil, fmt.Errorf("testbed: no material %d", local)
	}
	return &f.materials[local], nil
}

// cloneHierarchy duplicates the subtree into dst with a constant local-ID
// delta per category, writing the three deltas (object, animation, skin) at
// deltaPtr. Container-scoped resources of the source container are copied
// wholesale.
func (f *FakeRuntime) cloneHierarchy(root handle.Packed, dstIdx handle.ContainerIndex, deltaPtr uint32) (uint64, error) {
	srcCt, srcRoot, err := f.object(root)
	if err != nil {
		return 0, err
	}
	dstCt, err := f.container(dstIdx)
	if err != nil {
		return 0, err
	}

	subtree := collectSubtree(srcCt, srcRoot)
	minLocal := subtree[0].local
	for _, o := range subtree {
		if o.local < minLocal {
			minLocal = o.local
		}
	}
	objDelta := dstCt.next - minLocal

	maxAssigned := handle.LocalID(-1)
	for _, src := range subtree {
		local := src.local + objDelta
		clone := &object{
			local:  local,
			parent: handle.NullLocal,
			name:   src.name,
			pos:    src.pos,
		}
		if !handle.IsNull(src.parent) && srcCt.objects[src.parent] != nil && inSubtree(subtree, src.parent) {
			clone.parent = src.parent + objDelta
		}
		for _, child := range src.children {
			clone.children = append(clone.children, child+objDelta)
		}
		for _, compLocal := range src.comps {
			srcComp := f.meshComps[compLocal]
			var newComp handle.LocalID
			if n := len(f.meshFree); n > 0 {
				newComp = f.meshFree[n-1]
				f.meshFree = f.meshFree[:n-1]
			} else {
				newComp = f.nextMeshComp
				f.nextMeshComp++
			}
			f.meshComps[newComp] = &meshComp{
				owner:  handle.Pack(dstIdx, local),
				mesh:   srcComp.mesh,
				active: srcComp.active,
			}
			clone.comps = append(clone.comps, newComp)
		}
		dstCt.objects[local] = clone
		if handle.IsNull(clone.parent) {
			dstCt.roots = append(dstCt.roots, local)
		}
		if local > maxAssigned {
			maxAssigned = local
		}
	}
	dstCt.next = maxAssigned + 1

	animDelta := handle.LocalID(len(dstCt.animations))
	skinDelta := handle.LocalID(len(dstCt.skins))
	dstCt.animations = append(dstCt.animations, srcCt.animations...)
	dstCt.skins = append(dstCt.skins, srcCt.skins...)

	for i, d := range []handle.LocalID{objDelta, animDelta, skinDelta} {
		if err := f.mem.WriteU32(deltaPtr+uint32(i)*4, uint32(int32(d))); err != nil {
			return 0, err
		}
	}

	newRoot := handle.Pack(dstIdx, srcRoot.local+objDelta)
	return scenebridge.I32Arg(int32(newRoot)), nil
}

func collectSubtree(ct *container, root *object) []*object {
	out := []*object{root}
	for _, child := range root.children {
		if c := ct.objects[child]; c != nil {
			out = append(out, collectSubtree(ct, c)...)
		}
	}
	return out
}

func inSubtree(subtree []*object, local handle.LocalID) bool {
	for _, o := range subtree {
		if o.local == local {
			return true
		}
	}
	return false
}

// fakeMemory is a fixed byte slice behind the Memory contract. Read hands
// out aliasing subslices, matching the wazero adapter's behavior.
type fakeMemory struct {
	buf []byte
}

func (m *fakeMemory) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.buf)) {
		return fmt.Errorf("testbed: memory access out of range (%d+%d of %d)", offset, length, len(m.buf))
	}
	return nil
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.buf[offset : offset+length : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.buf[offset], nil
}

func (m *fakeMemory) ReadU16(offset uint32) (uint16, error) {
	if err := m.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.buf[offset:]), nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.buf[offset:]), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.buf[offset:]), nil
}

func (m *fakeMemory) WriteU8(offset uint32, value uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.buf[offset] = value
	return nil
}

func (m *fakeMemory) WriteU16(offset uint32, value uint16) error {
	if err := m.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.buf[offset:], value)
	return nil
}

func (m *fakeMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.buf[offset:], value)
	return nil
}

func (m *fakeMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.buf[offset:], value)
	return nil
}

func (m *fakeMemory) readString(ptr, length uint32) (string, error) {
	b, err := m.Read(ptr, length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (m *fakeMemory) readCString(ptr uint32) (string, error) {
	for end := ptr; end < uint32(len(m.buf)); end++ {
		if m.buf[end] == 0 {
			return string(m.buf[ptr:end]), nil
		}
	}
	return "", fmt.Errorf("testbed: unterminated string at %d", ptr)
}

// bumpAllocator never reuses space; frees are only counted. Good enough for
// the arena's free-then-alloc growth discipline.
type bumpAllocator struct {
	next  uint32
	frees int
}

func (a *bumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := (a.next + align - 1) / align * align
	if uint64(ptr)+uint64(size) > memSize {
		return 0, fmt.Errorf("testbed: out of linear memory (%d bytes requested)", size)
	}
	a.next = ptr + size
	return ptr, nil
}

func (a *bumpAllocator) Free(ptr, size, align uint32) {
	a.frees++
}
