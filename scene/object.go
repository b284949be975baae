package scene

import (
	"context"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
	"github.com/lumekit/scenebridge/schema"
)

// nameMax bounds object name round-trips through the arena.
const nameMax = 256

// Object is the proxy for one native scene object. Its registry is keyed by
// container index, so Handle().Manager carries the container and
// Handle().Local the object's local ID.
type Object struct {
	registry.Base
	session *Session
}

// Scene returns the owning container's wrapper.
func (o *Object) Scene() *Scene {
	return o.session.Scene(handle.ContainerIndex(o.Handle().Manager))
}

// Packed returns the object's cross-boundary handle form, or the null packed
// handle once destroyed.
func (o *Object) Packed() handle.Packed {
	h := o.Handle()
	if h.IsNull() {
		return handle.NullPacked
	}
	return handle.Pack(handle.ContainerIndex(h.Manager), h.Local)
}

// Name reads the object's name. Destroyed objects report "" (or a
// stale_handle error in strict mode).
func (o *Object) Name(ctx context.Context) (string, error) {
	if ok, err := o.Guard("object"); !ok {
		return "", err
	}
	a := o.session.arena
	if err := a.EnsureCapacity(nameMax); err != nil {
		return "", err
	}
	_, err := o.session.bridge.Call(ctx, scenebridge.FnObjectGetName,
		scenebridge.I32Arg(int32(o.Packed())),
		uint64(a.Base()),
		uint64(nameMax))
	if err != nil {
		return "", err
	}
	return a.ReadUTF8(0, nameMax)
}

// SetName writes the object's name, staged null-terminated in the arena.
func (o *Object) SetName(ctx context.Context, name string) error {
	if ok, err := o.Guard("object"); !ok {
		return err
	}
	ptr, err := o.session.arena.StageUTF8(name, 0)
	if err != nil {
		return err
	}
	_, err = o.session.bridge.Call(ctx, scenebridge.FnObjectSetName,
		scenebridge.I32Arg(int32(o.Packed())),
		uint64(ptr))
	return err
}

// Parent returns the parent object, or nil at the container root.
func (o *Object) Parent(ctx context.Context) (*Object, error) {
	if ok, err := o.Guard("object"); !ok {
		return nil, err
	}
	res, err := o.session.bridge.Call(ctx, scenebridge.FnObjectParent,
		scenebridge.I32Arg(int32(o.Packed())))
	if err != nil {
		return nil, err
	}
	return o.session.wrapObject(handle.Packed(scenebridge.I32Result(res)))
}

// ChildCount returns the number of direct children.
func (o *Object) ChildCount(ctx context.Context) (int, error) {
	if ok, err := o.Guard("object"); !ok {
		return 0, err
	}
	res, err := o.session.bridge.Call(ctx, scenebridge.FnObjectChildCount,
		scenebridge.I32Arg(int32(o.Packed())))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// Children returns the direct children, wrapped through the registry. The
// handle array travels through the arena as packed i32 values.
func (o *Object) Children(ctx context.Context) ([]*Object, error) {
	if ok, err := o.Guard("object"); !ok {
		return nil, err
	}
	packed, err := o.session.childHandles(ctx, o.Packed())
	if err != nil {
		return nil, err
	}
	out := make([]*Object, 0, len(packed))
	for _, p := range packed {
		child, err := o.session.wrapObject(p)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// childHandles fetches the raw packed child handles of one object. Split out
// from Children so destruction can walk the subtree without constructing
// proxies.
func (s *Session) childHandles(ctx context.Context, p handle.Packed) ([]handle.Packed, error) {
	res, err := s.bridge.Call(ctx, scenebridge.FnObjectChildCount, scenebridge.I32Arg(int32(p)))
	if err != nil {
		return nil, err
	}
	count := int(scenebridge.I32Result(res))
	if count == 0 {
		return nil, nil
	}

	a := s.arena
	if err := a.EnsureCapacity(uint32(count) * 4); err != nil {
		return nil, err
	}
	res, err = s.bridge.Call(ctx, scenebridge.FnObjectChildren,
		scenebridge.I32Arg(int32(p)),
		uint64(a.Base()),
		uint64(uint32(count)))
	if err != nil {
		return nil, err
	}
	written := int(scenebridge.I32Result(res))

	view := a.ViewI32()
	out := make([]handle.Packed, 0, written)
	for i := 0; i < written; i++ {
		out = append(out, handle.Packed(view.At(i)))
	}
	return out, nil
}

// Position reads the object's local position, three floats through the arena.
func (o *Object) Position(ctx context.Context) (schema.Vec3, error) {
	if ok, err := o.Guard("object"); !ok {
		return schema.Vec3{}, err
	}
	a := o.session.arena
	if err := a.EnsureCapacity(12); err != nil {
		return schema.Vec3{}, err
	}
	_, err := o.session.bridge.Call(ctx, scenebridge.FnObjectGetPosition,
		scenebridge.I32Arg(int32(o.Packed())),
		uint64(a.Base()))
	if err != nil {
		return schema.Vec3{}, err
	}
	v := a.ViewF32()
	return schema.Vec3{v.At(0), v.At(1), v.At(2)}, nil
}

// SetPosition writes the object's local position.
func (o *Object) SetPosition(ctx context.Context, pos schema.Vec3) error {
	if ok, err := o.Guard("object"); !ok {
		return err
	}
	a := o.session.arena
	if err := a.EnsureCapacity(12); err != nil {
		return err
	}
	v := a.ViewF32()
	v.Set(0, pos[0])
	v.Set(1, pos[1])
	v.Set(2, pos[2])
	_, err := o.session.bridge.Call(ctx, scenebridge.FnObjectSetPosition,
		scenebridge.I32Arg(int32(o.Packed())),
		uint64(a.Base()))
	return err
}

// AddComponent attaches a dynamic component of the given kind, copying
// schema fields from params over the kind defaults. A construction failure
// returns a Broken placeholder, not an error; validity errors (unregistered
// kind, cross-container reference in params) propagate.
func (o *Object) AddComponent(name string, params schema.Source) (registry.Proxy, error) {
	// Mutations on a destroyed object fail in both modes.
	if ok, _ := o.Guard("object"); !ok {
		return nil, errors.StaleHandle("object")
	}

	s := o.session
	k, ok := s.kinds.Kind(name)
	if !ok {
		return nil, errors.UnregisteredKind(errors.PhaseRegister, name)
	}

	if err := s.checkContainerRefs(k, params, handle.ContainerIndex(o.Handle().Manager)); err != nil {
		return nil, err
	}

	local := s.dyn.alloc(k, o.Packed())
	p, err := s.components.GetOrCreate(handle.DynamicManager, local)
	if err != nil {
		s.dyn.release(local)
		return nil, err
	}

	if dc, ok := p.(*DynamicComponent); ok && params != nil {
		if err := k.CopyFields(dc.Props, params); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// checkContainerRefs rejects params whose reference-typed fields point into
// a different container than the target object's.
func (s *Session) checkContainerRefs(k *schema.Kind, params schema.Source, dst handle.ContainerIndex) error {
	if params == nil {
		return nil
	}
	eff := k.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		if !f.Tag.IsReference() {
			continue
		}
		v, ok := params.Property(f.Name)
		if !ok {
			continue
		}
		p, ok := v.(handle.Packed)
		if !ok || p.IsNull() {
			continue
		}
		if p.Container() != dst {
			return errors.CrossContainer(errors.PhaseValidate,
				[]string{f.Name}, int32(p.Container()), int32(dst))
		}
	}
	return nil
}

// AddMeshComponent attaches a native mesh component.
func (o *Object) AddMeshComponent(ctx context.Context) (*MeshComponent, error) {
	if ok, _ := o.Guard("object"); !ok {
		return nil, errors.StaleHandle("object")
	}
	s := o.session
	res, err := s.bridge.Call(ctx, scenebridge.FnComponentAdd,
		scenebridge.I32Arg(int32(ManagerMesh)),
		scenebridge.I32Arg(int32(o.Packed())))
	if err != nil {
		return nil, err
	}
	p, err := s.components.GetOrCreate(ManagerMesh, handle.LocalID(scenebridge.I32Result(res)))
	if err != nil {
		return nil, err
	}
	return p.(*MeshComponent), nil
}

// Components returns every component attached to the object, dynamic and
// native. Broken placeholders are included so iteration stays structurally
// consistent with what was added.
func (o *Object) Components(ctx context.Context) ([]registry.Proxy, error) {
	if ok, err := o.Guard("object"); !ok {
		return nil, err
	}
	s := o.session

	var out []registry.Proxy
	for _, rec := range s.dyn.byOwner(o.Packed()) {
		if p := s.components.Lookup(handle.DynamicManager, rec.local); p != nil {
			out = append(out, p)
		}
	}

	native, err := s.nativeComponents(ctx, o.Packed(), ManagerMesh)
	if err != nil {
		return nil, err
	}
	out = append(out, native...)
	return out, nil
}

// ComponentsOf returns the object's dynamic components of one kind, skipping
// Broken placeholders.
func (o *Object) ComponentsOf(kind string) ([]*DynamicComponent, error) {
	if ok, err := o.Guard("object"); !ok {
		return nil, err
	}
	s := o.session
	var out []*DynamicComponent
	for _, rec := range s.dyn.byOwner(o.Packed()) {
		if rec.kind.Name != kind {
			continue
		}
		if dc, ok := s.components.Lookup(handle.DynamicManager, rec.local).(*DynamicComponent); ok {
			out = append(out, dc)
		}
	}
	return out, nil
}

// nativeComponents lists one manager's components on an object, wrapped.
func (s *Session) nativeComponents(ctx context.Context, obj handle.Packed, m handle.ManagerIndex) ([]registry.Proxy, error) {
	res, err := s.bridge.Call(ctx, scenebridge.FnComponentCount,
		scenebridge.I32Arg(int32(m)),
		scenebridge.I32Arg(int32(obj)))
	if err != nil {
		return nil, err
	}
	count := int(scenebridge.I32Result(res))
	if count == 0 {
		return nil, nil
	}

	a := s.arena
	if err := a.EnsureCapacity(uint32(count) * 4); err != nil {
		return nil, err
	}
	res, err = s.bridge.Call(ctx, scenebridge.FnComponentList,
		scenebridge.I32Arg(int32(m)),
		scenebridge.I32Arg(int32(obj)),
		uint64(a.Base()),
		uint64(uint32(count)))
	if err != nil {
		return nil, err
	}
	written := int(scenebridge.I32Result(res))

	view := a.ViewI32()
	locals := make([]handle.LocalID, 0, written)
	for i := 0; i < written; i++ {
		locals = append(locals, handle.LocalID(view.At(i)))
	}

	out := make([]registry.Proxy, 0, len(locals))
	for _, local := range locals {
		p, err := s.components.GetOrCreate(m, local)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Destroy removes the object and its subtree. Managed-side state is torn
// down first, depth-first: dynamic component destroy hooks run while their
// handles are still readable, then every proxy in the subtree is
// invalidated. The native side gets a single destroy call for the root.
func (o *Object) Destroy(ctx context.Context) error {
	if !o.session.objects.BeginDestroy(o) {
		return nil
	}
	s := o.session
	root := o.Packed()

	if err := s.destroySubtreeManaged(ctx, root); err != nil {
		return err
	}

	_, err := s.bridge.Call(ctx, scenebridge.FnObjectDestroy,
		scenebridge.I32Arg(int32(root)))
	return err
}

// destroySubtreeManaged invalidates all managed state under one object,
// children first. Object proxies never wrapped stay unwrapped; only the
// dynamic records force per-entity work.
func (s *Session) destroySubtreeManaged(ctx context.Context, p handle.Packed) error {
	children, err := s.childHandles(ctx, p)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.destroySubtreeManaged(ctx, child); err != nil {
			return err
		}
	}

	for _, rec := range s.dyn.byOwner(p) {
		comp := s.components.Lookup(handle.DynamicManager, rec.local)
		if dc, ok := comp.(*DynamicComponent); ok {
			if err := s.destroyDynamic(ctx, dc); err != nil {
				return err
			}
			continue
		}
		// Broken placeholder: no hook, just release the slot.
		if comp != nil {
			s.components.Invalidate(comp)
		}
		s.dyn.release(rec.local)
	}

	native, err := s.nativeComponentLocals(ctx, p, ManagerMesh)
	if err != nil {
		return err
	}
	for _, local := range native {
		if comp := s.components.Lookup(ManagerMesh, local); comp != nil {
			s.components.Invalidate(comp)
		}
	}

	if obj := s.objects.Lookup(handle.ManagerIndex(p.Container()), p.Local()); obj != nil {
		s.objects.Invalidate(obj)
	}
	return nil
}

// nativeComponentLocals is the Lookup-only sibling of nativeComponents:
// destruction must never construct proxies for components it is about to
// tear down.
func (s *Session) nativeComponentLocals(ctx context.Context, obj handle.Packed, m handle.ManagerIndex) ([]handle.LocalID, error) {
	res, err := s.bridge.Call(ctx, scenebridge.FnComponentCount,
		scenebridge.I32Arg(int32(m)),
		scenebridge.I32Arg(int32(obj)))
	if err != nil {
		return nil, err
	}
	count := int(scenebridge.I32Result(res))
	if count == 0 {
		return nil, nil
	}

	a := s.arena
	if err := a.EnsureCapacity(uint32(count) * 4); err != nil {
		return nil, err
	}
	res, err = s.bridge.Call(ctx, scenebridge.FnComponentList,
		scenebridge.I32Arg(int32(m)),
		scenebridge.I32Arg(int32(obj)),
		uint64(a.Base()),
		uint64(uint32(count)))
	if err != nil {
		return nil, err
	}
	written := int(scenebridge.I32Result(res))

	view := a.ViewI32()
	out := make([]handle.LocalID, 0, written)
	for i := 0; i < written; i++ {
		out = append(out, handle.LocalID(view.At(i)))
	}
	return out, nil
}
