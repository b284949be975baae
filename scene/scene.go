package scene

import (
	"context"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
	"github.com/lumekit/scenebridge/schema"
)

// Scene wraps one native container. It is not itself a registry proxy:
// containers are few, never reused densely, and their lifecycle is explicit.
type Scene struct {
	session   *Session
	index     handle.ContainerIndex
	destroyed bool
}

// Index returns the native container index.
func (sc *Scene) Index() handle.ContainerIndex { return sc.index }

// Destroyed reports whether the container was torn down.
func (sc *Scene) Destroyed() bool { return sc.destroyed }

func (sc *Scene) guard() error {
	if sc.destroyed {
		return errors.StaleHandle("scene")
	}
	return nil
}

// CreateObject creates a named object under parent; a nil parent places it
// at the container root.
func (sc *Scene) CreateObject(ctx context.Context, name string, parent *Object) (*Object, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	parentPacked := handle.NullPacked
	if parent != nil {
		if parent.Destroyed() {
			return nil, errors.StaleHandle("object")
		}
		if handle.ContainerIndex(parent.Handle().Manager) != sc.index {
			return nil, errors.CrossContainer(errors.PhaseCall, []string{"parent"},
				int32(parent.Handle().Manager), int32(sc.index))
		}
		parentPacked = parent.Packed()
	}

	s := sc.session
	res, err := s.bridge.Call(ctx, scenebridge.FnObjectCreate,
		scenebridge.I32Arg(int32(sc.index)),
		scenebridge.I32Arg(int32(parentPacked)))
	if err != nil {
		return nil, err
	}
	obj, err := s.wrapObject(handle.Packed(scenebridge.I32Result(res)))
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := obj.SetName(ctx, name); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// Object wraps a local object ID of this container. A null local yields nil.
func (sc *Scene) Object(local handle.LocalID) (*Object, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	return sc.session.wrapObject(handle.Pack(sc.index, local))
}

// Skin wraps a container-scoped skin resource.
func (sc *Scene) Skin(local handle.LocalID) (*Skin, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	p, err := sc.session.skins.GetOrCreate(handle.ManagerIndex(sc.index), local)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*Skin), nil
}

// Animation wraps a container-scoped animation resource.
func (sc *Scene) Animation(local handle.LocalID) (*Animation, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	p, err := sc.session.animations.GetOrCreate(handle.ManagerIndex(sc.index), local)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*Animation), nil
}

// Append loads a serialized asset into this container and returns the root
// of the appended subtree. The asset name travels null-terminated through
// the arena; resolution is up to the native side.
func (sc *Scene) Append(ctx context.Context, asset string) (*Object, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	s := sc.session
	ptr, err := s.arena.StageUTF8(asset, 0)
	if err != nil {
		return nil, err
	}
	res, err := s.bridge.Call(ctx, scenebridge.FnSceneAppend,
		scenebridge.I32Arg(int32(sc.index)),
		uint64(ptr))
	if err != nil {
		return nil, err
	}
	return s.wrapObject(handle.Packed(scenebridge.I32Result(res)))
}

// LoadScene loads a serialized asset into a fresh container.
func (s *Session) LoadScene(ctx context.Context, asset string) (*Scene, error) {
	ptr, err := s.arena.StageUTF8(asset, 0)
	if err != nil {
		return nil, err
	}
	res, err := s.bridge.Call(ctx, scenebridge.FnSceneLoad,
		uint64(ptr),
		uint64(uint32(len(asset))))
	if err != nil {
		return nil, err
	}
	idx := handle.ContainerIndex(scenebridge.I32Result(res))
	if idx < 0 {
		return nil, errors.NotFound(errors.PhaseLoad, "scene asset", asset)
	}
	return s.Scene(idx), nil
}

// RaycastAll casts a ray through the container and returns every hit object,
// nearest first. The six input floats are staged at the region base; the
// native side writes packed handles after them.
func (sc *Scene) RaycastAll(ctx context.Context, origin, dir schema.Vec3, maxHits int) ([]*Object, error) {
	if err := sc.guard(); err != nil {
		return nil, err
	}
	if maxHits <= 0 {
		return nil, nil
	}

	s := sc.session
	a := s.arena
	// 6 floats of input, padded to 32 bytes, then the output handle array.
	const outOffset = 32
	if err := a.EnsureCapacity(outOffset + uint32(maxHits)*4); err != nil {
		return nil, err
	}
	f := a.ViewF32()
	f.Set(0, origin[0])
	f.Set(1, origin[1])
	f.Set(2, origin[2])
	f.Set(3, dir[0])
	f.Set(4, dir[1])
	f.Set(5, dir[2])

	res, err := s.bridge.Call(ctx, scenebridge.FnRaycastAll,
		scenebridge.I32Arg(int32(sc.index)),
		uint64(a.Base()),
		uint64(a.Base()+outOffset),
		uint64(uint32(maxHits)))
	if err != nil {
		return nil, err
	}
	hits := int(scenebridge.I32Result(res))

	view := a.ViewI32()
	out := make([]*Object, 0, hits)
	for i := 0; i < hits; i++ {
		obj, err := s.wrapObject(handle.Packed(view.At(outOffset/4 + i)))
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Destroy tears down the container: every managed proxy scoped to it is
// invalidated (dynamic component destroy hooks run first), then the native
// side gets one destroy call.
func (sc *Scene) Destroy(ctx context.Context) error {
	if sc.destroyed {
		return nil
	}
	sc.destroyed = true
	s := sc.session

	// Dynamic components owned by this container's objects. Snapshot the
	// order first: destruction edits it in place.
	order := append([]handle.LocalID(nil), s.dyn.order...)
	for _, local := range order {
		rec := s.dyn.records[local]
		if rec == nil || rec.owner.Container() != sc.index {
			continue
		}
		comp := s.components.Lookup(handle.DynamicManager, rec.local)
		if dc, ok := comp.(*DynamicComponent); ok {
			if err := s.destroyDynamic(ctx, dc); err != nil {
				return err
			}
			continue
		}
		if comp != nil {
			s.components.Invalidate(comp)
		}
		s.dyn.release(rec.local)
	}

	m := handle.ManagerIndex(sc.index)

	// Native component proxies cached for this container's objects. A
	// component can only have been wrapped through its owning object's
	// proxy, so the object cache is a complete index of owners.
	var owners []handle.Packed
	s.objects.Each(m, func(p registry.Proxy) bool {
		owners = append(owners, handle.Pack(sc.index, p.Handle().Local))
		return true
	})
	for _, owner := range owners {
		locals, err := s.nativeComponentLocals(ctx, owner, ManagerMesh)
		if err != nil {
			return err
		}
		for _, local := range locals {
			if comp := s.components.Lookup(ManagerMesh, local); comp != nil {
				s.components.Invalidate(comp)
			}
		}
	}

	invalidateAll(s.objects, m)
	invalidateAll(s.skins, m)
	invalidateAll(s.animations, m)

	delete(s.scenes, sc.index)
	_, err := s.bridge.Call(ctx, scenebridge.FnSceneDestroy,
		scenebridge.I32Arg(int32(sc.index)))
	return err
}

func invalidateAll(r *registry.Registry, m handle.ManagerIndex) {
	var doomed []registry.Proxy
	r.Each(m, func(p registry.Proxy) bool {
		doomed = append(doomed, p)
		return true
	})
	for _, p := range doomed {
		r.Invalidate(p)
	}
}
