package scene

import (
	"context"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/schema"
)

// CloneHierarchy clones the subtree rooted at root into dst. The native side
// copies objects, native components and container-scoped resources, and
// reports the per-category local-ID deltas; the managed side then rebuilds
// the dynamic components of the subtree, copying their property bags and
// retargeting reference-typed fields into the destination container.
//
// Reference fields pointing outside the cloned root's container cannot be
// retargeted and fail the clone with a cross_container error.
func (s *Session) CloneHierarchy(ctx context.Context, root *Object, dst *Scene) (*Object, error) {
	if root == nil || root.Destroyed() {
		return nil, errors.StaleHandle("object")
	}
	if err := dst.guard(); err != nil {
		return nil, err
	}
	srcContainer := handle.ContainerIndex(root.Handle().Manager)

	a := s.arena
	if err := a.EnsureCapacity(12); err != nil {
		return nil, err
	}
	res, err := s.bridge.Call(ctx, scenebridge.FnHierarchyClone,
		scenebridge.I32Arg(int32(root.Packed())),
		scenebridge.I32Arg(int32(dst.index)),
		uint64(a.Base()))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseClone, errors.KindInvalidData, err, "native clone")
	}
	newRoot := handle.Packed(scenebridge.I32Result(res))

	// Read the deltas before anything else touches the arena.
	view := a.ViewI32()
	off := schema.Offsets{
		Object:    handle.LocalID(view.At(0)),
		Animation: handle.LocalID(view.At(1)),
		Skin:      handle.LocalID(view.At(2)),
	}

	sources, err := s.subtreeHandles(ctx, root.Packed())
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		if err := s.cloneComponents(src, dst, off, srcContainer); err != nil {
			return nil, err
		}
	}

	return s.wrapObject(newRoot)
}

// subtreeHandles collects the subtree's packed handles pre-order, root
// included.
func (s *Session) subtreeHandles(ctx context.Context, root handle.Packed) ([]handle.Packed, error) {
	out := []handle.Packed{root}
	children, err := s.childHandles(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := s.subtreeHandles(ctx, child)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// cloneComponents rebuilds one source object's dynamic components on its
// clone. Broken placeholders are not cloned: their construction already
// failed once and carries no state worth copying.
func (s *Session) cloneComponents(src handle.Packed, dst *Scene, off schema.Offsets, srcContainer handle.ContainerIndex) error {
	records := s.dyn.byOwner(src)
	if len(records) == 0 {
		return nil
	}

	cloned := handle.Pack(dst.index, src.Local()+off.Object)
	dstObj, err := s.wrapObject(cloned)
	if err != nil {
		return err
	}

	for _, rec := range records {
		srcComp, ok := s.components.Lookup(handle.DynamicManager, rec.local).(*DynamicComponent)
		if !ok {
			continue
		}
		if err := checkCloneRefs(srcComp, srcContainer); err != nil {
			return err
		}

		p, err := dstObj.AddComponent(rec.kind.Name, nil)
		if err != nil {
			return err
		}
		dc, ok := p.(*DynamicComponent)
		if !ok {
			continue // construction failed again, placeholder stays
		}
		if err := rec.kind.CopyFields(dc.Props, srcComp); err != nil {
			return err
		}
		rec.kind.RetargetReferences(dc.Props, dst.index, off)
	}
	return nil
}

// checkCloneRefs rejects reference fields that escape the cloned container:
// the delta table only describes entities the native clone duplicated.
func checkCloneRefs(c *DynamicComponent, srcContainer handle.ContainerIndex) error {
	eff := c.kind.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		if !f.Tag.IsReference() {
			continue
		}
		p, ok := c.Props[f.Name].(handle.Packed)
		if !ok || p.IsNull() {
			continue
		}
		if p.Container() != srcContainer {
			return errors.CrossContainer(errors.PhaseClone,
				[]string{f.Name}, int32(p.Container()), int32(srcContainer))
		}
	}
	return nil
}
