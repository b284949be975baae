package scene

import (
	"context"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
	"github.com/lumekit/scenebridge/schema"
)

// DynamicComponent is a script-defined component: no native storage, a
// property bag shaped by its kind's effective schema, and an optional user
// behavior driven by the session update loop.
type DynamicComponent struct {
	registry.Base
	Props    schema.Bag
	session  *Session
	kind     *schema.Kind
	owner    handle.Packed
	behavior any
}

// Kind returns the component's registered kind name.
func (c *DynamicComponent) Kind() string { return c.kind.Name }

// Behavior returns the user behavior instance, or nil for data-only kinds.
func (c *DynamicComponent) Behavior() any { return c.behavior }

// Object returns the owning object's proxy.
func (c *DynamicComponent) Object() (*Object, error) {
	if ok, err := c.Guard("component " + c.kind.Name); !ok {
		return nil, err
	}
	return c.session.wrapObject(c.owner)
}

// Property implements schema.Source, so a live component can feed CopyFields
// directly.
func (c *DynamicComponent) Property(name string) (any, bool) {
	v, ok := c.Props[name]
	return v, ok
}

// SetProperty assigns a property. Fields outside the effective schema are
// rejected.
func (c *DynamicComponent) SetProperty(name string, v any) error {
	if ok, err := c.Guard("component " + c.kind.Name); !ok {
		if err != nil {
			return err
		}
		return nil
	}
	if _, ok := c.kind.Effective().Field(name); !ok {
		return errors.NotFound(errors.PhaseValidate, "property", name)
	}
	c.Props[name] = v
	return nil
}

// Destroy removes the component: the destroy hook runs while the handle is
// still readable, then the proxy is invalidated and the local ID released
// for reuse.
func (c *DynamicComponent) Destroy(ctx context.Context) error {
	return c.session.destroyDynamic(ctx, c)
}

func (s *Session) destroyDynamic(ctx context.Context, c *DynamicComponent) error {
	if !s.components.BeginDestroy(c) {
		return nil
	}
	if d, ok := c.behavior.(Destroyer); ok {
		s.runHook(ctx, c, "destroy", func() error {
			return d.Destroy(ctx, c)
		})
	}
	local := c.Handle().Local
	s.components.Invalidate(c)
	s.dyn.release(local)
	return nil
}

// constructDynamic is the dynamic-manager constructor: it reads the record
// staged by AddComponent, builds the behavior instance and default-
// initializes the property bag. Failures become construction errors the
// registry turns into a Broken placeholder.
func (s *Session) constructDynamic(h handle.Simple) (registry.Proxy, error) {
	rec := s.dyn.records[h.Local]
	if rec == nil {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnregisteredKind).
			Detail("dynamic component %d has no staged kind", h.Local).
			Build()
	}

	var behavior any
	if rec.kind.New != nil {
		b, err := rec.kind.New()
		if err != nil {
			return nil, errors.Construction(rec.kind.Name, "constructor", err)
		}
		behavior = b
	}

	c := &DynamicComponent{
		session:  s,
		kind:     rec.kind,
		owner:    rec.owner,
		behavior: behavior,
		Props:    make(schema.Bag, rec.kind.Effective().Len()),
	}
	if err := rec.kind.DefaultInitialize(c.Props); err != nil {
		return nil, errors.Construction(rec.kind.Name, "default-initialize", err)
	}
	return c, nil
}

// dynRecord is the managed-side bookkeeping of one dynamic component slot.
// It exists even when construction produced a Broken placeholder, keeping
// the slot visible to any-type queries.
type dynRecord struct {
	kind      *schema.Kind
	owner     handle.Packed
	local     handle.LocalID
	activated bool
	validated bool
}

// dynamicState allocates local IDs for dynamic components. IDs are densely
// reused after release, mirroring the native side's free-list discipline, so
// the registry invalidation contract gets exercised on both kinds of
// manager.
type dynamicState struct {
	records map[handle.LocalID]*dynRecord
	order   []handle.LocalID
	free    []handle.LocalID
	next    handle.LocalID
}

func newDynamicState() *dynamicState {
	return &dynamicState{records: make(map[handle.LocalID]*dynRecord)}
}

func (d *dynamicState) alloc(kind *schema.Kind, owner handle.Packed) handle.LocalID {
	var local handle.LocalID
	if n := len(d.free); n > 0 {
		local = d.free[n-1]
		d.free = d.free[:n-1]
	} else {
		local = d.next
		d.next++
	}
	d.records[local] = &dynRecord{kind: kind, owner: owner, local: local}
	d.order = append(d.order, local)
	return local
}

func (d *dynamicState) release(local handle.LocalID) {
	if _, ok := d.records[local]; !ok {
		return
	}
	delete(d.records, local)
	d.free = append(d.free, local)
	for i, l := range d.order {
		if l == local {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// pending returns locals awaiting first activation, in creation order.
func (d *dynamicState) pending() []handle.LocalID {
	var out []handle.LocalID
	for _, local := range d.order {
		if rec := d.records[local]; rec != nil && !rec.activated {
			out = append(out, local)
		}
	}
	return out
}

// active returns activated locals, in creation order.
func (d *dynamicState) active() []handle.LocalID {
	var out []handle.LocalID
	for _, local := range d.order {
		if rec := d.records[local]; rec != nil && rec.activated {
			out = append(out, local)
		}
	}
	return out
}

// byOwner returns the records owned by one object, in creation order.
func (d *dynamicState) byOwner(owner handle.Packed) []*dynRecord {
	var out []*dynRecord
	for _, local := range d.order {
		if rec := d.records[local]; rec != nil && rec.owner == owner {
			out = append(out, rec)
		}
	}
	return out
}

// MeshComponent is the facade over the native mesh component pool.
type MeshComponent struct {
	registry.Base
	session *Session
}

// SetMesh binds a mesh resource to the component.
func (c *MeshComponent) SetMesh(ctx context.Context, m *Mesh) error {
	if ok, err := c.Guard("mesh component"); !ok {
		return err
	}
	meshLocal := handle.NullLocal
	if m != nil {
		meshLocal = m.Handle().Local
	}
	_, err := c.session.bridge.Call(ctx, scenebridge.FnMeshComponentSetMesh,
		scenebridge.I32Arg(int32(c.Handle().Local)),
		scenebridge.I32Arg(int32(meshLocal)))
	return err
}

// Mesh returns the bound mesh resource, or nil when none is set.
func (c *MeshComponent) Mesh(ctx context.Context) (*Mesh, error) {
	if ok, err := c.Guard("mesh component"); !ok {
		return nil, err
	}
	res, err := c.session.bridge.Call(ctx, scenebridge.FnMeshComponentMesh,
		scenebridge.I32Arg(int32(c.Handle().Local)))
	if err != nil {
		return nil, err
	}
	return c.session.Mesh(handle.LocalID(scenebridge.I32Result(res)))
}

// SetActive toggles the component on the native side.
func (c *MeshComponent) SetActive(ctx context.Context, active bool) error {
	if ok, err := c.Guard("mesh component"); !ok {
		return err
	}
	var flag int32
	if active {
		flag = 1
	}
	_, err := c.session.bridge.Call(ctx, scenebridge.FnComponentSetActive,
		scenebridge.I32Arg(int32(c.Handle().Manager)),
		scenebridge.I32Arg(int32(c.Handle().Local)),
		scenebridge.I32Arg(flag))
	return err
}

// Object returns the owning object's proxy.
func (c *MeshComponent) Object(ctx context.Context) (*Object, error) {
	if ok, err := c.Guard("mesh component"); !ok {
		return nil, err
	}
	res, err := c.session.bridge.Call(ctx, scenebridge.FnComponentObject,
		scenebridge.I32Arg(int32(c.Handle().Manager)),
		scenebridge.I32Arg(int32(c.Handle().Local)))
	if err != nil {
		return nil, err
	}
	return c.session.wrapObject(handle.Packed(scenebridge.I32Result(res)))
}

// Destroy removes the component natively and invalidates the proxy.
func (c *MeshComponent) Destroy(ctx context.Context) error {
	if !c.session.components.BeginDestroy(c) {
		return nil
	}
	h := c.Handle()
	_, err := c.session.bridge.Call(ctx, scenebridge.FnComponentDestroy,
		scenebridge.I32Arg(int32(h.Manager)),
		scenebridge.I32Arg(int32(h.Local)))
	c.session.components.Invalidate(c)
	return err
}
