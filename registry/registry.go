package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
)

// Constructor builds the concrete proxy for a freshly wrapped handle. A
// returned validity error (unregistered kind) propagates to the caller;
// any other error or panic is caught and replaced by a Broken placeholder.
type Constructor func(h handle.Simple) (Proxy, error)

// Registry is the flyweight cache mapping handles to stable proxy
// instances, one slot per manager (or container) index.
//
// Native local IDs are densely reused after destruction, so cache entries
// are keyed (manager, local) and cleared synchronously at destroy time. A
// stale entry surviving past destruction would hand out a proxy aliasing a
// future, unrelated entity once the native side reuses the ID.
type Registry struct {
	slots    map[handle.ManagerIndex]map[handle.LocalID]Proxy
	ctors    map[handle.ManagerIndex]Constructor
	fallback Constructor
	log      *zap.Logger
	strict   bool
}

// New creates an empty registry. A nil logger defaults to a nop logger.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		slots: make(map[handle.ManagerIndex]map[handle.LocalID]Proxy),
		ctors: make(map[handle.ManagerIndex]Constructor),
		log:   log,
	}
}

// SetStrict toggles strict destroyed-access mode: accessors on destroyed
// proxies fail with a stale_handle error instead of returning sentinels.
func (r *Registry) SetStrict(on bool) { r.strict = on }

// Strict reports whether strict destroyed-access mode is on.
func (r *Registry) Strict() bool { return r.strict }

// RegisterManager installs the constructor used to wrap handles of one
// manager index.
func (r *Registry) RegisterManager(m handle.ManagerIndex, ctor Constructor) {
	r.ctors[m] = ctor
}

// SetFallback installs the constructor used for manager indexes without
// their own registration. Registries keyed by container index (scene
// objects, container-scoped resources) use this: every container wraps the
// same proxy type.
func (r *Registry) SetFallback(ctor Constructor) {
	r.fallback = ctor
}

// GetOrCreate returns the live proxy for (m, local), constructing and
// caching one on first wrap. Repeated calls for the same live handle return
// the identical instance. A null local yields (nil, nil).
func (r *Registry) GetOrCreate(m handle.ManagerIndex, local handle.LocalID) (Proxy, error) {
	if handle.IsNull(local) {
		return nil, nil
	}

	if slot := r.slots[m]; slot != nil {
		if p, ok := slot[local]; ok {
			return p, nil
		}
	}

	ctor, ok := r.ctors[m]
	if !ok {
		ctor = r.fallback
	}
	if ctor == nil {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnregisteredKind).
			Detail("no constructor registered for manager %d", m).
			Build()
	}

	h := handle.Simple{Manager: m, Local: local}
	p, err := construct(ctor, h)
	if err != nil {
		// Validity errors propagate: the caller asked for something that
		// was never registered. User-code failures become a broken
		// placeholder so the rest of the system keeps functioning.
		if ve, ok := err.(*errors.Error); ok && ve.Kind == errors.KindUnregisteredKind {
			return nil, ve
		}
		broken := &Broken{}
		if ve, ok := err.(*errors.Error); ok {
			broken.Kind = ve.Entity
		}
		r.log.Warn("proxy construction failed, substituting broken placeholder",
			zap.Int32("manager", int32(m)),
			zap.Int32("local", int32(local)),
			zap.Error(err))
		p = broken
	}

	b := p.base()
	b.reg = r
	b.h = h
	b.state = StateActive

	slot := r.slots[m]
	if slot == nil {
		slot = make(map[handle.LocalID]Proxy)
		r.slots[m] = slot
	}
	slot[local] = p
	return p, nil
}

func construct(ctor Constructor, h handle.Simple) (p Proxy, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p = nil
			err = fmt.Errorf("constructor panic: %v", rec)
		}
	}()
	return ctor(h)
}

// Lookup is a pure cache read: it returns the live proxy for (m, local) or
// nil, never constructing. Destruction callbacks use it to avoid recursive
// construction.
func (r *Registry) Lookup(m handle.ManagerIndex, local handle.LocalID) Proxy {
	if handle.IsNull(local) {
		return nil
	}
	slot := r.slots[m]
	if slot == nil {
		return nil
	}
	return slot[local]
}

// BeginDestroy moves a live proxy into the transient DestroyPending state,
// under which its handle remains readable for destroy hooks. It returns
// false if the proxy is already pending or destroyed.
func (r *Registry) BeginDestroy(p Proxy) bool {
	b := p.base()
	if b.state != StateActive {
		return false
	}
	b.state = StateDestroyPending
	return true
}

// Invalidate completes destruction: the handle is cleared to the null
// sentinel and the cache slot is evicted, so a future native reuse of the
// raw local ID wraps into a new, distinct proxy. Idempotent.
func (r *Registry) Invalidate(p Proxy) {
	b := p.base()
	if b.state == StateDestroyed {
		return
	}
	h := b.h
	b.state = StateDestroyed
	b.h = handle.NullSimple

	if slot := r.slots[h.Manager]; slot != nil {
		if slot[h.Local] == p {
			delete(slot, h.Local)
		}
	}
}

// Reset clears every cache slot without running per-entity destroy hooks.
// Used when the whole native runtime is torn down: the native side is
// assumed gone already. Cached proxies are left in the destroyed state.
func (r *Registry) Reset() {
	for _, slot := range r.slots {
		for _, p := range slot {
			b := p.base()
			b.state = StateDestroyed
			b.h = handle.NullSimple
		}
	}
	r.slots = make(map[handle.ManagerIndex]map[handle.LocalID]Proxy)
}

// Len returns the number of live cached proxies across all managers.
func (r *Registry) Len() int {
	n := 0
	for _, slot := range r.slots {
		n += len(slot)
	}
	return n
}

// Each iterates over live proxies of one manager. Iteration order is
// unspecified.
func (r *Registry) Each(m handle.ManagerIndex, fn func(Proxy) bool) {
	for _, p := range r.slots[m] {
		if !fn(p) {
			return
		}
	}
}
