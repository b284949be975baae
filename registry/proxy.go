package registry

import (
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
)

// State is the proxy lifecycle state. DestroyPending exists only transiently
// while the destroy call itself runs: the user destroy hook still sees a
// valid handle, then invalidation completes. There is no way back from
// Destroyed.
type State uint8

const (
	StateActive State = iota
	StateDestroyPending
	StateDestroyed
)

// Proxy is the managed-side flyweight for one native handle. Concrete
// proxies embed Base; exactly one live Proxy exists per live handle.
type Proxy interface {
	Handle() handle.Simple
	State() State
	Destroyed() bool

	base() *Base
}

// Base carries the handle and lifecycle state every proxy shares. Embed it
// as the first field of a concrete proxy type.
type Base struct {
	reg   *Registry
	h     handle.Simple
	state State
}

// Handle returns the proxy's native handle, or the null sentinel once
// destroyed.
func (b *Base) Handle() handle.Simple { return b.h }

// State returns the lifecycle state.
func (b *Base) State() State { return b.state }

// Destroyed reports whether the proxy has been invalidated.
func (b *Base) Destroyed() bool { return b.state == StateDestroyed }

func (b *Base) base() *Base { return b }

// Guard is the accessor-boundary check for destroyed proxies. It returns
// (true, nil) for a live proxy. For a destroyed one it returns an error in
// strict mode and (false, nil) otherwise, in which case the accessor must
// return its sentinel value.
func (b *Base) Guard(entity string) (bool, error) {
	if b.state != StateDestroyed {
		return true, nil
	}
	if b.reg != nil && b.reg.strict {
		return false, errors.StaleHandle(entity)
	}
	return false, nil
}

// Equal reports whether two proxies wrap the same (manager, local) pair,
// independent of object identity. Destroyed proxies are never equal to
// anything, including themselves.
func Equal(a, b Proxy) bool {
	if a == nil || b == nil {
		return false
	}
	ha, hb := a.Handle(), b.Handle()
	return ha == hb && !ha.IsNull()
}

// Broken is the inert placeholder substituted when a user constructor fails.
// It keeps object iteration structurally consistent: any-type queries still
// see the slot, kind-filtered queries skip it.
type Broken struct {
	Base
	Kind string
}

// IsBroken reports whether p is a placeholder for a failed construction.
func IsBroken(p Proxy) bool {
	_, ok := p.(*Broken)
	return ok
}
