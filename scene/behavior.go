package scene

import "context"

// Lifecycle hooks a dynamic component behavior may implement. All hooks are
// optional: the session checks each interface separately, so a behavior
// implements only what it needs.
//
// Hook errors and panics are caught at the call boundary and logged; they
// never abort the batch the component runs in. Hooks must not call back into
// bulk marshalling operations (the arena is owned by the call in progress).

// Initializer runs once, after property validation, before Start.
type Initializer interface {
	Init(ctx context.Context, c *DynamicComponent) error
}

// Starter runs once when the component activates, after Init.
type Starter interface {
	Start(ctx context.Context, c *DynamicComponent) error
}

// Updater runs every session update while the component is active.
type Updater interface {
	Update(ctx context.Context, c *DynamicComponent, dt float32) error
}

// Destroyer runs while the component is being destroyed; the component's
// handle is still readable inside the hook.
type Destroyer interface {
	Destroy(ctx context.Context, c *DynamicComponent) error
}
