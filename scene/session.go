package scene

import (
	"context"

	"go.uber.org/zap"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/arena"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
	"github.com/lumekit/scenebridge/schema"
)

// Native component manager indexes. Index 0 is the reserved dynamic manager
// (see handle.DynamicManager); native pools follow.
const (
	ManagerMesh handle.ManagerIndex = iota + 1
)

// Internal manager indexes for the global resource registries. Resources
// share the registry machinery but never cross into the component index
// space.
const (
	resourceMesh handle.ManagerIndex = iota
	resourceTexture
	resourceMaterial
)

// Session owns all managed-side state bound to one loaded runtime: the
// scratch arena, the per-category handle registries, the kind registry and
// the dynamic component records. Sessions are single-threaded; every
// operation runs to completion before the next starts.
type Session struct {
	bridge     scenebridge.Bridge
	arena      *arena.Arena
	objects    *registry.Registry // slot per container index
	components *registry.Registry // slot per manager index
	resources  *registry.Registry // mesh/texture/material, global
	skins      *registry.Registry // slot per container index
	animations *registry.Registry // slot per container index
	kinds      *schema.Registry
	dyn        *dynamicState
	scenes     map[handle.ContainerIndex]*Scene
	log        *zap.Logger
}

type sessionConfig struct {
	log    *zap.Logger
	strict bool
}

// Option adjusts session construction.
type Option func(*sessionConfig)

// WithLogger installs a logger; lifecycle-hook failures and registration
// conflicts are reported through it.
func WithLogger(l *zap.Logger) Option {
	return func(c *sessionConfig) { c.log = l }
}

// WithStrictDestroyedAccess makes accessors on destroyed proxies fail with
// a stale_handle error instead of returning sentinel values.
func WithStrictDestroyedAccess() Option {
	return func(c *sessionConfig) { c.strict = true }
}

// NewSession binds the managed side to a loaded runtime.
func NewSession(bridge scenebridge.Bridge, opts ...Option) (*Session, error) {
	if bridge == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "bridge must not be nil")
	}

	cfg := sessionConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		bridge: bridge,
		arena:  arena.New(bridge.Memory(), bridge.Allocator()),
		log:    cfg.log,
		scenes: make(map[handle.ContainerIndex]*Scene),
		dyn:    newDynamicState(),
	}
	s.objects = registry.New(cfg.log)
	s.components = registry.New(cfg.log)
	s.resources = registry.New(cfg.log)
	s.skins = registry.New(cfg.log)
	s.animations = registry.New(cfg.log)
	if cfg.strict {
		for _, r := range s.registries() {
			r.SetStrict(true)
		}
	}
	s.kinds = schema.NewRegistry(cfg.log)

	s.objects.SetFallback(func(h handle.Simple) (registry.Proxy, error) {
		return &Object{session: s}, nil
	})
	s.skins.SetFallback(func(h handle.Simple) (registry.Proxy, error) {
		return &Skin{session: s}, nil
	})
	s.animations.SetFallback(func(h handle.Simple) (registry.Proxy, error) {
		return &Animation{session: s}, nil
	})
	s.resources.RegisterManager(resourceMesh, func(h handle.Simple) (registry.Proxy, error) {
		return &Mesh{session: s}, nil
	})
	s.resources.RegisterManager(resourceTexture, func(h handle.Simple) (registry.Proxy, error) {
		return &Texture{session: s}, nil
	})
	s.resources.RegisterManager(resourceMaterial, func(h handle.Simple) (registry.Proxy, error) {
		return &Material{session: s}, nil
	})
	s.components.RegisterManager(ManagerMesh, func(h handle.Simple) (registry.Proxy, error) {
		return &MeshComponent{session: s}, nil
	})
	s.components.RegisterManager(handle.DynamicManager, s.constructDynamic)

	return s, nil
}

func (s *Session) registries() []*registry.Registry {
	return []*registry.Registry{s.objects, s.components, s.resources, s.skins, s.animations}
}

// Arena returns the session's scratch arena. Exposed for facade-level bulk
// operations; see the arena package for the re-entrancy discipline.
func (s *Session) Arena() *arena.Arena { return s.arena }

// Kinds returns the session's kind registry.
func (s *Session) Kinds() *schema.Registry { return s.kinds }

// RegisterKind declares a dynamic component kind with its property schema.
func (s *Session) RegisterKind(name string, sc *schema.Schema, opts ...schema.RegisterOption) (*schema.Kind, error) {
	return s.kinds.Register(name, sc, opts...)
}

// CreateScene asks the runtime for a fresh container and wraps it.
func (s *Session) CreateScene(ctx context.Context) (*Scene, error) {
	res, err := s.bridge.Call(ctx, scenebridge.FnSceneCreate)
	if err != nil {
		return nil, err
	}
	idx := handle.ContainerIndex(scenebridge.I32Result(res))
	sc := &Scene{session: s, index: idx}
	s.scenes[idx] = sc
	return sc, nil
}

// Scene returns the wrapper for a container index, creating one on first
// sight of a handle from that container.
func (s *Session) Scene(idx handle.ContainerIndex) *Scene {
	if sc, ok := s.scenes[idx]; ok {
		return sc
	}
	sc := &Scene{session: s, index: idx}
	s.scenes[idx] = sc
	return sc
}

// wrapObject turns a packed handle returned by a native call back into the
// stable object proxy. Null handles wrap to nil.
func (s *Session) wrapObject(p handle.Packed) (*Object, error) {
	if p.IsNull() {
		return nil, nil
	}
	prox, err := s.objects.GetOrCreate(handle.ManagerIndex(p.Container()), p.Local())
	if err != nil {
		return nil, err
	}
	return prox.(*Object), nil
}

// Update drives dynamic components: pending ones are validated and
// activated (init, then start), active ones get their update hook. Hook
// failures are logged and isolated per component; a validation failure is a
// programmer error and propagates after the remaining batch has run.
func (s *Session) Update(ctx context.Context, dt float32) error {
	var firstValidation error

	for _, local := range s.dyn.pending() {
		rec := s.dyn.records[local]
		if rec == nil {
			continue
		}
		p := s.components.Lookup(handle.DynamicManager, local)
		dc, ok := p.(*DynamicComponent)
		if !ok {
			rec.activated = true // broken placeholder, nothing to run
			continue
		}
		if err := s.activate(ctx, dc, rec); err != nil {
			if firstValidation == nil {
				firstValidation = err
			}
		}
	}

	for _, local := range s.dyn.active() {
		p := s.components.Lookup(handle.DynamicManager, local)
		dc, ok := p.(*DynamicComponent)
		if !ok {
			continue
		}
		if up, ok := dc.behavior.(Updater); ok {
			s.runHook(ctx, dc, "update", func() error {
				return up.Update(ctx, dc, dt)
			})
		}
	}

	return firstValidation
}

// activate runs the one-time validation plus the init and start hooks.
func (s *Session) activate(ctx context.Context, dc *DynamicComponent, rec *dynRecord) error {
	if !rec.validated {
		if err := dc.kind.Validate(dc.Props); err != nil {
			return err
		}
		rec.validated = true
	}

	if in, ok := dc.behavior.(Initializer); ok {
		s.runHook(ctx, dc, "init", func() error {
			return in.Init(ctx, dc)
		})
	}
	if st, ok := dc.behavior.(Starter); ok {
		s.runHook(ctx, dc, "start", func() error {
			return st.Start(ctx, dc)
		})
	}
	rec.activated = true
	return nil
}

// runHook is the lifecycle-hook failure boundary: errors and panics are
// converted to a log entry and never abort the surrounding batch.
func (s *Session) runHook(ctx context.Context, dc *DynamicComponent, hook string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("component hook panicked",
				zap.String("kind", dc.Kind()),
				zap.String("hook", hook),
				zap.Any("panic", rec))
		}
	}()
	if err := fn(); err != nil {
		s.log.Error("component hook failed",
			zap.String("kind", dc.Kind()),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

// Reset tears down all managed-side caches without running destroy hooks.
// Used when the native runtime is reloaded: the native side is assumed gone
// already. Registered kinds survive a reset.
func (s *Session) Reset() {
	for _, r := range s.registries() {
		r.Reset()
	}
	s.dyn = newDynamicState()
	s.scenes = make(map[handle.ContainerIndex]*Scene)
}

// Close is the full session teardown: Reset plus dropping kind
// registrations. The underlying runtime is owned by the caller and closed
// separately.
func (s *Session) Close() {
	s.Reset()
	s.kinds.Reset()
}
