package schema

import (
	"go.uber.org/zap"

	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
)

// Kind is a user- or engine-defined component type: a name, a property
// schema, an optional supertype, and the constructor producing behavior
// instances. Kinds are registered once and live for the session.
type Kind struct {
	// New constructs the user behavior instance. May be nil for kinds that
	// only carry data. Failures here are isolated per entity: the registry
	// substitutes a broken placeholder instead of propagating.
	New func() (any, error)

	Name  string
	Super string

	// Inherit controls whether the effective schema includes ancestor
	// fields. Defaults to true on registration; a kind with Inherit false
	// also stops the ancestor walk of its subtypes at itself.
	Inherit bool

	Schema *Schema

	effective *Schema
	index     int
}

// Effective returns the merged schema: the ancestor chain root-to-leaf with
// leaf entries winning name collisions.
func (k *Kind) Effective() *Schema {
	if k.effective == nil {
		return New()
	}
	return k.effective
}

// Index is the kind's registration order index; dynamic components are
// tracked by it on the managed side.
func (k *Kind) Index() int { return k.index }

// RegisterOption adjusts kind registration.
type RegisterOption func(*Kind)

// WithSuper declares the kind's supertype.
func WithSuper(name string) RegisterOption {
	return func(k *Kind) { k.Super = name }
}

// WithoutInherit opts the kind out of ancestor schema merging.
func WithoutInherit() RegisterOption {
	return func(k *Kind) { k.Inherit = false }
}

// WithConstructor installs the user constructor.
func WithConstructor(fn func() (any, error)) RegisterOption {
	return func(k *Kind) { k.New = fn }
}

// Registry holds all registered kinds for one session.
type Registry struct {
	kinds map[string]*Kind
	order []*Kind
	log   *zap.Logger
}

// NewRegistry creates an empty kind registry. A nil logger defaults to nop.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		kinds: make(map[string]*Kind),
		log:   log,
	}
}

// Register declares a kind. Re-registering an existing name is tolerated:
// the first registration wins (constructor and schema both) and a schema
// mismatch is logged as a conflict. A declared supertype must already be
// registered.
func (r *Registry) Register(name string, s *Schema, opts ...RegisterOption) (*Kind, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "kind name must not be empty")
	}
	if s == nil {
		s = New()
	}

	if existing, ok := r.kinds[name]; ok {
		if !schemasMatch(existing.Schema, s) {
			r.log.Warn("kind registered twice with mismatched schema, keeping first registration",
				zap.String("kind", name))
		}
		return existing, nil
	}

	k := &Kind{Name: name, Schema: s, Inherit: true}
	for _, opt := range opts {
		opt(k)
	}

	if k.Super != "" {
		if _, ok := r.kinds[k.Super]; !ok {
			return nil, errors.NotFound(errors.PhaseRegister, "supertype", k.Super)
		}
	}

	k.effective = r.effectiveSchema(k)
	k.index = len(r.order)
	r.kinds[name] = k
	r.order = append(r.order, k)
	return k, nil
}

// effectiveSchema walks the supertype chain and merges own schemas
// root-to-leaf. The walk stops ascending at the first ancestor whose own
// inherit flag is false; that ancestor's schema is still included.
func (r *Registry) effectiveSchema(k *Kind) *Schema {
	if !k.Inherit || k.Super == "" {
		return Merge(nil, k.Schema)
	}

	chain := []*Kind{k}
	for cur := k; cur.Inherit && cur.Super != ""; {
		sup, ok := r.kinds[cur.Super]
		if !ok {
			break
		}
		chain = append(chain, sup)
		cur = sup
	}

	merged := New()
	for i := len(chain) - 1; i >= 0; i-- {
		merged = Merge(merged, chain[i].Schema)
	}
	return merged
}

func schemasMatch(a, b *Schema) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		fa, fb := a.At(i), b.At(i)
		if fa.Name != fb.Name || fa.Tag != fb.Tag || fa.Required != fb.Required {
			return false
		}
	}
	return true
}

// Kind returns the registered kind with the given name.
func (r *Registry) Kind(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// KindAt returns the kind with the given registration index.
func (r *Registry) KindAt(index int) (*Kind, bool) {
	if index < 0 || index >= len(r.order) {
		return nil, false
	}
	return r.order[index], true
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int { return len(r.order) }

// Reset drops every registration. Only used on full session teardown.
func (r *Registry) Reset() {
	r.kinds = make(map[string]*Kind)
	r.order = nil
}

// DefaultInitialize assigns every effective-schema field its cloned default
// value. Invoked right after proxy construction for dynamic components; a
// custom cloner failure propagates so the construction boundary can catch
// and isolate it.
func (k *Kind) DefaultInitialize(bag Bag) error {
	eff := k.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		v, err := cloner(f)(f.Default)
		if err != nil {
			return errors.Wrap(errors.PhaseLifecycle, errors.KindConstruction, err,
				"default-initialize field "+f.Name)
		}
		bag[f.Name] = v
	}
	return nil
}

// Validate fails with a field_missing error for any required field whose
// current value is absent (nil, false, zero, empty, or a null handle). Runs
// once, immediately before a dynamic component's first activation.
func (k *Kind) Validate(bag Bag) error {
	eff := k.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		if !f.Required {
			continue
		}
		if absent(bag[f.Name]) {
			return errors.FieldMissing(k.Name, f.Name)
		}
	}
	return nil
}

// CopyFields clones every effective-schema field present in src into dst.
// Fields absent from src keep dst's prior values; fields on src outside the
// schema are ignored. src may be a plain bag or a live component used as a
// read-only source.
func (k *Kind) CopyFields(dst Bag, src Source) error {
	if src == nil {
		return nil
	}
	eff := k.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		v, ok := src.Property(f.Name)
		if !ok {
			continue
		}
		cloned, err := cloner(f)(v)
		if err != nil {
			return errors.Wrap(errors.PhaseLifecycle, errors.KindConstruction, err,
				"copy field "+f.Name)
		}
		dst[f.Name] = cloned
	}
	return nil
}

// RetargetReferences rewrites reference-typed fields after a sub-hierarchy
// clone: each non-null handle gets its local ID shifted by the per-category
// delta and is re-packed into the destination container. Null references
// stay null.
func (k *Kind) RetargetReferences(bag Bag, dst handle.ContainerIndex, off Offsets) {
	eff := k.Effective()
	for i := 0; i < eff.Len(); i++ {
		f := eff.At(i)
		delta, ok := off.delta(f.Tag)
		if !ok {
			continue
		}
		p, ok := bag[f.Name].(handle.Packed)
		if !ok || p.IsNull() {
			continue
		}
		bag[f.Name] = handle.Pack(dst, p.Local()+delta)
	}
}

func asLocal(v any) (int32, bool) {
	switch h := v.(type) {
	case handle.Packed:
		return int32(h), true
	case handle.LocalID:
		return int32(h), true
	default:
		return 0, false
	}
}
