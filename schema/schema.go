package schema

import "github.com/lumekit/scenebridge/handle"

// Tag identifies the declared type of a property field.
type Tag uint8

const (
	TagAny Tag = iota
	TagBool
	TagInt
	TagFloat
	TagString
	TagVec2
	TagVec3
	TagVec4
	TagQuat
	TagObject
	TagAnimation
	TagSkin
	TagMesh
	TagMaterial
	TagTexture
)

var tagNames = map[Tag]string{
	TagAny:       "any",
	TagBool:      "bool",
	TagInt:       "int",
	TagFloat:     "float",
	TagString:    "string",
	TagVec2:      "vec2",
	TagVec3:      "vec3",
	TagVec4:      "vec4",
	TagQuat:      "quat",
	TagObject:    "object",
	TagAnimation: "animation",
	TagSkin:      "skin",
	TagMesh:      "mesh",
	TagMaterial:  "material",
	TagTexture:   "texture",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "unknown"
}

// IsReference reports whether values of this tag name container-scoped
// native entities and therefore need retargeting when a hierarchy is cloned
// into a different container.
func (t Tag) IsReference() bool {
	return t == TagObject || t == TagAnimation || t == TagSkin
}

// Vector value types for property storage. Arrays copy by value, so the
// built-in cloner can treat them like scalars.
type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32
	Quat [4]float32
)

// CloneFunc copies one property value. The built-in cloners never fail;
// errors from custom cloners propagate to the copy/initialize caller.
type CloneFunc func(v any) (any, error)

// Field describes one named, typed property of a kind.
type Field struct {
	Clone    CloneFunc
	Default  any
	Name     string
	Tag      Tag
	Required bool
}

// Schema is an ordered field list with name lookup. Order matters for
// inheritance merging: ancestor fields keep their positions, leaf overrides
// replace values in place.
type Schema struct {
	index  map[string]int
	fields []Field
}

// New builds a schema from fields in declaration order. A repeated name
// overrides the earlier entry in place.
func New(fields ...Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		s.put(f)
	}
	return s
}

func (s *Schema) put(f Field) {
	if i, ok := s.index[f.Name]; ok {
		s.fields[i] = f
		return
	}
	s.index[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

// Len returns the field count.
func (s *Schema) Len() int { return len(s.fields) }

// At returns the field at position i.
func (s *Schema) At(i int) Field { return s.fields[i] }

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Merge layers over on top of base: base field order is kept, same-named
// over entries replace base values in place, new over fields append. Both
// inputs are left untouched.
func Merge(base, over *Schema) *Schema {
	merged := New()
	if base != nil {
		for _, f := range base.fields {
			merged.put(f)
		}
	}
	if over != nil {
		for _, f := range over.fields {
			merged.put(f)
		}
	}
	return merged
}

// Source is anything field values can be copied from: a plain value bag or
// a live proxy acting as a read-only source.
type Source interface {
	Property(name string) (any, bool)
}

// Bag is the property storage of a dynamic component.
type Bag map[string]any

// Property implements Source.
func (b Bag) Property(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

// Offsets holds the per-category local-ID deltas applied to reference
// fields when a sub-hierarchy is cloned into a new container. The hierarchy
// clone caller computes it from what the native side reports.
type Offsets struct {
	Object    handle.LocalID
	Animation handle.LocalID
	Skin      handle.LocalID
}

func (o Offsets) delta(t Tag) (handle.LocalID, bool) {
	switch t {
	case TagObject:
		return o.Object, true
	case TagAnimation:
		return o.Animation, true
	case TagSkin:
		return o.Skin, true
	}
	return 0, false
}
