package schema

import (
	stderrors "errors"
	"testing"

	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
)

func TestInheritance_MergeOrder(t *testing.T) {
	r := NewRegistry(nil)

	if _, err := r.Register("parent", New(
		Field{Name: "a", Tag: TagInt, Default: 1},
	)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	child, err := r.Register("child", New(
		Field{Name: "b", Tag: TagInt, Default: 2},
	), WithSuper("parent"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	bag := Bag{}
	if err := child.DefaultInitialize(bag); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}
	if bag["a"] != 1 || bag["b"] != 2 {
		t.Fatalf("Expected a=1 b=2, got a=%v b=%v", bag["a"], bag["b"])
	}
}

func TestInheritance_LeafOverrides(t *testing.T) {
	r := NewRegistry(nil)

	r.Register("parent", New(Field{Name: "a", Tag: TagInt, Default: 1}))
	child, _ := r.Register("child", New(
		Field{Name: "a", Tag: TagInt, Default: 3},
	), WithSuper("parent"))

	bag := Bag{}
	if err := child.DefaultInitialize(bag); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}
	if bag["a"] != 3 {
		t.Fatalf("Leaf value must win, got a=%v", bag["a"])
	}
	if child.Effective().Len() != 1 {
		t.Fatalf("Override must not duplicate the field, len=%d", child.Effective().Len())
	}
}

func TestInheritance_WalkStopsAtNonInheriting(t *testing.T) {
	r := NewRegistry(nil)

	r.Register("root", New(Field{Name: "r", Tag: TagInt, Default: 10}))
	// mid opts out of inheriting, so root's fields never reach leaf.
	r.Register("mid", New(
		Field{Name: "m", Tag: TagInt, Default: 20},
	), WithSuper("root"), WithoutInherit())
	leaf, _ := r.Register("leaf", New(
		Field{Name: "l", Tag: TagInt, Default: 30},
	), WithSuper("mid"))

	bag := Bag{}
	if err := leaf.DefaultInitialize(bag); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}
	if _, ok := bag["r"]; ok {
		t.Fatal("Walk must stop at the first non-inheriting ancestor")
	}
	if bag["m"] != 20 || bag["l"] != 30 {
		t.Fatalf("Expected m=20 l=30, got m=%v l=%v", bag["m"], bag["l"])
	}
}

func TestRegister_DoubleRegisterFirstWins(t *testing.T) {
	r := NewRegistry(nil)

	first, err := r.Register("dup", New(Field{Name: "x", Tag: TagInt, Default: 1}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	second, err := r.Register("dup", New(Field{Name: "y", Tag: TagFloat, Default: 2.0}))
	if err != nil {
		t.Fatalf("Double register must be tolerated, got %v", err)
	}
	if second != first {
		t.Fatal("Second registration must return the first kind")
	}
	if _, ok := first.Effective().Field("y"); ok {
		t.Fatal("First registration's schema must be kept")
	}
	if r.Len() != 1 {
		t.Fatalf("Expected one kind, got %d", r.Len())
	}
}

func TestRegister_MissingSupertype(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Register("orphan", New(), WithSuper("nobody"))
	if err == nil {
		t.Fatal("Expected error for unregistered supertype")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindNotFound {
		t.Fatalf("Expected not_found error, got %v", err)
	}
}

func TestValidate_RequiredField(t *testing.T) {
	r := NewRegistry(nil)

	k, _ := r.Register("seeker", New(
		Field{Name: "target", Tag: TagObject, Default: handle.NullPacked, Required: true},
		Field{Name: "speed", Tag: TagFloat, Default: float32(1)},
	))

	bag := Bag{}
	if err := k.DefaultInitialize(bag); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}

	err := k.Validate(bag)
	if err == nil {
		t.Fatal("Expected validation failure for unset required field")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindFieldMissing {
		t.Fatalf("Expected field_missing error, got %v", err)
	}
	if len(se.Path) != 1 || se.Path[0] != "target" {
		t.Fatalf("Error must name the field, got path %v", se.Path)
	}
	if se.Entity != "seeker" {
		t.Fatalf("Error must name the kind, got %q", se.Entity)
	}

	bag["target"] = handle.Pack(0, 4)
	if err := k.Validate(bag); err != nil {
		t.Fatalf("Validation must pass once the field is set: %v", err)
	}
}

func TestValidate_FalsyValues(t *testing.T) {
	r := NewRegistry(nil)

	cases := []struct {
		name   string
		value  any
		absent bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"zero-int", 0, true},
		{"zero-float", float32(0), true},
		{"empty-string", "", true},
		{"null-handle", handle.NullPacked, true},
		{"empty-slice", []float32{}, true},
		{"true", true, false},
		{"nonzero", 5, false},
		{"string", "x", false},
		{"handle-zero", handle.Pack(0, 0), false},
	}

	k, _ := r.Register("falsy", New(
		Field{Name: "v", Tag: TagAny, Required: true},
	))

	for _, c := range cases {
		bag := Bag{"v": c.value}
		err := k.Validate(bag)
		if c.absent && err == nil {
			t.Fatalf("%s: expected validation failure", c.name)
		}
		if !c.absent && err != nil {
			t.Fatalf("%s: expected validation to pass, got %v", c.name, err)
		}
	}
}

func TestCopyFields_Semantics(t *testing.T) {
	r := NewRegistry(nil)

	k, _ := r.Register("mover", New(
		Field{Name: "speed", Tag: TagFloat, Default: float32(1)},
		Field{Name: "path", Tag: TagAny, Default: []float32{}},
	))

	dst := Bag{}
	if err := k.DefaultInitialize(dst); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}

	src := Bag{
		"speed":    float32(8),
		"stranger": "not in schema",
	}
	if err := k.CopyFields(dst, src); err != nil {
		t.Fatalf("CopyFields failed: %v", err)
	}

	if dst["speed"] != float32(8) {
		t.Fatalf("Expected copied speed 8, got %v", dst["speed"])
	}
	if _, ok := dst["stranger"]; ok {
		t.Fatal("Fields outside the schema must be ignored")
	}
	if got := dst["path"].([]float32); len(got) != 0 {
		t.Fatal("Fields absent from src must keep their defaults")
	}
}

func TestCopyFields_DeepClonesSlices(t *testing.T) {
	r := NewRegistry(nil)

	k, _ := r.Register("pathing", New(
		Field{Name: "waypoints", Tag: TagAny, Default: nil},
	))

	src := Bag{"waypoints": []float32{1, 2, 3}}
	dst := Bag{}
	if err := k.CopyFields(dst, src); err != nil {
		t.Fatalf("CopyFields failed: %v", err)
	}

	src["waypoints"].([]float32)[0] = 99
	if dst["waypoints"].([]float32)[0] != 1 {
		t.Fatal("Copied slice must not alias the source")
	}
}

func TestCopyFields_CustomCloner(t *testing.T) {
	r := NewRegistry(nil)

	calls := 0
	k, _ := r.Register("custom", New(
		Field{Name: "v", Tag: TagInt, Default: 1, Clone: func(v any) (any, error) {
			calls++
			return v.(int) * 2, nil
		}},
	))

	bag := Bag{}
	if err := k.DefaultInitialize(bag); err != nil {
		t.Fatalf("DefaultInitialize failed: %v", err)
	}
	if bag["v"] != 2 {
		t.Fatalf("Custom cloner must run on defaults, got %v", bag["v"])
	}
	if err := k.CopyFields(bag, Bag{"v": 10}); err != nil {
		t.Fatalf("CopyFields failed: %v", err)
	}
	if bag["v"] != 20 {
		t.Fatalf("Custom cloner must run on copies, got %v", bag["v"])
	}
	if calls != 2 {
		t.Fatalf("Expected 2 cloner calls, got %d", calls)
	}
}

func TestCopyFields_CustomClonerErrorPropagates(t *testing.T) {
	r := NewRegistry(nil)

	boom := stderrors.New("bad value")
	k, _ := r.Register("fragile", New(
		Field{Name: "v", Tag: TagAny, Clone: func(v any) (any, error) {
			return nil, boom
		}},
	))

	err := k.CopyFields(Bag{}, Bag{"v": 1})
	if err == nil || !stderrors.Is(err, boom) {
		t.Fatalf("Custom cloner error must propagate, got %v", err)
	}
}

func TestRetargetReferences(t *testing.T) {
	r := NewRegistry(nil)

	k, _ := r.Register("rig", New(
		Field{Name: "target", Tag: TagObject, Default: handle.NullPacked},
		Field{Name: "clip", Tag: TagAnimation, Default: handle.NullPacked},
		Field{Name: "skin", Tag: TagSkin, Default: handle.NullPacked},
		Field{Name: "speed", Tag: TagFloat, Default: float32(1)},
	))

	bag := Bag{
		"target": handle.Pack(1, 10),
		"clip":   handle.Pack(1, 3),
		"skin":   handle.NullPacked,
		"speed":  float32(2),
	}

	k.RetargetReferences(bag, 2, Offsets{Object: 100, Animation: 5, Skin: 7})

	if got := bag["target"].(handle.Packed); got != handle.Pack(2, 110) {
		t.Fatalf("Object reference not retargeted, got %d", got)
	}
	if got := bag["clip"].(handle.Packed); got != handle.Pack(2, 8) {
		t.Fatalf("Animation reference not retargeted, got %d", got)
	}
	if got := bag["skin"].(handle.Packed); !got.IsNull() {
		t.Fatal("Null references must stay null")
	}
	if bag["speed"] != float32(2) {
		t.Fatal("Non-reference fields must be untouched")
	}
}

func TestKindIndex(t *testing.T) {
	r := NewRegistry(nil)

	a, _ := r.Register("a", New())
	b, _ := r.Register("b", New())

	if a.Index() != 0 || b.Index() != 1 {
		t.Fatalf("Expected registration order indexes, got %d and %d", a.Index(), b.Index())
	}
	if got, ok := r.KindAt(1); !ok || got != b {
		t.Fatal("KindAt must return the kind by index")
	}
}
