package scene_test

import (
	"context"
	stderrors "errors"
	"testing"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
	"github.com/lumekit/scenebridge/scene"
	"github.com/lumekit/scenebridge/schema"
	"github.com/lumekit/scenebridge/testbed"
)

func newTestSession(t *testing.T, opts ...scene.Option) (*scene.Session, *testbed.FakeRuntime) {
	t.Helper()
	rt := testbed.New()
	s, err := scene.NewSession(rt, opts...)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, rt
}

type spinBehavior struct {
	inits   int
	starts  int
	updates int
}

func (b *spinBehavior) Init(ctx context.Context, c *scene.DynamicComponent) error {
	b.inits++
	return nil
}

func (b *spinBehavior) Start(ctx context.Context, c *scene.DynamicComponent) error {
	b.starts++
	return nil
}

func (b *spinBehavior) Update(ctx context.Context, c *scene.DynamicComponent, dt float32) error {
	b.updates++
	return nil
}

func registerSpin(t *testing.T, s *scene.Session) {
	t.Helper()
	_, err := s.RegisterKind("spin",
		schema.New(schema.Field{Name: "speed", Tag: schema.TagFloat, Default: float32(1)}),
		schema.WithConstructor(func() (any, error) { return &spinBehavior{}, nil }))
	if err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}
}

func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	registerSpin(t, s)

	sc, err := s.CreateScene(ctx)
	if err != nil {
		t.Fatalf("CreateScene failed: %v", err)
	}

	obj, err := sc.CreateObject(ctx, "player", nil)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	name, err := obj.Name(ctx)
	if err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	if name != "player" {
		t.Fatalf("Expected name player, got %q", name)
	}

	if err := obj.SetPosition(ctx, schema.Vec3{1, 2, 3}); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	pos, err := obj.Position(ctx)
	if err != nil {
		t.Fatalf("Position failed: %v", err)
	}
	if pos != (schema.Vec3{1, 2, 3}) {
		t.Fatalf("Expected position (1,2,3), got %v", pos)
	}

	p, err := obj.AddComponent("spin", schema.Bag{"speed": float32(2.5)})
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	dc, ok := p.(*scene.DynamicComponent)
	if !ok {
		t.Fatalf("Expected DynamicComponent, got %T", p)
	}
	if v, _ := dc.Property("speed"); v != float32(2.5) {
		t.Fatalf("Expected speed 2.5, got %v", v)
	}

	if err := s.Update(ctx, 0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Update(ctx, 0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	b := dc.Behavior().(*spinBehavior)
	if b.inits != 1 || b.starts != 1 {
		t.Fatalf("Expected one init and one start, got %d/%d", b.inits, b.starts)
	}
	if b.updates != 2 {
		t.Fatalf("Expected 2 updates, got %d", b.updates)
	}
}

func TestProxyIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	sc, err := s.CreateScene(ctx)
	if err != nil {
		t.Fatalf("CreateScene failed: %v", err)
	}
	obj, err := sc.CreateObject(ctx, "a", nil)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}

	again, err := sc.Object(obj.Handle().Local)
	if err != nil {
		t.Fatalf("Object failed: %v", err)
	}
	if again != obj {
		t.Fatal("Expected identical proxy instance for the same handle")
	}
	if !registry.Equal(obj, again) {
		t.Fatal("Expected Equal for same handle")
	}

	child, err := sc.CreateObject(ctx, "b", obj)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	parent, err := child.Parent(ctx)
	if err != nil {
		t.Fatalf("Parent failed: %v", err)
	}
	if parent != obj {
		t.Fatal("Parent must wrap to the identical proxy instance")
	}

	children, err := obj.Children(ctx)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(children) != 1 || children[0] != child {
		t.Fatalf("Expected one child identical to the created proxy")
	}
}

func TestDestroyInvalidatesAndReuses(t *testing.T) {
	ctx := context.Background()
	s, rt := newTestSession(t)
	registerSpin(t, s)

	sc, err := s.CreateScene(ctx)
	if err != nil {
		t.Fatalf("CreateScene failed: %v", err)
	}
	obj, err := sc.CreateObject(ctx, "doomed", nil)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	child, err := sc.CreateObject(ctx, "kid", obj)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	oldLocal := obj.Handle().Local

	if err := obj.Destroy(ctx); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if !obj.Destroyed() || !child.Destroyed() {
		t.Fatal("Expected subtree proxies destroyed")
	}
	if !obj.Handle().IsNull() {
		t.Fatal("Destroyed proxy must hold the null handle")
	}
	if rt.ObjectCount(sc.Index()) != 0 {
		t.Fatalf("Expected empty container, got %d objects", rt.ObjectCount(sc.Index()))
	}

	// The native side reuses the freed local IDs; the wrap must be a fresh
	// proxy, never the stale one.
	fresh, err := sc.CreateObject(ctx, "fresh", nil)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	if fresh.Handle().Local != oldLocal && fresh.Handle().Local != child.Handle().Local {
		// Free list order is an implementation detail of the runtime; any
		// reused ID proves the point, a brand new one would skip it.
		t.Logf("runtime did not reuse a local ID (got %d)", fresh.Handle().Local)
	}
	if fresh == obj || fresh == child {
		t.Fatal("Reused local ID must wrap into a distinct proxy")
	}
	if registry.Equal(fresh, obj) {
		t.Fatal("Destroyed proxy must not compare equal to its successor")
	}
}

func TestDestroyRunsComponentHooks(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	destroyed := 0
	var sawHandle handle.Simple
	_, err := s.RegisterKind("watcher", schema.New(),
		schema.WithConstructor(func() (any, error) {
			return &destroyBehavior{fn: func(c *scene.DynamicComponent) {
				destroyed++
				sawHandle = c.Handle()
			}}, nil
		}))
	if err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}

	sc, _ := s.CreateScene(ctx)
	obj, _ := sc.CreateObject(ctx, "o", nil)
	p, err := obj.AddComponent("watcher", nil)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}

	if err := obj.Destroy(ctx); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if destroyed != 1 {
		t.Fatalf("Expected destroy hook once, got %d", destroyed)
	}
	if sawHandle.IsNull() {
		t.Fatal("Destroy hook must still see a readable handle")
	}
	if !p.Destroyed() {
		t.Fatal("Component proxy must be destroyed afterwards")
	}
}

type destroyBehavior struct {
	fn func(*scene.DynamicComponent)
}

func (b *destroyBehavior) Destroy(ctx context.Context, c *scene.DynamicComponent) error {
	b.fn(c)
	return nil
}

func TestRequiredFieldValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	_, err := s.RegisterKind("follow", schema.New(
		schema.Field{Name: "target", Tag: schema.TagObject, Required: true},
	))
	if err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}

	sc, _ := s.CreateScene(ctx)
	obj, _ := sc.CreateObject(ctx, "o", nil)
	if _, err := obj.AddComponent("follow", nil); err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}

	err = s.Update(ctx, 0.016)
	if err == nil {
		t.Fatal("Expected validation error for missing required field")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindFieldMissing {
		t.Fatalf("Expected field_missing error, got %v", err)
	}

	// Providing the field fixes the component on the next update.
	target, _ := sc.CreateObject(ctx, "t", nil)
	comps, err := obj.ComponentsOf("follow")
	if err != nil {
		t.Fatalf("ComponentsOf failed: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("Expected one follow component, got %d", len(comps))
	}
	if err := comps[0].SetProperty("target", target.Packed()); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if err := s.Update(ctx, 0.016); err != nil {
		t.Fatalf("Update after fix failed: %v", err)
	}
}

func TestUnregisteredKind(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	sc, _ := s.CreateScene(ctx)
	obj, _ := sc.CreateObject(ctx, "o", nil)

	_, err := obj.AddComponent("nope", nil)
	if err == nil {
		t.Fatal("Expected error for unregistered kind")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindUnregisteredKind {
		t.Fatalf("Expected unregistered_kind error, got %v", err)
	}
}

func TestCrossContainerParamRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	_, err := s.RegisterKind("follow", schema.New(
		schema.Field{Name: "target", Tag: schema.TagObject},
	))
	if err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}

	a, _ := s.CreateScene(ctx)
	b, _ := s.CreateScene(ctx)
	objA, _ := a.CreateObject(ctx, "a", nil)
	objB, _ := b.CreateObject(ctx, "b", nil)

	_, err = objA.AddComponent("follow", schema.Bag{"target": objB.Packed()})
	if err == nil {
		t.Fatal("Expected cross_container error")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindCrossContainer {
		t.Fatalf("Expected cross_container error, got %v", err)
	}
}

func TestStrictDestroyedAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("default sentinel", func(t *testing.T) {
		s, _ := newTestSession(t)
		sc, _ := s.CreateScene(ctx)
		obj, _ := sc.CreateObject(ctx, "o", nil)
		if err := obj.Destroy(ctx); err != nil {
			t.Fatalf("Destroy failed: %v", err)
		}
		name, err := obj.Name(ctx)
		if err != nil {
			t.Fatalf("Expected sentinel, got error: %v", err)
		}
		if name != "" {
			t.Fatalf("Expected empty sentinel name, got %q", name)
		}
	})

	t.Run("strict error", func(t *testing.T) {
		s, _ := newTestSession(t, scene.WithStrictDestroyedAccess())
		sc, _ := s.CreateScene(ctx)
		obj, _ := sc.CreateObject(ctx, "o", nil)
		if err := obj.Destroy(ctx); err != nil {
			t.Fatalf("Destroy failed: %v", err)
		}
		_, err := obj.Name(ctx)
		if err == nil {
			t.Fatal("Expected stale_handle error in strict mode")
		}
		var se *errors.Error
		if !stderrors.As(err, &se) || se.Kind != errors.KindStaleHandle {
			t.Fatalf("Expected stale_handle error, got %v", err)
		}
	})
}

func TestRaycastAll(t *testing.T) {
	ctx := context.Background()
	s, rt := newTestSession(t)

	sc, _ := s.CreateScene(ctx)
	a, _ := sc.CreateObject(ctx, "a", nil)
	b, _ := sc.CreateObject(ctx, "b", nil)
	rt.ProgramRaycast(sc.Index(), []handle.Packed{b.Packed(), a.Packed()})

	hits, err := sc.RaycastAll(ctx, schema.Vec3{0, 0, 0}, schema.Vec3{0, 0, 1}, 8)
	if err != nil {
		t.Fatalf("RaycastAll failed: %v", err)
	}
	if len(hits) != 2 || hits[0] != b || hits[1] != a {
		t.Fatalf("Expected hits [b a] as identical proxies, got %v", hits)
	}
}

func TestResourcesAndMeshComponent(t *testing.T) {
	ctx := context.Background()
	s, rt := newTestSession(t)

	sc, _ := s.CreateScene(ctx)
	obj, _ := sc.CreateObject(ctx, "o", nil)

	meshLocal := rt.AddMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3)
	mesh, err := s.Mesh(meshLocal)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if n, _ := mesh.VertexCount(ctx); n != 3 {
		t.Fatalf("Expected 3 vertices, got %d", n)
	}
	data, err := mesh.VertexData(ctx, 3, 3)
	if err != nil {
		t.Fatalf("VertexData failed: %v", err)
	}
	if len(data) != 3 || data[0] != 1 {
		t.Fatalf("Expected second vertex (1,0,0), got %v", data)
	}

	comp, err := obj.AddMeshComponent(ctx)
	if err != nil {
		t.Fatalf("AddMeshComponent failed: %v", err)
	}
	if err := comp.SetMesh(ctx, mesh); err != nil {
		t.Fatalf("SetMesh failed: %v", err)
	}
	got, err := comp.Mesh(ctx)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if got != mesh {
		t.Fatal("Expected identical mesh proxy back")
	}
	owner, err := comp.Object(ctx)
	if err != nil {
		t.Fatalf("Object failed: %v", err)
	}
	if owner != obj {
		t.Fatal("Expected identical owner proxy")
	}

	texLocal := rt.AddTexture(64, 32)
	tex, _ := s.Texture(texLocal)
	if w, _ := tex.Width(ctx); w != 64 {
		t.Fatalf("Expected width 64, got %d", w)
	}
	matLocal := rt.AddMaterial()
	mat, _ := s.Material(matLocal)
	if err := mat.SetTexture(ctx, 0, tex); err != nil {
		t.Fatalf("SetTexture failed: %v", err)
	}
	back, err := mat.Texture(ctx, 0)
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if back != tex {
		t.Fatal("Expected identical texture proxy back")
	}

	skinLocal := rt.AddSkin(sc.Index(), 12)
	skin, err := sc.Skin(skinLocal)
	if err != nil {
		t.Fatalf("Skin failed: %v", err)
	}
	if n, _ := skin.JointCount(ctx); n != 12 {
		t.Fatalf("Expected 12 joints, got %d", n)
	}
	animLocal := rt.AddAnimation(sc.Index(), 1.5)
	anim, err := sc.Animation(animLocal)
	if err != nil {
		t.Fatalf("Animation failed: %v", err)
	}
	if d, _ := anim.Duration(ctx); d != 1.5 {
		t.Fatalf("Expected duration 1.5, got %v", d)
	}
}

func TestSceneDestroyInvalidatesMeshComponents(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	sc, _ := s.CreateScene(ctx)
	obj, _ := sc.CreateObject(ctx, "o", nil)
	comp, err := obj.AddMeshComponent(ctx)
	if err != nil {
		t.Fatalf("AddMeshComponent failed: %v", err)
	}

	if err := sc.Destroy(ctx); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if !obj.Destroyed() {
		t.Fatal("Expected object proxy destroyed with its scene")
	}
	if !comp.Destroyed() {
		t.Fatal("Expected mesh component proxy destroyed with its scene")
	}
	if !comp.Handle().IsNull() {
		t.Fatalf("Expected null sentinel handle, got %+v", comp.Handle())
	}

	// The runtime reuses the freed component local; the wrap must be a
	// fresh proxy, never the stale one.
	sc2, _ := s.CreateScene(ctx)
	obj2, _ := sc2.CreateObject(ctx, "o2", nil)
	fresh, err := obj2.AddMeshComponent(ctx)
	if err != nil {
		t.Fatalf("AddMeshComponent failed: %v", err)
	}
	if fresh == comp {
		t.Fatal("Reused component local must wrap into a distinct proxy")
	}
	if fresh.Destroyed() {
		t.Fatal("Fresh component proxy must be live")
	}
}

func TestLoadAndAppend(t *testing.T) {
	ctx := context.Background()
	s, rt := newTestSession(t)

	rt.RegisterAsset("level", func(f *testbed.FakeRuntime, c handle.ContainerIndex) handle.LocalID {
		root, _ := f.Call(ctx, scenebridge.FnObjectCreate,
			scenebridge.I32Arg(int32(c)),
			scenebridge.I32Arg(int32(handle.NullPacked)))
		return handle.Packed(scenebridge.I32Result(root)).Local()
	})

	sc, err := s.LoadScene(ctx, "level")
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if rt.ObjectCount(sc.Index()) != 1 {
		t.Fatalf("Expected 1 object after load, got %d", rt.ObjectCount(sc.Index()))
	}

	root, err := sc.Append(ctx, "level")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if root == nil {
		t.Fatal("Expected appended root proxy")
	}
	if rt.ObjectCount(sc.Index()) != 2 {
		t.Fatalf("Expected 2 objects after append, got %d", rt.ObjectCount(sc.Index()))
	}

	if _, err := s.LoadScene(ctx, "missing"); err == nil {
		t.Fatal("Expected error loading unknown asset")
	}
}
