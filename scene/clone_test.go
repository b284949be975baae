package scene_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/lumekit/scenebridge/errors"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/scene"
	"github.com/lumekit/scenebridge/schema"
)

func TestCloneHierarchyRetargetsReferences(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if _, err := s.RegisterKind("follow", schema.New(
		schema.Field{Name: "target", Tag: schema.TagObject},
		schema.Field{Name: "speed", Tag: schema.TagFloat, Default: float32(1)},
	)); err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}

	src, _ := s.CreateScene(ctx)
	root, err := src.CreateObject(ctx, "root", nil)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	child, err := src.CreateObject(ctx, "child", root)
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	p, err := child.AddComponent("follow", schema.Bag{
		"target": root.Packed(),
		"speed":  float32(3),
	})
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	srcComp := p.(*scene.DynamicComponent)

	// Make the destination container non-empty so the clone deltas are
	// non-zero.
	dst, _ := s.CreateScene(ctx)
	if _, err := dst.CreateObject(ctx, "filler", nil); err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}

	newRoot, err := s.CloneHierarchy(ctx, root, dst)
	if err != nil {
		t.Fatalf("CloneHierarchy failed: %v", err)
	}
	if newRoot == nil || handle.ContainerIndex(newRoot.Handle().Manager) != dst.Index() {
		t.Fatal("Expected cloned root in destination container")
	}
	if name, _ := newRoot.Name(ctx); name != "root" {
		t.Fatalf("Expected cloned name root, got %q", name)
	}

	kids, err := newRoot.Children(ctx)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(kids) != 1 {
		t.Fatalf("Expected one cloned child, got %d", len(kids))
	}

	comps, err := kids[0].ComponentsOf("follow")
	if err != nil {
		t.Fatalf("ComponentsOf failed: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("Expected one cloned component, got %d", len(comps))
	}
	clone := comps[0]
	if clone == srcComp {
		t.Fatal("Clone must be a distinct component instance")
	}

	// Non-reference fields copy, reference fields retarget into the
	// destination container pointing at the cloned root.
	if v, _ := clone.Property("speed"); v != float32(3) {
		t.Fatalf("Expected copied speed 3, got %v", v)
	}
	target, ok := clone.Property("target")
	if !ok {
		t.Fatal("Expected target property on clone")
	}
	if target.(handle.Packed) != newRoot.Packed() {
		t.Fatalf("Expected target retargeted to cloned root %v, got %v", newRoot.Packed(), target)
	}

	// Source component is untouched.
	if v, _ := srcComp.Property("target"); v.(handle.Packed) != root.Packed() {
		t.Fatal("Source component must keep its original reference")
	}
}

func TestCloneRejectsForeignReferences(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if _, err := s.RegisterKind("follow", schema.New(
		schema.Field{Name: "target", Tag: schema.TagObject},
	)); err != nil {
		t.Fatalf("RegisterKind failed: %v", err)
	}

	src, _ := s.CreateScene(ctx)
	other, _ := s.CreateScene(ctx)
	root, _ := src.CreateObject(ctx, "root", nil)
	foreign, _ := other.CreateObject(ctx, "foreign", nil)

	comps, err := root.AddComponent("follow", nil)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	// Cross-container reference sneaked in after the add-time check.
	if err := comps.(*scene.DynamicComponent).SetProperty("target", foreign.Packed()); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	dst, _ := s.CreateScene(ctx)
	_, err = s.CloneHierarchy(ctx, root, dst)
	if err == nil {
		t.Fatal("Expected cross_container error for foreign reference")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Kind != errors.KindCrossContainer {
		t.Fatalf("Expected cross_container error, got %v", err)
	}
}

func TestCloneDestroyedRoot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	src, _ := s.CreateScene(ctx)
	dst, _ := s.CreateScene(ctx)
	root, _ := src.CreateObject(ctx, "root", nil)
	if err := root.Destroy(ctx); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	if _, err := s.CloneHierarchy(ctx, root, dst); err == nil {
		t.Fatal("Expected error cloning a destroyed root")
	}
}
