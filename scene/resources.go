package scene

import (
	"context"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/handle"
	"github.com/lumekit/scenebridge/registry"
)

// Mesh wraps a global mesh resource.
type Mesh struct {
	registry.Base
	session *Session
}

// Mesh wraps a global mesh resource local ID. A null local yields nil.
func (s *Session) Mesh(local handle.LocalID) (*Mesh, error) {
	p, err := s.resources.GetOrCreate(resourceMesh, local)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*Mesh), nil
}

// Texture wraps a global texture resource local ID.
func (s *Session) Texture(local handle.LocalID) (*Texture, error) {
	p, err := s.resources.GetOrCreate(resourceTexture, local)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*Texture), nil
}

// Material wraps a global material resource local ID.
func (s *Session) Material(local handle.LocalID) (*Material, error) {
	p, err := s.resources.GetOrCreate(resourceMaterial, local)
	if err != nil || p == nil {
		return nil, err
	}
	return p.(*Material), nil
}

// VertexCount returns the mesh's vertex count.
func (m *Mesh) VertexCount(ctx context.Context) (int, error) {
	if ok, err := m.Guard("mesh"); !ok {
		return 0, err
	}
	res, err := m.session.bridge.Call(ctx, scenebridge.FnMeshVertexCount,
		scenebridge.I32Arg(int32(m.Handle().Local)))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// IndexCount returns the mesh's index count.
func (m *Mesh) IndexCount(ctx context.Context) (int, error) {
	if ok, err := m.Guard("mesh"); !ok {
		return 0, err
	}
	res, err := m.session.bridge.Call(ctx, scenebridge.FnMeshIndexCount,
		scenebridge.I32Arg(int32(m.Handle().Local)))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// VertexData copies count floats of vertex data starting at element first,
// marshalled in bulk through the arena.
func (m *Mesh) VertexData(ctx context.Context, first, count int) ([]float32, error) {
	if ok, err := m.Guard("mesh"); !ok {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	s := m.session
	a := s.arena
	if err := a.EnsureCapacity(uint32(count) * 4); err != nil {
		return nil, err
	}
	res, err := s.bridge.Call(ctx, scenebridge.FnMeshVertexData,
		scenebridge.I32Arg(int32(m.Handle().Local)),
		uint64(a.Base()),
		uint64(uint32(first)),
		uint64(uint32(count)))
	if err != nil {
		return nil, err
	}
	written := int(scenebridge.I32Result(res))

	view := a.ViewF32()
	out := make([]float32, written)
	for i := range out {
		out[i] = view.At(i)
	}
	return out, nil
}

// Texture wraps a global texture resource.
type Texture struct {
	registry.Base
	session *Session
}

// Width returns the texture width in pixels.
func (t *Texture) Width(ctx context.Context) (int, error) {
	if ok, err := t.Guard("texture"); !ok {
		return 0, err
	}
	res, err := t.session.bridge.Call(ctx, scenebridge.FnTextureWidth,
		scenebridge.I32Arg(int32(t.Handle().Local)))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// Height returns the texture height in pixels.
func (t *Texture) Height(ctx context.Context) (int, error) {
	if ok, err := t.Guard("texture"); !ok {
		return 0, err
	}
	res, err := t.session.bridge.Call(ctx, scenebridge.FnTextureHeight,
		scenebridge.I32Arg(int32(t.Handle().Local)))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// Material wraps a global material resource.
type Material struct {
	registry.Base
	session *Session
}

// SetTexture binds a texture to one of the material's slots.
func (m *Material) SetTexture(ctx context.Context, slot int, t *Texture) error {
	if ok, err := m.Guard("material"); !ok {
		return err
	}
	texLocal := handle.NullLocal
	if t != nil {
		texLocal = t.Handle().Local
	}
	_, err := m.session.bridge.Call(ctx, scenebridge.FnMaterialSetTexture,
		scenebridge.I32Arg(int32(m.Handle().Local)),
		scenebridge.I32Arg(int32(slot)),
		scenebridge.I32Arg(int32(texLocal)))
	return err
}

// Texture returns the texture bound to one slot, or nil when unbound.
func (m *Material) Texture(ctx context.Context, slot int) (*Texture, error) {
	if ok, err := m.Guard("material"); !ok {
		return nil, err
	}
	res, err := m.session.bridge.Call(ctx, scenebridge.FnMaterialTexture,
		scenebridge.I32Arg(int32(m.Handle().Local)),
		scenebridge.I32Arg(int32(slot)))
	if err != nil {
		return nil, err
	}
	return m.session.Texture(handle.LocalID(scenebridge.I32Result(res)))
}

// Skin wraps a container-scoped skin resource. Handle().Manager carries the
// owning container; using the skin with entities of another container is a
// cross_container validity error.
type Skin struct {
	registry.Base
	session *Session
}

// Container returns the owning container index.
func (sk *Skin) Container() handle.ContainerIndex {
	return handle.ContainerIndex(sk.Handle().Manager)
}

// Packed returns the skin's cross-boundary handle form.
func (sk *Skin) Packed() handle.Packed {
	h := sk.Handle()
	if h.IsNull() {
		return handle.NullPacked
	}
	return handle.Pack(handle.ContainerIndex(h.Manager), h.Local)
}

// JointCount returns the number of joints in the skin.
func (sk *Skin) JointCount(ctx context.Context) (int, error) {
	if ok, err := sk.Guard("skin"); !ok {
		return 0, err
	}
	res, err := sk.session.bridge.Call(ctx, scenebridge.FnSkinJointCount,
		scenebridge.I32Arg(int32(sk.Packed())))
	if err != nil {
		return 0, err
	}
	return int(scenebridge.I32Result(res)), nil
}

// Animation wraps a container-scoped animation resource.
type Animation struct {
	registry.Base
	session *Session
}

// Container returns the owning container index.
func (an *Animation) Container() handle.ContainerIndex {
	return handle.ContainerIndex(an.Handle().Manager)
}

// Packed returns the animation's cross-boundary handle form.
func (an *Animation) Packed() handle.Packed {
	h := an.Handle()
	if h.IsNull() {
		return handle.NullPacked
	}
	return handle.Pack(handle.ContainerIndex(h.Manager), h.Local)
}

// Duration returns the clip length in seconds.
func (an *Animation) Duration(ctx context.Context) (float32, error) {
	if ok, err := an.Guard("animation"); !ok {
		return 0, err
	}
	res, err := an.session.bridge.Call(ctx, scenebridge.FnAnimationDuration,
		scenebridge.I32Arg(int32(an.Packed())))
	if err != nil {
		return 0, err
	}
	return scenebridge.F32Result(res), nil
}
