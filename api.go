package scenebridge

// FuncID indexes the fixed native API surface. The engine package resolves
// each ID to an exported function of the loaded runtime module; the testbed
// dispatches on it directly.
type FuncID uint32

const (
	// Scene containers.
	FnSceneCreate FuncID = iota
	FnSceneDestroy
	FnSceneLoad
	FnSceneAppend

	// Scene objects. Object arguments are packed handles (container<<22|local).
	FnObjectCreate
	FnObjectDestroy
	FnObjectSetName
	FnObjectGetName
	FnObjectParent
	FnObjectChildCount
	FnObjectChildren
	FnObjectSetPosition
	FnObjectGetPosition

	// Native components, addressed as (manager, local).
	FnComponentAdd
	FnComponentDestroy
	FnComponentObject
	FnComponentCount
	FnComponentList
	FnComponentSetActive

	// Mesh components and resources.
	FnMeshComponentSetMesh
	FnMeshComponentMesh
	FnMeshVertexCount
	FnMeshIndexCount
	FnMeshVertexData
	FnTextureWidth
	FnTextureHeight
	FnMaterialSetTexture
	FnMaterialTexture
	FnSkinJointCount
	FnAnimationDuration

	// Spatial queries and hierarchy cloning.
	FnRaycastAll
	FnHierarchyClone

	// FuncCount is the size of the API surface; not a callable ID.
	FuncCount
)
