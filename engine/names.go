package engine

import scenebridge "github.com/lumekit/scenebridge"

// apiEntry describes one export of the native API surface: its symbol name
// and call shape. Pointers into linear memory travel as i32 byte offsets and
// count as ordinary params.
type apiEntry struct {
	name      string
	params    int
	hasResult bool
}

// apiTable is the fixed FuncID -> export binding. The loader resolves every
// entry up front so a missing or misshapen export fails at load time, not
// mid-frame.
var apiTable = [scenebridge.FuncCount]apiEntry{
	scenebridge.FnSceneCreate:  {"scene_create", 0, true},
	scenebridge.FnSceneDestroy: {"scene_destroy", 1, false},
	scenebridge.FnSceneLoad:    {"scene_load", 2, true},
	scenebridge.FnSceneAppend:  {"scene_append", 2, true},

	scenebridge.FnObjectCreate:      {"object_create", 2, true},
	scenebridge.FnObjectDestroy:     {"object_destroy", 1, false},
	scenebridge.FnObjectSetName:     {"object_set_name", 2, false},
	scenebridge.FnObjectGetName:     {"object_get_name", 3, true},
	scenebridge.FnObjectParent:      {"object_parent", 1, true},
	scenebridge.FnObjectChildCount:  {"object_child_count", 1, true},
	scenebridge.FnObjectChildren:    {"object_children", 3, true},
	scenebridge.FnObjectSetPosition: {"object_set_position", 2, false},
	scenebridge.FnObjectGetPosition: {"object_get_position", 2, false},

	scenebridge.FnComponentAdd:       {"component_add", 2, true},
	scenebridge.FnComponentDestroy:   {"component_destroy", 2, false},
	scenebridge.FnComponentObject:    {"component_object", 2, true},
	scenebridge.FnComponentCount:     {"component_count", 2, true},
	scenebridge.FnComponentList:      {"component_list", 4, true},
	scenebridge.FnComponentSetActive: {"component_set_active", 3, false},

	scenebridge.FnMeshComponentSetMesh: {"mesh_component_set_mesh", 2, false},
	scenebridge.FnMeshComponentMesh:    {"mesh_component_mesh", 1, true},
	scenebridge.FnMeshVertexCount:      {"mesh_vertex_count", 1, true},
	scenebridge.FnMeshIndexCount:       {"mesh_index_count", 1, true},
	scenebridge.FnMeshVertexData:       {"mesh_vertex_data", 4, true},
	scenebridge.FnTextureWidth:         {"texture_width", 1, true},
	scenebridge.FnTextureHeight:        {"texture_height", 1, true},
	scenebridge.FnMaterialSetTexture:   {"material_set_texture", 3, false},
	scenebridge.FnMaterialTexture:      {"material_texture", 2, true},
	scenebridge.FnSkinJointCount:       {"skin_joint_count", 1, true},
	scenebridge.FnAnimationDuration:    {"animation_duration", 1, true},

	scenebridge.FnRaycastAll:     {"raycast_all", 4, true},
	scenebridge.FnHierarchyClone: {"hierarchy_clone", 3, true},
}

// Allocator exports, outside the FuncID table because the arena reaches
// them through the Allocator interface rather than Call.
const (
	allocExportName = "scene_alloc"
	freeExportName  = "scene_free"
)

// ExportName returns the native symbol a FuncID binds to.
func ExportName(fn scenebridge.FuncID) string {
	if fn >= scenebridge.FuncCount {
		return ""
	}
	return apiTable[fn].name
}

// Arity returns the param count and whether the function returns a value.
func Arity(fn scenebridge.FuncID) (params int, hasResult bool) {
	if fn >= scenebridge.FuncCount {
		return 0, false
	}
	e := apiTable[fn]
	return e.params, e.hasResult
}
