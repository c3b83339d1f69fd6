// Package config holds the runtime properties that drive every branch
// of the pipeline: where exported files go, which asset kinds to send,
// the LOD naming pattern and the validation toggles. Property sets can
// be saved to and restored from named YAML templates on disk.
package config

import "os"

// PathMode selects where exported assets end up.
type PathMode string

const (
	// SendToProject exports to a temp folder and imports into the
	// open unreal project over the remote connection.
	SendToProject PathMode = "send_to_project"
	// SendToDisk only writes files to the configured disk folders.
	SendToDisk PathMode = "send_to_disk"
	// SendToDiskThenProject writes to the disk folders and imports
	// those files into the project.
	SendToDiskThenProject PathMode = "send_to_disk_then_project"
)

// SourceApplication is the unreal editor generation receiving imports.
type SourceApplication string

const (
	SourceUE4 SourceApplication = "ue4"
	SourceUE5 SourceApplication = "ue5"
)

// ValidationOff disables the frame rate check when assigned to
// Properties.ValidateTimeUnits.
const ValidationOff = "off"

// Properties is the full property set of the tool. Zero values are not
// useful; start from Default.
type Properties struct {
	PathMode          PathMode          `yaml:"path_mode"`
	SourceApplication SourceApplication `yaml:"source_application"`

	ImportMeshes     bool   `yaml:"import_meshes"`
	ImportLods       bool   `yaml:"import_lods"`
	ImportGrooms     bool   `yaml:"import_grooms"`
	ImportAnimations bool   `yaml:"import_animations"`
	LodRegex         string `yaml:"lod_regex"`

	UnrealMeshFolderPath              string `yaml:"unreal_mesh_folder_path"`
	UnrealAnimationFolderPath         string `yaml:"unreal_animation_folder_path"`
	UnrealGroomFolderPath             string `yaml:"unreal_groom_folder_path"`
	UnrealSkeletonAssetPath           string `yaml:"unreal_skeleton_asset_path"`
	UnrealPhysicsAssetPath            string `yaml:"unreal_physics_asset_path"`
	UnrealSkeletalMeshLodSettingsPath string `yaml:"unreal_skeletal_mesh_lod_settings_path"`

	DiskMeshFolderPath      string `yaml:"disk_mesh_folder_path"`
	DiskAnimationFolderPath string `yaml:"disk_animation_folder_path"`
	DiskGroomFolderPath     string `yaml:"disk_groom_folder_path"`

	ValidateSceneScale            bool   `yaml:"validate_scene_scale"`
	ValidateTimeUnits             string `yaml:"validate_time_units"`
	ValidateArmatureTransforms    bool   `yaml:"validate_armature_transforms"`
	ValidateMaterials             bool   `yaml:"validate_materials"`
	ValidateTextures              bool   `yaml:"validate_textures"`
	ValidateObjectNames           bool   `yaml:"validate_object_names"`
	ValidatePaths                 bool   `yaml:"validate_paths"`
	ValidateProjectSettings       bool   `yaml:"validate_project_settings"`
	ValidateMeshesForVertexGroups bool   `yaml:"validate_meshes_for_vertex_groups"`

	UnrealAddr string `yaml:"unreal_addr"`
}

// Default returns the property set the tool starts with.
func Default() *Properties {
	return &Properties{
		PathMode:          SendToProject,
		SourceApplication: SourceUE5,

		ImportMeshes:     true,
		ImportLods:       false,
		ImportGrooms:     false,
		ImportAnimations: true,
		LodRegex:         `(?i)(_LOD\d)`,

		UnrealMeshFolderPath:      "/Game/untitled_category/untitled_asset/",
		UnrealAnimationFolderPath: "/Game/untitled_category/untitled_asset/animations/",
		UnrealGroomFolderPath:     "/Game/untitled_category/untitled_asset/grooms/",

		ValidateSceneScale:            true,
		ValidateTimeUnits:             ValidationOff,
		ValidateArmatureTransforms:    false,
		ValidateMaterials:             true,
		ValidateTextures:              true,
		ValidateObjectNames:           true,
		ValidatePaths:                 true,
		ValidateProjectSettings:       true,
		ValidateMeshesForVertexGroups: true,

		UnrealAddr: "127.0.0.1:9998",
	}
}

// SendsToProject reports whether the current path mode imports assets
// into the open unreal project.
func (p *Properties) SendsToProject() bool {
	return p.PathMode == SendToProject || p.PathMode == SendToDiskThenProject
}

// SendsToDisk reports whether the current path mode writes files to the
// configured disk folders.
func (p *Properties) SendsToDisk() bool {
	return p.PathMode == SendToDisk || p.PathMode == SendToDiskThenProject
}

// DevModeEnv forces failures to surface as panics with stack traces
// instead of user-facing messages.
const DevModeEnv = "UEPORT_DEV"

func DevMode() bool {
	return os.Getenv(DevModeEnv) != ""
}
