// Package validation runs the fixed pre-send checklist over a scene
// snapshot. Checks run in a set order and the pipeline stops at the
// first failure; nothing after a failed check executes.
package validation

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/naming"
	"github.com/woxer/ueport/report"
	"github.com/woxer/ueport/scene"
)

// EngineClient is the slice of the remote-call client the checks need.
type EngineClient interface {
	Connect(ctx context.Context) error
	ProjectSettings(ctx context.Context) (map[string]string, error)
}

// Manager validates the scene before a send operation.
type Manager struct {
	props  *config.Properties
	scene  *scene.Scene
	unreal EngineClient

	meshObjects []*scene.Object
	rigObjects  []*scene.Object
	hairObjects []*scene.Object

	checks []func(ctx context.Context) error
}

// New precomputes the object sets the checks share and wires up the
// check order.
func New(s *scene.Scene, props *config.Properties, unreal EngineClient) *Manager {
	m := &Manager{
		props:       props,
		scene:       s,
		unreal:      unreal,
		meshObjects: s.ExportObjects(scene.TypeMesh),
		rigObjects:  s.ExportObjects(scene.TypeArmature),
		hairObjects: s.HairObjects(props.ImportGrooms),
	}
	m.checks = []func(ctx context.Context) error{
		m.checkSceneScale,
		m.checkFrameRate,
		m.checkArmatureTransforms,
		m.checkExportObjectsExist,
		m.checkLodGroups,
		m.checkProjectSettings,
		m.checkDiskFolders,
		m.checkUnrealFolders,
		m.checkUnrealAssetPaths,
		m.checkMaterials,
		m.checkLodNames,
		m.checkTextureReferences,
		m.checkObjectNames,
		m.checkMeshesForVertexGroups,
	}
	return m
}

// Run executes the checks in order and reports the first failure.
// A nil return means the scene passed every enabled check.
func (m *Manager) Run(ctx context.Context) error {
	for _, check := range m.checks {
		if err := check(ctx); err != nil {
			report.Failure(err.Error(), "")
			return err
		}
	}
	return nil
}

func (m *Manager) checkSceneScale(ctx context.Context) error {
	if m.props.ValidateSceneScale && m.scene.UnitScale != 1.0 {
		return errors.Errorf("Scene scale is not 1! Please set it to 1.")
	}
	return nil
}

func (m *Manager) checkFrameRate(ctx context.Context) error {
	if m.props.ValidateTimeUnits == config.ValidationOff {
		return nil
	}
	expected, err := strconv.ParseFloat(m.props.ValidateTimeUnits, 64)
	if err != nil {
		return errors.Errorf("Invalid frame rate setting %q.", m.props.ValidateTimeUnits)
	}
	if m.scene.FPS != expected {
		return errors.Errorf(
			"Current scene FPS is %q. Please change to %q in your render settings before continuing, "+
				"or disable this validation.",
			strconv.FormatFloat(m.scene.FPS, 'f', -1, 64), m.props.ValidateTimeUnits)
	}
	return nil
}

func (m *Manager) checkArmatureTransforms(ctx context.Context) error {
	if !m.props.ValidateArmatureTransforms {
		return nil
	}
	for _, rig := range m.rigObjects {
		if !rig.HasIdentityTransforms() {
			return errors.Errorf("Armature %q has un-applied transforms.", rig.Name)
		}
	}
	return nil
}

func (m *Manager) checkExportObjectsExist(ctx context.Context) error {
	if len(m.meshObjects) > 0 || len(m.rigObjects) > 0 || len(m.hairObjects) > 0 {
		return nil
	}
	return errors.Errorf(
		"No objects found in the %q collection! Create and populate the %q collection, "+
			"or use the create-collections operator.",
		scene.ExportCollectionName, scene.ExportCollectionName)
}

func (m *Manager) checkLodGroups(ctx context.Context) error {
	if m.props.ImportLods && m.props.ImportGrooms {
		return errors.Errorf(
			"Groom LODs are currently unsupported at this time. " +
				"Please disable either import LODs or import groom.")
	}
	return nil
}

func (m *Manager) checkProjectSettings(ctx context.Context) error {
	if !m.props.ValidateProjectSettings || !m.props.SendsToProject() {
		return nil
	}
	if m.unreal == nil {
		return errors.Errorf("Could not find an open Unreal Editor instance!")
	}
	if err := m.unreal.Connect(ctx); err != nil {
		return errors.Errorf("Could not find an open Unreal Editor instance!")
	}
	settings, err := m.unreal.ProjectSettings(ctx)
	if err != nil || settings == nil {
		return errors.Errorf("Could not get the project settings from the open unreal project")
	}
	if m.props.SourceApplication == config.SourceUE5 {
		if v := settings["EditorStartupMap"]; v != "" && v != "None" {
			return errors.Errorf(`Project setting "Editor Startup Map" must be set to "None" for UE5 imports`)
		}
		if v := settings["GameDefaultMap"]; v != "" && v != "None" {
			return errors.Errorf(`Project setting "Game Default Map" must be set to "None" for UE5 imports`)
		}
	}
	return nil
}

func (m *Manager) checkDiskFolders(ctx context.Context) error {
	if !m.props.ValidatePaths || !m.props.SendsToDisk() {
		return nil
	}
	folders := []string{
		m.props.DiskMeshFolderPath,
		m.props.DiskAnimationFolderPath,
	}
	if m.props.ImportGrooms {
		folders = append(folders, m.props.DiskGroomFolderPath)
	}
	for _, folder := range folders {
		if err := config.CheckDiskFolderPath(folder); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) checkUnrealFolders(ctx context.Context) error {
	if !m.props.ValidatePaths || !m.props.SendsToProject() {
		return nil
	}
	folders := []string{
		m.props.UnrealMeshFolderPath,
		m.props.UnrealAnimationFolderPath,
	}
	if m.props.ImportGrooms {
		folders = append(folders, m.props.UnrealGroomFolderPath)
	}
	for _, folder := range folders {
		if err := config.CheckUnrealFolderPath(folder); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) checkUnrealAssetPaths(ctx context.Context) error {
	if !m.props.ValidatePaths || !m.props.SendsToProject() {
		return nil
	}
	paths := []string{
		m.props.UnrealSkeletonAssetPath,
		m.props.UnrealPhysicsAssetPath,
		m.props.UnrealSkeletalMeshLodSettingsPath,
	}
	for _, path := range paths {
		if err := config.CheckUnrealAssetPath(path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) checkMaterials(ctx context.Context) error {
	if !m.props.ValidateMaterials {
		return nil
	}
	for _, mesh := range m.meshObjects {
		if mesh.Mesh == nil || len(mesh.Mesh.MaterialSlots) == 0 {
			continue
		}
		unused := make(map[string]bool, len(mesh.Mesh.MaterialSlots))
		for _, slot := range mesh.Mesh.MaterialSlots {
			unused[slot.Name] = true
		}
		for _, polygon := range mesh.Mesh.Polygons {
			if polygon.MaterialIndex >= len(mesh.Mesh.MaterialSlots) {
				return errors.Errorf(
					"Material index out of bounds! Object %q at polygon #%d references invalid material index #%d.",
					mesh.Name, polygon.Index, polygon.MaterialIndex)
			}
			delete(unused, mesh.Mesh.MaterialSlots[polygon.MaterialIndex].Name)
		}
		for _, slot := range mesh.Mesh.MaterialSlots {
			if unused[slot.Name] {
				return errors.Errorf("Mesh %q has a unused material %q", mesh.Name, slot.Name)
			}
		}
	}
	return nil
}

func (m *Manager) checkLodNames(ctx context.Context) error {
	if !m.props.ImportLods {
		return nil
	}
	for _, mesh := range m.meshObjects {
		matched, err := naming.MatchLod(mesh.Name, m.props.LodRegex)
		if err != nil {
			return errors.Errorf(
				"Invalid lod_regex pattern: %q. Please check your regex syntax.", m.props.LodRegex)
		}
		if !matched {
			return errors.Errorf(
				"Object %q does not follow the correct lod naming convention defined in the "+
					"import setting by the lod regex.", mesh.Name)
		}
	}
	return nil
}

func (m *Manager) checkTextureReferences(ctx context.Context) error {
	if !m.props.ValidateTextures {
		return nil
	}
	for _, mesh := range m.meshObjects {
		if mesh.Mesh == nil {
			continue
		}
		for _, slot := range mesh.Mesh.MaterialSlots {
			if slot.Material == nil {
				continue
			}
			for _, texture := range slot.Material.Textures {
				if !texture.Packed && texture.FilePath == "" {
					return errors.Errorf(
						"Texture node %q on material %q does not have a valid file path.",
						texture.NodeName, slot.Material.Name)
				}
			}
		}
	}
	return nil
}

func (m *Manager) checkObjectNames(ctx context.Context) error {
	if !m.props.ValidateObjectNames {
		return nil
	}
	var exportObjects []*scene.Object
	if m.props.ImportGrooms {
		exportObjects = append(exportObjects, m.hairObjects...)
	}
	if m.props.ImportMeshes {
		exportObjects = append(exportObjects, m.meshObjects...)
		exportObjects = append(exportObjects, m.rigObjects...)
	}

	var invalidNames []string
	for _, object := range exportObjects {
		if naming.IsReserved(object.Name) {
			return errors.Errorf("Object %q has an invalid name. Please rename it.", object.Name)
		}
		if naming.HasInvalidChars(object.Name) {
			invalidNames = append(invalidNames, strconv.Quote(object.Name))
		}
	}
	if len(invalidNames) > 0 {
		return errors.Errorf(
			"The following object(s) contain special characters or a white space in the name(s): %v "+
				`Note: the only valid special characters are "+", "-" and "_".`, invalidNames)
	}
	return nil
}

func (m *Manager) checkMeshesForVertexGroups(ctx context.Context) error {
	if !m.props.ValidateMeshesForVertexGroups {
		return nil
	}
	var missing []string
	for _, mesh := range m.meshObjects {
		for _, modifier := range mesh.Modifiers {
			if modifier.Type == scene.ModifierArmature && modifier.UseVertexGroups {
				if mesh.Mesh == nil || len(mesh.Mesh.VertexGroups) == 0 {
					missing = append(missing, mesh.Name)
				}
			}
		}
	}
	if len(missing) > 0 {
		return errors.Errorf(
			"The following object(s) %v have an armature modifier that should be assigned to "+
				"vertex groups, yet no vertex groups were found. Assign the vertices on the rig's mesh "+
				"to vertex groups that match the armature's bone names, or disable this validation.",
			missing)
	}
	return nil
}
