package export

import (
	"context"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/naming"
	"github.com/woxer/ueport/report"
	"github.com/woxer/ueport/scene"
	"github.com/woxer/ueport/unreal"
	"github.com/woxer/ueport/validation"
)

// Importer is the remote editor surface the send pipeline needs.
type Importer interface {
	validation.EngineClient
	ImportAsset(ctx context.Context, filePath string, options unreal.ImportOptions) error
}

// Exporter drives a full send: validate, collect assets, write each
// asset's file and import the files into the editor.
type Exporter struct {
	props  *config.Properties
	scene  *scene.Scene
	unreal Importer
}

func NewExporter(props *config.Properties, s *scene.Scene, client Importer) *Exporter {
	return &Exporter{
		props:  props,
		scene:  s,
		unreal: client,
	}
}

// TempFolder is where files land before a send_to_project import.
func TempFolder() string {
	return filepath.Join(os.TempDir(), "ueport", "data")
}

// RemoveTempFolder clears leftovers from previous sends.
func RemoveTempFolder() {
	if err := os.RemoveAll(TempFolder()); err != nil {
		log.Printf("[export] Failed to clean temp folder: %v", err)
	}
}

// Send runs the whole pipeline. Validations run first and abort the
// send on the first failure.
func (e *Exporter) Send(ctx context.Context) error {
	report.ClearError()

	if err := validation.New(e.scene, e.props, e.unreal).Run(ctx); err != nil {
		return err
	}

	assets := Collect(e.scene, e.props)
	if len(assets) == 0 {
		err := errors.New("You do not have the correct objects under the Export collection to perform the operation.")
		report.Failure(err.Error(), "")
		return err
	}

	report.Info("Sending %v asset(s) from scene %q", len(assets), e.scene.Name)

	state := e.scene.CaptureContext()
	defer e.scene.RestoreContext(state)

	queue := &Queue{}
	for _, asset := range assets {
		asset := asset
		queue.Push(asset.Name, "Exporting "+asset.Name, func(ctx context.Context) error {
			return e.exportAsset(asset)
		})
	}
	if e.props.SendsToProject() {
		for _, asset := range assets {
			asset := asset
			queue.Push(asset.Name, "Importing "+asset.Name, func(ctx context.Context) error {
				return e.importAsset(ctx, asset)
			})
		}
	}

	if err := queue.Drain(ctx); err != nil {
		report.Failure(err.Error(), "")
		return err
	}
	return nil
}

// exportAsset writes one asset to its export file and records the
// path on the asset.
func (e *Exporter) exportAsset(asset *Asset) error {
	folder, err := e.exportFolder(asset.Kind)
	if err != nil {
		return err
	}

	e.scene.DeselectAll()
	e.scene.Select(asset.Object)
	e.scene.SelectChildren(asset.Object, scene.TypeMesh, true)
	for _, lod := range asset.Lods {
		e.scene.Select(lod)
	}
	for _, collision := range asset.Collisions {
		e.scene.Select(collision)
	}
	asset.Object.MuteTracks(asset.Kind != AnimSequence)

	if asset.Kind == Groom {
		asset.FilePath = filepath.Join(folder, asset.Name+".glb")
		return e.writeGroom(asset)
	}
	asset.FilePath = filepath.Join(folder, asset.Name+".fbx")
	return e.writeMeshes(asset)
}

func (e *Exporter) writeMeshes(asset *Asset) error {
	builder := NewFBXBuilder(asset.FilePath)

	if asset.Kind == AnimSequence {
		builder.Connect(builder.AddNullObject(asset.Name), 0)
	} else if len(asset.Lods) > 0 {
		// unreal picks up LOD slots from _LODn suffixes inside one file
		groupId := builder.AddNullObject(asset.Name + "_LodGroup")
		builder.Connect(groupId, 0)
		for _, lod := range asset.Lods {
			builder.Connect(builder.AddMeshObject(lod, lod.Name), groupId)
		}
	} else {
		builder.Connect(builder.AddMeshObject(asset.Object, asset.Name), 0)
	}

	for _, collision := range asset.Collisions {
		builder.Connect(builder.AddMeshObject(collision, collision.Name), 0)
	}
	return builder.Save(asset.FilePath)
}

func (e *Exporter) writeGroom(asset *Asset) error {
	builder := NewGLTFBuilder()
	builder.AddCurvesObject(asset.Object, asset.Name)
	return builder.Save(asset.FilePath)
}

// importAsset pushes an exported file into the open project.
func (e *Exporter) importAsset(ctx context.Context, asset *Asset) error {
	gamePath := e.unrealFolder(asset.Kind)
	asset.ID = naming.AssetID(path.Join(gamePath, asset.Name))

	options := unreal.ImportOptions{
		GamePath:         gamePath,
		AssetName:        asset.Name,
		ImportMesh:       asset.Kind == StaticMesh || asset.Kind == SkeletalMesh || asset.Kind == Groom,
		ImportAnimations: asset.Kind == AnimSequence,
	}
	if asset.Kind == SkeletalMesh || asset.Kind == AnimSequence {
		options.SkeletonPath = e.props.UnrealSkeletonAssetPath
		options.PhysicsAssetPath = e.props.UnrealPhysicsAssetPath
	}
	if asset.Kind == SkeletalMesh {
		options.LodSettingsPath = e.props.UnrealSkeletalMeshLodSettingsPath
	}
	return e.unreal.ImportAsset(ctx, asset.FilePath, options)
}

// exportFolder resolves where the asset's file is written, creating
// the folder if needed.
func (e *Exporter) exportFolder(kind AssetKind) (string, error) {
	var folder string
	if e.props.SendsToDisk() {
		diskFolder := e.props.DiskMeshFolderPath
		switch kind {
		case AnimSequence:
			diskFolder = e.props.DiskAnimationFolderPath
		case Groom:
			diskFolder = e.props.DiskGroomFolderPath
		}
		folder = config.ResolveDiskPath(diskFolder)
	} else {
		folder = TempFolder()
	}
	if err := os.MkdirAll(folder, 0777); err != nil {
		return "", errors.Wrapf(err, "Failed to create export folder %q", folder)
	}
	return folder, nil
}

func (e *Exporter) unrealFolder(kind AssetKind) string {
	folder := e.props.UnrealMeshFolderPath
	switch kind {
	case AnimSequence:
		folder = e.props.UnrealAnimationFolderPath
	case Groom:
		folder = e.props.UnrealGroomFolderPath
	}
	return strings.TrimRight(folder, "/")
}
