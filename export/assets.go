package export

import (
	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/naming"
	"github.com/woxer/ueport/scene"
)

// AssetKind is the unreal-side asset type an export produces.
type AssetKind string

const (
	StaticMesh   AssetKind = "StaticMesh"
	SkeletalMesh AssetKind = "SkeletalMesh"
	AnimSequence AssetKind = "AnimSequence"
	Groom        AssetKind = "Groom"
)

// Asset is one export unit: the primary object plus the LOD variants
// and collision volumes that ship in the same file.
type Asset struct {
	ID   string
	Name string
	Kind AssetKind

	Object     *scene.Object
	Lods       []*scene.Object
	Collisions []*scene.Object

	// FilePath is filled in once the asset has been written to disk.
	FilePath string
}

// MeshKind tells static from skeletal meshes: anything driven by or
// parented under an armature is skeletal.
func MeshKind(object *scene.Object) AssetKind {
	if object.ArmatureModifierObject() != nil || object.IsChildOfArmature() {
		return SkeletalMesh
	}
	return StaticMesh
}

// LodsFor lists the meshes that are LOD variants of the named asset.
func LodsFor(s *scene.Scene, assetName string, props *config.Properties) []*scene.Object {
	var lods []*scene.Object
	for _, mesh := range s.ExportObjects(scene.TypeMesh) {
		if naming.IsLodOf(assetName, mesh.Name, props.ImportLods, props.LodRegex) {
			lods = append(lods, mesh)
		}
	}
	return lods
}

// CollisionsFor lists the collision volumes of the named asset.
func CollisionsFor(s *scene.Scene, assetName string, props *config.Properties) []*scene.Object {
	var collisions []*scene.Object
	for _, mesh := range s.CollisionObjects(scene.ExportCollectionName) {
		if naming.IsCollisionOf(assetName, mesh.Name, props.LodRegex) {
			collisions = append(collisions, mesh)
		}
	}
	return collisions
}

// GroomName resolves the asset name of a curves object from the mesh
// it is bound to, falling back to the curves object's own name.
func GroomName(object *scene.Object, props *config.Properties) string {
	if surface := object.SurfaceObject(); surface != nil {
		return naming.AssetName(surface.Name, props.ImportLods, props.LodRegex)
	}
	return naming.AssetName(object.Name, props.ImportLods, props.LodRegex)
}

// Collect walks the export collection and groups its objects into
// assets: one asset per distinct mesh name (LOD variants collapse into
// their LOD0 asset), one animation asset per rig when animations are
// enabled, one groom asset per curves object.
func Collect(s *scene.Scene, props *config.Properties) []*Asset {
	var assets []*Asset
	seen := make(map[string]bool)

	if props.ImportMeshes {
		for _, mesh := range s.ExportObjects(scene.TypeMesh) {
			assetName := naming.AssetName(mesh.Name, props.ImportLods, props.LodRegex)
			if seen[assetName] {
				continue
			}
			seen[assetName] = true

			asset := &Asset{
				Name:       assetName,
				Kind:       MeshKind(mesh),
				Object:     mesh,
				Collisions: CollisionsFor(s, assetName, props),
			}
			if props.ImportLods {
				asset.Lods = LodsFor(s, assetName, props)
				for _, lod := range asset.Lods {
					if naming.LodIndex(lod.Name, props.LodRegex) == 0 {
						asset.Object = lod
					}
				}
			}
			assets = append(assets, asset)
		}
	}

	if props.ImportAnimations {
		for _, rig := range s.ExportObjects(scene.TypeArmature) {
			if len(rig.Tracks) == 0 {
				continue
			}
			assets = append(assets, &Asset{
				Name:   naming.AssetName(rig.Name, false, props.LodRegex),
				Kind:   AnimSequence,
				Object: rig,
			})
		}
	}

	for _, curves := range s.HairObjects(props.ImportGrooms) {
		assets = append(assets, &Asset{
			Name:   GroomName(curves, props),
			Kind:   Groom,
			Object: curves,
		})
	}

	return assets
}
