// Package scene models a snapshot of the content tool's scene graph:
// a collection hierarchy of objects carrying mesh, armature or curves
// data. Snapshots are loaded from glTF files exported by the content
// tool and queried by the validation and export pipelines.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ObjectType discriminates what data an object carries.
type ObjectType string

const (
	TypeMesh     ObjectType = "MESH"
	TypeArmature ObjectType = "ARMATURE"
	TypeCurves   ObjectType = "CURVES"
	TypeEmpty    ObjectType = "EMPTY"
)

// ModifierType is the kind of a modifier attached to an object.
type ModifierType string

const (
	ModifierArmature      ModifierType = "ARMATURE"
	ModifierSurfaceDeform ModifierType = "SURFACE_DEFORM"
)

// Modifier links an object to another object that deforms it.
type Modifier struct {
	Type            ModifierType
	Name            string
	Object          *Object // armature driving an ARMATURE modifier
	Target          *Object // mesh a SURFACE_DEFORM modifier binds to
	UseVertexGroups bool
}

// Texture is an image reference on a material.
type Texture struct {
	NodeName string
	FilePath string
	Packed   bool
}

// Material as referenced from mesh material slots.
type Material struct {
	Name     string
	Textures []Texture
}

// MaterialSlot binds a material to a mesh by slot index.
type MaterialSlot struct {
	Name     string
	Material *Material
}

// Polygon is one face of a mesh. Vertices index into Mesh.Vertices.
type Polygon struct {
	Index         int
	MaterialIndex int
	Vertices      []int
}

// Mesh holds the geometry of a mesh object.
type Mesh struct {
	Vertices      []mgl32.Vec3
	Normals       []mgl32.Vec3
	UVs           []mgl32.Vec2
	Polygons      []Polygon
	MaterialSlots []MaterialSlot
	VertexGroups  []string
}

// Bone of an armature, local to its parent.
type Bone struct {
	Name   string
	Parent int // -1 for roots
	Matrix mgl32.Mat4
}

// Armature is a named bone hierarchy.
type Armature struct {
	Bones []Bone
}

// Curves is groom data: splines of control points bound to a surface.
type Curves struct {
	Splines [][]mgl32.Vec3
}

// AnimationTrack is a named strip of keyed frames on an armature.
type AnimationTrack struct {
	Name       string
	FrameStart int
	FrameEnd   int
	Muted      bool
}

// Object is a node of the scene graph.
type Object struct {
	Name     string
	Type     ObjectType
	Parent   *Object
	Children []*Object

	Mesh     *Mesh
	Armature *Armature
	Curves   *Curves

	Modifiers []*Modifier
	Tracks    []*AnimationTrack

	MatrixLocal mgl32.Mat4
	Visible     bool
	Selected    bool
}

// Collection groups objects, possibly nested.
type Collection struct {
	Name     string
	Objects  []*Object
	Children []*Collection
}

// Scene is the root of a snapshot.
type Scene struct {
	Name         string
	Root         *Collection
	Objects      []*Object
	Active       *Object
	UnitScale    float64
	FPS          float64
	CurrentFrame int
}

// NewScene returns an empty scene with host defaults: meters at scale
// one, 24 fps, an empty root collection.
func NewScene(name string) *Scene {
	return &Scene{
		Name:      name,
		Root:      &Collection{Name: "Scene Collection"},
		UnitScale: 1.0,
		FPS:       24,
	}
}

// ArmatureModifierObject returns the armature object driving the
// object's armature modifier, or nil.
func (o *Object) ArmatureModifierObject() *Object {
	for _, modifier := range o.Modifiers {
		if modifier.Type == ModifierArmature && modifier.Object != nil {
			return modifier.Object
		}
	}
	return nil
}

// IsChildOfArmature reports whether the object's parent is an armature.
func (o *Object) IsChildOfArmature() bool {
	return o.Parent != nil && o.Parent.Type == TypeArmature
}

// SurfaceObject resolves the mesh a curves object is bound to, either
// through a surface-deform modifier or through its parent. Nil when
// the curves float free.
func (o *Object) SurfaceObject() *Object {
	for _, modifier := range o.Modifiers {
		if modifier.Type == ModifierSurfaceDeform && modifier.Target != nil &&
			modifier.Target.Type == TypeMesh {
			return modifier.Target
		}
	}
	if o.Parent != nil && o.Parent.Type == TypeMesh {
		return o.Parent
	}
	return nil
}

const transformTolerance = 0.001

// HasIdentityTransforms reports whether the object's local transform
// is identity within tolerance: no rotation, uniform unit scale, zero
// translation.
func (o *Object) HasIdentityTransforms() bool {
	m := o.MatrixLocal

	scale := mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
	for i := 0; i < 3; i++ {
		if math.Abs(float64(scale[i])-1.0) > transformTolerance {
			return false
		}
		if scale[i] == 0 {
			return false
		}
	}

	rotation := mgl32.Mat3FromCols(
		m.Col(0).Vec3().Mul(1/scale[0]),
		m.Col(1).Vec3().Mul(1/scale[1]),
		m.Col(2).Vec3().Mul(1/scale[2]),
	)
	if !rotation.ApproxEqualThreshold(mgl32.Ident3(), transformTolerance) {
		return false
	}

	translation := m.Col(3).Vec3()
	for i := 0; i < 3; i++ {
		if math.Abs(float64(translation[i])) > transformTolerance {
			return false
		}
	}
	return true
}

// MuteTracks mutes or unmutes every animation track on the object.
func (o *Object) MuteTracks(mute bool) {
	for _, track := range o.Tracks {
		track.Muted = mute
	}
}
