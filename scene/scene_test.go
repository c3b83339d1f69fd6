package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

func buildTestScene() *Scene {
	s := NewScene("test")
	s.CreateCollections()
	export := s.Collection(ExportCollectionName)

	s.AddObject(export, &Object{Name: "Chair", Type: TypeMesh, Visible: true, MatrixLocal: mgl32.Ident4()})
	s.AddObject(export, &Object{Name: "Bench", Type: TypeMesh, Visible: true, MatrixLocal: mgl32.Ident4()})
	s.AddObject(export, &Object{Name: "Hidden", Type: TypeMesh, Visible: false, MatrixLocal: mgl32.Ident4()})
	s.AddObject(export, &Object{Name: "UBX_Chair_01", Type: TypeMesh, Visible: true, MatrixLocal: mgl32.Ident4()})
	s.AddObject(export, &Object{Name: "Rig", Type: TypeArmature, Visible: true, MatrixLocal: mgl32.Ident4()})
	s.AddObject(s.Root, &Object{Name: "Outside", Type: TypeMesh, Visible: true, MatrixLocal: mgl32.Ident4()})
	return s
}

func TestFromCollection(t *testing.T) {
	s := buildTestScene()

	meshes := s.ExportObjects(TypeMesh)
	if len(meshes) != 2 {
		t.Fatalf("ExportObjects(mesh) returned %d objects; expected 2", len(meshes))
	}
	// sorted by name, hidden and collision-prefixed objects excluded
	if meshes[0].Name != "Bench" || meshes[1].Name != "Chair" {
		t.Errorf("unexpected discovery order: %q, %q", meshes[0].Name, meshes[1].Name)
	}

	rigs := s.ExportObjects(TypeArmature)
	if len(rigs) != 1 || rigs[0].Name != "Rig" {
		t.Errorf("expected single rig, got %v", rigs)
	}

	collisions := s.CollisionObjects(ExportCollectionName)
	if len(collisions) != 1 || collisions[0].Name != "UBX_Chair_01" {
		t.Errorf("expected the collision mesh, got %v", collisions)
	}
}

func TestHairObjectsGate(t *testing.T) {
	s := buildTestScene()
	export := s.Collection(ExportCollectionName)
	s.AddObject(export, &Object{Name: "Fur", Type: TypeCurves, Visible: true})

	if objects := s.HairObjects(false); objects != nil {
		t.Errorf("groom import disabled should return nil, got %v", objects)
	}
	if objects := s.HairObjects(true); len(objects) != 1 || objects[0].Name != "Fur" {
		t.Errorf("expected the curves object, got %v", objects)
	}
}

func TestCreateCollectionsIdempotent(t *testing.T) {
	s := NewScene("test")
	if created := s.CreateCollections(); len(created) != 1 || created[0] != ExportCollectionName {
		t.Errorf("first bootstrap should create %q, got %v", ExportCollectionName, created)
	}
	if created := s.CreateCollections(); created != nil {
		t.Errorf("second bootstrap should create nothing, got %v", created)
	}
}

func TestParentCollection(t *testing.T) {
	s := buildTestScene()
	export := s.Collection(ExportCollectionName)

	if parent := s.ParentCollection(export.Objects[0]); parent == nil || parent.Name != ExportCollectionName {
		t.Errorf("ParentCollection=%v; expected Export", parent)
	}
	outside := s.Objects[len(s.Objects)-1]
	if parent := s.ParentCollection(outside); parent != nil {
		t.Errorf("root-collection object should have no parent collection, got %v", parent)
	}
}

func TestMeshesUsingArmature(t *testing.T) {
	s := buildTestScene()
	rig := s.ExportObjects(TypeArmature)[0]
	chair := s.ExportObjects(TypeMesh)[1]
	chair.Modifiers = append(chair.Modifiers, &Modifier{Type: ModifierArmature, Object: rig, UseVertexGroups: true})

	meshes := s.MeshesUsingArmature(rig)
	if len(meshes) != 1 || meshes[0] != chair {
		t.Errorf("expected Chair to use the rig, got %v", meshes)
	}
}

func TestContextRestore(t *testing.T) {
	s := buildTestScene()
	meshes := s.ExportObjects(TypeMesh)
	s.Select(meshes[0])
	s.CurrentFrame = 42

	ctx := s.CaptureContext()

	s.Select(meshes[1])
	meshes[0].Visible = false
	s.CurrentFrame = 7

	s.RestoreContext(ctx)

	if !meshes[0].Selected || meshes[1].Selected {
		t.Errorf("selection not restored")
	}
	if !meshes[0].Visible {
		t.Errorf("visibility not restored")
	}
	if s.Active != meshes[0] {
		t.Errorf("active object not restored")
	}
	if s.CurrentFrame != 42 {
		t.Errorf("frame not restored: %d", s.CurrentFrame)
	}
}

func TestHasIdentityTransforms(t *testing.T) {
	object := &Object{MatrixLocal: mgl32.Ident4()}
	if !object.HasIdentityTransforms() {
		t.Errorf("identity matrix should pass")
	}

	object.MatrixLocal = mgl32.Translate3D(0.0005, 0, 0)
	if !object.HasIdentityTransforms() {
		t.Errorf("translation within tolerance should pass")
	}

	object.MatrixLocal = mgl32.Translate3D(0.5, 0, 0)
	if object.HasIdentityTransforms() {
		t.Errorf("translated transform should fail")
	}

	object.MatrixLocal = mgl32.HomogRotate3DZ(0.5)
	if object.HasIdentityTransforms() {
		t.Errorf("rotated transform should fail")
	}

	object.MatrixLocal = mgl32.Scale3D(2, 2, 2)
	if object.HasIdentityTransforms() {
		t.Errorf("scaled transform should fail")
	}
}

func TestSurfaceObject(t *testing.T) {
	mesh := &Object{Name: "Head", Type: TypeMesh}
	curves := &Object{Name: "Hair", Type: TypeCurves}

	if curves.SurfaceObject() != nil {
		t.Errorf("free-floating curves should have no surface")
	}

	curves.Modifiers = append(curves.Modifiers, &Modifier{Type: ModifierSurfaceDeform, Target: mesh})
	if curves.SurfaceObject() != mesh {
		t.Errorf("surface-deform target should win")
	}

	parented := &Object{Name: "Hair2", Type: TypeCurves, Parent: mesh}
	if parented.SurfaceObject() != mesh {
		t.Errorf("mesh parent should count as surface")
	}
}

func TestNodeTransformMatrixForm(t *testing.T) {
	trs := &gltf.Node{
		Translation: [3]float32{1, 2, 3},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}
	if got := nodeTransform(trs).Col(3).Vec3(); !got.ApproxEqual(mgl32.Vec3{1, 2, 3}) {
		t.Errorf("trs translation=%v; expected (1,2,3)", got)
	}

	// matrix form instead of TRS; column-major, translation in the
	// last column
	matrix := &gltf.Node{
		Matrix: [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			4, 5, 6, 1,
		},
	}
	if got := nodeTransform(matrix).Col(3).Vec3(); !got.ApproxEqual(mgl32.Vec3{4, 5, 6}) {
		t.Errorf("matrix translation=%v; expected (4,5,6)", got)
	}

	// zero-valued node degrades to identity
	if got := nodeTransform(&gltf.Node{}); !got.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("empty node transform=%v; expected identity", got)
	}
}
