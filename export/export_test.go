package export

import (
	"context"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mogaika/fbx"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/scene"
	"github.com/woxer/ueport/unreal"
)

type fakeImporter struct {
	imported []unreal.ImportOptions
	files    []string
}

func (f *fakeImporter) Connect(ctx context.Context) error { return nil }

func (f *fakeImporter) ProjectSettings(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeImporter) ImportAsset(ctx context.Context, filePath string, options unreal.ImportOptions) error {
	f.files = append(f.files, filePath)
	f.imported = append(f.imported, options)
	return nil
}

func triangleMesh() *scene.Mesh {
	return &scene.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:  []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:      []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Polygons: []scene.Polygon{
			{Index: 0, MaterialIndex: 0, Vertices: []int{0, 1, 2}},
		},
		MaterialSlots: []scene.MaterialSlot{
			{Name: "Mat", Material: &scene.Material{Name: "Mat"}},
		},
	}
}

func sendProps() *config.Properties {
	props := config.Default()
	props.ValidateProjectSettings = false
	props.ValidatePaths = false
	return props
}

func TestSendWritesAndImports(t *testing.T) {
	RemoveTempFolder()
	defer RemoveTempFolder()

	s := scene.NewScene("test")
	s.CreateCollections()
	export := s.Collection(scene.ExportCollectionName)
	cube := &scene.Object{
		Name:        "Cube",
		Type:        scene.TypeMesh,
		Visible:     true,
		Mesh:        triangleMesh(),
		MatrixLocal: mgl32.Ident4(),
	}
	s.AddObject(export, cube)

	client := &fakeImporter{}
	if err := NewExporter(sendProps(), s, client).Send(context.Background()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(client.files) != 1 {
		t.Fatalf("imported files=%v; expected 1", client.files)
	}
	info, err := os.Stat(client.files[0])
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("exported file %q is empty", client.files[0])
	}

	options := client.imported[0]
	if options.AssetName != "Cube" {
		t.Errorf("AssetName=%q; expected Cube", options.AssetName)
	}
	if options.GamePath != "/Game/untitled_category/untitled_asset" {
		t.Errorf("GamePath=%q", options.GamePath)
	}
	if !options.ImportMesh || options.ImportAnimations {
		t.Errorf("import flags=%+v; expected mesh only", options)
	}
}

func TestSendFailsWithoutExportObjects(t *testing.T) {
	s := scene.NewScene("test")
	s.CreateCollections()

	err := NewExporter(sendProps(), s, &fakeImporter{}).Send(context.Background())
	if err == nil {
		t.Fatalf("Send succeeded on an empty export collection")
	}
}

func TestSendToDiskSkipsImport(t *testing.T) {
	folder := t.TempDir()

	s := scene.NewScene("test")
	s.CreateCollections()
	export := s.Collection(scene.ExportCollectionName)
	s.AddObject(export, &scene.Object{
		Name:        "Rock",
		Type:        scene.TypeMesh,
		Visible:     true,
		Mesh:        triangleMesh(),
		MatrixLocal: mgl32.Ident4(),
	})

	props := sendProps()
	props.PathMode = config.SendToDisk
	props.DiskMeshFolderPath = folder

	client := &fakeImporter{}
	if err := NewExporter(props, s, client).Send(context.Background()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(client.imported) != 0 {
		t.Errorf("imported=%v; expected none in send_to_disk", client.imported)
	}
	if _, err := os.Stat(folder + "/Rock.fbx"); err != nil {
		t.Errorf("Rock.fbx not written: %v", err)
	}
}

func TestWritersEmitUnrealSpaceTransforms(t *testing.T) {
	object := &scene.Object{
		Name:        "Crate",
		Type:        scene.TypeMesh,
		Visible:     true,
		Mesh:        triangleMesh(),
		MatrixLocal: mgl32.Translate3D(1, 2, 3),
	}

	fbxBuilder := NewFBXBuilder("crate.fbx")
	fbxBuilder.Connect(fbxBuilder.AddMeshObject(object, "Crate"), 0)

	var model *fbx.Node
	for _, node := range fbxBuilder.objects.Nodes {
		if node.Name == "Model" {
			model = node
		}
	}
	if model == nil {
		t.Fatalf("no Model node written")
	}
	var translation []interface{}
	for _, p := range model.GetNode("Properties70").Nodes {
		if len(p.Properties) > 4 && p.Properties[0] == "Lcl Translation" {
			translation = p.Properties[4:7]
		}
	}
	expected := []interface{}{float64(100), float64(-200), float64(300)}
	if len(translation) != 3 {
		t.Fatalf("no Lcl Translation written")
	}
	for i := range expected {
		if translation[i] != expected[i] {
			t.Errorf("Lcl Translation=%v; expected %v", translation, expected)
			break
		}
	}

	gltfBuilder := NewGLTFBuilder()
	gltfBuilder.AddMeshObject(object, "Crate")
	node := gltfBuilder.Doc().Nodes[0]
	if node.Translation != [3]float32{100, -200, 300} {
		t.Errorf("node translation=%v; expected (100,-200,300)", node.Translation)
	}
}
