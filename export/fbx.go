package export

import (
	"os"
	"path/filepath"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"

	"github.com/woxer/ueport/scene"
)

const (
	fbxCreator    = "FBX SDK/FBX Plugins version 2013.3 build=20121223"
	fbxAppVendor  = "ueport"
	fbxAppName    = "ueport"
	fbxAppVersion = "1.0"
	fbxDateTime   = "01/01/1970 00:00:00.000"
	fbxCreated    = "1970-01-01 10:00:00:000"
)

var fbxFileId = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

// FBXBuilder assembles one export file: models, geometry, materials
// and the connections between them.
type FBXBuilder struct {
	f      *fbx.FBX
	lastId int64

	objects     *fbx.Node
	connections *fbx.Node

	materialIds map[string]int64
}

func NewFBXBuilder(filename string) *FBXBuilder {
	b := &FBXBuilder{
		f:           fbx.NewFBX(7400),
		lastId:      1000000,
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
		materialIds: make(map[string]int64),
	}
	b.createHeaders(filename)
	return b
}

func (b *FBXBuilder) Root() *fbx.Node {
	return &b.f.Root
}

func (b *FBXBuilder) GenerateId() int64 {
	b.lastId++
	return b.lastId
}

func (b *FBXBuilder) AddObjects(nodes ...*fbx.Node) {
	b.objects.AddNodes(nodes...)
}

func (b *FBXBuilder) AddConnections(nodes ...*fbx.Node) {
	b.connections.AddNodes(nodes...)
}

// Connect parents one object under another. Parent id 0 is the scene
// root.
func (b *FBXBuilder) Connect(childId, parentId int64) {
	b.AddConnections(bfbx73.C("OO", childId, parentId))
}

func (b *FBXBuilder) createHeaders(filename string) {
	b.Root().AddNodes(
		bfbx73.FBXHeaderExtension().AddNodes(
			bfbx73.FBXHeaderVersion(1003),
			bfbx73.FBXVersion(7400),
			bfbx73.EncryptionType(0),
			bfbx73.CreationTimeStamp().AddNodes(
				bfbx73.Version(1000),
				bfbx73.Year(1970),
				bfbx73.Month(1),
				bfbx73.Day(1),
				bfbx73.Hour(10),
				bfbx73.Minute(0),
				bfbx73.Second(0),
				bfbx73.Millisecond(0),
			),
			bfbx73.Creator(fbxCreator),
			bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
				bfbx73.Type("UserData"),
				bfbx73.Version(100),
				bfbx73.MetaData().AddNodes(
					bfbx73.Version(100),
					bfbx73.Title(""),
					bfbx73.Subject(""),
					bfbx73.Author(""),
					bfbx73.Keywords(""),
					bfbx73.Revision(""),
					bfbx73.Comment(""),
				),
				bfbx73.Properties70().AddNodes(
					bfbx73.P("DocumentUrl", "KString", "Url", "", filename),
					bfbx73.P("SrcDocumentUrl", "KString", "Url", "", filename),
					bfbx73.P("Original", "Compound", "", ""),
					bfbx73.P("Original|ApplicationVendor", "KString", "", "", fbxAppVendor),
					bfbx73.P("Original|ApplicationName", "KString", "", "", fbxAppName),
					bfbx73.P("Original|ApplicationVersion", "KString", "", "", fbxAppVersion),
					bfbx73.P("Original|DateTime_GMT", "DateTime", "", "", fbxDateTime),
					bfbx73.P("Original|FileName", "KString", "", "", filepath.Base(filename)),
					bfbx73.P("LastSaved", "Compound", "", ""),
					bfbx73.P("LastSaved|ApplicationVendor", "KString", "", "", fbxAppVendor),
					bfbx73.P("LastSaved|ApplicationName", "KString", "", "", fbxAppName),
					bfbx73.P("LastSaved|ApplicationVersion", "KString", "", "", fbxAppVersion),
					bfbx73.P("LastSaved|DateTime_GMT", "DateTime", "", "", fbxDateTime),
				),
			),
		),
		bfbx73.FileId(fbxFileId),
		bfbx73.CreationTime(fbxCreated),
		bfbx73.Creator(fbxCreator),
		bfbx73.GlobalSettings().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("UpAxis", "int", "Integer", "", int32(2)),
				bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxis", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(-1)),
				bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
				bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("OriginalUpAxis", "int", "Integer", "", int32(2)),
				bfbx73.P("OriginalUpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
				bfbx73.P("OriginalUnitScaleFactor", "double", "Number", "", float64(1)),
				bfbx73.P("AmbientColor", "ColorRGB", "Color", "", float64(0), float64(0), float64(0)),
			),
		),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(b.GenerateId(), "Scene", "Scene").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("SourceObject", "object", "", ""),
					bfbx73.P("ActiveAnimStackName", "KString", "", "", ""),
				),
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		bfbx73.Definitions().AddNodes(
			bfbx73.Version(100),
			bfbx73.Count(1),
			bfbx73.ObjectType("GlobalSettings").AddNodes(
				bfbx73.Count(1),
			),
			bfbx73.ObjectType("Model").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxNode").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("QuaternionInterpolate", "enum", "", "", int32(0)),
						bfbx73.P("Show", "bool", "", "", int32(1)),
						bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
						bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
						bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
						bfbx73.P("Visibility", "Visibility", "", "A", float64(1)),
						bfbx73.P("Visibility Inheritance", "Visibility Inheritance", "", "", int32(1)),
					),
				),
			),
			bfbx73.ObjectType("Geometry").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxMesh").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
						bfbx73.P("Primary Visibility", "bool", "", "", int32(1)),
						bfbx73.P("Casts Shadows", "bool", "", "", int32(1)),
						bfbx73.P("Receive Shadows", "bool", "", "", int32(1)),
					),
				),
			),
			bfbx73.ObjectType("Material").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxSurfaceLambert").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("ShadingModel", "KString", "", "", "Lambert"),
						bfbx73.P("MultiLayer", "bool", "", "", int32(0)),
						bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
						bfbx73.P("DiffuseFactor", "Number", "", "A", float64(1)),
					),
				),
			),
			bfbx73.ObjectType("NodeAttribute").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxNull").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("Size", "double", "Number", "", float64(100)),
						bfbx73.P("Look", "enum", "", "", int32(1)),
					),
				),
			),
		),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(
			bfbx73.Current(""),
		),
	)
}

// AddMeshObject serializes a mesh object: one geometry, one model
// carrying the object's local transform, material connections. The
// model id is returned so callers can parent further nodes under it.
func (b *FBXBuilder) AddMeshObject(object *scene.Object, name string) int64 {
	mesh := object.Mesh

	vertices := make([]float64, 0, len(mesh.Vertices)*3)
	for _, vertex := range mesh.Vertices {
		vertices = append(vertices,
			float64(vertex.X()), float64(vertex.Y()), float64(vertex.Z()))
	}

	indexes := make([]int32, 0)
	uvIndexes := make([]int32, 0)
	materials := make([]int32, 0, len(mesh.Polygons))
	for _, polygon := range mesh.Polygons {
		for i, vertex := range polygon.Vertices {
			index := int32(vertex)
			if i == len(polygon.Vertices)-1 {
				// final polygon index is stored bitwise-negated
				indexes = append(indexes, -(index + 1))
			} else {
				indexes = append(indexes, index)
			}
			uvIndexes = append(uvIndexes, index)
		}
		materials = append(materials, int32(polygon.MaterialIndex))
	}

	geometryId := b.GenerateId()
	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
	)
	geometry := bfbx73.Geometry(geometryId, "\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		geometryLayer,
	)

	if len(mesh.Normals) > 0 {
		normals := make([]float64, 0, len(mesh.Normals)*3)
		for _, normal := range mesh.Normals {
			normals = append(normals,
				float64(normal.X()), float64(normal.Y()), float64(normal.Z()))
		}
		geometry.AddNode(
			bfbx73.LayerElementNormal(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByVertice"),
				bfbx73.ReferenceInformationType("Direct"),
				bfbx73.Normals(normals),
			),
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementNormal"),
				bfbx73.TypedIndex(0),
			),
		)
	}

	if len(mesh.UVs) > 0 {
		uv := make([]float64, 0, len(mesh.UVs)*2)
		for _, coord := range mesh.UVs {
			uv = append(uv, float64(coord.X()), float64(coord.Y()))
		}
		geometry.AddNode(
			bfbx73.LayerElementUV(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByPolygonVertex"),
				bfbx73.ReferenceInformationType("IndexToDirect"),
				bfbx73.UV(uv),
				bfbx73.UVIndex(uvIndexes),
			),
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementUV"),
				bfbx73.TypedIndex(0),
			),
		)
	}

	geometry.AddNode(
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygon"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials(materials),
		),
	)
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementMaterial"),
			bfbx73.TypedIndex(0),
		),
	)

	location, rotation, scale := TransformParts(object.MatrixLocal)
	location = UnrealLocation(location)
	rotationDeg := UnrealRotation(rotation)
	scale = UnrealScale(scale)

	modelId := b.GenerateId()
	model := bfbx73.Model(modelId, name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A",
				float64(location.X()), float64(location.Y()), float64(location.Z())),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A",
				float64(rotationDeg.X()), float64(rotationDeg.Y()), float64(rotationDeg.Z())),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A",
				float64(scale.X()), float64(scale.Y()), float64(scale.Z())),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	b.AddObjects(model, geometry)
	b.AddConnections(bfbx73.C("OO", geometryId, modelId))

	for _, slot := range mesh.MaterialSlots {
		b.AddConnections(bfbx73.C("OO", b.materialId(slot.Name), modelId))
	}
	return modelId
}

// AddNullObject serializes a data-less marker model, used for rigs in
// animation exports.
func (b *FBXBuilder) AddNullObject(name string) int64 {
	modelId := b.GenerateId()
	model := bfbx73.Model(modelId, name+"\x00\x01Model", "Null").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
	attribute := bfbx73.NodeAttribute(
		b.GenerateId(), name+"\x00\x01NodeAttribute", "Null").AddNodes(
		bfbx73.TypeFlags("Null"),
	)
	b.AddObjects(model, attribute)
	b.AddConnections(bfbx73.C("OO", attribute.Properties[0].(int64), modelId))
	return modelId
}

// materialId returns the id of the named material, creating the
// material object on first use so slots shared between meshes reuse
// one definition.
func (b *FBXBuilder) materialId(name string) int64 {
	if id, ok := b.materialIds[name]; ok {
		return id
	}
	id := b.GenerateId()
	b.materialIds[name] = id
	material := bfbx73.Material(id, name+"\x00\x01Material", "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("lambert"),
		bfbx73.MultiLayer(0),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
			bfbx73.P("Opacity", "double", "Number", "", float64(1)),
		),
	)
	b.AddObjects(material)
	return id
}

func (b *FBXBuilder) countDefinitions() {
	counts := make(map[string]int32)
	for _, object := range b.objects.Nodes {
		counts[object.Name]++
	}

	definitions := b.Root().GetNode("Definitions")
	totalCount := int32(1) // GlobalSettings

	for name, count := range counts {
		totalCount += count

		var objectType *fbx.Node
		for _, ot := range definitions.GetNodes("ObjectType") {
			if ot.Properties[0].(string) == name {
				objectType = ot
			}
		}
		if objectType == nil {
			objectType = bfbx73.ObjectType(name)
			definitions.AddNode(objectType)
		}
		objectType.GetOrAddNode(bfbx73.Count(0)).Properties[0] = count
	}

	definitions.GetOrAddNode(bfbx73.Count(0)).Properties[0] = totalCount
}

// Save finalizes definition counts and writes the file.
func (b *FBXBuilder) Save(path string) error {
	b.countDefinitions()

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create export folder for %q", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	defer file.Close()

	if err := fbx.Write(file, b.f); err != nil {
		return errors.Wrapf(err, "Failed to write fbx %q", path)
	}
	return nil
}
