package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/woxer/ueport/scene"
)

// GLTFBuilder assembles one export file as a glTF document. Mesh
// objects become nodes with one primitive per material slot.
type GLTFBuilder struct {
	doc *gltf.Document

	materialIndexes map[string]uint32
}

func NewGLTFBuilder() *GLTFBuilder {
	return &GLTFBuilder{
		doc:             gltf.NewDocument(),
		materialIndexes: make(map[string]uint32),
	}
}

func (b *GLTFBuilder) Doc() *gltf.Document {
	return b.doc
}

// AddMeshObject serializes a mesh object and returns the node index.
func (b *GLTFBuilder) AddMeshObject(object *scene.Object, name string) uint32 {
	mesh := object.Mesh

	positions := make([][3]float32, len(mesh.Vertices))
	for i, vertex := range mesh.Vertices {
		positions[i] = vertex
	}
	positionAccessor := modeler.WritePosition(b.doc, positions)

	var normalsAccessor uint32
	if len(mesh.Normals) > 0 {
		normals := make([][3]float32, len(mesh.Normals))
		for i, normal := range mesh.Normals {
			if normal.Len() > 0.5 {
				normal = normal.Normalize()
			}
			normals[i] = normal
		}
		normalsAccessor = modeler.WriteNormal(b.doc, normals)
	}

	var uvAccessor uint32
	if len(mesh.UVs) > 0 {
		uvs := make([][2]float32, len(mesh.UVs))
		for i, uv := range mesh.UVs {
			uvs[i] = uv
		}
		uvAccessor = modeler.WriteTextureCoord(b.doc, uvs)
	}

	// one primitive per material slot, faces grouped by slot index
	slots := len(mesh.MaterialSlots)
	if slots == 0 {
		slots = 1
	}
	slotIndices := make([][]uint32, slots)
	for _, polygon := range mesh.Polygons {
		slot := polygon.MaterialIndex
		if slot < 0 || slot >= slots {
			slot = 0
		}
		for _, vertex := range polygon.Vertices {
			slotIndices[slot] = append(slotIndices[slot], uint32(vertex))
		}
	}

	primitives := make([]*gltf.Primitive, 0, slots)
	for slot, indices := range slotIndices {
		if len(indices) == 0 {
			continue
		}
		indicesAccessor := modeler.WriteIndices(b.doc, indices)

		attributes := map[string]uint32{
			"POSITION": positionAccessor,
		}
		if len(mesh.Normals) > 0 {
			attributes["NORMAL"] = normalsAccessor
		}
		if len(mesh.UVs) > 0 {
			attributes["TEXCOORD_0"] = uvAccessor
		}

		primitive := &gltf.Primitive{
			Indices:    gltf.Index(indicesAccessor),
			Attributes: attributes,
		}
		if slot < len(mesh.MaterialSlots) {
			primitive.Material = gltf.Index(b.materialIndex(mesh.MaterialSlots[slot].Name))
		}
		primitives = append(primitives, primitive)
	}

	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{
		Name:       name,
		Primitives: primitives,
	})
	meshIndex := uint32(len(b.doc.Meshes) - 1)

	return b.addNode(object, name, &meshIndex)
}

// AddCurvesObject serializes a curves object. Spline control points
// travel in node extras since core glTF has no curve primitive.
func (b *GLTFBuilder) AddCurvesObject(object *scene.Object, name string) uint32 {
	nodeIndex := b.addNode(object, name, nil)

	splines := make([][][3]float32, len(object.Curves.Splines))
	for i, spline := range object.Curves.Splines {
		points := make([][3]float32, len(spline))
		for j, point := range spline {
			points[j] = point
		}
		splines[i] = points
	}
	b.doc.Nodes[nodeIndex].Extras = map[string]interface{}{
		"ueport:type":    "CURVES",
		"ueport:splines": splines,
	}
	return nodeIndex
}

func (b *GLTFBuilder) addNode(object *scene.Object, name string, meshIndex *uint32) uint32 {
	location, _, scale := TransformParts(object.MatrixLocal)
	location = UnrealLocation(location)
	rotation := UnrealQuat(TransformQuat(object.MatrixLocal))
	scale = UnrealScale(scale)

	node := &gltf.Node{
		Name:        name,
		Mesh:        meshIndex,
		Translation: location,
		Rotation:    rotation.V.Vec4(rotation.W),
		Scale:       scale,
	}
	b.doc.Nodes = append(b.doc.Nodes, node)
	nodeIndex := uint32(len(b.doc.Nodes) - 1)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, nodeIndex)
	return nodeIndex
}

func (b *GLTFBuilder) materialIndex(name string) uint32 {
	if index, ok := b.materialIndexes[name]; ok {
		return index
	}
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{Name: name})
	index := uint32(len(b.doc.Materials) - 1)
	b.materialIndexes[name] = index
	return index
}

// Save writes the document, binary when the extension is .glb.
func (b *GLTFBuilder) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create export folder for %q", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	defer file.Close()

	encoder := gltf.NewEncoder(file)
	encoder.AsBinary = filepath.Ext(path) == ".glb"
	if err := encoder.Encode(b.doc); err != nil {
		return errors.Wrapf(err, "Failed to write gltf %q", path)
	}
	return nil
}
