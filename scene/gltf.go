package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Load reads a glTF/GLB snapshot from disk and builds the scene model.
//
// Mapping rules:
//   - root nodes without mesh, skin or joint role become collections,
//     their subtree populating that collection;
//   - nodes with a mesh become MESH objects, the skin they reference
//     becoming an ARMATURE modifier plus joint-named vertex groups;
//   - skeleton root nodes become ARMATURE objects;
//   - nodes flagged "ueport:type": "curves" in extras become CURVES
//     objects, their splines read from the extras spline table;
//   - document extras carry "unit_scale", "fps" and "frame_current".
func Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open scene snapshot %q", path)
	}
	return FromDocument(doc, path)
}

// FromDocument builds a scene from an already decoded glTF document.
func FromDocument(doc *gltf.Document, name string) (*Scene, error) {
	s := NewScene(name)
	s.UnitScale = extrasFloat(doc.Extras, "unit_scale", 1.0)
	s.FPS = extrasFloat(doc.Extras, "fps", 24)
	s.CurrentFrame = int(extrasFloat(doc.Extras, "frame_current", 0))

	l := &loader{doc: doc, scene: s, objects: make(map[uint32]*Object)}
	l.markJoints()

	for _, iNode := range l.sceneNodes() {
		node := doc.Nodes[iNode]
		if l.isCollectionNode(iNode) {
			collection := &Collection{Name: node.Name}
			s.Root.Children = append(s.Root.Children, collection)
			for _, iChild := range node.Children {
				if err := l.loadObject(iChild, nil, collection); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := l.loadObject(iNode, nil, s.Root); err != nil {
			return nil, err
		}
	}
	l.resolveModifiers()
	return s, nil
}

type loader struct {
	doc     *gltf.Document
	scene   *Scene
	objects map[uint32]*Object

	joints    map[uint32]bool
	skeletons map[uint32]bool
}

func (l *loader) sceneNodes() []uint32 {
	if len(l.doc.Scenes) == 0 {
		return nil
	}
	iScene := 0
	if l.doc.Scene != nil {
		iScene = int(*l.doc.Scene)
	}
	return l.doc.Scenes[iScene].Nodes
}

// markJoints records which nodes serve as skin joints or skeleton
// roots so they are not mistaken for collections or plain objects.
func (l *loader) markJoints() {
	l.joints = make(map[uint32]bool)
	l.skeletons = make(map[uint32]bool)
	for _, skin := range l.doc.Skins {
		for _, iJoint := range skin.Joints {
			l.joints[iJoint] = true
		}
		if skin.Skeleton != nil {
			l.skeletons[*skin.Skeleton] = true
		} else if len(skin.Joints) > 0 {
			l.skeletons[skin.Joints[0]] = true
		}
	}
}

func (l *loader) isCollectionNode(iNode uint32) bool {
	node := l.doc.Nodes[iNode]
	if node.Mesh != nil || node.Skin != nil {
		return false
	}
	if l.joints[iNode] || l.skeletons[iNode] {
		return false
	}
	if extrasString(node.Extras, "ueport:type") != "" {
		return false
	}
	return len(node.Children) > 0
}

func (l *loader) loadObject(iNode uint32, parent *Object, collection *Collection) error {
	node := l.doc.Nodes[iNode]

	object := &Object{
		Name:        node.Name,
		Type:        l.objectType(iNode),
		Parent:      parent,
		MatrixLocal: nodeTransform(node),
		Visible:     extrasFloat(node.Extras, "ueport:hidden", 0) == 0,
	}
	l.objects[iNode] = object
	l.scene.AddObject(collection, object)
	if parent != nil {
		parent.Children = append(parent.Children, object)
	}

	switch object.Type {
	case TypeMesh:
		mesh, err := l.loadMesh(node)
		if err != nil {
			return errors.Wrapf(err, "Failed to load mesh for node %q", node.Name)
		}
		object.Mesh = mesh
	case TypeArmature:
		object.Armature = l.loadArmature(iNode)
		object.Tracks = loadTracks(node)
	case TypeCurves:
		object.Curves = loadCurves(node)
	}

	for _, iChild := range node.Children {
		if l.joints[iChild] {
			continue // bones are armature data, not scene objects
		}
		if err := l.loadObject(iChild, object, collection); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) objectType(iNode uint32) ObjectType {
	node := l.doc.Nodes[iNode]
	if node.Mesh != nil {
		return TypeMesh
	}
	if l.skeletons[iNode] {
		return TypeArmature
	}
	if extrasString(node.Extras, "ueport:type") == "curves" {
		return TypeCurves
	}
	return TypeEmpty
}

func (l *loader) loadMesh(node *gltf.Node) (*Mesh, error) {
	doc := l.doc
	gltfMesh := doc.Meshes[*node.Mesh]
	mesh := &Mesh{}

	materialSlot := make(map[uint32]int)
	for _, primitive := range gltfMesh.Primitives {
		slot := 0
		if primitive.Material != nil {
			var ok bool
			if slot, ok = materialSlot[*primitive.Material]; !ok {
				slot = len(mesh.MaterialSlots)
				materialSlot[*primitive.Material] = slot
				mesh.MaterialSlots = append(mesh.MaterialSlots, l.loadMaterialSlot(*primitive.Material))
			}
		} else if len(mesh.MaterialSlots) == 0 && len(gltfMesh.Primitives) == 1 {
			// mesh without any material at all keeps zero slots
			slot = -1
		}

		if err := l.loadPrimitive(mesh, primitive, slot); err != nil {
			return nil, err
		}
	}

	if node.Skin != nil {
		skin := doc.Skins[*node.Skin]
		if l.primitivesHaveWeights(gltfMesh) {
			for _, iJoint := range skin.Joints {
				mesh.VertexGroups = append(mesh.VertexGroups, doc.Nodes[iJoint].Name)
			}
		}
	}
	return mesh, nil
}

func (l *loader) primitivesHaveWeights(gltfMesh *gltf.Mesh) bool {
	for _, primitive := range gltfMesh.Primitives {
		if _, ok := primitive.Attributes["WEIGHTS_0"]; ok {
			return true
		}
	}
	return false
}

func (l *loader) loadPrimitive(mesh *Mesh, primitive *gltf.Primitive, slot int) error {
	doc := l.doc

	iPosition, ok := primitive.Attributes["POSITION"]
	if !ok {
		return errors.Errorf("Primitive without POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[iPosition], nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to read positions")
	}

	base := len(mesh.Vertices)
	for _, position := range positions {
		mesh.Vertices = append(mesh.Vertices, mgl32.Vec3(position))
	}

	if iNormal, ok := primitive.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[iNormal], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read normals")
		}
		for _, normal := range normals {
			mesh.Normals = append(mesh.Normals, mgl32.Vec3(normal))
		}
	}

	if iUV, ok := primitive.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[iUV], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read texture coordinates")
		}
		for _, uv := range uvs {
			mesh.UVs = append(mesh.UVs, mgl32.Vec2(uv))
		}
	}

	if primitive.Indices == nil {
		return nil
	}
	indices, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to read indices")
	}
	materialIndex := slot
	if materialIndex < 0 {
		materialIndex = 0
	}
	for i := 0; i+2 < len(indices); i += 3 {
		mesh.Polygons = append(mesh.Polygons, Polygon{
			Index:         len(mesh.Polygons),
			MaterialIndex: materialIndex,
			Vertices: []int{
				base + int(indices[i]),
				base + int(indices[i+1]),
				base + int(indices[i+2]),
			},
		})
	}
	return nil
}

func (l *loader) loadMaterialSlot(iMaterial uint32) MaterialSlot {
	doc := l.doc
	gltfMaterial := doc.Materials[iMaterial]
	material := &Material{Name: gltfMaterial.Name}

	if pbr := gltfMaterial.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		texture := doc.Textures[pbr.BaseColorTexture.Index]
		if texture.Source != nil {
			image := doc.Images[*texture.Source]
			material.Textures = append(material.Textures, Texture{
				NodeName: image.Name,
				FilePath: image.URI,
				Packed:   image.BufferView != nil,
			})
		}
	}
	return MaterialSlot{Name: material.Name, Material: material}
}

func (l *loader) loadArmature(iNode uint32) *Armature {
	armature := &Armature{}
	l.loadBones(iNode, -1, armature)
	return armature
}

func (l *loader) loadBones(iNode uint32, parent int, armature *Armature) {
	for _, iChild := range l.doc.Nodes[iNode].Children {
		if !l.joints[iChild] {
			continue
		}
		node := l.doc.Nodes[iChild]
		index := len(armature.Bones)
		armature.Bones = append(armature.Bones, Bone{
			Name:   node.Name,
			Parent: parent,
			Matrix: nodeTransform(node),
		})
		l.loadBones(iChild, index, armature)
	}
}

// resolveModifiers runs after all objects exist: skins become armature
// modifiers and curves get surface-deform bindings from extras.
func (l *loader) resolveModifiers() {
	for iNode, object := range l.objects {
		node := l.doc.Nodes[iNode]

		if node.Skin != nil {
			skin := l.doc.Skins[*node.Skin]
			var rig *Object
			if skin.Skeleton != nil {
				rig = l.objects[*skin.Skeleton]
			} else if len(skin.Joints) > 0 {
				rig = l.objects[skin.Joints[0]]
			}
			object.Modifiers = append(object.Modifiers, &Modifier{
				Type:            ModifierArmature,
				Name:            "Armature",
				Object:          rig,
				UseVertexGroups: true,
			})
		}

		if target := extrasString(node.Extras, "ueport:surface"); target != "" {
			for _, candidate := range l.scene.Objects {
				if candidate.Name == target && candidate.Type == TypeMesh {
					object.Modifiers = append(object.Modifiers, &Modifier{
						Type:   ModifierSurfaceDeform,
						Name:   "SurfaceDeform",
						Target: candidate,
					})
					break
				}
			}
		}
	}
}

func loadCurves(node *gltf.Node) *Curves {
	curves := &Curves{}
	splines, ok := extrasValue(node.Extras, "ueport:splines").([]interface{})
	if !ok {
		return curves
	}
	for _, rawSpline := range splines {
		points, ok := rawSpline.([]interface{})
		if !ok {
			continue
		}
		var spline []mgl32.Vec3
		for _, rawPoint := range points {
			point, ok := rawPoint.([]interface{})
			if !ok || len(point) != 3 {
				continue
			}
			var v mgl32.Vec3
			for i := 0; i < 3; i++ {
				if f, ok := point[i].(float64); ok {
					v[i] = float32(f)
				}
			}
			spline = append(spline, v)
		}
		curves.Splines = append(curves.Splines, spline)
	}
	return curves
}

func loadTracks(node *gltf.Node) []*AnimationTrack {
	rawTracks, ok := extrasValue(node.Extras, "ueport:tracks").([]interface{})
	if !ok {
		return nil
	}
	var tracks []*AnimationTrack
	for _, rawTrack := range rawTracks {
		track, ok := rawTrack.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := track["name"].(string)
		tracks = append(tracks, &AnimationTrack{
			Name:       name,
			FrameStart: int(extrasFloat(track, "frame_start", 0)),
			FrameEnd:   int(extrasFloat(track, "frame_end", 0)),
		})
	}
	return tracks
}

var identityMatrix = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func nodeTransform(node *gltf.Node) mgl32.Mat4 {
	// nodes carry either a matrix or TRS, never both
	if node.Matrix != identityMatrix && node.Matrix != [16]float32{} {
		return mgl32.Mat4(node.Matrix)
	}
	translation := mgl32.Translate3D(node.Translation[0], node.Translation[1], node.Translation[2])
	// glTF stores rotation as xyzw
	rotation := mgl32.Quat{
		W: node.Rotation[3],
		V: mgl32.Vec3{node.Rotation[0], node.Rotation[1], node.Rotation[2]},
	}
	if rotation.Len() == 0 {
		rotation = mgl32.QuatIdent()
	}
	scale := node.Scale
	if scale == [3]float32{0, 0, 0} {
		scale = [3]float32{1, 1, 1}
	}
	return translation.
		Mul4(rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func extrasValue(extras interface{}, key string) interface{} {
	m, ok := extras.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[key]
}

func extrasString(extras interface{}, key string) string {
	s, _ := extrasValue(extras, key).(string)
	return s
}

func extrasFloat(extras interface{}, key string, fallback float64) float64 {
	switch v := extrasValue(extras, key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return fallback
	}
}
