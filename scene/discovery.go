package scene

import (
	"sort"

	"github.com/woxer/ueport/naming"
)

// ExportCollectionName is the collection assets are exported from.
const ExportCollectionName = "Export"

// CollectionNames are the predefined collections the tool bootstraps.
var CollectionNames = []string{ExportCollectionName}

// Collection finds a collection by name anywhere under the root.
func (s *Scene) Collection(name string) *Collection {
	return findCollection(s.Root, name)
}

func findCollection(c *Collection, name string) *Collection {
	if c == nil {
		return nil
	}
	if c.Name == name {
		return c
	}
	for _, child := range c.Children {
		if found := findCollection(child, name); found != nil {
			return found
		}
	}
	return nil
}

// AllObjects lists every object of a collection including nested ones.
func (c *Collection) AllObjects() []*Object {
	objects := append([]*Object{}, c.Objects...)
	for _, child := range c.Children {
		objects = append(objects, child.AllObjects()...)
	}
	return objects
}

// FromCollection returns the visible objects of a given type in the
// named collection, sorted by name. Objects carrying a collision
// prefix are excluded; they are secondaries picked up through
// CollisionsFor.
func (s *Scene) FromCollection(collectionName string, objectType ObjectType) []*Object {
	collection := s.Collection(collectionName)
	if collection == nil {
		return nil
	}
	var objects []*Object
	for _, object := range collection.AllObjects() {
		if object.Type != objectType || !object.Visible {
			continue
		}
		if naming.HasCollisionPrefix(object.Name) {
			continue
		}
		objects = append(objects, object)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects
}

// ExportObjects is FromCollection against the export collection.
func (s *Scene) ExportObjects(objectType ObjectType) []*Object {
	return s.FromCollection(ExportCollectionName, objectType)
}

// HairObjects returns the curves objects to export as grooms, or nil
// when groom import is disabled.
func (s *Scene) HairObjects(importGrooms bool) []*Object {
	if !importGrooms {
		return nil
	}
	return s.ExportObjects(TypeCurves)
}

// MeshesUsingArmature lists export meshes whose armature modifier is
// driven by the given rig.
func (s *Scene) MeshesUsingArmature(rig *Object) []*Object {
	var meshes []*Object
	for _, mesh := range s.ExportObjects(TypeMesh) {
		if mesh.ArmatureModifierObject() == rig {
			meshes = append(meshes, mesh)
		}
	}
	return meshes
}

// CollisionObjects returns the visible collision-prefixed meshes of the
// named collection, the complement of FromCollection.
func (s *Scene) CollisionObjects(collectionName string) []*Object {
	collection := s.Collection(collectionName)
	if collection == nil {
		return nil
	}
	var objects []*Object
	for _, object := range collection.AllObjects() {
		if object.Type != TypeMesh || !object.Visible {
			continue
		}
		if naming.HasCollisionPrefix(object.Name) {
			objects = append(objects, object)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects
}

// ParentCollection walks the collection tree to find the collection
// that directly holds the object. Nil when the object only lives in
// the root collection.
func (s *Scene) ParentCollection(object *Object) *Collection {
	return parentCollection(s.Root, object)
}

func parentCollection(c *Collection, object *Object) *Collection {
	for _, child := range c.Children {
		for _, candidate := range child.Objects {
			if candidate == object {
				return child
			}
		}
		if found := parentCollection(child, object); found != nil {
			return found
		}
	}
	return nil
}

// CreateCollections bootstraps the predefined collections, returning
// the names it had to create.
func (s *Scene) CreateCollections() []string {
	var created []string
	for _, name := range CollectionNames {
		if s.Collection(name) != nil {
			continue
		}
		s.Root.Children = append(s.Root.Children, &Collection{Name: name})
		created = append(created, name)
	}
	return created
}

// AddObject links an object into a collection and the scene's flat
// object list.
func (s *Scene) AddObject(collection *Collection, object *Object) {
	collection.Objects = append(collection.Objects, object)
	s.Objects = append(s.Objects, object)
}
