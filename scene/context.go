package scene

import "github.com/woxer/ueport/naming"

// Context is a snapshot of the mutable scene state an export step
// touches: selection, the active object, the current frame and object
// visibility. Capture before mutating, restore after.
type Context struct {
	Active   *Object
	Selected []*Object
	Frame    int
	Visible  []*Object
}

// CaptureContext records the current scene state.
func (s *Scene) CaptureContext() *Context {
	ctx := &Context{
		Active: s.Active,
		Frame:  s.CurrentFrame,
	}
	for _, object := range s.Objects {
		if object.Selected {
			ctx.Selected = append(ctx.Selected, object)
		}
		if object.Visible {
			ctx.Visible = append(ctx.Visible, object)
		}
	}
	return ctx
}

// RestoreContext puts the captured state back.
func (s *Scene) RestoreContext(ctx *Context) {
	s.DeselectAll()
	for _, object := range s.Objects {
		object.Visible = false
	}
	for _, object := range ctx.Selected {
		object.Selected = true
	}
	for _, object := range ctx.Visible {
		object.Visible = true
	}
	s.Active = ctx.Active
	s.CurrentFrame = ctx.Frame
}

// DeselectAll clears the selection.
func (s *Scene) DeselectAll() {
	for _, object := range s.Objects {
		object.Selected = false
	}
}

// Select makes the object selected and active.
func (s *Scene) Select(object *Object) {
	s.DeselectAll()
	object.Selected = true
	s.Active = object
}

// SelectChildren selects all children of the object with the given
// type, recursively. When the object is an armature without child
// objects its modifier-driven meshes count as children. Collision
// prefixed names are skipped when excludePrefixed is set.
func (s *Scene) SelectChildren(object *Object, objectType ObjectType, excludePrefixed bool) {
	children := object.Children
	if len(children) == 0 && object.Type == TypeArmature {
		children = s.MeshesUsingArmature(object)
	}
	for _, child := range children {
		if child.Type == objectType {
			if excludePrefixed && naming.HasCollisionPrefix(child.Name) {
				continue
			}
			child.Selected = true
		}
		if len(child.Children) > 0 {
			s.SelectChildren(child, objectType, excludePrefixed)
		}
	}
}
