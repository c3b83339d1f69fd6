package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/export"
	"github.com/woxer/ueport/report"
	"github.com/woxer/ueport/scene"
	"github.com/woxer/ueport/validation"
	"github.com/woxer/ueport/webutils"
)

func (s *Server) loadScene() (*scene.Scene, error) {
	if s.scenePath == "" {
		return nil, errors.New("No scene snapshot configured")
	}
	return scene.Load(s.scenePath)
}

type jsonObject struct {
	Name    string           `json:"name"`
	Type    scene.ObjectType `json:"type"`
	Visible bool             `json:"visible"`
}

type jsonCollection struct {
	Name     string           `json:"name"`
	Objects  []jsonObject     `json:"objects"`
	Children []jsonCollection `json:"children"`
}

func collectionTree(c *scene.Collection) jsonCollection {
	out := jsonCollection{Name: c.Name, Objects: make([]jsonObject, 0, len(c.Objects))}
	for _, object := range c.Objects {
		out.Objects = append(out.Objects, jsonObject{
			Name:    object.Name,
			Type:    object.Type,
			Visible: object.Visible,
		})
	}
	for _, child := range c.Children {
		out.Children = append(out.Children, collectionTree(child))
	}
	return out
}

func (s *Server) handlerScene(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadScene()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &struct {
		Name         string         `json:"name"`
		UnitScale    float64        `json:"unit_scale"`
		FPS          float64        `json:"fps"`
		CurrentFrame int            `json:"current_frame"`
		Root         jsonCollection `json:"root"`
	}{
		Name:         sc.Name,
		UnitScale:    sc.UnitScale,
		FPS:          sc.FPS,
		CurrentFrame: sc.CurrentFrame,
		Root:         collectionTree(sc.Root),
	})
}

type jsonAsset struct {
	Name       string           `json:"name"`
	Kind       export.AssetKind `json:"kind"`
	Object     string           `json:"object"`
	Lods       []string         `json:"lods,omitempty"`
	Collisions []string         `json:"collisions,omitempty"`
}

func (s *Server) handlerAssets(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadScene()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	s.mu.Lock()
	assets := export.Collect(sc, s.props)
	s.mu.Unlock()

	out := make([]jsonAsset, 0, len(assets))
	for _, asset := range assets {
		ja := jsonAsset{
			Name:   asset.Name,
			Kind:   asset.Kind,
			Object: asset.Object.Name,
		}
		for _, lod := range asset.Lods {
			ja.Lods = append(ja.Lods, lod.Name)
		}
		for _, collision := range asset.Collisions {
			ja.Collisions = append(ja.Collisions, collision.Name)
		}
		out = append(out, ja)
	}
	webutils.WriteJson(w, out)
}

func (s *Server) handlerSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		props := *s.props
		if err := webutils.ReadJsonBody(r, &props); err != nil {
			webutils.WriteError(w, err)
			return
		}
		*s.props = props
	}
	webutils.WriteJson(w, s.props)
}

func (s *Server) handlerTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var body struct {
			Name string `json:"name"`
		}
		if err := webutils.ReadJsonBody(r, &body); err != nil {
			webutils.WriteError(w, err)
			return
		}

		s.mu.Lock()
		err := config.SaveTemplate(body.Name, s.props)
		s.mu.Unlock()
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
	}

	webutils.WriteJson(w, config.ListTemplates())
}

// handlerTemplate returns a stored template on GET and makes it the
// current property set on POST.
func (s *Server) handlerTemplate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	props, err := config.LoadTemplate(name)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	if r.Method == http.MethodPost {
		s.mu.Lock()
		*s.props = *props
		s.mu.Unlock()
	}
	webutils.WriteJson(w, props)
}

func (s *Server) handlerLastError(w http.ResponseWriter, r *http.Request) {
	message, details := report.LastError()
	webutils.WriteJson(w, &struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}{Message: message, Details: details})
}

func (s *Server) handlerValidate(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadScene()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	report.ClearError()
	if err := validation.New(sc, s.props, s.client).Run(r.Context()); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &struct {
		Ok bool `json:"ok"`
	}{Ok: true})
}

func (s *Server) handlerSend(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadScene()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := export.NewExporter(s.props, sc, s.client).Send(r.Context()); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &struct {
		Ok bool `json:"ok"`
	}{Ok: true})
}

func (s *Server) handlerCreateCollections(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadScene()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &struct {
		Created []string `json:"created"`
	}{Created: sc.CreateCollections()})
}
