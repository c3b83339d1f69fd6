// Package web exposes the pipeline over HTTP: scene and asset
// inspection, settings management, the validate and send operators and
// a websocket feeding progress to clients.
package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/report"
	"github.com/woxer/ueport/unreal"
)

// Server owns the mutable state behind the handlers: the current
// property set, the scene snapshot path and the editor connection.
type Server struct {
	mu sync.Mutex

	props     *config.Properties
	scenePath string
	client    *unreal.Client
}

func NewServer(props *config.Properties, scenePath string, client *unreal.Client) *Server {
	return &Server{
		props:     props,
		scenePath: scenePath,
		client:    client,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) handlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	report.NewClient(conn)
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.handlerScene)
	r.HandleFunc("/json/assets", s.handlerAssets)
	r.HandleFunc("/json/settings", s.handlerSettings)
	r.HandleFunc("/json/templates", s.handlerTemplates)
	r.HandleFunc("/json/templates/{name}", s.handlerTemplate)
	r.HandleFunc("/json/error", s.handlerLastError)
	r.HandleFunc("/operator/validate", s.handlerValidate)
	r.HandleFunc("/operator/send", s.handlerSend)
	r.HandleFunc("/operator/create_collections", s.handlerCreateCollections)
	r.HandleFunc("/status", s.handlerStatusWs)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)
	return h
}

func (s *Server) Serve(addr string) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.router())
}
