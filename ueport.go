package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/woxer/ueport/config"
	"github.com/woxer/ueport/export"
	"github.com/woxer/ueport/scene"
	"github.com/woxer/ueport/unreal"
	"github.com/woxer/ueport/web"
)

// waitForScene polls until the snapshot file parses, for the case
// where the content tool is still writing it out.
func waitForScene(ctx context.Context, path string) (*scene.Scene, error) {
	var lastErr error
	for attempt := 0; attempt < 50; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := scene.Load(path)
		if err == nil {
			return s, nil
		}
		lastErr = err
		time.Sleep(time.Millisecond * 100)
	}
	return nil, lastErr
}

func main() {
	var addr, scenePath, template, unrealAddr string
	var send bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&scenePath, "scene", "", "Path to scene snapshot (gltf/glb)")
	flag.StringVar(&template, "template", "", "Settings template to load on start")
	flag.StringVar(&unrealAddr, "unreal", unreal.DefaultAddr, "Address of unreal editor remote endpoint")
	flag.BoolVar(&send, "send", false, "Send the scene once and exit instead of serving")
	flag.Parse()

	export.RemoveTempFolder()
	if err := config.CreateDefaultTemplate(); err != nil {
		log.Printf("[main] Failed to create default template: %v", err)
	}

	props := config.Default()
	if template != "" {
		loaded, err := config.LoadTemplate(template)
		if err != nil {
			log.Fatal(err)
		}
		props = loaded
	}
	props.UnrealAddr = unrealAddr

	client := unreal.NewClient(unrealAddr)
	defer client.Close()

	if send {
		if scenePath == "" {
			flag.PrintDefaults()
			return
		}
		s, err := waitForScene(context.Background(), scenePath)
		if err != nil {
			log.Fatal(err)
		}
		if err := export.NewExporter(props, s, client).Send(context.Background()); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := web.NewServer(props, scenePath, client).Serve(addr); err != nil {
		log.Fatal(err)
	}
}
