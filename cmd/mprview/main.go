package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mprview/internal/logging"
	"mprview/internal/models"
	"mprview/internal/session"
	"mprview/pkg/camera"
	"mprview/pkg/config"
	"mprview/pkg/toolcenter"
	"mprview/pkg/viewstate"
	"mprview/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to YAML configuration file")
	dbPath := flag.String("db", "", "SQLite file for snapshot persistence (overrides config)")
	dims := flag.String("dims", "64x64x48", "Synthetic volume dimensions as WIDTHxHEIGHTxDEPTH")
	extractSlices := flag.Bool("extract-slices", false, "Render and save slice images along all three axes")
	slicesDir := flag.String("slices-dir", "", "Directory to save extracted slices (overrides config)")
	exportJSON := flag.String("export-json", "", "Write the snapshot collection as JSON to this file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dbPath != "" {
		cfg.Store.PersistPath = *dbPath
	}
	if *slicesDir != "" {
		cfg.Export.SlicesDir = *slicesDir
	}
	if cfg.Output.Verbose {
		logging.SetDebugLogger(log.Printf)
	}

	var width, height, depth int
	if _, err := fmt.Sscanf(*dims, "%dx%dx%d", &width, &height, &depth); err != nil {
		log.Fatalf("Invalid -dims value %q: %v", *dims, err)
	}

	fmt.Println("================================")
	fmt.Println("MPR VIEW STATE DEMO")
	fmt.Println("Multi-planar reconstruction cameras, snapshots and tool centers")
	fmt.Println("================================")

	// Build a synthetic phantom volume and the three standard MPR viewports.
	vol, err := models.SyntheticVolume("demo-volume", [3]int{width, height, depth}, "demo-frame")
	if err != nil {
		log.Fatalf("Failed to build synthetic volume: %v", err)
	}
	sess, err := session.NewMPRSession(vol)
	if err != nil {
		log.Fatalf("Failed to create MPR session: %v", err)
	}

	var persister viewstate.Persister
	if cfg.Store.PersistPath != "" {
		sqlitePersister, err := viewstate.NewSQLitePersister(cfg.Store.PersistPath)
		if err != nil {
			log.Fatalf("Failed to open snapshot database: %v", err)
		}
		defer sqlitePersister.Close()
		persister = sqlitePersister
		fmt.Printf("Persisting snapshots to: %s\n", cfg.Store.PersistPath)
	}

	store, err := viewstate.NewStore(viewstate.Options{
		MaxSnapshots:         cfg.Store.MaxSnapshots,
		Lister:               sess,
		Renderer:             sess,
		Persister:            persister,
		ClearPersistedOnInit: cfg.Store.ClearOnInit,
	})
	if err != nil {
		log.Fatalf("Failed to create snapshot store: %v", err)
	}
	if n := len(store.GetAllSnapshots()); n > 0 {
		fmt.Printf("Loaded %d snapshot(s) from a previous run\n", n)
	}

	// Capture the untouched session first, then disturb each viewport and
	// capture again so both states can be restored below.
	if _, err := store.SaveSnapshot("Initial layout"); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	fmt.Println("\nApplying camera operations...")
	for _, id := range []string{"axial", "sagittal", "coronal"} {
		cam, err := sess.Camera(id)
		if err != nil {
			log.Fatalf("Failed to read camera for %s: %v", id, err)
		}
		if err := cam.Rotate(30); err != nil {
			log.Fatalf("Failed to rotate %s camera: %v", id, err)
		}
		if err := cam.Zoom(1.5); err != nil {
			log.Fatalf("Failed to zoom %s camera: %v", id, err)
		}
		if err := sess.SetCamera(id, cam); err != nil {
			log.Fatalf("Failed to update %s camera: %v", id, err)
		}

		pres, err := sess.ViewPresentation(id)
		if err != nil {
			log.Fatalf("Failed to read presentation for %s: %v", id, err)
		}
		pres.Flip(camera.FlipHorizontal)
		pres.Zoom = 2
		if err := sess.SetViewPresentation(id, *pres); err != nil {
			log.Fatalf("Failed to update %s presentation: %v", id, err)
		}
		fmt.Printf("- %s: rotated 30 degrees, zoomed, flipped horizontally\n", id)
	}

	saved, err := store.SaveSnapshot("Rotated and flipped")
	if err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}
	fmt.Printf("Saved snapshot %q covering %d viewport(s)\n", saved.Name, len(saved.ViewportStates))

	restored, err := store.RestoreSnapshot("Initial layout")
	if err != nil {
		log.Fatalf("Failed to restore snapshot: %v", err)
	}
	fmt.Printf("Restored initial layout: %v\n", restored)
	fmt.Printf("Snapshot slots remaining: %d\n", store.RemainingSlots())

	// Resolve the crosshairs anchor for every viewport.
	crosshairs := session.NewToolGroup("mpr-tools")
	crosshairs.AddTool("Crosshairs", toolcenter.ModeActive)
	sess.BindToolGroup(crosshairs, "axial", "sagittal", "coronal")
	sess.PlaceAnnotation("Crosshairs", "axial", &session.CrosshairAnnotation{
		Anchor: vol.Geometry.Center(),
		Placed: true,
	})

	resolver := toolcenter.NewResolver(sess, sess)
	fmt.Println("\nTool centers:")
	for _, vp := range sess.ListViewports() {
		info := resolver.ToolCenter(vp.ID, "Crosshairs")
		if info.Center != nil {
			fmt.Printf("- %s: active=%v center=%v\n", vp.ID, info.IsActive, *info.Center)
		} else {
			fmt.Printf("- %s: active=%v center=unset\n", vp.ID, info.IsActive)
		}
	}

	if *exportJSON != "" {
		text, err := store.ExportJSON()
		if err != nil {
			log.Fatalf("Failed to export snapshots: %v", err)
		}
		if err := os.WriteFile(*exportJSON, []byte(text), 0644); err != nil {
			log.Fatalf("Failed to write snapshot export: %v", err)
		}
		fmt.Printf("\nSnapshot collection exported to: %s\n", *exportJSON)
	}

	// Extract and save slices if requested
	if *extractSlices {
		fmt.Println("\nExtracting slices along all axes...")
		viewer := visualization.NewViewer(vol)

		for _, o := range []camera.Orientation{camera.Axial, camera.Sagittal, camera.Coronal} {
			axisDir := filepath.Join(cfg.Export.SlicesDir, string(o))
			fmt.Printf("Saving %s slices to: %s\n", o, axisDir)

			if err := viewer.SaveSliceSequence(o, axisDir, cfg.Export.SliceSizePx); err != nil {
				log.Printf("Warning: Failed to save %s slices: %v", o, err)
			}
		}

		fmt.Println("Slice extraction completed!")
	}
}
