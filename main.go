package main

import (
	"embed"
	"io/fs"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"script-toolbox/internal/app"
	"script-toolbox/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Create an instance of the app structure
	toolbox := app.NewApp(cfg)

	// Extract the embedded filesystem to serve from the correct subdirectory
	distFS, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		log.Fatal("Failed to get sub filesystem:", err)
	}

	err = wails.Run(&options.App{
		Title:     "Script Toolbox",
		Width:     1200,
		Height:    800,
		MinWidth:  720,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: distFS,
		},
		BackgroundColour: &options.RGBA{R: 30, G: 30, B: 30, A: 1},
		OnStartup:        toolbox.Startup,
		OnShutdown:       toolbox.Shutdown,
		// Bind the app methods to the frontend
		Bind: []interface{}{
			toolbox,
		},
	})

	if err != nil {
		log.Fatal("Error:", err)
	}
}
