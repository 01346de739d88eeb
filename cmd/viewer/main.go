package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"desk-scene/app"
	"desk-scene/config"
	"desk-scene/core"
	"desk-scene/loader"
	"desk-scene/renderer"
	"desk-scene/scene"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "desk-scene: %v\n", err)
		os.Exit(2)
	}

	log := core.NewLogger(os.Stderr, cfg.Log.Level)
	if err := run(cfg, log); err != nil {
		log.Error("viewer stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	winCfg := core.DefaultWindowConfig()
	winCfg.Width = cfg.Window.Width
	winCfg.Height = cfg.Window.Height
	winCfg.Title = cfg.Window.Title
	winCfg.VSync = cfg.Window.VSync
	winCfg.Fullscreen = cfg.Window.Fullscreen

	window, err := core.NewWindow(winCfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window, cfg.Window.Samples, log)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	decoder, err := loader.NewDracoDecoder(cfg.Asset("draco"))
	if err != nil {
		return err
	}

	dispatch := loader.NewDispatcher()
	models, err := loader.NewModelLoader(decoder, dispatch, log)
	if err != nil {
		return err
	}

	viewer, err := app.New(ctx, app.Options{
		Width:      window.Width,
		Height:     window.Height,
		PixelRatio: window.PixelRatio(),
		AssetRoot:  cfg.Assets.Root,
		Renderer:   engine,
		Models:     models,
		Textures:   loader.NewTextureLoader(dispatch, log),
		Clock:      scene.NewClock(),
		Dispatcher: dispatch,
		Log:        log,
	})
	if err != nil {
		return err
	}
	window.OnResize(viewer.Resize)

	log.Info("viewer ready", "width", window.Width, "height", window.Height, "assets", cfg.Assets.Root)
	return viewer.Run(ctx, window, core.NewInputManager(window), cfg.Window.Title)
}
