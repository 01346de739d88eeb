// Package app wires the desk scene together: floor textures and material,
// lights, camera and orbit controls, the four model slots, the debug panel
// and the per-frame loop.
package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"desk-scene/debug"
	"desk-scene/loader"
	"desk-scene/scene"
)

// Renderer draws the scene and owns the output buffer size.
type Renderer interface {
	Render(s *scene.Scene, camera *scene.Node) error
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	DrawingBufferSize() (int, int)
}

type ModelLoader interface {
	Load(ctx context.Context, path string) *loader.Future
}

type TextureLoader interface {
	Load(ctx context.Context, path string) *scene.Texture
}

type Clock interface {
	Elapsed() float64
}

// Mixer advances skeletal or keyframe animation. None of the models are
// animated, so App.Mixer stays nil unless a caller sets one.
type Mixer interface {
	Update(delta float64)
}

type Options struct {
	Width      int
	Height     int
	PixelRatio float32
	AssetRoot  string

	Renderer   Renderer
	Models     ModelLoader
	Textures   TextureLoader
	Clock      Clock
	Dispatcher *loader.Dispatcher
	Log        *slog.Logger
}

var ErrMissingDependency = errors.New("app: missing dependency")

// App is the desk scene and its frame state. All methods run on the main
// goroutine.
type App struct {
	Scene    *scene.Scene
	Floor    *scene.Node
	Textures FloorTextures
	Lights   *LightingRig
	Camera   *CameraRig
	Panel    *debug.Panel
	Mixer    Mixer

	Burger  *Slot
	Desktop *Slot
	Plate   *Slot
	Phone   *Slot

	renderer  Renderer
	models    ModelLoader
	clock     Clock
	dispatch  *loader.Dispatcher
	assetRoot string
	log       *slog.Logger

	width    int
	height   int
	previous float64
	started  bool
}

// New builds the scene and starts the texture and model loads. Loads
// complete during later calls to Tick.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Renderer == nil || opts.Models == nil || opts.Textures == nil || opts.Clock == nil || opts.Dispatcher == nil {
		return nil, ErrMissingDependency
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	a := &App{
		Scene:     scene.NewScene(),
		Panel:     debug.NewPanel(log),
		Burger:    &Slot{Name: "burger"},
		Desktop:   &Slot{Name: "desktop"},
		Plate:     &Slot{Name: "plate"},
		Phone:     &Slot{Name: "phone"},
		renderer:  opts.Renderer,
		models:    opts.Models,
		clock:     opts.Clock,
		dispatch:  opts.Dispatcher,
		assetRoot: opts.AssetRoot,
		log:       log.With("component", "app"),
	}

	a.Textures = LoadFloorTextures(ctx, opts.Textures, a.asset)
	a.loadModels(ctx)

	a.Floor = NewFloor(a.Textures)
	a.Scene.Add(a.Floor)

	a.Lights = NewLightingRig()
	a.Scene.Add(a.Lights.Ambient)
	a.Scene.Add(a.Lights.Directional)
	a.Panel.Add("intensity", &a.Lights.Directional.Light.Intensity, 0, 10, 0.01)

	a.Camera = NewCameraRig(opts.Width, opts.Height)
	a.Scene.Add(a.Camera.Node)

	a.Resize(opts.Width, opts.Height, opts.PixelRatio)
	return a, nil
}

func (a *App) asset(rel string) string {
	return filepath.Join(a.assetRoot, filepath.FromSlash(rel))
}
