package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"desk-scene/scene"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// TextureLoader starts image loads whose pixels land on the main
// goroutine through the dispatcher.
type TextureLoader struct {
	dispatch *Dispatcher
	log      *slog.Logger
}

func NewTextureLoader(dispatch *Dispatcher, log *slog.Logger) *TextureLoader {
	return &TextureLoader{dispatch: dispatch, log: log.With("component", "textures")}
}

// Load returns a blank texture right away and fills it in once the file
// is decoded. A failed load is logged and leaves the texture blank.
func (l *TextureLoader) Load(ctx context.Context, path string) *scene.Texture {
	tex := scene.NewTexture(path)
	tex.FlipY = true
	go func() {
		if err := ctx.Err(); err != nil {
			return
		}
		w, h, pix, err := decodeImageFile(path)
		l.dispatch.Post(func() {
			if err != nil {
				l.log.Warn("texture load failed", "path", path, "err", err)
				return
			}
			tex.SetPixels(w, h, pix)
			l.log.Debug("texture loaded", "path", path, "width", w, "height", h)
		})
	}()
	return tex
}

func decodeImageFile(path string) (int, int, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("read texture %q: %w", path, err)
	}
	return decodeImageBytes(data)
}

// decodeImageBytes decodes PNG, JPEG or WebP data into tightly packed RGBA8.
func decodeImageBytes(data []byte) (int, int, []byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return b.Dx(), b.Dy(), rgba.Pix, nil
}
