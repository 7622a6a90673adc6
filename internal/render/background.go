package render

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// loadBackground opens "<dir>/<template>.jpg" and fits it to the canvas.
func loadBackground(dir, template string) (image.Image, string, bool) {
	if dir == "" || template == "" {
		return nil, "", false
	}

	path := filepath.Join(dir, filepath.Base(template)+".jpg")
	if _, err := os.Stat(path); err != nil {
		return nil, "", false
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, "", false
	}
	return imaging.Fill(img, CanvasWidth, CanvasHeight, imaging.Center, imaging.Lanczos), path, true
}
