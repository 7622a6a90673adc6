package render

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// FontResolution is the outcome of looking up the font chosen for a thumbnail.
// When Fallback is set every face comes from the built-in bitmap font.
type FontResolution struct {
	Source   string
	Fallback bool
	Err      error

	font *opentype.Font
}

// ResolveFont loads the uploaded custom font when customPath is set, otherwise
// the catalog font file name from fontDir. TrueType and OpenType are supported.
func ResolveFont(fontDir, name, customPath string) FontResolution {
	source := customPath
	if source == "" {
		if name == "" {
			return FontResolution{Fallback: true, Err: fmt.Errorf("no font selected")}
		}
		source = filepath.Join(fontDir, filepath.Base(name))
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return FontResolution{Source: source, Fallback: true, Err: fmt.Errorf("read font: %w", err)}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return FontResolution{Source: source, Fallback: true, Err: fmt.Errorf("parse font: %w", err)}
	}

	return FontResolution{Source: source, font: parsed}
}

// Face returns a face of the given point size.
func (r FontResolution) Face(size float64) font.Face {
	if r.font == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
