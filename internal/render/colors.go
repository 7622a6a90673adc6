package render

import (
	"image/color"
	"regexp"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

// ResolveColor turns a stored color choice into a drawable color. It accepts
// "#rrggbb", "#rgb" and SVG color names ("skyblue", "Sky Blue"). Anything else
// resolves to black with ok=false.
func ResolveColor(value string) (c color.Color, ok bool) {
	v := strings.TrimSpace(value)

	if hexColorPattern.MatchString(v) {
		parsed, err := colorful.Hex(strings.ToLower(v))
		if err == nil {
			r, g, b := parsed.Clamped().RGB255()
			return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
		}
	}

	name := strings.ToLower(strings.ReplaceAll(v, " ", ""))
	if named, found := colornames.Map[name]; found {
		return named, true
	}

	return color.Black, false
}
