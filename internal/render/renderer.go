package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
)

// ErrDecodeImage wraps failures to decode the uploaded profile picture.
var ErrDecodeImage = errors.New("decode profile image")

// Config locates the optional font and background template files.
type Config struct {
	FontDir     string
	TemplateDir string
}

// Fallback records a resource the renderer substituted instead of failing.
type Fallback struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Result is one rendered thumbnail.
type Result struct {
	Image      image.Image
	FillWidth  int
	Background string
	Fallbacks  []Fallback
}

// Renderer composes thumbnails from answer records.
type Renderer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Renderer.
func New(cfg Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{cfg: cfg, logger: logger.Named("render")}
}

// Render draws the thumbnail. It fails on an incomplete record or an undecodable
// profile picture; missing fonts, templates and unknown colors degrade instead.
func (r *Renderer) Render(answers thumbnail.Answers) (*Result, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}

	avatar, err := decodeAvatar(answers.Image)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.SetColor(color.White)
	dc.Clear()

	if bg, path, ok := loadBackground(r.cfg.TemplateDir, answers.Template); ok {
		dc.DrawImage(bg, 0, 0)
		result.Background = path
	}

	primary, ok := ResolveColor(answers.Color)
	if !ok {
		result.Fallbacks = append(result.Fallbacks, Fallback{Kind: "color", Value: answers.Color, Reason: "unrecognised color"})
	}

	fonts := ResolveFont(r.cfg.FontDir, answers.Font, answers.CustomFontPath)
	if fonts.Fallback {
		result.Fallbacks = append(result.Fallbacks, Fallback{Kind: "font", Value: fonts.Source, Reason: fonts.Err.Error()})
	}

	const centerX = CanvasWidth / 2

	drawAvatar(dc, avatar)

	dc.SetFontFace(fonts.Face(TitleSize))
	dc.SetColor(primary)
	dc.DrawStringAnchored(answers.Name, centerX, TitleY, 0.5, 0.5)

	dc.SetFontFace(fonts.Face(DetailsSize))
	dc.SetColor(color.Black)
	drawCenteredLines(dc, detailLines(answers), centerX, DetailsY)

	dc.SetFontFace(fonts.Face(PercentageSize))
	dc.SetColor(primary)
	dc.DrawStringAnchored(strconv.Itoa(*answers.Percentage)+"%", centerX, PercentageY, 0.5, 0.5)

	result.FillWidth = drawProgressBar(dc, primary, *answers.Percentage)

	dc.SetFontFace(fonts.Face(SynopsisSize))
	dc.SetColor(color.Black)
	drawCenteredLines(dc, Wrap(answers.Synopsis, SynopsisWrapWidth), centerX, SynopsisY)

	dc.SetFontFace(fonts.Face(BrandingSize))
	dc.SetColor(primary)
	x, y := brandingOrigin(dc, answers.Branding)
	dc.DrawStringAnchored(answers.Branding, x, y, 0, 1)

	for _, fb := range result.Fallbacks {
		r.logger.Debug("render fallback used",
			zap.String("kind", fb.Kind),
			zap.String("value", fb.Value),
			zap.String("reason", fb.Reason))
	}

	result.Image = dc.Image()
	return result, nil
}

// Encode writes img as a JPEG of the given quality.
func Encode(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}

func decodeAvatar(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	return imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos), nil
}

// drawAvatar pastes the square picture through a circle inscribed in it.
func drawAvatar(dc *gg.Context, avatar image.Image) {
	left := CanvasWidth/2 - AvatarSize/2
	radius := float64(AvatarSize) / 2

	dc.DrawCircle(float64(left)+radius, float64(AvatarTop)+radius, radius)
	dc.Clip()
	dc.DrawImage(avatar, left, AvatarTop)
	dc.ResetClip()
}

func drawProgressBar(dc *gg.Context, c color.Color, percentage int) int {
	fill := ProgressFill(percentage)

	dc.SetColor(c)
	dc.SetLineWidth(BarStroke)
	dc.DrawRectangle(BarLeft, BarTop, BarWidth, BarHeight)
	dc.Stroke()

	if fill > 0 {
		dc.DrawRectangle(BarLeft, BarTop, float64(fill), BarHeight)
		dc.Fill()
	}
	return fill
}

func detailLines(answers thumbnail.Answers) []string {
	details := fmt.Sprintf("AUTHOR\n%s\n\nCHAPTERS\n128+ Chapters\n\nTYPE\nManga\n\nYEAR\n%d", answers.Author, *answers.Year)
	return strings.Split(details, "\n")
}

// drawCenteredLines draws a block of lines, each centered on cx, with the
// block's vertical middle at cy.
func drawCenteredLines(dc *gg.Context, lines []string, cx, cy float64) {
	if len(lines) == 0 {
		return
	}

	lineHeight := dc.FontHeight() + lineGap
	total := lineHeight*float64(len(lines)) - lineGap
	top := cy - total/2

	for i, line := range lines {
		if line == "" {
			continue
		}
		dc.DrawStringAnchored(line, cx, top+float64(i)*lineHeight, 0.5, 1)
	}
}

// brandingOrigin returns the top-left corner that right-aligns text against the margins.
func brandingOrigin(dc *gg.Context, text string) (float64, float64) {
	width, _ := dc.MeasureString(text)
	return CanvasWidth - width - BrandingMargin, BrandingMargin
}
