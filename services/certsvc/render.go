package certsvc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Umairanwarr/hadith-sub001/config"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	defaultWidth  = 1200
	defaultHeight = 850
	maxDimension  = 4000
)

var ErrInvalidCanvas = errors.New("invalid canvas data")

// Data is what gets substituted into a template's text fields.
type Data struct {
	StudentName string    `json:"studentName"`
	CourseName  string    `json:"courseName"`
	Grade       float64   `json:"grade"`
	IssuedAt    time.Time `json:"issuedAt"`
	Number      string    `json:"certificateNumber"`
}

// Replace substitutes {{student}}, {{course}}, {{grade}}, {{date}} and {{number}}.
func (d Data) Replace(text string) string {
	issued := d.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return strings.NewReplacer(
		"{{student}}", d.StudentName,
		"{{course}}", d.CourseName,
		"{{grade}}", strconv.FormatFloat(d.Grade, 'f', -1, 64),
		"{{date}}", issued.Format("January 2, 2006"),
		"{{number}}", d.Number,
	).Replace(text)
}

// DefaultLayout is used when a template has no fields of its own, and by clients that
// render without any template.
func DefaultLayout() courseModels.TemplateLayout {
	cx := defaultWidth / 2
	return courseModels.TemplateLayout{
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: "#FDF8EE",
		Border:     "#8B6B2E",
		Fields: []courseModels.TemplateField{
			{Text: "CERTIFICATE OF COMPLETION", X: cx, Y: 150, Scale: 4, Color: "#1F4E3D", Align: "center"},
			{Text: "This certifies that", X: cx, Y: 270, Scale: 2, Color: "#333333", Align: "center"},
			{Text: "{{student}}", X: cx, Y: 330, Scale: 5, Color: "#1F2A24", Align: "center"},
			{Text: "has successfully completed", X: cx, Y: 450, Scale: 2, Color: "#333333", Align: "center"},
			{Text: "{{course}}", X: cx, Y: 510, Scale: 4, Color: "#1F4E3D", Align: "center"},
			{Text: "Grade: {{grade}}%", X: cx, Y: 620, Scale: 2, Color: "#333333", Align: "center"},
			{Text: "Date: {{date}}", X: 120, Y: 720, Scale: 2, Color: "#333333", Align: "left"},
			{Text: "No. {{number}}", X: defaultWidth - 120, Y: 720, Scale: 2, Color: "#333333", Align: "right"},
		},
	}
}

// RenderedField is a template field after placeholder substitution.
type RenderedField struct {
	Text  string
	X     int
	Y     int
	Scale int
	Color color.NRGBA
	Align string
}

// ResolveFields substitutes data into the layout's fields, applying defaults.
func ResolveFields(layout courseModels.TemplateLayout, data Data) []RenderedField {
	fields := layout.Fields
	if len(fields) == 0 {
		fields = DefaultLayout().Fields
	}
	out := make([]RenderedField, 0, len(fields))
	for _, f := range fields {
		scale := f.Scale
		if scale <= 0 {
			scale = 1
		}
		out = append(out, RenderedField{
			Text:  data.Replace(f.Text),
			X:     f.X,
			Y:     f.Y,
			Scale: scale,
			Color: parseHex(f.Color, color.NRGBA{A: 255}),
			Align: strings.ToLower(f.Align),
		})
	}
	return out
}

// Render draws a certificate. backgroundPath is an optional local image that is
// scaled to fill the canvas; without it the layout's background colour is used.
func Render(layout courseModels.TemplateLayout, backgroundPath string, data Data) (image.Image, error) {
	w, h := layout.Width, layout.Height
	if w <= 0 || h <= 0 {
		w, h = defaultWidth, defaultHeight
	}
	if w > maxDimension || h > maxDimension {
		return nil, fmt.Errorf("canvas %dx%d exceeds %d pixels", w, h, maxDimension)
	}

	canvas := imaging.New(w, h, parseHex(layout.Background, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	if backgroundPath != "" {
		if bg, err := imaging.Open(backgroundPath); err == nil {
			canvas = imaging.Fill(bg, w, h, imaging.Center, imaging.Lanczos)
		} else {
			log.Printf("[CERT] background %s unusable, using plain canvas: %v", backgroundPath, err)
		}
	}

	if layout.Border != "" {
		drawBorder(canvas, parseHex(layout.Border, color.NRGBA{A: 255}))
	}

	fontPath := layout.Font
	if fontPath == "" {
		fontPath = config.Get().CertificateFont
	}
	otf := loadFont(fontPath)

	for _, f := range ResolveFields(layout, data) {
		canvas = drawText(canvas, f, otf)
	}
	return canvas, nil
}

// RenderPNG renders a certificate and encodes it as PNG.
func RenderPNG(layout courseModels.TemplateLayout, backgroundPath string, data Data) ([]byte, error) {
	img, err := Render(layout, backgroundPath, data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCanvasData reads a browser canvas export (a data URL or bare base64) and
// returns it as PNG.
func DecodeCanvasData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i > 0 {
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, err)
	}
	// header only; the pixel buffer is allocated after the size check
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("%w: canvas too large (%dx%d)", ErrInvalidCanvas, cfg.Width, cfg.Height)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawBorder(canvas *image.NRGBA, c color.NRGBA) {
	b := canvas.Bounds()
	src := &image.Uniform{C: c}
	frame := func(inset, thickness int) {
		r := b.Inset(inset)
		draw.Draw(canvas, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), src, image.Point{}, draw.Src)
		draw.Draw(canvas, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(canvas, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(canvas, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	}
	frame(20, 10)
	frame(40, 2)
}

var (
	fontsMu sync.Mutex
	fonts   = map[string]*opentype.Font{}
)

// loadFont parses a font file once per path. It returns nil for an empty path or an
// unusable file, in which case text falls back to the bitmap face.
func loadFont(path string) *opentype.Font {
	if path == "" {
		return nil
	}
	fontsMu.Lock()
	defer fontsMu.Unlock()
	if f, ok := fonts[path]; ok {
		return f
	}
	data, err := os.ReadFile(path)
	var parsed *opentype.Font
	if err == nil {
		parsed, err = opentype.Parse(data)
	}
	if err != nil {
		log.Printf("[CERT] font %s unusable, using the bitmap face: %v", path, err)
		parsed = nil
	}
	fonts[path] = parsed
	return parsed
}

// drawText renders f and overlays it at its anchor. With a font file the text is drawn
// at 13pt per scale step; otherwise the 7x13 bitmap face is scaled up nearest-neighbour.
// The bitmap face covers Latin-1 only.
func drawText(canvas *image.NRGBA, f RenderedField, otf *opentype.Font) *image.NRGBA {
	if strings.TrimSpace(f.Text) == "" {
		return canvas
	}
	var glyphs *image.NRGBA
	if otf != nil {
		glyphs = vectorGlyphs(f, otf)
	}
	if glyphs == nil {
		glyphs = bitmapGlyphs(f)
	}
	if glyphs == nil {
		return canvas
	}

	x := f.X
	switch f.Align {
	case "center":
		x -= glyphs.Bounds().Dx() / 2
	case "right":
		x -= glyphs.Bounds().Dx()
	}
	return imaging.Overlay(canvas, glyphs, image.Pt(x, f.Y), 1.0)
}

func bitmapGlyphs(f RenderedField) *image.NRGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, f.Text).Ceil()
	height := face.Height
	if width <= 0 {
		return nil
	}

	glyphs := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(f.Color),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(f.Text)
	return imaging.Resize(glyphs, width*f.Scale, height*f.Scale, imaging.NearestNeighbor)
}

func vectorGlyphs(f RenderedField, otf *opentype.Font) *image.NRGBA {
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(13 * f.Scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[CERT] font face: %v", err)
		return nil
	}
	defer face.Close()

	m := face.Metrics()
	width := font.MeasureString(face, f.Text).Ceil()
	height := (m.Ascent + m.Descent).Ceil()
	if width <= 0 || height <= 0 {
		return nil
	}

	glyphs := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(f.Color),
		Face: face,
		Dot:  fixed.Point26_6{Y: m.Ascent},
	}
	d.DrawString(f.Text)
	return glyphs
}

// parseHex reads #RGB or #RRGGBB; anything else yields def.
func parseHex(s string, def color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// backgroundFile returns the template background when it is a readable local file.
func backgroundFile(tpl *courseModels.DiplomaTemplate) string {
	if tpl == nil || tpl.BackgroundURL == "" || strings.Contains(tpl.BackgroundURL, "://") {
		return ""
	}
	if _, err := os.Stat(tpl.BackgroundURL); err != nil {
		return ""
	}
	return tpl.BackgroundURL
}
