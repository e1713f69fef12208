package certsvc

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

var sample = Data{
	StudentName: "Aisha Rahman",
	CourseName:  "Introduction to Mustalah",
	Grade:       87,
	IssuedAt:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	Number:      "HAD-2026-0A1B2C3D",
}

func TestReplaceSubstitutesEveryPlaceholder(t *testing.T) {
	got := sample.Replace("{{student}} | {{course}} | {{grade}}% | {{date}} | {{number}}")
	assert.Equal(t, "Aisha Rahman | Introduction to Mustalah | 87% | March 14, 2026 | HAD-2026-0A1B2C3D", got)
}

func TestResolveFieldsUsesDefaultsForEmptyLayout(t *testing.T) {
	fields := ResolveFields(courseModels.TemplateLayout{}, sample)
	require.Len(t, fields, len(DefaultLayout().Fields))

	texts := make([]string, len(fields))
	for i, f := range fields {
		texts[i] = f.Text
	}
	assert.Contains(t, texts, "Aisha Rahman")
	assert.Contains(t, texts, "Introduction to Mustalah")
	assert.Contains(t, texts, "Grade: 87%")
	assert.Contains(t, texts, "Date: March 14, 2026")
	assert.Contains(t, texts, "No. HAD-2026-0A1B2C3D")
}

func TestResolveFieldsNormalizesScaleAndColor(t *testing.T) {
	fields := ResolveFields(courseModels.TemplateLayout{Fields: []courseModels.TemplateField{
		{Text: "{{student}}", Scale: 0, Color: "#f00", Align: "CENTER"},
		{Text: "x", Scale: 3, Color: "nonsense"},
	}}, sample)

	require.Len(t, fields, 2)
	assert.Equal(t, 1, fields[0].Scale)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, fields[0].Color)
	assert.Equal(t, "center", fields[0].Align)
	assert.Equal(t, 3, fields[1].Scale)
	assert.Equal(t, color.NRGBA{A: 255}, fields[1].Color)
}

func TestRenderPNGProducesLayoutSizedImage(t *testing.T) {
	png, err := RenderPNG(DefaultLayout(), "", sample)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 850, img.Bounds().Dy())
}

func TestRenderRejectsHugeCanvas(t *testing.T) {
	_, err := Render(courseModels.TemplateLayout{Width: 10000, Height: 100}, "", sample)
	assert.Error(t, err)
}

func TestRenderIgnoresMissingBackground(t *testing.T) {
	img, err := Render(courseModels.TemplateLayout{Width: 300, Height: 200}, "/does/not/exist.png", sample)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestDecodeCanvasData(t *testing.T) {
	png, err := RenderPNG(courseModels.TemplateLayout{Width: 64, Height: 32}, "", sample)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(png)

	for _, in := range []string{encoded, "data:image/png;base64," + encoded} {
		out, err := DecodeCanvasData(in)
		require.NoError(t, err)
		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
	}

	_, err = DecodeCanvasData("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrInvalidCanvas)
	_, err = DecodeCanvasData(base64.StdEncoding.EncodeToString([]byte("not an image")))
	assert.ErrorIs(t, err, ErrInvalidCanvas)
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGBA pixels, with no
// image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeCanvasDataRejectsOversizeHeaderBeforeDecoding(t *testing.T) {
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader(20000, 20000))

	_, err := DecodeCanvasData(encoded)
	require.ErrorIs(t, err, ErrInvalidCanvas)
	assert.Contains(t, err.Error(), "canvas too large")

	// a small header with no pixel data still fails, but as a decode error
	_, err = DecodeCanvasData(base64.StdEncoding.EncodeToString(pngHeader(100, 100)))
	require.ErrorIs(t, err, ErrInvalidCanvas)
	assert.NotContains(t, err.Error(), "too large")
}

func redPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R > 200 && c.G < 200 && c.B < 200 {
				n++
			}
		}
	}
	return n
}

func TestRenderUsesConfiguredFontFile(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "goregular.ttf")
	require.NoError(t, os.WriteFile(fontPath, goregular.TTF, 0o644))
	require.NotNil(t, loadFont(fontPath))
	assert.Nil(t, loadFont(filepath.Join(t.TempDir(), "missing.ttf")))
	assert.Nil(t, loadFont(""))

	layout := courseModels.TemplateLayout{
		Width: 400, Height: 120, Font: fontPath,
		Fields: []courseModels.TemplateField{{Text: "{{student}}", X: 200, Y: 30, Scale: 2, Color: "#ff0000", Align: "center"}},
	}
	img, err := Render(layout, "", sample)
	require.NoError(t, err)
	assert.Positive(t, redPixels(img))

	// an unreadable font file falls back to the bitmap face
	layout.Font = filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(layout.Font, []byte("not a font"), 0o644))
	img, err = Render(layout, "", sample)
	require.NoError(t, err)
	assert.Positive(t, redPixels(img))
}
