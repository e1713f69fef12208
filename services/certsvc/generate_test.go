package certsvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type failingConverter struct{ calls int }

func (f *failingConverter) Convert(context.Context, []byte) ([]byte, error) {
	f.calls++
	return nil, errors.New("converter down")
}

type fakePDF struct{}

func (fakePDF) Convert(context.Context, []byte) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func withTemplate(t *testing.T, db *gorm.DB) courseModels.DiplomaTemplate {
	t.Helper()
	tpl := courseModels.DiplomaTemplate{
		Name: "default", Level: courseModels.LevelBeginner, IsDefault: true,
		Layout: datatypes.NewJSONType(courseModels.TemplateLayout{Width: 400, Height: 300}),
	}
	require.NoError(t, db.Create(&tpl).Error)
	return tpl
}

func TestGenerateKeepsPNGWhenConversionFails(t *testing.T) {
	db, user, _, attempt := passedAttempt(t)
	withTemplate(t, db)
	cert, err := IssueForAttempt(db, attempt)
	require.NoError(t, err)

	conv := &failingConverter{}
	record, err := Generate(context.Background(), db, conv, GenerateRequest{CertificateID: cert.ID, UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, conv.calls)
	assert.Equal(t, FormatPNG, record.Format)

	data, contentType, _, err := Download(db, cert.ID, user.ID, record.ImageID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestGenerateConvertsToPDF(t *testing.T) {
	db, user, _, attempt := passedAttempt(t)
	withTemplate(t, db)
	cert, err := IssueForAttempt(db, attempt)
	require.NoError(t, err)

	record, err := Generate(context.Background(), db, fakePDF{}, GenerateRequest{CertificateID: cert.ID, UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, record.Format)

	data, contentType, _, err := Download(db, cert.ID, user.ID, record.ImageID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	record, err = Generate(context.Background(), db, fakePDF{}, GenerateRequest{CertificateID: cert.ID, UserID: user.ID, Format: FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, record.Format)
}

func TestGenerateWithoutTemplateNeedsCanvasData(t *testing.T) {
	db, user, _, attempt := passedAttempt(t)
	cert, err := IssueForAttempt(db, attempt)
	require.NoError(t, err)

	_, err = Generate(context.Background(), db, nil, GenerateRequest{CertificateID: cert.ID, UserID: user.ID})
	assert.ErrorIs(t, err, ErrNoTemplate)

	png, err := RenderPNG(DefaultLayout(), "", DataFor(cert))
	require.NoError(t, err)
	record, err := Generate(context.Background(), db, nil, GenerateRequest{
		CertificateID: cert.ID,
		UserID:        user.ID,
		CanvasData:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, record.Format)
	assert.Nil(t, record.TemplateID)
}

func TestGenerateRefusesRevokedCertificate(t *testing.T) {
	db, user, _, attempt := passedAttempt(t)
	withTemplate(t, db)
	cert, err := IssueForAttempt(db, attempt)
	require.NoError(t, err)
	_, err = Revoke(db, cert.ID)
	require.NoError(t, err)

	_, err = Generate(context.Background(), db, nil, GenerateRequest{CertificateID: cert.ID, UserID: user.ID})
	assert.ErrorIs(t, err, ErrCertificateRevoked)
}

func TestDownloadUnknownImage(t *testing.T) {
	db, user, _, attempt := passedAttempt(t)
	cert, err := IssueForAttempt(db, attempt)
	require.NoError(t, err)

	_, _, _, err = Download(db, cert.ID, user.ID, "3f1c2d44-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestHTTPConverter(t *testing.T) {
	assert.Nil(t, NewHTTPConverter(""))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 converted"))
	}))
	defer srv.Close()

	pdf, err := NewHTTPConverter(srv.URL).Convert(context.Background(), []byte("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 converted", string(pdf))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer bad.Close()
	_, err = NewHTTPConverter(bad.URL).Convert(context.Background(), []byte("png bytes"))
	assert.Error(t, err)
}
