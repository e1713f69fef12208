package certsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Umairanwarr/hadith-sub001/config"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/utils"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// PDFConverter turns a rendered PNG into a PDF document.
type PDFConverter interface {
	Convert(ctx context.Context, png []byte) ([]byte, error)
}

// HTTPConverter posts the PNG to an external conversion service.
type HTTPConverter struct {
	client *resty.Client
	url    string
}

// NewHTTPConverter returns nil when url is empty, leaving generation on PNG only.
func NewHTTPConverter(url string) *HTTPConverter {
	if url == "" {
		return nil
	}
	return &HTTPConverter{
		client: resty.New().SetTimeout(20 * time.Second).SetRetryCount(1),
		url:    url,
	}
}

// DefaultConverter builds the converter from PDF_SERVICE_URL.
func DefaultConverter() PDFConverter {
	if c := NewHTTPConverter(config.Get().PdfServiceURL); c != nil {
		return c
	}
	return nil
}

func (h *HTTPConverter) Convert(ctx context.Context, png []byte) ([]byte, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetFileReader("file", "certificate.png", bytes.NewReader(png)).
		Post(h.url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pdf service status %d", resp.StatusCode())
	}
	body := resp.Body()
	if len(body) < 4 || string(body[:4]) != "%PDF" {
		return nil, errors.New("pdf service returned a non-PDF body")
	}
	return body, nil
}

// GenerateRequest asks for a stored artifact of a certificate.
type GenerateRequest struct {
	CertificateID uint
	UserID        uint
	TemplateID    *uint
	// CanvasData is an optional client-rendered PNG (data URL) used instead of the
	// server render.
	CanvasData string
	// Format is pdf or png; empty means pdf when a converter is available.
	Format string
}

// Generate stores a certificate artifact and returns its record. PDF conversion
// failures degrade to the PNG.
func Generate(ctx context.Context, db *gorm.DB, conv PDFConverter, req GenerateRequest) (*courseModels.CertificateImage, error) {
	cert, err := Get(db, req.CertificateID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !cert.IsValid {
		return nil, ErrCertificateRevoked
	}

	var png []byte
	var tpl *courseModels.DiplomaTemplate
	if req.CanvasData != "" {
		if png, err = DecodeCanvasData(req.CanvasData); err != nil {
			return nil, err
		}
		tpl, _ = resolveTemplate(db, cert, req.TemplateID)
	} else {
		if tpl, err = resolveTemplate(db, cert, req.TemplateID); err != nil {
			return nil, err
		}
		if png, err = RenderPNG(tpl.Layout.Data(), backgroundFile(tpl), DataFor(cert)); err != nil {
			return nil, fmt.Errorf("render certificate: %w", err)
		}
	}

	data, format := png, FormatPNG
	if req.Format != FormatPNG && conv != nil {
		if pdf, err := conv.Convert(ctx, png); err != nil {
			log.Printf("[CERT] pdf conversion for %s failed, keeping png: %v", cert.CertificateNumber, err)
		} else {
			data, format = pdf, FormatPDF
		}
	}

	imageID := uuid.NewString()
	path, err := utils.SaveFile(config.Get().CertificateDir, imageID+"."+format, data)
	if err != nil {
		return nil, fmt.Errorf("store certificate artifact: %w", err)
	}

	record := courseModels.CertificateImage{
		CertificateID: cert.ID,
		ImageID:       imageID,
		Format:        format,
		Path:          path,
	}
	if tpl != nil {
		record.TemplateID = &tpl.ID
	}
	if err := db.Create(&record).Error; err != nil {
		os.Remove(path)
		return nil, err
	}

	log.Printf("[CERT] generated %s artifact %s for %s", format, imageID, cert.CertificateNumber)
	return &record, nil
}

// resolveTemplate picks the requested template, then the certificate's, then the
// default for the course level.
func resolveTemplate(db *gorm.DB, cert *courseModels.Certificate, requested *uint) (*courseModels.DiplomaTemplate, error) {
	load := func(id uint) (*courseModels.DiplomaTemplate, error) {
		var tpl courseModels.DiplomaTemplate
		err := db.Where("id = ? AND is_active = ? AND is_deleted = ?", id, true, false).First(&tpl).Error
		if err != nil {
			return nil, err
		}
		return &tpl, nil
	}

	if requested != nil {
		tpl, err := load(*requested)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTemplate
		}
		return tpl, err
	}
	if cert.DiplomaTemplateID != nil {
		if tpl, err := load(*cert.DiplomaTemplateID); err == nil {
			return tpl, nil
		}
	}

	var course courseModels.Course
	level := ""
	if err := db.Unscoped().Select("level").Where("id = ?", cert.CourseID).First(&course).Error; err == nil {
		level = course.Level
	}
	return DefaultTemplate(db, level)
}

// Download returns a stored artifact of the user's certificate with its content type.
func Download(db *gorm.DB, certificateID, userID uint, imageID string) ([]byte, string, *courseModels.CertificateImage, error) {
	if _, err := Get(db, certificateID, userID); err != nil {
		return nil, "", nil, err
	}

	var record courseModels.CertificateImage
	if err := db.Where("certificate_id = ? AND image_id = ?", certificateID, imageID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", nil, ErrImageNotFound
		}
		return nil, "", nil, err
	}

	data, err := os.ReadFile(record.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", nil, ErrImageNotFound
		}
		return nil, "", nil, err
	}
	return data, ContentType(record.Format), &record, nil
}

// ContentType maps an artifact format to its MIME type.
func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}
