package client

import (
	"context"
	"errors"
	"log"

	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
)

// Certificate is the downloaded artifact.
type Certificate struct {
	Data        []byte
	ContentType string
	Format      string
	// Local is set when the server could not produce the file and it was rendered here.
	Local bool
}

// CertificateDownloader fetches a certificate from the server and falls back to a local
// PNG render when generation or download fails.
type CertificateDownloader struct {
	Client *Client
	// Format asks the server for "pdf" or "png"; empty lets the server decide.
	Format string
}

// Download returns the certificate file. With render data available it only fails when
// the local render itself fails.
func (d *CertificateDownloader) Download(ctx context.Context, certificateID uint, data certsvc.Data) (*Certificate, error) {
	cert, err := d.fromServer(ctx, certificateID, data)
	if err == nil {
		return cert, nil
	}
	log.Printf("[CERT] certificate=%d server generation failed, rendering locally: %v", certificateID, err)

	png, renderErr := certsvc.RenderPNG(certsvc.DefaultLayout(), "", data)
	if renderErr != nil {
		return nil, errors.Join(err, renderErr)
	}
	return &Certificate{Data: png, ContentType: "image/png", Format: certsvc.FormatPNG, Local: true}, nil
}

func (d *CertificateDownloader) fromServer(ctx context.Context, certificateID uint, data certsvc.Data) (*Certificate, error) {
	gen, err := d.Client.GenerateCertificate(ctx, GenerateCertificateRequest{
		CertificateID: certificateID,
		Format:        d.Format,
		CertificateData: map[string]interface{}{
			"studentName":       data.StudentName,
			"courseName":        data.CourseName,
			"grade":             data.Grade,
			"issuedAt":          data.IssuedAt,
			"certificateNumber": data.Number,
		},
	})
	if err != nil {
		return nil, err
	}

	body, contentType, err := d.Client.DownloadCertificate(ctx, certificateID, gen.ImageID)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty certificate download")
	}
	return &Certificate{Data: body, ContentType: contentType, Format: gen.Format}, nil
}
