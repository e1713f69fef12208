package controllers

import (
	"fmt"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists the user's certificates
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return serviceError(c, err, "Failed to fetch certificates!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// GetCertificate returns one certificate with its generated artifacts
func GetCertificate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	certificateID := c.Locals("certificateID").(int)
	db := database.Database.Db

	cert, err := certsvc.Get(db, uint(certificateID), userID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch certificate!")
	}

	var images []courseModels.CertificateImage
	if err := db.Where("certificate_id = ?", cert.ID).Order("created_at desc").Find(&images).Error; err != nil {
		return serviceError(c, err, "Failed to fetch certificate!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", fiber.Map{
		"certificate": cert,
		"images":      images,
		"data":        certsvc.DataFor(cert),
	})
}

// GenerateCertificate renders and stores a certificate artifact. Clients fall back to
// a local render on any failure here.
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	reqData := c.Locals("validatedGenerate").(*validators.GenerateRequest)

	record, err := certsvc.Generate(c.UserContext(), database.Database.Db, certsvc.DefaultConverter(), certsvc.GenerateRequest{
		CertificateID: reqData.CertificateID,
		UserID:        userID,
		TemplateID:    reqData.TemplateID,
		CanvasData:    reqData.CanvasData,
		Format:        reqData.Format,
	})
	if err != nil {
		return serviceError(c, err, "Failed to generate certificate!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully!", fiber.Map{
		"imageId": record.ImageID,
		"format":  record.Format,
		"url":     fmt.Sprintf("/api/certificates/%d/download/%s", record.CertificateID, record.ImageID),
	})
}

// DownloadCertificate streams a stored certificate artifact
func DownloadCertificate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	certificateID := c.Locals("certificateID").(int)
	imageID := c.Locals("imageID").(string)

	data, contentType, record, err := certsvc.Download(database.Database.Db, uint(certificateID), userID, imageID)
	if err != nil {
		return serviceError(c, err, "Failed to download certificate!")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="certificate-%d.%s"`, record.CertificateID, record.Format))
	return c.Status(fiber.StatusOK).Send(data)
}

// VerifyCertificate is the public lookup by certificate number
func VerifyCertificate(c *fiber.Ctx) error {
	number := c.Locals("certificateNumber").(string)

	cert, err := certsvc.Verify(database.Database.Db, number)
	if err != nil {
		return serviceError(c, err, "Failed to verify certificate!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate found.", fiber.Map{
		"certificateNumber": cert.CertificateNumber,
		"studentName":       cert.StudentName,
		"courseName":        cert.CourseName,
		"grade":             cert.Grade,
		"issuedAt":          cert.IssuedAt,
		"isValid":           cert.IsValid,
	})
}
