package controllers

import (
	"os"
	"path/filepath"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
	"github.com/Umairanwarr/hadith-sub001/utils"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxBackgroundSize = 8 << 20

// AdminListTemplates lists diploma templates
func AdminListTemplates(c *fiber.Ctx) error {
	var templates []courseModels.DiplomaTemplate
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("level asc, id asc").Find(&templates).Error; err != nil {
		return serviceError(c, err, "Failed to fetch templates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Templates fetched successfully!", templates)
}

// AdminCreateTemplate creates a diploma template; without a layout the default one is stored
func AdminCreateTemplate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTemplate").(*validators.TemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tpl := courseModels.DiplomaTemplate{Layout: datatypes.NewJSONType(certsvc.DefaultLayout())}
	applyTemplate(&tpl, reqData)

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		if reqData.IsActive != nil && !*reqData.IsActive {
			if err := tx.Model(&tpl).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return clearOtherDefaults(tx, &tpl)
	})
	if err != nil {
		return serviceError(c, err, "Failed to create template!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Template created successfully!", tpl)
}

// AdminUpdateTemplate updates the provided fields of a template
func AdminUpdateTemplate(c *fiber.Ctx) error {
	templateID := c.Locals("templateID").(int)
	reqData, ok := c.Locals("validatedTemplate").(*validators.TemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var tpl courseModels.DiplomaTemplate
	if err := db.Where("id = ? AND is_deleted = ?", templateID, false).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	applyTemplate(&tpl, reqData)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&tpl).Error; err != nil {
			return err
		}
		return clearOtherDefaults(tx, &tpl)
	})
	if err != nil {
		return serviceError(c, err, "Failed to update template!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template updated successfully!", tpl)
}

func applyTemplate(tpl *courseModels.DiplomaTemplate, req *validators.TemplateRequest) {
	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Level != nil {
		tpl.Level = *req.Level
	}
	if req.BackgroundURL != nil {
		tpl.BackgroundURL = *req.BackgroundURL
	}
	if req.Layout != nil {
		tpl.Layout = datatypes.NewJSONType(*req.Layout)
	}
	if req.IsDefault != nil {
		tpl.IsDefault = *req.IsDefault
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
}

// clearOtherDefaults keeps one default template per level.
func clearOtherDefaults(tx *gorm.DB, tpl *courseModels.DiplomaTemplate) error {
	if !tpl.IsDefault {
		return nil
	}
	return tx.Model(&courseModels.DiplomaTemplate{}).
		Where("id <> ? AND level = ? AND is_default = ?", tpl.ID, tpl.Level, true).
		Update("is_default", false).Error
}

// AdminDeleteTemplate soft deletes a template
func AdminDeleteTemplate(c *fiber.Ctx) error {
	templateID := c.Locals("templateID").(int)

	res := database.Database.Db.Model(&courseModels.DiplomaTemplate{}).
		Where("id = ? AND is_deleted = ?", templateID, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false, "is_default": false})
	if res.Error != nil {
		return serviceError(c, res.Error, "Failed to delete template!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template deleted successfully!", nil)
}

// AdminUploadTemplateBackground stores a background image for a template
func AdminUploadTemplateBackground(c *fiber.Ctx) error {
	templateID := c.Locals("templateID").(int)
	db := database.Database.Db

	var tpl courseModels.DiplomaTemplate
	if err := db.Where("id = ? AND is_deleted = ?", templateID, false).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	file, err := c.FormFile("background")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"background": "background is required!"})
	}
	if file.Size > maxBackgroundSize {
		return middleware.ValidationErrorResponse(c, map[string]string{"background": "background must be at most 8MB!"})
	}

	path, err := utils.SaveUploadedFile(file, filepath.Join(config.Get().CertificateDir, "backgrounds"))
	if err != nil {
		return serviceError(c, err, "Failed to upload background!")
	}
	if _, err := imaging.Open(path); err != nil {
		os.Remove(path)
		return middleware.ValidationErrorResponse(c, map[string]string{"background": "background must be a PNG or JPEG image!"})
	}

	if err := db.Model(&tpl).Update("background_url", path).Error; err != nil {
		return serviceError(c, err, "Failed to upload background!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Background uploaded successfully!", fiber.Map{
		"template_id": tpl.ID,
		"url":         utils.GetFileURL(path),
	})
}

// AdminPreviewTemplate renders a template with sample data
func AdminPreviewTemplate(c *fiber.Ctx) error {
	templateID := c.Locals("templateID").(int)

	var tpl courseModels.DiplomaTemplate
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", templateID, false).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	png, err := certsvc.RenderPNG(tpl.Layout.Data(), tpl.BackgroundURL, certsvc.Data{
		StudentName: "Student Name",
		CourseName:  "Course Title",
		Grade:       95,
		Number:      "HAD-0000-PREVIEW",
	})
	if err != nil {
		return serviceError(c, err, "Failed to render preview!")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(png)
}
