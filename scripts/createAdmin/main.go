package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	"github.com/Umairanwarr/hadith-sub001/utils"

	"gorm.io/gorm"
)

// Creates an admin account, or promotes an existing user, and seeds admin permissions.
func main() {
	email := flag.String("email", "", "admin e-mail")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", "", "password for a new account")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", strings.ToLower(*email)).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if len(*password) < 6 {
				return errors.New("-password of at least 6 characters is required for a new account")
			}
			hashed, err := utils.HashPassword(*password)
			if err != nil {
				return err
			}
			user = models.User{Name: *name, Email: strings.ToLower(*email), Role: models.RoleAdmin, Password: hashed}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Permission{}).Error; err != nil {
				return err
			}
		}
		return middleware.SeedPermissions(tx, models.RoleAdmin, user.ID)
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("Admin %s is ready", *email)
}
