package models

import (
	"gorm.io/gorm"
)

// Permission names checked by admin routes.
const (
	PermManageCourses      = "manage-courses"
	PermManageExams        = "manage-exams"
	PermManageCertificates = "manage-certificates"
	PermManageTemplates    = "manage-templates"
	PermViewDashboard      = "view-dashboard"
)

type Permission struct {
	gorm.Model
	UserID     uint `gorm:"index;not null"`
	User       User `gorm:"foreignKey:UserID"`
	Role       string
	Permission string `gorm:"type:varchar(255)"` // e.g., "manage-courses"
	IsDeleted  bool   `gorm:"default:false"`
}

// DefaultPermissions returns the permissions seeded for a role at signup.
func DefaultPermissions(role string) []string {
	if role != RoleAdmin {
		return nil
	}
	return []string{
		PermManageCourses,
		PermManageExams,
		PermManageCertificates,
		PermManageTemplates,
		PermViewDashboard,
	}
}
