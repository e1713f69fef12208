package course

import (
	"strings"

	"gorm.io/gorm"
)

// Video providers, used by players to pick their polling interval.
const (
	ProviderNative  = "native"
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
)

// Lesson is a single video lesson. Duration is always stored in seconds.
type Lesson struct {
	gorm.Model
	CourseID           uint   `json:"course_id" gorm:"index;not null"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	VideoURL           string `json:"video_url"`
	VideoProvider      string `json:"video_provider" gorm:"default:'native'"`
	Duration           int    `json:"duration" gorm:"default:0"` // seconds
	Order              int    `json:"order" gorm:"column:order_index;default:0;index"`
	IsActive           bool   `json:"is_active" gorm:"default:true"`
	DurationNormalized bool   `json:"-" gorm:"default:false"`
	IsDeleted          bool   `json:"-" gorm:"default:false"`
}

// DetectProvider derives the player kind from a video URL.
func DetectProvider(videoURL string) string {
	u := strings.ToLower(videoURL)
	switch {
	case strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be"):
		return ProviderYouTube
	case strings.Contains(u, "vimeo.com"):
		return ProviderVimeo
	default:
		return ProviderNative
	}
}
