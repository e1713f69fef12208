package course

import "gorm.io/gorm"

// Course levels. Diploma levels live in the diploma table and reuse these keys for
// the course tier they require.
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Instructor   string `json:"instructor"`
	Level        string `json:"level" gorm:"default:'BEGINNER';index"`
	Duration     int64  `json:"duration" gorm:"default:0"` // duration in hours
	TotalLessons int    `json:"total_lessons" gorm:"default:0"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}
