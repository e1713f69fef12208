// Package diplomasvc serves the diploma levels and a student's standing in each.
package diplomasvc

import (
	"errors"
	"sort"
	"strings"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"

	"gorm.io/gorm"
)

var ErrLevelNotFound = errors.New("diploma level not found")

// Level is one diploma tier. CourseLevels lists the course levels whose courses make
// up the diploma.
type Level struct {
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	ArabicTitle  string   `json:"arabicTitle"`
	Order        int      `json:"order"`
	Years        int      `json:"years"`
	Description  string   `json:"description"`
	CourseLevels []string `json:"courseLevels"`
}

var levels = []Level{
	{
		Key: "preparatory", Title: "Preparatory Diploma", ArabicTitle: "الدبلوم التمهيدي", Order: 1, Years: 1,
		Description:  "Foundations of hadith terminology, Arabic and the etiquette of seeking knowledge.",
		CourseLevels: []string{"PREPARATORY", courseModels.LevelBeginner},
	},
	{
		Key: "intermediate", Title: "Intermediate Diploma", ArabicTitle: "الدبلوم المتوسط", Order: 2, Years: 1,
		Description:  "Study of the major hadith collections and the basics of narrator criticism.",
		CourseLevels: []string{"INTERMEDIATE_DIPLOMA", courseModels.LevelIntermediate},
	},
	{
		Key: "certificate", Title: "Certificate in Hadith Sciences", ArabicTitle: "شهادة علوم الحديث", Order: 3, Years: 1,
		Description:  "Chains of transmission, grading methodology and comparative reading of commentaries.",
		CourseLevels: []string{"CERTIFICATE"},
	},
	{
		Key: "diploma", Title: "Advanced Diploma", ArabicTitle: "الدبلوم العالي", Order: 4, Years: 2,
		Description:  "Advanced narrator criticism, hidden defects and takhrij practice.",
		CourseLevels: []string{"DIPLOMA", courseModels.LevelAdvanced},
	},
	{
		Key: "bachelor", Title: "Bachelor in Hadith Studies", ArabicTitle: "البكالوريوس", Order: 5, Years: 4,
		Description:  "Full undergraduate programme across hadith, fiqh and usul.",
		CourseLevels: []string{"BACHELOR"},
	},
	{
		Key: "master", Title: "Master in Hadith Studies", ArabicTitle: "الماجستير", Order: 6, Years: 2,
		Description:  "Research programme ending in a supervised thesis.",
		CourseLevels: []string{"MASTER"},
	},
}

// List returns every diploma level in programme order.
func List() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Get finds a level by key, case-insensitively.
func Get(key string) (Level, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, l := range levels {
		if l.Key == key {
			return l, nil
		}
	}
	return Level{}, ErrLevelNotFound
}

// LevelFor returns the diploma level a course level belongs to.
func LevelFor(courseLevel string) (Level, bool) {
	courseLevel = strings.ToUpper(strings.TrimSpace(courseLevel))
	for _, l := range levels {
		for _, cl := range l.CourseLevels {
			if cl == courseLevel {
				return l, true
			}
		}
	}
	return Level{}, false
}

// Courses lists the active courses of a level.
func Courses(db *gorm.DB, key string) (Level, []courseModels.Course, error) {
	level, err := Get(key)
	if err != nil {
		return Level{}, nil, err
	}
	var courses []courseModels.Course
	if err := db.Where("level IN ? AND is_active = ? AND is_deleted = ?", level.CourseLevels, true, false).
		Order("id asc").Find(&courses).Error; err != nil {
		return Level{}, nil, err
	}
	return level, courses, nil
}

// CourseStanding is a student's state in one course of a level.
type CourseStanding struct {
	CourseID      uint    `json:"courseId"`
	Title         string  `json:"title"`
	Enrolled      bool    `json:"enrolled"`
	Progress      float64 `json:"progress"`
	CertificateID *uint   `json:"certificateId"`
}

// LevelProgress is a student's standing across a level.
type LevelProgress struct {
	Level            Level            `json:"level"`
	Courses          []CourseStanding `json:"courses"`
	CompletedCourses int              `json:"completedCourses"`
	TotalCourses     int              `json:"totalCourses"`
	Progress         float64          `json:"progress"`
	Earned           bool             `json:"earned"`
}

// UserProgress reports how far a student is through a level. A course counts as
// completed once the student holds a valid certificate for it.
func UserProgress(db *gorm.DB, userID uint, key string) (*LevelProgress, error) {
	level, courses, err := Courses(db, key)
	if err != nil {
		return nil, err
	}

	out := &LevelProgress{Level: level, Courses: make([]CourseStanding, 0, len(courses)), TotalCourses: len(courses)}
	if len(courses) == 0 {
		return out, nil
	}

	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	var enrollments []courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id IN ? AND is_deleted = ?", userID, ids, false).Find(&enrollments).Error; err != nil {
		return nil, err
	}
	enrolled := make(map[uint]courseModels.Enrollment, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = e
	}

	var certs []courseModels.Certificate
	if err := db.Where("user_id = ? AND course_id IN ? AND is_valid = ?", userID, ids, true).Find(&certs).Error; err != nil {
		return nil, err
	}
	certified := make(map[uint]uint, len(certs))
	for _, c := range certs {
		certified[c.CourseID] = c.ID
	}

	for _, c := range courses {
		st := CourseStanding{CourseID: c.ID, Title: c.Title}
		if e, ok := enrolled[c.ID]; ok {
			st.Enrolled = true
			st.Progress = e.Progress
		}
		if id, ok := certified[c.ID]; ok {
			certID := id
			st.CertificateID = &certID
			out.CompletedCourses++
		}
		out.Courses = append(out.Courses, st)
	}
	out.Progress = progresssvc.Percentage(out.CompletedCourses, out.TotalCourses)
	out.Earned = out.CompletedCourses == out.TotalCourses
	return out, nil
}
