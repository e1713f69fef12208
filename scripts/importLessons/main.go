package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"
)

// Imports lessons from a CSV with the header
// course_id,title,description,video_url,duration_seconds,order
// Rows matching an existing (course_id, order) update that lesson.
func main() {
	path := flag.String("file", "lessons.csv", "CSV file to import")
	flag.Parse()

	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	inserted, updated, skipped := 0, 0, 0
	touched := make(map[uint]bool)

	for _, row := range records[1:] {
		lesson := courseModels.Lesson{
			CourseID:           uint(parseInt(getField(row, headerIndex, "course_id"))),
			Title:              getField(row, headerIndex, "title"),
			Description:        getField(row, headerIndex, "description"),
			VideoURL:           getField(row, headerIndex, "video_url"),
			Duration:           parseInt(getField(row, headerIndex, "duration_seconds")),
			Order:              parseInt(getField(row, headerIndex, "order")),
			DurationNormalized: true,
		}
		lesson.VideoProvider = courseModels.DetectProvider(lesson.VideoURL)

		if lesson.CourseID == 0 || lesson.Title == "" || lesson.VideoURL == "" {
			skipped++
			continue
		}

		var existing courseModels.Lesson
		result := db.Where("course_id = ? AND order_index = ? AND is_deleted = ?", lesson.CourseID, lesson.Order, false).First(&existing)
		if result.Error != nil {
			if err := db.Create(&lesson).Error; err != nil {
				log.Printf("Error inserting lesson %q: %v", lesson.Title, err)
				continue
			}
			inserted++
		} else {
			if err := db.Model(&existing).Updates(map[string]interface{}{
				"title":               lesson.Title,
				"description":         lesson.Description,
				"video_url":           lesson.VideoURL,
				"video_provider":      lesson.VideoProvider,
				"duration":            lesson.Duration,
				"duration_normalized": true,
			}).Error; err != nil {
				log.Printf("Error updating lesson %q: %v", lesson.Title, err)
				continue
			}
			updated++
		}
		touched[lesson.CourseID] = true
	}

	for courseID := range touched {
		var total int64
		db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).Count(&total)
		db.Model(&courseModels.Course{}).Where("id = ?", courseID).Update("total_lessons", total)

		var userIDs []uint
		db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Pluck("user_id", &userIDs)
		for _, uid := range userIDs {
			if _, err := progresssvc.RecalculateEnrollment(db, uid, courseID); err != nil {
				log.Printf("Error recalculating enrollment user=%d course=%d: %v", uid, courseID, err)
			}
		}
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
