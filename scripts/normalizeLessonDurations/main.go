package main

import (
	"log"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"
)

// One-off migration: legacy lesson durations were stored in minutes or seconds.
// Afterwards every lesson duration is in seconds.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	changed, err := progresssvc.NormalizeLessonDurations(database.Database.Db)
	if err != nil {
		log.Fatalf("Normalization failed after %d lessons: %v", changed, err)
	}

	log.Printf("=== Normalization Complete ===")
	log.Printf("Lessons converted: %d", changed)
}
