// Package scheduler runs the periodic jobs of the exam engine.
package scheduler

import (
	"log"
	"time"

	"github.com/Umairanwarr/hadith-sub001/services/examsvc"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultSpec sweeps abandoned attempts every minute.
const DefaultSpec = "@every 1m"

// InitializeAttemptScheduler starts the job that auto-submits exam attempts whose
// deadline passed without a submission. The caller stops the returned cron.
func InitializeAttemptScheduler(db *gorm.DB, spec string) (*cron.Cron, error) {
	log.Println("[ATTEMPT-SCHEDULER] Initializing attempt scheduler...")
	if spec == "" {
		spec = DefaultSpec
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { SweepAttempts(db) }); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[ATTEMPT-SCHEDULER] Attempt scheduler started - runs %s", spec)
	return c, nil
}

// SweepAttempts finalizes every expired in-progress attempt.
func SweepAttempts(db *gorm.DB) {
	n, err := examsvc.ExpireAbandoned(db, time.Now())
	if err != nil {
		log.Printf("[ATTEMPT-SCHEDULER] Error expiring attempts: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[ATTEMPT-SCHEDULER] Auto-submitted %d expired attempts", n)
	}
}
