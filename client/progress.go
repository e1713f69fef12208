package client

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
)

// CompletionThreshold mirrors the server: 90% watched completes a lesson.
const CompletionThreshold = 0.9

// PlaybackSource reports the player position in seconds.
type PlaybackSource interface {
	Position() (current, duration float64, playing bool)
}

// IntervalFor returns the reporting interval of a video provider. Embedded players are
// polled more often than native video.
func IntervalFor(provider string) time.Duration {
	switch provider {
	case courseModels.ProviderYouTube, courseModels.ProviderVimeo:
		return 5 * time.Second
	default:
		return 10 * time.Second
	}
}

// ProgressReporter posts watch progress of one lesson while it plays. Failed reports are
// logged and dropped; the next tick carries the newer position anyway.
type ProgressReporter struct {
	Client   *Client
	Source   PlaybackSource
	LessonID uint
	CourseID uint
	Provider string

	// Interval overrides IntervalFor(Provider) when set.
	Interval time.Duration
	// OnUpdated runs after every stored report, e.g. to refresh the course progress view.
	OnUpdated func(*ProgressResult)
	// OnUnauthorized runs once when the API rejects the session; the reporter stops.
	OnUnauthorized func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start begins periodic reporting. Calling Start on a running reporter restarts it.
func (r *ProgressReporter) Start(ctx context.Context) {
	r.Stop()

	interval := r.Interval
	if interval <= 0 {
		interval = IntervalFor(r.Provider)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, duration, playing := r.Source.Position()
				if !playing {
					continue
				}
				watched := int(math.Floor(current))
				r.report(ctx, watched, isCompleted(watched, duration))
			}
		}
	}()
}

// Stop cancels the ticker and waits for an in-flight report to finish.
func (r *ProgressReporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Ended reports the end of the video: the full duration, completed.
func (r *ProgressReporter) Ended(ctx context.Context) {
	_, duration, _ := r.Source.Position()
	r.report(ctx, int(math.Ceil(duration)), true)
}

func (r *ProgressReporter) report(ctx context.Context, watched int, completed bool) {
	res, err := r.Client.UpdateLessonProgress(ctx, r.LessonID, ProgressUpdate{
		WatchedDuration: watched,
		IsCompleted:     completed,
		CourseID:        r.CourseID,
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			log.Printf("[PLAYER] lesson=%d session expired, stopping progress reports", r.LessonID)
			if r.OnUnauthorized != nil {
				r.OnUnauthorized()
			}
			// Stop waits for this goroutine, so cancel without waiting.
			r.mu.Lock()
			if r.cancel != nil {
				r.cancel()
			}
			r.mu.Unlock()
			return
		}
		if ctx.Err() == nil {
			log.Printf("[PLAYER] lesson=%d progress report dropped: %v", r.LessonID, err)
		}
		return
	}
	if r.OnUpdated != nil {
		r.OnUpdated(res)
	}
}

func isCompleted(watched int, duration float64) bool {
	if duration <= 0 {
		return false
	}
	return float64(watched) >= CompletionThreshold*duration
}
