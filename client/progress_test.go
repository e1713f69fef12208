package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu                sync.Mutex
	current, duration float64
	playing           bool
}

func (p *fakePlayer) Position() (float64, float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.duration, p.playing
}

func (p *fakePlayer) set(current float64, playing bool) {
	p.mu.Lock()
	p.current, p.playing = current, playing
	p.mu.Unlock()
}

type progressServer struct {
	mu      sync.Mutex
	reports []ProgressUpdate
	status  int
}

func (s *progressServer) last() (ProgressUpdate, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return ProgressUpdate{}, 0
	}
	return s.reports[len(s.reports)-1], len(s.reports)
}

func newProgressServer(t *testing.T, status int) (*progressServer, *Client) {
	t.Helper()
	fake := &progressServer{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lessons/5/progress", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var u ProgressUpdate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&u))
		fake.mu.Lock()
		fake.reports = append(fake.reports, u)
		fake.mu.Unlock()
		if fake.status != http.StatusOK {
			respond(t, w, fake.status, nil)
			return
		}
		respond(t, w, http.StatusOK, map[string]interface{}{
			"progress":   map[string]interface{}{"lesson_id": 5, "watched_duration": u.WatchedDuration, "is_completed": u.IsCompleted},
			"enrollment": map[string]interface{}{"course_id": 2, "progress": 25},
		})
	}))
	t.Cleanup(srv.Close)
	return fake, New(srv.URL+"/api", "token")
}

func TestIntervalFor(t *testing.T) {
	assert.Equal(t, 5*time.Second, IntervalFor(courseModels.ProviderYouTube))
	assert.Equal(t, 5*time.Second, IntervalFor(courseModels.ProviderVimeo))
	assert.Equal(t, 10*time.Second, IntervalFor(courseModels.ProviderNative))
	assert.Equal(t, 10*time.Second, IntervalFor(""))
}

func TestProgressReporterReportsWhilePlaying(t *testing.T) {
	fake, c := newProgressServer(t, http.StatusOK)
	player := &fakePlayer{duration: 100}
	player.set(42.7, true)

	var updates atomic.Int32
	r := &ProgressReporter{
		Client: c, Source: player, LessonID: 5, CourseID: 2,
		Interval:  5 * time.Millisecond,
		OnUpdated: func(*ProgressResult) { updates.Add(1) },
	}
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { _, n := fake.last(); return n >= 2 }, 2*time.Second, 5*time.Millisecond)
	got, _ := fake.last()
	assert.Equal(t, ProgressUpdate{WatchedDuration: 42, IsCompleted: false, CourseID: 2}, got)
	assert.GreaterOrEqual(t, updates.Load(), int32(1))

	player.set(91, true)
	require.Eventually(t, func() bool { u, _ := fake.last(); return u.IsCompleted }, 2*time.Second, 5*time.Millisecond)
	got, _ = fake.last()
	assert.Equal(t, 91, got.WatchedDuration)
}

func TestProgressReporterSkipsPausedPlayer(t *testing.T) {
	fake, c := newProgressServer(t, http.StatusOK)
	player := &fakePlayer{duration: 100}
	player.set(10, false)

	r := &ProgressReporter{Client: c, Source: player, LessonID: 5, CourseID: 2, Interval: 5 * time.Millisecond}
	r.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	r.Stop()

	_, n := fake.last()
	assert.Zero(t, n)
}

func TestProgressReporterEndedForcesFullDuration(t *testing.T) {
	fake, c := newProgressServer(t, http.StatusOK)
	player := &fakePlayer{duration: 299.4}
	player.set(120, false)

	r := &ProgressReporter{Client: c, Source: player, LessonID: 5, CourseID: 2}
	r.Ended(context.Background())

	got, n := fake.last()
	require.Equal(t, 1, n)
	assert.Equal(t, ProgressUpdate{WatchedDuration: 300, IsCompleted: true, CourseID: 2}, got)
}

func TestProgressReporterStopsOnUnauthorized(t *testing.T) {
	fake, c := newProgressServer(t, http.StatusUnauthorized)
	player := &fakePlayer{duration: 100}
	player.set(10, true)

	var calls atomic.Int32
	r := &ProgressReporter{
		Client: c, Source: player, LessonID: 5, CourseID: 2,
		Interval:       5 * time.Millisecond,
		OnUnauthorized: func() { calls.Add(1) },
	}
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	_, n := fake.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(1), calls.Load())
}

func TestProgressReporterDropsFailedReports(t *testing.T) {
	fake, c := newProgressServer(t, http.StatusInternalServerError)
	player := &fakePlayer{duration: 100}
	player.set(10, true)

	var unauthorized atomic.Int32
	r := &ProgressReporter{
		Client: c, Source: player, LessonID: 5, CourseID: 2,
		Interval:       5 * time.Millisecond,
		OnUnauthorized: func() { unauthorized.Add(1) },
	}
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { _, n := fake.last(); return n >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, unauthorized.Load())
}
