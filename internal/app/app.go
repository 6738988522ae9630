// Package app drives the 1 Hz sampling loop and holds the in-memory
// session state the UI surfaces read from.
package app

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"tracetime/internal/classifier"
	"tracetime/internal/infrastructure/logging"
	"tracetime/internal/platform"
	"tracetime/internal/repository"
	"tracetime/internal/settings"
	"tracetime/internal/stats"
	"tracetime/internal/titles"
	"tracetime/internal/types"
)

const (
	tickInterval = time.Second

	// Per-tick database work must finish well before the next tick fires.
	tickTimeout = 5 * time.Second

	// The recent list only serves the UI; older entries fall off.
	maxRecentEntries = 100
)

// Live-status suffixes appended to recent-list titles while the entry is
// being credited.
const (
	statusFocused    = " (focused)"
	statusBackground = " (background)"
)

// App owns the tracker session: it samples the desktop once per second,
// classifies the snapshot, and persists the attributed seconds.
type App struct {
	probe    platform.Probe
	class    *classifier.Classifier
	repo     repository.ActivityRepository
	settings settings.Store
	logger   logging.Logger

	mu           sync.RWMutex
	recent       []*types.ActivityRecord
	current      types.CurrentActivity
	todaySeconds int64
	icons        map[string]string

	stop chan struct{}
	done chan struct{}
}

// New wires an App from its collaborators.
func New(probe platform.Probe, repo repository.ActivityRepository, store settings.Store, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &App{
		probe:    probe,
		class:    classifier.New(),
		repo:     repo,
		settings: store,
		logger:   logger,
		current:  types.CurrentActivity{State: classifier.StateNone},
		icons:    make(map[string]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling loop.
func (a *App) Start() {
	go a.loop()
}

// Stop terminates the sampling loop and waits for the current tick to
// finish.
func (a *App) Stop() {
	close(a.stop)
	<-a.done
}

func (a *App) loop() {
	defer close(a.done)

	// COM is apartment-bound, so the audio probes must stay on one thread.
	runtime.LockOSThread()
	if err := platform.InitCOM(); err != nil {
		a.logger.Warn("COM initialization failed, audio tracking disabled", "error", err)
	} else {
		defer platform.ReleaseCOM()
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.safeTick()
		}
	}
}

// safeTick runs one tick with a panic guard so a probe or driver fault
// costs one sample, not the whole session.
func (a *App) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Tick aborted by panic", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	a.processTick(ctx)
}

// processTick samples the desktop, classifies the snapshot, and records
// the resulting attributions.
func (a *App) processTick(ctx context.Context) {
	snapshot, window := a.sample()
	result := a.class.Tick(snapshot)

	a.clearStatuses()
	for _, attr := range result.Attributions {
		a.recordAttribution(ctx, attr)
	}
	if window != nil {
		a.cacheIcon(window.AppName, window.ExePath)
	}

	total, err := a.repo.GetTotalToday(ctx, false)
	if err != nil {
		a.logger.Warn("Today's total unavailable", "error", err)
		total = -1
	}

	a.mu.Lock()
	a.current = a.displayState(result.Display)
	if total >= 0 {
		a.todaySeconds = total
	}
	a.mu.Unlock()
}

// sample gathers one classifier snapshot from the probe.
func (a *App) sample() (classifier.Snapshot, *platform.WindowInfo) {
	var s classifier.Snapshot

	window, ok := a.probe.ActiveWindow()
	if ok && window.AppName != "" {
		s.WindowValid = true
		s.AppName = window.AppName
		s.RawTitle = window.Title
	} else {
		window = nil
	}

	s.IdleSeconds = a.probe.IdleSeconds()

	if a.probe.AudioPeaking() {
		s.AudioPlaying = true
		if audioApp, ok := a.probe.AudioSessionApp(); ok {
			s.AudioApp = audioApp
			if title, ok := a.probe.BackgroundMediaTitle(audioApp, s.RawTitle); ok {
				s.AudioTitle = titles.FormatTwitterTitle(titles.Clean(title))
			}
		}
	}
	return s, window
}

// recordAttribution credits one second to the attribution's key: an entry
// already in the recent list gets its row incremented, anything else gets
// a fresh row.
func (a *App) recordAttribution(ctx context.Context, attr classifier.Attribution) {
	status := statusFocused
	if attr.IsBackground {
		status = statusBackground
	}

	if rec := a.findRecent(attr); rec != nil {
		matched, err := a.repo.IncrementLatest(ctx, rec.AppName, rec.WindowTitle, rec.IsPrimary)
		if err != nil {
			logging.LogStoreError(a.logger, err, "IncrementLatest", map[string]interface{}{"app": rec.AppName})
			return
		}
		if matched {
			a.mu.Lock()
			rec.Duration++
			rec.CurrentStatus = status
			a.promote(rec)
			a.mu.Unlock()
			return
		}
		// The backing row is gone (log rotated or database replaced);
		// fall through and start a new one.
	}

	rec := &types.ActivityRecord{
		AppName:       attr.AppName,
		WindowTitle:   attr.Title,
		Duration:      1,
		IsPrimary:     attr.IsPrimary,
		CurrentStatus: status,
	}
	if _, err := a.repo.Insert(ctx, rec); err != nil {
		logging.LogStoreError(a.logger, err, "Insert", map[string]interface{}{"app": attr.AppName})
		return
	}

	a.mu.Lock()
	a.recent = append([]*types.ActivityRecord{rec}, a.recent...)
	if len(a.recent) > maxRecentEntries {
		a.recent = a.recent[:maxRecentEntries]
	}
	a.mu.Unlock()
}

// findRecent locates the session entry for an attribution key: app names
// match case-insensitively, titles exactly, and the primary flag must
// agree.
func (a *App) findRecent(attr classifier.Attribution) *types.ActivityRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, rec := range a.recent {
		if strings.EqualFold(rec.AppName, attr.AppName) &&
			rec.WindowTitle == attr.Title &&
			rec.IsPrimary == attr.IsPrimary {
			return rec
		}
	}
	return nil
}

// promote moves a record to the front of the recent list. Callers hold
// the lock.
func (a *App) promote(rec *types.ActivityRecord) {
	for i, r := range a.recent {
		if r == rec {
			copy(a.recent[1:i+1], a.recent[:i])
			a.recent[0] = rec
			return
		}
	}
}

// clearStatuses drops last tick's live-status suffixes.
func (a *App) clearStatuses() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.recent {
		rec.CurrentStatus = ""
	}
}

// cacheIcon memoizes the app's icon data URL, keyed by lowercased name.
func (a *App) cacheIcon(appName, exePath string) {
	if appName == "" || exePath == "" {
		return
	}
	key := strings.ToLower(appName)

	a.mu.Lock()
	_, known := a.icons[key]
	a.mu.Unlock()
	if known {
		return
	}

	icon := a.probe.AppIcon(exePath)
	a.mu.Lock()
	a.icons[key] = icon
	a.mu.Unlock()
}

// displayState applies the privacy preference to the classifier's display
// suggestion. Callers hold no lock; settings reads are independently safe.
func (a *App) displayState(d classifier.Display) types.CurrentActivity {
	title := d.Title
	if a.settings.PrivacyMode() {
		title = ""
	}
	return types.CurrentActivity{
		AppName: d.AppName,
		Title:   title,
		State:   d.State,
	}
}

// Current returns the live activity display state.
func (a *App) Current() types.CurrentActivity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// TodaySeconds returns today's persisted primary total as of the last
// tick.
func (a *App) TodaySeconds() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.todaySeconds
}

// TodayLabel returns today's total formatted for the tray tooltip.
func (a *App) TodayLabel() string {
	return stats.FormatSeconds(a.TodaySeconds())
}

// Recent returns a copy of the session's recent-activity list, newest
// first.
func (a *App) Recent() []*types.ActivityRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*types.ActivityRecord, len(a.recent))
	copy(out, a.recent)
	return out
}

// Stats builds the aggregated stats view for a range, decorating records
// with cached icons and the privacy preference.
func (a *App) Stats(ctx context.Context, rng string, detailed bool, expanded map[string]bool) (*stats.View, error) {
	raw, err := a.repo.GetStats(ctx, rng)
	if err != nil {
		return nil, err
	}
	view := stats.Aggregate(raw, detailed, expanded)

	privacy := a.settings.PrivacyMode()
	a.mu.RLock()
	for _, rec := range view.Records {
		rec.IconData = a.icons[strings.ToLower(rec.AppName)]
		if privacy {
			for _, detail := range rec.Details {
				detail.WindowTitle = ""
			}
		}
	}
	a.mu.RUnlock()
	return view, nil
}

// HeatMap builds the trailing-30-day activity heat map.
func (a *App) HeatMap(ctx context.Context) []types.HeatMapDay {
	return stats.BuildHeatMap(a.repo.GetDailyTotals(ctx), time.Now())
}
