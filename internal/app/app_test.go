package app

import (
	"context"
	"strings"
	"testing"

	"tracetime/internal/classifier"
	"tracetime/internal/platform"
	"tracetime/internal/repository"
	"tracetime/internal/settings"
	"tracetime/internal/testutils"
	"tracetime/internal/types"
)

// fakeProbe returns scripted desktop state and records media-title
// lookups.
type fakeProbe struct {
	window     *platform.WindowInfo
	idle       float64
	audio      bool
	audioApp   string
	mediaTitle string
	mediaCalls [][2]string
	icons      map[string]string
}

func (p *fakeProbe) ActiveWindow() (*platform.WindowInfo, bool) {
	return p.window, p.window != nil
}
func (p *fakeProbe) IdleSeconds() float64 { return p.idle }
func (p *fakeProbe) AudioPeaking() bool   { return p.audio }
func (p *fakeProbe) AudioSessionApp() (string, bool) {
	return p.audioApp, p.audioApp != ""
}
func (p *fakeProbe) BackgroundMediaTitle(audioApp, activeTitle string) (string, bool) {
	p.mediaCalls = append(p.mediaCalls, [2]string{audioApp, activeTitle})
	return p.mediaTitle, p.mediaTitle != ""
}
func (p *fakeProbe) AppIcon(exePath string) string { return p.icons[exePath] }

// fakeRepo is an in-memory ActivityRepository.
type fakeRepo struct {
	rows []*types.ActivityRecord
}

var _ repository.ActivityRepository = (*fakeRepo)(nil)

func (r *fakeRepo) IncrementLatest(_ context.Context, app, title string, isPrimary bool) (bool, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.AppName == app && row.WindowTitle == title && row.IsPrimary == isPrimary {
			row.Duration++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Insert(_ context.Context, record *types.ActivityRecord) (int64, error) {
	stored := &types.ActivityRecord{
		ID:          int64(len(r.rows) + 1),
		AppName:     record.AppName,
		WindowTitle: record.WindowTitle,
		Duration:    1,
		IsPrimary:   record.IsPrimary,
	}
	r.rows = append(r.rows, stored)
	record.ID = stored.ID
	return stored.ID, nil
}

func (r *fakeRepo) GetStats(_ context.Context, _ string) ([]*types.ActivityRecord, error) {
	out := make([]*types.ActivityRecord, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, &types.ActivityRecord{
			AppName:   row.AppName,
			Duration:  row.Duration,
			IsPrimary: row.IsPrimary,
			Details: []*types.ActivityRecord{{
				AppName:     row.AppName,
				WindowTitle: row.WindowTitle,
				Duration:    row.Duration,
			}},
		})
	}
	return out, nil
}

func (r *fakeRepo) GetDailyTotals(_ context.Context) map[string]int64 {
	return map[string]int64{}
}

func (r *fakeRepo) GetTotalToday(_ context.Context, includeBackground bool) (int64, error) {
	var total int64
	for _, row := range r.rows {
		if row.IsPrimary || includeBackground {
			total += row.Duration
		}
	}
	return total, nil
}

func newTestApp(probe *fakeProbe) (*App, *fakeRepo) {
	repo := &fakeRepo{}
	return New(probe, repo, settings.NewMemoryStore(), &testutils.CaptureLogger{}), repo
}

func tick(t *testing.T, a *App, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		a.processTick(context.Background())
	}
}

func TestApp_ForegroundTicksAccumulateOneRow(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{window: &platform.WindowInfo{AppName: "chrome", Title: "Inbox"}}
	a, repo := newTestApp(probe)

	tick(t, a, 3)

	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(repo.rows))
	}
	if repo.rows[0].Duration != 3 {
		t.Errorf("expected 3 credited seconds, got %d", repo.rows[0].Duration)
	}

	recent := a.Recent()
	if len(recent) != 1 || recent[0].Duration != 3 {
		t.Fatalf("unexpected recent list: %+v", recent)
	}
	if recent[0].CurrentStatus != statusFocused {
		t.Errorf("expected focused status suffix, got %q", recent[0].CurrentStatus)
	}
	if a.TodaySeconds() != 3 {
		t.Errorf("expected live total 3, got %d", a.TodaySeconds())
	}
}

func TestApp_BackgroundAudioGetsOwnRow(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{
		window:   &platform.WindowInfo{AppName: "code", Title: "main.go"},
		audio:    true,
		audioApp: "spotify",
	}
	a, repo := newTestApp(probe)

	tick(t, a, 2)

	if len(repo.rows) != 2 {
		t.Fatalf("expected foreground and audio rows, got %d", len(repo.rows))
	}
	var audioRow *types.ActivityRecord
	for _, row := range repo.rows {
		if row.AppName == "spotify" {
			audioRow = row
		}
	}
	if audioRow == nil {
		t.Fatal("expected a spotify row")
	}
	if audioRow.IsPrimary {
		t.Error("background audio must not be primary while a window is focused")
	}
	if audioRow.WindowTitle != "spotify (audio)" {
		t.Errorf("expected synthetic audio title, got %q", audioRow.WindowTitle)
	}
	if audioRow.Duration != 2 {
		t.Errorf("expected 2 credited seconds, got %d", audioRow.Duration)
	}
}

func TestApp_ForegroundMediaTitleStaysWithForegroundApp(t *testing.T) {
	t.Parallel()

	// A media page focused in the browser while another app plays audio:
	// the title lookup is scoped to the audio app and the focused title,
	// and when it finds nothing the audio row falls back to its synthetic
	// label instead of borrowing the browser tab's title.
	probe := &fakeProbe{
		window:   &platform.WindowInfo{AppName: "chrome", Title: "Video Essay - YouTube"},
		audio:    true,
		audioApp: "spotify",
	}
	a, repo := newTestApp(probe)

	tick(t, a, 1)

	if len(probe.mediaCalls) != 1 {
		t.Fatalf("expected one media-title lookup, got %d", len(probe.mediaCalls))
	}
	if probe.mediaCalls[0] != [2]string{"spotify", "Video Essay - YouTube"} {
		t.Errorf("lookup should carry the audio app and focused title, got %v", probe.mediaCalls[0])
	}

	var audioRow *types.ActivityRecord
	for _, row := range repo.rows {
		if row.AppName == "spotify" {
			audioRow = row
		}
	}
	if audioRow == nil {
		t.Fatal("expected a spotify row")
	}
	if audioRow.WindowTitle != "spotify (audio)" {
		t.Errorf("audio row must not borrow the focused tab's title, got %q", audioRow.WindowTitle)
	}
}

func TestApp_TitleChangeStartsNewRow(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{window: &platform.WindowInfo{AppName: "chrome", Title: "Inbox"}}
	a, repo := newTestApp(probe)

	tick(t, a, 2)
	probe.window = &platform.WindowInfo{AppName: "chrome", Title: "Docs"}
	tick(t, a, 1)

	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 rows after title change, got %d", len(repo.rows))
	}

	recent := a.Recent()
	if recent[0].WindowTitle != "Docs" {
		t.Errorf("newest activity should lead the recent list, got %q", recent[0].WindowTitle)
	}
}

func TestApp_ReturningToKnownActivityPromotes(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{window: &platform.WindowInfo{AppName: "chrome", Title: "Inbox"}}
	a, repo := newTestApp(probe)

	tick(t, a, 1)
	probe.window = &platform.WindowInfo{AppName: "code", Title: "main.go"}
	tick(t, a, 1)
	probe.window = &platform.WindowInfo{AppName: "CHROME", Title: "Inbox"}
	tick(t, a, 1)

	// Case-insensitive app match reuses the original row.
	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(repo.rows))
	}

	recent := a.Recent()
	if recent[0].AppName != "chrome" || recent[0].Duration != 2 {
		t.Errorf("chrome should be promoted with 2s, got %+v", recent[0])
	}
}

func TestApp_IdleSuspendsAttribution(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{
		window: &platform.WindowInfo{AppName: "chrome", Title: "Inbox"},
		idle:   301,
	}
	a, repo := newTestApp(probe)

	// Grace ticks still count, then attribution stops.
	tick(t, a, 20)

	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
	if repo.rows[0].Duration != 15 {
		t.Errorf("expected exactly the grace seconds credited, got %d", repo.rows[0].Duration)
	}
	if a.Current().State != classifier.StateIdle {
		t.Errorf("expected idle display state, got %q", a.Current().State)
	}
}

func TestApp_NoWindowNoAudio(t *testing.T) {
	t.Parallel()

	a, repo := newTestApp(&fakeProbe{})

	tick(t, a, 3)

	if len(repo.rows) != 0 {
		t.Errorf("expected nothing stored, got %d rows", len(repo.rows))
	}
	if a.Current().State != classifier.StateNone {
		t.Errorf("expected none state, got %q", a.Current().State)
	}
}

func TestApp_PrivacyModeHidesTitles(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{window: &platform.WindowInfo{AppName: "chrome", Title: "Secret Document"}}
	a, _ := newTestApp(probe)

	if err := a.settings.SetPrivacyMode(true); err != nil {
		t.Fatalf("SetPrivacyMode failed: %v", err)
	}
	tick(t, a, 1)

	current := a.Current()
	if current.AppName != "chrome" {
		t.Errorf("app name should stay visible, got %q", current.AppName)
	}
	if current.Title != "" {
		t.Errorf("title should be hidden, got %q", current.Title)
	}

	view, err := a.Stats(context.Background(), repository.RangeToday, true, nil)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	for _, rec := range view.Records {
		for _, detail := range rec.Details {
			if detail.WindowTitle != "" {
				t.Errorf("detail title should be hidden, got %q", detail.WindowTitle)
			}
		}
	}
}

func TestApp_StatsAttachIcons(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{
		window: &platform.WindowInfo{AppName: "Chrome", Title: "Inbox", ExePath: `C:\chrome.exe`},
		icons:  map[string]string{`C:\chrome.exe`: "data:image/png;base64,abc"},
	}
	a, _ := newTestApp(probe)

	tick(t, a, 1)

	view, err := a.Stats(context.Background(), repository.RangeToday, false, nil)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if len(view.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(view.Records))
	}
	if !strings.HasPrefix(view.Records[0].IconData, "data:image/png;base64,") {
		t.Errorf("expected cached icon data, got %q", view.Records[0].IconData)
	}
}

func TestApp_TitlesAreNormalizedBeforeStorage(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{window: &platform.WindowInfo{AppName: "firefox", Title: "(2) Feed / X"}}
	a, repo := newTestApp(probe)

	tick(t, a, 1)

	if repo.rows[0].WindowTitle != "Feed (@X)" {
		t.Errorf("expected normalized title, got %q", repo.rows[0].WindowTitle)
	}
}
