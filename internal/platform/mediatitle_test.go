package platform

import "testing"

func pick(activeTitle string, titles ...string) string {
	p := &mediaTitlePicker{activeTitle: activeTitle}
	for _, title := range titles {
		if !p.consider(title) {
			break
		}
	}
	return p.found
}

func TestMediaTitlePicker_PlatformTitleWins(t *testing.T) {
	t.Parallel()

	got := pick("", "Settings", "Lo-fi Beats - Spotify")
	if got != "Lo-fi Beats - Spotify" {
		t.Errorf("platform title should replace the plain fallback, got %q", got)
	}
}

func TestMediaTitlePicker_PlainTitleFallback(t *testing.T) {
	t.Parallel()

	got := pick("", "Spotify Free")
	if got != "Spotify Free" {
		t.Errorf("expected first owned title as fallback, got %q", got)
	}

	// A later plain title must not replace an earlier one.
	got = pick("", "First Window", "Second Window")
	if got != "First Window" {
		t.Errorf("expected first plain title to stick, got %q", got)
	}
}

func TestMediaTitlePicker_ActiveTitleExcluded(t *testing.T) {
	t.Parallel()

	// The focused browser tab's title must never label the audio app,
	// even when it mentions a media platform.
	got := pick("Talk - YouTube", "Talk - YouTube")
	if got != "" {
		t.Errorf("active title should be skipped, got %q", got)
	}

	got = pick("Talk - YouTube", "Talk - YouTube", "Mixer")
	if got != "Mixer" {
		t.Errorf("expected the non-active title, got %q", got)
	}
}

func TestMediaTitlePicker_KickStopsScan(t *testing.T) {
	t.Parallel()

	p := &mediaTitlePicker{}
	if p.consider("Stream - Kick") {
		t.Error("a kick match should stop the scan")
	}
	if p.found != "Stream - Kick" {
		t.Errorf("kick title should be kept, got %q", p.found)
	}
}

func TestMediaTitlePicker_EmptyTitlesIgnored(t *testing.T) {
	t.Parallel()

	if got := pick("", "", ""); got != "" {
		t.Errorf("empty titles should not be picked, got %q", got)
	}
}
