package stats

import (
	"testing"

	"tracetime/internal/types"
)

func record(app string, duration int64, primary bool, details ...*types.ActivityRecord) *types.ActivityRecord {
	return &types.ActivityRecord{
		AppName:   app,
		Duration:  duration,
		IsPrimary: primary,
		Details:   details,
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00h 00m 00s"},
		{4, "00h 00m 04s"},
		{64, "00h 01m 04s"},
		{7384, "02h 03m 04s"},
		{90000, "25h 00m 00s"},
		{-5, "00h 00m 00s"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.seconds); got != tt.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestAggregate_FlatKeepsPrimaryOnly(t *testing.T) {
	t.Parallel()

	raw := []*types.ActivityRecord{
		record("chrome", 100, true),
		record("spotify", 500, false),
		record("code", 300, true),
	}

	view := Aggregate(raw, false, nil)

	if len(view.Records) != 2 {
		t.Fatalf("expected 2 primary records, got %d", len(view.Records))
	}
	if view.Records[0].AppName != "code" || view.Records[1].AppName != "chrome" {
		t.Errorf("expected descending order code, chrome; got %s, %s",
			view.Records[0].AppName, view.Records[1].AppName)
	}
	if view.TotalSeconds != 400 {
		t.Errorf("expected total 400, got %d", view.TotalSeconds)
	}
}

func TestAggregate_DetailedMergesPrimaryAndBackground(t *testing.T) {
	t.Parallel()

	raw := []*types.ActivityRecord{
		record("spotify", 200, true, record("spotify", 200, true)),
		record("spotify", 300, false, record("spotify", 300, false)),
		record("chrome", 100, true, record("chrome", 100, true)),
	}

	view := Aggregate(raw, true, nil)

	if len(view.Records) != 2 {
		t.Fatalf("expected spotify rows to merge, got %d records", len(view.Records))
	}
	merged := view.Records[0]
	if merged.AppName != "spotify" || merged.Duration != 500 {
		t.Errorf("expected merged spotify with 500s first, got %s/%d", merged.AppName, merged.Duration)
	}
	if len(merged.Details) != 2 {
		t.Errorf("expected merged breakdown of 2 rows, got %d", len(merged.Details))
	}
	if view.TotalSeconds != 600 {
		t.Errorf("expected total 600, got %d", view.TotalSeconds)
	}
}

func TestAggregate_BarWidthScaling(t *testing.T) {
	t.Parallel()

	raw := []*types.ActivityRecord{
		record("code", 400, true),
		record("chrome", 100, true),
	}

	view := Aggregate(raw, false, nil)

	if view.Records[0].BarWidth != 400 {
		t.Errorf("longest bar should span the full width, got %v", view.Records[0].BarWidth)
	}
	if view.Records[1].BarWidth != 100 {
		t.Errorf("expected proportional width 100, got %v", view.Records[1].BarWidth)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	t.Parallel()

	view := Aggregate(nil, false, nil)
	if len(view.Records) != 0 {
		t.Errorf("expected no records, got %d", len(view.Records))
	}
	if view.TotalLabel != "00h 00m 00s" {
		t.Errorf("expected zero label, got %q", view.TotalLabel)
	}
}

func TestAggregate_ZeroDurationsDoNotDivideByZero(t *testing.T) {
	t.Parallel()

	view := Aggregate([]*types.ActivityRecord{record("chrome", 0, true)}, false, nil)
	if view.Records[0].BarWidth != 0 {
		t.Errorf("zero duration should yield zero width, got %v", view.Records[0].BarWidth)
	}
}

func TestAggregate_ExpandedFlag(t *testing.T) {
	t.Parallel()

	raw := []*types.ActivityRecord{
		record("chrome", 100, true),
		record("code", 50, true),
	}

	view := Aggregate(raw, false, map[string]bool{"chrome": true})

	if !view.Records[0].IsExpanded {
		t.Error("chrome should be marked expanded")
	}
	if view.Records[1].IsExpanded {
		t.Error("code should not be marked expanded")
	}
}

func TestAggregate_LabelsApplied(t *testing.T) {
	t.Parallel()

	raw := []*types.ActivityRecord{
		record("chrome", 7384, true, record("chrome", 7384, true)),
	}

	view := Aggregate(raw, false, nil)

	if view.Records[0].TimeLabel != "02h 03m 04s" {
		t.Errorf("unexpected time label %q", view.Records[0].TimeLabel)
	}
	if view.Records[0].Details[0].TimeLabel != "02h 03m 04s" {
		t.Errorf("unexpected detail label %q", view.Records[0].Details[0].TimeLabel)
	}
}
