package stats

import (
	"fmt"
	"sort"

	"tracetime/internal/types"
)

// maxBarWidth is the pixel width a full-length bar maps to.
const maxBarWidth = 400.0

// View is a fully prepared stats view: ranked records with time labels and
// scaled bar widths, plus the filtered total.
type View struct {
	Records      []*types.ActivityRecord `json:"records"`
	TotalSeconds int64                   `json:"totalSeconds"`
	TotalLabel   string                  `json:"totalLabel"`
}

// FormatSeconds renders a duration as "02h 03m 04s". Hours are not capped
// at 24.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, s)
}

// Aggregate turns raw per-(app, primary) stats into a ranked view.
//
// With detailed set, primary and background rows for the same app merge
// into one row with summed duration and concatenated breakdowns; otherwise
// only primary rows survive. Both variants rank by descending duration.
// expanded marks which apps keep their breakdown open in the UI.
func Aggregate(raw []*types.ActivityRecord, detailed bool, expanded map[string]bool) *View {
	var processed []*types.ActivityRecord

	if detailed {
		merged := make(map[string]*types.ActivityRecord)
		var order []string
		for _, rec := range raw {
			existing, ok := merged[rec.AppName]
			if !ok {
				existing = &types.ActivityRecord{
					AppName:   rec.AppName,
					IsPrimary: true,
				}
				merged[rec.AppName] = existing
				order = append(order, rec.AppName)
			}
			existing.Duration += rec.Duration
			existing.Details = append(existing.Details, rec.Details...)
		}
		for _, app := range order {
			processed = append(processed, merged[app])
		}
	} else {
		for _, rec := range raw {
			if rec.IsPrimary {
				processed = append(processed, rec)
			}
		}
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].Duration > processed[j].Duration
	})

	var total int64
	for _, rec := range processed {
		total += rec.Duration
	}

	maxDuration := int64(0)
	for _, rec := range processed {
		if rec.Duration > maxDuration {
			maxDuration = rec.Duration
		}
	}
	if maxDuration <= 0 {
		maxDuration = 1
	}

	for _, rec := range processed {
		rec.TimeLabel = FormatSeconds(rec.Duration)
		rec.BarWidth = float64(rec.Duration) / float64(maxDuration) * maxBarWidth
		rec.IsExpanded = expanded != nil && expanded[rec.AppName]
		for _, detail := range rec.Details {
			detail.TimeLabel = FormatSeconds(detail.Duration)
		}
	}

	return &View{
		Records:      processed,
		TotalSeconds: total,
		TotalLabel:   FormatSeconds(total),
	}
}
