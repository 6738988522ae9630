package stats

import (
	"fmt"
	"time"

	"tracetime/internal/types"
)

// heatMapDays is how many trailing days the heat map covers.
const heatMapDays = 30

// dayShift moves the day boundary to 4 AM so late-night sessions count
// toward the previous day, matching the stored aggregation.
const dayShift = -4 * time.Hour

// Heat map palette, darkest to brightest.
const (
	colorEmpty   = "#212121"
	colorFaint   = "#0E4429"
	colorLow     = "#006D32"
	colorMedium  = "#26A641"
	colorIntense = "#39D353"
)

// BuildHeatMap lays out the trailing 30 shifted days, oldest first, from a
// map of "YYYY-MM-DD" day keys to summed seconds. Days absent from the map
// render as empty cells.
func BuildHeatMap(dailyTotals map[string]int64, now time.Time) []types.HeatMapDay {
	days := make([]types.HeatMapDay, 0, heatMapDays)
	shifted := now.Add(dayShift)

	for i := heatMapDays - 1; i >= 0; i-- {
		day := shifted.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		hours := float64(dailyTotals[key]) / 3600.0

		days = append(days, types.HeatMapDay{
			Date:    key,
			Hours:   hours,
			Color:   colorForHours(hours),
			Tooltip: fmt.Sprintf("%s: %.1fh", key, hours),
		})
	}
	return days
}

// colorForHours buckets a day's total into the palette.
func colorForHours(hours float64) string {
	switch {
	case hours <= 0:
		return colorEmpty
	case hours < 1:
		return colorFaint
	case hours < 3:
		return colorLow
	case hours < 6:
		return colorMedium
	default:
		return colorIntense
	}
}
