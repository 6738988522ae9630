package types

// ActivityRecord represents accumulated time for one (app, title, primary)
// key. It doubles as the row shape for stats queries, where Details carries
// the per-title breakdown and WindowTitle is empty on grouped rows.
type ActivityRecord struct {
	ID          int64             `json:"id" db:"id"`
	AppName     string            `json:"appName" db:"app_name"`
	WindowTitle string            `json:"windowTitle" db:"window_title"`
	Duration    int64             `json:"duration" db:"duration"` // in seconds
	IsPrimary   bool              `json:"isPrimary" db:"is_primary"`
	Details     []*ActivityRecord `json:"details,omitempty"`

	// Presentation fields, recomputed by the aggregator / tick loop and
	// never persisted.
	CurrentStatus string  `json:"currentStatus,omitempty"`
	TimeLabel     string  `json:"timeLabel,omitempty"`
	BarWidth      float64 `json:"barWidth,omitempty"`
	IsExpanded    bool    `json:"isExpanded,omitempty"`
	IconData      string  `json:"iconData,omitempty"`
}

// FullDisplayTitle is the title shown in the recent-activity list: the
// window title plus the transient per-tick status suffix.
func (r *ActivityRecord) FullDisplayTitle() string {
	return r.WindowTitle + r.CurrentStatus
}

// HeatMapDay is one cell of the trailing-30-day heat map. Derived on each
// stats refresh, never persisted.
type HeatMapDay struct {
	Date    string  `json:"date"` // YYYY-MM-DD, shifted day boundary
	Hours   float64 `json:"hours"`
	Color   string  `json:"color"`
	Tooltip string  `json:"tooltip"`
}

// CurrentActivity is the "what is happening right now" display state.
type CurrentActivity struct {
	AppName string `json:"appName"`
	Title   string `json:"title"`
	State   string `json:"state"` // active, audio, idle, none
}
