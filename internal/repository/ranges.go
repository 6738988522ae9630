package repository

// Named stats ranges. Day boundaries are shifted back by four hours so that
// sessions running past midnight count toward the previous day.
const (
	RangeToday      = "today"
	RangeYesterday  = "yesterday"
	RangeLast24h    = "last-24-hours"
	RangeWeek       = "week"
	RangeLast30Days = "last-30-days"
	RangeAllTime    = "all-time"
)

// Ranges lists the recognized range labels in display order.
func Ranges() []string {
	return []string{
		RangeToday,
		RangeYesterday,
		RangeLast24h,
		RangeWeek,
		RangeLast30Days,
		RangeAllTime,
	}
}

// rangeCondition maps a range label to its SQL predicate. Unrecognized
// labels fall back to today.
func rangeCondition(rng string) string {
	switch rng {
	case RangeYesterday:
		return "date(timestamp, '-4 hours') = date('now', 'localtime', '-4 hours', '-1 day')"
	case RangeLast24h:
		return "timestamp >= datetime('now', 'localtime', '-1 day')"
	case RangeWeek:
		return "date(timestamp, '-4 hours') >= date('now', 'localtime', '-4 hours', '-7 days')"
	case RangeLast30Days:
		return "date(timestamp, '-4 hours') >= date('now', 'localtime', '-4 hours', '-30 days')"
	case RangeAllTime:
		return "1=1"
	case RangeToday:
		fallthrough
	default:
		return "date(timestamp, '-4 hours') = date('now', 'localtime', '-4 hours')"
	}
}
