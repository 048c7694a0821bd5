package energiapro

import "time"

const dateLayout = "2006-01-02"

// Window is one bounded, inclusive date sub-range of a larger fetch. The
// API rejects ranges wider than its maximum span, so range fetches are
// split into windows and issued sequentially in chronological order.
type Window struct {
	From time.Time
	To   time.Time
}

// SplitRange splits the inclusive date range [from, to] into the minimal
// number of windows no wider than maxSpanDays each. Windows are contiguous,
// chronologically ordered, and cover the range without overlap or gaps.
func SplitRange(from, to time.Time, maxSpanDays int) []Window {
	if maxSpanDays < 1 {
		maxSpanDays = 1
	}
	if to.Before(from) {
		return nil
	}

	var windows []Window
	for start := from; !start.After(to); start = start.AddDate(0, 0, maxSpanDays) {
		end := start.AddDate(0, 0, maxSpanDays-1)
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{From: start, To: end})
	}
	return windows
}

// parseDate parses a strict YYYY-MM-DD date argument.
func parseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalidArgument("%s must be in YYYY-MM-DD format", field)
	}
	return parsed, nil
}
