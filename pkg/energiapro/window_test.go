package energiapro

import (
	"testing"
	"time"
)

func date(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestSplitRangeSingleWindow(t *testing.T) {
	windows := SplitRange(date("2024-04-01"), date("2024-04-10"), 31)

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if !windows[0].From.Equal(date("2024-04-01")) || !windows[0].To.Equal(date("2024-04-10")) {
		t.Errorf("unexpected window bounds: %v", windows[0])
	}
}

func TestSplitRangeTwoDaysOneDaySpan(t *testing.T) {
	windows := SplitRange(date("2024-01-01"), date("2024-01-02"), 1)

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	for i, window := range windows {
		if !window.From.Equal(window.To) {
			t.Errorf("window %d: expected single-day window, got %v..%v", i, window.From, window.To)
		}
	}
}

func TestSplitRangeMinimalCount(t *testing.T) {
	// 70 days with a 7-day span must come out as exactly 10 windows.
	windows := SplitRange(date("2024-01-01"), date("2024-03-10"), 7)

	if len(windows) != 10 {
		t.Fatalf("expected 10 windows, got %d", len(windows))
	}
}

func TestSplitRangeContiguousOrderedAndBounded(t *testing.T) {
	from, to := date("2024-01-01"), date("2024-02-14")
	maxSpan := 10
	windows := SplitRange(from, to, maxSpan)

	if !windows[0].From.Equal(from) {
		t.Errorf("first window must start at from, got %v", windows[0].From)
	}
	if !windows[len(windows)-1].To.Equal(to) {
		t.Errorf("last window must end at to, got %v", windows[len(windows)-1].To)
	}

	for i, window := range windows {
		if window.To.Before(window.From) {
			t.Errorf("window %d: inverted bounds %v..%v", i, window.From, window.To)
		}
		days := int(window.To.Sub(window.From).Hours()/24) + 1
		if days > maxSpan {
			t.Errorf("window %d: spans %d days, max is %d", i, days, maxSpan)
		}
		if i == 0 {
			continue
		}
		// Strictly chronological, no gaps, no overlap at the boundary.
		if !window.From.Equal(windows[i-1].To.AddDate(0, 0, 1)) {
			t.Errorf("window %d: starts %v, previous ended %v", i, window.From, windows[i-1].To)
		}
	}
}

func TestSplitRangeInvertedRange(t *testing.T) {
	if windows := SplitRange(date("2024-02-01"), date("2024-01-01"), 7); windows != nil {
		t.Errorf("expected no windows for inverted range, got %d", len(windows))
	}
}

func TestParseDateStrictFormat(t *testing.T) {
	for _, input := range []string{"2024/04/01", "2024-4-1", "01-04-2024", "yesterday"} {
		if _, err := parseDate("from", input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}

	parsed, err := parseDate("from", "2024-04-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(date("2024-04-01")) {
		t.Errorf("unexpected date: %v", parsed)
	}
}
