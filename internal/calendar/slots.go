package calendar

import (
	"fmt"
	"sort"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Slot is a free interval inside a scheduling window.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeSlots computes the gaps between busy intervals inside the window
// that are at least duration long. Busy intervals may overlap or
// arrive unordered.
func FreeSlots(busy []*calendar.TimePeriod, windowStart, windowEnd string, duration time.Duration) ([]Slot, error) {
	start, err := time.Parse(time.RFC3339, windowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid window start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid window end: %w", err)
	}

	type interval struct{ start, end time.Time }
	intervals := make([]interval, 0, len(busy))
	for _, b := range busy {
		bs, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy interval start: %w", err)
		}
		be, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy interval end: %w", err)
		}
		intervals = append(intervals, interval{bs, be})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	var free []Slot
	cursor := start
	for _, iv := range intervals {
		if iv.start.After(cursor) && iv.start.Sub(cursor) >= duration {
			free = append(free, Slot{Start: cursor.Format(time.RFC3339), End: iv.start.Format(time.RFC3339)})
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	if end.After(cursor) && end.Sub(cursor) >= duration {
		free = append(free, Slot{Start: cursor.Format(time.RFC3339), End: end.Format(time.RFC3339)})
	}
	return free, nil
}
