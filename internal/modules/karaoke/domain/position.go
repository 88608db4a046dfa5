package domain

import (
	"fmt"
	"time"
)

// IndexOf returns the position of the record in the ordered queue, or -1.
func (p Projection) IndexOf(id RequestID) int {
	for i := range p.OrderedQueue {
		if p.OrderedQueue[i].ID == id {
			return i
		}
	}
	return -1
}

// PositionsOf returns every position held by the participant in the ordered queue.
func (p Projection) PositionsOf(participant string) []int {
	var positions []int
	for i := range p.OrderedQueue {
		if p.OrderedQueue[i].ParticipantName == participant {
			positions = append(positions, i)
		}
	}
	return positions
}

// NextPositionOf returns the participant's next position at or after the active one.
func (p Projection) NextPositionOf(participant string) (int, bool) {
	if p.ActiveIndex == NoActiveIndex {
		return 0, false
	}
	for _, pos := range p.PositionsOf(participant) {
		if pos >= p.ActiveIndex {
			return pos, true
		}
	}
	return 0, false
}

// SingerStatus returns the label for a queue position relative to the active one.
func SingerStatus(index, active int) string {
	switch index - active {
	case 0:
		return "Now Singing"
	case 1:
		return "Up Next"
	default:
		return fmt.Sprintf("%d singers away", index-active)
	}
}

// FormatTimeAgo formats the time elapsed between then and now.
func FormatTimeAgo(now, then time.Time) string {
	seconds := int(now.Sub(then).Seconds())
	if seconds < 60 {
		return "just now"
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}
