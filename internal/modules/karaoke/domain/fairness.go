package domain

import (
	"cmp"
	"slices"
)

// NoActiveIndex is the ActiveIndex of an empty queue.
const NoActiveIndex = -1

// Projection is the order derived from one snapshot. It is recomputed on every
// snapshot and never stored.
type Projection struct {
	// OrderedQueue holds every open record exactly once, pinned records first.
	OrderedQueue []RequestRecord
	// CompletedHistory holds every completed record, newest first.
	CompletedHistory []RequestRecord
	// ActiveIndex is the index of the record performing now, or NoActiveIndex.
	ActiveIndex int
	// TimesPerformed counts completed records per participant seen in the snapshot.
	TimesPerformed map[string]int
}

// Active returns the record performing now.
func (p Projection) Active() (RequestRecord, bool) {
	if p.ActiveIndex == NoActiveIndex || p.ActiveIndex >= len(p.OrderedQueue) {
		return RequestRecord{}, false
	}
	return p.OrderedQueue[p.ActiveIndex], true
}

// rankedRecord pairs a record with its resolved creation time.
type rankedRecord struct {
	record RequestRecord
	at     int64
}

func compareRanked(a, b rankedRecord) int {
	if c := cmp.Compare(a.at, b.at); c != 0 {
		return c
	}
	return cmp.Compare(a.record.ID, b.record.ID)
}

// Compute derives the performance order from a snapshot.
//
// Completed records go to the history, newest first. Open records with a
// manual order form a prefix sorted by that order. The remaining open records
// are grouped per participant (oldest first), the groups are sorted by
// (times performed, longest wait), and one record is taken from each group per
// sweep until all groups are empty.
//
// Compute does not modify the snapshot. Records with equal timestamps are
// ordered by ID so the result does not depend on the order of the input slice.
func Compute(snapshot Snapshot) Projection {
	now := snapshot.ObservedAt

	var completed, pinned []rankedRecord
	groups := make(map[string][]rankedRecord)
	times := make(map[string]int)

	for _, record := range snapshot.Records {
		r := rankedRecord{record: record.Clone(), at: record.CreatedAt.Resolve(now)}
		name := record.ParticipantName
		if _, seen := times[name]; !seen {
			times[name] = 0
		}

		switch {
		case record.Completed:
			completed = append(completed, r)
			times[name]++
		case record.IsPinned():
			pinned = append(pinned, r)
		default:
			groups[name] = append(groups[name], r)
		}
	}

	slices.SortFunc(completed, func(a, b rankedRecord) int {
		return compareRanked(b, a)
	})

	slices.SortFunc(pinned, func(a, b rankedRecord) int {
		if c := cmp.Compare(*a.record.ManualOrder, *b.record.ManualOrder); c != 0 {
			return c
		}
		return compareRanked(a, b)
	})

	participants := make([]string, 0, len(groups))
	for name, group := range groups {
		slices.SortFunc(group, compareRanked)
		participants = append(participants, name)
	}

	// Participants are never compared by name: the oldest record of each group
	// breaks ties, and its ID is unique.
	slices.SortFunc(participants, func(a, b string) int {
		if c := cmp.Compare(times[a], times[b]); c != 0 {
			return c
		}
		return compareRanked(groups[a][0], groups[b][0])
	})

	ordered := make([]RequestRecord, 0, len(snapshot.Records)-len(completed))
	for _, r := range pinned {
		ordered = append(ordered, r.record)
	}
	ordered = appendRoundRobin(ordered, participants, groups)

	history := make([]RequestRecord, 0, len(completed))
	for _, r := range completed {
		history = append(history, r.record)
	}

	active := NoActiveIndex
	if len(ordered) > 0 {
		active = 0
	}

	return Projection{
		OrderedQueue:     ordered,
		CompletedHistory: history,
		ActiveIndex:      active,
		TimesPerformed:   times,
	}
}

// appendRoundRobin sweeps the participants in order, taking the oldest
// remaining record of each non-empty group per sweep.
func appendRoundRobin(
	dst []RequestRecord,
	participants []string,
	groups map[string][]rankedRecord,
) []RequestRecord {
	for sweep := 0; ; sweep++ {
		took := false
		for _, name := range participants {
			group := groups[name]
			if sweep < len(group) {
				dst = append(dst, group[sweep].record)
				took = true
			}
		}
		if !took {
			return dst
		}
	}
}
