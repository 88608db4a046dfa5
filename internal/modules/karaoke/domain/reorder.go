package domain

// ReorderPlan is the result of moving one record within the ordered queue.
type ReorderPlan struct {
	// Queue is the ordered queue after the move.
	Queue []RequestRecord
	// Pins maps every record that must be pinned to its new manual order.
	Pins map[RequestID]int
}

// Patches converts the pins into record patches for a batch update.
func (p ReorderPlan) Patches() map[RequestID]RecordPatch {
	patches := make(map[RequestID]RecordPatch, len(p.Pins))
	for id, order := range p.Pins {
		patches[id] = PinPatch(order)
	}
	return patches
}

// PlanReorder removes the record at from and reinserts it at to.
//
// Every record from position 0 through the farther of from and to is pinned to
// its new position, so all records whose position changed keep it. Records
// after that span stay unpinned unless they were already pinned, in which case
// they are renumbered to their new position so no two pins collide.
func PlanReorder(queue []RequestRecord, from, to int) (ReorderPlan, error) {
	n := len(queue)
	if from < 0 || from >= n {
		return ReorderPlan{}, &ValidationError{Field: "from", Reason: "position out of range"}
	}
	if to < 0 || to >= n {
		return ReorderPlan{}, &ValidationError{Field: "to", Reason: "position out of range"}
	}
	if from == to {
		return ReorderPlan{}, &ValidationError{Field: "to", Reason: "same as from"}
	}

	moved := queue[from]
	reordered := make([]RequestRecord, 0, n)
	reordered = append(reordered, queue[:from]...)
	reordered = append(reordered, queue[from+1:]...)
	reordered = append(reordered[:to], append([]RequestRecord{moved}, reordered[to:]...)...)

	span := max(from, to)
	pins := make(map[RequestID]int)
	for i := range reordered {
		if i <= span || reordered[i].IsPinned() {
			pins[reordered[i].ID] = i
			reordered[i] = reordered[i].Apply(PinPatch(i))
		}
	}

	return ReorderPlan{Queue: reordered, Pins: pins}, nil
}
