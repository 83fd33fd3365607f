package planner

// GenerateSlots lays fixed-length candidate sessions across the window, leaving a
// BreakMinutes gap between them and jumping over the lunch exclusion.
func GenerateSlots(window TimeRange, duration int) []TimeRange {
	if duration <= 0 {
		return nil
	}
	lunch := LunchWindow()
	length := Clock(duration)

	var slots []TimeRange
	cursor := window.Start
	for cursor+length <= window.End {
		candidate := TimeRange{Start: cursor, End: cursor + length}
		if candidate.Overlaps(lunch) {
			cursor = lunch.End
			continue
		}
		slots = append(slots, candidate)
		cursor += length + BreakMinutes
	}
	return slots
}
