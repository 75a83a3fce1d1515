package scheduling

// OpenSlots returns slots of length duration starting every step minutes
// within window that do not overlap any busy slot. Starts before notBefore
// are skipped; pass a negative notBefore to keep all of them.
func OpenSlots(window Slot, duration, step int, busy []Slot, notBefore int) []Slot {
	if duration <= 0 || step <= 0 || window.End <= window.Start {
		return nil
	}
	var open []Slot
	for start := window.Start; start+duration <= window.End; start += step {
		if start < notBefore {
			continue
		}
		s := SlotAt(start, duration)
		if !overlapsAny(s, busy) {
			open = append(open, s)
		}
	}
	return open
}
