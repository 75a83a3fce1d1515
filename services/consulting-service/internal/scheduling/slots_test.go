package scheduling

import "testing"

func TestOpenSlots_Basic(t *testing.T) {
	busy := []Slot{{Start: 9*60 + 15, End: 9*60 + 45}}
	slots := OpenSlots(Slot{Start: 9 * 60, End: 10 * 60}, 15, 15, busy, -1)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if FormatClock(slots[0].Start) != "09:00" || FormatClock(slots[1].Start) != "09:45" {
		t.Fatalf("unexpected slots %+v", slots)
	}
}

func TestOpenSlots_SkipsPast(t *testing.T) {
	slots := OpenSlots(Slot{Start: 9 * 60, End: 10 * 60}, 15, 15, nil, 9*60+31)
	if len(slots) != 1 || FormatClock(slots[0].Start) != "09:45" {
		t.Fatalf("expected only 09:45, got %+v", slots)
	}
}

func TestOpenSlots_DegenerateInputs(t *testing.T) {
	if OpenSlots(Slot{Start: 600, End: 600}, 30, 15, nil, -1) != nil {
		t.Fatal("empty window should give nil")
	}
	if OpenSlots(Slot{Start: 600, End: 620}, 30, 15, nil, -1) != nil {
		t.Fatal("window shorter than duration should give nil")
	}
}
