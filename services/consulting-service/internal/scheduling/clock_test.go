package scheduling

import "testing"

func TestParseClock(t *testing.T) {
	valid := map[string]int{"00:00": 0, "09:30": 570, "10:00": 600, "23:59": 1439, "7:05": 425}
	for in, want := range valid {
		got, ok := ParseClock(in)
		if !ok || got != want {
			t.Fatalf("ParseClock(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "10", "10:00:00", "ab:cd", "10:", "-1:30", "10:3x"} {
		if _, ok := ParseClock(in); ok {
			t.Fatalf("ParseClock(%q) should be invalid", in)
		}
	}
}

func TestValidClockRejectsOutOfRange(t *testing.T) {
	if _, ok := ValidClock("24:00"); ok {
		t.Fatal("24:00 should be rejected")
	}
	if _, ok := ValidClock("10:60"); ok {
		t.Fatal("10:60 should be rejected")
	}
	if m, ok := ValidClock("10:30"); !ok || m != 630 {
		t.Fatalf("unexpected %d %v", m, ok)
	}
}

func TestSlotOverlap(t *testing.T) {
	a := SlotAt(600, 60)
	if !a.Overlaps(SlotAt(630, 60)) {
		t.Fatal("10:00-11:00 and 10:30-11:30 overlap")
	}
	if a.Overlaps(SlotAt(660, 60)) || a.Overlaps(SlotAt(540, 60)) {
		t.Fatal("touching endpoints must not overlap")
	}
	if FormatClock(a.End) != "11:00" {
		t.Fatalf("unexpected end %s", FormatClock(a.End))
	}
}
