package scheduling

import (
	"testing"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

func booking(consultant, date, clock string, duration int, status model.BookingStatus) model.Booking {
	return model.Booking{
		ConsultantID:    consultant,
		ScheduledDate:   date,
		ScheduledTime:   clock,
		DurationMinutes: duration,
		Status:          status,
	}
}

func candidate(consultant, date, clock string, duration int) Candidate {
	start, _ := ParseClock(clock)
	return Candidate{ConsultantID: consultant, Date: date, Slot: SlotAt(start, duration), DurationMinutes: duration}
}

func TestHasConflict_Overlap(t *testing.T) {
	existing := []model.Booking{booking("7", "2024-03-10", "10:00", 60, model.BookingConfirmed)}
	if !HasConflict(candidate("7", "2024-03-10", "10:30", 60), existing) {
		t.Fatal("expected conflict for 10:30-11:30 against 10:00-11:00")
	}
}

func TestHasConflict_Adjacent(t *testing.T) {
	existing := []model.Booking{booking("7", "2024-03-10", "09:00", 60, model.BookingPending)}
	if HasConflict(candidate("7", "2024-03-10", "10:00", 60), existing) {
		t.Fatal("adjacent slots must not conflict")
	}
}

func TestHasConflict_TerminalStatusesNeverConflict(t *testing.T) {
	for _, st := range []model.BookingStatus{model.BookingCancelled, model.BookingCompleted, model.BookingNoShow} {
		existing := []model.Booking{booking("7", "2024-03-10", "10:00", 60, st)}
		if HasConflict(candidate("7", "2024-03-10", "10:00", 60), existing) {
			t.Fatalf("status %s must not conflict", st)
		}
	}
}

func TestHasConflict_ScopedToConsultantAndDate(t *testing.T) {
	existing := []model.Booking{
		booking("8", "2024-03-10", "10:00", 60, model.BookingConfirmed),
		booking("7", "2024-03-11", "10:00", 60, model.BookingConfirmed),
	}
	if HasConflict(candidate("7", "2024-03-10", "10:00", 60), existing) {
		t.Fatal("other consultants and other days must be ignored")
	}
}

func TestHasConflict_SkipsUnparseableTimes(t *testing.T) {
	existing := []model.Booking{
		booking("7", "2024-03-10", "ten o'clock", 60, model.BookingConfirmed),
		booking("7", "2024-03-10", "12:00", 30, model.BookingConfirmed),
	}
	if HasConflict(candidate("7", "2024-03-10", "10:00", 60), existing) {
		t.Fatal("garbage time should be skipped, 12:00 does not overlap")
	}
	if !HasConflict(candidate("7", "2024-03-10", "12:15", 15), existing) {
		t.Fatal("12:15 overlaps 12:00-12:30")
	}
}

func TestHasConflict_MissingDurationBorrowsCandidate(t *testing.T) {
	existing := []model.Booking{booking("7", "2024-03-10", "10:00", 0, model.BookingPending)}
	// Existing assumed to last 90 minutes, so 11:00 is inside it.
	if !HasConflict(candidate("7", "2024-03-10", "11:00", 90), existing) {
		t.Fatal("expected conflict when existing duration borrows candidate's 90 minutes")
	}
	// With a 30 minute candidate the existing booking ends at 10:30.
	if HasConflict(candidate("7", "2024-03-10", "11:00", 30), existing) {
		t.Fatal("did not expect conflict with borrowed 30 minute duration")
	}
}

func TestHasConflict_PairwiseGrid(t *testing.T) {
	for _, st := range []model.BookingStatus{model.BookingPending, model.BookingConfirmed} {
		for existStart := 480; existStart <= 600; existStart += 15 {
			for candStart := 420; candStart <= 720; candStart += 15 {
				existing := []model.Booking{booking("7", "2024-03-10", FormatClock(existStart), 45, st)}
				want := candStart < existStart+45 && existStart < candStart+30
				got := HasConflict(candidate("7", "2024-03-10", FormatClock(candStart), 30), existing)
				if got != want {
					t.Fatalf("%s exist=%s cand=%s: got %v want %v", st, FormatClock(existStart), FormatClock(candStart), got, want)
				}
			}
		}
	}
}
