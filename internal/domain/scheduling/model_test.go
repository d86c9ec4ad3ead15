package scheduling

import "testing"

func TestValidDay(t *testing.T) {
	for _, day := range []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"} {
		if !ValidDay(day) {
			t.Errorf("expected %s to be valid", day)
		}
	}
	for _, day := range []string{"mon", "MONDAY", "", "XYZ"} {
		if ValidDay(day) {
			t.Errorf("expected %q to be invalid", day)
		}
	}
}

func TestNormalizeSlotTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:30", "09:30", true},
		{"09:30:00", "09:30", true},
		{"23:59", "23:59", true},
		{"9:30", "", false},
		{"24:00", "", false},
		{"noon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeSlotTime(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeSlotTime(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2026-09-01") {
		t.Error("expected 2026-09-01 to be valid")
	}
	for _, d := range []string{"01-09-2026", "2026/09/01", "2026-13-01", "tomorrow", ""} {
		if ValidDate(d) {
			t.Errorf("expected %q to be invalid", d)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("pending")
	if !ok || st != StatusPending {
		t.Errorf("expected PENDING, got %q ok=%v", st, ok)
	}
	st, ok = ParseStatus("DONE")
	if !ok || st != StatusDone {
		t.Errorf("expected DONE, got %q ok=%v", st, ok)
	}
	if _, ok := ParseStatus("cancelled"); ok {
		t.Error("expected cancelled to be rejected")
	}
}

func TestStatusTerminal(t *testing.T) {
	if !StatusDone.Terminal() {
		t.Error("DONE should be terminal")
	}
	for _, st := range []Status{StatusPending, StatusBooked, StatusRejected} {
		if st.Terminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		to     Status
	}{
		{ActionApprove, StatusPending, StatusBooked},
		{ActionApprove, StatusRejected, StatusBooked},
		{ActionDecline, StatusPending, StatusRejected},
		{ActionReapprove, StatusRejected, StatusPending},
		{ActionComplete, StatusBooked, StatusDone},
	}
	for _, tt := range tests {
		rule, ok := ruleFor(tt.action, tt.from)
		if !ok {
			t.Fatalf("missing rule for %s from %s", tt.action, tt.from)
		}
		if rule.To != tt.to {
			t.Errorf("%s from %s: got %s, want %s", tt.action, tt.from, rule.To, tt.to)
		}
	}

	if _, ok := ruleFor(ActionApprove, StatusBooked); ok {
		t.Error("approve must not apply to BOOKED")
	}

	// No rule leaves DONE.
	for action, rules := range transitions {
		for _, rule := range rules {
			if rule.From == StatusDone {
				t.Errorf("%s must not transition out of DONE", action)
			}
		}
	}
}

func TestRecordIDs_AppendIdempotent(t *testing.T) {
	var ids RecordIDs
	ids = ids.Append(3)
	ids = ids.Append(1)
	ids = ids.Append(3)
	ids = ids.Append(2)
	ids = ids.Append(1)

	want := RecordIDs{3, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestRecordIDs_Dedupe(t *testing.T) {
	ids := RecordIDs{5, 5, 2, 5, 2, 9}.Dedupe()
	want := RecordIDs{5, 2, 9}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}
