package scheduling

import (
	"strings"
	"time"
)

// Weekday codes a slot template can be scheduled on.
var validDays = map[string]bool{
	"MON": true, "TUE": true, "WED": true, "THU": true,
	"FRI": true, "SAT": true, "SUN": true,
}

func ValidDay(day string) bool { return validDays[day] }

// NormalizeSlotTime accepts "15:04" or "15:04:05" clock strings and returns
// the canonical "15:04" form.
func NormalizeSlotTime(s string) (string, bool) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), true
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04"), true
	}
	return "", false
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Slot is a bookable (day, time) template owned by a doctor. Available flips
// to false while an active appointment holds the slot.
type Slot struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	Day       string    `json:"day"`
	SlotTime  string    `json:"slot_time"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotUpsert is one entry of a batch slot update. A nil ID creates a new
// slot; otherwise the named fields patch the existing one.
type SlotUpsert struct {
	ID        *int64  `json:"id"`
	Day       *string `json:"day"`
	SlotTime  *string `json:"slot_time"`
	Available *bool   `json:"available"`
}

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusBooked   Status = "BOOKED"
	StatusRejected Status = "REJECTED"
	StatusDone     Status = "DONE"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(s))
	switch st {
	case StatusPending, StatusBooked, StatusRejected, StatusDone:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition leaves the status.
func (s Status) Terminal() bool { return s == StatusDone }

// Action is a workflow operation on an appointment.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionDecline    Action = "decline"
	ActionReapprove  Action = "reapprove"
	ActionComplete   Action = "complete"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
)

// slotEffect says what a transition does to the claimed slot.
type slotEffect int

const (
	slotKeep slotEffect = iota
	slotRelease
	slotReclaim
)

type transitionRule struct {
	From   Status
	To     Status
	Effect slotEffect
}

// transitions is the full status machine. Every status mutation goes through
// this table; there is no other writer of Appointment.Status. An action with
// several rules picks the one matching the appointment's current status.
var transitions = map[Action][]transitionRule{
	ActionApprove: {
		{From: StatusPending, To: StatusBooked, Effect: slotKeep},
		{From: StatusRejected, To: StatusBooked, Effect: slotReclaim},
	},
	ActionDecline:   {{From: StatusPending, To: StatusRejected, Effect: slotRelease}},
	ActionReapprove: {{From: StatusRejected, To: StatusPending, Effect: slotReclaim}},
	ActionComplete:  {{From: StatusBooked, To: StatusDone, Effect: slotRelease}},
}

// ruleFor selects the transition rule for action from the given status.
func ruleFor(action Action, from Status) (transitionRule, bool) {
	for _, rule := range transitions[action] {
		if rule.From == from {
			return rule, true
		}
	}
	return transitionRule{}, false
}

// RecordIDs is an append-only ordered set of record ids attached to an
// appointment. Stored as a JSONB array.
type RecordIDs []int64

func (r RecordIDs) Contains(id int64) bool {
	for _, v := range r {
		if v == id {
			return true
		}
	}
	return false
}

// Append adds id unless already present, preserving attach order.
func (r RecordIDs) Append(id int64) RecordIDs {
	if r.Contains(id) {
		return r
	}
	return append(r, id)
}

// Dedupe returns the ids with duplicates removed, first occurrence wins.
func (r RecordIDs) Dedupe() RecordIDs {
	out := make(RecordIDs, 0, len(r))
	for _, id := range r {
		out = out.Append(id)
	}
	return out
}

// Appointment is one ledger row. ReceptionistID is set the first time a
// receptionist acts on the appointment.
type Appointment struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patient_id"`
	DoctorID       int64     `json:"doctor_id"`
	ReceptionistID *int64    `json:"receptionist_id,omitempty"`
	SlotID         int64     `json:"slot_id"`
	Date           string    `json:"appointment_date"`
	RescheduleDate *string   `json:"reschedule_date,omitempty"`
	Status         Status    `json:"status"`
	Reason         string    `json:"reason"`
	RecordIDs      RecordIDs `json:"record_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Filter narrows appointment listings. Zero fields match everything; results
// always come back in creation order.
type Filter struct {
	PatientID *int64
	DoctorID  *int64
	Statuses  []Status
}
