package scheduling

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/careflow/careflow/internal/domain/directory"
	"github.com/careflow/careflow/internal/domain/records"
	"github.com/careflow/careflow/internal/platform/auth"
)

// Directory is the slice of the people directory the workflow consumes.
// *directory.Service satisfies it.
type Directory interface {
	GetPatient(ctx context.Context, id int64) (*directory.Patient, error)
	GetDoctor(ctx context.Context, id int64) (*directory.Doctor, error)
	GetReceptionist(ctx context.Context, id int64) (*directory.Receptionist, error)
}

// RecordStore is the record collaborator. *records.Service satisfies it.
type RecordStore interface {
	Create(ctx context.Context, in records.CreateInput) (*records.Record, error)
	Get(ctx context.Context, id int64) (*records.Record, error)
	Resolve(ctx context.Context, ids []int64) ([]*records.Record, error)
}

// TxRunner runs fn as one atomic unit. Production wires db.WithTx; tests
// pass a runner that just calls fn.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service is the scheduling workflow: the only mutator of appointment
// status and slot availability.
type Service struct {
	slots     SlotRepository
	appts     AppointmentRepository
	directory Directory
	records   RecordStore
	inTx      TxRunner
}

func NewService(slots SlotRepository, appts AppointmentRepository, dir Directory, recs RecordStore, inTx TxRunner) *Service {
	return &Service{slots: slots, appts: appts, directory: dir, records: recs, inTx: inTx}
}

func (s *Service) getSlot(ctx context.Context, id int64) (*Slot, error) {
	sl, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return sl, nil
}

func (s *Service) getAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return a, nil
}

// -- Slot registry --

// ListDoctorSlots returns the doctor's slot templates in id order. A doctor
// with no slots yields an empty list, not an error.
func (s *Service) ListDoctorSlots(ctx context.Context, doctorID int64) ([]*Slot, error) {
	if _, err := s.directory.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return slots, nil
}

// UpsertDoctorSlots applies a batch of slot creates and patches for one
// doctor. The whole batch is validated first and applied in a single
// transaction; one bad entry rejects everything. On success it returns the
// doctor's full slot set, untouched slots included.
func (s *Service) UpsertDoctorSlots(ctx context.Context, actor auth.Actor, doctorID int64, batch []SlotUpsert) ([]*Slot, error) {
	if _, err := s.directory.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, invalidField("slots", "batch must not be empty")
	}

	for i := range batch {
		u := &batch[i]
		if u.Day != nil {
			if !ValidDay(*u.Day) {
				return nil, invalidField("day", "must be one of MON TUE WED THU FRI SAT SUN")
			}
		}
		if u.SlotTime != nil {
			norm, ok := NormalizeSlotTime(*u.SlotTime)
			if !ok {
				return nil, invalidField("slot_time", "must be a HH:MM clock time")
			}
			u.SlotTime = &norm
		}
		if u.ID == nil {
			if u.Day == nil || u.SlotTime == nil {
				return nil, invalidField("slots", "new slots need day and slot_time")
			}
		}
	}

	var out []*Slot
	err := s.inTx(ctx, func(ctx context.Context) error {
		for _, u := range batch {
			if u.ID == nil {
				sl := &Slot{
					DoctorID:  doctorID,
					Day:       *u.Day,
					SlotTime:  *u.SlotTime,
					Available: true,
				}
				if u.Available != nil {
					sl.Available = *u.Available
				}
				if err := s.slots.Create(ctx, sl); err != nil {
					return err
				}
				continue
			}

			sl, err := s.getSlot(ctx, *u.ID)
			if err != nil {
				return err
			}
			// A slot owned by another doctor is invisible to this batch.
			if sl.DoctorID != doctorID {
				return ErrSlotNotFound
			}
			if u.Day != nil {
				sl.Day = *u.Day
			}
			if u.SlotTime != nil {
				sl.SlotTime = *u.SlotTime
			}
			if u.Available != nil {
				sl.Available = *u.Available
			}
			if err := s.slots.Update(ctx, sl); err != nil {
				return err
			}
		}

		var listErr error
		out, listErr = s.slots.ListByDoctor(ctx, doctorID)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Slot{}
	}
	return out, nil
}

// -- Booking --

type BookInput struct {
	PatientID int64   `json:"patient_id"`
	DoctorID  int64   `json:"doctor_id"`
	SlotID    int64   `json:"slot_id"`
	Date      string  `json:"appointment_date"`
	Reason    string  `json:"reason"`
	RecordIDs []int64 `json:"record_ids"`
}

// Book claims the slot and opens a PENDING appointment as one atomic unit.
// When several patients race for the same slot, the conditional claim admits
// exactly one; the rest get ErrSlotTaken.
func (s *Service) Book(ctx context.Context, actor auth.Actor, in BookInput) (*Appointment, error) {
	if actor.Role == auth.RolePatient && actor.ID != in.PatientID {
		return nil, ErrForbidden
	}
	if !ValidDate(in.Date) {
		return nil, invalidField("appointment_date", "must be a YYYY-MM-DD date")
	}
	if _, err := s.directory.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.directory.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	var appt *Appointment
	err := s.inTx(ctx, func(ctx context.Context) error {
		sl, err := s.getSlot(ctx, in.SlotID)
		if err != nil {
			return err
		}
		if sl.DoctorID != in.DoctorID {
			return invalidField("slot_id", "slot does not belong to this doctor")
		}

		claimed, err := s.slots.Claim(ctx, in.SlotID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrSlotTaken
		}

		appt = &Appointment{
			PatientID: in.PatientID,
			DoctorID:  in.DoctorID,
			SlotID:    in.SlotID,
			Date:      in.Date,
			Status:    StatusPending,
			Reason:    in.Reason,
			RecordIDs: RecordIDs(in.RecordIDs).Dedupe(),
		}
		return s.appts.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// -- Workflow transitions --

// Transition moves an appointment through the status machine. The status
// compare-and-set and the paired slot flip commit or roll back together, so
// a transition can never half-happen. A caller that loses a status race gets
// InvalidTransitionError carrying the status it lost to.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, id int64, action Action) (*Appointment, error) {
	if len(transitions[action]) == 0 {
		return nil, invalidField("action", "unknown action")
	}

	switch action {
	case ActionComplete:
		if actor.Role != auth.RoleDoctor && actor.Role != auth.RoleAdmin {
			return nil, ErrForbidden
		}
	default:
		if actor.Role != auth.RoleReceptionist && actor.Role != auth.RoleAdmin {
			return nil, ErrForbidden
		}
	}

	var appt *Appointment
	err := s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}
		if action == ActionComplete && actor.Role == auth.RoleDoctor && a.DoctorID != actor.ID {
			return ErrForbidden
		}

		rule, ok := ruleFor(action, a.Status)
		if !ok {
			return &InvalidTransitionError{Status: a.Status, Action: action}
		}

		moved, err := s.appts.UpdateStatus(ctx, id, rule.From, rule.To)
		if err != nil {
			return err
		}
		if !moved {
			current, err := s.getAppointment(ctx, id)
			if err != nil {
				return err
			}
			return &InvalidTransitionError{Status: current.Status, Action: action}
		}

		switch rule.Effect {
		case slotRelease:
			if err := s.slots.Release(ctx, a.SlotID); err != nil {
				return err
			}
		case slotReclaim:
			claimed, err := s.slots.Claim(ctx, a.SlotID)
			if err != nil {
				return err
			}
			if !claimed {
				// Someone booked the freed slot in the meantime. Roll the
				// whole transition back.
				return ErrSlotTaken
			}
		}

		if actor.Role == auth.RoleReceptionist && a.ReceptionistID == nil {
			if err := s.appts.SetReceptionist(ctx, id, actor.ID); err != nil {
				return err
			}
		}

		appt, err = s.getAppointment(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Reschedule records a new proposed date without touching status or slot.
func (s *Service) Reschedule(ctx context.Context, actor auth.Actor, id int64, newDate string) (*Appointment, error) {
	if !ValidDate(newDate) {
		return nil, invalidField("reschedule_date", "must be a YYYY-MM-DD date")
	}

	var appt *Appointment
	err := s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}
		if a.Status.Terminal() {
			return &InvalidTransitionError{Status: a.Status, Action: ActionReschedule}
		}
		ok, err := s.appts.SetRescheduleDate(ctx, id, newDate)
		if err != nil {
			return err
		}
		if !ok {
			// The write refuses terminal rows, so losing here means a
			// completion landed after our read.
			current, err := s.getAppointment(ctx, id)
			if err != nil {
				return err
			}
			return &InvalidTransitionError{Status: current.Status, Action: ActionReschedule}
		}
		if actor.Role == auth.RoleReceptionist && a.ReceptionistID == nil {
			if err := s.appts.SetReceptionist(ctx, id, actor.ID); err != nil {
				return err
			}
		}
		appt, err = s.getAppointment(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel removes the appointment and frees its slot when the appointment
// still holds one. Completed appointments are immutable.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id int64) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}
		if actor.Role == auth.RolePatient && a.PatientID != actor.ID {
			return ErrForbidden
		}
		if a.Status == StatusDone {
			return ErrCancelCompleted
		}
		// Compare-and-delete on the status we just read, so a completion
		// committing underneath us can never lose its row.
		deleted, err := s.appts.Delete(ctx, id, a.Status)
		if err != nil {
			return err
		}
		if !deleted {
			current, err := s.getAppointment(ctx, id)
			if err != nil {
				return err
			}
			if current.Status == StatusDone {
				return ErrCancelCompleted
			}
			return ErrCancelConflict
		}
		// REJECTED rows already gave the slot back at decline time.
		if a.Status == StatusPending || a.Status == StatusBooked {
			return s.slots.Release(ctx, a.SlotID)
		}
		return nil
	})
}

// -- Queries --

func (s *Service) ListAppointments(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.appts.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.getAppointment(ctx, id)
}

// Detail bundles an appointment with its slot and resolved records.
type Detail struct {
	Appointment *Appointment      `json:"appointment"`
	Slot        *Slot             `json:"slot"`
	Records     []*records.Record `json:"records"`
}

// AppointmentDetail resolves the appointment's record references
// best-effort: ids whose record has since been deleted are skipped.
func (s *Service) AppointmentDetail(ctx context.Context, id int64) (*Detail, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	sl, err := s.getSlot(ctx, appt.SlotID)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.Resolve(ctx, appt.RecordIDs)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*records.Record{}
	}
	return &Detail{Appointment: appt, Slot: sl, Records: recs}, nil
}

// -- Record linking --

// AttachRecord appends recordID to the appointment's record list. Attaching
// an id that is already present is a no-op, not an error.
func (s *Service) AttachRecord(ctx context.Context, actor auth.Actor, apptID, recordID int64) (*Appointment, error) {
	if _, err := s.records.Get(ctx, recordID); err != nil {
		return nil, err
	}

	var appt *Appointment
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.getAppointment(ctx, apptID); err != nil {
			return err
		}
		if _, err := s.appts.AppendRecordID(ctx, apptID, recordID); err != nil {
			return err
		}
		var err error
		appt, err = s.getAppointment(ctx, apptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// CreateAndAttachRecord creates a record for the appointment's patient and
// links it in the same transaction.
func (s *Service) CreateAndAttachRecord(ctx context.Context, actor auth.Actor, apptID int64, reason, dataRef string) (*records.Record, error) {
	var rec *records.Record
	err := s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.getAppointment(ctx, apptID)
		if err != nil {
			return err
		}

		in := records.CreateInput{
			PatientID: a.PatientID,
			Reason:    reason,
			DataRef:   dataRef,
		}
		if actor.Role == auth.RoleDoctor {
			doctorID := actor.ID
			in.DoctorID = &doctorID
		}

		rec, err = s.records.Create(ctx, in)
		if err != nil {
			return err
		}
		_, err = s.appts.AppendRecordID(ctx, apptID, rec.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ResolveRecords returns the still-existing records attached to the
// appointment, in attach order.
func (s *Service) ResolveRecords(ctx context.Context, apptID int64) ([]*records.Record, error) {
	appt, err := s.getAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.Resolve(ctx, appt.RecordIDs)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*records.Record{}
	}
	return recs, nil
}
