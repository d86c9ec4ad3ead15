package scheduling

import "context"

type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id int64) (*Slot, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Slot, error)
	Update(ctx context.Context, s *Slot) error
	// Claim flips available from true to false. Returns false when the slot
	// was already held, letting exactly one concurrent caller win.
	Claim(ctx context.Context, id int64) (bool, error)
	Release(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// UpdateStatus performs a compare-and-set on (id, from). Returns false
	// when the row no longer holds from, so racing transitions lose cleanly.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error)
	// SetRescheduleDate refuses DONE rows. Returns false when the row is
	// missing or already completed.
	SetRescheduleDate(ctx context.Context, id int64, date string) (bool, error)
	SetReceptionist(ctx context.Context, id, receptionistID int64) error
	// AppendRecordID atomically appends recordID to record_ids unless
	// already present. Returns false on the duplicate no-op.
	AppendRecordID(ctx context.Context, id, recordID int64) (bool, error)
	// Delete is a compare-and-delete on (id, from). Returns false when the
	// row is gone or its status moved since from was read.
	Delete(ctx context.Context, id int64, from Status) (bool, error)
}
