package scheduling

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/careflow/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, doctor_id, day, slot_time::text, available, created_at`

func (r *slotRepoPG) scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	if err := row.Scan(&s.ID, &s.DoctorID, &s.Day, &s.SlotTime, &s.Available, &s.CreatedAt); err != nil {
		return nil, err
	}
	// Postgres renders TIME as HH:MM:SS.
	if norm, ok := NormalizeSlotTime(s.SlotTime); ok {
		s.SlotTime = norm
	}
	return &s, nil
}

func (r *slotRepoPG) Create(ctx context.Context, s *Slot) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO slot (doctor_id, day, slot_time, available)
		VALUES ($1, $2, $3::time, $4)
		RETURNING id, created_at`,
		s.DoctorID, s.Day, s.SlotTime, s.Available,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *slotRepoPG) GetByID(ctx context.Context, id int64) (*Slot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM slot WHERE id = $1`, id))
}

func (r *slotRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+slotCols+` FROM slot WHERE doctor_id = $1 ORDER BY id ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) Update(ctx context.Context, s *Slot) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE slot SET day = $2, slot_time = $3::time, available = $4
		WHERE id = $1`,
		s.ID, s.Day, s.SlotTime, s.Available)
	return err
}

func (r *slotRepoPG) Claim(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE slot SET available = FALSE WHERE id = $1 AND available = TRUE`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *slotRepoPG) Release(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE slot SET available = TRUE WHERE id = $1`, id)
	return err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, receptionist_id, slot_id,
	appointment_date::text, reschedule_date::text, status, reason, record_ids,
	created_at, updated_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ReceptionistID, &a.SlotID,
		&a.Date, &a.RescheduleDate, &a.Status, &a.Reason, &a.RecordIDs,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.RecordIDs == nil {
		a.RecordIDs = RecordIDs{}
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.RecordIDs == nil {
		a.RecordIDs = RecordIDs{}
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (patient_id, doctor_id, receptionist_id, slot_id,
			appointment_date, status, reason, record_ids)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.ReceptionistID, a.SlotID,
		a.Date, a.Status, a.Reason, a.RecordIDs,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.PatientID != nil {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.DoctorID != nil {
		query += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		query += fmt.Sprintf(` AND status = ANY($%d)`, idx)
		countQuery += fmt.Sprintf(` AND status = ANY($%d)`, idx)
		args = append(args, statuses)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Creation order: ids are serial, so id order is insertion order.
	query += fmt.Sprintf(` ORDER BY id ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *appointmentRepoPG) SetRescheduleDate(ctx context.Context, id int64, date string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET reschedule_date = $2::date, updated_at = NOW()
		WHERE id = $1 AND status <> 'DONE'`, id, date)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *appointmentRepoPG) SetReceptionist(ctx context.Context, id, receptionistID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET receptionist_id = $2, updated_at = NOW()
		WHERE id = $1 AND receptionist_id IS NULL`, id, receptionistID)
	return err
}

func (r *appointmentRepoPG) AppendRecordID(ctx context.Context, id, recordID int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment
		SET record_ids = record_ids || to_jsonb($2::bigint), updated_at = NOW()
		WHERE id = $1 AND NOT record_ids @> to_jsonb($2::bigint)`,
		id, recordID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64, from Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM appointment WHERE id = $1 AND status = $2`,
		id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
