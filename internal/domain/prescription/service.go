package prescription

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/careflow/careflow/internal/domain/directory"
	"github.com/careflow/careflow/internal/domain/scheduling"
	"github.com/careflow/careflow/internal/platform/auth"
)

var ErrNotFound = errors.New("prescription not found")

// Appointments is the slice of the scheduling workflow this service reads.
// *scheduling.Service satisfies it.
type Appointments interface {
	Get(ctx context.Context, id int64) (*scheduling.Appointment, error)
}

// Directory resolves the patient embedded in prescription listings.
// *directory.Service satisfies it.
type Directory interface {
	GetPatient(ctx context.Context, id int64) (*directory.Patient, error)
}

type Service struct {
	repo      Repository
	appts     Appointments
	directory Directory
}

func NewService(repo Repository, appts Appointments, dir Directory) *Service {
	return &Service{repo: repo, appts: appts, directory: dir}
}

// Create writes a prescription against an existing appointment. The doctor
// and patient are taken from the appointment, and only the treating doctor
// may prescribe.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Prescription, error) {
	appt, err := s.appts.Get(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleDoctor && appt.DoctorID != actor.ID {
		return nil, scheduling.ErrForbidden
	}

	p := &Prescription{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		Observation:   in.Observation,
		Medication:    in.Medication,
		Advise:        in.Advise,
		Test:          in.Test,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// AppointmentView bundles an appointment's prescriptions with the patient
// they were written for.
type AppointmentView struct {
	AppointmentID int64              `json:"appointment_id"`
	Patient       *directory.Patient `json:"patient"`
	Prescriptions []*Prescription    `json:"prescriptions"`
}

// ListByAppointment returns the appointment's prescriptions in creation
// order, with the patient expanded. The appointment must exist even when it
// has no prescriptions.
func (s *Service) ListByAppointment(ctx context.Context, appointmentID int64) (*AppointmentView, error) {
	appt, err := s.appts.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	patient, err := s.directory.GetPatient(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Prescription{}
	}
	return &AppointmentView{
		AppointmentID: appointmentID,
		Patient:       patient,
		Prescriptions: items,
	}, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*Prescription, int, error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Prescription{}
	}
	return items, total, nil
}
