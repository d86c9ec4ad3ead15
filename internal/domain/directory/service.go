package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrReceptionistNotFound = errors.New("receptionist not found")
)

// Service answers existence lookups for the people the scheduling workflow
// references. Enrollment is handled out of band.
type Service struct {
	patients      PatientRepository
	doctors       DoctorRepository
	receptionists ReceptionistRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository, receptionists ReceptionistRepository) *Service {
	return &Service{patients: patients, doctors: doctors, receptionists: receptionists}
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) GetReceptionist(ctx context.Context, id int64) (*Receptionist, error) {
	r, err := s.receptionists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceptionistNotFound
		}
		return nil, err
	}
	return r, nil
}
