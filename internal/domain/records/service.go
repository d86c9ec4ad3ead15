package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/careflow/careflow/internal/domain/directory"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrReasonRequired = errors.New("reason is required")
)

// Directory is the slice of the people directory this service consumes.
// *directory.Service satisfies it.
type Directory interface {
	GetPatient(ctx context.Context, id int64) (*directory.Patient, error)
	GetDoctor(ctx context.Context, id int64) (*directory.Doctor, error)
}

type Service struct {
	repo      Repository
	directory Directory
}

func NewService(repo Repository, dir Directory) *Service {
	return &Service{repo: repo, directory: dir}
}

// Create stores a new record and returns it with its assigned id. The
// patient must exist; the doctor, when given, must too.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	if in.Reason == "" {
		return nil, ErrReasonRequired
	}
	if _, err := s.directory.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if in.DoctorID != nil {
		if _, err := s.directory.GetDoctor(ctx, *in.DoctorID); err != nil {
			return nil, err
		}
	}

	rec := &Record{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Reason:    in.Reason,
		DataRef:   in.DataRef,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Resolve fetches the records that still exist among ids, preserving the
// given order. Ids without a backing record are silently dropped.
func (s *Service) Resolve(ctx context.Context, ids []int64) ([]*Record, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Record, int, error) {
	if _, err := s.directory.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Delete removes a record. Appointments that reference it keep the stale id;
// resolution skips it from then on.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
