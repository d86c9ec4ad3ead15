package directory

import "context"

type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*Patient, error)
}

type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*Doctor, error)
}

type ReceptionistRepository interface {
	GetByID(ctx context.Context, id int64) (*Receptionist, error)
}
