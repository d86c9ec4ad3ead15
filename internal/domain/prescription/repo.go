package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*Prescription, error)
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*Prescription, int, error)
}
