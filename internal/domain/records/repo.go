package records

import "context"

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	// GetMany returns the records that exist among ids, in the order given.
	// Missing ids are skipped, not errors.
	GetMany(ctx context.Context, ids []int64) ([]*Record, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Record, int, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
