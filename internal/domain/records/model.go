package records

import "time"

// Record is a medical record entry. Records live independently of
// appointments; an appointment references records by id and tolerates
// references to records that were later deleted.
type Record struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	DoctorID  *int64    `json:"doctor_id,omitempty"`
	Reason    string    `json:"reason"`
	DataRef   string    `json:"data_ref"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput carries the fields a caller supplies when adding a record.
type CreateInput struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  *int64 `json:"doctor_id"`
	Reason    string `json:"reason"`
	DataRef   string `json:"data_ref"`
}
