package prescription

import "time"

// Prescription is the doctor's write-up for a completed visit.
type Prescription struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	DoctorID      int64     `json:"doctor_id"`
	PatientID     int64     `json:"patient_id"`
	Observation   string    `json:"observation"`
	Medication    string    `json:"medication"`
	Advise        string    `json:"advise"`
	Test          string    `json:"test"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateInput struct {
	AppointmentID int64  `json:"appointment_id"`
	Observation   string `json:"observation"`
	Medication    string `json:"medication"`
	Advise        string `json:"advise"`
	Test          string `json:"test"`
}
