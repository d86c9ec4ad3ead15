package directory

import "time"

// Patient is a person who books appointments.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Doctor owns slots and completes appointments.
type Doctor struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Speciality string    `json:"speciality"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Receptionist moderates the appointment workflow.
type Receptionist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
