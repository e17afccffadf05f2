package models

import "time"

// Enrollment links one student to one course offering. Status starts as
// REGISTERED and is mutated only by the closing coordinator (bulk, on close)
// or reset back to REGISTERED by a reopen.
type Enrollment struct {
	ID               int64            `json:"id" db:"id"`
	StudentID        int64            `json:"studentId" db:"student_id"`
	CourseOfferingID int64            `json:"courseOfferingId" db:"course_offering_id"`
	Status           EnrollmentStatus `json:"status" db:"status"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Offering *CourseOffering `json:"offering,omitempty"`
}
