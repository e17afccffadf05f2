package models

import "time"

// CourseOffering represents one scheduled instance of a course: a course
// definition bound to a year, period and section label, taught by exactly
// one instructor.
type CourseOffering struct {
	ID           int64  `json:"id" db:"id"`
	CourseID     int64  `json:"courseId" db:"course_id"`
	InstructorID int64  `json:"instructorId" db:"instructor_id"`
	Year         int    `json:"year" db:"year"`
	Period       Period `json:"period" db:"period"`
	Section      string `json:"section" db:"section"`

	// Closing metadata. An offering cannot be closed twice without an
	// intervening reopen, and cannot be reopened unless currently closed.
	Closed   bool       `json:"closed" db:"closed"`
	ClosedAt *time.Time `json:"closedAt,omitempty" db:"closed_at"`
	ClosedBy *int64     `json:"closedBy,omitempty" db:"closed_by"`

	// Relations (populated when needed)
	Course *Course `json:"course,omitempty"`
}
