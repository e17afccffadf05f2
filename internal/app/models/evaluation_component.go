package models

// EvaluationComponent is a named, percentage-weighted grading item belonging
// to a course definition (e.g. "Midterm 1: 30%"). The sum of percentages of
// all active components of a course must never exceed 100.
//
// Deactivated components are kept so historical weighted averages stay
// reproducible after a scheme changes.
type EvaluationComponent struct {
	ID           int64   `json:"id" db:"id"`
	CourseID     int64   `json:"courseId" db:"course_id"`
	Name         string  `json:"name" db:"name"`
	Percentage   float64 `json:"percentage" db:"percentage"`
	DisplayOrder int     `json:"displayOrder" db:"display_order"`
	Active       bool    `json:"active" db:"active"`
}
