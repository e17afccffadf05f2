package models

import "time"

// AcademicHistory is the per-student-per-term rollup recomputed as a side
// effect of closing or reopening an offering.
type AcademicHistory struct {
	ID             int64     `json:"id" db:"id"`
	StudentID      int64     `json:"studentId" db:"student_id"`
	Year           int       `json:"year" db:"year"`
	Period         Period    `json:"period" db:"period"`
	PassedCount    int       `json:"passedCount" db:"passed_count"`
	FailedCount    int       `json:"failedCount" db:"failed_count"`
	WithdrawnCount int       `json:"withdrawnCount" db:"withdrawn_count"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
