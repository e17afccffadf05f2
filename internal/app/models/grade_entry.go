package models

import "time"

// GradeEntry is one scored evaluation item for one enrollment. At most one
// entry exists per (enrollment, component) pair; score lies in [0, 100].
type GradeEntry struct {
	ID                    int64     `json:"id" db:"id"`
	EnrollmentID          int64     `json:"enrollmentId" db:"enrollment_id"`
	EvaluationComponentID int64     `json:"evaluationComponentId" db:"evaluation_component_id"`
	Score                 float64   `json:"score" db:"score"`
	RecordedBy            int64     `json:"recordedBy" db:"recorded_by"`
	Remarks               *string   `json:"remarks,omitempty" db:"remarks"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
}

// GradeEntryDetail is a grade entry joined to its evaluation component,
// the shape the weighted aggregation works from.
type GradeEntryDetail struct {
	GradeEntry
	ComponentName       string  `json:"componentName" db:"component_name"`
	ComponentPercentage float64 `json:"componentPercentage" db:"component_percentage"`
}
