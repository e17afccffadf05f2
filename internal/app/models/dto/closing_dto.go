package dto

import "time"

// ClosingStats aggregates the per-status outcome counts of closing one
// course offering.
type ClosingStats struct {
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Withdrawn int `json:"withdrawn"`
	Total     int `json:"total"`
}

// OfferingResponse is the read view of a course offering including its
// closing metadata.
type OfferingResponse struct {
	ID           int64      `json:"id"`
	CourseID     int64      `json:"courseId"`
	CourseCode   string     `json:"courseCode,omitempty"`
	CourseName   string     `json:"courseName,omitempty"`
	InstructorID int64      `json:"instructorId"`
	Year         int        `json:"year"`
	Period       string     `json:"period"`
	Section      string     `json:"section"`
	Closed       bool       `json:"closed"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	ClosedBy     *int64     `json:"closedBy,omitempty"`
}
