package dto

// RecordGradeRequest registers a score for one enrollment and component
type RecordGradeRequest struct {
	EnrollmentID          int64   `json:"enrollmentId" binding:"required,gt=0"`
	EvaluationComponentID int64   `json:"evaluationComponentId" binding:"required,gt=0"`
	Score                 float64 `json:"score"`
	Remarks               *string `json:"remarks,omitempty" binding:"omitempty,max=500"`
}

// WeightedGradeResponse is the aggregate view of an enrollment's grade
// ledger. PartialAverage is nil while no entry has been recorded.
type WeightedGradeResponse struct {
	EnrollmentID        int64    `json:"enrollmentId"`
	FinalScore          float64  `json:"finalScore"`
	PartialAverage      *float64 `json:"partialAverage,omitempty"`
	CompletedPercentage float64  `json:"completedPercentage"`
	EntryCount          int      `json:"entryCount"`
}
