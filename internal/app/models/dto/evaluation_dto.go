package dto

// CreateEvaluationComponentRequest creates a new evaluation component for a course
type CreateEvaluationComponentRequest struct {
	CourseID     int64   `json:"courseId" binding:"required,gt=0" example:"12"`
	Name         string  `json:"name" binding:"required,max=100" example:"Midterm 1"`
	Percentage   float64 `json:"percentage" binding:"required" example:"30"`
	DisplayOrder int     `json:"displayOrder" binding:"required" example:"1"`
}

// UpdateEvaluationComponentRequest updates an existing component. Nil fields
// are left unchanged.
type UpdateEvaluationComponentRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,max=100"`
	Percentage   *float64 `json:"percentage,omitempty"`
	DisplayOrder *int     `json:"displayOrder,omitempty"`
	Active       *bool    `json:"active,omitempty"`
}
