package dto

// AddPrerequisiteRequest adds a dependency edge between two courses
type AddPrerequisiteRequest struct {
	PrerequisiteID int64 `json:"prerequisiteId" binding:"required,gt=0"`
	Mandatory      bool  `json:"mandatory"`
}

// PrerequisiteStatus is one prerequisite of a course annotated with whether
// the student has passed it.
type PrerequisiteStatus struct {
	CourseID  int64  `json:"courseId"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
	Passed    bool   `json:"passed"`
}

// PrerequisiteCheckResponse reports whether a student satisfies a course's
// mandatory prerequisites. Optional prerequisites are listed but never block.
type PrerequisiteCheckResponse struct {
	StudentID      int64                `json:"studentId"`
	CourseID       int64                `json:"courseId"`
	Satisfied      bool                 `json:"satisfied"`
	MandatoryMet   int                  `json:"mandatoryMet"`
	MandatoryTotal int                  `json:"mandatoryTotal"`
	Prerequisites  []PrerequisiteStatus `json:"prerequisites"`
}
