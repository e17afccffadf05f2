package models

// PrerequisiteEdge is a directed edge in the course dependency relation:
// CourseID requires PrerequisiteID. Self-edges are rejected on insert, but
// traversal code must still defend against cycles in stored data rather than
// assume the edge set is acyclic.
type PrerequisiteEdge struct {
	ID             int64 `json:"id" db:"id"`
	CourseID       int64 `json:"courseId" db:"course_id"`
	PrerequisiteID int64 `json:"prerequisiteId" db:"prerequisite_id"`
	Mandatory      bool  `json:"mandatory" db:"mandatory"`

	// Prerequisite course attributes (populated on joined reads)
	PrerequisiteCode  string `json:"prerequisiteCode,omitempty" db:"prerequisite_code"`
	PrerequisiteName  string `json:"prerequisiteName,omitempty" db:"prerequisite_name"`
	PrerequisiteLevel int    `json:"prerequisiteLevel,omitempty" db:"prerequisite_level"`
}

// PrerequisiteTree is the recursive expansion of a course's transitive
// prerequisites. Cyclic edge data is cut off at the repeated course, so the
// structure is always finite.
type PrerequisiteTree struct {
	CourseID      int64               `json:"courseId"`
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Mandatory     bool                `json:"mandatory"`
	Prerequisites []*PrerequisiteTree `json:"prerequisites,omitempty"`
}
