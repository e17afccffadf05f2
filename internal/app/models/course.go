package models

// Course represents a course definition in the curriculum.
type Course struct {
	ID          int64   `json:"id" db:"id"`
	Code        string  `json:"code" db:"code"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"` // Nullable
	Credits     int     `json:"credits" db:"credits"`
	Level       int     `json:"level" db:"level"` // Curriculum level (semester number); prerequisites must sit strictly earlier
}
