package models

// RoleType defines the user role type. Roles are resolved once at the
// authentication boundary; the rest of the application only ever sees this
// closed set of values.
type RoleType string

const (
	RoleAdministrator RoleType = "ADMINISTRATOR"
	RoleInstructor    RoleType = "INSTRUCTOR"
	RoleStudent       RoleType = "STUDENT"
)

// Valid reports whether the role is one of the known variants.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdministrator, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// Period represents the academic period of a term
type Period string

const (
	PeriodFirst  Period = "FIRST"
	PeriodSecond Period = "SECOND"
	PeriodSummer Period = "SUMMER"
)

// Valid reports whether the period is one of the known variants.
func (p Period) Valid() bool {
	switch p {
	case PeriodFirst, PeriodSecond, PeriodSummer:
		return true
	}
	return false
}

// EnrollmentStatus is the lifecycle status of an enrollment.
// Registered is the initial state; the three terminal states are assigned in
// bulk when an offering is closed and are only ever undone by a reopen.
type EnrollmentStatus string

const (
	EnrollmentRegistered EnrollmentStatus = "REGISTERED"
	EnrollmentPassed     EnrollmentStatus = "PASSED"
	EnrollmentFailed     EnrollmentStatus = "FAILED"
	EnrollmentWithdrawn  EnrollmentStatus = "WITHDRAWN"
)

// Caller is the already-authenticated identity an operation runs as
type Caller struct {
	UserID int64    `json:"userId"`
	Role   RoleType `json:"role"`
}

// IsAdmin reports whether the caller holds the administrator role
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdministrator
}
