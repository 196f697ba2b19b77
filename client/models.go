package client

import "time"

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type (
	Person struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		StudentID string     `json:"studentID"`
		Email     string     `json:"email"`
		Role      string     `json:"role"`
		IsActive  bool       `json:"isActive"`
		LastLogin *time.Time `json:"lastLogin"`
	}

	Class struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Schedule    string  `json:"schedule"`
		Description string  `json:"description"`
		MaxAbsences int     `json:"maxAbsences"`
		Teacher     *Person `json:"teacher"`
	}

	Attendance struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		User      *Person   `json:"user"`
		Class     *Class    `json:"class"`
	}

	// Standing is an absence count measured against a class threshold.
	Standing struct {
		Count     int     `json:"count"`
		Threshold int     `json:"threshold"`
		Ratio     float64 `json:"ratio"`
		Progress  float64 `json:"progress"`
		Critical  bool    `json:"critical"`
	}

	StudentStanding struct {
		Name string `json:"name"`
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
		Standing
	}

	SubjectStanding struct {
		ClassName string `json:"className"`
		Class     *struct {
			ID string `json:"id"`
		} `json:"class"`
		Standing
	}

	StudentProfile struct {
		Person
		AttendancesCount int               `json:"attendancesCount"`
		AbsenceSummary   []SubjectStanding `json:"absenceSummary"`
	}

	TeacherProfile struct {
		Person
		Classes []Class `json:"classes"`
	}

	ClassAttendance struct {
		Class
		AttendancesCount int               `json:"attendancesCount"`
		AbsenceReport    []StudentStanding `json:"absenceReport"`
		Attendances      []Attendance      `json:"attendances"`
	}

	NewPerson struct {
		Name      string  `json:"name"`
		StudentID *string `json:"studentID,omitempty"`
		Email     string  `json:"email"`
		Role      string  `json:"role"`
		Password  string  `json:"password"`
	}

	// PersonUpdate changes the non-nil fields only.
	PersonUpdate struct {
		Name      *string `json:"name,omitempty"`
		StudentID *string `json:"studentID,omitempty"`
		Email     *string `json:"email,omitempty"`
		Role      *string `json:"role,omitempty"`
		IsActive  *bool   `json:"isActive,omitempty"`
		Password  *string `json:"password,omitempty"`
	}

	NewClass struct {
		Name        string  `json:"name"`
		Schedule    *string `json:"schedule,omitempty"`
		Description *string `json:"description,omitempty"`
		TeacherID   *string `json:"teacher,omitempty"`
		MaxAbsences *int    `json:"maxAbsences,omitempty"`
	}

	// ClassUpdate changes the non-nil fields only; an empty TeacherID unassigns the teacher.
	ClassUpdate struct {
		Name        *string `json:"name,omitempty"`
		Schedule    *string `json:"schedule,omitempty"`
		Description *string `json:"description,omitempty"`
		TeacherID   *string `json:"teacher,omitempty"`
		MaxAbsences *int    `json:"maxAbsences,omitempty"`
	}
)
