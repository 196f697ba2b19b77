package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/classtrack/classtrack/core"
)

type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"` // empty when the class has no teacher
	MaxAbsences int       `json:"max_absences"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (c Class) HasTeacher() bool { return c.TeacherID != "" }

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name        string `json:"name" validate:"required,max=120"`
	Schedule    string `json:"schedule" validate:"max=120"`
	Description string `json:"description" validate:"max=2000"`
	TeacherID   string `json:"teacher" validate:"omitempty,uuid"`
	MaxAbsences int    `json:"max_absences" validate:"omitempty,min=1,max=365"`
}

func (nc *NewClass) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Schedule = core.CleanString(nc.Schedule)
	nc.Description = core.CleanString(nc.Description)
	nc.TeacherID = core.CleanString(nc.TeacherID)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckTeacher(ctx, nc.TeacherID)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Nil fields keep their current value; an empty TeacherID unassigns the teacher.
type UpdateClass struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TeacherID   *string `json:"teacher" validate:"omitempty"`
	MaxAbsences *int    `json:"max_absences" validate:"omitempty,min=1,max=365"`
}

func (uc *UpdateClass) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	cleanPtr := func(s *string) {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	cleanPtr(uc.Name)
	cleanPtr(uc.Schedule)
	cleanPtr(uc.Description)
	cleanPtr(uc.TeacherID)

	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.TeacherID != nil {
		return svc.CheckTeacher(ctx, *uc.TeacherID)
	}
	return nil
}

// QueryFilter fields are combined with AND.
// Search does a case-insensitive match on one of Name, Schedule or Description.
type QueryFilter struct {
	IDs       []string
	TeacherID string
	Name      string // contains, case-insensitive
	Search    string
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Name = core.CleanString(qf.Name)
	qf.Search = core.CleanString(qf.Search)
}
