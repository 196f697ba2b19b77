package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("class not found")
	ErrInvalidTeacher = errors.New("teacher not found")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) (int, error)
	}

	// UserFinder is the part of the user service classes need.
	UserFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		userSvc UserFinder
		conf    *core.Config
	}
)

func NewService(repo Repository, userSvc UserFinder, conf *core.Config) *Service {
	return &Service{repo: repo, userSvc: userSvc, conf: conf}
}

// CheckTeacher makes sure teacherID, when set, belongs to a teacher.
func (svc *Service) CheckTeacher(ctx context.Context, teacherID string) error {
	if teacherID == "" {
		return nil
	}
	usr, err := svc.userSvc.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return errors.Wrap(err, "getting teacher")
		}
	} else if usr.IsTeacher() {
		return nil
	}
	return core.NewValidationError(ErrInvalidTeacher, core.FieldError{Field: "teacher", Error: ErrInvalidTeacher.Error()})
}

func (svc *Service) defaultMaxAbsences() int {
	if n := svc.conf.Attendance.DefaultMaxAbsences; n > 0 {
		return n
	}
	return 10
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:        nc.Name,
		Schedule:    nc.Schedule,
		Description: nc.Description,
		TeacherID:   nc.TeacherID,
		MaxAbsences: nc.MaxAbsences,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cls.MaxAbsences == 0 {
		cls.MaxAbsences = svc.defaultMaxAbsences()
	}
	cls, err := svc.repo.CreateClass(ctx, cls)
	return cls, errors.Wrap(err, "creating class")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error) {
	if filter != nil {
		filter.Clean()
	}
	classes, err := svc.repo.QueryClasses(ctx, filter, ordering)
	return classes, errors.Wrap(err, "querying classes")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

// TeacherClasses lists the classes owned by teacherID, ordered by name.
func (svc *Service) TeacherClasses(ctx context.Context, teacherID string) ([]Class, error) {
	return svc.Query(ctx, &QueryFilter{TeacherID: teacherID}, []core.DBOrdering{{Field: "name", Ascending: true}})
}

// Update applies a validated UpdateClass to the class identified by id.
func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.GetByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != nil {
		cls.Name = *uc.Name
	}
	if uc.Schedule != nil {
		cls.Schedule = *uc.Schedule
	}
	if uc.Description != nil {
		cls.Description = *uc.Description
	}
	if uc.TeacherID != nil {
		cls.TeacherID = *uc.TeacherID
	}
	if uc.MaxAbsences != nil {
		cls.MaxAbsences = *uc.MaxAbsences
	}
	cls.UpdatedAt = time.Now().UTC()
	cls, err = svc.repo.UpdateClass(ctx, cls)
	return cls, errors.Wrap(err, "updating class")
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteClassesByID(ctx, ids...)
	return errors.Wrap(err, "deleting classes")
}
