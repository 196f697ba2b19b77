package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

type classResolver struct {
	r   *Resolver
	cls class.Class
}

func (cr *classResolver) ID() graphql.ID          { return graphql.ID(cr.cls.ID) }
func (cr *classResolver) Name() string            { return cr.cls.Name }
func (cr *classResolver) Schedule() string        { return cr.cls.Schedule }
func (cr *classResolver) Description() string     { return cr.cls.Description }
func (cr *classResolver) MaxAbsences() int32      { return int32(cr.cls.MaxAbsences) }
func (cr *classResolver) CreatedAt() graphql.Time { return graphql.Time{Time: cr.cls.CreatedAt} }

func (cr *classResolver) Teacher(ctx context.Context) (*userResolver, error) {
	if !cr.cls.HasTeacher() {
		return nil, nil
	}
	return cr.r.userByID(ctx, cr.cls.TeacherID)
}

func (cr *classResolver) Attendances(ctx context.Context) ([]*attendanceResolver, error) {
	return cr.r.queryAttendances(ctx, &attendance.QueryFilter{ClassID: cr.cls.ID})
}

func (cr *classResolver) AttendancesCount(ctx context.Context) (int32, error) {
	recs, err := cr.r.opts.AttendanceSvc.Query(ctx, &attendance.QueryFilter{ClassID: cr.cls.ID})
	if err != nil {
		return 0, cr.r.wrapError(ctx, err)
	}
	return int32(len(recs)), nil
}

func (cr *classResolver) AbsenceReport(ctx context.Context) ([]*studentStandingResolver, error) {
	report, err := cr.r.opts.AttendanceSvc.ClassReport(ctx, cr.cls.ID)
	if err != nil {
		return nil, cr.r.wrapError(ctx, err)
	}
	res := make([]*studentStandingResolver, len(report.Rows))
	for i, row := range report.Rows {
		res[i] = &studentStandingResolver{r: cr.r, row: row}
	}
	return res, nil
}

// userByID resolves an optional relation; a dangling id resolves to null.
func (r *Resolver) userByID(ctx context.Context, id string) (*userResolver, error) {
	usr, err := r.opts.UserSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}

func (r *Resolver) classByID(ctx context.Context, id string) (*classResolver, error) {
	cls, err := r.opts.ClassSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == class.ErrNotFound {
			return nil, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return r.newClassResolver(cls), nil
}

func (r *Resolver) findClass(ctx context.Context, id graphql.ID) (class.Class, error) {
	if !validID(string(id)) {
		return class.Class{}, class.ErrNotFound
	}
	return r.opts.ClassSvc.GetByID(ctx, string(id))
}

// Queries

func (r *Resolver) Classes(ctx context.Context, args struct {
	Where   *classWhereInput
	OrderBy *[]classOrderByInput
}) ([]*classResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	filter := new(class.QueryFilter)
	if where := args.Where; where != nil {
		var none bool
		if filter.IDs, none = where.ID.values(); none {
			return []*classResolver{}, nil
		}
		if where.Name != nil {
			if where.Name.In != nil {
				return nil, r.wrapError(ctx, badInput("where.name", "in is not supported"))
			}
			if where.Name.Contains != nil {
				filter.Name = *where.Name.Contains
			} else {
				filter.Name = deref(where.Name.Equals)
			}
		}
		if where.Teacher != nil {
			teacher, err := r.findUser(ctx, *where.Teacher)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return []*classResolver{}, nil
				}
				return nil, r.wrapError(ctx, err)
			}
			filter.TeacherID = teacher.ID
		}
		filter.Search = deref(where.Search)
	}

	classes, err := r.opts.ClassSvc.Query(ctx, filter, classOrdering(args.OrderBy))
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	res := make([]*classResolver, len(classes))
	for i, cls := range classes {
		res[i] = r.newClassResolver(cls)
	}
	return res, nil
}

func (r *Resolver) Class(ctx context.Context, args struct{ Where classWhereUniqueInput }) (*classResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if !validID(string(args.Where.ID)) {
		return nil, nil
	}
	return r.classByID(ctx, string(args.Where.ID))
}

// Mutations

func (r *Resolver) CreateClass(ctx context.Context, args struct{ Data classCreateInput }) (*classResolver, error) {
	viewer, err := requireStaff(ctx)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}

	data := args.Data
	nc := class.NewClass{
		Name:        data.Name,
		Schedule:    deref(data.Schedule),
		Description: deref(data.Description),
	}
	if data.Teacher != nil {
		nc.TeacherID = string(*data.Teacher)
	} else if viewer.IsTeacher() {
		nc.TeacherID = viewer.ID
	}
	if data.MaxAbsences != nil {
		nc.MaxAbsences = int(*data.MaxAbsences)
	}
	if err = nc.Validate(ctx, r.opts.Validate, r.opts.ClassSvc); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	cls, err := r.opts.ClassSvc.Create(ctx, nc)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newClassResolver(cls), nil
}

func (r *Resolver) UpdateClass(ctx context.Context, args struct {
	Where classWhereUniqueInput
	Data  classUpdateInput
}) (*classResolver, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	cls, err := r.findClass(ctx, args.Where.ID)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}

	data := args.Data
	uc := class.UpdateClass{
		Name:        data.Name,
		Schedule:    data.Schedule,
		Description: data.Description,
	}
	if data.Teacher != nil {
		teacherID := string(*data.Teacher)
		uc.TeacherID = &teacherID
	}
	if data.MaxAbsences != nil {
		maxAbsences := int(*data.MaxAbsences)
		uc.MaxAbsences = &maxAbsences
	}
	if err = uc.Validate(ctx, r.opts.Validate, r.opts.ClassSvc); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	cls, err = r.opts.ClassSvc.Update(ctx, cls.ID, uc)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newClassResolver(cls), nil
}

func (r *Resolver) DeleteClass(ctx context.Context, args struct{ Where classWhereUniqueInput }) (*classResolver, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	cls, err := r.findClass(ctx, args.Where.ID)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if err = r.opts.ClassSvc.Delete(ctx, cls.ID); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newClassResolver(cls), nil
}
