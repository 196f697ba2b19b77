package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/user"
)

type userResolver struct {
	r   *Resolver
	usr user.User
}

func (ur *userResolver) ID() graphql.ID          { return graphql.ID(ur.usr.ID) }
func (ur *userResolver) Name() string            { return ur.usr.Name }
func (ur *userResolver) StudentID() *string      { return optString(ur.usr.InstitutionalID) }
func (ur *userResolver) Email() string           { return ur.usr.Email }
func (ur *userResolver) Role() string            { return ur.usr.Role }
func (ur *userResolver) IsActive() bool          { return ur.usr.IsActive }
func (ur *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: ur.usr.CreatedAt} }

func (ur *userResolver) LastLogin() *graphql.Time {
	if ur.usr.LastLogin.IsZero() {
		return nil
	}
	return &graphql.Time{Time: ur.usr.LastLogin}
}

// Classes lists the classes taught by the user.
func (ur *userResolver) Classes(ctx context.Context) ([]*classResolver, error) {
	classes, err := ur.r.opts.ClassSvc.TeacherClasses(ctx, ur.usr.ID)
	if err != nil {
		return nil, ur.r.wrapError(ctx, err)
	}
	res := make([]*classResolver, len(classes))
	for i, cls := range classes {
		res[i] = ur.r.newClassResolver(cls)
	}
	return res, nil
}

func (ur *userResolver) Attendances(ctx context.Context) ([]*attendanceResolver, error) {
	return ur.r.queryAttendances(ctx, &attendance.QueryFilter{UserID: ur.usr.ID})
}

func (ur *userResolver) AttendancesCount(ctx context.Context) (int32, error) {
	recs, err := ur.r.opts.AttendanceSvc.Query(ctx, &attendance.QueryFilter{UserID: ur.usr.ID})
	if err != nil {
		return 0, ur.r.wrapError(ctx, err)
	}
	return int32(len(recs)), nil
}

func (ur *userResolver) AbsenceSummary(ctx context.Context) ([]*subjectStandingResolver, error) {
	rows, err := ur.r.opts.AttendanceSvc.StudentSummary(ctx, ur.usr.ID)
	if err != nil {
		return nil, ur.r.wrapError(ctx, err)
	}
	res := make([]*subjectStandingResolver, len(rows))
	for i, row := range rows {
		res[i] = &subjectStandingResolver{r: ur.r, row: row}
	}
	return res, nil
}

// Queries

func (r *Resolver) Users(ctx context.Context, args struct {
	Where   *userWhereInput
	OrderBy *[]userOrderByInput
}) ([]*userResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	filter, none, err := args.Where.filter()
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if none {
		return []*userResolver{}, nil
	}

	users, err := r.opts.UserSvc.Query(ctx, filter, userOrdering(args.OrderBy))
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	res := make([]*userResolver, len(users))
	for i, usr := range users {
		res[i] = r.newUserResolver(usr)
	}
	return res, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ Where userWhereUniqueInput }) (*userResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	usr, err := r.findUser(ctx, args.Where)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}

// AuthenticatedItem returns the viewer, or null when the request is anonymous.
func (r *Resolver) AuthenticatedItem(ctx context.Context) (*userResolver, error) {
	viewer, ok := ViewerFromContext(ctx)
	if !ok {
		return nil, nil
	}
	// reload so that deleted or updated accounts are reflected
	usr, err := r.opts.UserSvc.GetByID(ctx, viewer.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}

func (r *Resolver) findUser(ctx context.Context, where userWhereUniqueInput) (user.User, error) {
	switch {
	case where.ID != nil:
		if !validID(string(*where.ID)) {
			return user.User{}, user.ErrNotFound
		}
		return r.opts.UserSvc.GetByID(ctx, string(*where.ID))
	case where.Email != nil:
		return r.opts.UserSvc.GetByEmail(ctx, *where.Email)
	case where.StudentID != nil:
		return r.opts.UserSvc.GetByInstitutionalID(ctx, *where.StudentID)
	}
	return user.User{}, badInput("where", "one of id, email or studentID is required")
}

// Mutations

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Data userCreateInput }) (*userResolver, error) {
	viewer, err := requireStaff(ctx)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}

	nu := user.NewUser{
		Name:            args.Data.Name,
		InstitutionalID: deref(args.Data.StudentID),
		Email:           args.Data.Email,
		Role:            args.Data.Role,
		Password:        args.Data.Password,
	}
	if err = nu.Validate(r.opts.Validate, r.opts.UserSvc); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if !viewer.CanManage(nu.Role) {
		return nil, r.wrapError(ctx, core.ErrForbidden)
	}

	usr, err := r.opts.UserSvc.Create(ctx, nu)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	Where userWhereUniqueInput
	Data  userUpdateInput
}) (*userResolver, error) {
	viewer, err := requireStaff(ctx)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	usr, err := r.findUser(ctx, args.Where)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}

	data := args.Data
	if usr.ID == viewer.ID {
		// non-admins may only change their own name and password
		if !viewer.IsAdmin() && (data.Role != nil || data.IsActive != nil || data.Email != nil || data.StudentID != nil) {
			return nil, r.wrapError(ctx, core.ErrForbidden)
		}
	} else if !viewer.CanManage(usr.Role) {
		return nil, r.wrapError(ctx, core.ErrForbidden)
	}

	uu := user.UpdateUser{
		Name:            deref(data.Name),
		InstitutionalID: deref(data.StudentID),
		Email:           deref(data.Email),
		Role:            deref(data.Role),
		IsActive:        data.IsActive,
		Password:        deref(data.Password),
	}
	if err = uu.Validate(usr, r.opts.Validate, r.opts.UserSvc); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if uu.Role != usr.Role && !viewer.CanManage(uu.Role) {
		return nil, r.wrapError(ctx, core.ErrForbidden)
	}

	usr, err = r.opts.UserSvc.Update(ctx, usr.ID, uu)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ Where userWhereUniqueInput }) (*userResolver, error) {
	viewer, err := requireStaff(ctx)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	usr, err := r.findUser(ctx, args.Where)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}

	// no self-deletion
	if usr.ID == viewer.ID || !viewer.CanManage(usr.Role) {
		return nil, r.wrapError(ctx, core.ErrForbidden)
	}

	if err = r.opts.UserSvc.Delete(ctx, usr.ID); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newUserResolver(usr), nil
}
