package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/user"
)

type attendanceResolver struct {
	r   *Resolver
	rec attendance.Record
}

func (ar *attendanceResolver) ID() graphql.ID          { return graphql.ID(ar.rec.ID) }
func (ar *attendanceResolver) CreatedAt() graphql.Time { return graphql.Time{Time: ar.rec.CreatedAt} }

func (ar *attendanceResolver) User(ctx context.Context) (*userResolver, error) {
	return ar.r.userByID(ctx, ar.rec.UserID)
}

func (ar *attendanceResolver) Class(ctx context.Context) (*classResolver, error) {
	return ar.r.classByID(ctx, ar.rec.ClassID)
}

// studentStandingResolver resolves a row of a class absence report.
type studentStandingResolver struct {
	r   *Resolver
	row attendance.StudentStanding
}

func (sr *studentStandingResolver) User(ctx context.Context) (*userResolver, error) {
	return sr.r.userByID(ctx, sr.row.UserID)
}

func (sr *studentStandingResolver) Name() string      { return sr.row.Name }
func (sr *studentStandingResolver) Count() int32      { return int32(sr.row.Count) }
func (sr *studentStandingResolver) Threshold() int32  { return int32(sr.row.Threshold) }
func (sr *studentStandingResolver) Ratio() float64    { return sr.row.Ratio() }
func (sr *studentStandingResolver) Progress() float64 { return sr.row.Progress() }
func (sr *studentStandingResolver) Critical() bool    { return sr.row.Critical() }

// subjectStandingResolver resolves a row of a student absence summary.
type subjectStandingResolver struct {
	r   *Resolver
	row attendance.SubjectStanding
}

func (sr *subjectStandingResolver) Class(ctx context.Context) (*classResolver, error) {
	return sr.r.classByID(ctx, sr.row.ClassID)
}

func (sr *subjectStandingResolver) ClassName() string { return sr.row.ClassName }
func (sr *subjectStandingResolver) Count() int32      { return int32(sr.row.Count) }
func (sr *subjectStandingResolver) Threshold() int32  { return int32(sr.row.Threshold) }
func (sr *subjectStandingResolver) Ratio() float64    { return sr.row.Ratio() }
func (sr *subjectStandingResolver) Progress() float64 { return sr.row.Progress() }
func (sr *subjectStandingResolver) Critical() bool    { return sr.row.Critical() }

func (r *Resolver) queryAttendances(ctx context.Context, filter *attendance.QueryFilter) ([]*attendanceResolver, error) {
	recs, err := r.opts.AttendanceSvc.Query(ctx, filter)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	res := make([]*attendanceResolver, len(recs))
	for i, rec := range recs {
		res[i] = r.newAttendanceResolver(rec)
	}
	return res, nil
}

func (r *Resolver) findAttendance(ctx context.Context, id graphql.ID) (attendance.Record, error) {
	if !validID(string(id)) {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return r.opts.AttendanceSvc.GetByID(ctx, string(id))
}

// Queries

func (r *Resolver) Attendances(ctx context.Context, args struct{ Where *attendanceWhereInput }) ([]*attendanceResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	filter := new(attendance.QueryFilter)
	if where := args.Where; where != nil {
		var none bool
		if filter.IDs, none = where.ID.values(); none {
			return []*attendanceResolver{}, nil
		}
		if where.User != nil {
			usr, err := r.findUser(ctx, *where.User)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return []*attendanceResolver{}, nil
				}
				return nil, r.wrapError(ctx, err)
			}
			filter.UserID = usr.ID
		}
		if where.Class != nil {
			if !validID(string(where.Class.ID)) {
				return []*attendanceResolver{}, nil
			}
			filter.ClassID = string(where.Class.ID)
		}
	}
	return r.queryAttendances(ctx, filter)
}

func (r *Resolver) Attendance(ctx context.Context, args struct{ Where attendanceWhereUniqueInput }) (*attendanceResolver, error) {
	if _, err := requireViewer(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	rec, err := r.findAttendance(ctx, args.Where.ID)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return nil, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return r.newAttendanceResolver(rec), nil
}

// Mutations

func (r *Resolver) CreateAttendance(ctx context.Context, args struct{ Data attendanceCreateInput }) (*attendanceResolver, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}

	nr := attendance.NewRecord{UserID: string(args.Data.User), ClassID: string(args.Data.Class)}
	if err := nr.Validate(ctx, r.opts.Validate, r.opts.AttendanceSvc); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	rec, err := r.opts.AttendanceSvc.Record(ctx, nr)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newAttendanceResolver(rec), nil
}

func (r *Resolver) DeleteAttendance(ctx context.Context, args struct{ Where attendanceWhereUniqueInput }) (*attendanceResolver, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	rec, err := r.findAttendance(ctx, args.Where.ID)
	if err != nil {
		return nil, r.wrapError(ctx, err)
	}
	if err = r.opts.AttendanceSvc.Delete(ctx, rec.ID); err != nil {
		return nil, r.wrapError(ctx, err)
	}
	return r.newAttendanceResolver(rec), nil
}
