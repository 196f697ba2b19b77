package graph

import (
	"github.com/graph-gophers/graphql-go"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

type (
	stringFilter struct {
		Equals   *string
		In       *[]string
		Contains *string
	}

	idFilter struct {
		Equals *graphql.ID
		In     *[]graphql.ID
	}

	userWhereUniqueInput struct {
		ID        *graphql.ID
		Email     *string
		StudentID *string
	}

	userWhereInput struct {
		ID        *idFilter
		Name      *stringFilter
		Email     *stringFilter
		StudentID *stringFilter
		Role      *stringFilter
		IsActive  *bool
		Search    *string
	}

	userOrderByInput struct {
		Name      *string
		Email     *string
		StudentID *string
		Role      *string
		CreatedAt *string
		LastLogin *string
	}

	userCreateInput struct {
		Name      string
		StudentID *string
		Email     string
		Role      string
		Password  string
	}

	userUpdateInput struct {
		Name      *string
		StudentID *string
		Email     *string
		Role      *string
		IsActive  *bool
		Password  *string
	}

	classWhereUniqueInput struct {
		ID graphql.ID
	}

	classWhereInput struct {
		ID      *idFilter
		Name    *stringFilter
		Teacher *userWhereUniqueInput
		Search  *string
	}

	classOrderByInput struct {
		Name        *string
		Schedule    *string
		MaxAbsences *string
		CreatedAt   *string
	}

	classCreateInput struct {
		Name        string
		Schedule    *string
		Description *string
		Teacher     *graphql.ID
		MaxAbsences *int32
	}

	classUpdateInput struct {
		Name        *string
		Schedule    *string
		Description *string
		Teacher     *graphql.ID
		MaxAbsences *int32
	}

	attendanceWhereUniqueInput struct {
		ID graphql.ID
	}

	attendanceWhereInput struct {
		ID    *idFilter
		User  *userWhereUniqueInput
		Class *classWhereUniqueInput
	}

	attendanceCreateInput struct {
		User  graphql.ID
		Class graphql.ID
	}
)

// values returns the ids selected by the filter.
// none is true when the filter can match nothing, as with `in: []`.
func (f *idFilter) values() (ids []string, none bool) {
	if f == nil {
		return nil, false
	}
	if f.Equals != nil {
		ids = append(ids, string(*f.Equals))
	}
	if f.In != nil {
		if len(*f.In) == 0 {
			return nil, true
		}
		for _, id := range *f.In {
			ids = append(ids, string(id))
		}
	}
	return ids, false
}

func (f *stringFilter) values() []string {
	var vals []string
	if f.Equals != nil {
		vals = append(vals, *f.Equals)
	}
	if f.In != nil {
		vals = append(vals, *f.In...)
	}
	return vals
}

// equalsOnly returns the equals value of f, rejecting other operators.
func (f *stringFilter) equalsOnly(field string) (string, error) {
	if f.In != nil || f.Contains != nil {
		return "", badInput("where."+field, "only equals is supported")
	}
	return deref(f.Equals), nil
}

// filter converts the input into a user.QueryFilter.
// Name matches are always case-insensitive substring matches.
func (in *userWhereInput) filter() (qf *user.QueryFilter, none bool, err error) {
	qf = new(user.QueryFilter)
	if in == nil {
		return qf, false, nil
	}

	if qf.IDs, none = in.ID.values(); none {
		return qf, true, nil
	}
	if in.Name != nil {
		if in.Name.In != nil {
			return nil, false, badInput("where.name", "in is not supported")
		}
		if in.Name.Contains != nil {
			qf.Name = *in.Name.Contains
		} else {
			qf.Name = deref(in.Name.Equals)
		}
	}
	if in.Email != nil {
		if qf.Email, err = in.Email.equalsOnly("email"); err != nil {
			return nil, false, err
		}
	}
	if in.StudentID != nil {
		if qf.InstitutionalID, err = in.StudentID.equalsOnly("studentID"); err != nil {
			return nil, false, err
		}
	}
	if in.Role != nil {
		if in.Role.Contains != nil {
			return nil, false, badInput("where.role", "contains is not supported")
		}
		if qf.Roles = in.Role.values(); in.Role.In != nil && len(qf.Roles) == 0 {
			return qf, true, nil
		}
	}
	qf.IsActive = in.IsActive
	qf.Search = deref(in.Search)
	return qf, false, nil
}

func orderDirection(field string, dir *string, ordering []core.DBOrdering) []core.DBOrdering {
	if dir == nil {
		return ordering
	}
	return append(ordering, core.DBOrdering{Field: field, Ascending: *dir != "desc"})
}

func userOrdering(in *[]userOrderByInput) []core.DBOrdering {
	if in == nil {
		return nil
	}
	var ordering []core.DBOrdering
	for _, ord := range *in {
		ordering = orderDirection("name", ord.Name, ordering)
		ordering = orderDirection("email", ord.Email, ordering)
		ordering = orderDirection("studentID", ord.StudentID, ordering)
		ordering = orderDirection("role", ord.Role, ordering)
		ordering = orderDirection("created_at", ord.CreatedAt, ordering)
		ordering = orderDirection("last_login", ord.LastLogin, ordering)
	}
	return ordering
}

func classOrdering(in *[]classOrderByInput) []core.DBOrdering {
	if in == nil {
		return nil
	}
	var ordering []core.DBOrdering
	for _, ord := range *in {
		ordering = orderDirection("name", ord.Name, ordering)
		ordering = orderDirection("schedule", ord.Schedule, ordering)
		ordering = orderDirection("max_absences", ord.MaxAbsences, ordering)
		ordering = orderDirection("created_at", ord.CreatedAt, ordering)
	}
	return ordering
}
