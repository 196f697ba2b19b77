package graph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/testutil"
	"github.com/classtrack/classtrack/core/user"
)

const pwd = "Passw0rd!"

type authStub struct {
	svc *user.Service
}

func (a authStub) Authenticate(ctx context.Context, ident, pwd string) (string, user.User, error) {
	usr, err := a.svc.GetByEmailOrInstitutionalID(ctx, ident)
	if err != nil || usr.CheckPassword(pwd) != nil {
		return "", user.User{}, core.ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return "", user.User{}, core.ErrAccountDeactivated
	}
	return "token-" + usr.ID, usr, nil
}

type fixture struct {
	schema *graphql.Schema
	svcs   *testutil.Services

	admin, teacher, ada, bob user.User
}

func setup(t *testing.T) *fixture {
	svcs := testutil.NewServices(t)
	schema, err := NewSchema(&Options{
		UserSvc:       svcs.Users,
		ClassSvc:      svcs.Classes,
		AttendanceSvc: svcs.Attendance,
		Auth:          authStub{svc: svcs.Users},
		Validate:      svcs.Validate,
		Translator:    svcs.Translator,
		Logger:        svcs.Logger,
	})
	require.NoError(t, err)

	return &fixture{
		schema:  schema,
		svcs:    svcs,
		admin:   testutil.CreateUser(t, svcs.UserRepo, "Admin", "", "admin@school.test", pwd, user.RoleAdmin, true),
		teacher: testutil.CreateUser(t, svcs.UserRepo, "Grace Hopper", "", "grace@school.test", pwd, user.RoleTeacher, true),
		ada:     testutil.CreateUser(t, svcs.UserRepo, "Ada Lovelace", "S001", "ada@school.test", pwd, user.RoleStudent, true),
		bob:     testutil.CreateUser(t, svcs.UserRepo, "Bob", "S002", "bob@school.test", pwd, user.RoleStudent, false),
	}
}

// exec runs query as viewer, anonymously when viewer is nil, and decodes the data into out.
func (f *fixture) exec(t *testing.T, viewer *user.User, query string, vars map[string]interface{}, out interface{}) []*graphqlError {
	t.Helper()
	ctx := context.Background()
	if viewer != nil {
		ctx = WithViewer(ctx, *viewer)
	}
	resp := f.schema.Exec(ctx, query, "", vars)
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}

	errs := make([]*graphqlError, len(resp.Errors))
	for i, qErr := range resp.Errors {
		errs[i] = &graphqlError{Message: qErr.Message, Extensions: qErr.Extensions}
	}
	return errs
}

type graphqlError struct {
	Message    string
	Extensions map[string]interface{}
}

func requireCode(t *testing.T, errs []*graphqlError, code string) *graphqlError {
	t.Helper()
	require.Len(t, errs, 1)
	assert.Equal(t, code, errs[0].Extensions["code"])
	return errs[0]
}

type userData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StudentID *string `json:"studentID"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"isActive"`
}

func TestResolver_users(t *testing.T) {
	f := setup(t)

	const query = `query($where: UserWhereInput, $orderBy: [UserOrderByInput!]) {
		users(where: $where, orderBy: $orderBy) { name studentID }
	}`
	names := func(t *testing.T, vars map[string]interface{}) []string {
		var data struct{ Users []userData }
		errs := f.exec(t, &f.teacher, query, vars, &data)
		require.Empty(t, errs)
		res := make([]string, len(data.Users))
		for i, usr := range data.Users {
			res[i] = usr.Name
		}
		return res
	}

	t.Run("anonymous", func(t *testing.T) {
		errs := f.exec(t, nil, query, nil, nil)
		requireCode(t, errs, CodeUnauthenticated)
	})

	tests := []struct {
		name string
		vars map[string]interface{}
		want []string
	}{
		{
			name: "all",
			vars: map[string]interface{}{"orderBy": []interface{}{map[string]interface{}{"name": "asc"}}},
			want: []string{"Ada Lovelace", "Admin", "Bob", "Grace Hopper"},
		},
		{
			name: "students",
			vars: map[string]interface{}{
				"where":   map[string]interface{}{"role": map[string]interface{}{"equals": "student"}},
				"orderBy": []interface{}{map[string]interface{}{"name": "desc"}},
			},
			want: []string{"Bob", "Ada Lovelace"},
		},
		{
			name: "staff",
			vars: map[string]interface{}{
				"where":   map[string]interface{}{"role": map[string]interface{}{"in": []interface{}{"admin", "teacher"}}},
				"orderBy": []interface{}{map[string]interface{}{"name": "asc"}},
			},
			want: []string{"Admin", "Grace Hopper"},
		},
		{
			name: "active students",
			vars: map[string]interface{}{"where": map[string]interface{}{
				"role":     map[string]interface{}{"equals": "student"},
				"isActive": true,
			}},
			want: []string{"Ada Lovelace"},
		},
		{
			name: "empty id list",
			vars: map[string]interface{}{"where": map[string]interface{}{"id": map[string]interface{}{"in": []interface{}{}}}},
			want: []string{},
		},
		{
			name: "search",
			vars: map[string]interface{}{"where": map[string]interface{}{"search": "LOVE"}},
			want: []string{"Ada Lovelace"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(t, tt.vars))
		})
	}
}

func TestResolver_user(t *testing.T) {
	f := setup(t)

	const query = `query($where: UserWhereUniqueInput!) { user(where: $where) { id name studentID } }`
	lookup := func(t *testing.T, where map[string]interface{}) *userData {
		var data struct{ User *userData }
		errs := f.exec(t, &f.ada, query, map[string]interface{}{"where": where}, &data)
		require.Empty(t, errs)
		return data.User
	}

	usr := lookup(t, map[string]interface{}{"studentID": "S001"})
	require.NotNil(t, usr)
	assert.Equal(t, f.ada.ID, usr.ID)

	usr = lookup(t, map[string]interface{}{"email": "grace@school.test"})
	require.NotNil(t, usr)
	assert.Nil(t, usr.StudentID)

	assert.Nil(t, lookup(t, map[string]interface{}{"id": "lol"}))
	assert.Nil(t, lookup(t, map[string]interface{}{"email": "nobody@school.test"}))

	errs := f.exec(t, &f.ada, query, map[string]interface{}{"where": map[string]interface{}{}}, nil)
	requireCode(t, errs, CodeBadUserInput)
}

func TestResolver_authenticatedItem(t *testing.T) {
	f := setup(t)

	const query = `{ authenticatedItem { id } }`
	var data struct{ AuthenticatedItem *userData }
	require.Empty(t, f.exec(t, nil, query, nil, &data))
	assert.Nil(t, data.AuthenticatedItem)

	require.Empty(t, f.exec(t, &f.ada, query, nil, &data))
	require.NotNil(t, data.AuthenticatedItem)
	assert.Equal(t, f.ada.ID, data.AuthenticatedItem.ID)
}

func TestResolver_createUser(t *testing.T) {
	f := setup(t)

	const mutation = `mutation($data: UserCreateInput!) { createUser(data: $data) { id name email role isActive } }`
	data := func(name, email, role string) map[string]interface{} {
		return map[string]interface{}{"data": map[string]interface{}{
			"name": name, "email": email, "role": role, "password": pwd,
		}}
	}

	t.Run("students are forbidden", func(t *testing.T) {
		errs := f.exec(t, &f.ada, mutation, data("Eve", "eve@school.test", "student"), nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("teacher cannot create a teacher", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, data("Alan", "alan@school.test", "teacher"), nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("bad input", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, data(" ", "lol", "student"), nil)
		gErr := requireCode(t, errs, CodeBadUserInput)
		assert.Equal(t, map[string]string{
			"name":  "this field is required",
			"email": "email must be a valid email address",
		}, gErr.Extensions["fields"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, data("Ada 2", "ADA@school.test", "student"), nil)
		gErr := requireCode(t, errs, CodeBadUserInput)
		assert.Equal(t, map[string]string{"email": user.ErrEmailExists.Error()}, gErr.Extensions["fields"])
	})

	t.Run("success", func(t *testing.T) {
		var res struct{ CreateUser *userData }
		errs := f.exec(t, &f.teacher, mutation, data("  Eve  ", "Eve@School.test", "student"), &res)
		require.Empty(t, errs)
		require.NotNil(t, res.CreateUser)
		assert.Equal(t, "Eve", res.CreateUser.Name)
		assert.Equal(t, "eve@school.test", res.CreateUser.Email)
		assert.True(t, res.CreateUser.IsActive)

		usr, err := f.svcs.Users.GetByID(context.Background(), res.CreateUser.ID)
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword(pwd))
	})
}

func TestResolver_updateUser(t *testing.T) {
	f := setup(t)

	const mutation = `mutation($where: UserWhereUniqueInput!, $data: UserUpdateInput!) {
		updateUser(where: $where, data: $data) { name role isActive }
	}`
	vars := func(id string, data map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"where": map[string]interface{}{"id": id}, "data": data}
	}

	t.Run("teacher may rename self", func(t *testing.T) {
		var res struct{ UpdateUser *userData }
		errs := f.exec(t, &f.teacher, mutation, vars(f.teacher.ID, map[string]interface{}{"name": "Grace B. Hopper"}), &res)
		require.Empty(t, errs)
		assert.Equal(t, "Grace B. Hopper", res.UpdateUser.Name)
	})

	t.Run("teacher may not promote self", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, vars(f.teacher.ID, map[string]interface{}{"role": "admin"}), nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("teacher may not promote a student", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, vars(f.ada.ID, map[string]interface{}{"role": "teacher"}), nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("teacher may not edit the admin", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, mutation, vars(f.admin.ID, map[string]interface{}{"name": "Root"}), nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		errs := f.exec(t, &f.admin, mutation, vars("lol", map[string]interface{}{"name": "Nobody"}), nil)
		requireCode(t, errs, CodeNotFound)
	})

	t.Run("teacher reactivates a student", func(t *testing.T) {
		var res struct{ UpdateUser *userData }
		errs := f.exec(t, &f.teacher, mutation, vars(f.bob.ID, map[string]interface{}{"isActive": true}), &res)
		require.Empty(t, errs)
		assert.True(t, res.UpdateUser.IsActive)
		assert.Equal(t, "Bob", res.UpdateUser.Name)
	})

	t.Run("admin promotes a student", func(t *testing.T) {
		var res struct{ UpdateUser *userData }
		errs := f.exec(t, &f.admin, mutation, vars(f.bob.ID, map[string]interface{}{"role": "teacher"}), &res)
		require.Empty(t, errs)
		assert.Equal(t, user.RoleTeacher, res.UpdateUser.Role)
	})
}

func TestResolver_deleteUser(t *testing.T) {
	f := setup(t)

	math := testutil.CreateClass(t, f.svcs.ClassRepo, "Math", "", f.teacher.ID, 3)
	testutil.RecordAbsences(t, f.svcs.AttendanceRepo, f.ada, math, 2)

	const mutation = `mutation($id: ID!) { deleteUser(where: {id: $id}) { id name } }`

	requireCode(t, f.exec(t, &f.teacher, mutation, map[string]interface{}{"id": f.teacher.ID}, nil), CodeForbidden)
	requireCode(t, f.exec(t, &f.teacher, mutation, map[string]interface{}{"id": f.admin.ID}, nil), CodeForbidden)
	requireCode(t, f.exec(t, &f.admin, mutation, map[string]interface{}{"id": "lol"}, nil), CodeNotFound)

	var res struct{ DeleteUser *userData }
	require.Empty(t, f.exec(t, &f.teacher, mutation, map[string]interface{}{"id": f.ada.ID}, &res))
	require.NotNil(t, res.DeleteUser)
	assert.Equal(t, "Ada Lovelace", res.DeleteUser.Name)

	ctx := context.Background()
	_, err := f.svcs.Users.GetByID(ctx, f.ada.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	recs, err := f.svcs.Attendance.Query(ctx, &attendance.QueryFilter{UserID: f.ada.ID})
	require.NoError(t, err)
	assert.Empty(t, recs, "attendances are deleted along with the user")

	// removing the teacher leaves the class without one
	require.Empty(t, f.exec(t, &f.admin, mutation, map[string]interface{}{"id": f.teacher.ID}, nil))
	cls, err := f.svcs.Classes.GetByID(ctx, math.ID)
	require.NoError(t, err)
	assert.False(t, cls.HasTeacher())
}

type classData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MaxAbsences int       `json:"maxAbsences"`
	Teacher     *userData `json:"teacher"`
}

func TestResolver_classes(t *testing.T) {
	f := setup(t)

	const create = `mutation($data: ClassCreateInput!) { createClass(data: $data) { id name maxAbsences teacher { id } } }`

	t.Run("students are forbidden", func(t *testing.T) {
		errs := f.exec(t, &f.ada, create, map[string]interface{}{"data": map[string]interface{}{"name": "Art"}}, nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("teacher must be a teacher", func(t *testing.T) {
		errs := f.exec(t, &f.admin, create, map[string]interface{}{"data": map[string]interface{}{
			"name": "Art", "teacher": f.ada.ID,
		}}, nil)
		requireCode(t, errs, CodeBadUserInput)
	})

	var math, art struct{ CreateClass *classData }
	t.Run("teacher defaults to the viewer", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, create, map[string]interface{}{"data": map[string]interface{}{"name": "Math"}}, &math)
		require.Empty(t, errs)
		require.NotNil(t, math.CreateClass.Teacher)
		assert.Equal(t, f.teacher.ID, math.CreateClass.Teacher.ID)
		assert.Equal(t, f.svcs.Conf.Attendance.DefaultMaxAbsences, math.CreateClass.MaxAbsences)
	})

	t.Run("admin creates a class without teacher", func(t *testing.T) {
		errs := f.exec(t, &f.admin, create, map[string]interface{}{"data": map[string]interface{}{
			"name": "Art", "maxAbsences": 4,
		}}, &art)
		require.Empty(t, errs)
		assert.Nil(t, art.CreateClass.Teacher)
		assert.Equal(t, 4, art.CreateClass.MaxAbsences)
	})

	t.Run("query by teacher", func(t *testing.T) {
		var data struct{ Classes []classData }
		errs := f.exec(t, &f.ada, `{ classes(where: {teacher: {email: "grace@school.test"}}) { name } }`, nil, &data)
		require.Empty(t, errs)
		require.Len(t, data.Classes, 1)
		assert.Equal(t, "Math", data.Classes[0].Name)

		errs = f.exec(t, &f.ada, `{ classes(where: {teacher: {email: "nobody@school.test"}}) { name } }`, nil, &data)
		require.Empty(t, errs)
		assert.Empty(t, data.Classes)
	})

	t.Run("teacher's classes", func(t *testing.T) {
		var data struct {
			User struct{ Classes []classData }
		}
		errs := f.exec(t, &f.admin, `query($id: ID) { user(where: {id: $id}) { classes { name } } }`,
			map[string]interface{}{"id": f.teacher.ID}, &data)
		require.Empty(t, errs)
		require.Len(t, data.User.Classes, 1)
		assert.Equal(t, "Math", data.User.Classes[0].Name)
	})

	t.Run("update", func(t *testing.T) {
		var data struct{ UpdateClass *classData }
		errs := f.exec(t, &f.teacher, `mutation($id: ID!) { updateClass(where: {id: $id}, data: {maxAbsences: 2, teacher: ""}) { maxAbsences teacher { id } } }`,
			map[string]interface{}{"id": math.CreateClass.ID}, &data)
		require.Empty(t, errs)
		assert.Equal(t, 2, data.UpdateClass.MaxAbsences)
		assert.Nil(t, data.UpdateClass.Teacher)

		errs = f.exec(t, &f.teacher, `mutation($id: ID!) { updateClass(where: {id: $id}, data: {maxAbsences: 0}) { id } }`,
			map[string]interface{}{"id": math.CreateClass.ID}, nil)
		requireCode(t, errs, CodeBadUserInput)
	})

	t.Run("delete", func(t *testing.T) {
		const mutation = `mutation($id: ID!) { deleteClass(where: {id: $id}) { name } }`
		var data struct{ DeleteClass *classData }
		require.Empty(t, f.exec(t, &f.admin, mutation, map[string]interface{}{"id": art.CreateClass.ID}, &data))
		assert.Equal(t, "Art", data.DeleteClass.Name)

		requireCode(t, f.exec(t, &f.admin, mutation, map[string]interface{}{"id": art.CreateClass.ID}, nil), CodeNotFound)

		var lookup struct{ Class *classData }
		require.Empty(t, f.exec(t, &f.admin, `query($id: ID!) { class(where: {id: $id}) { name } }`,
			map[string]interface{}{"id": art.CreateClass.ID}, &lookup))
		assert.Nil(t, lookup.Class)
	})
}

func TestResolver_attendances(t *testing.T) {
	f := setup(t)

	math := testutil.CreateClass(t, f.svcs.ClassRepo, "Math", "Mon 8:00", f.teacher.ID, 2)
	art := testutil.CreateClass(t, f.svcs.ClassRepo, "Art", "", "", 4)
	testutil.RecordAbsences(t, f.svcs.AttendanceRepo, f.bob, math, 1)
	testutil.RecordAbsences(t, f.svcs.AttendanceRepo, f.ada, art, 1)

	const create = `mutation($user: ID!, $class: ID!) {
		createAttendance(data: {user: $user, class: $class}) { id user { name } class { name } }
	}`

	t.Run("students are forbidden", func(t *testing.T) {
		errs := f.exec(t, &f.ada, create, map[string]interface{}{"user": f.ada.ID, "class": math.ID}, nil)
		requireCode(t, errs, CodeForbidden)
	})

	t.Run("only students are recorded", func(t *testing.T) {
		errs := f.exec(t, &f.teacher, create, map[string]interface{}{"user": f.teacher.ID, "class": "lol"}, nil)
		requireCode(t, errs, CodeBadUserInput)

		errs = f.exec(t, &f.teacher, create, map[string]interface{}{"user": f.teacher.ID, "class": math.ID}, nil)
		gErr := requireCode(t, errs, CodeBadUserInput)
		assert.Equal(t, map[string]string{"user": attendance.ErrInvalidStudent.Error()}, gErr.Extensions["fields"])
	})

	var created []string
	for i := 0; i < 2; i++ {
		var data struct {
			CreateAttendance struct {
				ID   string
				User userData
			}
		}
		errs := f.exec(t, &f.teacher, create, map[string]interface{}{"user": f.ada.ID, "class": math.ID}, &data)
		require.Empty(t, errs)
		assert.Equal(t, "Ada Lovelace", data.CreateAttendance.User.Name)
		created = append(created, data.CreateAttendance.ID)
	}

	t.Run("limit alert", func(t *testing.T) {
		sent := f.svcs.Mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "ada@school.test", sent[0].To[0].Address)
		require.Len(t, sent[0].Cc, 1)
		assert.Equal(t, "grace@school.test", sent[0].Cc[0].Address)
	})

	t.Run("absence report", func(t *testing.T) {
		type row struct {
			Name      string
			Count     int
			Threshold int
			Ratio     float64
			Progress  float64
			Critical  bool
		}
		var data struct {
			Class struct {
				AttendancesCount int
				AbsenceReport    []row
			}
		}
		errs := f.exec(t, &f.teacher, `query($id: ID!) {
			class(where: {id: $id}) {
				attendancesCount
				absenceReport { name count threshold ratio progress critical }
			}
		}`, map[string]interface{}{"id": math.ID}, &data)
		require.Empty(t, errs)
		assert.Equal(t, 3, data.Class.AttendancesCount)
		assert.Equal(t, []row{
			{Name: "Ada Lovelace", Count: 2, Threshold: 2, Ratio: 1, Progress: 1, Critical: true},
			{Name: "Bob", Count: 1, Threshold: 2, Ratio: 0.5, Progress: 0.5},
		}, data.Class.AbsenceReport)
	})

	t.Run("absence summary", func(t *testing.T) {
		type row struct {
			ClassName string
			Count     int
			Critical  bool
		}
		var data struct {
			AuthenticatedItem struct {
				AttendancesCount int
				AbsenceSummary   []row
			}
		}
		errs := f.exec(t, &f.ada, `{ authenticatedItem { attendancesCount absenceSummary { className count critical } } }`, nil, &data)
		require.Empty(t, errs)
		assert.Equal(t, 3, data.AuthenticatedItem.AttendancesCount)
		assert.Equal(t, []row{
			{ClassName: "Art", Count: 1},
			{ClassName: "Math", Count: 2, Critical: true},
		}, data.AuthenticatedItem.AbsenceSummary)
	})

	t.Run("query", func(t *testing.T) {
		var data struct{ Attendances []struct{ ID string } }
		errs := f.exec(t, &f.teacher, `query($class: ID!) {
			attendances(where: {user: {studentID: "S001"}, class: {id: $class}}) { id }
		}`, map[string]interface{}{"class": math.ID}, &data)
		require.Empty(t, errs)
		assert.Len(t, data.Attendances, 2)

		errs = f.exec(t, &f.teacher, `{ attendances(where: {class: {id: "lol"}}) { id } }`, nil, &data)
		require.Empty(t, errs)
		assert.Empty(t, data.Attendances)
	})

	t.Run("delete", func(t *testing.T) {
		const mutation = `mutation($id: ID!) { deleteAttendance(where: {id: $id}) { id } }`
		require.Empty(t, f.exec(t, &f.teacher, mutation, map[string]interface{}{"id": created[0]}, nil))
		requireCode(t, f.exec(t, &f.teacher, mutation, map[string]interface{}{"id": created[0]}, nil), CodeNotFound)

		var data struct{ Attendance *struct{ ID string } }
		require.Empty(t, f.exec(t, &f.teacher, `query($id: ID!) { attendance(where: {id: $id}) { id } }`,
			map[string]interface{}{"id": created[0]}, &data))
		assert.Nil(t, data.Attendance)

		count, err := f.svcs.Attendance.Count(context.Background(), f.ada.ID, math.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestResolver_authenticateUserWithPassword(t *testing.T) {
	f := setup(t)

	const mutation = `mutation($email: String!, $password: String!) {
		authenticateUserWithPassword(email: $email, password: $password) {
			__typename
			... on UserAuthenticationWithPasswordSuccess { sessionToken item { id } }
			... on UserAuthenticationWithPasswordFailure { message }
		}
	}`
	type result struct {
		Typename     string `json:"__typename"`
		SessionToken string
		Item         *userData
		Message      string
	}
	login := func(t *testing.T, ident, pwd string) result {
		var data struct{ AuthenticateUserWithPassword result }
		errs := f.exec(t, nil, mutation, map[string]interface{}{"email": ident, "password": pwd}, &data)
		require.Empty(t, errs)
		return data.AuthenticateUserWithPassword
	}

	res := login(t, "S001", pwd)
	assert.Equal(t, "UserAuthenticationWithPasswordSuccess", res.Typename)
	assert.Equal(t, "token-"+f.ada.ID, res.SessionToken)
	require.NotNil(t, res.Item)
	assert.Equal(t, f.ada.ID, res.Item.ID)

	res = login(t, "ada@school.test", "nope")
	assert.Equal(t, "UserAuthenticationWithPasswordFailure", res.Typename)
	assert.Equal(t, core.ErrAuthenticationFailed.Error(), res.Message)

	res = login(t, "bob@school.test", pwd)
	assert.Equal(t, core.ErrAccountDeactivated.Error(), res.Message)

	var data struct{ EndSession bool }
	require.Empty(t, f.exec(t, nil, `mutation { endSession }`, nil, &data))
	assert.True(t, data.EndSession)
}
