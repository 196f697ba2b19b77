package client

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	personFields = `id name studentID email role isActive lastLogin`
	classFields  = `id name schedule description maxAbsences teacher { ` + personFields + ` }`
	standing     = `count threshold ratio progress critical`
)

// LoginError is returned when the API refuses the credentials.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string { return "login failed: " + e.Message }

const loginMutation = `
mutation Login($email: String!, $password: String!) {
	authenticateUserWithPassword(email: $email, password: $password) {
		__typename
		... on UserAuthenticationWithPasswordSuccess { sessionToken item { ` + personFields + ` } }
		... on UserAuthenticationWithPasswordFailure { message }
	}
}`

// Login authenticates with an email or a student ID and initializes the session.
func (c *Client) Login(ctx context.Context, ident, pwd string) (Person, error) {
	var data struct {
		AuthenticateUserWithPassword *struct {
			Typename     string  `json:"__typename"`
			SessionToken string  `json:"sessionToken"`
			Item         *Person `json:"item"`
			Message      string  `json:"message"`
		} `json:"authenticateUserWithPassword"`
	}
	vars := map[string]interface{}{"email": strings.TrimSpace(ident), "password": pwd}
	if err := c.do(ctx, "Login", loginMutation, vars, &data); err != nil {
		return Person{}, err
	}

	res := data.AuthenticateUserWithPassword
	if res == nil {
		return Person{}, errors.Wrap(ErrNotFound, "Login")
	}
	if res.Typename != "UserAuthenticationWithPasswordSuccess" || res.Item == nil {
		return Person{}, &LoginError{Message: res.Message}
	}
	if err := c.session.Init(res.SessionToken, res.Item.Name, res.Item.Email); err != nil {
		return Person{}, err
	}
	return *res.Item, nil
}

const logoutMutation = `mutation Logout { endSession }`

// Logout ends the session; local credentials are cleared even when the API cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	var data struct {
		EndSession bool `json:"endSession"`
	}
	err := c.do(ctx, "Logout", logoutMutation, nil, &data)
	if clearErr := c.session.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

const peopleQuery = `
query People($role: String!) {
	users(where: {role: {equals: $role}}, orderBy: [{name: asc}]) { ` + personFields + ` }
}`

// People lists the users holding role, ordered by name.
func (c *Client) People(ctx context.Context, role string) ([]Person, error) {
	var data struct {
		Users []Person `json:"users"`
	}
	if err := c.do(ctx, "People", peopleQuery, map[string]interface{}{"role": role}, &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

const createPersonMutation = `
mutation CreatePerson($data: UserCreateInput!) {
	createUser(data: $data) { ` + personFields + ` }
}`

func (c *Client) CreatePerson(ctx context.Context, np NewPerson) (Person, error) {
	var data struct {
		CreateUser *Person `json:"createUser"`
	}
	if err := c.do(ctx, "CreatePerson", createPersonMutation, map[string]interface{}{"data": np}, &data); err != nil {
		return Person{}, err
	}
	if data.CreateUser == nil {
		return Person{}, errors.Wrap(ErrNotFound, "CreatePerson")
	}
	return *data.CreateUser, nil
}

const updatePersonMutation = `
mutation UpdatePerson($id: ID!, $data: UserUpdateInput!) {
	updateUser(where: {id: $id}, data: $data) { ` + personFields + ` }
}`

func (c *Client) UpdatePerson(ctx context.Context, id string, pu PersonUpdate) (Person, error) {
	if id == "" {
		return Person{}, ErrMissingID
	}
	var data struct {
		UpdateUser *Person `json:"updateUser"`
	}
	vars := map[string]interface{}{"id": id, "data": pu}
	if err := c.do(ctx, "UpdatePerson", updatePersonMutation, vars, &data); err != nil {
		return Person{}, err
	}
	if data.UpdateUser == nil {
		return Person{}, errors.Wrap(ErrNotFound, "UpdatePerson")
	}
	return *data.UpdateUser, nil
}

const deletePersonMutation = `mutation DeletePerson($id: ID!) { deleteUser(where: {id: $id}) { id } }`

func (c *Client) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	var data struct {
		DeleteUser *struct{ ID string } `json:"deleteUser"`
	}
	if err := c.do(ctx, "DeletePerson", deletePersonMutation, map[string]interface{}{"id": id}, &data); err != nil {
		return err
	}
	if data.DeleteUser == nil {
		return errors.Wrap(ErrNotFound, "DeletePerson")
	}
	return nil
}

const studentProfileQuery = `
query StudentProfile($id: ID!) {
	user(where: {id: $id}) {
		` + personFields + `
		attendancesCount
		absenceSummary { className class { id } ` + standing + ` }
	}
}`

// StudentProfile fetches a student with their absence standing in every class attended.
func (c *Client) StudentProfile(ctx context.Context, id string) (StudentProfile, error) {
	if id == "" {
		return StudentProfile{}, ErrMissingID
	}
	var data struct {
		User *StudentProfile `json:"user"`
	}
	if err := c.do(ctx, "StudentProfile", studentProfileQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return StudentProfile{}, err
	}
	if data.User == nil {
		return StudentProfile{}, errors.Wrap(ErrNotFound, "StudentProfile")
	}
	return *data.User, nil
}

const teacherProfileQuery = `
query TeacherProfile($id: ID!) {
	user(where: {id: $id}) {
		` + personFields + `
		classes { ` + classFields + ` }
	}
}`

// TeacherProfile fetches a teacher with the classes they teach.
func (c *Client) TeacherProfile(ctx context.Context, id string) (TeacherProfile, error) {
	if id == "" {
		return TeacherProfile{}, ErrMissingID
	}
	var data struct {
		User *TeacherProfile `json:"user"`
	}
	if err := c.do(ctx, "TeacherProfile", teacherProfileQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return TeacherProfile{}, err
	}
	if data.User == nil {
		return TeacherProfile{}, errors.Wrap(ErrNotFound, "TeacherProfile")
	}
	return *data.User, nil
}

const classesQuery = `query Classes { classes(orderBy: [{name: asc}]) { ` + classFields + ` } }`

func (c *Client) Classes(ctx context.Context) ([]Class, error) {
	var data struct {
		Classes []Class `json:"classes"`
	}
	if err := c.do(ctx, "Classes", classesQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Classes, nil
}

const classAttendanceQuery = `
query ClassAttendance($id: ID!) {
	class(where: {id: $id}) {
		` + classFields + `
		attendancesCount
		absenceReport { name user { id } ` + standing + ` }
		attendances { id createdAt user { id name } }
	}
}`

// ClassAttendance fetches a class with its absence report and raw attendance records.
func (c *Client) ClassAttendance(ctx context.Context, id string) (ClassAttendance, error) {
	if id == "" {
		return ClassAttendance{}, ErrMissingID
	}
	var data struct {
		Class *ClassAttendance `json:"class"`
	}
	if err := c.do(ctx, "ClassAttendance", classAttendanceQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return ClassAttendance{}, err
	}
	if data.Class == nil {
		return ClassAttendance{}, errors.Wrap(ErrNotFound, "ClassAttendance")
	}
	return *data.Class, nil
}

const createClassMutation = `
mutation CreateClass($data: ClassCreateInput!) {
	createClass(data: $data) { ` + classFields + ` }
}`

func (c *Client) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	var data struct {
		CreateClass *Class `json:"createClass"`
	}
	if err := c.do(ctx, "CreateClass", createClassMutation, map[string]interface{}{"data": nc}, &data); err != nil {
		return Class{}, err
	}
	if data.CreateClass == nil {
		return Class{}, errors.Wrap(ErrNotFound, "CreateClass")
	}
	return *data.CreateClass, nil
}

const updateClassMutation = `
mutation UpdateClass($id: ID!, $data: ClassUpdateInput!) {
	updateClass(where: {id: $id}, data: $data) { ` + classFields + ` }
}`

func (c *Client) UpdateClass(ctx context.Context, id string, cu ClassUpdate) (Class, error) {
	if id == "" {
		return Class{}, ErrMissingID
	}
	var data struct {
		UpdateClass *Class `json:"updateClass"`
	}
	vars := map[string]interface{}{"id": id, "data": cu}
	if err := c.do(ctx, "UpdateClass", updateClassMutation, vars, &data); err != nil {
		return Class{}, err
	}
	if data.UpdateClass == nil {
		return Class{}, errors.Wrap(ErrNotFound, "UpdateClass")
	}
	return *data.UpdateClass, nil
}

const deleteClassMutation = `mutation DeleteClass($id: ID!) { deleteClass(where: {id: $id}) { id } }`

func (c *Client) DeleteClass(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	var data struct {
		DeleteClass *struct{ ID string } `json:"deleteClass"`
	}
	if err := c.do(ctx, "DeleteClass", deleteClassMutation, map[string]interface{}{"id": id}, &data); err != nil {
		return err
	}
	if data.DeleteClass == nil {
		return errors.Wrap(ErrNotFound, "DeleteClass")
	}
	return nil
}

const recordAttendanceMutation = `
mutation RecordAttendance($user: ID!, $class: ID!) {
	createAttendance(data: {user: $user, class: $class}) { id createdAt user { id name } class { id name } }
}`

// RecordAttendance records one absence of a student in a class.
func (c *Client) RecordAttendance(ctx context.Context, userID, classID string) (Attendance, error) {
	if userID == "" || classID == "" {
		return Attendance{}, ErrMissingID
	}
	var data struct {
		CreateAttendance *Attendance `json:"createAttendance"`
	}
	vars := map[string]interface{}{"user": userID, "class": classID}
	if err := c.do(ctx, "RecordAttendance", recordAttendanceMutation, vars, &data); err != nil {
		return Attendance{}, err
	}
	if data.CreateAttendance == nil {
		return Attendance{}, errors.Wrap(ErrNotFound, "RecordAttendance")
	}
	return *data.CreateAttendance, nil
}
