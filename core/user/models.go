package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/classtrack/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	AllRoles   = []string{RoleAdmin, RoleTeacher, RoleStudent}
	StaffRoles = []string{RoleAdmin, RoleTeacher}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	InstitutionalID string    `json:"studentID"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"is_active"`
	PasswordHash    []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
	LastLogin       time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsStaff() bool   { return u.IsAdmin() || u.IsTeacher() }

// CanManage reports whether u may create, modify or delete users holding role.
// Admins manage everyone; teachers only manage students.
func (u *User) CanManage(role string) bool {
	if u.IsAdmin() {
		return true
	}
	return u.IsTeacher() && role == RoleStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,max=120"`
	InstitutionalID string `json:"studentID" validate:"omitempty,max=32,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.InstitutionalID = core.CleanString(nu.InstitutionalID)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.InstitutionalID, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name" validate:"max=120"`
	InstitutionalID string `json:"studentID" validate:"omitempty,max=32,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password"`
}

// Validate fills blank fields from origUsr before validating.
func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if iid := core.CleanString(uu.InstitutionalID); iid != "" {
		uu.InstitutionalID = iid
	} else {
		uu.InstitutionalID = origUsr.InstitutionalID
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if role := core.CleanString(uu.Role, true /* lower */); role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.InstitutionalID, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token    string `json:"token,omitempty" validate:"required"`
	UID      string `json:"uid,omitempty" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID                     string
	Email                  string
	InstitutionalID        string
	EmailOrInstitutionalID string
}

// QueryFilter fields are combined with AND.
// Search does a case-insensitive match on one of Name, InstitutionalID or Email.
type QueryFilter struct {
	IDs             []string
	Search          string
	Roles           []string
	Name            string // contains, case-insensitive
	Email           string // equals
	InstitutionalID string // equals
	IsActive        *bool
}

func (qf *QueryFilter) IsEmpty() bool {
	return len(qf.IDs) == 0 && qf.Search == "" && len(qf.Roles) == 0 && qf.Name == "" &&
		qf.Email == "" && qf.InstitutionalID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Name = core.CleanString(qf.Name)
	qf.Email = core.CleanString(qf.Email, true /* lower */)
	qf.InstitutionalID = core.CleanString(qf.InstitutionalID)
}
