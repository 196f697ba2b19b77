package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
)

var (
	// errors
	ErrNotFound              = errors.New("user not found")
	ErrEmailExists           = errors.New("a user with this email already exists")
	ErrInstitutionalIDExists = errors.New("a user with this ID already exists")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrInstitutionalIDExists or ErrEmailExists when another user,
		// not part of excludedUsers, already holds one of the given values.
		CheckUniqueness(ctx context.Context, institutionalID, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		conf     *core.Config
		tokenGen tokenGenerator
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		conf:     conf,
		tokenGen: newTokenGenerator(conf.SecretKey, conf.Server.PasswordResetTimeoutDelta),
	}
}

func (svc *Service) CheckUniqueness(institutionalID, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.Background(), institutionalID, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrInstitutionalIDExists:
			field = "studentID"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:            nu.Name,
		InstitutionalID: nu.InstitutionalID,
		Email:           nu.Email,
		Role:            nu.Role,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, "creating user")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	users, err := svc.repo.QueryUsers(ctx, filter, ordering)
	return users, errors.Wrap(err, "querying users")
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) GetByInstitutionalID(ctx context.Context, iid string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{InstitutionalID: core.CleanString(iid)})
}

// GetByEmailOrInstitutionalID looks a login identifier up as an email first, then as an institutional ID.
func (svc *Service) GetByEmailOrInstitutionalID(ctx context.Context, ident string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{EmailOrInstitutionalID: core.CleanString(ident)})
}

// Update applies a validated UpdateUser to the user identified by id.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.InstitutionalID = uu.InstitutionalID
	usr.Email = uu.Email
	usr.Role = uu.Role
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return errors.Wrap(err, "deleting users")
}

// RequestPasswordReset mails a reset link to the active user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	token, err := svc.tokenGen.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: passwordResetTemplate,
		TemplateData: map[string]interface{}{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

// ResetPassword checks the reset token, then validates and applies the new password.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword, validate *validator.Validate) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
		}
		return err
	}
	if err = svc.tokenGen.verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	// run the password policy against the user's own attributes
	uu := UpdateUser{
		Name:            usr.Name,
		InstitutionalID: usr.InstitutionalID,
		Email:           usr.Email,
		Role:            usr.Role,
		Password:        rp.Password,
	}
	if err = validate.Struct(uu); err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "resetting password")
}

const passwordResetTemplate = "password_reset"

func init() {
	core.RegisterEmailTemplate(
		passwordResetTemplate,
		`{{define "content"}}Hi {{.Data.Name}},

You're receiving this email because you requested a password reset for your account.
Please go to the following page and choose a new password:

{{.FrontendBaseURL}}/password-reset/{{.Data.UID}}/{{.Data.Token}}

If you did not request it, you can ignore this email.{{end}}`,
		`{{define "content"}}<p>Hi {{.Data.Name}},</p>
<p>You're receiving this email because you requested a password reset for your account.</p>
<p><a href="{{.FrontendBaseURL}}/password-reset/{{.Data.UID}}/{{.Data.Token}}">Choose a new password</a></p>
<p>If you did not request it, you can ignore this email.</p>{{end}}`,
	)
}
