package attendance

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("attendance not found")
	ErrInvalidStudent = errors.New("student not found")
	ErrInvalidClass   = errors.New("class not found")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter) ([]Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids ...string) (int, error)
		// QueryEntries returns the matching records joined with user and class names, oldest first.
		QueryEntries(ctx context.Context, filter *QueryFilter) ([]Entry, error)
		CountRecords(ctx context.Context, userID, classID string) (int, error)
	}

	UserFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	ClassFinder interface {
		GetByID(ctx context.Context, id string) (class.Class, error)
		Query(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error)
	}

	Service struct {
		repo     Repository
		userSvc  UserFinder
		classSvc ClassFinder
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, userSvc UserFinder, classSvc ClassFinder, mailSvc core.EmailService) *Service {
	return &Service{
		repo:     repo,
		userSvc:  userSvc,
		classSvc: classSvc,
		mailSvc:  mailSvc,
	}
}

func (svc *Service) checkRecord(ctx context.Context, nr NewRecord) error {
	var fields []core.FieldError

	usr, err := svc.userSvc.GetByID(ctx, nr.UserID)
	switch {
	case err == nil && usr.IsStudent():
	case err == nil, errors.Cause(err) == user.ErrNotFound:
		fields = append(fields, core.FieldError{Field: "user", Error: ErrInvalidStudent.Error()})
	default:
		return errors.Wrap(err, "getting student")
	}

	if _, err = svc.classSvc.GetByID(ctx, nr.ClassID); err != nil {
		if errors.Cause(err) != class.ErrNotFound {
			return errors.Wrap(err, "getting class")
		}
		fields = append(fields, core.FieldError{Field: "class", Error: ErrInvalidClass.Error()})
	}

	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

// Record stores a validated NewRecord. When the record brings the student's count to the class
// threshold, the student is alerted by email, with the class teacher in copy.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	rec, err := svc.repo.CreateRecord(ctx, Record{
		UserID:    nr.UserID,
		ClassID:   nr.ClassID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "creating attendance")
	}

	count, err := svc.repo.CountRecords(ctx, rec.UserID, rec.ClassID)
	if err != nil {
		return rec, errors.Wrap(err, "counting attendances")
	}
	cls, err := svc.classSvc.GetByID(ctx, rec.ClassID)
	if err != nil {
		return rec, errors.Wrap(err, "getting class")
	}
	if count == cls.MaxAbsences {
		if err = svc.sendAlert(ctx, rec.UserID, cls, count); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func (svc *Service) sendAlert(ctx context.Context, studentID string, cls class.Class, count int) error {
	student, err := svc.userSvc.GetByID(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      "Absence limit reached: " + cls.Name,
		TemplateName: absenceAlertTemplate,
		TemplateData: map[string]interface{}{
			"Name":      student.Name,
			"ClassName": cls.Name,
			"Count":     count,
			"Threshold": cls.MaxAbsences,
		},
	}
	if cls.HasTeacher() {
		teacher, err := svc.userSvc.GetByID(ctx, cls.TeacherID)
		if err != nil && errors.Cause(err) != user.ErrNotFound {
			return errors.Wrap(err, "getting teacher")
		}
		if err == nil {
			msg.Cc = []mail.Address{{Name: teacher.Name, Address: teacher.Email}}
		}
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Record, error) {
	if filter != nil {
		filter.Clean()
	}
	recs, err := svc.repo.QueryRecords(ctx, filter)
	return recs, errors.Wrap(err, "querying attendances")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteRecordsByID(ctx, ids...)
	return errors.Wrap(err, "deleting attendances")
}

func (svc *Service) Entries(ctx context.Context, filter *QueryFilter) ([]Entry, error) {
	if filter != nil {
		filter.Clean()
	}
	entries, err := svc.repo.QueryEntries(ctx, filter)
	return entries, errors.Wrap(err, "querying attendance entries")
}

// Count returns the number of records of a user in a class.
func (svc *Service) Count(ctx context.Context, userID, classID string) (int, error) {
	n, err := svc.repo.CountRecords(ctx, userID, classID)
	return n, errors.Wrap(err, "counting attendances")
}

// ClassReport builds the absence report of a class.
func (svc *Service) ClassReport(ctx context.Context, classID string) (Report, error) {
	cls, err := svc.classSvc.GetByID(ctx, classID)
	if err != nil {
		return Report{}, err
	}
	entries, err := svc.Entries(ctx, &QueryFilter{ClassID: cls.ID})
	if err != nil {
		return Report{}, err
	}
	return Report{Class: cls, Rows: ClassReport(cls, entries)}, nil
}

// StudentSummary measures a student's absences against the threshold of every class attended.
func (svc *Service) StudentSummary(ctx context.Context, userID string) ([]SubjectStanding, error) {
	entries, err := svc.Entries(ctx, &QueryFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []SubjectStanding{}, nil
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.ClassID] {
			seen[e.ClassID] = true
			ids = append(ids, e.ClassID)
		}
	}
	classes, err := svc.classSvc.Query(ctx, &class.QueryFilter{IDs: ids}, nil)
	if err != nil {
		return nil, err
	}
	return SubjectSummary(classes, entries), nil
}

// CriticalDigest lists, per class, the students at or above the class threshold.
func (svc *Service) CriticalDigest(ctx context.Context) ([]Report, error) {
	classes, err := svc.classSvc.Query(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: true}})
	if err != nil {
		return nil, err
	}
	entries, err := svc.Entries(ctx, nil)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(classes))
	for _, cls := range classes {
		reports = append(reports, Report{Class: cls, Rows: ClassReport(cls, entries)})
	}
	return Digest(reports), nil
}

const absenceAlertTemplate = "absence_alert"

func init() {
	core.RegisterEmailTemplate(
		absenceAlertTemplate,
		`{{define "content"}}Hi {{.Data.Name}},

You have now been absent {{.Data.Count}} times from {{.Data.ClassName}}, which is the limit of {{.Data.Threshold}} absences for this class.
Please get in touch with your teacher.{{end}}`,
		`{{define "content"}}<p>Hi {{.Data.Name}},</p>
<p>You have now been absent <strong>{{.Data.Count}}</strong> times from <strong>{{.Data.ClassName}}</strong>,
which is the limit of {{.Data.Threshold}} absences for this class.</p>
<p>Please get in touch with your teacher.</p>{{end}}`,
	)
}
