package scheduler

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/user"
)

const digestTemplate = "absence_digest"

type (
	DigestSource interface {
		CriticalDigest(ctx context.Context) ([]attendance.Report, error)
	}

	UserFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	// DigestScheduler mails each teacher the students at or above the absence threshold of their classes.
	DigestScheduler struct {
		cronEngine *cron.Cron
		source     DigestSource
		userSvc    UserFinder
		mailSvc    core.EmailService
		logger     core.Logger
		conf       *core.Config
	}

	digestClass struct {
		Name     string
		Students []attendance.StudentStanding
	}
)

func NewDigestScheduler(source DigestSource, userSvc UserFinder, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *DigestScheduler {
	return &DigestScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		source:     source,
		userSvc:    userSvc,
		mailSvc:    mailSvc,
		logger:     logger,
		conf:       conf,
	}
}

// Start schedules the digest job; it is a no-op when the digest is disabled.
func (s *DigestScheduler) Start() error {
	if !s.conf.Attendance.DigestEnabled {
		s.logger.Info("absence digest disabled")
		return nil
	}
	_, err := s.cronEngine.AddFunc(s.conf.Attendance.DigestCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if n, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("sending absence digest", err)
		} else {
			s.logger.Info("absence digest sent", map[string]interface{}{"emails": n})
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling absence digest (%s)", s.conf.Attendance.DigestCronSpec)
	}
	s.cronEngine.Start()
	s.logger.Info("absence digest scheduled", map[string]interface{}{"spec": s.conf.Attendance.DigestCronSpec})
	return nil
}

// Stop waits for a running job to finish.
func (s *DigestScheduler) Stop() {
	<-s.cronEngine.Stop().Done()
}

// RunOnce builds the digest and sends one email per teacher, returning the number of emails sent.
// Classes without a teacher are skipped.
func (s *DigestScheduler) RunOnce(ctx context.Context) (int, error) {
	reports, err := s.source.CriticalDigest(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "building digest")
	}

	byTeacher := make(map[string][]digestClass)
	teacherIDs := make([]string, 0)
	for _, rep := range reports {
		tid := rep.Class.TeacherID
		if tid == "" {
			continue
		}
		if _, ok := byTeacher[tid]; !ok {
			teacherIDs = append(teacherIDs, tid)
		}
		byTeacher[tid] = append(byTeacher[tid], digestClass{Name: rep.Class.Name, Students: rep.Rows})
	}

	messages := make([]*core.EmailMessage, 0, len(teacherIDs))
	for _, tid := range teacherIDs {
		teacher, err := s.userSvc.GetByID(ctx, tid)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				continue
			}
			return 0, errors.Wrap(err, "getting teacher")
		}
		if !teacher.IsActive {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
			Subject:      "Weekly absence digest",
			TemplateName: digestTemplate,
			TemplateData: map[string]interface{}{
				"Name":    teacher.Name,
				"Classes": byTeacher[tid],
			},
		})
	}
	if len(messages) > 0 {
		s.mailSvc.SendMessages(messages...)
	}
	return len(messages), nil
}

func init() {
	core.RegisterEmailTemplate(
		digestTemplate,
		`{{define "content"}}Hi {{.Data.Name}},

These students have reached the absence limit of your classes:
{{range .Data.Classes}}
{{.Name}}
{{range .Students}}  - {{.Name}}: {{.Count}}/{{.Threshold}}
{{end}}{{end}}{{end}}`,
		`{{define "content"}}<p>Hi {{.Data.Name}},</p>
<p>These students have reached the absence limit of your classes:</p>
{{range .Data.Classes}}<h3>{{.Name}}</h3>
<ul>{{range .Students}}<li>{{.Name}}: {{.Count}}/{{.Threshold}}</li>{{end}}</ul>
{{end}}{{end}}`,
	)
}
