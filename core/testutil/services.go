package testutil

import (
	"fmt"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
	emailsvc "github.com/classtrack/classtrack/services/email"
	inmemdb "github.com/classtrack/classtrack/storage/database/inmem"
)

// Logger writes to the test log.
type Logger struct {
	T *testing.T
}

var _ core.Logger = (*Logger)(nil)

func (l Logger) log(level, msg string, args []interface{}) {
	l.T.Helper()
	l.T.Logf("%s: %s %s", level, msg, fmt.Sprint(args...))
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	l.T.Helper()
	l.T.Fatalf("FATAL: %s %s", msg, fmt.Sprint(args...))
}

// Services wires the domain services over in-memory repositories.
type Services struct {
	Conf       *core.Config
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     Logger
	Mail       *emailsvc.ConsoleServiceMock

	UserRepo       user.Repository
	ClassRepo      class.Repository
	AttendanceRepo attendance.Repository

	Users      *user.Service
	Classes    *class.Service
	Attendance *attendance.Service
}

func NewServices(t *testing.T) *Services {
	conf := core.NewTestConfig()
	logger := Logger{T: t}
	mailSvc := emailsvc.NewConsoleServiceMock(logger, conf)

	db := inmemdb.Open()
	userRepo := inmemdb.NewUserRepository(db)
	classRepo := inmemdb.NewClassRepository(db)
	attendanceRepo := inmemdb.NewAttendanceRepository(db)

	validate, translator := NewValidator()
	userSvc := user.NewService(userRepo, mailSvc, conf)
	classSvc := class.NewService(classRepo, userSvc, conf)
	return &Services{
		Conf:           conf,
		Validate:       validate,
		Translator:     translator,
		Logger:         logger,
		Mail:           mailSvc,
		UserRepo:       userRepo,
		ClassRepo:      classRepo,
		AttendanceRepo: attendanceRepo,
		Users:          userSvc,
		Classes:        classSvc,
		Attendance:     attendance.NewService(attendanceRepo, userSvc, classSvc, mailSvc),
	}
}
