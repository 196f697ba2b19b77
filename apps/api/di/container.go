// Package di wires the API dependencies with a dig.Container.
package di

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/classtrack/classtrack/apps/api/echo"
	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
	emailsvc "github.com/classtrack/classtrack/services/email"
	logsvc "github.com/classtrack/classtrack/services/logger"
	"github.com/classtrack/classtrack/services/scheduler"
	"github.com/classtrack/classtrack/storage/database"
	sqlxrepos "github.com/classtrack/classtrack/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	ServerParam struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		UserSvc       *user.Service
		ClassSvc      *class.Service
		AttendanceSvc *attendance.Service
	}
)

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewLocalLogger(conf), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	local := logsvc.NewLocalLogger(conf)
	local.SetReportCaller(true)
	logger := logsvc.NewRollbarLogger(local, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(os.Stdout, logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newServer(p ServerParam) (*echoapi.Server, error) {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		ClassSvc:      p.ClassSvc,
		AttendanceSvc: p.AttendanceSvc,
	})
}

func newDigestScheduler(
	attendanceSvc *attendance.Service,
	userSvc *user.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *scheduler.DigestScheduler {
	return scheduler.NewDigestScheduler(attendanceSvc, userSvc, mailSvc, logger, conf)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))

	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewClassRepository, dig.As(new(class.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))

	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(user.NewService))
	must(c.Provide(func(svc *user.Service) class.UserFinder { return svc }))
	must(c.Provide(class.NewService))
	must(c.Provide(func(svc *user.Service) attendance.UserFinder { return svc }))
	must(c.Provide(func(svc *class.Service) attendance.ClassFinder { return svc }))
	must(c.Provide(attendance.NewService))

	must(c.Provide(newServer))
	must(c.Provide(newDigestScheduler))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
