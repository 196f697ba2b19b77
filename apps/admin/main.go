package main

import (
	"os"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
	emailsvc "github.com/classtrack/classtrack/services/email"
	logsvc "github.com/classtrack/classtrack/services/logger"
	"github.com/classtrack/classtrack/storage/database"
	sqlxrepos "github.com/classtrack/classtrack/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewLocalLogger(conf), conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	usrRepo := sqlxrepos.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleService(os.Stdout, logger, conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	classSvc := class.NewService(sqlxrepos.NewClassRepository(db), usrSvc, conf)

	// start CLI
	cli := commandLine{
		db:            db,
		usrRepo:       usrRepo,
		attendanceSvc: attendance.NewService(sqlxrepos.NewAttendanceRepository(db), usrSvc, classSvc, mailSvc),
		out:           os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
