package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

// NewValidator returns a validator with every app validation registered, and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, institutionalID, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:            name,
		InstitutionalID: institutionalID,
		Email:           email,
		Role:            role,
		IsActive:        isActive,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name, schedule, teacherID string, maxAbsences int, createdAt ...time.Time) class.Class {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	cls, err := repo.CreateClass(context.Background(), class.Class{
		Name:        name,
		Schedule:    schedule,
		TeacherID:   teacherID,
		MaxAbsences: maxAbsences,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

// RecordAbsences stores n attendance records of usr in cls, one second apart.
func RecordAbsences(t *testing.T, repo attendance.Repository, usr user.User, cls class.Class, n int) []attendance.Record {
	t.Helper()
	start := time.Now().UTC().Add(-time.Duration(n) * time.Second)
	recs := make([]attendance.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := repo.CreateRecord(context.Background(), attendance.Record{
			UserID:    usr.ID,
			ClassID:   cls.ID,
			CreatedAt: start.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("recordAbsences() failed: %v", err)
		}
		recs = append(recs, rec)
	}
	return recs
}
