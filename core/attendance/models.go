package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/classtrack/classtrack/core"
)

// Record is one recorded absence of a user in a class.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ClassID   string    `json:"class_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Entry is a Record joined with the names of its user and class.
type Entry struct {
	RecordID  string
	UserID    string
	UserName  string
	ClassID   string
	ClassName string
	CreatedAt time.Time
}

type NewRecord struct {
	UserID  string `json:"user" validate:"required,uuid"`
	ClassID string `json:"class" validate:"required,uuid"`
}

func (nr *NewRecord) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nr.UserID = core.CleanString(nr.UserID)
	nr.ClassID = core.CleanString(nr.ClassID)

	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.checkRecord(ctx, *nr)
}

// QueryFilter fields are combined with AND.
type QueryFilter struct {
	IDs     []string
	UserID  string
	ClassID string
}

func (qf *QueryFilter) Clean() {
	qf.UserID = core.CleanString(qf.UserID)
	qf.ClassID = core.CleanString(qf.ClassID)
}
