// Package graph serves the ClassTrack GraphQL API.
package graph

import (
	"context"
	_ "embed"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 12

type (
	// Authenticator checks credentials and issues a session token.
	Authenticator interface {
		Authenticate(ctx context.Context, ident, pwd string) (token string, usr user.User, err error)
	}

	Options struct {
		UserSvc        *user.Service
		ClassSvc       *class.Service
		AttendanceSvc  *attendance.Service
		Auth           Authenticator
		Validate       *validator.Validate
		Translator     ut.Translator
		Logger         core.Logger
		SignalShutdown func() // optional
	}

	// Resolver is the root resolver of the schema.
	Resolver struct {
		opts *Options
	}
)

// NewSchema parses the schema and binds it to the root resolver.
func NewSchema(opts *Options) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, &Resolver{opts: opts}, graphql.MaxDepth(maxQueryDepth))
	return schema, errors.Wrap(err, "parsing graphql schema")
}

func (r *Resolver) newUserResolver(usr user.User) *userResolver {
	return &userResolver{r: r, usr: usr}
}

func (r *Resolver) newClassResolver(cls class.Class) *classResolver {
	return &classResolver{r: r, cls: cls}
}

func (r *Resolver) newAttendanceResolver(rec attendance.Record) *attendanceResolver {
	return &attendanceResolver{r: r, rec: rec}
}

// validID reports whether id can name a stored entity.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
