package graph

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

// Error codes reported under extensions.code.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is a resolver error exposing a code and, for bad input, the failing fields.
type Error struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

// wrapError classifies err the same way the HTTP error handler does.
// Unexpected errors are logged and hidden from the client.
func (r *Resolver) wrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	switch origErr := errors.Cause(err).(type) {
	case *Error:
		return origErr
	case validator.ValidationErrors:
		return &Error{
			Code:    CodeBadUserInput,
			Message: "invalid input",
			Fields:  core.TranslateValidationErrors(origErr, r.opts.Translator),
		}
	case *core.ValidationError:
		gErr := &Error{Code: CodeBadUserInput, Message: origErr.Error()}
		if len(origErr.Fields) > 0 {
			gErr.Fields = make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				gErr.Fields[fErr.Field] = fErr.Error
			}
		}
		return gErr
	}

	switch cause := errors.Cause(err); cause {
	case user.ErrNotFound, class.ErrNotFound, attendance.ErrNotFound:
		return &Error{Code: CodeNotFound, Message: cause.Error()}
	case core.ErrUnauthenticated:
		return &Error{Code: CodeUnauthenticated, Message: cause.Error()}
	case core.ErrForbidden:
		return &Error{Code: CodeForbidden, Message: cause.Error()}
	}

	msg := http.StatusText(http.StatusInternalServerError)
	viewer, _ := ViewerFromContext(ctx)
	r.opts.Logger.Error(msg, errors.Wrap(err, msg), viewer)

	if core.IsShutdown(err) && r.opts.SignalShutdown != nil {
		r.opts.SignalShutdown()
	}
	return &Error{Code: CodeInternal, Message: msg}
}

func badInput(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}
