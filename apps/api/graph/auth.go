package graph

import (
	"context"

	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
)

type (
	authResultResolver struct {
		success *authSuccessResolver
		failure *authFailureResolver
	}

	authSuccessResolver struct {
		token string
		item  *userResolver
	}

	authFailureResolver struct {
		message string
	}
)

func (ar *authResultResolver) ToUserAuthenticationWithPasswordSuccess() (*authSuccessResolver, bool) {
	return ar.success, ar.success != nil
}

func (ar *authResultResolver) ToUserAuthenticationWithPasswordFailure() (*authFailureResolver, bool) {
	return ar.failure, ar.failure != nil
}

func (sr *authSuccessResolver) SessionToken() string { return sr.token }
func (sr *authSuccessResolver) Item() *userResolver  { return sr.item }

func (fr *authFailureResolver) Message() string { return fr.message }

// AuthenticateUserWithPassword accepts an email or an institutional ID as identifier.
// Bad credentials are reported as a failure result, not as an error.
func (r *Resolver) AuthenticateUserWithPassword(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authResultResolver, error) {
	token, usr, err := r.opts.Auth.Authenticate(ctx, args.Email, args.Password)
	if err != nil {
		switch cause := errors.Cause(err); cause {
		case core.ErrAuthenticationFailed, core.ErrAccountDeactivated:
			return &authResultResolver{failure: &authFailureResolver{message: cause.Error()}}, nil
		}
		return nil, r.wrapError(ctx, err)
	}
	return &authResultResolver{success: &authSuccessResolver{token: token, item: r.newUserResolver(usr)}}, nil
}

// EndSession always succeeds: tokens are stateless and dropped by the client.
func (r *Resolver) EndSession() bool { return true }
