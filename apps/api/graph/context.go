package graph

import (
	"context"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

type ctxKey int

const viewerKey ctxKey = iota

// WithViewer returns a copy of ctx carrying the authenticated user.
func WithViewer(ctx context.Context, usr user.User) context.Context {
	return context.WithValue(ctx, viewerKey, usr)
}

// ViewerFromContext returns the authenticated user, if any.
func ViewerFromContext(ctx context.Context) (user.User, bool) {
	usr, ok := ctx.Value(viewerKey).(user.User)
	return usr, ok
}

func requireViewer(ctx context.Context) (user.User, error) {
	usr, ok := ViewerFromContext(ctx)
	if !ok {
		return user.User{}, core.ErrUnauthenticated
	}
	return usr, nil
}

func requireStaff(ctx context.Context) (user.User, error) {
	usr, err := requireViewer(ctx)
	if err != nil {
		return user.User{}, err
	}
	if !usr.IsStaff() {
		return user.User{}, core.ErrForbidden
	}
	return usr, nil
}
