// Package client talks to the ClassTrack GraphQL API on behalf of the app screens.
package client

import (
	"context"
	"net/http"

	"github.com/Khan/genqlient/graphql"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var (
	// errors
	ErrMissingID = errors.New("missing identifier")
	ErrNotFound  = errors.New("not found")
)

// codeNotFound is the error extension code of unknown records.
const codeNotFound = "NOT_FOUND"

type (
	Options struct {
		Endpoint   string // e.g. http://localhost:8000/api/graphql
		Session    *Session
		HTTPClient *http.Client // http.DefaultClient when nil
	}

	Client struct {
		gql     graphql.Client
		session *Session
	}

	// bearerTransport authenticates requests with the session token, when there is one.
	bearerTransport struct {
		session *Session
		base    http.RoundTripper
	}
)

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authClient := *httpClient
	authClient.Transport = &bearerTransport{session: opts.Session, base: base}

	return &Client{
		gql:     graphql.NewClient(opts.Endpoint, &authClient),
		session: opts.Session,
	}
}

func (c *Client) Session() *Session { return c.session }

// do runs one operation and decodes its data into data.
func (c *Client) do(ctx context.Context, opName, query string, vars interface{}, data interface{}) error {
	req := &graphql.Request{OpName: opName, Query: query, Variables: vars}
	resp := &graphql.Response{Data: data}
	err := c.gql.MakeRequest(ctx, req, resp)

	var gqlErrs gqlerror.List
	if errors.As(err, &gqlErrs) {
		for _, gqlErr := range gqlErrs {
			if gqlErr.Extensions["code"] == codeNotFound {
				return errors.Wrap(ErrNotFound, opName)
			}
		}
	}
	return errors.Wrap(err, opName)
}
