package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/apps/api/graph"
	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

var _ graph.Authenticator = (*Server)(nil) // interface compliance check

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
}

// UserClaims builds the claims of usr. origIat carries the original issue time over token refreshes.
func (s *Server) UserClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.deps.Conf.AppName,
			Subject:   usr.ID,
			Audience:  s.deps.Conf.AppName,
			ExpiresAt: now.Add(s.deps.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (s *Server) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *Server) authenticate(ctx context.Context, ident, pwd string) (user.User, error) {
	usr, err := s.deps.UserSvc.GetByEmailOrInstitutionalID(ctx, ident)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.ErrAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email or institutional ID")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, core.ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return user.User{}, core.ErrAccountDeactivated
	}
	usr, err = s.deps.UserSvc.SetLastLogin(ctx, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// Authenticate checks the credentials and returns a signed token for the user.
func (s *Server) Authenticate(ctx context.Context, ident, pwd string) (string, user.User, error) {
	usr, err := s.authenticate(ctx, ident, pwd)
	if err != nil {
		return "", user.User{}, err
	}
	token, err := s.GenerateToken(s.UserClaims(usr))
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "generating token")
	}
	return token, usr, nil
}

func contextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (s *Server) getContextUser(ctx echo.Context, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = contextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := contextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := s.getContextUser(ctx, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := s.UserClaims(usr, claims.OrigIssuedAt)
	token, err := s.GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

// optionalJWTConfig lets requests without an Authorization header through.
func (s *Server) optionalJWTConfig() middleware.JWTConfig {
	conf := s.jwtConfig
	conf.Skipper = func(ctx echo.Context) bool {
		return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
	}
	return conf
}
