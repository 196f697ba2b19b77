package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

var errInvalidRole = errors.New("invalid role")

// addUser updates or creates a user.User, matched by email.
func (cli *commandLine) addUser(name, institutionalID, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	institutionalID = core.CleanString(institutionalID)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)
	if !user.IsValidRole(role) {
		return errInvalidRole
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	create := false
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		create = true
		usr = user.User{Email: email, CreatedAt: time.Now().UTC()}
	}

	usr.Name = name
	usr.Role = role
	usr.IsActive = true
	if institutionalID != "" {
		usr.InstitutionalID = institutionalID
	}
	usr.UpdatedAt = time.Now().UTC()
	if err = cli.usrRepo.CheckUniqueness(ctx, usr.InstitutionalID, usr.Email, usr); err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if create {
		usr, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		usr, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	if err != nil {
		return err
	}
	action := "updated"
	if create {
		action = "created"
	}
	fmt.Fprintf(cli.out, "%s %s (%s)\n", action, usr.Email, usr.Role)
	return nil
}
