package main

import (
	"context"
	"time"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

// resetPassword sets the password of the user identified by an email or an institutional ID.
func (cli *commandLine) resetPassword(ident, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{EmailOrInstitutionalID: core.CleanString(ident)})
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
