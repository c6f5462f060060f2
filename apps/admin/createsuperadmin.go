package main

import (
	"context"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/user"
)

// createSuperAdmin updates or creates a superAdmin account. This is the
// recovery path when the bootstrap rule cannot help (directory already has
// principals but no working superAdmin).
func (cli *commandLine) createSuperAdmin(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{Email: email}
	}
	usr.Role = user.RoleSuperAdmin
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
