package main

import (
	"context"
	"time"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/user"
)

// addAdmin updates or creates a user and forces the admin role on it.
func (cli *commandLine) addAdmin(uname, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		usr = user.User{
			Username:  uname,
			CreatedAt: now,
		}
	}
	usr.Role = user.RoleAdmin
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateOrCreateUser(ctx, usr)
	return err
}
