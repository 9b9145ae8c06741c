package main

import (
	"context"
	"time"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	upd := user.User{ID: usr.ID, UpdatedAt: time.Now().UTC()}
	if err := upd.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, upd)
	return err
}
