package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core/user"
)

var errWeakPassword = errors.New("password does not satisfy the password policy")

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if tag := user.CheckPassword(pwd, usr.Name, usr.Email); tag != "" {
		return errors.Wrap(errWeakPassword, tag)
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr.Email, pwd)
	return err
}
