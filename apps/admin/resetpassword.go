package main

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	data := user.PasswordReset{
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := cli.svcs.Validate.Struct(data); err != nil {
		return err
	}
	_, err := cli.svcs.Users.SetPassword(context.Background(), data.Email, data.Password)
	return err
}
