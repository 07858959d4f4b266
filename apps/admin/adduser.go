package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/core/user"
)

// addUser creates an active user.User, validated like any other.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Role:            identity.RoleLearner,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if isAdmin {
		nu.Role = identity.RoleAdmin
	}
	if err := nu.Validate(cli.svcs.Validate, cli.svcs.Users); err != nil {
		return err
	}

	usr, err := cli.svcs.Users.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
