package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/identity"
	authsvc "github.com/terakoya-app/terakoya/services/auth"
)

// addUser creates or updates an account.
func (cli *commandLine) addUser(email, name, roleStr, pwd string) error {
	email = core.CleanString(email, true /* lower */)
	role, ok := identity.ParseRole(core.CleanString(roleStr, true /* lower */))
	if !ok {
		return fmt.Errorf("unknown role %q", roleStr)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	acct := authsvc.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	return cli.adminDir.UpsertAccount(context.Background(), acct, core.CleanString(name))
}
