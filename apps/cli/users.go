package main

import (
	"context"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/user"
)

func (cli *commandLine) listUsers(ctx context.Context, args []string) error {
	fs := cli.flagSet("users")
	search := fs.String("search", "", "Search in names and emails.")
	role := fs.String("role", "", "admin, teacher, editor or student.")
	status := fs.String("status", "", "active, inactive or suspended.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	users, err := cli.client.ListUsers(ctx, user.QueryFilter{
		Search: *search,
		Role:   auth.Role(*role),
		Status: user.Status(*status),
	})
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(users) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderUsers(cli.out, users)
	return nil
}
