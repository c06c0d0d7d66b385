package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/trezcool/aulavirtual/core"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flagSet("login")
	email := fs.String("email", "", "The account's email. The password will be prompted next.")
	if err := parseFlags(fs, args, "email"); err != nil {
		return err
	}

	_, _ = fmt.Fprint(cli.out, "Contraseña: ")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return errHelp
	}

	usr, err := cli.client.Login(ctx, *email, string(pwd))
	if err != nil {
		return cli.fail(core.NoticeLoginFailed, err)
	}
	cli.success(core.NoticeLoggedIn, usr.FullName(), string(usr.Role))
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.client.Logout(); err != nil {
		return err
	}
	cli.success(core.NoticeLoggedOut)
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if !cli.client.Session().IsAuthenticated() {
		cli.term.Notify(core.LevelWarning, cli.notices.T(core.NoticeNotLoggedIn))
		return core.ErrUnauthorized
	}
	usr, err := cli.client.Me(ctx)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	renderUser(cli.out, usr)
	return nil
}
