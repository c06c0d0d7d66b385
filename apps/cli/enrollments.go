package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/enrollment"
)

func (cli *commandLine) listEnrollments(ctx context.Context, args []string) error {
	fs := cli.flagSet("enrollments")
	courseID := fs.String("course", "", "The course ID.")
	role := fs.String("role", "", "student, teacher or editor.")
	search := fs.String("search", "", "Search in names and emails.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	enrollments, err := cli.client.ListEnrollments(ctx, *courseID, enrollment.QueryFilter{
		Role:   enrollment.Role(*role),
		Search: *search,
	})
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(enrollments) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderEnrollments(cli.out, enrollments)
	return nil
}

func (cli *commandLine) enroll(ctx context.Context, args []string) error {
	fs := cli.flagSet("enroll")
	courseID := fs.String("course", "", "The course ID.")
	userID := fs.String("user", "", "The user ID.")
	role := fs.String("role", string(enrollment.RoleStudent), "student, teacher or editor.")
	if err := parseFlags(fs, args, "course", "user"); err != nil {
		return err
	}

	enr, err := cli.client.Enroll(ctx, *courseID, enrollment.NewEnrollment{UserID: *userID, Role: enrollment.Role(*role)})
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	renderEnrollments(cli.out, []enrollment.Enrollment{enr})
	return nil
}

func (cli *commandLine) unenroll(ctx context.Context, args []string) error {
	fs := cli.flagSet("unenroll")
	id := fs.String("id", "", "The enrollment ID.")
	if err := parseFlags(fs, args, "id"); err != nil {
		return err
	}

	if !cli.term.Confirm(cli.notices.T(core.NoticeConfirmUnenroll)) {
		return cli.fail(core.NoticeDeleteFailed, core.ErrCanceled)
	}
	if err := cli.client.Unenroll(ctx, *id); err != nil {
		return cli.fail(core.NoticeDeleteFailed, errors.Wrap(err, "deleting enrollment"))
	}
	cli.success(core.NoticeDeleted)
	return nil
}

func (cli *commandLine) createEnrollmentCode(ctx context.Context, args []string) error {
	fs := cli.flagSet("enrollment-code")
	courseID := fs.String("course", "", "The course ID.")
	code := fs.String("code", "", "The code; generated when empty.")
	role := fs.String("role", string(enrollment.RoleStudent), "The role given to whoever uses the code.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	method, err := cli.client.CreateEnrollmentCode(ctx, *courseID, core.CleanString(*code), enrollment.Role(*role))
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	tw := newTable(cli.out)
	row(tw, "ID", method.ID)
	row(tw, "Código", titleStyle.Render(method.Code))
	row(tw, "Rol", string(method.Role))
	_ = tw.Flush()
	return nil
}

func (cli *commandLine) enrollWithCode(ctx context.Context, args []string) error {
	fs := cli.flagSet("enroll-code")
	code := fs.String("code", "", "The enrollment code.")
	if err := parseFlags(fs, args, "code"); err != nil {
		return err
	}

	res, err := cli.client.EnrollWithCode(ctx, *code)
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.term.Notify(core.LevelSuccess, res.Message)
	return nil
}

func (cli *commandLine) myCourses(ctx context.Context) error {
	enrollments, err := cli.client.MyEnrollments(ctx)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(enrollments) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderMyEnrollments(cli.out, enrollments)
	return nil
}
