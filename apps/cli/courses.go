package main

import (
	"context"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
)

func (cli *commandLine) listCourses(ctx context.Context, args []string) error {
	fs := cli.flagSet("courses")
	search := fs.String("search", "", "Search in names and codes.")
	status := fs.String("status", "", "draft, published, suspended or archived.")
	category := fs.String("category", "", "The category ID.")
	var visible optionalBool
	fs.Var(&visible, "visible", "true or false.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	courses, err := cli.client.ListCourses(ctx, course.QueryFilter{
		Search:     *search,
		Status:     course.Status(*status),
		Visible:    visible.val,
		CategoryID: *category,
	})
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(courses) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderCourses(cli.out, courses)
	return nil
}

func (cli *commandLine) createCourse(ctx context.Context, args []string) error {
	fs := cli.flagSet("course-create")
	fullname := fs.String("fullname", "", "The course name.")
	shortname := fs.String("shortname", "", "The unique course code.")
	category := fs.String("category", "", "The category ID.")
	sections := fs.Int("sections", 0, "The number of topic sections created after the introduction.")
	format := fs.String("format", "", "topics, weeks or free.")
	if err := parseFlags(fs, args, "fullname", "shortname", "category"); err != nil {
		return err
	}

	crs, err := cli.client.CreateCourse(ctx, course.NewCourse{
		Fullname:    *fullname,
		Shortname:   *shortname,
		CategoryID:  *category,
		NumSections: *sections,
		Format:      course.Format(*format),
	})
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	renderCourse(cli.out, crs, nil)
	return nil
}

func (cli *commandLine) showCourse(ctx context.Context, args []string) error {
	fs := cli.flagSet("course-show")
	id := fs.String("id", "", "The course ID.")
	if err := parseFlags(fs, args, "id"); err != nil {
		return err
	}

	crs, err := cli.client.GetCourse(ctx, *id)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	var stats *course.Stats
	if cli.client.Session().Can(auth.ViewStats) {
		s, err := cli.client.CourseStats(ctx, crs.ID)
		if err != nil {
			return cli.fail(core.NoticeLoadFailed, err)
		}
		stats = &s
	}
	if crs.PublishedButHidden() {
		cli.term.Notify(core.LevelWarning, cli.notices.T(core.NoticePublishedHidden))
	}
	renderCourse(cli.out, crs, stats)
	return nil
}
