package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/services/api"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errNotFound = errors.New("not found")
)

type commandLine struct {
	client  *api.Client
	term    *terminal
	notices *core.Notices
	logger  core.Logger
	out     io.Writer
}

type options struct {
	BaseURL string
	Timeout time.Duration
	Store   auth.TokenStore
	Clock   core.Clock
	Locale  string
	In      io.Reader
	Out     io.Writer
	Logger  core.Logger
}

func newCommandLine(opts options) *commandLine {
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger
	}
	client := api.New(api.Options{
		BaseURL: opts.BaseURL,
		Timeout: opts.Timeout,
		Session: auth.NewSession(opts.Store, opts.Clock),
		Logger:  logger,
		OnUnauthorized: func() {
			logger.Warn("bearer token rejected, session cleared")
		},
	})
	return &commandLine{
		client:  client,
		term:    newTerminal(opts.In, opts.Out),
		notices: core.NewNotices(opts.Locale),
		logger:  logger,
		out:     opts.Out,
	}
}

var commands = []struct{ name, usage string }{
	{"login", "login -email EMAIL - log in (the password is prompted next)"},
	{"logout", "logout - forget the stored token"},
	{"whoami", "whoami - show the current user"},
	{"courses", "courses [-search S] [-status S] [-visible true|false] [-category ID] - list courses"},
	{"course-create", "course-create -fullname F -shortname S -category ID [-sections N] [-format F] - create a course"},
	{"course-show", "course-show -id ID - show a course and its stats"},
	{"content", "content -id ID [-preview] [-edit] [-section ID] - show the content tree of a course"},
	{"section-visibility", "section-visibility -course ID -id ID - show/hide a section"},
	{"item-visibility", "item-visibility -course ID -id ID - show/hide an item"},
	{"item-delete", "item-delete -course ID -id ID - delete an item"},
	{"item-duplicate", "item-duplicate -course ID -id ID - duplicate an item"},
	{"section-move", "section-move -course ID -id ID -position N - move a section"},
	{"item-move", "item-move -course ID -id ID -position N [-section ID] - move an item"},
	{"enrollments", "enrollments -course ID [-role R] [-search S] - list course enrollments"},
	{"enroll", "enroll -course ID -user ID [-role R] - enroll a user"},
	{"unenroll", "unenroll -id ID - delete an enrollment"},
	{"enrollment-code", "enrollment-code -course ID [-code C] [-role R] - create a self-enrollment code"},
	{"enroll-code", "enroll-code -code C - enroll yourself with a code"},
	{"my-courses", "my-courses - list your enrollments"},
	{"gradebook", "gradebook -course ID - show the gradebook"},
	{"grade", "grade -course ID -item ID -user ID -grade G [-feedback F] - grade a user"},
	{"my-grades", "my-grades -course ID - list your grades"},
	{"question-categories", "question-categories -course ID - list question categories"},
	{"question-category-create", "question-category-create -course ID -name N [-description D] - create a question category"},
	{"questions", "questions -course ID [-category ID] [-type T] - list the question bank"},
	{"question-create", "question-create -course ID -category ID -type T -text T [-option O]... [-answer A] [-points P] - create a question"},
	{"users", "users [-search S] [-role R] [-status S] - list users"},
	{"threads", "threads - list your message threads"},
	{"thread", "thread -id ID - read a thread"},
	{"send", "send -to USER_ID -subject S -body B - start a thread"},
	{"reply", "reply -id ID -body B - reply to a thread"},
	{"unread", "unread - count unread threads"},
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	for _, cmd := range commands {
		_, _ = fmt.Fprintln(cli.out, "  "+cmd.usage)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	rest := args[2:]

	switch args[1] {
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami(ctx)
	case "courses":
		return cli.listCourses(ctx, rest)
	case "course-create":
		return cli.createCourse(ctx, rest)
	case "course-show":
		return cli.showCourse(ctx, rest)
	case "content":
		return cli.showContent(ctx, rest)
	case "section-visibility":
		return cli.toggleSectionVisibility(ctx, rest)
	case "item-visibility":
		return cli.toggleItemVisibility(ctx, rest)
	case "item-delete":
		return cli.deleteItem(ctx, rest)
	case "item-duplicate":
		return cli.duplicateItem(ctx, rest)
	case "section-move":
		return cli.moveSection(ctx, rest)
	case "item-move":
		return cli.moveItem(ctx, rest)
	case "enrollments":
		return cli.listEnrollments(ctx, rest)
	case "enroll":
		return cli.enroll(ctx, rest)
	case "unenroll":
		return cli.unenroll(ctx, rest)
	case "enrollment-code":
		return cli.createEnrollmentCode(ctx, rest)
	case "enroll-code":
		return cli.enrollWithCode(ctx, rest)
	case "my-courses":
		return cli.myCourses(ctx)
	case "gradebook":
		return cli.gradebook(ctx, rest)
	case "grade":
		return cli.grade(ctx, rest)
	case "my-grades":
		return cli.myGrades(ctx, rest)
	case "question-categories":
		return cli.listQuestionCategories(ctx, rest)
	case "question-category-create":
		return cli.createQuestionCategory(ctx, rest)
	case "questions":
		return cli.listQuestions(ctx, rest)
	case "question-create":
		return cli.createQuestion(ctx, rest)
	case "users":
		return cli.listUsers(ctx, rest)
	case "threads":
		return cli.listThreads(ctx)
	case "thread":
		return cli.readThread(ctx, rest)
	case "send":
		return cli.sendMessage(ctx, rest)
	case "reply":
		return cli.reply(ctx, rest)
	case "unread":
		return cli.unread(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parseFlags parses args and prints the usage of fs when a required flag is missing.
func parseFlags(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, name := range required {
		if f := fs.Lookup(name); f == nil || strings.TrimSpace(f.Value.String()) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// fail shows err as a localized notice and returns it.
func (cli *commandLine) fail(key string, err error) error {
	switch {
	case core.IsUnauthorized(err):
		cli.term.Notify(core.LevelWarning, cli.notices.T(core.NoticeSessionExpired))
	case core.IsCanceled(err):
		cli.term.Notify(core.LevelInfo, cli.notices.T(core.NoticeCanceled))
		return nil
	default:
		cli.term.Notify(core.LevelError, cli.notices.Failure(key, err))
	}
	cli.logger.Debug(key, err)
	return err
}

func (cli *commandLine) success(key string, params ...string) {
	cli.term.Notify(core.LevelSuccess, cli.notices.T(key, params...))
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// optionalBool is a flag that stays nil unless set.
type optionalBool struct{ val *bool }

func (b *optionalBool) String() string {
	if b.val == nil {
		return ""
	}
	return strconv.FormatBool(*b.val)
}

func (b *optionalBool) Set(value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	b.val = &v
	return nil
}
