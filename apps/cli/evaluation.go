package main

import (
	"context"
	"strings"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/evaluation"
)

func (cli *commandLine) gradebook(ctx context.Context, args []string) error {
	fs := cli.flagSet("gradebook")
	courseID := fs.String("course", "", "The course ID.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	gb, err := cli.client.Gradebook(ctx, *courseID)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	renderGradebook(cli.out, gb)
	return nil
}

func (cli *commandLine) grade(ctx context.Context, args []string) error {
	fs := cli.flagSet("grade")
	courseID := fs.String("course", "", "The course ID.")
	itemID := fs.String("item", "", "The gradable item ID.")
	userID := fs.String("user", "", "The student ID.")
	grade := fs.Float64("grade", -1, "The grade, from 0 to 100.")
	feedback := fs.String("feedback", "", "A comment for the student.")
	if err := parseFlags(fs, args, "course", "item", "user"); err != nil {
		return err
	}

	res, err := cli.client.SetGrade(ctx, evaluation.SetGrade{
		CourseID: *courseID,
		ItemID:   *itemID,
		UserID:   *userID,
		Grade:    *grade,
		Feedback: core.CleanString(*feedback),
	})
	if err != nil {
		return cli.fail(core.NoticeUpdateFailed, err)
	}
	cli.term.Notify(core.LevelSuccess, res.Message)
	return nil
}

func (cli *commandLine) myGrades(ctx context.Context, args []string) error {
	fs := cli.flagSet("my-grades")
	courseID := fs.String("course", "", "The course ID.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	grades, err := cli.client.MyGrades(ctx, *courseID)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(grades) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderMyGrades(cli.out, grades)
	return nil
}

func (cli *commandLine) listQuestionCategories(ctx context.Context, args []string) error {
	fs := cli.flagSet("question-categories")
	courseID := fs.String("course", "", "The course ID.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	cats, err := cli.client.ListQuestionCategories(ctx, *courseID)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(cats) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderQuestionCategories(cli.out, cats)
	return nil
}

func (cli *commandLine) createQuestionCategory(ctx context.Context, args []string) error {
	fs := cli.flagSet("question-category-create")
	courseID := fs.String("course", "", "The course ID.")
	name := fs.String("name", "", "The category name.")
	description := fs.String("description", "", "An optional description.")
	if err := parseFlags(fs, args, "course", "name"); err != nil {
		return err
	}

	cat, err := cli.client.CreateQuestionCategory(ctx, *courseID, core.CleanString(*name), core.CleanString(*description))
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	renderQuestionCategories(cli.out, []evaluation.QuestionCategory{cat})
	return nil
}

func (cli *commandLine) listQuestions(ctx context.Context, args []string) error {
	fs := cli.flagSet("questions")
	courseID := fs.String("course", "", "The course ID.")
	categoryID := fs.String("category", "", "The question category ID.")
	qtype := fs.String("type", "", "multiple_choice, true_false, short_answer or essay.")
	if err := parseFlags(fs, args, "course"); err != nil {
		return err
	}

	questions, err := cli.client.ListQuestions(ctx, *courseID, evaluation.QuestionFilter{
		CategoryID: *categoryID,
		Type:       evaluation.QuestionType(*qtype),
	})
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(questions) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderQuestions(cli.out, questions)
	return nil
}

// parseOption reads a -option value; a leading "*" marks the correct option.
func parseOption(value string) evaluation.Option {
	value = core.CleanString(value)
	if strings.HasPrefix(value, "*") {
		return evaluation.Option{Text: core.CleanString(value[1:]), Correct: true}
	}
	return evaluation.Option{Text: value}
}

func (cli *commandLine) createQuestion(ctx context.Context, args []string) error {
	fs := cli.flagSet("question-create")
	courseID := fs.String("course", "", "The course ID.")
	categoryID := fs.String("category", "", "The question category ID.")
	qtype := fs.String("type", "", "multiple_choice, true_false, short_answer or essay.")
	text := fs.String("text", "", "The question.")
	answer := fs.String("answer", "", "The correct answer (true_false and short_answer).")
	points := fs.Float64("points", 0, "The points; 10 when omitted.")
	feedback := fs.String("feedback", "", "Feedback shown after answering.")
	var options stringList
	fs.Var(&options, "option", "An option (multiple_choice); repeat it, prefixing the correct ones with *.")
	if err := parseFlags(fs, args, "course", "category", "type", "text"); err != nil {
		return err
	}

	data := evaluation.NewQuestion{
		CategoryID:    *categoryID,
		Type:          evaluation.QuestionType(*qtype),
		Text:          *text,
		Points:        *points,
		CorrectAnswer: *answer,
		Feedback:      core.CleanString(*feedback),
	}
	for _, opt := range options {
		data.Options = append(data.Options, parseOption(opt))
	}

	q, err := cli.client.CreateQuestion(ctx, *courseID, data)
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	renderQuestions(cli.out, []evaluation.Question{q})
	return nil
}
