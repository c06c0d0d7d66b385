package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/message"
)

func (cli *commandLine) listThreads(ctx context.Context) error {
	threads, err := cli.client.ListThreads(ctx)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	if len(threads) == 0 {
		renderEmpty(cli.out, cli.notices)
		return nil
	}
	renderThreads(cli.out, threads)
	return nil
}

func (cli *commandLine) readThread(ctx context.Context, args []string) error {
	fs := cli.flagSet("thread")
	id := fs.String("id", "", "The thread ID.")
	if err := parseFlags(fs, args, "id"); err != nil {
		return err
	}

	msgs, err := cli.client.ThreadMessages(ctx, *id)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	renderMessages(cli.out, msgs)
	return nil
}

func (cli *commandLine) sendMessage(ctx context.Context, args []string) error {
	fs := cli.flagSet("send")
	to := fs.String("to", "", "The recipient's user ID.")
	subject := fs.String("subject", "", "The thread subject.")
	body := fs.String("body", "", "The first message.")
	courseID := fs.String("course", "", "An optional course ID.")
	if err := parseFlags(fs, args, "to"); err != nil {
		return err
	}

	thread, err := cli.client.CreateThread(ctx, message.NewThread{
		RecipientID: *to,
		Subject:     *subject,
		Content:     *body,
		CourseID:    *courseID,
	})
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeCreated)
	renderThreads(cli.out, []message.Thread{thread})
	return nil
}

func (cli *commandLine) reply(ctx context.Context, args []string) error {
	fs := cli.flagSet("reply")
	id := fs.String("id", "", "The thread ID.")
	body := fs.String("body", "", "The reply.")
	if err := parseFlags(fs, args, "id"); err != nil {
		return err
	}

	msg, err := cli.client.Reply(ctx, *id, message.Reply{Content: *body})
	if err != nil {
		return cli.fail(core.NoticeCreateFailed, err)
	}
	cli.success(core.NoticeSaved)
	renderMessages(cli.out, []message.Message{msg})
	return nil
}

func (cli *commandLine) unread(ctx context.Context) error {
	n, err := cli.client.UnreadCount(ctx)
	if err != nil {
		return cli.fail(core.NoticeLoadFailed, err)
	}
	_, _ = fmt.Fprintln(cli.out, titleStyle.Render(strconv.Itoa(n)))
	return nil
}
