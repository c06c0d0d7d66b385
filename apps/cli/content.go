package main

import (
	"context"
	"flag"

	"github.com/trezcool/aulavirtual/apps/content"
	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
)

func (cli *commandLine) newView() *content.View {
	return content.NewView(content.Options{
		Backend:   cli.client,
		Session:   cli.client.Session(),
		Notifier:  cli.term,
		Confirmer: cli.term,
		Notices:   cli.notices,
		Logger:    cli.logger,
	})
}

// loadView loads the course content; the view notifies load failures itself.
func (cli *commandLine) loadView(ctx context.Context, courseID string) (*content.View, error) {
	v := cli.newView()
	if err := v.Load(ctx, courseID); err != nil {
		return nil, err
	}
	for _, sec := range v.Tree() {
		v.ToggleSectionExpanded(sec.ID)
	}
	return v, nil
}

// editView loads the course content in edit mode, or fails with content.ErrLocked.
func (cli *commandLine) editView(ctx context.Context, courseID string) (*content.View, error) {
	v, err := cli.loadView(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !v.SetEditMode(true) {
		cli.notifyLocked(v)
		return nil, content.ErrLocked
	}
	// hidden sections only join the tree in edit mode
	for _, sec := range v.Tree() {
		if sec.Hidden {
			v.ToggleSectionExpanded(sec.ID)
		}
	}
	return v, nil
}

func (cli *commandLine) notifyLocked(v *content.View) {
	if crs, ok := v.Course(); ok && crs.IsReadOnly() {
		cli.term.Notify(core.LevelWarning, cli.notices.T(core.NoticeArchivedReadOnly))
		return
	}
	cli.term.Notify(core.LevelWarning, cli.notices.T(core.NoticeNotEditable))
}

func (cli *commandLine) showContent(ctx context.Context, args []string) error {
	fs := cli.flagSet("content")
	id := fs.String("id", "", "The course ID.")
	preview := fs.Bool("preview", false, "Show the course as a student sees it.")
	edit := fs.Bool("edit", false, "Show hidden sections and items, with their IDs.")
	active := fs.String("section", "", "Highlight this section.")
	if err := parseFlags(fs, args, "id"); err != nil {
		return err
	}

	v, err := cli.loadView(ctx, *id)
	if err != nil {
		return err
	}
	v.SetPreview(*preview)
	if *edit {
		if !v.SetEditMode(true) {
			cli.notifyLocked(v)
		}
		for _, sec := range v.Tree() {
			if sec.Hidden {
				v.ToggleSectionExpanded(sec.ID)
			}
		}
	}
	if *active != "" {
		v.SetActiveSection(*active)
	}
	for _, warning := range v.Warnings() {
		cli.term.Notify(core.LevelWarning, warning)
	}
	renderContent(cli.out, v)
	return nil
}

// contentFlags are the flags shared by the content editing commands.
func (cli *commandLine) contentFlags(name string) (fs *flag.FlagSet, courseID, id *string) {
	fs = cli.flagSet(name)
	courseID = fs.String("course", "", "The course ID.")
	id = fs.String("id", "", "The section or item ID.")
	return fs, courseID, id
}

func (cli *commandLine) findSection(v *content.View, id string) (course.Section, bool) {
	sec, ok := v.Section(id)
	if !ok {
		cli.term.Notify(core.LevelError, cli.notices.T(core.NoticeNotFound, id))
	}
	return sec, ok
}

func (cli *commandLine) findItem(v *content.View, id string) (course.Item, bool) {
	item, ok := v.Item(id)
	if !ok {
		cli.term.Notify(core.LevelError, cli.notices.T(core.NoticeNotFound, id))
	}
	return item, ok
}

// editContent runs one edit on the loaded view, then renders the reloaded tree.
func (cli *commandLine) editContent(ctx context.Context, courseID string, edit func(v *content.View) error) error {
	v, err := cli.editView(ctx, courseID)
	if err != nil {
		return err
	}
	if err := edit(v); err != nil {
		if core.IsCanceled(err) {
			cli.term.Notify(core.LevelInfo, cli.notices.T(core.NoticeCanceled))
			return nil
		}
		return err
	}
	renderContent(cli.out, v)
	return nil
}

func (cli *commandLine) toggleSectionVisibility(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("section-visibility")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		sec, ok := cli.findSection(v, *id)
		if !ok {
			return errNotFound
		}
		if err := v.ToggleSectionVisibility(ctx, sec); err != nil {
			return err
		}
		cli.success(core.NoticeVisibilityUpdated)
		return nil
	})
}

func (cli *commandLine) toggleItemVisibility(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("item-visibility")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		item, ok := cli.findItem(v, *id)
		if !ok {
			return errNotFound
		}
		if err := v.ToggleItemVisibility(ctx, item); err != nil {
			return err
		}
		cli.success(core.NoticeVisibilityUpdated)
		return nil
	})
}

func (cli *commandLine) deleteItem(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("item-delete")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		item, ok := cli.findItem(v, *id)
		if !ok {
			return errNotFound
		}
		return v.DeleteItem(ctx, item)
	})
}

func (cli *commandLine) duplicateItem(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("item-duplicate")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		item, ok := cli.findItem(v, *id)
		if !ok {
			return errNotFound
		}
		return v.DuplicateItem(ctx, item)
	})
}

func (cli *commandLine) moveSection(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("section-move")
	position := fs.Int("position", -1, "The new position (0 is the introduction).")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	if *position < 0 {
		fs.Usage()
		return errHelp
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		sec, ok := cli.findSection(v, *id)
		if !ok {
			return errNotFound
		}
		if err := v.MoveSection(ctx, sec, *position); err != nil {
			return err
		}
		cli.success(core.NoticeMoved)
		return nil
	})
}

func (cli *commandLine) moveItem(ctx context.Context, args []string) error {
	fs, courseID, id := cli.contentFlags("item-move")
	position := fs.Int("position", -1, "The new position within the target section.")
	target := fs.String("section", "", "The target section ID; defaults to the item's own section.")
	if err := parseFlags(fs, args, "course", "id"); err != nil {
		return err
	}
	if *position < 0 {
		fs.Usage()
		return errHelp
	}
	return cli.editContent(ctx, *courseID, func(v *content.View) error {
		item, ok := cli.findItem(v, *id)
		if !ok {
			return errNotFound
		}
		if err := v.MoveItem(ctx, item, *target, *position); err != nil {
			return err
		}
		cli.success(core.NoticeMoved)
		return nil
	})
}
