package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/notekeeper/internal/controller"
	"github.com/and161185/notekeeper/internal/errs"
)

const shellHelp = `commands:
  list                 reload notes from the backend
  show                 print notes and the form
  title <text>         set the form title
  content <text>       set the form content
  edit <id>            load a listed note into the form
  cancel               clear the form and selection
  save                 create, or update the selected note
  rm <id>              delete a note
  sum <a> <b>          add two numbers on the backend
  help                 this text
  quit                 leave the shell
`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that keeps notes and the edit form in memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh := &shell{
				app:   a,
				notes: controller.NewNotes(a.client, a.log),
				calc:  controller.NewCalc(a.client, a.log),
				out:   cmd.OutOrStdout(),
			}
			return sh.run(cmd, cmd.InOrStdin())
		},
	}
}

type shell struct {
	app   *app
	notes *controller.Notes
	calc  *controller.Calc
	out   io.Writer
}

func (s *shell) run(cmd *cobra.Command, in io.Reader) error {
	s.exec(cmd, "list")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "nk> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			s.exec(cmd, line)
		}
	}
}

// exec runs one shell line. Errors are printed; the shell keeps going.
func (s *shell) exec(cmd *cobra.Command, line string) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	ctx, cancel := s.app.ctx(cmd)
	defer cancel()

	var err error
	switch verb {
	case "help":
		fmt.Fprint(s.out, shellHelp)
	case "list":
		err = s.notes.Load(ctx)
		if err == nil {
			err = printNotes(s.out, s.notes.Snapshot().Notes)
		}
	case "show":
		s.show()
	case "title":
		s.notes.SetTitle(rest)
	case "content":
		s.notes.SetContent(rest)
	case "edit":
		err = s.edit(rest)
	case "cancel":
		s.notes.CancelEdit()
	case "save":
		err = s.save(ctx)
	case "rm", "delete":
		var id int64
		if id, err = parseID(rest); err == nil {
			if err = s.notes.Delete(ctx, id); err == nil {
				fmt.Fprintf(s.out, "deleted %d\n", id)
			}
		}
	case "sum":
		x, y, _ := strings.Cut(rest, " ")
		var res string
		if res, err = s.calc.Sum(ctx, x, strings.TrimSpace(y)); err == nil {
			fmt.Fprintln(s.out, res)
		}
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", verb)
	}
	if err != nil {
		s.report(verb, err)
	}
}

func (s *shell) edit(arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	n, ok := find(s.notes.Snapshot().Notes, id)
	if !ok {
		return fmt.Errorf("note %d is not in the list, try list", id)
	}
	s.notes.StartEdit(n)
	fmt.Fprintf(s.out, "editing %d: %q / %q\n", n.ID, n.Title, n.Content)
	return nil
}

func (s *shell) save(ctx context.Context) error {
	editing := s.notes.Snapshot().EditingID
	if err := s.notes.Submit(ctx); err != nil {
		return err
	}
	saved := s.notes.Snapshot().Notes[0]
	if editing != 0 {
		fmt.Fprintf(s.out, "updated %d -> %d\n", editing, saved.ID)
	} else {
		fmt.Fprintf(s.out, "created %d\n", saved.ID)
	}
	return nil
}

func (s *shell) show() {
	st := s.notes.Snapshot()
	_ = printNotes(s.out, st.Notes)
	target := "new note"
	if st.EditingID != 0 {
		target = fmt.Sprintf("note %d", st.EditingID)
	}
	fmt.Fprintf(s.out, "form (%s, %s): title=%q content=%q\n", target, st.SubmitState, st.Title, st.Content)
}

// report prints the controller's user-facing message for note actions; the
// detail is already in the log.
func (s *shell) report(verb string, err error) {
	var msg string
	switch verb {
	case "list", "save", "rm", "delete":
		msg = s.notes.Snapshot().Error
	}
	if msg == "" || errors.Is(err, errs.ErrValidation) {
		msg = err.Error()
	}
	fmt.Fprintln(s.out, "error:", msg)
}
