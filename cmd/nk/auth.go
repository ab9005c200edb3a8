package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/and161185/notekeeper/internal/controller"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

type credFlags struct {
	email    string
	password string
}

func (f *credFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "account email (prompted when empty)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password (prompted when empty)")
}

// resolve fills missing credentials from stdin. The password is read without
// echo when stdin is a terminal.
func (f *credFlags) resolve(cmd *cobra.Command) (model.Credentials, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	email := strings.TrimSpace(f.email)
	if email == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
		line, err := readLine(in)
		if err != nil {
			return model.Credentials{}, err
		}
		email = strings.TrimSpace(line)
	}
	password := f.password
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		var err error
		if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			var b []byte
			b, err = term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			password = string(b)
		} else {
			password, err = readLine(in)
		}
		if err != nil {
			return model.Credentials{}, err
		}
	}
	if email == "" || password == "" {
		return model.Credentials{}, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}
	return model.Credentials{Email: email, Password: password}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var f credFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			auth := controller.NewAuth(a.client, a.sess, a.log)
			acc, err := auth.Register(ctx, creds)
			if err != nil {
				return fmt.Errorf("%s: %w", auth.Snapshot().Error, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)\n", acc.Email, acc.ID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var f credFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			auth := controller.NewAuth(a.client, a.sess, a.log)
			if err := auth.Login(ctx, creds); err != nil {
				return fmt.Errorf("%s: %w", auth.Snapshot().Error, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := controller.NewAuth(a.client, a.sess, a.log).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sess.Authenticated() {
				return fmt.Errorf("%w: not logged in", errs.ErrAuth)
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			acc, err := a.client.Me(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (id %d, active %t)\n", acc.Email, acc.ID, acc.IsActive)
			if exp, ok := a.sess.ExpiresAt(); ok {
				fmt.Fprintf(out, "token expires %s\n", exp.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}
