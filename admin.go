package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPassword = term.ReadPassword

func newCreateAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a verified ADMIN account if the email is not registered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, store, closeStore, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if email == "" {
				email = cfg.Auth.AdminEmail
			}
			if email == "" {
				if email, err = promptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Admin email: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = cfg.Auth.AdminPassword
			}
			if password == "" {
				if password, err = promptPassword(cmd.OutOrStdout(), "Admin password: "); err != nil {
					return err
				}
			}

			authSvc, err := newAuthService(cfg, log, store)
			if err != nil {
				return err
			}
			created, err := authSvc.EnsureAdmin(ctx, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already registered\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")
	return cmd
}

func promptLine(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
