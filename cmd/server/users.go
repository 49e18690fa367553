package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/iliyamo/lab-equipment-booking/internal/repository"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

func newCreateUserCmd() *cobra.Command {
	var username, email, role, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, e.g. the first admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = readPassword("Password: "); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			cfg, db, log, err := bootstrap(ctx, "create-user")
			if err != nil {
				return err
			}
			defer db.Close()

			auth := service.NewAuthService(repository.NewUserRepo(db), cfg.Auth, log)
			res, err := auth.Register(ctx, service.RegisterInput{
				Username: username,
				Email:    email,
				Password: password,
				Role:     role,
			})
			if err != nil {
				log.Error("create user", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with id %s\n", res.User.Username, res.User.Role, res.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "unique user name")
	cmd.Flags().StringVar(&email, "email", "", "unique email address")
	cmd.Flags().StringVar(&role, "role", "student", "student, lab_assistant or admin")
	cmd.Flags().StringVar(&password, "password", "", "password; prompted for when omitted")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword reads a password from the terminal without echoing it.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt for a password, use --password")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return strings.TrimSpace(string(b)), nil
}
