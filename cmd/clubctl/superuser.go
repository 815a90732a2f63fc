package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/repository"
)

// superuserStore is the part of repository.UserRepo the command uses.
type superuserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	InsertUser(ctx context.Context, nu model.NewUser) (uint64, error)
	UpdateUser(ctx context.Context, u *model.User) error
}

type superuserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Promote  bool
}

func newCreateSuperuserCmd() *cobra.Command {
	var in superuserInput
	cmd := &cobra.Command{
		Use:     "create-superuser",
		Short:   "Create an account that bypasses every permission check.",
		Example: "clubctl create-superuser --username admin --email admin@club.local < password.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("CLUBCTL_PASSWORD")
			}
			if in.Password == "" {
				pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				in.Password = pw
			}

			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := createSuperuser(cmd.Context(), repository.NewUserRepo(db), auth.NewHasher(cfg.BcryptCost), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %q ready (id %d)\n", in.Username, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address (required for new accounts)")
	cmd.Flags().StringVar(&in.Password, "password", "", "password; falls back to $CLUBCTL_PASSWORD, then a prompt (or the first line of piped stdin)")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "display name (defaults to the username)")
	cmd.Flags().BoolVar(&in.Promote, "promote", false, "grant superuser to an existing account instead of failing")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// Terminal hooks, replaced in tests.
var (
	isTerminal = term.IsTerminal
	readSecret = term.ReadPassword
)

// readPassword reads without echo when in is a terminal, prompting on
// prompt. Piped input is read up to the first newline.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := readSecret(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// createSuperuser inserts a new superuser, or with Promote set, flags an
// existing account as one. The password of an existing account is never
// changed.
func createSuperuser(ctx context.Context, users superuserStore, hasher auth.Hasher, in superuserInput) (uint64, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return 0, errors.New("username is required")
	}

	existing, err := users.FindUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		if !in.Promote {
			return 0, fmt.Errorf("user %q already exists; pass --promote to grant superuser", in.Username)
		}
		existing.IsSuperuser = true
		existing.IsActive = true
		if err := users.UpdateUser(ctx, existing); err != nil {
			return 0, fmt.Errorf("promote %q: %w", in.Username, err)
		}
		return existing.ID, nil
	case !errors.Is(err, repository.ErrNotFound):
		return 0, fmt.Errorf("look up %q: %w", in.Username, err)
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return 0, errors.New("email is required")
	}
	if in.Password == "" || len(in.Password) > auth.MaxPasswordBytes {
		return 0, fmt.Errorf("password must be 1-%d bytes", auth.MaxPasswordBytes)
	}
	if in.FullName == "" {
		in.FullName = in.Username
	}
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}
	id, err := users.InsertUser(ctx, model.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		IsSuperuser:  true,
	})
	if err != nil {
		return 0, fmt.Errorf("insert %q: %w", in.Username, err)
	}
	return id, nil
}
