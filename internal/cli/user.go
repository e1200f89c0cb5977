package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/service"
)

const minPasswordLength = 6

type createUserOptions struct {
	email         string
	name          string
	role          string
	passwordStdin bool
}

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var opts createUserOptions
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with the given role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := parseRole(opts.role)
			if err != nil {
				return err
			}

			password, err := readPassword(cmd, opts.passwordStdin)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			users := service.NewUserAdmin(
				repository.NewUserRepository(e.pool),
				security.NewPasswordHasher(security.DefaultArgon2Params),
			)
			user, err := users.Create(cmd.Context(), service.CreateUserInput{
				Email:    opts.email,
				FullName: opts.name,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", user.Email, user.Role, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&opts.email, "email", "", "Account email (required)")
	create.Flags().StringVar(&opts.name, "name", "", "Full name (required)")
	create.Flags().StringVar(&opts.role, "role", string(models.RoleSales), "ADMIN, SALES or CUSTOMER")
	create.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create, newSetActiveCommand("activate", true), newSetActiveCommand("deactivate", false))
	return cmd
}

func newSetActiveCommand(use string, active bool) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: strings.ToUpper(use[:1]) + use[1:] + " an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			users := service.NewUserAdmin(
				repository.NewUserRepository(e.pool),
				security.NewPasswordHasher(security.DefaultArgon2Params),
			)
			user, err := users.SetActive(cmd.Context(), email, active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", user.Email, user.IsActive)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func parseRole(raw string) (models.UserRole, error) {
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// readPassword prompts without echo on a terminal; otherwise it reads the
// first line of stdin.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Repeat password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return checkPassword(string(first))
	}

	if !fromStdin {
		return "", errors.New("stdin is not a terminal, pass --password-stdin")
	}
	return readPasswordLine(in)
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return checkPassword(strings.TrimRight(line, "\r\n"))
}

func checkPassword(p string) (string, error) {
	if len(p) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return p, nil
}
