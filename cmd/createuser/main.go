// Package main seeds a cheque desk user account.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-petr/cheque-desk/db/migration"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/middleware"
	"github.com/go-petr/cheque-desk/internal/userrepo"
	"github.com/go-petr/cheque-desk/internal/userservice"
	"github.com/go-petr/cheque-desk/pkg/configpkg"
	"github.com/go-petr/cheque-desk/pkg/dbpkg"

	_ "github.com/lib/pq"
)

// options holds the parsed command line.
type options struct {
	configPath string
	username   string
	password   string
	fullname   string
	admin      bool
}

func (o options) role() string {
	if o.admin {
		return domain.RoleAdmin
	}

	return domain.RoleUser
}

func main() {
	if err := newCommand(createUser).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(run func(ctx context.Context, o options) error) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:          "createuser",
		Short:        "Create a cheque desk user",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVarP(&o.configPath, "config", "c", "./configs", "directory holding app.env")
	cmd.Flags().StringVarP(&o.username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&o.password, "password", "p", "", "password, at least 6 characters")
	cmd.Flags().StringVarP(&o.fullname, "fullname", "f", "", "display name")
	cmd.Flags().BoolVar(&o.admin, "admin", false, "grant the Admin role")

	// Only fails for unknown flag names.
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("fullname")

	return cmd
}

func createUser(ctx context.Context, o options) error {
	config, err := configpkg.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	logger := middleware.CreateLogger(config)
	ctx = logger.WithContext(ctx)

	if config.MigrateOnStart {
		if _, err := migration.Up(config.DBDriver, config.DBSource); err != nil {
			return fmt.Errorf("cannot migrate database: %w", err)
		}
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return fmt.Errorf("cannot connect to database: %w", err)
	}
	defer db.Close()

	service := userservice.New(userrepo.NewRepoPGS(db))

	user, err := service.Create(ctx, o.username, o.password, o.fullname, o.role())
	if err != nil {
		return fmt.Errorf("cannot create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("username", user.Username).Str("role", user.Role).Msg("user created")

	return nil
}
