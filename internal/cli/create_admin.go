// Package cli implements the maintenance commands that run outside the
// HTTP server.
package cli

import (
	"flag"
	"fmt"
	"os"

	"libroteca/internal/config"
	"libroteca/internal/services"
	"libroteca/internal/store/factory"
)

// CreateAdminCommand provisions an administrator account directly
// against the configured storage backend. The public register endpoint
// only issues the "user" role, so the first admin comes from here.
type CreateAdminCommand struct {
	Username string
	Email    string
	Password string
}

// NewCreateAdminCommand creates a new CreateAdminCommand.
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the administrator account")
	fs.StringVar(&cmd.Email, "email", "", "Email address for the administrator account")
	fs.StringVar(&cmd.Password, "password", "", "Password for the administrator account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -username NAME -email ADDRESS -password SECRET\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account against the configured storage backend.\n")
		fmt.Fprintf(os.Stderr, "Storage is selected the same way as for 'serve' (MODE, DATA_DIR, DATABASE_PATH).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}
	return nil
}

// Run creates the account.
func (cmd *CreateAdminCommand) Run() error {
	cfg := config.NewConfig()

	stores, err := factory.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer stores.Close()

	userService := services.NewUserService(stores.Users, cfg.Auth.BcryptCost)
	user, err := userService.Create(services.CreateUserInput{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: cmd.Password,
		Role:     "admin",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created administrator %q (id %d)\n", user.Username, user.ID)
	return nil
}
