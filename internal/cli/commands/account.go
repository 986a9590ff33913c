package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/session"
	"github.com/foodctl/foodctl/internal/validation"
)

// Page names passed to the client. Only login and register are public.
const (
	pageLogin    = "login"
	pageRegister = "register"
	pageLogout   = "logout"
	pageMenu     = "menu"
	pageDish     = "dish"
	pageCart     = "cart"
	pageCheckout = "checkout"
	pageOrders   = "orders"
	pageOrder    = "order"
	pageProfile  = "profile"
)

var errBadCredentials = errors.New("login failed: Username or password is not correct")

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the food delivery service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), env, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set FOODCTL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FOODCTL_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, env *Env, email, password string) error {
	// Check for environment variables (useful for scripts)
	if email == "" {
		email = env.config().Email
	}
	if password == "" {
		password = env.config().Password
	}

	if email == "" {
		if !env.Interactive {
			return fmt.Errorf("email is required (use --email flag or FOODCTL_EMAIL env var)")
		}
		var err error
		if email, err = promptLine("Email", "", nil); err != nil {
			return err
		}
	}

	if password == "" {
		var err error
		password, err = readPassword(env)
		if errors.Is(err, errNotInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or FOODCTL_PASSWORD env var)")
		}
		if err != nil {
			return err
		}
	}

	out := env.stdout()
	api := env.client(pageLogin)

	fmt.Fprintf(out, "Logging in to %s...\n", env.BaseURL)

	resp, err := api.Login(ctx, email, password)
	if err != nil {
		if client.StatusCode(err) == http.StatusBadRequest || errors.Is(err, client.ErrUnauthorized) {
			return errBadCredentials
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	if claims, err := session.ParseClaims(resp.Token); err == nil && claims.Email != "" {
		fmt.Fprintf(out, "  User: %s\n", claims.Email)
	}

	return nil
}

type registerOptions struct {
	FullName  string
	Email     string
	Password  string
	Gender    string
	BirthDate string
	Phone     string
	Address   string
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account and sign in.

The password must be at least 8 characters long and contain an uppercase
letter, a lowercase letter, a digit and one of @$!%*?&_.

Examples:
  $ foodctl register --name "Ivan Petrov" --email ivan@example.com --gender Male
  $ foodctl register --name "Anna" --email anna@example.com --gender Female --phone "+7 (912) 345-67-89"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&opts.Gender, "gender", "", "Gender (Male or Female)")
	cmd.Flags().StringVar(&opts.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&opts.Address, "address", "", "Delivery address")

	return cmd
}

func runRegister(ctx context.Context, env *Env, opts registerOptions) error {
	if opts.Password == "" {
		password, err := readPassword(env)
		if errors.Is(err, errNotInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
		if err != nil {
			return err
		}
		opts.Password = password
	}

	req := registerForm(opts)
	if err := validation.New().Struct(req); err != nil {
		return validation.Errors(err)
	}

	req.PhoneNumber = validation.NormalizePhone(req.PhoneNumber)
	if req.BirthDate != "" {
		// The service expects a full timestamp
		date, _ := validation.ParseDate(req.BirthDate)
		req.BirthDate = date.Format(time.RFC3339)
	}

	if _, err := env.client(pageRegister).Register(ctx, req); err != nil {
		if client.StatusCode(err) == http.StatusConflict {
			return fmt.Errorf("registration failed: an account with email %s already exists", opts.Email)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintln(env.stdout(), "✓ Registration successful! You are now logged in.")
	return nil
}

// registerForm maps the flags onto the request as typed by the user
func registerForm(opts registerOptions) client.RegisterRequest {
	return client.RegisterRequest{
		FullName:    opts.FullName,
		Password:    opts.Password,
		Email:       opts.Email,
		Address:     opts.Address,
		BirthDate:   opts.BirthDate,
		Gender:      opts.Gender,
		PhoneNumber: opts.Phone,
	}
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), env)
		},
	}
}

func runLogout(ctx context.Context, env *Env) error {
	out := env.stdout()
	api := env.client(pageLogout)

	if !api.Authenticated() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	if err := api.Logout(ctx); err != nil {
		// The token is gone locally either way
		env.Logger.Warn().Err(err).Msg("Logout request failed")
		fmt.Fprintf(env.stderr(), "Warning: server logout failed: %v\n", err)
	}

	fmt.Fprintln(out, "✓ Logged out.")
	return nil
}

// NewStatusCmd creates the status command
func NewStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(env)
		},
	}
}

func runStatus(env *Env) error {
	out := env.stdout()
	fmt.Fprintf(out, "Service: %s\n", env.BaseURL)

	token, err := env.Store.Token()
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if token == "" {
		fmt.Fprintln(out, "Session: not logged in")
		return nil
	}

	claims, err := session.ParseClaims(token)
	if err != nil {
		fmt.Fprintln(out, "Session: token stored (unreadable)")
		return nil
	}

	if claims.Expired(env.now()) {
		fmt.Fprintln(out, "Session: expired")
	} else {
		fmt.Fprintln(out, "Session: active")
	}
	if claims.Email != "" {
		fmt.Fprintf(out, "User:    %s\n", claims.Email)
	}
	if claims.Subject != "" {
		fmt.Fprintf(out, "Subject: %s\n", claims.Subject)
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
