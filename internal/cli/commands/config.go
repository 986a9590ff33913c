package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/config"
	"github.com/foodctl/foodctl/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change local settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(env)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-base-url <url>",
		Short: "Use another API server by default",
		Long: `Use another API server by default.

Examples:
  $ foodctl config set-base-url http://localhost:8080   # local mock server
  $ foodctl config set-base-url ""                      # back to the public service`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSetBaseURL(env, args[0])
		},
	})

	return cmd
}

func runConfigShow(env *Env) error {
	uc, err := userconfig.Load()
	if err != nil {
		return err
	}

	path, _ := userconfig.GetConfigPath()
	out := env.stdout()

	fmt.Fprintf(out, "Config file:  %s\n", path)
	fmt.Fprintf(out, "Base URL:     %s\n", env.BaseURL)
	if uc.BaseURL != "" {
		fmt.Fprintf(out, "  saved:      %s\n", uc.BaseURL)
	}
	if env.config().BaseURL != "" {
		fmt.Fprintf(out, "  from env:   %s\n", env.config().BaseURL)
	}

	fmt.Fprintln(out, "Menu filters:")
	categories := "all"
	if len(uc.Menu.Categories) > 0 {
		categories = fmt.Sprint(uc.Menu.Categories)
	}
	fmt.Fprintf(out, "  categories: %s\n", categories)
	fmt.Fprintf(out, "  vegetarian: %t\n", uc.Menu.Vegetarian)
	if uc.Menu.Sorting != "" {
		fmt.Fprintf(out, "  sort:       %s\n", uc.Menu.Sorting)
	}
	return nil
}

func runConfigSetBaseURL(env *Env, raw string) error {
	baseURL := ""
	if raw != "" {
		var err error
		if baseURL, err = config.ValidateBaseURL(raw); err != nil {
			return err
		}
	}

	if err := userconfig.SetBaseURL(baseURL); err != nil {
		return fmt.Errorf("failed to save base URL: %w", err)
	}

	if baseURL == "" {
		fmt.Fprintln(env.stdout(), "✓ Base URL reset to the public service.")
	} else {
		fmt.Fprintf(env.stdout(), "✓ Base URL set to %s\n", baseURL)
	}
	return nil
}
