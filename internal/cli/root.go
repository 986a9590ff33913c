package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/commands"
	"github.com/foodctl/foodctl/internal/cli/config"
	"github.com/foodctl/foodctl/internal/cli/session"
	"github.com/foodctl/foodctl/internal/cli/userconfig"
	"github.com/foodctl/foodctl/internal/logger"
)

var version = "dev" // Will be set during build

type rootFlags struct {
	baseURL   string
	verbose   bool
	noKeyring bool
}

// NewRootCmd builds the command tree around env. Settings are resolved in
// PersistentPreRunE so that flags are parsed first.
func NewRootCmd(env *commands.Env) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "foodctl",
		Short: "foodctl - order food from the terminal",
		Long: `foodctl - browse the menu, fill a cart and place delivery orders
from the terminal.

Your session token is kept in the system keychain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupEnv(cmd.Context(), env, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "API server (or set FOODCTL_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&flags.noKeyring, "no-keyring", false, "Keep the session in memory only (seeded from FOODCTL_TOKEN)")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "foodctl version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewStatusCmd(env))
	rootCmd.AddCommand(commands.NewMenuCmd(env))
	rootCmd.AddCommand(commands.NewDishCmd(env))
	rootCmd.AddCommand(commands.NewCartCmd(env))
	rootCmd.AddCommand(commands.NewCheckoutCmd(env))
	rootCmd.AddCommand(commands.NewOrdersCmd(env))
	rootCmd.AddCommand(commands.NewOrderCmd(env))
	rootCmd.AddCommand(commands.NewProfileCmd(env))
	rootCmd.AddCommand(commands.NewConfigCmd(env))

	return rootCmd
}

// setupEnv loads configuration, initializes logging and picks the session store
func setupEnv(ctx context.Context, env *commands.Env, flags rootFlags) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	logger.InitWithWriter(os.Stderr, level, cfg.LogFormat)

	uc, err := userconfig.Load()
	if err != nil {
		// A broken user config should not lock the user out
		logger.Logger.Warn().Err(err).Msg("Ignoring user config")
		uc = &userconfig.UserConfig{}
	}

	baseURL, err := config.ResolveBaseURL(flags.baseURL, cfg, uc)
	if err != nil {
		return err
	}

	env.BaseURL = baseURL
	env.Config = cfg
	env.Logger = logger.GetLogger()
	env.Interactive = commands.IsInteractive()
	if env.Store == nil {
		if flags.noKeyring || cfg.NoKeyring {
			env.Store = session.NewMemoryStore(cfg.Token)
		} else {
			env.Store = session.NewKeyringStore(baseURL)
		}
	}

	env.Logger.Debug().Str("base_url", baseURL).Msg("Configuration resolved")
	return nil
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &commands.Env{Out: os.Stdout, Err: os.Stderr}
	if err := NewRootCmd(env).ExecuteContext(ctx); err != nil {
		if !commands.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
