package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "awale",
		Short: "Client for the Awale lobby server",
		Long: `awale connects to an Awale lobby server.

"awale connect" opens an interactive session on the game port: type protocol
commands (LOGIN, CHALLENGE, MAKE_MOVE, ...) and server messages are printed
as they arrive. The other commands query the read-only status API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.StatusURL)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Game server address (env: AWALE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StatusURL, "status", cfg.StatusURL, "Status API URL (env: AWALE_STATUS)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newOnlineCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newGamesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output).PrintError(err)
		os.Exit(1)
	}
}
